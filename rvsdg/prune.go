package rvsdg

// markLive performs the mark phase of dead-node elimination within a
// single region (spec §4.7): every node reachable, by walking producer
// edges backwards, from one of the region's results or from one of
// anchors is live. anchors holds every side-effecting node and every
// structural node that itself anchors a side effect in one of its
// subregions (I7).
func markLive(r *Region, anchors []*Node) map[*Node]bool {
	live := make(map[*Node]bool, len(r.nodes))
	var markNode func(n *Node)
	markNode = func(n *Node) {
		if live[n] {
			return
		}
		live[n] = true
		for _, in := range n.inputs {
			if pn, ok := in.producer.owner.(*Node); ok {
				markNode(pn)
			}
		}
	}
	for _, res := range r.rslts {
		if pn, ok := res.producer.owner.(*Node); ok {
			markNode(pn)
		}
	}
	for _, n := range anchors {
		markNode(n)
	}
	return live
}

// structuralAnchors reports whether n's subregion(s) still contain, after
// their own pruning, a side-effecting node or a nested structural node
// that itself anchors one — meaning n must survive even if none of its
// outputs have a live consumer.
func structuralAnchors(n *Node) bool {
	var subs []*Region
	switch kind := n.kind.(type) {
	case *GammaKind:
		subs = kind.Subregions
	case *ThetaKind:
		subs = []*Region{kind.Subregion}
	case *LambdaKind:
		subs = []*Region{kind.Subregion}
	case *DeltaKind:
		subs = []*Region{kind.Subregion}
	case *PhiKind:
		subs = []*Region{kind.Subregion}
	default:
		return false
	}
	for _, sub := range subs {
		for _, n2 := range sub.nodes {
			if n2.IsSideEffecting() {
				return true
			}
			if n2.IsStructural() && structuralAnchors(n2) {
				return true
			}
		}
	}
	return false
}

// Prune performs dead-node elimination on region and recursively on every
// subregion it structurally contains. Each structural kind first prunes
// its own subregion(s), then drops whichever of its own context/entry
// variables turned out unreferenced everywhere (I6); the outer region then
// removes any node — simple or structural — unreachable from its results
// and from every side-effecting anchor (I7).
func Prune(r *Region) {
	for _, n := range r.nodes {
		switch kind := n.kind.(type) {
		case *GammaKind:
			pruneGamma(n, kind)
		case *ThetaKind:
			pruneTheta(n, kind)
		case *LambdaKind:
			pruneLambda(n, kind)
		case *DeltaKind:
			pruneDelta(n, kind)
		case *PhiKind:
			prunePhi(n, kind)
		}
	}

	anchors := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if n.IsSideEffecting() || (n.IsStructural() && structuralAnchors(n)) {
			anchors = append(anchors, n)
		}
	}
	live := markLive(r, anchors)
	for i := len(r.nodes) - 1; i >= 0; i-- {
		if n := r.nodes[i]; !live[n] {
			r.removeNode(n)
		}
	}
}

// pruneGamma hoists invariant exit variables (spec §4.2) so their
// external consumers read the entry value directly, drops exit variables
// with no external consumer left, prunes each subregion, then drops
// entry variables that ended up unused in every subregion.
func pruneGamma(n *Node, kind *GammaKind) {
	_ = GammaHoistInvariants(n.Region(), n)
	GammaEliminateDeadExits(n)
	for _, sub := range kind.Subregions {
		Prune(sub)
	}
	entries := GammaEntryVars(n)
	for i := len(entries) - 1; i >= 0; i-- {
		dead := true
		for _, sub := range kind.Subregions {
			if sub.Arguments()[i].NumConsumers() > 0 {
				dead = false
				break
			}
		}
		if !dead {
			continue
		}
		for _, sub := range kind.Subregions {
			sub.removeArgumentAt(i)
		}
		n.removeInputAt(i + 1) // +1: inputs[0] is the predicate
	}
}

// pruneTheta prunes the loop body, lifts loop variables the body leaves
// unchanged (spec §4.3) so their output reads the input directly, then
// drops loop variables whose output has no external consumer and whose
// argument has no use in the body — such a variable's value is never
// observed anywhere.
func pruneTheta(n *Node, kind *ThetaKind) {
	Prune(kind.Subregion)
	sub := kind.Subregion
	region := n.Region()
	for i := len(n.outputs) - 1; i >= 0; i-- {
		arg := sub.Arguments()[i]
		if sub.Results()[i+1].Producer() == arg {
			_ = ThetaLiftInvariant(region, n, i)
			continue
		}
		if n.outputs[i].NumConsumers() > 0 {
			continue
		}
		if arg.NumConsumers() != 0 {
			continue
		}
		sub.removeResultAt(i + 1)
		sub.removeArgumentAt(i)
		n.removeInputAt(i)
		n.removeOutputAt(i)
	}
}

// pruneLambda prunes the function body, then drops context variables that
// ended up unreferenced in it. Formal parameters and return values are
// never dropped: a function's signature is part of its external contract.
func pruneLambda(n *Node, kind *LambdaKind) {
	Prune(kind.Subregion)
	for i := kind.NumCtxVars - 1; i >= 0; i-- {
		if kind.Subregion.Arguments()[i].NumConsumers() > 0 {
			continue
		}
		kind.Subregion.removeArgumentAt(i)
		n.removeInputAt(i)
		kind.NumCtxVars--
	}
}

// pruneDelta prunes the initializer, then drops context variables that
// ended up unreferenced in it.
func pruneDelta(n *Node, kind *DeltaKind) {
	Prune(kind.Subregion)
	for i := len(n.inputs) - 1; i >= 0; i-- {
		if kind.Subregion.Arguments()[i].NumConsumers() > 0 {
			continue
		}
		kind.Subregion.removeArgumentAt(i)
		n.removeInputAt(i)
	}
}

// prunePhi prunes the recursive group's body, drops group members that
// turned out unreachable (I6), then drops context variables that ended
// up unreferenced in it.
func prunePhi(n *Node, kind *PhiKind) {
	Prune(kind.Subregion)
	eliminateUnusedPhiMembers(n, kind)
	for i := kind.NumCtxVars - 1; i >= 0; i-- {
		if kind.Subregion.Arguments()[i].NumConsumers() > 0 {
			continue
		}
		kind.Subregion.removeArgumentAt(i)
		n.removeInputAt(i)
		kind.NumCtxVars--
	}
}

// eliminateUnusedPhiMembers drops recursion-group members whose external
// output has no consumer and whose recursion placeholder has no internal
// reference either, to a fixed point: removing a dead member can make
// another member's placeholder unreferenced in turn (e.g. a helper only
// called by another now-dead helper). A member still referenced through
// its placeholder survives even with an unused external output, since
// some other surviving member's definition still depends on it.
func eliminateUnusedPhiMembers(n *Node, kind *PhiKind) {
	for {
		removed := false
		sub := kind.Subregion
		for i := len(kind.RecursiveTypes) - 1; i >= 0; i-- {
			if n.outputs[i].NumConsumers() > 0 {
				continue
			}
			placeholder := sub.Arguments()[kind.NumCtxVars+i]
			if placeholder.NumConsumers() > 0 {
				continue
			}
			sub.removeResultAt(i)
			sub.removeArgumentAt(kind.NumCtxVars + i)
			n.removeOutputAt(i)
			kind.RecursiveTypes = append(kind.RecursiveTypes[:i], kind.RecursiveTypes[i+1:]...)
			removed = true
		}
		if !removed {
			return
		}
	}
}
