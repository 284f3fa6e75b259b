package rvsdg

// GammaKind is a predicated k-way choice: it owns exactly k subregions,
// all with identical argument and result signatures, and picks one's
// outputs to realize at runtime based on a Control(k) predicate.
type GammaKind struct {
	Subregions []*Region
}

func (*GammaKind) nodeKind() {}

func (k *GammaKind) DebugString() string {
	return "gamma[" + itoa(len(k.Subregions)) + "]"
}

// NewGamma creates a γ node in region, predicated on predicate (which must
// be a ControlType(k) value), with entries passed as an entry value into
// every one of the k subregions. The node starts with zero exit
// variables; callers add them with GammaAddExitVar.
func NewGamma(region *Region, predicate *OutputPort, entries []*OutputPort, k int) (*Node, error) {
	if k < 2 {
		return nil, &ArityMismatchError{Context: "NewGamma", Expected: 2, Got: k}
	}
	ctl, ok := predicate.Type().(ControlType)
	if !ok || int(ctl.NChoices) != k {
		return nil, &TypeMismatchError{Context: "NewGamma", Expected: ControlType{NChoices: uint32(k)}, Got: predicate.Type()}
	}
	if predicate.Region() != region {
		return nil, &RegionMismatchError{Context: "NewGamma"}
	}
	for _, e := range entries {
		if e.Region() != region {
			return nil, &RegionMismatchError{Context: "NewGamma"}
		}
	}

	n := &Node{region: region}
	kind := &GammaKind{Subregions: make([]*Region, k)}
	n.kind = kind

	n.inputs = make([]*InputPort, 0, 1+len(entries))
	n.inputs = append(n.inputs, newInputPort(predicate.Type(), n, 0, predicate))
	for i, e := range entries {
		n.inputs = append(n.inputs, newInputPort(e.Type(), n, i+1, e))
	}
	n.outputs = nil

	for i := 0; i < k; i++ {
		sub := newRegion(region.graph, n)
		for _, e := range entries {
			sub.AddArgument(e.Type())
		}
		kind.Subregions[i] = sub
	}

	region.addStructuralNode(n)
	return n, nil
}

// GammaEntryVars returns the entry-value inputs (excluding the
// predicate), i.e. node.Inputs()[1:].
func GammaEntryVars(n *Node) []*InputPort {
	return n.inputs[1:]
}

// GammaPredicate returns the γ node's control-token input.
func GammaPredicate(n *Node) *InputPort { return n.inputs[0] }

// GammaAddExitVar adds a new exit variable: for each subregion i,
// originsPerSubregion[i] becomes that subregion's next result, and the
// values are unified at a new γ output. All origins must have the same
// type and must live in their respective subregion.
func GammaAddExitVar(n *Node, originsPerSubregion []*OutputPort) (*OutputPort, error) {
	kind, ok := n.kind.(*GammaKind)
	if !ok {
		return nil, &InvariantViolationError{Context: "GammaAddExitVar", Detail: "node is not a gamma"}
	}
	if len(originsPerSubregion) != len(kind.Subregions) {
		return nil, &ArityMismatchError{Context: "GammaAddExitVar", Expected: len(kind.Subregions), Got: len(originsPerSubregion)}
	}
	typ := originsPerSubregion[0].Type()
	for i, sub := range kind.Subregions {
		origin := originsPerSubregion[i]
		if origin.Region() != sub {
			return nil, &RegionMismatchError{Context: "GammaAddExitVar"}
		}
		if !origin.Type().Equals(typ) {
			return nil, &TypeMismatchError{Context: "GammaAddExitVar", Expected: typ, Got: origin.Type()}
		}
	}
	for i, sub := range kind.Subregions {
		if _, err := sub.AddResult(typ, originsPerSubregion[i]); err != nil {
			return nil, err
		}
	}
	out := newOutputPort(typ, n, len(n.outputs))
	n.outputs = append(n.outputs, out)
	return out, nil
}

// GammaEliminateDeadExits removes every exit variable with no external
// consumers, along with its corresponding result slot in every subregion,
// renumbering remaining exit variables to preserve contiguity (I6).
func GammaEliminateDeadExits(n *Node) {
	kind, ok := n.kind.(*GammaKind)
	if !ok {
		return
	}
	for j := len(n.outputs) - 1; j >= 0; j-- {
		if n.outputs[j].NumConsumers() > 0 {
			continue
		}
		n.removeOutputAt(j)
		for _, sub := range kind.Subregions {
			sub.removeResultAt(j)
		}
	}
}

// GammaHoistInvariants rewrites every exit variable whose value is the
// same entry argument in every subregion into a direct use of that entry
// value, replacing the γ output's consumers to read the γ's own input
// instead (invariance hoisting, spec §4.2). It does not remove the now
// possibly-dead exit var; run GammaEliminateDeadExits afterwards (or let
// Prune do it) to drop it.
func GammaHoistInvariants(region *Region, n *Node) error {
	kind, ok := n.kind.(*GammaKind)
	if !ok {
		return &InvariantViolationError{Context: "GammaHoistInvariants", Detail: "node is not a gamma"}
	}
	entries := GammaEntryVars(n)
	for j, out := range n.outputs {
		argIdx, uniform := gammaExitArgIndex(kind, j)
		if !uniform {
			continue
		}
		replacement := entries[argIdx].Producer()
		for _, consumer := range out.Consumers() {
			if err := region.Divert(consumer, replacement); err != nil {
				return err
			}
		}
	}
	return nil
}

// gammaExitArgIndex reports, for exit variable j, the single entry-var
// index that every subregion's j'th result binds straight through to, if
// any.
func gammaExitArgIndex(kind *GammaKind, j int) (argIdx int, uniform bool) {
	first := -1
	for _, sub := range kind.Subregions {
		producer := sub.Results()[j].Producer()
		argOwnerRegion, isArg := producer.owner.(*Region)
		if !isArg || argOwnerRegion != sub {
			return 0, false
		}
		if first == -1 {
			first = producer.index
		} else if producer.index != first {
			return 0, false
		}
	}
	if first == -1 {
		return 0, false
	}
	return first, true
}

// copyInto duplicates a γ node (and all k subregions) into dst, used by
// copyRegionInto and, transitively, by GammaFoldConstantPredicate when the
// inlined subregion itself contains nested γ/θ/λ/δ/φ nodes.
func (k *GammaKind) copyInto(dst *Region, n *Node, resolve func(*OutputPort) *OutputPort) (*Node, error) {
	predicate := resolve(n.inputs[0].producer)
	entries := make([]*OutputPort, len(n.inputs)-1)
	for i, in := range n.inputs[1:] {
		entries[i] = resolve(in.producer)
	}
	newNode, err := NewGamma(dst, predicate, entries, len(k.Subregions))
	if err != nil {
		return nil, err
	}
	newKind := newNode.kind.(*GammaKind)

	subMaps := make([]map[*OutputPort]*OutputPort, len(k.Subregions))
	for i, sub := range k.Subregions {
		subSubst := make(map[*OutputPort]*OutputPort, len(entries))
		for j, arg := range sub.Arguments() {
			subSubst[arg] = entries[j]
		}
		m, err := copyRegionInto(newKind.Subregions[i], sub, subSubst)
		if err != nil {
			return nil, err
		}
		subMaps[i] = m
	}

	for j := 0; j < len(n.outputs); j++ {
		origins := make([]*OutputPort, len(k.Subregions))
		for i, sub := range k.Subregions {
			origins[i] = resolveFrom(subMaps[i], sub.Results()[j].Producer())
		}
		if _, err := GammaAddExitVar(newNode, origins); err != nil {
			return nil, err
		}
	}
	return newNode, nil
}

// GammaFoldConstantPredicate inlines subregion choice's body directly
// into region when the γ's predicate is known at compile time, replacing
// every exit variable's consumers with the chosen subregion's mapped
// result and leaving the (now dead) γ node for pruning. copyRegionInto
// performs the actual subregion-to-region node copy (see copy.go); choice must be
// in [0, k).
func GammaFoldConstantPredicate(region *Region, n *Node, choice int) error {
	kind, ok := n.kind.(*GammaKind)
	if !ok {
		return &InvariantViolationError{Context: "GammaFoldConstantPredicate", Detail: "node is not a gamma"}
	}
	if choice < 0 || choice >= len(kind.Subregions) {
		return &ArityMismatchError{Context: "GammaFoldConstantPredicate", Expected: len(kind.Subregions), Got: choice}
	}
	sub := kind.Subregions[choice]
	entries := GammaEntryVars(n)

	substitution := make(map[*OutputPort]*OutputPort, len(entries))
	for i, arg := range sub.Arguments() {
		substitution[arg] = entries[i].Producer()
	}

	copied, err := copyRegionInto(region, sub, substitution)
	if err != nil {
		return err
	}

	for j, out := range n.outputs {
		mapped := copied[sub.Results()[j].Producer()]
		for _, consumer := range out.Consumers() {
			if err := region.Divert(consumer, mapped); err != nil {
				return err
			}
		}
	}
	return nil
}
