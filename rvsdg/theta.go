package rvsdg

// ThetaKind is a tail-controlled loop: one subregion, one argument and
// one result per loop variable plus a leading Control(2) predicate result
// (1 = continue, 0 = exit).
type ThetaKind struct {
	Subregion *Region
}

func (*ThetaKind) nodeKind() {}

func (k *ThetaKind) DebugString() string { return "theta" }

// NewTheta creates a θ node in region with one loop variable per element
// of initial, initialized from those values. The subregion is created
// with matching arguments but no results; callers build the loop body
// against Subregion.Arguments() and then call ThetaFinalize.
func NewTheta(region *Region, initial []*OutputPort) (*Node, error) {
	for _, v := range initial {
		if v.Region() != region {
			return nil, &RegionMismatchError{Context: "NewTheta"}
		}
	}

	n := &Node{region: region}
	kind := &ThetaKind{}
	n.kind = kind

	n.inputs = make([]*InputPort, len(initial))
	n.outputs = make([]*OutputPort, len(initial))
	for i, v := range initial {
		n.inputs[i] = newInputPort(v.Type(), n, i, v)
		n.outputs[i] = newOutputPort(v.Type(), n, i)
	}

	sub := newRegion(region.graph, n)
	for _, v := range initial {
		sub.AddArgument(v.Type())
	}
	kind.Subregion = sub

	region.addStructuralNode(n)
	return n, nil
}

// ThetaFinalize declares the subregion's tail: predicate must be a
// Control(2) value computed in the subregion, and next[i] is the value
// loop variable i takes into the next iteration (or the final output
// value, on exit). len(next) must equal the θ's loop-variable count.
func ThetaFinalize(n *Node, predicate *OutputPort, next []*OutputPort) error {
	kind, ok := n.kind.(*ThetaKind)
	if !ok {
		return &InvariantViolationError{Context: "ThetaFinalize", Detail: "node is not a theta"}
	}
	sub := kind.Subregion
	if len(next) != len(n.inputs) {
		return &ArityMismatchError{Context: "ThetaFinalize", Expected: len(n.inputs), Got: len(next)}
	}
	ctl := ControlType{NChoices: 2}
	if predicate.Region() != sub || !predicate.Type().Equals(ctl) {
		return &TypeMismatchError{Context: "ThetaFinalize", Expected: ctl, Got: predicate.Type()}
	}
	for i, v := range next {
		if v.Region() != sub {
			return &RegionMismatchError{Context: "ThetaFinalize"}
		}
		if !v.Type().Equals(n.inputs[i].Type()) {
			return &TypeMismatchError{Context: "ThetaFinalize", Expected: n.inputs[i].Type(), Got: v.Type()}
		}
	}
	if _, err := sub.AddResult(ctl, predicate); err != nil {
		return err
	}
	for i, v := range next {
		if _, err := sub.AddResult(n.inputs[i].Type(), v); err != nil {
			return err
		}
	}
	return nil
}

// ThetaPredicate returns the θ's predicate result, or nil if the node has
// not yet been finalized.
func ThetaPredicate(n *Node) *InputPort {
	kind := n.kind.(*ThetaKind)
	if len(kind.Subregion.Results()) == 0 {
		return nil
	}
	return kind.Subregion.Results()[0]
}

// ThetaLiftInvariant rewrites loop variable i, whose subregion result is
// exactly its subregion argument (unchanged by the body), so that the θ's
// i'th output is read directly from the θ's i'th input, bypassing the
// loop (spec §4.3). When the argument has no other use in the body, the
// loop variable's plumbing (input, output, argument, result) is deleted
// outright; otherwise the argument is left in place for the body's other
// uses, which remains correct because the value never actually changes.
func ThetaLiftInvariant(region *Region, n *Node, i int) error {
	kind, ok := n.kind.(*ThetaKind)
	if !ok {
		return &InvariantViolationError{Context: "ThetaLiftInvariant", Detail: "node is not a theta"}
	}
	sub := kind.Subregion
	arg := sub.Arguments()[i]
	res := sub.Results()[i+1]
	if res.Producer() != arg {
		return &InvariantViolationError{Context: "ThetaLiftInvariant", Detail: "loop variable is not invariant"}
	}

	out := n.outputs[i]
	originalInput := n.inputs[i].Producer()
	for _, consumer := range out.Consumers() {
		if err := region.Divert(consumer, originalInput); err != nil {
			return err
		}
	}

	if arg.NumConsumers() == 1 {
		sub.removeResultAt(i + 1)
		sub.removeArgumentAt(i)
		n.removeInputAt(i)
		n.removeOutputAt(i)
	}
	return nil
}

// copyInto duplicates a θ node (and its subregion) into dst.
func (k *ThetaKind) copyInto(dst *Region, n *Node, resolve func(*OutputPort) *OutputPort) (*Node, error) {
	initial := make([]*OutputPort, len(n.inputs))
	for i, in := range n.inputs {
		initial[i] = resolve(in.producer)
	}
	newNode, err := NewTheta(dst, initial)
	if err != nil {
		return nil, err
	}
	newKind := newNode.kind.(*ThetaKind)

	subSubst := make(map[*OutputPort]*OutputPort, len(initial))
	for i, arg := range k.Subregion.Arguments() {
		subSubst[arg] = newKind.Subregion.Arguments()[i]
	}
	m, err := copyRegionInto(newKind.Subregion, k.Subregion, subSubst)
	if err != nil {
		return nil, err
	}

	predicate := resolveFrom(m, k.Subregion.Results()[0].Producer())
	next := make([]*OutputPort, len(initial))
	for i := range initial {
		next[i] = resolveFrom(m, k.Subregion.Results()[i+1].Producer())
	}
	if err := ThetaFinalize(newNode, predicate, next); err != nil {
		return nil, err
	}
	return newNode, nil
}
