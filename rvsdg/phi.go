package rvsdg

// PhiKind is a mutually recursive group: a single subregion whose
// arguments are (context arguments…, recursion placeholders…), one
// placeholder per group member, and whose results are the actual
// definitions bound to those placeholders. The φ node exposes one output
// per group member, of the same type as its placeholder.
type PhiKind struct {
	Subregion      *Region
	NumCtxVars     int
	RecursiveTypes []Type
}

func (*PhiKind) nodeKind() {}

func (k *PhiKind) DebugString() string {
	return "phi[" + itoa(len(k.RecursiveTypes)) + "]"
}

// NewPhi creates a φ node in region closing over ctxVars, with one
// recursion variable per element of recursiveTypes. The subregion is
// created with matching arguments (ctx vars, then one placeholder
// argument per recursion variable) but no results; callers build each
// group member against PhiRecursionVars(n), using those placeholders for
// recursive references, then call PhiFinalize.
func NewPhi(region *Region, ctxVars []*OutputPort, recursiveTypes []Type) (*Node, error) {
	for _, v := range ctxVars {
		if v.Region() != region {
			return nil, &RegionMismatchError{Context: "NewPhi"}
		}
	}

	n := &Node{region: region}
	kind := &PhiKind{
		NumCtxVars:     len(ctxVars),
		RecursiveTypes: recursiveTypes,
	}
	n.kind = kind

	n.inputs = make([]*InputPort, len(ctxVars))
	for i, v := range ctxVars {
		n.inputs[i] = newInputPort(v.Type(), n, i, v)
	}
	n.outputs = make([]*OutputPort, len(recursiveTypes))
	for i, t := range recursiveTypes {
		n.outputs[i] = newOutputPort(t, n, i)
	}

	sub := newRegion(region.graph, n)
	for _, v := range ctxVars {
		sub.AddArgument(v.Type())
	}
	for _, t := range recursiveTypes {
		sub.AddArgument(t)
	}
	kind.Subregion = sub

	region.addStructuralNode(n)
	return n, nil
}

// PhiCtxVars returns the φ's context-variable inputs.
func PhiCtxVars(n *Node) []*InputPort { return n.inputs }

// PhiRecursionVars returns the subregion arguments standing in for each
// group member's own (possibly self- or mutually-referential) value.
func PhiRecursionVars(n *Node) []*OutputPort {
	kind := n.kind.(*PhiKind)
	return kind.Subregion.Arguments()[kind.NumCtxVars:]
}

// PhiFinalize binds each recursion variable to its actual definition,
// which must live in the subregion and match that variable's declared
// type. len(values) must equal the φ's group size.
func PhiFinalize(n *Node, values []*OutputPort) error {
	kind, ok := n.kind.(*PhiKind)
	if !ok {
		return &InvariantViolationError{Context: "PhiFinalize", Detail: "node is not a phi"}
	}
	if len(values) != len(kind.RecursiveTypes) {
		return &ArityMismatchError{Context: "PhiFinalize", Expected: len(kind.RecursiveTypes), Got: len(values)}
	}
	for i, v := range values {
		if _, err := kind.Subregion.AddResult(kind.RecursiveTypes[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (k *PhiKind) copyInto(dst *Region, n *Node, resolve func(*OutputPort) *OutputPort) (*Node, error) {
	ctxVars := make([]*OutputPort, len(n.inputs))
	for i, in := range n.inputs {
		ctxVars[i] = resolve(in.producer)
	}
	newNode, err := NewPhi(dst, ctxVars, k.RecursiveTypes)
	if err != nil {
		return nil, err
	}
	newKind := newNode.kind.(*PhiKind)

	subSubst := make(map[*OutputPort]*OutputPort, len(k.Subregion.Arguments()))
	for i, arg := range k.Subregion.Arguments() {
		subSubst[arg] = newKind.Subregion.Arguments()[i]
	}
	m, err := copyRegionInto(newKind.Subregion, k.Subregion, subSubst)
	if err != nil {
		return nil, err
	}

	values := make([]*OutputPort, len(k.RecursiveTypes))
	for i := range k.RecursiveTypes {
		values[i] = resolveFrom(m, k.Subregion.Results()[i].Producer())
	}
	if err := PhiFinalize(newNode, values); err != nil {
		return nil, err
	}
	return newNode, nil
}
