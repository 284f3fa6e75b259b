package rvsdg

// DeltaKind is a global data definition: a single subregion, closing over
// context variables, whose sole result is the data's initial value. The δ
// node's own output is a pointer (PointerType) to that value.
type DeltaKind struct {
	Subregion *Region
	Name      string
	Linkage   Linkage
	ValueType Type
	Constant  bool
}

func (*DeltaKind) nodeKind() {}

func (k *DeltaKind) DebugString() string { return "delta:" + k.Name }

// NewDelta creates a δ node in region closing over ctxVars, defining a
// global of type valueType. The subregion is created with matching
// arguments but no result; callers build the initializer and then call
// DeltaFinalize.
func NewDelta(region *Region, name string, linkage Linkage, constant bool, ctxVars []*OutputPort, valueType Type) (*Node, error) {
	for _, v := range ctxVars {
		if v.Region() != region {
			return nil, &RegionMismatchError{Context: "NewDelta"}
		}
	}

	n := &Node{region: region}
	kind := &DeltaKind{
		Name:      name,
		Linkage:   linkage,
		ValueType: valueType,
		Constant:  constant,
	}
	n.kind = kind

	n.inputs = make([]*InputPort, len(ctxVars))
	for i, v := range ctxVars {
		n.inputs[i] = newInputPort(v.Type(), n, i, v)
	}
	n.outputs = []*OutputPort{newOutputPort(PointerType{}, n, 0)}

	sub := newRegion(region.graph, n)
	for _, v := range ctxVars {
		sub.AddArgument(v.Type())
	}
	kind.Subregion = sub

	region.addStructuralNode(n)
	return n, nil
}

// DeltaCtxVars returns the δ's context-variable inputs.
func DeltaCtxVars(n *Node) []*InputPort { return n.inputs }

// DeltaFinalize declares the global's initial value, which must live in
// the subregion and match the declared value type.
func DeltaFinalize(n *Node, value *OutputPort) error {
	kind, ok := n.kind.(*DeltaKind)
	if !ok {
		return &InvariantViolationError{Context: "DeltaFinalize", Detail: "node is not a delta"}
	}
	_, err := kind.Subregion.AddResult(kind.ValueType, value)
	return err
}

func (k *DeltaKind) copyInto(dst *Region, n *Node, resolve func(*OutputPort) *OutputPort) (*Node, error) {
	ctxVars := make([]*OutputPort, len(n.inputs))
	for i, in := range n.inputs {
		ctxVars[i] = resolve(in.producer)
	}
	newNode, err := NewDelta(dst, k.Name, k.Linkage, k.Constant, ctxVars, k.ValueType)
	if err != nil {
		return nil, err
	}
	newKind := newNode.kind.(*DeltaKind)

	subSubst := make(map[*OutputPort]*OutputPort, len(k.Subregion.Arguments()))
	for i, arg := range k.Subregion.Arguments() {
		subSubst[arg] = newKind.Subregion.Arguments()[i]
	}
	m, err := copyRegionInto(newKind.Subregion, k.Subregion, subSubst)
	if err != nil {
		return nil, err
	}

	value := resolveFrom(m, k.Subregion.Results()[0].Producer())
	if err := DeltaFinalize(newNode, value); err != nil {
		return nil, err
	}
	return newNode, nil
}
