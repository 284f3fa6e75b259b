package rvsdg

// LambdaKind is a function definition: a single subregion whose arguments
// are (context arguments…, formal parameters…) and whose results are the
// function's return values.
type LambdaKind struct {
	Subregion  *Region
	Name       string
	Linkage    Linkage
	NumCtxVars int
	ParamTypes []Type
	RetTypes   []Type
}

func (*LambdaKind) nodeKind() {}

func (k *LambdaKind) DebugString() string { return "lambda:" + k.Name }

// NewLambda creates a λ node in region closing over ctxVars, with the
// given formal parameter and result types. The subregion is created with
// matching arguments but no results; callers build the function body
// against LambdaParams(n) and then call LambdaFinalize.
func NewLambda(region *Region, name string, linkage Linkage, ctxVars []*OutputPort, paramTypes, resultTypes []Type) (*Node, error) {
	for _, v := range ctxVars {
		if v.Region() != region {
			return nil, &RegionMismatchError{Context: "NewLambda"}
		}
	}

	n := &Node{region: region}
	kind := &LambdaKind{
		Name:       name,
		Linkage:    linkage,
		NumCtxVars: len(ctxVars),
		ParamTypes: paramTypes,
		RetTypes:   resultTypes,
	}
	n.kind = kind

	n.inputs = make([]*InputPort, len(ctxVars))
	for i, v := range ctxVars {
		n.inputs[i] = newInputPort(v.Type(), n, i, v)
	}

	fnType := FunctionType{Args: paramTypes, Results: resultTypes}
	n.outputs = []*OutputPort{newOutputPort(fnType, n, 0)}

	sub := newRegion(region.graph, n)
	for _, v := range ctxVars {
		sub.AddArgument(v.Type())
	}
	for _, t := range paramTypes {
		sub.AddArgument(t)
	}
	kind.Subregion = sub

	region.addStructuralNode(n)
	return n, nil
}

// LambdaCtxVars returns the λ's context-variable inputs.
func LambdaCtxVars(n *Node) []*InputPort { return n.inputs }

// LambdaParams returns the subregion arguments corresponding to the
// function's formal parameters (i.e. excluding context arguments).
func LambdaParams(n *Node) []*OutputPort {
	kind := n.kind.(*LambdaKind)
	return kind.Subregion.Arguments()[kind.NumCtxVars:]
}

// LambdaFinalize declares the function's return values, which must live
// in the subregion and match the declared result types.
func LambdaFinalize(n *Node, results []*OutputPort) error {
	kind, ok := n.kind.(*LambdaKind)
	if !ok {
		return &InvariantViolationError{Context: "LambdaFinalize", Detail: "node is not a lambda"}
	}
	if len(results) != len(kind.RetTypes) {
		return &ArityMismatchError{Context: "LambdaFinalize", Expected: len(kind.RetTypes), Got: len(results)}
	}
	for i, r := range results {
		if _, err := kind.Subregion.AddResult(kind.RetTypes[i], r); err != nil {
			return err
		}
	}
	return nil
}

func (k *LambdaKind) copyInto(dst *Region, n *Node, resolve func(*OutputPort) *OutputPort) (*Node, error) {
	ctxVars := make([]*OutputPort, len(n.inputs))
	for i, in := range n.inputs {
		ctxVars[i] = resolve(in.producer)
	}
	newNode, err := NewLambda(dst, k.Name, k.Linkage, ctxVars, k.ParamTypes, k.RetTypes)
	if err != nil {
		return nil, err
	}
	newKind := newNode.kind.(*LambdaKind)

	subSubst := make(map[*OutputPort]*OutputPort, len(k.Subregion.Arguments()))
	for i, arg := range k.Subregion.Arguments() {
		subSubst[arg] = newKind.Subregion.Arguments()[i]
	}
	m, err := copyRegionInto(newKind.Subregion, k.Subregion, subSubst)
	if err != nil {
		return nil, err
	}

	results := make([]*OutputPort, len(k.RetTypes))
	for i := range k.RetTypes {
		results[i] = resolveFrom(m, k.Subregion.Results()[i].Producer())
	}
	if err := LambdaFinalize(newNode, results); err != nil {
		return nil, err
	}
	return newNode, nil
}
