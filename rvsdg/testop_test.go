package rvsdg

// testOp is a minimal Operator for this package's own tests. rvsdg's test
// files cannot import ops/ (ops imports rvsdg, so that would be a cycle),
// so exercising the node/region API here needs its own tiny stand-in
// rather than a real domain operator.
type testOp struct {
	tag          string
	operandTypes []Type
	resultTypes  []Type
	sideEffect   bool
}

func (o *testOp) OperandTypes() []Type { return o.operandTypes }
func (o *testOp) ResultTypes() []Type  { return o.resultTypes }

func (o *testOp) Equals(other Operator) bool {
	t, ok := other.(*testOp)
	return ok && t.tag == o.tag
}

func (o *testOp) Copy() Operator {
	return &testOp{tag: o.tag, operandTypes: o.operandTypes, resultTypes: o.resultTypes, sideEffect: o.sideEffect}
}

func (o *testOp) DebugString() string { return "test:" + o.tag }

func (o *testOp) IsSideEffecting() bool { return o.sideEffect }

// unaryPassthrough returns a testOp of type t -> t, tagged so distinct
// calls compare unequal under Equals.
func unaryPassthrough(tag string, t Type) *testOp {
	return &testOp{tag: tag, operandTypes: []Type{t}, resultTypes: []Type{t}}
}
