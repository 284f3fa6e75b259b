package rvsdg

// ReductionOrder controls the order in which ReduceFlattened applies
// operand-pair reductions within a flattened n-ary node.
type ReductionOrder int

const (
	// ReductionLinear folds operands left to right.
	ReductionLinear ReductionOrder = iota
	// ReductionParallel is accepted by ReduceFlattened but reduces in the
	// same left-to-right order as ReductionLinear; operands are not paired
	// in a balanced tree.
	ReductionParallel
)

// FlattenedBinaryOp is a virtual n-ary node wrapping a binary operator,
// admissible only when the wrapped operator is associative (I5). It
// represents a right-leaning chain a ⊕ (b ⊕ (c ⊕ ...)) flattened into a
// single n-ary application.
type FlattenedBinaryOp struct {
	Op    BinaryOperator
	Arity int
}

// NewFlattenedBinaryOp constructs a FlattenedBinaryOp, rejecting
// non-associative wrapped operators (I5 / UnreducibleOperatorError).
func NewFlattenedBinaryOp(op BinaryOperator, arity int) (*FlattenedBinaryOp, error) {
	if !IsAssociative(op) {
		return nil, &UnreducibleOperatorError{Operator: op}
	}
	if arity < 1 {
		return nil, &ArityMismatchError{Context: "NewFlattenedBinaryOp", Expected: 1, Got: arity}
	}
	return &FlattenedBinaryOp{Op: op, Arity: arity}, nil
}

func (f *FlattenedBinaryOp) OperandTypes() []Type {
	t := f.Op.OperandTypes()[0]
	out := make([]Type, f.Arity)
	for i := range out {
		out[i] = t
	}
	return out
}

func (f *FlattenedBinaryOp) ResultTypes() []Type {
	return []Type{f.Op.ResultTypes()[0]}
}

func (f *FlattenedBinaryOp) Equals(other Operator) bool {
	o, ok := other.(*FlattenedBinaryOp)
	return ok && o.Arity == f.Arity && o.Op.Equals(f.Op)
}

func (f *FlattenedBinaryOp) Copy() Operator {
	return &FlattenedBinaryOp{Op: f.Op.Copy().(BinaryOperator), Arity: f.Arity}
}

func (f *FlattenedBinaryOp) DebugString() string {
	return f.Op.DebugString() + "f/" + itoa(f.Arity)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// FlattenedBinaryNormalForm is the normal form for FlattenedBinaryOp node
// classes: it applies CSE and, when Reorder is enabled and the wrapped
// operator is commutative, canonicalizes operand order before
// construction so that equal flattened expressions up to commutation
// become literally equal (exposing further CSE).
type FlattenedBinaryNormalForm struct {
	BaseNormalForm
}

// NewFlattenedBinaryNormalForm returns a FlattenedBinaryNormalForm with
// default toggles.
func NewFlattenedBinaryNormalForm() *FlattenedBinaryNormalForm {
	return &FlattenedBinaryNormalForm{BaseNormalForm: NewBaseNormalForm()}
}

func (nf *FlattenedBinaryNormalForm) NormalizedCreate(region *Region, op Operator, operands []*OutputPort) ([]*OutputPort, error) {
	fop, ok := op.(*FlattenedBinaryOp)
	if !ok {
		n := region.createSimpleNode(op, operands)
		return n.Outputs(), nil
	}

	work := append([]*OutputPort(nil), operands...)
	if nf.Mutable() && nf.Reorder() && IsCommutative(fop.Op) {
		reorderStable(work)
	}

	if nf.Mutable() && nf.CSE() {
		if existing := region.findCSE(fop, work); existing != nil {
			return existing.Outputs(), nil
		}
	}

	n := region.createSimpleNode(fop, work)
	return n.Outputs(), nil
}

func reorderStable(ports []*OutputPort) {
	// insertion sort: region sizes are small and this keeps the routine
	// allocation-free and stable, matching operandLess's total order.
	for i := 1; i < len(ports); i++ {
		for j := i; j > 0 && operandLess(ports[j], ports[j-1]); j-- {
			ports[j], ports[j-1] = ports[j-1], ports[j]
		}
	}
}

// NewFlattenedBinary builds (or reuses, via CSE) a flattened n-ary node
// for op over operands, consulting the FlattenedBinaryOp's registered
// normal form.
func NewFlattenedBinary(region *Region, op BinaryOperator, operands []*OutputPort) (*OutputPort, error) {
	fop, err := NewFlattenedBinaryOp(op, len(operands))
	if err != nil {
		return nil, err
	}
	if err := region.validateOperands("NewFlattenedBinary", fop.OperandTypes(), operands); err != nil {
		return nil, err
	}
	nf := region.graph.normalForms.lookup(fop)
	outs, err := nf.NormalizedCreate(region, fop, operands)
	if err != nil {
		return nil, err
	}
	return outs[0], nil
}

// ReduceFlattened repeatedly applies op.CanReduceOperandPair /
// ReduceOperandPair to adjacent operands, always collapsing the leftmost
// reducible pair first whatever order is given, until no further pair
// reduces, then
// materializes whatever remains: a single operand (arity 1), a plain
// binary node (arity 2), or a new flattened node (arity > 2).
func ReduceFlattened(region *Region, op BinaryOperator, operands []*OutputPort, order ReductionOrder) (*OutputPort, error) {
	if !IsAssociative(op) {
		return nil, &UnreducibleOperatorError{Operator: op}
	}
	work := append([]*OutputPort(nil), operands...)

	reduceOnce := func() bool {
		switch order {
		case ReductionParallel:
			return reducePass(region, op, &work, 0)
		default:
			return reducePass(region, op, &work, 1)
		}
	}
	for reduceOnce() {
	}

	switch len(work) {
	case 0:
		return nil, &InvariantViolationError{Context: "ReduceFlattened", Detail: "reduction consumed all operands"}
	case 1:
		return work[0], nil
	case 2:
		outs, err := region.AddNode(op, work)
		if err != nil {
			return nil, err
		}
		return outs[0], nil
	default:
		return NewFlattenedBinary(region, op, work)
	}
}

// reducePass makes a single left-to-right sweep over *work, collapsing the
// first reducible pair it finds; the stride argument is ignored, so both
// reduction orders behave the same. Returns true if it collapsed a pair
// (caller loops until it returns false).
func reducePass(region *Region, op BinaryOperator, work *[]*OutputPort, _ int) bool {
	ops := *work
	for i := 0; i+1 < len(ops); i++ {
		path := op.CanReduceOperandPair(ops[i], ops[i+1])
		if path == PathNone {
			continue
		}
		replaced := op.ReduceOperandPair(region, path, ops[i], ops[i+1])
		if replaced == nil {
			continue
		}
		next := make([]*OutputPort, 0, len(ops)-1)
		next = append(next, ops[:i]...)
		next = append(next, replaced)
		next = append(next, ops[i+2:]...)
		*work = next
		return true
	}
	return false
}
