package ops

import (
	"strconv"

	"github.com/halvorlinder/jlm/rvsdg"
)

// IntBinaryKind discriminates the fixed-width integer arithmetic ops.
type IntBinaryKind uint8

const (
	IntAdd IntBinaryKind = iota
	IntSub
	IntMul
)

func (k IntBinaryKind) String() string {
	switch k {
	case IntAdd:
		return "add"
	case IntSub:
		return "sub"
	case IntMul:
		return "mul"
	default:
		return "intbinop?"
	}
}

// IntBinaryOp is a fixed-width integer arithmetic operator implementing
// rvsdg.BinaryOperator, with the constant-fold and neutral-element
// reductions of the binary catalogue (spec §4.5.2).
type IntBinaryOp struct {
	Kind  IntBinaryKind
	Width uint32
}

func (op *IntBinaryOp) OperandTypes() []rvsdg.Type {
	t := rvsdg.BitsType{Width: op.Width}
	return []rvsdg.Type{t, t}
}

func (op *IntBinaryOp) ResultTypes() []rvsdg.Type {
	return []rvsdg.Type{rvsdg.BitsType{Width: op.Width}}
}

func (op *IntBinaryOp) Equals(other rvsdg.Operator) bool {
	o, ok := other.(*IntBinaryOp)
	return ok && o.Kind == op.Kind && o.Width == op.Width
}

func (op *IntBinaryOp) Copy() rvsdg.Operator {
	return &IntBinaryOp{Kind: op.Kind, Width: op.Width}
}

func (op *IntBinaryOp) DebugString() string {
	return op.Kind.String() + strconv.FormatUint(uint64(op.Width), 10)
}

// Flags reports add/mul as associative and commutative; sub as neither,
// matching ordinary fixed-width integer arithmetic (wraparound makes sub
// non-associative in the presence of reordering across overflow).
func (op *IntBinaryOp) Flags() rvsdg.BinaryFlags {
	switch op.Kind {
	case IntAdd, IntMul:
		return rvsdg.FlagAssociative | rvsdg.FlagCommutative
	default:
		return rvsdg.FlagNone
	}
}

func (op *IntBinaryOp) CanReduceOperandPair(a, b *rvsdg.OutputPort) rvsdg.ReductionPath {
	av, aConst := AsIntConstant(a)
	bv, bConst := AsIntConstant(b)
	if aConst && bConst {
		return rvsdg.PathConstants
	}
	switch op.Kind {
	case IntAdd:
		if aConst && av == 0 {
			return rvsdg.PathLNeutral
		}
		if bConst && bv == 0 {
			return rvsdg.PathRNeutral
		}
	case IntSub:
		if bConst && bv == 0 {
			return rvsdg.PathRNeutral
		}
	case IntMul:
		if aConst && av == 1 {
			return rvsdg.PathLNeutral
		}
		if bConst && bv == 1 {
			return rvsdg.PathRNeutral
		}
	}
	return rvsdg.PathNone
}

func (op *IntBinaryOp) ReduceOperandPair(region *rvsdg.Region, path rvsdg.ReductionPath, a, b *rvsdg.OutputPort) *rvsdg.OutputPort {
	switch path {
	case rvsdg.PathConstants:
		av, _ := AsIntConstant(a)
		bv, _ := AsIntConstant(b)
		return NewIntConstant(region, op.Width, op.apply(av, bv))
	case rvsdg.PathLNeutral:
		// a is the neutral element (0 for add, 1 for mul): result is b.
		return b
	case rvsdg.PathRNeutral:
		// b is the neutral element: result is a.
		return a
	default:
		return nil
	}
}

func (op *IntBinaryOp) apply(a, b int64) int64 {
	switch op.Kind {
	case IntAdd:
		return a + b
	case IntSub:
		return a - b
	case IntMul:
		return a * b
	default:
		return 0
	}
}
