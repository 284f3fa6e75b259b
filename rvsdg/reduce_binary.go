package rvsdg

// BinaryNormalForm is the normal form registered for a BinaryOperator
// class. On construction it applies the generic CSE reduction and the
// operator's own operand-pair reduction (spec §4.5.2); it does not itself
// flatten — flattening chains of binary nodes into a FlattenedBinaryOp is
// a pass (see passes.Flatten), though the flattened form's own normal
// form lives alongside this one in flattened.go since both are part of
// the core normal-form framework.
type BinaryNormalForm struct {
	BaseNormalForm
}

// NewBinaryNormalForm returns a BinaryNormalForm with default toggles.
func NewBinaryNormalForm() *BinaryNormalForm {
	return &BinaryNormalForm{BaseNormalForm: NewBaseNormalForm()}
}

func (nf *BinaryNormalForm) NormalizedCreate(region *Region, op Operator, operands []*OutputPort) ([]*OutputPort, error) {
	binOp, ok := op.(BinaryOperator)
	if !ok {
		// Registered against the wrong operator kind; fall back to plain
		// construction rather than failing a reduction (reductions must
		// never fail per spec §4.8).
		n := region.createSimpleNode(op, operands)
		return n.Outputs(), nil
	}

	if nf.Mutable() {
		if nf.Reducible() {
			if path := binOp.CanReduceOperandPair(operands[0], operands[1]); path != PathNone {
				reduced := binOp.ReduceOperandPair(region, path, operands[0], operands[1])
				if reduced != nil {
					return []*OutputPort{reduced}, nil
				}
			}
		}
		if nf.CSE() {
			if existing := region.findCSE(op, operands); existing != nil {
				return existing.Outputs(), nil
			}
		}
	}

	n := region.createSimpleNode(op, operands)
	return n.Outputs(), nil
}

// operandID returns a stable sort key for operand reordering (spec
// §4.5.2 "Reorder"): operands produced by earlier-created nodes in this
// region sort first; region arguments (which have no producing node) sort
// before any node output, ordered by their argument index.
func operandID(out *OutputPort) (bucket int, key int) {
	if n, ok := out.owner.(*Node); ok {
		return 1, n.seq*1024 + out.index
	}
	return 0, out.index
}

func operandLess(a, b *OutputPort) bool {
	ab, ak := operandID(a)
	bb, bk := operandID(b)
	if ab != bb {
		return ab < bb
	}
	return ak < bk
}
