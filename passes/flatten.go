package passes

import "github.com/halvorlinder/jlm/rvsdg"

// Flatten finds maximal right-leaning chains of the same associative
// binary operator instance and replaces each with a single
// FlattenedBinaryOp node (spec §4.5.2). It only flattens a chain whose
// interior links have exactly one consumer (the next link up); a link
// whose result is shared elsewhere is left as a plain binary node, since
// flattening it would erase that sharing.
func Flatten() Pass {
	return Pass{
		Name: "flatten-binary",
		Run: func(g *rvsdg.Graph) (bool, error) {
			changed := false
			err := walkRegions(g.Root(), func(r *rvsdg.Region) error {
				did, err := flattenRegion(r)
				if err != nil {
					return err
				}
				changed = changed || did
				return nil
			})
			return changed, err
		},
	}
}

func flattenRegion(r *rvsdg.Region) (bool, error) {
	changed := false
	for _, n := range append([]*rvsdg.Node(nil), r.Nodes()...) {
		op, ok := n.Operator()
		if !ok {
			continue
		}
		binOp, ok := op.(rvsdg.BinaryOperator)
		if !ok || !rvsdg.IsAssociative(binOp) {
			continue
		}
		if len(n.Inputs()) != 2 {
			continue // already a FlattenedBinaryOp node, or some other shape
		}
		if isChainInterior(n, binOp) {
			continue // this link is handled when the chain's top is visited
		}
		chain := collectChain(n, binOp)
		if len(chain) < 3 {
			continue
		}
		flat, err := rvsdg.NewFlattenedBinary(r, binOp, chain)
		if err != nil {
			return changed, err
		}
		for _, consumer := range n.Output(0).Consumers() {
			if err := r.Divert(consumer, flat); err != nil {
				return changed, err
			}
		}
		changed = true
	}
	return changed, nil
}

// isChainInterior reports whether n's sole output feeds, as the right
// operand, exactly one other node applying an equal operator — meaning n
// is itself a link some other (higher) node's chain already covers.
func isChainInterior(n *rvsdg.Node, binOp rvsdg.BinaryOperator) bool {
	out := n.Output(0)
	if out.NumConsumers() != 1 {
		return false
	}
	consumer := out.Consumers()[0]
	if consumer.Index() != 1 {
		return false
	}
	parent, ok := consumer.Owner().(*rvsdg.Node)
	if !ok {
		return false
	}
	parentOp, isSimple := parent.Operator()
	return isSimple && parentOp.Equals(binOp)
}

// collectChain walks n's right operand (input 1) as long as it is itself
// an application of an equal operator with no other consumer, accumulating
// left operands in order: for a ⊕ (b ⊕ c) it returns [a, b, c].
func collectChain(n *rvsdg.Node, binOp rvsdg.BinaryOperator) []*rvsdg.OutputPort {
	a := n.Input(0).Producer()
	b := n.Input(1).Producer()
	rhsNode, ok := b.Owner().(*rvsdg.Node)
	if ok && b.NumConsumers() == 1 {
		if rhsOp, isSimple := rhsNode.Operator(); isSimple {
			if rhsBin, ok := rhsOp.(rvsdg.BinaryOperator); ok && rhsBin.Equals(binOp) {
				return append([]*rvsdg.OutputPort{a}, collectChain(rhsNode, binOp)...)
			}
		}
	}
	return []*rvsdg.OutputPort{a, b}
}

// Unflatten replaces every FlattenedBinaryOp node with an equivalent
// right-leaning chain of plain applications of its wrapped operator — the
// inverse of Flatten, used to check that flattening and unflattening a
// graph round-trips to an equivalent value (spec §8 P7).
func Unflatten() Pass {
	return Pass{
		Name: "unflatten-binary",
		Run: func(g *rvsdg.Graph) (bool, error) {
			changed := false
			err := walkRegions(g.Root(), func(r *rvsdg.Region) error {
				did, err := unflattenRegion(r)
				if err != nil {
					return err
				}
				changed = changed || did
				return nil
			})
			return changed, err
		},
	}
}

func unflattenRegion(r *rvsdg.Region) (bool, error) {
	changed := false
	for _, n := range append([]*rvsdg.Node(nil), r.Nodes()...) {
		op, ok := n.Operator()
		if !ok {
			continue
		}
		flat, ok := op.(*rvsdg.FlattenedBinaryOp)
		if !ok {
			continue
		}
		operands := make([]*rvsdg.OutputPort, len(n.Inputs()))
		for i, in := range n.Inputs() {
			operands[i] = in.Producer()
		}
		chained := operands[len(operands)-1]
		for i := len(operands) - 2; i >= 0; i-- {
			outs, err := r.AddNode(flat.Op, []*rvsdg.OutputPort{operands[i], chained})
			if err != nil {
				return changed, err
			}
			chained = outs[0]
		}
		for _, consumer := range n.Output(0).Consumers() {
			if err := r.Divert(consumer, chained); err != nil {
				return changed, err
			}
		}
		changed = true
	}
	return changed, nil
}
