package ops

import "github.com/halvorlinder/jlm/rvsdg"

// LoadNormalForm implements the load/load and load/store reductions of
// the domain catalogue (spec §4.5.3).
type LoadNormalForm struct {
	rvsdg.BaseNormalForm
}

// NewLoadNormalForm returns a LoadNormalForm with default toggles.
func NewLoadNormalForm() *LoadNormalForm {
	return &LoadNormalForm{BaseNormalForm: rvsdg.NewBaseNormalForm()}
}

func (nf *LoadNormalForm) NormalizedCreate(region *rvsdg.Region, op rvsdg.Operator, operands []*rvsdg.OutputPort) ([]*rvsdg.OutputPort, error) {
	load, ok := op.(*Load)
	if !ok {
		n, err := region.CreateSimpleNode(op, operands)
		if err != nil {
			return nil, err
		}
		return n.Outputs(), nil
	}

	if nf.Mutable() && nf.Reducible() {
		if out := tryLoadStore(load, operands); out != nil {
			return out, nil
		}
		if out := tryLoadLoad(load, operands); out != nil {
			return out, nil
		}
	}
	if nf.Mutable() && nf.CSE() {
		if existing := region.FindCSE(op, operands); existing != nil {
			return existing.Outputs(), nil
		}
	}
	n, err := region.CreateSimpleNode(op, operands)
	if err != nil {
		return nil, err
	}
	return n.Outputs(), nil
}

// tryLoadLoad implements "second load from same address, same state":
// when the state a load consumes is exactly the state a prior load of the
// same address and type produced, the second load is redundant — its
// value is the first load's value, and it need not materialize at all.
func tryLoadLoad(load *Load, operands []*rvsdg.OutputPort) []*rvsdg.OutputPort {
	prevNode, ok := producerNode(operands[1])
	if !ok {
		return nil
	}
	prevOp, isSimple := prevNode.Operator()
	if !isSimple {
		return nil
	}
	prevLoad, isLoad := prevOp.(*Load)
	if !isLoad || !prevLoad.ValueType.Equals(load.ValueType) {
		return nil
	}
	if !sameAddress(prevNode.Input(0).Producer(), operands[0]) {
		return nil
	}
	return []*rvsdg.OutputPort{prevNode.Output(0), operands[1]}
}

// tryLoadStore implements "load from address just stored to, same
// state": when the state a load consumes is exactly the state a store of
// the same address and type produced, the load's value is the value that
// store wrote.
func tryLoadStore(load *Load, operands []*rvsdg.OutputPort) []*rvsdg.OutputPort {
	prevNode, ok := producerNode(operands[1])
	if !ok {
		return nil
	}
	prevOp, isSimple := prevNode.Operator()
	if !isSimple {
		return nil
	}
	prevStore, isStore := prevOp.(*Store)
	if !isStore || prevStore.NumStates != 1 || !prevStore.ValueType.Equals(load.ValueType) {
		return nil
	}
	if !sameAddress(prevNode.Input(0).Producer(), operands[0]) {
		return nil
	}
	return []*rvsdg.OutputPort{prevNode.Input(1).Producer(), operands[1]}
}

// StoreNormalForm implements the multiple-origin and store/store
// reductions of the domain catalogue. store/alloca and store/mux (the
// remaining two rows of spec §4.5.3's table) are deliberately not
// implemented here: both require walking through a γ's per-subregion
// state results or an alloca's own state operand under an alias
// assumption this minimal pointer model doesn't track, and are left to a
// dedicated alias-aware pass rather than this operator's own normal form.
type StoreNormalForm struct {
	rvsdg.BaseNormalForm
}

// NewStoreNormalForm returns a StoreNormalForm with default toggles.
func NewStoreNormalForm() *StoreNormalForm {
	return &StoreNormalForm{BaseNormalForm: rvsdg.NewBaseNormalForm()}
}

func (nf *StoreNormalForm) NormalizedCreate(region *rvsdg.Region, op rvsdg.Operator, operands []*rvsdg.OutputPort) ([]*rvsdg.OutputPort, error) {
	store, ok := op.(*Store)
	if !ok {
		n, err := region.CreateSimpleNode(op, operands)
		if err != nil {
			return nil, err
		}
		return n.Outputs(), nil
	}

	if nf.Mutable() && nf.Reducible() {
		if dedupedOp, dedupedOperands, changed := dedupeStates(store, operands); changed {
			return nf.NormalizedCreate(region, dedupedOp, dedupedOperands)
		}
		if out := tryStoreStore(region, store, operands); out != nil {
			return []*rvsdg.OutputPort{out}, nil
		}
	}
	if nf.Mutable() && nf.CSE() {
		if existing := region.FindCSE(op, operands); existing != nil {
			return existing.Outputs(), nil
		}
	}
	n, err := region.CreateSimpleNode(op, operands)
	if err != nil {
		return nil, err
	}
	return n.Outputs(), nil
}

// dedupeStates implements "store multi-origin": a store with the same
// state operand repeated more than once only needs to depend on it once.
func dedupeStates(store *Store, operands []*rvsdg.OutputPort) (*Store, []*rvsdg.OutputPort, bool) {
	states := operands[2:]
	seen := make(map[*rvsdg.OutputPort]bool, len(states))
	unique := make([]*rvsdg.OutputPort, 0, len(states))
	for _, s := range states {
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	if len(unique) == len(states) {
		return store, operands, false
	}
	newOperands := append([]*rvsdg.OutputPort{operands[0], operands[1]}, unique...)
	return &Store{ValueType: store.ValueType, NumStates: len(unique)}, newOperands, true
}

// tryStoreStore implements "same address, same state, newer store
// dominates older": when this store's sole state operand is itself the
// single-state output of a previous store to the same address with no
// other consumer, the new store supersedes it — it threads through the
// older store's own predecessor state instead, skipping over it, and the
// dominated store is excised outright. Store reports itself
// side-effecting so generic pruning would keep it forever once nothing
// consumes its output; the rewrite already knows the node is dead (its
// state output had zero consumers before the reroute, and the reroute
// itself only reads the older store's predecessor state, never its
// output), so it removes it here via RemoveDeadNode instead of waiting on
// a pass that would never touch it.
func tryStoreStore(region *rvsdg.Region, store *Store, operands []*rvsdg.OutputPort) *rvsdg.OutputPort {
	if store.NumStates != 1 {
		return nil
	}
	prevNode, ok := producerNode(operands[2])
	if !ok {
		return nil
	}
	prevOp, isSimple := prevNode.Operator()
	if !isSimple {
		return nil
	}
	prevStore, isStore := prevOp.(*Store)
	if !isStore || prevStore.NumStates != 1 || !prevStore.ValueType.Equals(store.ValueType) {
		return nil
	}
	if !sameAddress(prevNode.Input(0).Producer(), operands[0]) {
		return nil
	}
	// At this point the pending store has not yet been materialized (no
	// InputPort binds to prevNode's output for it), so "no other consumer
	// needs the old store's result" means zero existing consumers, not one.
	if prevNode.Output(0).NumConsumers() != 0 {
		return nil
	}
	newOperands := []*rvsdg.OutputPort{operands[0], operands[1], prevNode.Input(2).Producer()}
	n, err := region.CreateSimpleNode(store, newOperands)
	if err != nil {
		return nil
	}
	// prevNode's output still has zero consumers: newOperands threads
	// through its predecessor state, not its own output.
	_ = region.RemoveDeadNode(prevNode)
	return n.Outputs()[0]
}
