package ops

import (
	"testing"

	"github.com/halvorlinder/jlm/rvsdg"
)

func newMemoryGraph() (*rvsdg.Graph, *rvsdg.Region) {
	g := rvsdg.NewGraph()
	RegisterDefaultNormalForms(g)
	return g, g.Root()
}

func TestLoadLoad_Reused(t *testing.T) {
	_, r := newMemoryGraph()

	i32 := rvsdg.BitsType{Width: 32}
	ptr := r.AddArgument(rvsdg.PointerType{})
	state0 := r.AddArgument(rvsdg.MemoryStateType{})

	load1, err := r.AddNode(&Load{ValueType: i32}, []*rvsdg.OutputPort{ptr, state0})
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	load2, err := r.AddNode(&Load{ValueType: i32}, []*rvsdg.OutputPort{ptr, load1[1]})
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if load2[0] != load1[0] {
		t.Errorf("second load should reuse the first load's value, got a distinct output")
	}
	if load2[1] != load1[1] {
		t.Errorf("second load should pass the state token through unchanged")
	}
}

func TestLoadStore_ForwardsValue(t *testing.T) {
	_, r := newMemoryGraph()

	i32 := rvsdg.BitsType{Width: 32}
	ptr := r.AddArgument(rvsdg.PointerType{})
	val := r.AddArgument(i32)
	state0 := r.AddArgument(rvsdg.MemoryStateType{})

	stored, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{ptr, val, state0})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	loaded, err := r.AddNode(&Load{ValueType: i32}, []*rvsdg.OutputPort{ptr, stored[0]})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded[0] != val {
		t.Errorf("load from just-stored address should forward the stored value directly")
	}
}

func TestStoreStore_SupersedesOlder(t *testing.T) {
	_, r := newMemoryGraph()

	i32 := rvsdg.BitsType{Width: 32}
	ptr := r.AddArgument(rvsdg.PointerType{})
	v1 := r.AddArgument(i32)
	v2 := r.AddArgument(i32)
	state0 := r.AddArgument(rvsdg.MemoryStateType{})

	first, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{ptr, v1, state0})
	if err != nil {
		t.Fatalf("first store: %v", err)
	}
	second, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{ptr, v2, first[0]})
	if err != nil {
		t.Fatalf("second store: %v", err)
	}
	secondNode, ok := second[0].Owner().(*rvsdg.Node)
	if !ok {
		t.Fatalf("expected second store's output to be node-owned")
	}
	if secondNode.Input(2).Producer() != state0 {
		t.Errorf("second store should thread through the first store's predecessor state, bypassing it")
	}

	firstNode, ok := first[0].Owner().(*rvsdg.Node)
	if !ok {
		t.Fatalf("expected first store's output to be node-owned")
	}
	for _, n := range r.Nodes() {
		if n == firstNode {
			t.Errorf("dominated store should be excised from the region immediately, found it still present")
		}
	}
	if len(r.Nodes()) != 1 {
		t.Errorf("expected only the superseding store to remain, got %d nodes", len(r.Nodes()))
	}
}

// TestStoreStore_ChainLeavesUnrelatedStoresAndPrunes builds three
// independent stores plus a fourth store to the same address as the
// third, matching the "store chain" scenario: unrelated stores survive
// untouched, the dominated same-address store is gone even after Prune
// runs (Store reports itself side-effecting, so generic pruning alone
// would keep a merely-unreachable store forever).
func TestStoreStore_ChainLeavesUnrelatedStoresAndPrunes(t *testing.T) {
	g, r := newMemoryGraph()

	i32 := rvsdg.BitsType{Width: 32}
	state0 := r.AddArgument(rvsdg.MemoryStateType{})
	v1 := r.AddArgument(i32)
	v2 := r.AddArgument(i32)
	v3 := r.AddArgument(i32)
	v4 := r.AddArgument(i32)

	allocaA, err := r.AddNode(&Alloca{ValueType: i32}, []*rvsdg.OutputPort{state0})
	if err != nil {
		t.Fatalf("alloca A: %v", err)
	}
	allocaB, err := r.AddNode(&Alloca{ValueType: i32}, []*rvsdg.OutputPort{allocaA[1]})
	if err != nil {
		t.Fatalf("alloca B: %v", err)
	}
	allocaC, err := r.AddNode(&Alloca{ValueType: i32}, []*rvsdg.OutputPort{allocaB[1]})
	if err != nil {
		t.Fatalf("alloca C: %v", err)
	}

	storeA, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{allocaA[0], v1, allocaC[1]})
	if err != nil {
		t.Fatalf("store A: %v", err)
	}
	storeB, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{allocaB[0], v2, storeA[0]})
	if err != nil {
		t.Fatalf("store B: %v", err)
	}
	storeC1, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{allocaC[0], v3, storeB[0]})
	if err != nil {
		t.Fatalf("store C (first): %v", err)
	}
	storeC1Node, ok := storeC1[0].Owner().(*rvsdg.Node)
	if !ok {
		t.Fatalf("expected store C (first) output to be node-owned")
	}
	storeC2, err := r.AddNode(&Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{allocaC[0], v4, storeC1[0]})
	if err != nil {
		t.Fatalf("store C (second): %v", err)
	}

	if _, err := g.Export("final", storeC2[0]); err != nil {
		t.Fatalf("export: %v", err)
	}
	rvsdg.Prune(r)

	for _, n := range r.Nodes() {
		if n == storeC1Node {
			t.Errorf("dominated store C (first) should be gone after prune")
		}
	}
	// 3 allocas + store A + store B + the superseding store C = 6 nodes.
	if got := len(r.Nodes()); got != 6 {
		t.Errorf("expected 6 surviving nodes (3 allocas, store A, store B, store C), got %d", got)
	}
}

func TestStore_MultiOriginDeduped(t *testing.T) {
	_, r := newMemoryGraph()

	i32 := rvsdg.BitsType{Width: 32}
	ptr := r.AddArgument(rvsdg.PointerType{})
	val := r.AddArgument(i32)
	state0 := r.AddArgument(rvsdg.MemoryStateType{})

	outs, err := r.AddNode(&Store{ValueType: i32, NumStates: 3}, []*rvsdg.OutputPort{ptr, val, state0, state0, state0})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	n, ok := outs[0].Owner().(*rvsdg.Node)
	if !ok {
		t.Fatalf("expected node-owned output")
	}
	if len(n.Inputs()) != 3 {
		t.Errorf("expected duplicate state operands deduped to 1, got %d state-bearing inputs total (3 expected: ptr, val, state)", len(n.Inputs()))
	}
}

func TestAlloca_ThreadsState(t *testing.T) {
	_, r := newMemoryGraph()

	i32 := rvsdg.BitsType{Width: 32}
	state0 := r.AddArgument(rvsdg.MemoryStateType{})

	outs, err := r.AddNode(&Alloca{ValueType: i32}, []*rvsdg.OutputPort{state0})
	if err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if !outs[0].Type().Equals(rvsdg.PointerType{}) {
		t.Errorf("alloca's first result should be a pointer, got %s", outs[0].Type())
	}
	if !outs[1].Type().Equals(rvsdg.MemoryStateType{}) {
		t.Errorf("alloca's second result should be a memory state, got %s", outs[1].Type())
	}
}
