package passes

import (
	"testing"

	"github.com/halvorlinder/jlm/ops"
	"github.com/halvorlinder/jlm/rvsdg"
)

func TestDeadNodeElimination_RemovesUnreachable(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	x := r.AddArgument(rvsdg.BitsType{Width: 32})
	live, err := r.AddNode(&ops.IntBinaryOp{Kind: ops.IntAdd, Width: 32}, []*rvsdg.OutputPort{x, ops.NewIntConstant(r, 32, 1)})
	if err != nil {
		t.Fatalf("live node: %v", err)
	}
	if _, err := g.Export("out", live[0]); err != nil {
		t.Fatalf("export: %v", err)
	}

	if _, err := r.AddNode(&ops.IntBinaryOp{Kind: ops.IntMul, Width: 32}, []*rvsdg.OutputPort{x, ops.NewIntConstant(r, 32, 2)}); err != nil {
		t.Fatalf("dead node: %v", err)
	}

	before := len(r.Nodes())
	changed, err := DeadNodeElimination().Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !changed {
		t.Errorf("expected the unreferenced multiply to be pruned")
	}
	if got := len(r.Nodes()); got >= before {
		t.Errorf("expected fewer nodes after pruning, got %d (was %d)", got, before)
	}
}

func TestDeadNodeElimination_KeepsSideEffects(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	i32 := rvsdg.BitsType{Width: 32}
	ptr := r.AddArgument(rvsdg.PointerType{})
	val := r.AddArgument(i32)
	state0 := r.AddArgument(rvsdg.MemoryStateType{})

	stored, err := r.AddNode(&ops.Store{ValueType: i32, NumStates: 1}, []*rvsdg.OutputPort{ptr, val, state0})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	_ = stored // result unused and unexported, but Store is side-effecting

	before := len(r.Nodes())
	if _, err := DeadNodeElimination().Run(g); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(r.Nodes()) != before {
		t.Errorf("a side-effecting store with no consumers must survive pruning")
	}
}
