package rvsdg

import "testing"

func TestDelta_FinalizeAndPrune(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	seed := r.AddArgument(i32)
	unused := r.AddArgument(i32)

	n, err := NewDelta(r, "counter", LinkageInternal, true, []*OutputPort{seed, unused}, i32)
	if err != nil {
		t.Fatalf("NewDelta: %v", err)
	}
	kind := n.Kind().(*DeltaKind)
	if len(kind.Subregion.Arguments()) != 2 {
		t.Fatalf("expected 2 subregion arguments, got %d", len(kind.Subregion.Arguments()))
	}

	if err := DeltaFinalize(n, kind.Subregion.Arguments()[0]); err != nil {
		t.Fatalf("DeltaFinalize: %v", err)
	}
	if !n.Output(0).Type().Equals(PointerType{}) {
		t.Errorf("expected delta's own output to be a pointer, got %v", n.Output(0).Type())
	}

	if _, err := g.Export("counter", n.Output(0)); err != nil {
		t.Fatalf("export: %v", err)
	}

	Prune(r)

	if len(DeltaCtxVars(n)) != 1 {
		t.Errorf("expected the unused context var to be dropped, got %d ctx vars", len(DeltaCtxVars(n)))
	}
	if len(kind.Subregion.Arguments()) != 1 {
		t.Errorf("expected the subregion argument to be dropped alongside the input, got %d", len(kind.Subregion.Arguments()))
	}
}

func TestDelta_WrongRegionCtxVarRejected(t *testing.T) {
	g := NewGraph()
	other := NewGraph()

	i32 := BitsType{Width: 32}
	foreign := other.Root().AddArgument(i32)

	if _, err := NewDelta(g.Root(), "g", LinkageInternal, false, []*OutputPort{foreign}, i32); err == nil {
		t.Errorf("expected NewDelta to reject a context variable from a different region")
	}
}
