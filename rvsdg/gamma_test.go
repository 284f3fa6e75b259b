package rvsdg

import "testing"

func TestGamma_AddExitVar_UnifiesDistinctBranchValues(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	pred := r.AddArgument(ControlType{NChoices: 2})
	x := r.AddArgument(i32)

	n, err := NewGamma(r, pred, []*OutputPort{x}, 2)
	if err != nil {
		t.Fatalf("NewGamma: %v", err)
	}
	kind := n.Kind().(*GammaKind)
	if len(kind.Subregions) != 2 {
		t.Fatalf("expected 2 subregions, got %d", len(kind.Subregions))
	}

	zero, err := kind.Subregions[0].CreateSimpleNode(&testOp{tag: "zero", resultTypes: []Type{i32}}, nil)
	if err != nil {
		t.Fatalf("zero: %v", err)
	}
	out, err := GammaAddExitVar(n, []*OutputPort{zero.Output(0), kind.Subregions[1].Arguments()[0]})
	if err != nil {
		t.Fatalf("GammaAddExitVar: %v", err)
	}
	if out.Type() != i32 {
		t.Errorf("expected exit var type %v, got %v", i32, out.Type())
	}
	if len(n.Outputs()) != 1 {
		t.Fatalf("expected 1 exit var, got %d", len(n.Outputs()))
	}
}

func TestGamma_HoistInvariantExitViaPrune(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	pred := r.AddArgument(ControlType{NChoices: 2})
	x := r.AddArgument(i32)

	n, err := NewGamma(r, pred, []*OutputPort{x}, 2)
	if err != nil {
		t.Fatalf("NewGamma: %v", err)
	}
	kind := n.Kind().(*GammaKind)

	// Both subregions simply pass the entry value through unchanged, so
	// the exit variable is invariant and should be hoisted to a direct
	// use of x rather than surviving as a γ output.
	out, err := GammaAddExitVar(n, []*OutputPort{kind.Subregions[0].Arguments()[0], kind.Subregions[1].Arguments()[0]})
	if err != nil {
		t.Fatalf("GammaAddExitVar: %v", err)
	}
	if _, err := g.Export("chosen", out); err != nil {
		t.Fatalf("export: %v", err)
	}

	Prune(r)

	exp := g.Exports()[0]
	if exp.Input.Producer() != x {
		t.Errorf("expected the export to be rerouted to read the entry value directly, got %v", exp.Input.Producer())
	}
	if len(n.Outputs()) != 0 {
		t.Errorf("expected the now-unreferenced exit variable to be dropped, got %d outputs", len(n.Outputs()))
	}
}

func TestGammaHoistInvariants_LeavesNonUniformExitAlone(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	pred := r.AddArgument(ControlType{NChoices: 2})
	x := r.AddArgument(i32)
	y := r.AddArgument(i32)

	n, err := NewGamma(r, pred, []*OutputPort{x, y}, 2)
	if err != nil {
		t.Fatalf("NewGamma: %v", err)
	}
	kind := n.Kind().(*GammaKind)

	// Subregion 0 forwards x, subregion 1 forwards y: not uniform, so the
	// exit variable is genuinely branch-dependent and must not be hoisted.
	out, err := GammaAddExitVar(n, []*OutputPort{kind.Subregions[0].Arguments()[0], kind.Subregions[1].Arguments()[1]})
	if err != nil {
		t.Fatalf("GammaAddExitVar: %v", err)
	}
	if _, err := g.Export("chosen", out); err != nil {
		t.Fatalf("export: %v", err)
	}

	if err := GammaHoistInvariants(r, n); err != nil {
		t.Fatalf("GammaHoistInvariants: %v", err)
	}
	if g.Exports()[0].Input.Producer() != out {
		t.Errorf("expected the non-uniform exit var to remain the export's producer")
	}
}
