package rvsdg

import "testing"

// TestPhi_MutualRecursion builds a two-member group where each member's
// body refers to the other's placeholder, exercising PhiRecursionVars and
// PhiFinalize together.
func TestPhi_MutualRecursion(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	n, err := NewPhi(r, nil, []Type{i32, i32})
	if err != nil {
		t.Fatalf("NewPhi: %v", err)
	}
	kind := n.Kind().(*PhiKind)
	sub := kind.Subregion
	vars := PhiRecursionVars(n)
	if len(vars) != 2 {
		t.Fatalf("expected 2 recursion placeholders, got %d", len(vars))
	}

	// even calls odd, odd calls even: each body is just a passthrough of
	// the other's placeholder, so PhiFinalize's values reference the
	// opposite member.
	evenBody, err := sub.CreateSimpleNode(unaryPassthrough("even", i32), []*OutputPort{vars[1]})
	if err != nil {
		t.Fatalf("evenBody: %v", err)
	}
	oddBody, err := sub.CreateSimpleNode(unaryPassthrough("odd", i32), []*OutputPort{vars[0]})
	if err != nil {
		t.Fatalf("oddBody: %v", err)
	}

	if err := PhiFinalize(n, []*OutputPort{evenBody.Output(0), oddBody.Output(0)}); err != nil {
		t.Fatalf("PhiFinalize: %v", err)
	}
	if len(n.Outputs()) != 2 {
		t.Fatalf("expected 2 group outputs, got %d", len(n.Outputs()))
	}
	if !n.Output(0).Type().Equals(i32) || !n.Output(1).Type().Equals(i32) {
		t.Errorf("expected both group outputs to be i32")
	}
}

// TestPhi_FinalizeArityMismatch checks PhiFinalize rejects a values slice
// that doesn't match the group's declared size.
func TestPhi_FinalizeArityMismatch(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	n, err := NewPhi(r, nil, []Type{i32, i32})
	if err != nil {
		t.Fatalf("NewPhi: %v", err)
	}
	vars := PhiRecursionVars(n)
	if err := PhiFinalize(n, []*OutputPort{vars[0]}); err == nil {
		t.Errorf("expected PhiFinalize to reject a values slice shorter than the group")
	}
}

// TestPrunePhi_RemovesUnusedGroupMember matches the "only the exported
// member is kept" scenario: a helper member with no external consumer and
// no surviving internal reference is dropped, while the exported member
// and its own still-referenced dependency survive.
func TestPrunePhi_RemovesUnusedGroupMember(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	n, err := NewPhi(r, nil, []Type{i32, i32})
	if err != nil {
		t.Fatalf("NewPhi: %v", err)
	}
	kind := n.Kind().(*PhiKind)
	sub := kind.Subregion
	vars := PhiRecursionVars(n)
	fibVar, helperVar := vars[0], vars[1]
	_ = helperVar

	// fib's body doesn't actually reference helper, so helper's placeholder
	// has no consumer at all once nothing outside the group reads its
	// output either.
	fibBody, err := sub.CreateSimpleNode(unaryPassthrough("fib-body", i32), []*OutputPort{fibVar})
	if err != nil {
		t.Fatalf("fibBody: %v", err)
	}
	helperBody, err := sub.CreateSimpleNode(&testOp{tag: "helper-body", resultTypes: []Type{i32}}, nil)
	if err != nil {
		t.Fatalf("helperBody: %v", err)
	}
	if err := PhiFinalize(n, []*OutputPort{fibBody.Output(0), helperBody.Output(0)}); err != nil {
		t.Fatalf("PhiFinalize: %v", err)
	}

	if _, err := g.Export("fib", n.Output(0)); err != nil {
		t.Fatalf("export: %v", err)
	}

	Prune(r)

	if len(kind.RecursiveTypes) != 1 {
		t.Fatalf("expected the unused helper member to be removed, got %d members", len(kind.RecursiveTypes))
	}
	if len(n.Outputs()) != 1 {
		t.Errorf("expected only fib's output to survive, got %d outputs", len(n.Outputs()))
	}
	if g.Exports()[0].Input.Producer() != n.Output(0) {
		t.Errorf("expected fib's export to still point at the (now sole) group output")
	}
}

// TestPrunePhi_KeepsMemberStillReferencedByPlaceholder checks that a
// member with no external consumer but a live internal reference through
// its own recursion placeholder survives pruning.
func TestPrunePhi_KeepsMemberStillReferencedByPlaceholder(t *testing.T) {
	g := NewGraph()
	r := g.Root()

	i32 := BitsType{Width: 32}
	n, err := NewPhi(r, nil, []Type{i32, i32})
	if err != nil {
		t.Fatalf("NewPhi: %v", err)
	}
	kind := n.Kind().(*PhiKind)
	sub := kind.Subregion
	vars := PhiRecursionVars(n)
	fibVar, helperVar := vars[0], vars[1]

	// fib's body calls helper's placeholder directly, so helper has a live
	// internal reference even though nothing outside the group ever reads
	// helper's own output.
	fibBody, err := sub.CreateSimpleNode(unaryPassthrough("fib-body", i32), []*OutputPort{helperVar})
	if err != nil {
		t.Fatalf("fibBody: %v", err)
	}
	helperBody, err := sub.CreateSimpleNode(unaryPassthrough("helper-body", i32), []*OutputPort{fibVar})
	if err != nil {
		t.Fatalf("helperBody: %v", err)
	}
	if err := PhiFinalize(n, []*OutputPort{fibBody.Output(0), helperBody.Output(0)}); err != nil {
		t.Fatalf("PhiFinalize: %v", err)
	}

	if _, err := g.Export("fib", n.Output(0)); err != nil {
		t.Fatalf("export: %v", err)
	}

	Prune(r)

	if len(kind.RecursiveTypes) != 2 {
		t.Errorf("expected helper to survive since fib's body still references its placeholder, got %d members", len(kind.RecursiveTypes))
	}
}
