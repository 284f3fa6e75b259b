package passes

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/halvorlinder/jlm/ops"
	"github.com/halvorlinder/jlm/rvsdg"
)

func TestCSE_MergesDuplicateNodes(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()

	x := r.AddArgument(rvsdg.BitsType{Width: 32})
	y := r.AddArgument(rvsdg.BitsType{Width: 32})
	subOp := &ops.IntBinaryOp{Kind: ops.IntSub, Width: 32}

	// CreateSimpleNode bypasses normal-form CSE, so these start out as two
	// distinct nodes applying an equal operator to the same operands.
	n1, err := r.CreateSimpleNode(subOp, []*rvsdg.OutputPort{x, y})
	if err != nil {
		t.Fatalf("n1: %v", err)
	}
	n2, err := r.CreateSimpleNode(subOp, []*rvsdg.OutputPort{x, y})
	if err != nil {
		t.Fatalf("n2: %v", err)
	}
	if _, err := g.Export("a", n1.Output(0)); err != nil {
		t.Fatalf("export a: %v", err)
	}
	if _, err := g.Export("b", n2.Output(0)); err != nil {
		t.Fatalf("export b: %v", err)
	}

	changed, err := CSE().Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !changed {
		t.Fatalf("expected CSE to merge the duplicate subtract nodes")
	}
	exports := g.Exports()
	if exports[0].Input.Producer() != exports[1].Input.Producer() {
		t.Errorf("both exports should now trace to the same node's output")
	}
}

func TestCSE_LeavesDistinctApplicationsAlone(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()

	x := r.AddArgument(rvsdg.BitsType{Width: 32})
	y := r.AddArgument(rvsdg.BitsType{Width: 32})
	z := r.AddArgument(rvsdg.BitsType{Width: 32})
	subOp := &ops.IntBinaryOp{Kind: ops.IntSub, Width: 32}

	if _, err := r.CreateSimpleNode(subOp, []*rvsdg.OutputPort{x, y}); err != nil {
		t.Fatalf("n1: %v", err)
	}
	if _, err := r.CreateSimpleNode(subOp, []*rvsdg.OutputPort{x, z}); err != nil {
		t.Fatalf("n2: %v", err)
	}

	changed, err := CSE().Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if changed {
		t.Errorf("operands differ, nothing should be merged")
	}
}

// TestCSE_IdempotentOnSecondRun checks that running CSE again on a graph
// it already merged is a genuine no-op: no further change is reported,
// and the node-kind-count shape is identical before and after.
func TestCSE_IdempotentOnSecondRun(t *testing.T) {
	g := rvsdg.NewGraph()
	r := g.Root()

	x := r.AddArgument(rvsdg.BitsType{Width: 32})
	y := r.AddArgument(rvsdg.BitsType{Width: 32})
	subOp := &ops.IntBinaryOp{Kind: ops.IntSub, Width: 32}

	n1, err := r.CreateSimpleNode(subOp, []*rvsdg.OutputPort{x, y})
	if err != nil {
		t.Fatalf("n1: %v", err)
	}
	n2, err := r.CreateSimpleNode(subOp, []*rvsdg.OutputPort{x, y})
	if err != nil {
		t.Fatalf("n2: %v", err)
	}
	if _, err := g.Export("a", n1.Output(0)); err != nil {
		t.Fatalf("export a: %v", err)
	}
	if _, err := g.Export("b", n2.Output(0)); err != nil {
		t.Fatalf("export b: %v", err)
	}

	if _, err := CSE().Run(g); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := snapshotNodeCounts(g)

	changed, err := CSE().Run(g)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if changed {
		t.Errorf("a second CSE run over an already-merged graph should report no change")
	}
	after := snapshotNodeCounts(g)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("CSE should be idempotent, got diff:\n%s", diff)
	}
}
