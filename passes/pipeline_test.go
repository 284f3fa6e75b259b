package passes

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/halvorlinder/jlm/ops"
	"github.com/halvorlinder/jlm/rvsdg"
)

func snapshotNodeCounts(g *rvsdg.Graph) map[string]int {
	counts := make(map[string]int)
	var walk func(r *rvsdg.Region)
	walk = func(r *rvsdg.Region) {
		for _, n := range r.Nodes() {
			counts[n.DebugString()]++
			for _, sub := range subregionsOf(n) {
				walk(sub)
			}
		}
	}
	walk(g.Root())
	return counts
}

func TestPipeline_ConvergesToFixedPoint(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	x := r.AddArgument(rvsdg.BitsType{Width: 32})
	a := r.AddArgument(rvsdg.BitsType{Width: 32})
	b := r.AddArgument(rvsdg.BitsType{Width: 32})
	c := r.AddArgument(rvsdg.BitsType{Width: 32})
	addOp := &ops.IntBinaryOp{Kind: ops.IntAdd, Width: 32}

	inner, err := r.AddNode(addOp, []*rvsdg.OutputPort{b, c})
	if err != nil {
		t.Fatalf("inner: %v", err)
	}
	outer, err := r.AddNode(addOp, []*rvsdg.OutputPort{a, inner[0]})
	if err != nil {
		t.Fatalf("outer: %v", err)
	}
	if _, err := g.Export("sum", outer[0]); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := r.AddNode(&ops.IntBinaryOp{Kind: ops.IntMul, Width: 32}, []*rvsdg.OutputPort{x, ops.NewIntConstant(r, 32, 3)}); err != nil {
		t.Fatalf("dead node: %v", err)
	}

	pipeline := NewPipeline(Flatten(), CSE(), DeadNodeElimination())
	if _, err := pipeline.Run(g); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := snapshotNodeCounts(g)

	if _, err := pipeline.Run(g); err != nil {
		t.Fatalf("second run: %v", err)
	}
	after := snapshotNodeCounts(g)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("a converged pipeline should be a no-op on a second run, got diff:\n%s", diff)
	}
}

func TestPipeline_StopsEarlyWhenNothingChanges(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)

	pipeline := NewPipeline(DeadNodeElimination(), CSE())
	sweeps, err := pipeline.Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sweeps != 0 {
		t.Errorf("an empty graph should converge after the first sweep finds nothing, got %d sweeps", sweeps)
	}
}
