package passes

import (
	"testing"

	"github.com/halvorlinder/jlm/ops"
	"github.com/halvorlinder/jlm/rvsdg"
)

func TestFlatten_CollapsesChain(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

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

	changed, err := Flatten().Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !changed {
		t.Fatalf("expected the chain to flatten")
	}

	flatNode, ok := g.Exports()[0].Input.Producer().Owner().(*rvsdg.Node)
	if !ok {
		t.Fatalf("expected export to trace to a node")
	}
	op, isSimple := flatNode.Operator()
	if !isSimple {
		t.Fatalf("expected a simple node")
	}
	flat, ok := op.(*rvsdg.FlattenedBinaryOp)
	if !ok {
		t.Fatalf("expected a FlattenedBinaryOp, got %s", op.DebugString())
	}
	if flat.Arity != 3 {
		t.Errorf("expected arity 3, got %d", flat.Arity)
	}
}

func TestFlatten_PreservesSharedInteriorResult(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

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
		t.Fatalf("export sum: %v", err)
	}
	if _, err := g.Export("partial", inner[0]); err != nil {
		t.Fatalf("export partial: %v", err)
	}

	changed, err := Flatten().Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if changed {
		t.Errorf("inner's result is shared by a second export, flattening it would erase that sharing")
	}
}

func TestUnflatten_ExpandsToChain(t *testing.T) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	a := r.AddArgument(rvsdg.BitsType{Width: 32})
	b := r.AddArgument(rvsdg.BitsType{Width: 32})
	c := r.AddArgument(rvsdg.BitsType{Width: 32})
	addOp := &ops.IntBinaryOp{Kind: ops.IntAdd, Width: 32}

	flat, err := rvsdg.NewFlattenedBinary(r, addOp, []*rvsdg.OutputPort{a, b, c})
	if err != nil {
		t.Fatalf("NewFlattenedBinary: %v", err)
	}
	if _, err := g.Export("sum", flat); err != nil {
		t.Fatalf("export: %v", err)
	}

	changed, err := Unflatten().Run(g)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !changed {
		t.Fatalf("expected the flattened node to expand")
	}

	node, ok := g.Exports()[0].Input.Producer().Owner().(*rvsdg.Node)
	if !ok {
		t.Fatalf("expected export to trace to a node")
	}
	op, isSimple := node.Operator()
	if !isSimple {
		t.Fatalf("expected a simple node")
	}
	if _, stillFlat := op.(*rvsdg.FlattenedBinaryOp); stillFlat {
		t.Errorf("expected the flattened node to have been replaced by a plain chain")
	}
}
