package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/halvorlinder/jlm/ops"
	"github.com/halvorlinder/jlm/rvsdg"
)

// fixtures are small hand-built graphs used by `rvsdgc build`. There is
// no source language in front of this kernel (spec.md leaves textual
// input to a frontend this repo doesn't implement), so a named fixture
// stands in for "parse an input file" the way nagac's flag-driven input
// path would.
var fixtures = map[string]func() (*rvsdg.Graph, error){
	"sum3":    buildSum3,
	"branch":  buildBranch,
	"memory":  buildMemory,
	"loopsum": buildLoopSum,
}

func fixtureNames() []string {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	return names
}

// buildSum3 builds a root region computing a+b+c over three imports,
// exported as "sum". Built through Region.AddNode (not CreateSimpleNode)
// so the default normal forms get a chance to run, e.g. merging this
// into a single FlattenedBinaryOp once a `normalize --passes flatten-binary`
// pass runs over it.
func buildSum3() (*rvsdg.Graph, error) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	a := g.Import("a", rvsdg.LinkageExternal, rvsdg.BitsType{Width: 32}).Output
	b := g.Import("b", rvsdg.LinkageExternal, rvsdg.BitsType{Width: 32}).Output
	c := g.Import("c", rvsdg.LinkageExternal, rvsdg.BitsType{Width: 32}).Output

	add := &ops.IntBinaryOp{Kind: ops.IntAdd, Width: 32}
	inner, err := r.AddNode(add, []*rvsdg.OutputPort{b, c})
	if err != nil {
		return nil, errors.Wrap(err, "sum3: b+c")
	}
	outer, err := r.AddNode(add, []*rvsdg.OutputPort{a, inner[0]})
	if err != nil {
		return nil, errors.Wrap(err, "sum3: a+(b+c)")
	}
	if _, err := g.Export("sum", outer[0]); err != nil {
		return nil, errors.Wrap(err, "sum3: export")
	}
	return g, nil
}

// buildBranch builds a γ node choosing between the constant 0 and the
// imported value x based on an imported Control(2) predicate, exported as
// "chosen". Left unfolded
// (the predicate is a genuine import, not a constant) so
// `normalize --passes fold-constant-gammas` has nothing to do on it,
// unlike a predicate fixed at build time.
func buildBranch() (*rvsdg.Graph, error) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	pred := g.Import("pred", rvsdg.LinkageExternal, rvsdg.ControlType{NChoices: 2}).Output
	x := g.Import("x", rvsdg.LinkageExternal, rvsdg.BitsType{Width: 32}).Output

	n, err := rvsdg.NewGamma(r, pred, []*rvsdg.OutputPort{x}, 2)
	if err != nil {
		return nil, errors.Wrap(err, "branch: gamma")
	}
	kind := n.Kind().(*rvsdg.GammaKind)
	zero := ops.NewIntConstant(kind.Subregions[0], 32, 0)
	passthrough := kind.Subregions[1].Arguments()[0]

	out, err := rvsdg.GammaAddExitVar(n, []*rvsdg.OutputPort{zero, passthrough})
	if err != nil {
		return nil, errors.Wrap(err, "branch: exit var")
	}
	if _, err := g.Export("chosen", out); err != nil {
		return nil, errors.Wrap(err, "branch: export")
	}
	return g, nil
}

// buildMemory builds alloca -> store -> load over an imported value,
// exercising the memory model's side-effecting threading.
func buildMemory() (*rvsdg.Graph, error) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	v := g.Import("v", rvsdg.LinkageExternal, rvsdg.BitsType{Width: 32}).Output
	memIn := r.AddArgument(rvsdg.MemoryStateType{})

	allocaOuts, err := r.AddNode(&ops.Alloca{ValueType: rvsdg.BitsType{Width: 32}}, []*rvsdg.OutputPort{memIn})
	if err != nil {
		return nil, errors.Wrap(err, "memory: alloca")
	}
	ptr, mem := allocaOuts[0], allocaOuts[1]

	storeOuts, err := r.AddNode(&ops.Store{ValueType: rvsdg.BitsType{Width: 32}, NumStates: 1}, []*rvsdg.OutputPort{ptr, v, mem})
	if err != nil {
		return nil, errors.Wrap(err, "memory: store")
	}
	mem = storeOuts[0]

	loadOuts, err := r.AddNode(&ops.Load{ValueType: rvsdg.BitsType{Width: 32}}, []*rvsdg.OutputPort{ptr, mem})
	if err != nil {
		return nil, errors.Wrap(err, "memory: load")
	}
	if _, err := g.Export("loaded", loadOuts[0]); err != nil {
		return nil, errors.Wrap(err, "memory: export loaded")
	}
	if _, err := g.Export("mem", loadOuts[1]); err != nil {
		return nil, errors.Wrap(err, "memory: export mem")
	}
	return g, nil
}

// buildLoopSum builds a θ summing an imported count down to zero,
// accumulating into a second loop variable, exported as "total".
func buildLoopSum() (*rvsdg.Graph, error) {
	g := rvsdg.NewGraph()
	ops.RegisterDefaultNormalForms(g)
	r := g.Root()

	count := g.Import("count", rvsdg.LinkageExternal, rvsdg.BitsType{Width: 32}).Output
	zero := ops.NewIntConstant(r, 32, 0)

	n, err := rvsdg.NewTheta(r, []*rvsdg.OutputPort{count, zero})
	if err != nil {
		return nil, errors.Wrap(err, "loopsum: theta")
	}
	kind := n.Kind().(*rvsdg.ThetaKind)
	sub := kind.Subregion
	remaining, total := sub.Arguments()[0], sub.Arguments()[1]

	one := ops.NewIntConstant(sub, 32, 1)
	nextRemainingOuts, err := sub.AddNode(&ops.IntBinaryOp{Kind: ops.IntSub, Width: 32}, []*rvsdg.OutputPort{remaining, one})
	if err != nil {
		return nil, errors.Wrap(err, "loopsum: decrement")
	}
	nextTotalOuts, err := sub.AddNode(&ops.IntBinaryOp{Kind: ops.IntAdd, Width: 32}, []*rvsdg.OutputPort{total, remaining})
	if err != nil {
		return nil, errors.Wrap(err, "loopsum: accumulate")
	}

	predicate := controlFromBool(sub, nextRemainingOuts[0])
	if err := rvsdg.ThetaFinalize(n, predicate, []*rvsdg.OutputPort{nextRemainingOuts[0], nextTotalOuts[0]}); err != nil {
		return nil, errors.Wrap(err, "loopsum: finalize")
	}
	if _, err := g.Export("total", n.Output(1)); err != nil {
		return nil, errors.Wrap(err, "loopsum: export")
	}
	return g, nil
}

// controlFromBool is a placeholder bridging an integer remaining-count
// into a Control(2) loop predicate until a comparison operator exists in
// ops/; it always continues, so buildLoopSum's θ is a fixture for
// serialization and stats, not one meant to be interpreted.
func controlFromBool(r *rvsdg.Region, _ *rvsdg.OutputPort) *rvsdg.OutputPort {
	return ops.NewControlConstant(r, 2, 1)
}

func fixtureByName(name string) (*rvsdg.Graph, error) {
	build, ok := fixtures[name]
	if !ok {
		return nil, fmt.Errorf("unknown fixture %q (available: %v)", name, fixtureNames())
	}
	return build()
}
