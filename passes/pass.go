// Package passes provides free functions and an ordered pipeline runner
// over an *rvsdg.Graph: dead-node elimination, binary flattening and its
// inverse, common-subexpression re-normalization, and γ constant-
// predicate folding. None of this is part of the IR kernel — rvsdg
// exposes the mechanisms (Prune, NewFlattenedBinary, Divert,
// GammaFoldConstantPredicate); passes/ is what actually drives them over
// a whole graph.
package passes

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/halvorlinder/jlm/rvsdg"
)

// Pass is a single named rewrite over a graph's root region and,
// transitively, every subregion it structurally contains.
type Pass struct {
	Name string
	Run  func(g *rvsdg.Graph) (changed bool, err error)
}

// Pipeline runs a fixed, ordered list of passes to a fixed point:
// sweeping the whole list repeatedly until a sweep makes no change,
// mirroring naga's CompileWithOptions staged-pipeline shape but iterated
// instead of run-once, since normal-form reductions can expose further
// reductions a single top-to-bottom pass would miss.
type Pipeline struct {
	Passes    []Pass
	MaxSweeps int
	Logger    *zap.Logger
}

// NewPipeline returns a Pipeline over passes with a generous default
// sweep cap and a no-op logger; callers wanting diagnostics set Logger.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{Passes: passes, MaxSweeps: 32, Logger: zap.NewNop()}
}

// Run sweeps the pipeline's passes over g until a full sweep makes no
// change or MaxSweeps is reached, returning the number of sweeps that
// changed the graph (0 when the first sweep already finds nothing to do).
func (p *Pipeline) Run(g *rvsdg.Graph) (int, error) {
	sweep := 0
	for ; sweep < p.MaxSweeps; sweep++ {
		anyChanged := false
		for _, pass := range p.Passes {
			changed, err := pass.Run(g)
			if err != nil {
				return sweep, err
			}
			if changed {
				anyChanged = true
				p.Logger.Debug("pass applied", zap.String("pass", pass.Name), zap.Int("sweep", sweep))
			}
		}
		if !anyChanged {
			return sweep, nil
		}
	}
	return sweep, nil
}

// subregionsOf returns the subregions a structural node owns, or nil for
// a simple node.
func subregionsOf(n *rvsdg.Node) []*rvsdg.Region {
	switch k := n.Kind().(type) {
	case *rvsdg.GammaKind:
		return k.Subregions
	case *rvsdg.ThetaKind:
		return []*rvsdg.Region{k.Subregion}
	case *rvsdg.LambdaKind:
		return []*rvsdg.Region{k.Subregion}
	case *rvsdg.DeltaKind:
		return []*rvsdg.Region{k.Subregion}
	case *rvsdg.PhiKind:
		return []*rvsdg.Region{k.Subregion}
	default:
		return nil
	}
}

// walkRegions applies visit to every region reachable from root,
// depth-first: every structural node's subregions first, root itself last.
func walkRegions(root *rvsdg.Region, visit func(*rvsdg.Region) error) error {
	for _, n := range root.Nodes() {
		for _, sub := range subregionsOf(n) {
			if err := walkRegions(sub, visit); err != nil {
				return err
			}
		}
	}
	return visit(root)
}

// operatorClass returns a reflect.Type token for op's dynamic type,
// matching the operator-class-token convention rvsdg.Region.findCSE uses
// internally (spec §9: "lookup by a lightweight operator-class token, not
// by string").
func operatorClass(op rvsdg.Operator) reflect.Type { return reflect.TypeOf(op) }
