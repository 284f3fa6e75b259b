package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/halvorlinder/jlm/rvsdg"
)

// printStats reports node counts by kind for g's root region and every
// subregion reachable through a structural node, recursing depth-first
// the same way passes.walkRegions does for pass application.
func printStats(w io.Writer, g *rvsdg.Graph) {
	counts := map[string]int{}
	var regions int
	var visit func(r *rvsdg.Region)
	visit = func(r *rvsdg.Region) {
		regions++
		for _, n := range r.Nodes() {
			counts[kindLabel(n)]++
			for _, sub := range subregionsOf(n) {
				visit(sub)
			}
		}
	}
	visit(g.Root())

	fmt.Fprintf(w, "regions: %d\n", regions)
	fmt.Fprintf(w, "imports: %d\n", len(g.Imports()))
	fmt.Fprintf(w, "exports: %d\n", len(g.Exports()))

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %d\n", name, counts[name])
	}
}

func kindLabel(n *rvsdg.Node) string {
	switch k := n.Kind().(type) {
	case *rvsdg.SimpleKind:
		return fmt.Sprintf("simple:%T", k.Op)
	case *rvsdg.GammaKind:
		return "gamma"
	case *rvsdg.ThetaKind:
		return "theta"
	case *rvsdg.LambdaKind:
		return "lambda"
	case *rvsdg.DeltaKind:
		return "delta"
	case *rvsdg.PhiKind:
		return "phi"
	default:
		return fmt.Sprintf("unknown:%T", k)
	}
}

// subregionsOf mirrors passes.subregionsOf; duplicated here rather than
// exported from passes since it's a one-line switch and stats has no
// other reason to depend on that package.
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
