package passes

import "github.com/halvorlinder/jlm/rvsdg"

// DeadNodeElimination removes every node unreachable from a region result
// or a side-effecting anchor, recursively through every subregion
// (spec §4.7, rvsdg.Prune).
func DeadNodeElimination() Pass {
	return Pass{
		Name: "dead-node-elimination",
		Run: func(g *rvsdg.Graph) (bool, error) {
			before := countNodes(g.Root())
			rvsdg.Prune(g.Root())
			return countNodes(g.Root()) != before, nil
		},
	}
}

func countNodes(r *rvsdg.Region) int {
	n := len(r.Nodes())
	for _, node := range r.Nodes() {
		for _, sub := range subregionsOf(node) {
			n += countNodes(sub)
		}
	}
	return n
}
