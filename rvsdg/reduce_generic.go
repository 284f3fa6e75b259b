package rvsdg

// isDeadSimpleNode reports whether a simple node has no consumers on any
// of its outputs and its operator is not side-effecting — the generic
// dead-node reduction of spec §4.5.1. Structural nodes are never dead by
// this rule alone; their subregions may still anchor side effects, so
// liveness for them is decided by Prune's subregion recursion
// (spec §4.7), not this local check.
func isDeadSimpleNode(n *Node) bool {
	if n.IsStructural() {
		return false
	}
	if n.IsSideEffecting() {
		return false
	}
	for _, out := range n.outputs {
		if out.NumConsumers() > 0 {
			return false
		}
	}
	return true
}
