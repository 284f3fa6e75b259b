package rvsdg

// copyableKind is implemented by structural NodeKinds that know how to
// duplicate themselves (and their subregions) into a different region
// under an operand substitution. SimpleKind is handled directly by
// copyRegionInto since it needs no kind-specific plumbing.
type copyableKind interface {
	NodeKind
	copyInto(dst *Region, n *Node, resolve func(*OutputPort) *OutputPort) (*Node, error)
}

// resolveFrom looks up out in m, falling back to out itself when absent
// (the producer already lives in the destination region, e.g. an import
// or a constant shared across regions via the substitution map).
func resolveFrom(m map[*OutputPort]*OutputPort, out *OutputPort) *OutputPort {
	if v, ok := m[out]; ok {
		return v
	}
	return out
}

// copyRegionInto copies every node of src into dst under substitution,
// which maps src-region output ports (typically src's own arguments) to
// already-existing dst-region output ports. It returns a map from every
// src-region output port visited during the walk (including the seeded
// substitution entries) to its corresponding dst-region output port.
//
// This is the mechanism spec §4.1 calls "a node may be copied into
// another region under a substitution mapping... structural nodes copy
// recursively," used directly by γ's constant-predicate fold (inlining a
// chosen subregion into its parent) and available to any pass that needs
// to duplicate a subgraph.
func copyRegionInto(dst *Region, src *Region, substitution map[*OutputPort]*OutputPort) (map[*OutputPort]*OutputPort, error) {
	mapped := make(map[*OutputPort]*OutputPort, len(substitution))
	for k, v := range substitution {
		mapped[k] = v
	}
	resolve := func(out *OutputPort) *OutputPort { return resolveFrom(mapped, out) }

	for _, n := range src.NodesTopological() {
		switch kind := n.kind.(type) {
		case *SimpleKind:
			operands := make([]*OutputPort, len(n.inputs))
			for i, in := range n.inputs {
				operands[i] = resolve(in.producer)
			}
			outs, err := dst.AddNode(kind.Op.Copy(), operands)
			if err != nil {
				return nil, err
			}
			for i, out := range n.outputs {
				mapped[out] = outs[i]
			}
		case copyableKind:
			newNode, err := kind.copyInto(dst, n, resolve)
			if err != nil {
				return nil, err
			}
			for i, out := range n.outputs {
				mapped[out] = newNode.outputs[i]
			}
		default:
			return nil, &InvariantViolationError{Context: "copyRegionInto", Detail: "unsupported node kind"}
		}
	}
	return mapped, nil
}
