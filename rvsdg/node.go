package rvsdg

// NodeKind discriminates a Node's structural shape: a simple node wrapping
// an Operator, or one of the five structural node kinds (γ θ λ δ φ).
type NodeKind interface {
	nodeKind()

	// DebugString returns a short human-readable rendering of the kind.
	DebugString() string
}

// SimpleKind is a Node wrapping an immutable Operator. Its operand/result
// counts are exactly the operator's arity.
type SimpleKind struct {
	Op Operator
}

func (*SimpleKind) nodeKind() {}

func (k *SimpleKind) DebugString() string { return k.Op.DebugString() }

// Node belongs to exactly one Region for its lifetime.
type Node struct {
	region  *Region
	kind    NodeKind
	inputs  []*InputPort
	outputs []*OutputPort
	seq     int // creation order within region, stable topological tie-break
}

// OwnerRegion implements PortOwner: a node's ports live in the region that
// owns the node.
func (n *Node) OwnerRegion() *Region { return n.region }

// Region returns the region this node belongs to.
func (n *Node) Region() *Region { return n.region }

// Kind returns the node's structural discriminator.
func (n *Node) Kind() NodeKind { return n.kind }

// Inputs returns the node's operand ports in order.
func (n *Node) Inputs() []*InputPort { return n.inputs }

// Outputs returns the node's result ports in order.
func (n *Node) Outputs() []*OutputPort { return n.outputs }

// Input returns the i'th operand port.
func (n *Node) Input(i int) *InputPort { return n.inputs[i] }

// Output returns the i'th result port.
func (n *Node) Output(i int) *OutputPort { return n.outputs[i] }

// Operator returns the node's operator and true if this is a simple node.
func (n *Node) Operator() (Operator, bool) {
	sk, ok := n.kind.(*SimpleKind)
	if !ok {
		return nil, false
	}
	return sk.Op, true
}

// IsStructural reports whether this node owns one or more subregions.
func (n *Node) IsStructural() bool {
	_, simple := n.kind.(*SimpleKind)
	return !simple
}

// IsSideEffecting reports whether this node must be treated as a dead-node
// elimination root regardless of consumer count (spec I7). Only simple
// nodes carry operators, so only simple nodes can be side-effecting.
func (n *Node) IsSideEffecting() bool {
	sk, ok := n.kind.(*SimpleKind)
	return ok && isSideEffecting(sk.Op)
}

// DebugString renders the node's kind for diagnostics.
func (n *Node) DebugString() string { return n.kind.DebugString() }

// removeOutputAt deletes the output at idx, which must have zero
// consumers, and renumbers the remaining outputs to preserve contiguity
// (I6).
func (n *Node) removeOutputAt(idx int) {
	n.outputs = append(n.outputs[:idx], n.outputs[idx+1:]...)
	for i := idx; i < len(n.outputs); i++ {
		n.outputs[i].index = i
	}
}

// removeInputAt deletes the input at idx, unlinking it from its producer,
// and renumbers the remaining inputs to preserve contiguity (I6).
func (n *Node) removeInputAt(idx int) {
	in := n.inputs[idx]
	in.producer.removeConsumer(in.elem)
	n.inputs = append(n.inputs[:idx], n.inputs[idx+1:]...)
	for i := idx; i < len(n.inputs); i++ {
		n.inputs[i].index = i
	}
}

// allocatePorts builds the input/output port slices for a freshly
// constructed node given its operand producers and the arity dictated by
// opTypes/resultTypes. Callers have already validated arity and type.
func (n *Node) allocatePorts(operands []*OutputPort, operandTypes, resultTypes []Type) {
	n.inputs = make([]*InputPort, len(operandTypes))
	for i, t := range operandTypes {
		n.inputs[i] = newInputPort(t, n, i, operands[i])
	}
	n.outputs = make([]*OutputPort, len(resultTypes))
	for i, t := range resultTypes {
		n.outputs[i] = newOutputPort(t, n, i)
	}
}
