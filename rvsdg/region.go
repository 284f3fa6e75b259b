package rvsdg

import (
	"reflect"
	"sort"
)

// Region is an ordered sequence of nodes forming a DAG, with designated
// arguments (inputs from the enclosing node) and results (outputs to the
// enclosing node). A region belongs to exactly one structural node, except
// the graph's root region, which belongs to the Graph directly (owner is
// nil in that case).
type Region struct {
	graph  *Graph
	owner  *Node // nil for the graph's root region
	nodes  []*Node
	args   []*OutputPort
	rslts  []*InputPort
	seq    int
	cseIdx map[reflect.Type][]*Node
}

func newRegion(graph *Graph, owner *Node) *Region {
	return &Region{
		graph:  graph,
		owner:  owner,
		cseIdx: make(map[reflect.Type][]*Node),
	}
}

// OwnerRegion implements PortOwner: a region's own arguments/results are
// scoped to itself.
func (r *Region) OwnerRegion() *Region { return r }

// Graph returns the graph this region belongs to.
func (r *Region) Graph() *Graph { return r.graph }

// OwnerNode returns the structural node that owns this region, or nil for
// the graph's root region.
func (r *Region) OwnerNode() *Node { return r.owner }

// Nodes returns the region's owned nodes in creation order.
func (r *Region) Nodes() []*Node { return r.nodes }

// Arguments returns the region's argument (entry) ports in order.
func (r *Region) Arguments() []*OutputPort { return r.args }

// Results returns the region's result (exit) ports in order.
func (r *Region) Results() []*InputPort { return r.rslts }

func (r *Region) nextSeq() int {
	s := r.seq
	r.seq++
	return s
}

// AddArgument creates a new region-entry output port of the given type.
func (r *Region) AddArgument(typ Type) *OutputPort {
	p := newOutputPort(typ, r, len(r.args))
	r.args = append(r.args, p)
	return p
}

// AddResult creates a new region-exit input port bound to origin, which
// must be an output port of this same region (I1).
func (r *Region) AddResult(typ Type, origin *OutputPort) (*InputPort, error) {
	if origin.Region() != r {
		return nil, &RegionMismatchError{Context: "Region.AddResult"}
	}
	if !origin.Type().Equals(typ) {
		return nil, &TypeMismatchError{Context: "Region.AddResult", Expected: typ, Got: origin.Type()}
	}
	p := newInputPort(typ, r, len(r.rslts), origin)
	r.rslts = append(r.rslts, p)
	return p, nil
}

// validateOperands checks arity and, for each operand, that it lives in
// this region and matches the operator's declared operand type. Returns a
// structural error and mutates nothing if any check fails (spec §4.8: the
// graph is left in its pre-operation state).
func (r *Region) validateOperands(context string, operandTypes []Type, operands []*OutputPort) error {
	if len(operands) != len(operandTypes) {
		return &ArityMismatchError{Context: context, Expected: len(operandTypes), Got: len(operands)}
	}
	for i, operand := range operands {
		if operand.Region() != r {
			return &RegionMismatchError{Context: context}
		}
		if !operand.Type().Equals(operandTypes[i]) {
			return &TypeMismatchError{Context: context, Expected: operandTypes[i], Got: operand.Type()}
		}
	}
	return nil
}

// AddNode creates a simple node wrapping op applied to operands, after
// consulting op's registered normal form. The normal form may return the
// outputs of an existing equivalent node (CSE), a reduced equivalent, or
// the outputs of a freshly materialized node.
func (r *Region) AddNode(op Operator, operands []*OutputPort) ([]*OutputPort, error) {
	if err := r.validateOperands("Region.AddNode", op.OperandTypes(), operands); err != nil {
		return nil, err
	}
	nf := r.graph.normalForms.lookup(op)
	return nf.NormalizedCreate(r, op, operands)
}

// createSimpleNode unconditionally materializes a simple node for op over
// operands, bypassing normal-form reduction. Operands must already be
// validated (arity, region, type); normal form implementations use this as
// their fallback when no reduction applies.
func (r *Region) createSimpleNode(op Operator, operands []*OutputPort) *Node {
	n := &Node{region: r, kind: &SimpleKind{Op: op}, seq: r.nextSeq()}
	n.allocatePorts(operands, op.OperandTypes(), op.ResultTypes())
	r.nodes = append(r.nodes, n)
	r.cseIdx[reflect.TypeOf(op)] = append(r.cseIdx[reflect.TypeOf(op)], n)
	return n
}

// CreateSimpleNode unconditionally materializes a simple node for op over
// operands, after validating arity/region/type, bypassing normal-form
// reduction entirely. Region.AddNode is not safe for this purpose from
// within a NormalForm implementation: it would consult the normal form
// again and recurse. Normal forms registered from outside this package
// (see NormalForm) use this as their base-case constructor, the same way
// BinaryNormalForm and FlattenedBinaryNormalForm use the unexported
// createSimpleNode from inside it.
func (r *Region) CreateSimpleNode(op Operator, operands []*OutputPort) (*Node, error) {
	if err := r.validateOperands("Region.CreateSimpleNode", op.OperandTypes(), operands); err != nil {
		return nil, err
	}
	return r.createSimpleNode(op, operands), nil
}

// FindCSE returns an existing node in the region applying an operator
// equal to op to the same operand ports, if one already exists. Exposed
// alongside CreateSimpleNode for normal forms registered from outside
// this package.
func (r *Region) FindCSE(op Operator, operands []*OutputPort) *Node {
	return r.findCSE(op, operands)
}

// addStructuralNode appends an already-constructed structural node (built
// by the γ/θ/λ/δ/φ constructors in gamma.go/theta.go/lambda.go/delta.go/
// phi.go) to the region's node list.
func (r *Region) addStructuralNode(n *Node) {
	n.seq = r.nextSeq()
	r.nodes = append(r.nodes, n)
}

// findCSE returns an existing node applying an operator equal to op to the
// same operand ports, if one already exists in this region.
func (r *Region) findCSE(op Operator, operands []*OutputPort) *Node {
	for _, cand := range r.cseIdx[reflect.TypeOf(op)] {
		candOp, ok := cand.Operator()
		if !ok || !candOp.Equals(op) {
			continue
		}
		if len(cand.inputs) != len(operands) {
			continue
		}
		match := true
		for i, in := range cand.inputs {
			if in.producer != operands[i] {
				match = false
				break
			}
		}
		if match {
			return cand
		}
	}
	return nil
}

// removeArgumentAt deletes the argument at idx, which must have zero
// consumers, and renumbers the remaining arguments to preserve
// contiguity (I6).
func (r *Region) removeArgumentAt(idx int) {
	r.args = append(r.args[:idx], r.args[idx+1:]...)
	for i := idx; i < len(r.args); i++ {
		r.args[i].index = i
	}
}

// removeResultAt deletes the result at idx, unlinking it from its
// producer, and renumbers the remaining results to preserve contiguity
// (I6).
func (r *Region) removeResultAt(idx int) {
	in := r.rslts[idx]
	in.producer.removeConsumer(in.elem)
	r.rslts = append(r.rslts[:idx], r.rslts[idx+1:]...)
	for i := idx; i < len(r.rslts); i++ {
		r.rslts[i].index = i
	}
}

// RemoveDeadNode excises n from the region immediately, bypassing the
// side-effecting anchor rule Prune otherwise applies. It is for normal
// forms that have already established n is unreachable by construction
// (e.g. a superseded store with a freshly rerouted successor): unlike
// generic pruning, a side-effecting node with zero consumers on every
// output is still eligible here, since the caller has already verified
// nothing else can observe it. It refuses to remove a node that still has
// a live consumer on any output, since that would silently drop an edge
// a normal form did not itself account for.
func (r *Region) RemoveDeadNode(n *Node) error {
	for _, out := range n.outputs {
		if out.NumConsumers() > 0 {
			return &InvariantViolationError{
				Context: "Region.RemoveDeadNode",
				Detail:  "node has a surviving consumer",
			}
		}
	}
	r.removeNode(n)
	return nil
}

// removeNode deletes n from the region, unlinking each of its inputs from
// their producers. Callers (prune.go, RemoveDeadNode) are responsible for
// ensuring n has no surviving consumers.
func (r *Region) removeNode(n *Node) {
	for _, in := range n.inputs {
		in.producer.removeConsumer(in.elem)
	}
	for i, cand := range r.nodes {
		if cand == n {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			break
		}
	}
	if op, ok := n.Operator(); ok {
		cls := reflect.TypeOf(op)
		arr := r.cseIdx[cls]
		for i, cand := range arr {
			if cand == n {
				r.cseIdx[cls] = append(arr[:i], arr[i+1:]...)
				break
			}
		}
	}
}

// Divert rebinds in to newOut, which must be an output port of the same
// region and of an equal type. Divert is the sole mechanism by which
// passes rewrite graph shape; it preserves I1/I3 by construction and
// rejects rebindings that would introduce a cycle (I2).
func (r *Region) Divert(in *InputPort, newOut *OutputPort) error {
	if in.Region() != r {
		return &RegionMismatchError{Context: "Region.Divert"}
	}
	if newOut.Region() != r {
		return &RegionMismatchError{Context: "Region.Divert"}
	}
	if !in.Type().Equals(newOut.Type()) {
		return &TypeMismatchError{Context: "Region.Divert", Expected: in.Type(), Got: newOut.Type()}
	}
	if consumerNode, ok := in.owner.(*Node); ok {
		if r.dependsOn(newOut, consumerNode) {
			return &InvariantViolationError{
				Context: "Region.Divert",
				Detail:  "rebinding would introduce a cycle",
			}
		}
	}
	in.rebind(newOut)
	return nil
}

// dependsOn reports whether out's value transitively depends on target
// (i.e. target is out's node or an ancestor of it). Used to reject diverts
// that would create a cycle.
func (r *Region) dependsOn(out *OutputPort, target *Node) bool {
	n, ok := out.owner.(*Node)
	if !ok {
		return false // region arguments have no producer node
	}
	if n == target {
		return true
	}
	visited := make(map[*Node]bool)
	var walk func(*Node) bool
	walk = func(cur *Node) bool {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		if cur == target {
			return true
		}
		for _, in := range cur.inputs {
			if pn, ok := in.producer.owner.(*Node); ok {
				if walk(pn) {
					return true
				}
			}
		}
		return false
	}
	return walk(n)
}

// NodesTopological returns the region's nodes in a stable topological
// order: for any edge u -> v inside the region, u precedes v. Order is
// deterministic given construction order (ties broken by creation
// sequence).
func (r *Region) NodesTopological() []*Node {
	indegree := make(map[*Node]int, len(r.nodes))
	dependents := make(map[*Node][]*Node, len(r.nodes))
	for _, n := range r.nodes {
		indegree[n] = 0
	}
	for _, n := range r.nodes {
		producers := map[*Node]bool{}
		for _, in := range n.inputs {
			if pn, ok := in.producer.owner.(*Node); ok && pn.region == r {
				producers[pn] = true
			}
		}
		indegree[n] = len(producers)
		for pn := range producers {
			dependents[pn] = append(dependents[pn], n)
		}
	}

	ready := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })

	out := make([]*Node, 0, len(r.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		out = append(out, n)
		next := dependents[n]
		sort.Slice(next, func(i, j int) bool { return next[i].seq < next[j].seq })
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				// insertion-sort dep into ready by seq to keep determinism
				pos := len(ready)
				for pos > 0 && ready[pos-1].seq > dep.seq {
					pos--
				}
				ready = append(ready, nil)
				copy(ready[pos+1:], ready[pos:])
				ready[pos] = dep
			}
		}
	}
	return out
}
