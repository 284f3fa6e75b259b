package rvsdg

import "container/list"

// PortOwner is implemented by anything that can own ports: a Node (its
// input/output ports) or a Region (its argument/result ports).
type PortOwner interface {
	// OwnerRegion returns the region that this owner's ports live in.
	// For a Node this is the region the node belongs to; for a Region it
	// is the region itself (its arguments/results are scoped to it).
	OwnerRegion() *Region
}

// OutputPort is a typed value producer: a node result or a region
// argument. Any number of input ports may consume it (fan-out).
type OutputPort struct {
	typ       Type
	owner     PortOwner
	index     int
	consumers *list.List // of *InputPort
}

func newOutputPort(typ Type, owner PortOwner, index int) *OutputPort {
	return &OutputPort{typ: typ, owner: owner, index: index, consumers: list.New()}
}

// Type returns the port's immutable type.
func (p *OutputPort) Type() Type { return p.typ }

// Region returns the region this output port belongs to.
func (p *OutputPort) Region() *Region { return p.owner.OwnerRegion() }

// Owner returns the Node or Region this output port belongs to.
func (p *OutputPort) Owner() PortOwner { return p.owner }

// Index returns the port's position among its owner's outputs/arguments.
func (p *OutputPort) Index() int { return p.index }

// NumConsumers returns the current fan-out of this output port.
func (p *OutputPort) NumConsumers() int { return p.consumers.Len() }

// Consumers returns the input ports currently bound to this output, in
// binding order. The returned slice is a snapshot.
func (p *OutputPort) Consumers() []*InputPort {
	out := make([]*InputPort, 0, p.consumers.Len())
	for e := p.consumers.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*InputPort))
	}
	return out
}

func (p *OutputPort) addConsumer(in *InputPort) *list.Element {
	return p.consumers.PushBack(in)
}

func (p *OutputPort) removeConsumer(elem *list.Element) {
	p.consumers.Remove(elem)
}

// InputPort is a typed value consumer: a node operand or a region result.
// It is bound to exactly one OutputPort in the same region at all times.
type InputPort struct {
	typ      Type
	owner    PortOwner
	index    int
	producer *OutputPort
	elem     *list.Element // this port's node within producer.consumers
}

func newInputPort(typ Type, owner PortOwner, index int, producer *OutputPort) *InputPort {
	p := &InputPort{typ: typ, owner: owner, index: index, producer: producer}
	p.elem = producer.addConsumer(p)
	return p
}

// Type returns the port's immutable type.
func (p *InputPort) Type() Type { return p.typ }

// Region returns the region this input port belongs to.
func (p *InputPort) Region() *Region { return p.owner.OwnerRegion() }

// Owner returns the Node or Region this input port belongs to.
func (p *InputPort) Owner() PortOwner { return p.owner }

// Index returns the port's position among its owner's inputs/results.
func (p *InputPort) Index() int { return p.index }

// Producer returns the output port this input is currently bound to.
func (p *InputPort) Producer() *OutputPort { return p.producer }

// rebind atomically moves this input from its current producer to newOut.
// Callers (Region.Divert) are responsible for invariant checks.
func (p *InputPort) rebind(newOut *OutputPort) {
	p.producer.removeConsumer(p.elem)
	p.producer = newOut
	p.elem = newOut.addConsumer(p)
}
