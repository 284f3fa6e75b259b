package ops

import "github.com/halvorlinder/jlm/rvsdg"

// Alloca allocates storage for a value of type ValueType. It threads one
// memory-state edge in and out (so its placement relative to other memory
// operators stays observable) and produces the allocated pointer.
type Alloca struct {
	ValueType rvsdg.Type
}

func (a *Alloca) OperandTypes() []rvsdg.Type { return []rvsdg.Type{rvsdg.MemoryStateType{}} }

func (a *Alloca) ResultTypes() []rvsdg.Type {
	return []rvsdg.Type{rvsdg.PointerType{}, rvsdg.MemoryStateType{}}
}

func (a *Alloca) Equals(other rvsdg.Operator) bool {
	o, ok := other.(*Alloca)
	return ok && o.ValueType.Equals(a.ValueType)
}

func (a *Alloca) Copy() rvsdg.Operator { return &Alloca{ValueType: a.ValueType} }

func (a *Alloca) DebugString() string { return "alloca:" + a.ValueType.String() }

// Load reads a value of type ValueType through a pointer, consuming and
// producing a memory-state edge to order it relative to other memory
// operators.
type Load struct {
	ValueType rvsdg.Type
}

func (l *Load) OperandTypes() []rvsdg.Type {
	return []rvsdg.Type{rvsdg.PointerType{}, rvsdg.MemoryStateType{}}
}

func (l *Load) ResultTypes() []rvsdg.Type {
	return []rvsdg.Type{l.ValueType, rvsdg.MemoryStateType{}}
}

func (l *Load) Equals(other rvsdg.Operator) bool {
	o, ok := other.(*Load)
	return ok && o.ValueType.Equals(l.ValueType)
}

func (l *Load) Copy() rvsdg.Operator { return &Load{ValueType: l.ValueType} }

func (l *Load) DebugString() string { return "load:" + l.ValueType.String() }

// Store writes a value of type ValueType through a pointer. It may
// consume several memory-state edges (its NumStates) when it must order
// after more than one preceding operator, e.g. after a γ whose subregions
// each produced their own state; the domain reductions below collapse
// these back down to one wherever possible. Store always reports itself
// side-effecting: a write that nothing ever reads is still observable to
// anything that could alias the address, so it is never eligible for the
// generic dead-node reduction.
type Store struct {
	ValueType rvsdg.Type
	NumStates int
}

func (s *Store) OperandTypes() []rvsdg.Type {
	ts := make([]rvsdg.Type, 2+s.NumStates)
	ts[0] = rvsdg.PointerType{}
	ts[1] = s.ValueType
	for i := 0; i < s.NumStates; i++ {
		ts[2+i] = rvsdg.MemoryStateType{}
	}
	return ts
}

func (s *Store) ResultTypes() []rvsdg.Type { return []rvsdg.Type{rvsdg.MemoryStateType{}} }

func (s *Store) Equals(other rvsdg.Operator) bool {
	o, ok := other.(*Store)
	return ok && o.NumStates == s.NumStates && o.ValueType.Equals(s.ValueType)
}

func (s *Store) Copy() rvsdg.Operator { return &Store{ValueType: s.ValueType, NumStates: s.NumStates} }

func (s *Store) DebugString() string { return "store:" + s.ValueType.String() }

func (s *Store) IsSideEffecting() bool { return true }

// producerNode returns the node producing out, or ok=false if out is a
// region argument.
func producerNode(out *rvsdg.OutputPort) (*rvsdg.Node, bool) {
	n, ok := out.Owner().(*rvsdg.Node)
	return n, ok
}

// sameAddress reports whether a and b are the exact same pointer value
// (same producing output port) — the conservative notion of "same
// address" this catalogue requires before reordering or eliding a memory
// operator; no alias analysis is performed.
func sameAddress(a, b *rvsdg.OutputPort) bool { return a == b }
