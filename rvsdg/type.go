package rvsdg

import "strconv"

// Type is an immutable, structurally-equal value describing the shape of
// data flowing across an edge. Two syntactically equal types may be
// distinct instances but always compare equal via Equals.
type Type interface {
	// Equals reports whether other describes the same type structurally.
	Equals(other Type) bool

	// String returns a debug rendering of the type.
	String() string

	typeTag()
}

// FloatSize enumerates the supported floating point widths.
type FloatSize uint8

const (
	FloatHalf FloatSize = iota
	Float32
	Float64
	FloatX86FP80
	Float128
)

func (s FloatSize) String() string {
	switch s {
	case FloatHalf:
		return "half"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case FloatX86FP80:
		return "x86fp80"
	case Float128:
		return "f128"
	default:
		return "float?"
	}
}

// BitsType is a bitstring of fixed width, e.g. the type of integer-ish
// values before any signedness interpretation is imposed by an operator.
type BitsType struct {
	Width uint32
}

func (BitsType) typeTag() {}

func (t BitsType) Equals(other Type) bool {
	o, ok := other.(BitsType)
	return ok && o.Width == t.Width
}

func (t BitsType) String() string {
	return "bits" + strconv.FormatUint(uint64(t.Width), 10)
}

// FloatType is a floating point value of the given size.
type FloatType struct {
	Size FloatSize
}

func (FloatType) typeTag() {}

func (t FloatType) Equals(other Type) bool {
	o, ok := other.(FloatType)
	return ok && o.Size == t.Size
}

func (t FloatType) String() string {
	return "float:" + t.Size.String()
}

// ControlType is a control token selecting one of NChoices alternatives,
// e.g. the predicate consumed by a gamma node.
type ControlType struct {
	NChoices uint32
}

func (ControlType) typeTag() {}

func (t ControlType) Equals(other Type) bool {
	o, ok := other.(ControlType)
	return ok && o.NChoices == t.NChoices
}

func (t ControlType) String() string {
	return "ctl" + strconv.FormatUint(uint64(t.NChoices), 10)
}

// IOStateType threads ordering constraints between I/O-affecting operators.
type IOStateType struct{}

func (IOStateType) typeTag()                {}
func (IOStateType) Equals(other Type) bool  { _, ok := other.(IOStateType); return ok }
func (IOStateType) String() string          { return "iostate" }

// MemoryStateType threads ordering constraints between memory-affecting
// operators (loads, stores, allocas).
type MemoryStateType struct{}

func (MemoryStateType) typeTag()               {}
func (MemoryStateType) Equals(other Type) bool { _, ok := other.(MemoryStateType); return ok }
func (MemoryStateType) String() string         { return "memstate" }

// LoopStateType threads ordering constraints specific to loop iteration.
type LoopStateType struct{}

func (LoopStateType) typeTag()               {}
func (LoopStateType) Equals(other Type) bool { _, ok := other.(LoopStateType); return ok }
func (LoopStateType) String() string         { return "loopstate" }

// PointerType is an opaque pointer value.
type PointerType struct{}

func (PointerType) typeTag()               {}
func (PointerType) Equals(other Type) bool { _, ok := other.(PointerType); return ok }
func (PointerType) String() string         { return "ptr" }

// ArrayType is a fixed-length homogeneous array.
type ArrayType struct {
	Element Type
	Length  uint64
}

func (ArrayType) typeTag() {}

func (t ArrayType) Equals(other Type) bool {
	o, ok := other.(ArrayType)
	return ok && o.Length == t.Length && o.Element.Equals(t.Element)
}

func (t ArrayType) String() string {
	return "array[" + strconv.FormatUint(t.Length, 10) + "]" + t.Element.String()
}

// RecordType is an ordered tuple of fields.
type RecordType struct {
	Fields []Type
}

func (RecordType) typeTag() {}

func (t RecordType) Equals(other Type) bool {
	o, ok := other.(RecordType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i := range t.Fields {
		if !t.Fields[i].Equals(o.Fields[i]) {
			return false
		}
	}
	return true
}

func (t RecordType) String() string {
	s := "record("
	for i, f := range t.Fields {
		if i > 0 {
			s += ","
		}
		s += f.String()
	}
	return s + ")"
}

// FunctionType is the signature of a lambda's callable value.
type FunctionType struct {
	Args    []Type
	Results []Type
}

func (FunctionType) typeTag() {}

func (t FunctionType) Equals(other Type) bool {
	o, ok := other.(FunctionType)
	if !ok || len(o.Args) != len(t.Args) || len(o.Results) != len(t.Results) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	for i := range t.Results {
		if !t.Results[i].Equals(o.Results[i]) {
			return false
		}
	}
	return true
}

func (t FunctionType) String() string {
	s := "fn("
	for i, a := range t.Args {
		if i > 0 {
			s += ","
		}
		s += a.String()
	}
	s += ")->("
	for i, r := range t.Results {
		if i > 0 {
			s += ","
		}
		s += r.String()
	}
	return s + ")"
}

// typeInterner deduplicates Type values by structural key, mirroring the
// teacher's TypeRegistry: two structurally-equal types created through the
// same Graph share a single instance.
type typeInterner struct {
	byKey map[string]Type
}

func newTypeInterner() *typeInterner {
	return &typeInterner{byKey: make(map[string]Type, 16)}
}

// Intern returns the canonical instance for t, registering it on first use.
func (in *typeInterner) Intern(t Type) Type {
	key := t.String()
	if existing, ok := in.byKey[key]; ok {
		return existing
	}
	in.byKey[key] = t
	return t
}
