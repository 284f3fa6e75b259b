package rvsdg

import "reflect"

// NormalForm is the rewrite behavior attached to an operator class. It is
// consulted by Region.AddNode and may construct the requested node
// unconditionally, short-circuit to an existing or reduced equivalent, or
// construct the requested node while marking it for later normalization.
type NormalForm interface {
	// NormalizedCreate performs (or elides) construction of a node for op
	// over operands in region, returning the output ports the caller
	// should use.
	NormalizedCreate(region *Region, op Operator, operands []*OutputPort) ([]*OutputPort, error)

	// Mutable reports whether passes may rewrite nodes of this class. When
	// false, NormalizedCreate must still materialize the requested node,
	// though it may record the reduction it would have liked to apply for
	// a later explicit Normalize call.
	Mutable() bool
	SetMutable(bool)
}

// BaseNormalForm implements the toggle bookkeeping shared by every normal
// form: every toggle except distribute and factorize defaults on, each
// exposed as a getter/setter pair
// (mirroring jlm's binary_normal_form, which carries these as private
// fields with public accessor methods rather than a struct literal the
// caller mutates directly).
type BaseNormalForm struct {
	mutable    bool
	cse        bool
	reducible  bool
	reorder    bool
	flatten    bool
	distribute bool
	factorize  bool
}

// NewBaseNormalForm returns a BaseNormalForm with every toggle on except
// distribute and factorize, which start off.
func NewBaseNormalForm() BaseNormalForm {
	return BaseNormalForm{
		mutable:    true,
		cse:        true,
		reducible:  true,
		reorder:    true,
		flatten:    true,
		distribute: false, // spec §9: off by default, under-documented invertibility
		factorize:  false,
	}
}

func (b *BaseNormalForm) Mutable() bool       { return b.mutable }
func (b *BaseNormalForm) SetMutable(v bool)   { b.mutable = v }
func (b *BaseNormalForm) CSE() bool           { return b.cse }
func (b *BaseNormalForm) SetCSE(v bool)       { b.cse = v }
func (b *BaseNormalForm) Reducible() bool     { return b.reducible }
func (b *BaseNormalForm) SetReducible(v bool) { b.reducible = v }
func (b *BaseNormalForm) Reorder() bool       { return b.reorder }
func (b *BaseNormalForm) SetReorder(v bool)   { b.reorder = v }
func (b *BaseNormalForm) Flatten() bool       { return b.flatten }
func (b *BaseNormalForm) SetFlatten(v bool)   { b.flatten = v }
func (b *BaseNormalForm) Distribute() bool    { return b.distribute }
func (b *BaseNormalForm) SetDistribute(v bool) { b.distribute = v }
func (b *BaseNormalForm) Factorize() bool     { return b.factorize }
func (b *BaseNormalForm) SetFactorize(v bool) { b.factorize = v }

// DefaultNormalForm applies the two generic reductions of spec §4.5.1 (CSE
// and, implicitly via pruning, dead-node elimination) and nothing else. It
// is the fallback used for any operator class that has not registered a
// more specific normal form.
type DefaultNormalForm struct {
	BaseNormalForm
}

// NewDefaultNormalForm returns a DefaultNormalForm with default toggles.
func NewDefaultNormalForm() *DefaultNormalForm {
	return &DefaultNormalForm{BaseNormalForm: NewBaseNormalForm()}
}

func (nf *DefaultNormalForm) NormalizedCreate(region *Region, op Operator, operands []*OutputPort) ([]*OutputPort, error) {
	if nf.Mutable() && nf.CSE() {
		if existing := region.findCSE(op, operands); existing != nil {
			return existing.Outputs(), nil
		}
	}
	n := region.createSimpleNode(op, operands)
	return n.Outputs(), nil
}

// NormalFormRegistry maps an operator-class token (the operator's dynamic
// reflect.Type, a lightweight identity suitable for map lookup) to its
// registered NormalForm.
type NormalFormRegistry struct {
	byClass map[reflect.Type]NormalForm
	fallback NormalForm
}

// NewNormalFormRegistry returns a registry whose fallback is a fresh
// DefaultNormalForm; operator classes with no specific registration get
// generic CSE-only treatment.
func NewNormalFormRegistry() *NormalFormRegistry {
	return &NormalFormRegistry{
		byClass:  make(map[reflect.Type]NormalForm),
		fallback: NewDefaultNormalForm(),
	}
}

// Register installs nf as the normal form for op's dynamic type.
func (r *NormalFormRegistry) Register(op Operator, nf NormalForm) {
	r.byClass[reflect.TypeOf(op)] = nf
}

// Lookup returns the registered normal form for op's class, or the
// registry's fallback if none was registered.
func (r *NormalFormRegistry) Lookup(op Operator) NormalForm {
	return r.lookup(op)
}

func (r *NormalFormRegistry) lookup(op Operator) NormalForm {
	if nf, ok := r.byClass[reflect.TypeOf(op)]; ok {
		return nf
	}
	return r.fallback
}
