// Package ops is a small catalogue of concrete operators implementing the
// rvsdg.Operator / rvsdg.BinaryOperator interfaces: integer arithmetic,
// control-flow constants, and a minimal memory model (alloca/load/store).
// None of it is part of the IR kernel itself — the kernel only specifies
// the Operator interface, never a concrete instance of it.
package ops

import (
	"strconv"

	"github.com/halvorlinder/jlm/rvsdg"
)

// IntConstant is a nullary operator producing a fixed-width bitstring
// constant.
type IntConstant struct {
	Width uint32
	Value int64
}

func (c *IntConstant) OperandTypes() []rvsdg.Type { return nil }

func (c *IntConstant) ResultTypes() []rvsdg.Type {
	return []rvsdg.Type{rvsdg.BitsType{Width: c.Width}}
}

func (c *IntConstant) Equals(other rvsdg.Operator) bool {
	o, ok := other.(*IntConstant)
	return ok && o.Width == c.Width && o.Value == c.Value
}

func (c *IntConstant) Copy() rvsdg.Operator {
	return &IntConstant{Width: c.Width, Value: c.Value}
}

func (c *IntConstant) DebugString() string {
	return "intconst" + strconv.FormatUint(uint64(c.Width), 10) + ":" + strconv.FormatInt(c.Value, 10)
}

// NewIntConstant adds (or, via CSE, reuses) a constant node in region.
func NewIntConstant(region *rvsdg.Region, width uint32, value int64) *rvsdg.OutputPort {
	outs, err := region.AddNode(&IntConstant{Width: width, Value: value}, nil)
	if err != nil {
		panic(err) // nullary construction; arity/type/region checks cannot fail
	}
	return outs[0]
}

// AsIntConstant reports whether out is produced by an IntConstant node,
// returning its value.
func AsIntConstant(out *rvsdg.OutputPort) (value int64, ok bool) {
	n, isNode := out.Owner().(*rvsdg.Node)
	if !isNode {
		return 0, false
	}
	op, isSimple := n.Operator()
	if !isSimple {
		return 0, false
	}
	c, isConst := op.(*IntConstant)
	if !isConst {
		return 0, false
	}
	return c.Value, true
}

// ControlConstant is a nullary operator producing a fixed choice of a
// Control(NChoices) value, used to drive a γ's predicate or θ's exit.
type ControlConstant struct {
	NChoices uint32
	Choice   uint32
}

func (c *ControlConstant) OperandTypes() []rvsdg.Type { return nil }

func (c *ControlConstant) ResultTypes() []rvsdg.Type {
	return []rvsdg.Type{rvsdg.ControlType{NChoices: c.NChoices}}
}

func (c *ControlConstant) Equals(other rvsdg.Operator) bool {
	o, ok := other.(*ControlConstant)
	return ok && o.NChoices == c.NChoices && o.Choice == c.Choice
}

func (c *ControlConstant) Copy() rvsdg.Operator {
	return &ControlConstant{NChoices: c.NChoices, Choice: c.Choice}
}

func (c *ControlConstant) DebugString() string {
	return "ctlconst" + strconv.FormatUint(uint64(c.NChoices), 10) + ":" + strconv.FormatUint(uint64(c.Choice), 10)
}

// NewControlConstant adds (or, via CSE, reuses) a control-constant node.
func NewControlConstant(region *rvsdg.Region, nChoices, choice uint32) *rvsdg.OutputPort {
	outs, err := region.AddNode(&ControlConstant{NChoices: nChoices, Choice: choice}, nil)
	if err != nil {
		panic(err)
	}
	return outs[0]
}

// AsControlConstant reports whether out is produced by a ControlConstant
// node, returning the choice it selects. Used by passes driving γ's
// pure-predicate constant fold.
func AsControlConstant(out *rvsdg.OutputPort) (choice uint32, ok bool) {
	n, isNode := out.Owner().(*rvsdg.Node)
	if !isNode {
		return 0, false
	}
	op, isSimple := n.Operator()
	if !isSimple {
		return 0, false
	}
	c, isConst := op.(*ControlConstant)
	if !isConst {
		return 0, false
	}
	return c.Choice, true
}
