package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvorlinder/jlm/internal/serialize"
	"github.com/halvorlinder/jlm/ops"
	"github.com/halvorlinder/jlm/rvsdg"
)

// defaultRegistry wires serialize.Codecs for the operator catalogue in
// ops/. serialize itself never imports ops (see internal/serialize's
// package doc); this is the one place that closes that gap for the CLI.
func defaultRegistry() (*serialize.Registry, error) {
	return serialize.NewRegistry(
		intConstantCodec{},
		controlConstantCodec{},
		intBinaryOpCodec{},
		allocaCodec{},
		loadCodec{},
		storeCodec{},
	)
}

type intConstantCodec struct{}

func (intConstantCodec) Tag() string { return "intconst" }
func (intConstantCodec) Matches(op rvsdg.Operator) bool {
	_, ok := op.(*ops.IntConstant)
	return ok
}
func (intConstantCodec) Encode(op rvsdg.Operator) string {
	c := op.(*ops.IntConstant)
	return strconv.FormatUint(uint64(c.Width), 10) + ":" + strconv.FormatInt(c.Value, 10)
}
func (intConstantCodec) Decode(payload string) (rvsdg.Operator, error) {
	width, value, err := splitUintInt(payload)
	if err != nil {
		return nil, fmt.Errorf("intconst: %w", err)
	}
	return &ops.IntConstant{Width: uint32(width), Value: value}, nil
}

type controlConstantCodec struct{}

func (controlConstantCodec) Tag() string { return "ctlconst" }
func (controlConstantCodec) Matches(op rvsdg.Operator) bool {
	_, ok := op.(*ops.ControlConstant)
	return ok
}
func (controlConstantCodec) Encode(op rvsdg.Operator) string {
	c := op.(*ops.ControlConstant)
	return strconv.FormatUint(uint64(c.NChoices), 10) + ":" + strconv.FormatUint(uint64(c.Choice), 10)
}
func (controlConstantCodec) Decode(payload string) (rvsdg.Operator, error) {
	n, choice, err := splitUintUint(payload)
	if err != nil {
		return nil, fmt.Errorf("ctlconst: %w", err)
	}
	return &ops.ControlConstant{NChoices: uint32(n), Choice: uint32(choice)}, nil
}

type intBinaryOpCodec struct{}

func (intBinaryOpCodec) Tag() string { return "intbin" }
func (intBinaryOpCodec) Matches(op rvsdg.Operator) bool {
	_, ok := op.(*ops.IntBinaryOp)
	return ok
}
func (intBinaryOpCodec) Encode(op rvsdg.Operator) string {
	b := op.(*ops.IntBinaryOp)
	return strconv.FormatUint(uint64(b.Kind), 10) + ":" + strconv.FormatUint(uint64(b.Width), 10)
}
func (intBinaryOpCodec) Decode(payload string) (rvsdg.Operator, error) {
	kind, width, err := splitUintUint(payload)
	if err != nil {
		return nil, fmt.Errorf("intbin: %w", err)
	}
	return &ops.IntBinaryOp{Kind: ops.IntBinaryKind(kind), Width: uint32(width)}, nil
}

type allocaCodec struct{}

func (allocaCodec) Tag() string { return "alloca" }
func (allocaCodec) Matches(op rvsdg.Operator) bool {
	_, ok := op.(*ops.Alloca)
	return ok
}
func (allocaCodec) Encode(op rvsdg.Operator) string {
	return serialize.EncodeType(op.(*ops.Alloca).ValueType)
}
func (allocaCodec) Decode(payload string) (rvsdg.Operator, error) {
	typ, err := serialize.DecodeType(payload)
	if err != nil {
		return nil, fmt.Errorf("alloca: %w", err)
	}
	return &ops.Alloca{ValueType: typ}, nil
}

type loadCodec struct{}

func (loadCodec) Tag() string { return "load" }
func (loadCodec) Matches(op rvsdg.Operator) bool {
	_, ok := op.(*ops.Load)
	return ok
}
func (loadCodec) Encode(op rvsdg.Operator) string {
	return serialize.EncodeType(op.(*ops.Load).ValueType)
}
func (loadCodec) Decode(payload string) (rvsdg.Operator, error) {
	typ, err := serialize.DecodeType(payload)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return &ops.Load{ValueType: typ}, nil
}

type storeCodec struct{}

func (storeCodec) Tag() string { return "store" }
func (storeCodec) Matches(op rvsdg.Operator) bool {
	_, ok := op.(*ops.Store)
	return ok
}
func (storeCodec) Encode(op rvsdg.Operator) string {
	s := op.(*ops.Store)
	return strconv.Itoa(s.NumStates) + ":" + serialize.EncodeType(s.ValueType)
}
func (storeCodec) Decode(payload string) (rvsdg.Operator, error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("store: malformed payload %q", payload)
	}
	numStates, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	typ, err := serialize.DecodeType(parts[1])
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return &ops.Store{ValueType: typ, NumStates: numStates}, nil
}

func splitUintInt(payload string) (a uint64, b int64, err error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed payload %q", payload)
	}
	a, err = strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	b, err = strconv.ParseInt(parts[1], 10, 64)
	return a, b, err
}

func splitUintUint(payload string) (a, b uint64, err error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed payload %q", payload)
	}
	a, err = strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	b, err = strconv.ParseUint(parts[1], 10, 32)
	return a, b, err
}
