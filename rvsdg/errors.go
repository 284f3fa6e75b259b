package rvsdg

import "fmt"

// TypeMismatchError reports that an edge's endpoints disagree on type.
type TypeMismatchError struct {
	Context  string
	Expected Type
	Got      Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch in %s: expected %s, got %s", e.Context, e.Expected, e.Got)
}

// RegionMismatchError reports that an operand originates in a different
// region than the one it was offered to.
type RegionMismatchError struct {
	Context string
}

func (e *RegionMismatchError) Error() string {
	return fmt.Sprintf("region mismatch in %s: operand does not originate in the target region", e.Context)
}

// ArityMismatchError reports an operator/operand count mismatch, or a
// structural mapping whose count disagrees with its subregion signature.
type ArityMismatchError struct {
	Context  string
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("arity mismatch in %s: expected %d, got %d", e.Context, e.Expected, e.Got)
}

// InvariantViolationError reports that an internal structural check (e.g.
// acyclicity) would fail if the requested operation were carried out.
type InvariantViolationError struct {
	Context string
	Detail  string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Context, e.Detail)
}

// UnreducibleOperatorError reports that an associative-only construct (the
// flattened binary form) was given a non-associative operator.
type UnreducibleOperatorError struct {
	Operator Operator
}

func (e *UnreducibleOperatorError) Error() string {
	return fmt.Sprintf("operator %s cannot be flattened: not associative", e.Operator.DebugString())
}
