package rvsdg

// Operator is an immutable descriptor for a primitive computation: a fixed
// arity of typed operand ports and typed result ports, plus the handful of
// capabilities the kernel needs to reason about a node without knowing its
// concrete meaning.
type Operator interface {
	// OperandTypes returns the ordered operand types.
	OperandTypes() []Type

	// ResultTypes returns the ordered result types.
	ResultTypes() []Type

	// Equals reports whether other is the same operator applied to the same
	// configuration (e.g. same immediate constant). Used by CSE.
	Equals(other Operator) bool

	// Copy returns an independent copy of the operator, used when a node is
	// copied into another region.
	Copy() Operator

	// DebugString returns a short human-readable rendering of the operator.
	DebugString() string
}

// SideEffecting is implemented by operators that must never be treated as
// dead even with zero consumers (stores, calls, state-threading operators).
// Dead-node elimination (spec I7) treats any node whose operator satisfies
// this as a root.
type SideEffecting interface {
	IsSideEffecting() bool
}

// isSideEffecting reports whether op declares itself side-effecting.
// Operators that do not implement SideEffecting are assumed pure.
func isSideEffecting(op Operator) bool {
	se, ok := op.(SideEffecting)
	return ok && se.IsSideEffecting()
}

// BinaryFlags describes the algebraic properties of a BinaryOperator.
type BinaryFlags uint8

const (
	FlagNone        BinaryFlags = 0
	FlagAssociative BinaryFlags = 1 << 0
	FlagCommutative BinaryFlags = 1 << 1
)

func (f BinaryFlags) IsAssociative() bool { return f&FlagAssociative != 0 }
func (f BinaryFlags) IsCommutative() bool { return f&FlagCommutative != 0 }

// ReductionPath tags how an operand pair of a binary operator can be
// simplified. None means no reduction applies.
type ReductionPath int

const (
	PathNone ReductionPath = iota
	PathConstants
	PathMerge
	PathLFold
	PathRFold
	PathLNeutral
	PathRNeutral
	PathFactor
)

func (p ReductionPath) String() string {
	switch p {
	case PathNone:
		return "none"
	case PathConstants:
		return "constants"
	case PathMerge:
		return "merge"
	case PathLFold:
		return "lfold"
	case PathRFold:
		return "rfold"
	case PathLNeutral:
		return "lneutral"
	case PathRNeutral:
		return "rneutral"
	case PathFactor:
		return "factor"
	default:
		return "path?"
	}
}

// BinaryOperator is an Operator of arity two that additionally knows how to
// reduce an operand pair and, if FlagAssociative is set, admits a flattened
// n-ary form (spec §4.5.2).
type BinaryOperator interface {
	Operator

	// Flags reports the algebraic properties of this operator.
	Flags() BinaryFlags

	// CanReduceOperandPair inspects the two operands (by their producing
	// output ports, so constant-ness etc. can be inspected through the
	// producing node) and returns the applicable reduction path, or
	// PathNone if neither operand simplifies against the other.
	CanReduceOperandPair(a, b *OutputPort) ReductionPath

	// ReduceOperandPair performs the reduction indicated by path, returning
	// the output port that should replace the pair. Must never fail: if a
	// reduction cannot be carried out, callers must not have been told path
	// applied in the first place.
	ReduceOperandPair(region *Region, path ReductionPath, a, b *OutputPort) *OutputPort
}

// IsAssociative reports whether op declares itself associative.
func IsAssociative(op BinaryOperator) bool { return op.Flags().IsAssociative() }

// IsCommutative reports whether op declares itself commutative.
func IsCommutative(op BinaryOperator) bool { return op.Flags().IsCommutative() }
