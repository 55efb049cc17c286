package parfor

import "golang.org/x/exp/constraints"

// Number is any type the built-in Sum/Product reductions accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// Commutativity records whether a caller-supplied reduction operator is
// declared commutative and associative. CustomOp rejects any operator that
// isn't marked Commutative; the built-in operators are always treated as
// commutative since they are associative and commutative by construction.
// Non-commutative custom reductions are rejected with a diagnostic rather
// than silently accepted, since the merge step combines worker-local
// partials in an order the caller doesn't control.
type Commutativity int

const (
	NotCommutative Commutativity = iota
	Commutative
)

// Reducer is a binary, associative-commutative operator over T, together
// with its identity element. The identity is what each worker's partial
// accumulator starts from; folding a worker's own contributions against the
// identity first, and only then combining partials with the caller's true
// initial value, is what keeps the reduction correct when the caller's
// initial value isn't itself the operator's identity (e.g. starting a sum
// at 5 instead of 0).
type Reducer[T any] struct {
	fn          func(a, b T) T
	identity    T
	commutative bool
}

// CustomOp wraps a caller-supplied binary function as a Reducer. c must be
// Commutative; NotCommutative is rejected with a non-nil error rather than
// accepted silently, since the orchestrator's merge order depends on the
// operator being associative and commutative.
func CustomOp[T any](fn func(a, b T) T, identity T, c Commutativity) (Reducer[T], error) {
	if c != Commutative {
		return Reducer[T]{}, NewNonCommutativeError()
	}
	return Reducer[T]{fn: fn, identity: identity, commutative: true}, nil
}

// NonCommutativeError is returned by CustomOp when the caller doesn't
// declare their operator commutative and associative.
type NonCommutativeError struct{}

func (*NonCommutativeError) Error() string {
	return "parfor: reduction operator must be declared Commutative (associative and commutative); " +
		"non-commutative custom reductions are rejected, not silently accepted"
}

// NewNonCommutativeError constructs a NonCommutativeError.
func NewNonCommutativeError() error { return &NonCommutativeError{} }

// Sum is the built-in "+" reduction.
func Sum[T Number]() Reducer[T] {
	var zero T
	return Reducer[T]{fn: func(a, b T) T { return a + b }, identity: zero, commutative: true}
}

// Product is the built-in "*" reduction.
func Product[T Number]() Reducer[T] {
	var one T = 1
	return Reducer[T]{fn: func(a, b T) T { return a * b }, identity: one, commutative: true}
}

// And is the built-in "&" reduction. Its identity is the all-ones bit
// pattern for T.
func And[T constraints.Integer]() Reducer[T] {
	var allOnes T
	allOnes = ^allOnes
	return Reducer[T]{fn: func(a, b T) T { return a & b }, identity: allOnes, commutative: true}
}

// Or is the built-in "|" reduction.
func Or[T constraints.Integer]() Reducer[T] {
	var zero T
	return Reducer[T]{fn: func(a, b T) T { return a | b }, identity: zero, commutative: true}
}

// Xor is the built-in "^" reduction.
func Xor[T constraints.Integer]() Reducer[T] {
	var zero T
	return Reducer[T]{fn: func(a, b T) T { return a ^ b }, identity: zero, commutative: true}
}

// LogicalAnd is the built-in "&&" reduction.
func LogicalAnd() Reducer[bool] {
	return Reducer[bool]{fn: func(a, b bool) bool { return a && b }, identity: true, commutative: true}
}

// LogicalOr is the built-in "||" reduction.
func LogicalOr() Reducer[bool] {
	return Reducer[bool]{fn: func(a, b bool) bool { return a || b }, identity: false, commutative: true}
}
