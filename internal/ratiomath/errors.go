package ratiomath

import "errors"

var (
	// ErrInvalidRatio is returned when neither (or both) sides of a ratio
	// anchor to 10^decimals for their own token; the contract's
	// "one equals 1" rule.
	ErrInvalidRatio = errors.New("ratiomath: ratio is not anchored to one")

	// ErrArithmeticOverflow is returned when an expected-output
	// computation would not fit in a uint64 after the 128-bit
	// intermediate multiplication.
	ErrArithmeticOverflow = errors.New("ratiomath: arithmetic overflow")

	// ErrInsufficientInput is returned when an expected-output
	// computation truncates to zero.
	ErrInsufficientInput = errors.New("ratiomath: input too small, expected output truncates to zero")
)
