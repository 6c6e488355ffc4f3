// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

import (
	"errors"
	"fmt"
)

// Categories of failures. Every error returned by this package wraps exactly one of them.
var (
	// ErrMalformed is returned when external input can not be converted.
	ErrMalformed = errors.New("malformed input")
	// ErrPrecondition is returned when an operation is called in a state it does not support.
	ErrPrecondition = errors.New("precondition violated")
)

var (
	ErrBadHexDigit      = fmt.Errorf("%w: bad hex digit", ErrMalformed)
	ErrWidthMismatch    = fmt.Errorf("%w: operands have different widths", ErrPrecondition)
	ErrZeroModulus      = fmt.Errorf("%w: modulus is zero", ErrPrecondition)
	ErrEvenModulus      = fmt.Errorf("%w: Montgomery multiplication needs an odd modulus", ErrPrecondition)
	ErrNoReductionTable = fmt.Errorf("%w: modulus has no active reduction table", ErrPrecondition)
	ErrTableActive      = fmt.Errorf("%w: reduction table is already active", ErrPrecondition)
	ErrModulusChanged   = fmt.Errorf("%w: modulus changed while its reduction table is active", ErrPrecondition)
	ErrReductionRange   = fmt.Errorf("%w: value too long for table reduction", ErrPrecondition)
	ErrOperandRange     = fmt.Errorf("%w: operand longer than modulus", ErrPrecondition)
	ErrOverflow         = fmt.Errorf("%w: result does not fit the destination width", ErrPrecondition)
	ErrDivisionByZero   = fmt.Errorf("%w: division by zero", ErrPrecondition)
)

// Error records the operation that failed together with the underlying cause.
type Error struct {
	// Op is the name of the Nat method that failed.
	Op string
	// Err is the underlying error.
	Err error
}

// Error implement error.
func (e *Error) Error() string {
	return fmt.Sprintf("BigInt.%s: %s", e.Op, e.Err)
}

// Unwrap implement errors.Wrapper.
func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
