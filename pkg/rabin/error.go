// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rabin

import (
	"errors"
	"fmt"
)

var (
	// ErrState is returned when an operation is called in the wrong manager state.
	ErrState = errors.New("rabin: operation not allowed in this state")
	// ErrKeyMismatch is returned by LoadKeys when the private key does not factor N.
	ErrKeyMismatch = errors.New("rabin: private key does not match public key")
	// ErrNotBlum is returned by LoadKeys when a factor is not 3 mod 4.
	ErrNotBlum = errors.New("rabin: key factor is not 3 mod 4")
	// ErrMalformedSignature is returned for signatures with missing or oversized parts.
	ErrMalformedSignature = errors.New("rabin: malformed signature")
	// ErrSignAttempts is returned when no randomizer gave a quadratic residue.
	ErrSignAttempts = fmt.Errorf("rabin: no quadratic residue after %d randomizers", maxSignAttempts)
)

// Error is a custom error for the manager which records the state it was in when the
// operation failed.
type Error struct {
	// Op is the manager operation that failed.
	Op string
	// State is the manager state at the time of the failure.
	State State
	// Err is the underlying error.
	Err error
}

// Error implement error.
func (e Error) Error() string {
	return fmt.Sprintf("rabin.%s (state %v): %s", e.Op, e.State, e.Err)
}

// Unwrap implement errors.Wrapper.
func (e Error) Unwrap() error {
	return e.Err
}
