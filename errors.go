// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mpt

import (
	"errors"
	"fmt"
)

// ErrNotFound names the absent-key outcome. Get and Remove report an
// absent key through their boolean result and do not return this error.
var ErrNotFound = errors.New("mpt: key not found")

// ErrEncodingFailure is returned when a KeyEncoder, ValueEncoder, or the
// RLP writer rejects an input or produces a malformed length.
// Unlike ErrNotFound it is always propagated to the caller verbatim.
var ErrEncodingFailure = errors.New("mpt: encoding failure")

// invariantViolation panics; it must never be reachable with well-formed
// inputs. Internal bugs abort rather than
// returning a recoverable error, since there is no safe way to continue
// once a structural invariant is observed broken.
func invariantViolation(format string, args ...any) {
	panic(newInvariantViolation(format, args...))
}

// InvariantViolation is the panic value used by invariantViolation, kept
// as a typed error so a deferred recover can still format it gracefully
// in tests or top-level harnesses.
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string { return e.msg }

func newInvariantViolation(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{msg: fmt.Sprintf(format, args...)}
}

// newEncodingFailure wraps ErrEncodingFailure with a formatted reason.
func newEncodingFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEncodingFailure, fmt.Sprintf(format, args...))
}
