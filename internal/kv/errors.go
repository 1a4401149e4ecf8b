// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package kv

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned by a commit whose precondition check failed:
	// some checked key changed (or appeared) after it was read. Nothing of
	// the batch was applied.
	ErrConflict = errors.New("kv: versionstamp check failed")

	// ErrEngine marks infrastructure failures of the storage engine. Errors
	// matching it are always [*EngineError] values.
	ErrEngine = errors.New("kv: engine failure")

	// ErrInvalidKey is returned for empty keys and malformed encoded keys.
	ErrInvalidKey = errors.New("kv: invalid key")

	// ErrInvalidSum is returned when a sum targets a value that is not a
	// counter. The batch is not applied.
	ErrInvalidSum = errors.New("kv: sum target is not a counter")

	// ErrBatchTooLarge is returned when a batch exceeds MaxChecks or
	// MaxMutations.
	ErrBatchTooLarge = errors.New("kv: batch too large")

	// ErrInvalidValue is returned when a value cannot be encoded or decoded.
	ErrInvalidValue = errors.New("kv: invalid value")
)

// EngineError wraps a failure of the underlying storage engine.
type EngineError struct {
	// Op is the engine operation that failed ("get", "scan", "commit").
	Op string
	// Retryable reports whether repeating the operation may succeed.
	Retryable bool
	Err       error
}

// NewEngineError wraps err as an engine failure of the given operation.
func NewEngineError(op string, retryable bool, err error) *EngineError {
	return &EngineError{Op: op, Retryable: retryable, Err: err}
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("kv: engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngine, e.Err}
}

// IsRetryable reports whether err is a conflict or a transient engine
// failure. Callers decide on their own whether to retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Retryable
	}
	return false
}
