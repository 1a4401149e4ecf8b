// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// AtomicOperation collects checks and mutations and commits them as one
// all-or-nothing batch. Builder methods return the receiver so calls can
// be chained; the first encoding error is reported by Commit.
type AtomicOperation struct {
	engine Engine
	batch  Batch
	err    error
}

// Check requires key to still carry vs at commit time. An empty vs
// requires the key to be absent.
func (op *AtomicOperation) Check(key Key, vs Versionstamp) *AtomicOperation {
	op.batch.Checks = append(op.batch.Checks, Check{Key: key, Versionstamp: vs})
	return op
}

// CheckEntry requires the entry to be unchanged since it was read.
func (op *AtomicOperation) CheckEntry(entries ...Entry) *AtomicOperation {
	for _, e := range entries {
		op.Check(e.Key, e.Versionstamp)
	}
	return op
}

// Set stores the JSON encoding of value under key.
func (op *AtomicOperation) Set(key Key, value any) *AtomicOperation {
	data, err := json.Marshal(value)
	if err != nil {
		if op.err == nil {
			op.err = fmt.Errorf("%w: set %s: %w", ErrInvalidValue, key, err)
		}
		return op
	}
	op.batch.Mutations = append(op.batch.Mutations, Mutation{Kind: MutationSet, Key: key, Value: data})
	return op
}

func (op *AtomicOperation) Delete(key Key) *AtomicOperation {
	op.batch.Mutations = append(op.batch.Mutations, Mutation{Kind: MutationDelete, Key: key})
	return op
}

// Sum adds delta to the counter under key, treating an absent key as 0.
// The counter wraps around at 2^64.
func (op *AtomicOperation) Sum(key Key, delta uint64) *AtomicOperation {
	op.batch.Mutations = append(op.batch.Mutations, Mutation{Kind: MutationSum, Key: key, Delta: delta})
	return op
}

// Batch returns a copy of the collected batch.
func (op *AtomicOperation) Batch() Batch {
	return Batch{
		Checks:    append([]Check(nil), op.batch.Checks...),
		Mutations: append([]Mutation(nil), op.batch.Mutations...),
	}
}

// Commit applies the batch. A failed check yields an error matching
// [ErrConflict]; nothing is retried.
func (op *AtomicOperation) Commit(ctx context.Context) (Versionstamp, error) {
	if op.err != nil {
		return "", op.err
	}
	if err := op.batch.Validate(); err != nil {
		return "", err
	}
	if _, ok := op.batch.CompactChecks(); !ok {
		return "", fmt.Errorf("%w: contradicting checks", ErrConflict)
	}
	return op.engine.Commit(ctx, op.Batch())
}
