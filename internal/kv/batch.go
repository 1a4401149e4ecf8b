// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package kv

import (
	"fmt"
)

// Limits of a single atomic batch.
const (
	MaxChecks    = 100
	MaxMutations = 100
	MaxValueSize = 64 * 1024
)

// Check is a commit precondition: the key must still carry Versionstamp.
// An empty Versionstamp requires the key to be absent.
type Check struct {
	Key          Key
	Versionstamp Versionstamp
}

type MutationKind int

const (
	MutationSet MutationKind = iota + 1
	MutationDelete
	MutationSum
)

func (k MutationKind) String() string {
	switch k {
	case MutationSet:
		return "set"
	case MutationDelete:
		return "delete"
	case MutationSum:
		return "sum"
	}
	return "unknown"
}

// Mutation is one write of a batch. Value is used by sets, Delta by sums.
type Mutation struct {
	Kind  MutationKind
	Key   Key
	Value []byte
	Delta uint64
}

// Batch is the unit handed to [Engine.Commit]: all checks must hold, then
// all mutations are applied in order, or nothing is.
type Batch struct {
	Checks    []Check
	Mutations []Mutation
}

// Validate enforces batch limits and rejects empty keys.
func (b Batch) Validate() error {
	if len(b.Checks) > MaxChecks {
		return fmt.Errorf("%w: %d checks (max %d)", ErrBatchTooLarge, len(b.Checks), MaxChecks)
	}
	if len(b.Mutations) > MaxMutations {
		return fmt.Errorf("%w: %d mutations (max %d)", ErrBatchTooLarge, len(b.Mutations), MaxMutations)
	}
	for _, c := range b.Checks {
		if len(c.Key) == 0 {
			return fmt.Errorf("%w: empty check key", ErrInvalidKey)
		}
	}
	for _, m := range b.Mutations {
		if len(m.Key) == 0 {
			return fmt.Errorf("%w: empty %s key", ErrInvalidKey, m.Kind)
		}
		if len(m.Value) > MaxValueSize {
			return fmt.Errorf("%w: value of %s exceeds %d bytes", ErrInvalidValue, m.Key, MaxValueSize)
		}
	}
	return nil
}

// CompactChecks merges checks on the same key. Two checks of one key that
// expect different versionstamps can never both hold, so ok is false.
func (b Batch) CompactChecks() (checks []Check, ok bool) {
	seen := make(map[string]int, len(b.Checks))
	for _, c := range b.Checks {
		enc := string(c.Key.Encode())
		if i, dup := seen[enc]; dup {
			if checks[i].Versionstamp != c.Versionstamp {
				return nil, false
			}
			continue
		}
		seen[enc] = len(checks)
		checks = append(checks, c)
	}
	return checks, true
}

// Compact folds all mutations of one key into a single mutation with the
// same final effect. The result keeps the order in which keys first appear.
//
//	set,    set(v)  -> set(v)
//	any,    delete  -> delete
//	set(v), sum(d)  -> set(v+d), v must be a counter
//	delete, sum(d)  -> set(d)
//	sum(a), sum(b)  -> sum(a+b)
//	sum,    set(v)  -> set(v)
func (b Batch) Compact() ([]Mutation, error) {
	index := make(map[string]int, len(b.Mutations))
	out := make([]Mutation, 0, len(b.Mutations))

	for _, m := range b.Mutations {
		enc := string(m.Key.Encode())
		i, seen := index[enc]
		if !seen {
			index[enc] = len(out)
			out = append(out, m)
			continue
		}

		prev := out[i]
		switch m.Kind {
		case MutationSet, MutationDelete:
			out[i] = m
		case MutationSum:
			switch prev.Kind {
			case MutationSum:
				prev.Delta += m.Delta
				out[i] = prev
			case MutationDelete:
				out[i] = Mutation{Kind: MutationSet, Key: m.Key, Value: EncodeCounter(m.Delta)}
			case MutationSet:
				n, err := DecodeCounter(prev.Value)
				if err != nil {
					return nil, fmt.Errorf("sum on %s: %w", m.Key, err)
				}
				out[i] = Mutation{Kind: MutationSet, Key: m.Key, Value: EncodeCounter(n + m.Delta)}
			}
		}
	}

	return out, nil
}
