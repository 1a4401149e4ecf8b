// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package kv provides a transactional key-value layer over pluggable
// storage engines: tuple keys with an order-preserving encoding, point
// reads, lazy prefix scans and atomic batches guarded by versionstamp
// checks.
package kv

import (
	"bytes"
	"context"
	"iter"
)

const defaultBatchSize = 100

// DB is the entry point for reads and atomic writes on top of an [Engine].
type DB struct {
	engine Engine
}

func NewDB(engine Engine) *DB {
	return &DB{engine: engine}
}

// Get reads the current value of key.
func (db *DB) Get(ctx context.Context, key Key) (Entry, error) {
	if len(key) == 0 {
		return Entry{}, ErrInvalidKey
	}
	return db.engine.Get(ctx, key)
}

// Atomic starts a new atomic batch.
func (db *DB) Atomic() *AtomicOperation {
	return &AtomicOperation{engine: db.engine}
}

func (db *DB) Close() error {
	return db.engine.Close()
}

type listOptions struct {
	batchSize int
	limit     int
}

// ListOption tunes [DB.List].
type ListOption func(*listOptions)

// WithBatchSize sets how many entries are fetched from the engine per page.
func WithBatchSize(n int) ListOption {
	return func(o *listOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithLimit caps the total number of yielded entries.
func WithLimit(n int) ListOption {
	return func(o *listOptions) {
		o.limit = n
	}
}

// List lazily yields all entries whose key extends prefix, in key order.
// Pages are fetched on demand; iteration stops after the first error.
// Entries are read independently of each other, not from one snapshot.
func (db *DB) List(ctx context.Context, prefix Key, opts ...ListOption) iter.Seq2[Entry, error] {
	o := listOptions{batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(Entry, error) bool) {
		start, end := prefix.Range()
		yielded := 0

		for {
			limit := o.batchSize
			if o.limit > 0 && o.limit-yielded < limit {
				limit = o.limit - yielded
			}
			if limit <= 0 {
				return
			}

			page, err := db.engine.Scan(ctx, ScanRequest{Start: start, End: end, Limit: limit})
			if err != nil {
				yield(Entry{}, err)
				return
			}

			for _, e := range page {
				if !yield(e, nil) {
					return
				}
				yielded++
			}

			if len(page) < limit {
				return
			}
			// the smallest key greater than the last one seen
			start = append(bytes.Clone(page[len(page)-1].Key.Encode()), 0x00)
		}
	}
}
