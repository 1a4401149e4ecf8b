package kv

import "context"

// ScanRequest selects the encoded keys in [Start, End) in ascending order.
// A non-positive Limit means no limit.
type ScanRequest struct {
	Start []byte
	End   []byte
	Limit int
}

// Engine is a storage backend able to apply a [Batch] atomically.
//
// Implementations must return errors matching [ErrConflict] for failed
// checks and [*EngineError] for infrastructure failures. Get returns an
// Entry without versionstamp for absent keys.
type Engine interface {
	Get(ctx context.Context, key Key) (Entry, error)
	Scan(ctx context.Context, req ScanRequest) ([]Entry, error)
	Commit(ctx context.Context, batch Batch) (Versionstamp, error)
	Close() error
}
