// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// sqlEngine implements [kv.Engine] on a single "kv" table of PostgreSQL or
// SQLite. Every commit runs in one database transaction that first bumps
// the global version in "kv_meta"; the row lock taken by that update
// orders all commits, so checks and writes of one batch see no concurrent
// writer.
type sqlEngine struct {
	db      *DB
	queries sqlQueries
}

// NewSQLEngine wraps an open connection. The schema must be installed
// (see [DB.Migrate]).
func NewSQLEngine(db *DB) kv.Engine {
	return &sqlEngine{
		db:      db,
		queries: newSQLQueries(db.dialect),
	}
}

func (e *sqlEngine) Get(ctx context.Context, key kv.Key) (kv.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := e.queries.buildGetQuery(key.Encode())
	if err != nil {
		return kv.Entry{}, kv.NewEngineError("get", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	var value []byte
	var version int64
	err = e.db.QueryRowContext(ctx, query, args...).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return kv.Entry{Key: key}, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*sqlEngine.Get").Str("key", key.String()).Msg("failed to read kv row")
		return kv.Entry{}, kv.NewEngineError("get", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	return kv.Entry{Key: key, Value: value, Versionstamp: kv.VersionstampFromSeq(uint64(version))}, nil
}

func (e *sqlEngine) Scan(ctx context.Context, req kv.ScanRequest) ([]kv.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := e.queries.buildScanQuery(req)
	if err != nil {
		return nil, kv.NewEngineError("scan", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqlEngine.Scan").Msg("failed to execute scan query")
		return nil, kv.NewEngineError("scan", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	entries := make([]kv.Entry, 0, max(req.Limit, 0))
	for rows.Next() {
		var rawKey, value []byte
		var version int64
		if err := rows.Scan(&rawKey, &value, &version); err != nil {
			log.Err(err).Str("func", "*sqlEngine.Scan").Msg("failed to scan kv row")
			return nil, kv.NewEngineError("scan", false, fmt.Errorf("%w: %w", ErrScanningRows, err))
		}

		entry, err := kv.EntryFromRaw(rawKey, value, kv.VersionstampFromSeq(uint64(version)))
		if err != nil {
			return nil, kv.NewEngineError("scan", false, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*sqlEngine.Scan").Msg("error iterating kv rows")
		return nil, kv.NewEngineError("scan", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return entries, nil
}

func (e *sqlEngine) Commit(ctx context.Context, batch kv.Batch) (kv.Versionstamp, error) {
	log := logger.FromContext(ctx)

	checks, ok := batch.CompactChecks()
	if !ok {
		return "", kv.ErrConflict
	}
	mutations, err := batch.Compact()
	if err != nil {
		return "", err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*sqlEngine.Commit").Msg("failed to begin transaction")
		return "", kv.NewEngineError("commit", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	version, err := e.nextVersion(ctx, tx)
	if err != nil {
		log.Err(err).Str("func", "*sqlEngine.Commit").Msg("failed to allocate versionstamp")
		return "", err
	}

	for _, check := range checks {
		current, _, err := e.lockedRead(ctx, tx, check.Key)
		if err != nil {
			return "", err
		}
		if current != check.Versionstamp {
			log.Debug().Str("func", "*sqlEngine.Commit").Str("key", check.Key.String()).Msg("versionstamp check failed")
			return "", kv.ErrConflict
		}
	}

	for _, m := range mutations {
		if err := e.apply(ctx, tx, m, version); err != nil {
			if !errors.Is(err, kv.ErrInvalidSum) {
				log.Err(err).Str("func", "*sqlEngine.Commit").Str("key", m.Key.String()).Str("op", m.Kind.String()).Msg("failed to apply mutation")
			}
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*sqlEngine.Commit").Msg("failed to commit transaction")
		return "", kv.NewEngineError("commit", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrCommitingTransaction, err))
	}

	return kv.VersionstampFromSeq(uint64(version)), nil
}

func (e *sqlEngine) Close() error {
	return e.db.Close()
}

func (e *sqlEngine) nextVersion(ctx context.Context, tx *sql.Tx) (int64, error) {
	query, args, err := e.queries.buildNextVersionQuery()
	if err != nil {
		return 0, kv.NewEngineError("commit", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	var version int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&version); err != nil {
		return 0, kv.NewEngineError("commit", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return version, nil
}

// lockedRead returns the versionstamp and value of key inside tx. Absent
// keys yield an empty versionstamp.
func (e *sqlEngine) lockedRead(ctx context.Context, tx *sql.Tx, key kv.Key) (kv.Versionstamp, []byte, error) {
	query, args, err := e.queries.buildLockedGetQuery(key.Encode())
	if err != nil {
		return "", nil, kv.NewEngineError("commit", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	var value []byte
	var version int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, kv.NewEngineError("commit", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	return kv.VersionstampFromSeq(uint64(version)), value, nil
}

func (e *sqlEngine) apply(ctx context.Context, tx *sql.Tx, m kv.Mutation, version int64) error {
	var (
		query string
		args  []any
		err   error
	)

	switch m.Kind {
	case kv.MutationSet:
		query, args, err = e.queries.buildUpsertQuery(m.Key.Encode(), m.Value, version)
	case kv.MutationDelete:
		query, args, err = e.queries.buildDeleteQuery(m.Key.Encode())
	case kv.MutationSum:
		vs, value, readErr := e.lockedRead(ctx, tx, m.Key)
		if readErr != nil {
			return readErr
		}
		var current uint64
		if vs != "" {
			if current, err = kv.DecodeCounter(value); err != nil {
				return fmt.Errorf("sum on %s: %w", m.Key, err)
			}
		}
		query, args, err = e.queries.buildUpsertQuery(m.Key.Encode(), kv.EncodeCounter(current+m.Delta), version)
	default:
		return kv.NewEngineError("commit", false, fmt.Errorf("unknown mutation kind %d", m.Kind))
	}
	if err != nil {
		return kv.NewEngineError("commit", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return kv.NewEngineError("commit", e.db.isRetryable(err), fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return nil
}
