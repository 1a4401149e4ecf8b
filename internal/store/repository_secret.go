// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// IDGenerator produces identifiers of new secrets.
type IDGenerator interface {
	Generate() string
}

// secretRepository keeps text secrets under secrets/text/<id> and maintains
// the stats counters of that kind in the same commits.
type secretRepository struct {
	db     *kv.DB
	ids    IDGenerator
	kind   models.SecretType
	logger *logger.Logger
}

// NewSecretRepository builds a [SecretRepository] for text secrets with
// UUIDv7 identifiers.
func NewSecretRepository(db *kv.DB, logger *logger.Logger) SecretRepository {
	return newSecretRepository(db, utils.NewUUIDGenerator(), logger)
}

func newSecretRepository(db *kv.DB, ids IDGenerator, logger *logger.Logger) *secretRepository {
	logger.Debug().Msg("creating secret repository")
	return &secretRepository{
		db:     db,
		ids:    ids,
		kind:   models.SecretTypeText,
		logger: logger,
	}
}

func (r *secretRepository) Create(ctx context.Context, payload models.TextSecretPayload) (string, error) {
	log := logger.FromContext(ctx)

	id := r.ids.Generate()
	key := secretKey(r.kind, id)

	_, err := r.db.Atomic().
		Check(key, "").
		Set(key, payload).
		Sum(statKey(r.kind, metricCreated), 1).
		Commit(ctx)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.Create").Msg("error storing secret")
		return "", wrapCommitError(err)
	}

	log.Debug().Str("func", "*secretRepository.Create").Str("id", id).Msg("secret stored")
	return id, nil
}

// Fetch deletes the secret in a commit gated on the versionstamp it read.
// Of several concurrent callers only the one whose commit lands first gets
// the payload; the others see a conflict, reported as not found.
func (r *secretRepository) Fetch(ctx context.Context, id string) (models.TextSecretPayload, bool, error) {
	log := logger.FromContext(ctx)
	key := secretKey(r.kind, id)

	entry, err := r.db.Get(ctx, key)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.Fetch").Str("id", id).Msg("error reading secret")
		return models.TextSecretPayload{}, false, fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}
	if !entry.Exists() {
		return models.TextSecretPayload{}, false, nil
	}

	payload, err := kv.Decode[models.TextSecretPayload](entry)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.Fetch").Str("id", id).Msg("error decoding secret")
		return models.TextSecretPayload{}, false, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	_, err = r.db.Atomic().
		CheckEntry(entry).
		Delete(key).
		Sum(statKey(r.kind, metricRead), 1).
		Sum(statKey(r.kind, metricDeleted), 1).
		Commit(ctx)
	if errors.Is(err, kv.ErrConflict) {
		log.Debug().Str("func", "*secretRepository.Fetch").Str("id", id).Msg("secret consumed by a concurrent reader")
		return models.TextSecretPayload{}, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.Fetch").Str("id", id).Msg("error consuming secret")
		return models.TextSecretPayload{}, false, wrapCommitError(err)
	}

	return payload, true, nil
}

func (r *secretRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	_, err := r.db.Atomic().
		Sum(statKey(r.kind, metricDeleted), 1).
		Delete(secretKey(r.kind, id)).
		Commit(ctx)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.Delete").Str("id", id).Msg("error deleting secret")
		return wrapCommitError(err)
	}

	return nil
}

// wrapCommitError marks lost races with [ErrVersionConflict] and everything
// else with [ErrCommitingTransaction], keeping the kv error matchable.
func wrapCommitError(err error) error {
	if errors.Is(err, kv.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrVersionConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
}
