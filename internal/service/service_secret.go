// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type secretService struct {
	secrets store.SecretRepository
	stats   store.StatsRepository

	logger *logger.Logger
}

func NewSecretService(secrets store.SecretRepository, stats store.StatsRepository, logger *logger.Logger) SecretService {
	return &secretService{
		secrets: secrets,
		stats:   stats,
		logger:  logger,
	}
}

// CreateTextSecret stores data as a text secret. Empty data is allowed.
func (s *secretService) CreateTextSecret(ctx context.Context, data string) (string, error) {
	id, err := s.secrets.Create(ctx, models.NewTextSecret(data))
	if err != nil {
		return "", fmt.Errorf("error creating text secret: %w", err)
	}

	logger.FromContext(ctx).Info().Str("func", "*secretService.CreateTextSecret").Str("id", id).Msg("text secret created")
	return id, nil
}

func (s *secretService) FetchTextSecret(ctx context.Context, id string) (models.TextSecretPayload, error) {
	if id == "" {
		return models.TextSecretPayload{}, ErrValidationNoSecretID
	}

	payload, found, err := s.secrets.Fetch(ctx, id)
	if err != nil {
		return models.TextSecretPayload{}, fmt.Errorf("error fetching text secret: %w", err)
	}
	if !found {
		return models.TextSecretPayload{}, ErrSecretNotFound
	}

	logger.FromContext(ctx).Info().Str("func", "*secretService.FetchTextSecret").Str("id", id).Msg("text secret read")
	return payload, nil
}

func (s *secretService) DeleteTextSecret(ctx context.Context, id string) error {
	if id == "" {
		return ErrValidationNoSecretID
	}

	if err := s.secrets.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting text secret: %w", err)
	}

	return nil
}

func (s *secretService) Stats(ctx context.Context) (string, error) {
	created, err := s.stats.Created(ctx, models.SecretTypeText)
	if err != nil {
		return "", fmt.Errorf("error reading stats: %w", err)
	}

	return strconv.FormatUint(created, 10), nil
}

func (s *secretService) StatsAll(ctx context.Context) (models.SecretStats, error) {
	stats, err := s.stats.Counters(ctx, models.SecretTypeText)
	if err != nil {
		return models.SecretStats{}, fmt.Errorf("error reading stats: %w", err)
	}

	return stats, nil
}
