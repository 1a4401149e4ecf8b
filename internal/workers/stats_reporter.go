// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// StatsReporter periodically logs the secret counters as one structured
// entry per tick.
type StatsReporter struct {
	stats    store.StatsRepository
	interval time.Duration

	logger *logger.Logger
}

func NewStatsReporter(stats store.StatsRepository, interval time.Duration, logger *logger.Logger) *StatsReporter {
	return &StatsReporter{
		stats:    stats,
		interval: interval,
		logger:   logger,
	}
}

func (s *StatsReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.report(ctx)
		}
	}
}

func (s *StatsReporter) report(ctx context.Context) {
	counters, err := s.stats.Counters(ctx, models.SecretTypeText)
	if err != nil {
		// a failed tick is skipped, the next one retries
		s.logger.Err(err).Str("func", "*StatsReporter.report").Msg("error reading stats")
		return
	}

	s.logger.Info().
		Str("func", "*StatsReporter.report").
		Str("type", string(models.SecretTypeText)).
		Uint64("created", counters.Created).
		Uint64("read", counters.Read).
		Uint64("deleted", counters.Deleted).
		Msg("secret stats")
}
