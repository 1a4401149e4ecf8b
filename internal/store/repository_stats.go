package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type statsRepository struct {
	db     *kv.DB
	logger *logger.Logger
}

func NewStatsRepository(db *kv.DB, logger *logger.Logger) StatsRepository {
	logger.Debug().Msg("creating stats repository")
	return &statsRepository{db: db, logger: logger}
}

// Counters reads the three counters of kind one by one. They are not a
// snapshot: a commit may land between the reads.
func (r *statsRepository) Counters(ctx context.Context, kind models.SecretType) (models.SecretStats, error) {
	var stats models.SecretStats
	for metric, dst := range map[string]*uint64{
		metricCreated: &stats.Created,
		metricRead:    &stats.Read,
		metricDeleted: &stats.Deleted,
	} {
		n, err := r.counter(ctx, kind, metric)
		if err != nil {
			return models.SecretStats{}, err
		}
		*dst = n
	}

	return stats, nil
}

func (r *statsRepository) Created(ctx context.Context, kind models.SecretType) (uint64, error) {
	return r.counter(ctx, kind, metricCreated)
}

// counter returns 0 for a counter that was never incremented.
func (r *statsRepository) counter(ctx context.Context, kind models.SecretType, metric string) (uint64, error) {
	log := logger.FromContext(ctx)

	entry, err := r.db.Get(ctx, statKey(kind, metric))
	if err != nil {
		log.Err(err).Str("func", "*statsRepository.counter").Str("metric", metric).Msg("error reading counter")
		return 0, fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}
	if !entry.Exists() {
		return 0, nil
	}

	n, err := kv.DecodeCounter(entry.Value)
	if err != nil {
		log.Err(err).Str("func", "*statsRepository.counter").Str("metric", metric).Msg("error decoding counter")
		return 0, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	return n, nil
}
