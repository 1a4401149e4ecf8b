package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
)

type Workers struct {
	workers []Worker
}

// NewWorkers builds the workers enabled in cfg. A zero stats interval
// disables the stats reporter.
func NewWorkers(repositories *store.Repositories, cfg config.Workers, logger *logger.Logger) *Workers {
	w := &Workers{}
	if cfg.StatsInterval > 0 {
		w.workers = append(w.workers, NewStatsReporter(repositories.StatsRepository, cfg.StatsInterval, logger))
	}
	logger.Info().Int("count", len(w.workers)).Msg("workers created")
	return w
}

// Run starts every worker in its own goroutine and waits for all of them
// to return.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	wg.Wait()
}
