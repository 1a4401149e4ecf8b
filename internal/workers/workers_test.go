package workers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/mock"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type countingWorker struct {
	runs atomic.Int32
}

func (c *countingWorker) Run(ctx context.Context) {
	c.runs.Add(1)
	<-ctx.Done()
}

func TestWorkers_RunWaitsForAllWorkers(t *testing.T) {
	w1, w2 := &countingWorker{}, &countingWorker{}
	ws := &Workers{workers: []Worker{w1, w2}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return w1.runs.Load() == 1 && w2.runs.Load() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWorkers_RunEmpty(t *testing.T) {
	(&Workers{}).Run(context.Background())
}

func TestNewWorkers(t *testing.T) {
	repos := &store.Repositories{}

	assert.Empty(t, NewWorkers(repos, config.Workers{}, logger.Nop()).workers)
	assert.Len(t, NewWorkers(repos, config.Workers{StatsInterval: time.Second}, logger.Nop()).workers, 1)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatsReporter_LogsCounters(t *testing.T) {
	ctrl := gomock.NewController(t)
	stats := mock.NewMockStatsRepository(ctrl)
	stats.EXPECT().Counters(gomock.Any(), models.SecretTypeText).
		Return(models.SecretStats{Created: 7, Read: 5, Deleted: 6}, nil).
		MinTimes(1)

	var out syncBuffer
	reporter := NewStatsReporter(stats, 5*time.Millisecond, logger.NewConsoleLogger("test", &out))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reporter.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "created=7") }, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, out.String(), "read=5")
	assert.Contains(t, out.String(), "deleted=6")
}

func TestStatsReporter_SkipsFailedTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	stats := mock.NewMockStatsRepository(ctrl)
	stats.EXPECT().Counters(gomock.Any(), gomock.Any()).Return(models.SecretStats{}, errors.New("engine down"))

	var out syncBuffer
	reporter := NewStatsReporter(stats, time.Hour, logger.NewConsoleLogger("test", &out))
	reporter.report(context.Background())

	assert.Contains(t, out.String(), "error reading stats")
	assert.NotContains(t, out.String(), "secret stats")
}
