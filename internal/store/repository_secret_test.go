package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type staticIDs struct {
	ids []string
}

func (s *staticIDs) Generate() string {
	id := s.ids[0]
	s.ids = s.ids[1:]
	return id
}

func TestSecretRepository_CreateThenFetchOnce(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		secrets := NewSecretRepository(db, logger.Nop())
		stats := NewStatsRepository(db, logger.Nop())

		id, err := secrets.Create(ctx, models.NewTextSecret("x"))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		payload, found, err := secrets.Fetch(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, models.TextSecretPayload{Type: models.SecretTypeText, Data: "x"}, payload)

		_, found, err = secrets.Fetch(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)

		counters, err := stats.Counters(ctx, models.SecretTypeText)
		require.NoError(t, err)
		assert.Equal(t, models.SecretStats{Created: 1, Read: 1, Deleted: 1}, counters)
	})
}

func TestSecretRepository_StoredLayout(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		secrets := newSecretRepository(db, &staticIDs{ids: []string{"fixed-id"}}, logger.Nop())

		id, err := secrets.Create(ctx, models.NewTextSecret("hello"))
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", id)

		entry, err := db.Get(ctx, kv.NewKey(kv.String("secrets"), kv.String("text"), kv.String("fixed-id")))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"text","data":"hello"}`, string(entry.Value))

		entry, err = db.Get(ctx, kv.NewKey(kv.String("stats"), kv.String("text"), kv.String("created")))
		require.NoError(t, err)
		assert.Equal(t, "1", string(entry.Value))
	})
}

func TestSecretRepository_ConcurrentFetchHasOneWinner(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		secrets := NewSecretRepository(db, logger.Nop())

		id, err := secrets.Create(ctx, models.NewTextSecret("only once"))
		require.NoError(t, err)

		const readers = 10
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range readers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, found, err := secrets.Fetch(ctx, id)
				assert.NoError(t, err)
				if found {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}

func TestSecretRepository_ConcurrentCreatesAreCounted(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		secrets := NewSecretRepository(db, logger.Nop())
		stats := NewStatsRepository(db, logger.Nop())

		const writers = 10
		var wg sync.WaitGroup
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := secrets.Create(ctx, models.NewTextSecret("s"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		created, err := stats.Created(ctx, models.SecretTypeText)
		require.NoError(t, err)
		assert.Equal(t, uint64(writers), created)
	})
}

func TestSecretRepository_DeleteUnknownIsNotAnError(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		secrets := NewSecretRepository(db, logger.Nop())
		stats := NewStatsRepository(db, logger.Nop())

		require.NoError(t, secrets.Delete(ctx, "missing"))
		require.NoError(t, secrets.Delete(ctx, "missing"))

		counters, err := stats.Counters(ctx, models.SecretTypeText)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), counters.Deleted)
	})
}

func TestSecretRepository_DeleteThenFetch(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		secrets := NewSecretRepository(db, logger.Nop())

		id, err := secrets.Create(ctx, models.NewTextSecret("burn me"))
		require.NoError(t, err)
		require.NoError(t, secrets.Delete(ctx, id))

		_, found, err := secrets.Fetch(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStatsRepository_CorruptCounter(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		_, err := db.Atomic().Set(statKey(models.SecretTypeText, metricCreated), "not a number").Commit(ctx)
		require.NoError(t, err)

		_, err = NewStatsRepository(db, logger.Nop()).Created(ctx, models.SecretTypeText)
		assert.ErrorIs(t, err, ErrDecodingRecord)
		assert.ErrorIs(t, err, kv.ErrInvalidSum)
	})
}
