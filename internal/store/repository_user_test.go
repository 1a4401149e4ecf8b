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

func TestUserRepository_UpsertAndLookups(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())
		user := models.User{ID: "1", Email: "a@x", Name: "Ann", Password: "p"}

		require.NoError(t, repo.Upsert(ctx, user))

		got, found, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, user, got)

		got, found, err = repo.GetByEmail(ctx, "a@x")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, user, got)

		_, found, err = repo.GetByID(ctx, "2")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestUserRepository_EmailChangeMovesIndex(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())

		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "a@x"}))
		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "b@x"}))
		// same email again keeps the index entry
		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "b@x", Name: "renamed"}))

		_, found, err := repo.GetByEmail(ctx, "a@x")
		require.NoError(t, err)
		assert.False(t, found)

		entry, err := db.Get(ctx, userByEmailKey("a@x"))
		require.NoError(t, err)
		assert.False(t, entry.Exists())

		got, found, err := repo.GetByEmail(ctx, "b@x")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "renamed", got.Name)
	})
}

func TestUserRepository_EmailAlreadyTaken(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())

		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "a@x"}))
		err := repo.Upsert(ctx, models.User{ID: "2", Email: "a@x"})
		require.ErrorIs(t, err, ErrEmailAlreadyTaken)

		_, found, err := repo.GetByID(ctx, "2")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestUserRepository_UpdateUserAndAddress(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())
		address := models.Address{City: "Kazan", Street: "Baumana"}

		require.NoError(t, repo.UpdateUserAndAddress(ctx, models.User{ID: "1", Email: "a@x"}, address))

		got, found, err := repo.GetAddressByUserID(ctx, "1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, address, got)

		_, found, err = repo.GetAddressByUserID(ctx, "2")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestUserRepository_DeleteRemovesEverything(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())

		require.NoError(t, repo.UpdateUserAndAddress(ctx, models.User{ID: "1", Email: "a@x"}, models.Address{City: "c"}))
		require.NoError(t, repo.DeleteByID(ctx, "1"))

		for _, key := range []kv.Key{userKey("1"), userByEmailKey("a@x"), userAddressKey("1")} {
			entry, err := db.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, entry.Exists(), key.String())
		}

		// unknown ids are a no-op
		require.NoError(t, repo.DeleteByID(ctx, "1"))
		require.NoError(t, repo.DeleteByID(ctx, "never-existed"))
	})
}

func TestUserRepository_ListAll(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())

		for _, id := range []string{"b", "c", "a"} {
			require.NoError(t, repo.UpdateUserAndAddress(ctx, models.User{ID: id, Email: id + "@x"}, models.Address{}))
		}

		var ids []string
		for user, err := range repo.ListAll(ctx) {
			require.NoError(t, err)
			ids = append(ids, user.ID)
		}
		// index and address records are not users
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})
}

func TestUserRepository_StaleWriteConflicts(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())
		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "a@x"}))

		stale, err := db.Get(ctx, userKey("1"))
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "b@x"}))

		_, err = db.Atomic().CheckEntry(stale).Delete(userKey("1")).Commit(ctx)
		assert.ErrorIs(t, err, kv.ErrConflict)
	})
}

func TestUserRepository_ConcurrentUpsertsKeepIndexConsistent(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *kv.DB) {
		ctx := context.Background()
		repo := NewUserRepository(db, logger.Nop())
		require.NoError(t, repo.Upsert(ctx, models.User{ID: "1", Email: "start@x"}))

		emails := []string{"a@x", "b@x", "c@x", "d@x", "e@x", "f@x"}
		var wg sync.WaitGroup
		for _, email := range emails {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Upsert(ctx, models.User{ID: "1", Email: email})
				if err != nil {
					assert.ErrorIs(t, err, ErrVersionConflict)
					assert.ErrorIs(t, err, kv.ErrConflict)
				}
			}()
		}
		wg.Wait()

		user, found, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		require.True(t, found)

		var indexed []string
		for _, email := range append(emails, "start@x") {
			entry, err := db.Get(ctx, userByEmailKey(email))
			require.NoError(t, err)
			if entry.Exists() {
				indexed = append(indexed, email)
			}
		}
		assert.Equal(t, []string{user.Email}, indexed)
	})
}
