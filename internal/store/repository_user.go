package store

import (
	"context"
	"fmt"
	"iter"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// userRepository is the kv-backed implementation of [UserRepository].
// A user lives under user/<id>, its email index under user_by_email/<email>
// and its address under user_address/<id>.
//
// Writes read the current user record first and commit only if it is
// unchanged, so the index never points at a user with a different email.
// All methods obtain a context-scoped logger via [logger.FromContext].
type userRepository struct {
	logger *logger.Logger
	db     *kv.DB
}

// NewUserRepository constructs a [UserRepository] on top of db.
func NewUserRepository(db *kv.DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates the user or fully replaces it, moving the email index
// entry when the email changed.
//
// Error handling:
//   - record changed since it was read → wraps [ErrVersionConflict].
//   - email indexed for another user → [ErrEmailAlreadyTaken].
//   - engine failures → wraps [ErrReadingRecord] or [ErrCommitingTransaction].
func (r *userRepository) Upsert(ctx context.Context, user models.User) error {
	return r.write(ctx, "*userRepository.Upsert", user, nil)
}

// UpdateUserAndAddress behaves like Upsert and stores address in the same
// commit.
func (r *userRepository) UpdateUserAndAddress(ctx context.Context, user models.User, address models.Address) error {
	return r.write(ctx, "*userRepository.UpdateUserAndAddress", user, &address)
}

func (r *userRepository) write(ctx context.Context, fn string, user models.User, address *models.Address) error {
	log := logger.FromContext(ctx)

	current, err := r.db.Get(ctx, userKey(user.ID))
	if err != nil {
		log.Err(err).Str("func", fn).Str("user_id", user.ID).Msg("error reading user")
		return fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}
	index, err := r.db.Get(ctx, userByEmailKey(user.Email))
	if err != nil {
		log.Err(err).Str("func", fn).Str("user_id", user.ID).Msg("error reading email index")
		return fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}

	if index.Exists() {
		owner, err := kv.Decode[string](index)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecodingRecord, err)
		}
		if owner != user.ID {
			log.Debug().Str("func", fn).Str("user_id", user.ID).Str("owner_id", owner).Msg("email already taken")
			return ErrEmailAlreadyTaken
		}
	}

	op := r.db.Atomic().CheckEntry(current, index)
	if current.Exists() {
		previous, err := kv.Decode[models.User](current)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecodingRecord, err)
		}
		// with an unchanged email the set below wins
		op.Delete(userByEmailKey(previous.Email))
	}
	op.Set(userByEmailKey(user.Email), user.ID).
		Set(userKey(user.ID), user)
	if address != nil {
		op.Set(userAddressKey(user.ID), *address)
	}

	if _, err := op.Commit(ctx); err != nil {
		log.Err(err).Str("func", fn).Str("user_id", user.ID).Msg("error committing user")
		return wrapCommitError(err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, bool, error) {
	return getRecord[models.User](ctx, r.db, userKey(id))
}

// GetByEmail resolves the index and then reads the user. An index entry
// whose user is gone or carries another email counts as not found.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, bool, error) {
	id, found, err := getRecord[string](ctx, r.db, userByEmailKey(email))
	if err != nil || !found {
		return models.User{}, false, err
	}

	user, found, err := r.GetByID(ctx, id)
	if err != nil || !found || user.Email != email {
		return models.User{}, false, err
	}

	return user, true, nil
}

func (r *userRepository) GetAddressByUserID(ctx context.Context, id string) (models.Address, bool, error) {
	return getRecord[models.Address](ctx, r.db, userAddressKey(id))
}

// ListAll yields users in id order, stopping at the first error.
func (r *userRepository) ListAll(ctx context.Context) iter.Seq2[models.User, error] {
	return func(yield func(models.User, error) bool) {
		for entry, err := range r.db.List(ctx, usersPrefix()) {
			if err != nil {
				logger.FromContext(ctx).Err(err).Str("func", "*userRepository.ListAll").Msg("error listing users")
				yield(models.User{}, fmt.Errorf("%w: %w", ErrReadingRecord, err))
				return
			}

			user, err := kv.Decode[models.User](entry)
			if err != nil {
				yield(models.User{}, fmt.Errorf("%w: %w", ErrDecodingRecord, err))
				return
			}
			if !yield(user, nil) {
				return
			}
		}
	}
}

// DeleteByID removes the user, its index entry and its address together.
// Unknown ids are a no-op.
func (r *userRepository) DeleteByID(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	current, err := r.db.Get(ctx, userKey(id))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteByID").Str("user_id", id).Msg("error reading user")
		return fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}
	if !current.Exists() {
		return nil
	}

	user, err := kv.Decode[models.User](current)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	_, err = r.db.Atomic().
		CheckEntry(current).
		Delete(userKey(id)).
		Delete(userByEmailKey(user.Email)).
		Delete(userAddressKey(id)).
		Commit(ctx)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteByID").Str("user_id", id).Msg("error deleting user")
		return wrapCommitError(err)
	}

	return nil
}

// getRecord reads and decodes the JSON value under key.
func getRecord[T any](ctx context.Context, db *kv.DB, key kv.Key) (T, bool, error) {
	var zero T

	entry, err := db.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "getRecord").Str("key", key.String()).Msg("error reading record")
		return zero, false, fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}
	if !entry.Exists() {
		return zero, false, nil
	}

	value, err := kv.Decode[T](entry)
	if err != nil {
		return zero, false, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	return value, true, nil
}
