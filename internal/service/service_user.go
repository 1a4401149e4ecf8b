package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// userService validates input and retries writes that lost an optimistic
// concurrency race. Every attempt re-reads the records it depends on.
type userService struct {
	users store.UserRepository

	retries uint64
	backoff time.Duration

	logger *logger.Logger
}

func NewUserService(users store.UserRepository, cfg config.App, logger *logger.Logger) UserService {
	backoff := cfg.ConflictBackoff
	if backoff <= 0 {
		backoff = time.Millisecond
	}

	return &userService{
		users:   users,
		retries: cfg.ConflictRetries,
		backoff: backoff,
		logger:  logger,
	}
}

func (s *userService) Upsert(ctx context.Context, user models.User) error {
	if err := validateUser(user); err != nil {
		return err
	}

	return s.withRetry(ctx, "*userService.Upsert", func(ctx context.Context) error {
		return s.users.Upsert(ctx, user)
	})
}

func (s *userService) UpdateAddress(ctx context.Context, id string, address models.Address) error {
	if id == "" {
		return ErrValidationNoUserID
	}

	return s.withRetry(ctx, "*userService.UpdateAddress", func(ctx context.Context) error {
		user, found, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}
		return s.users.UpdateUserAndAddress(ctx, user, address)
	})
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	for user, err := range s.users.ListAll(ctx) {
		if err != nil {
			return nil, fmt.Errorf("error listing users: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (models.User, error) {
	if id == "" {
		return models.User{}, ErrValidationNoUserID
	}

	return found(s.users.GetByID(ctx, id))
}

func (s *userService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if email == "" {
		return models.User{}, ErrValidationNoEmail
	}

	return found(s.users.GetByEmail(ctx, email))
}

func (s *userService) GetAddressByUserID(ctx context.Context, id string) (models.Address, error) {
	if id == "" {
		return models.Address{}, ErrValidationNoUserID
	}

	return found(s.users.GetAddressByUserID(ctx, id))
}

func (s *userService) DeleteByID(ctx context.Context, id string) error {
	if id == "" {
		return ErrValidationNoUserID
	}

	return s.withRetry(ctx, "*userService.DeleteByID", func(ctx context.Context) error {
		return s.users.DeleteByID(ctx, id)
	})
}

// withRetry runs op up to 1+retries times while it fails with a conflict or
// a transient engine error.
func (s *userService) withRetry(ctx context.Context, fn string, op func(ctx context.Context) error) error {
	log := logger.FromContext(ctx)
	backoff := retry.WithMaxRetries(s.retries, retry.NewConstant(s.backoff))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err != nil && kv.IsRetryable(err) {
			log.Warn().Err(err).Str("func", fn).Int("attempt", attempt).Msg("retryable failure")
			return retry.RetryableError(err)
		}
		return err
	})
}

func validateUser(user models.User) error {
	if user.ID == "" {
		return ErrValidationNoUserID
	}
	if user.Email == "" {
		return ErrValidationNoEmail
	}
	return nil
}

// found turns a (value, found, err) read into ErrUserNotFound.
func found[T any](value T, ok bool, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, fmt.Errorf("error reading user: %w", err)
	}
	if !ok {
		return zero, ErrUserNotFound
	}
	return value, nil
}
