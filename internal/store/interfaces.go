package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"
	"iter"

	"github.com/MKhiriev/go-secret-keeper/models"
)

// SecretRepository stores one-time-read secrets of a single type.
type SecretRepository interface {
	// Create stores payload under a fresh id and counts it as created.
	Create(ctx context.Context, payload models.TextSecretPayload) (string, error)
	// Fetch returns the payload and removes it in the same atomic step.
	// found is false when the secret does not exist or was consumed by a
	// concurrent fetch.
	Fetch(ctx context.Context, id string) (payload models.TextSecretPayload, found bool, err error)
	// Delete removes the secret and counts it as deleted. Unknown ids are
	// not an error.
	Delete(ctx context.Context, id string) error
}

// StatsRepository reads the counters maintained by [SecretRepository].
type StatsRepository interface {
	Counters(ctx context.Context, kind models.SecretType) (models.SecretStats, error)
	Created(ctx context.Context, kind models.SecretType) (uint64, error)
}

// UserRepository keeps users, the email index and addresses consistent.
type UserRepository interface {
	Upsert(ctx context.Context, user models.User) error
	UpdateUserAndAddress(ctx context.Context, user models.User, address models.Address) error
	GetByID(ctx context.Context, id string) (models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (models.User, bool, error)
	GetAddressByUserID(ctx context.Context, id string) (models.Address, bool, error)
	ListAll(ctx context.Context) iter.Seq2[models.User, error]
	DeleteByID(ctx context.Context, id string) error
}

// ErrorClassificator decides whether a driver error is worth retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
