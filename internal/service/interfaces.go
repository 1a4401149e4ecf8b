package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-secret-keeper/models"
)

// SecretService exchanges one-time-read text secrets.
type SecretService interface {
	CreateTextSecret(ctx context.Context, data string) (string, error)
	// FetchTextSecret returns the secret and destroys it. Every later call
	// for the same id fails with ErrSecretNotFound.
	FetchTextSecret(ctx context.Context, id string) (models.TextSecretPayload, error)
	DeleteTextSecret(ctx context.Context, id string) error

	// Stats returns the number of created text secrets in decimal.
	Stats(ctx context.Context) (string, error)
	StatsAll(ctx context.Context) (models.SecretStats, error)
}

// UserService manages demo users, their email index and addresses.
type UserService interface {
	Upsert(ctx context.Context, user models.User) error
	// UpdateAddress stores address for an existing user.
	UpdateAddress(ctx context.Context, id string, address models.Address) error
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetAddressByUserID(ctx context.Context, id string) (models.Address, error)
	DeleteByID(ctx context.Context, id string) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
