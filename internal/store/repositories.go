package store

import (
	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// Repositories bundles every repository built on one [kv.DB].
type Repositories struct {
	SecretRepository SecretRepository
	StatsRepository  StatsRepository
	UserRepository   UserRepository
}

func NewRepositories(db *kv.DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		SecretRepository: NewSecretRepository(db, logger),
		StatsRepository:  NewStatsRepository(db, logger),
		UserRepository:   NewUserRepository(db, logger),
	}
}
