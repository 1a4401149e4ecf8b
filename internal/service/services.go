package service

import (
	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
)

type Services struct {
	SecretService  SecretService
	UserService    UserService
	AppInfoService AppInfoService
}

func NewServices(repositories *store.Repositories, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		SecretService:  NewSecretService(repositories.SecretRepository, repositories.StatsRepository, logger),
		UserService:    NewUserService(repositories.UserRepository, cfg.App, logger),
		AppInfoService: appInfoService,
	}, nil
}
