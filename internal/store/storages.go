package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// NewEngine connects the engine selected by cfg.Engine. SQL engines get
// their schema installed before use.
func NewEngine(ctx context.Context, cfg config.Storage, log *logger.Logger) (kv.Engine, error) {
	switch cfg.Engine {
	case config.EngineSQLite, config.EnginePostgres:
		var (
			db  *DB
			err error
		)
		if cfg.Engine == config.EngineSQLite {
			db, err = NewConnectSQLite(ctx, cfg.SQLite, log)
		} else {
			db, err = NewConnectPostgres(ctx, cfg.DB, log)
		}
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			log.Err(err).Str("func", "NewEngine").Str("engine", cfg.Engine).Msg("error migrating schema")
			db.Close()
			return nil, fmt.Errorf("%w: %w", ErrMigratingSchema, err)
		}
		return NewSQLEngine(db), nil

	case config.EngineRedis:
		client, err := NewConnectRedis(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return NewRedisEngine(client, cfg.Redis.KeyPrefix), nil

	case config.EngineDynamoDB:
		client, err := NewConnectDynamoDB(ctx, cfg.DynamoDB, log)
		if err != nil {
			return nil, err
		}
		return NewDynamoDBEngine(client, cfg.DynamoDB.Table, cfg.DynamoDB.Partition), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, cfg.Engine)
}
