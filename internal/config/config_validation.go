// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup. Only the section of
// the selected storage engine is checked.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.Engine {
	case EngineSQLite:
		if cfg.Storage.SQLite.Path == "" {
			return fmt.Errorf("%w: empty sqlite path", ErrInvalidStorageConfigs)
		}
	case EnginePostgres:
		if cfg.Storage.DB.DSN == "" {
			return fmt.Errorf("%w: empty database DSN", ErrInvalidStorageConfigs)
		}
	case EngineRedis:
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("%w: empty redis address", ErrInvalidStorageConfigs)
		}
	case EngineDynamoDB:
		if cfg.Storage.DynamoDB.Table == "" || cfg.Storage.DynamoDB.Partition == "" {
			return fmt.Errorf("%w: dynamodb table and partition are required", ErrInvalidStorageConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidStorageConfigs, cfg.Storage.Engine)
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.App.ConflictBackoff < 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Workers.StatsInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
