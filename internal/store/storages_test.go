package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

func TestNewEngine(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.Storage
		wantErr error
	}{
		{
			name: "sqlite installs the schema",
			cfg:  config.Storage{Engine: config.EngineSQLite, SQLite: config.SQLite{Path: filepath.Join(t.TempDir(), "nested", "kv.db")}},
		},
		{
			name: "redis",
			cfg:  config.Storage{Engine: config.EngineRedis, Redis: config.Redis{Address: mr.Addr(), KeyPrefix: "p:"}},
		},
		{
			name:    "unknown engine",
			cfg:     config.Storage{Engine: "etcd"},
			wantErr: ErrUnsupportedEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine, err := NewEngine(ctx, tt.cfg, logger.Nop())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer engine.Close()

			db := kv.NewDB(engine)
			_, err = db.Atomic().Sum(kv.NewKey(kv.String("n")), 1).Commit(ctx)
			require.NoError(t, err)

			entry, err := db.Get(ctx, kv.NewKey(kv.String("n")))
			require.NoError(t, err)
			assert.Equal(t, "1", string(entry.Value))
		})
	}
}

func TestNewEngine_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewEngine(context.Background(), config.Storage{Engine: config.EngineRedis, Redis: config.Redis{Address: addr}}, logger.Nop())
	assert.Error(t, err)
}
