package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8080", want: "localhost:8080"},
		{in: "127.0.0.1:9090", want: "127.0.0.1:9090"},
		{in: ":8080", want: ":8080"},
		{in: "localhost", wantErr: true},
		{in: "localhost:http", wantErr: true},
		{in: "localhost:0", wantErr: true},
		{in: "localhost:70000", wantErr: true},
		{in: "example.com:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestNetAddress_StringEmpty(t *testing.T) {
	assert.Empty(t, (&NetAddress{}).String())
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-a", "127.0.0.1:8081",
		"-e", "dynamodb",
		"-dynamodb-table", "secrets",
		"-dynamodb-endpoint", "http://localhost:8000",
		"-redis-address", "localhost:6380",
		"-sqlite-path", "/tmp/kv.db",
		"-d", "postgres://db",
		"-c", "cfg.json",
		"-request-timeout", "15s",
		"-conflict-retries", "3",
		"-stats-interval", "30s",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8081", cfg.Server.HTTPAddress)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, EngineDynamoDB, cfg.Storage.Engine)
	assert.Equal(t, "secrets", cfg.Storage.DynamoDB.Table)
	assert.Equal(t, "http://localhost:8000", cfg.Storage.DynamoDB.Endpoint)
	assert.Equal(t, "localhost:6380", cfg.Storage.Redis.Address)
	assert.Equal(t, "/tmp/kv.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, "postgres://db", cfg.Storage.DB.DSN)
	assert.Equal(t, "cfg.json", cfg.JSONFilePath)
	assert.Equal(t, uint64(3), cfg.App.ConflictRetries)
	assert.Equal(t, 30*time.Second, cfg.Workers.StatsInterval)
}

func TestParseFlags_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"-a", "nope"},
		{"-request-timeout", "soon"},
		{"-conflict-retries", "-1"},
		{"-unknown"},
	} {
		_, err := parseFlags(args)
		assert.Error(t, err, args)
	}
}
