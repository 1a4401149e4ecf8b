package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/migrations"
)

func newMockSQLEngine(t *testing.T) (kv.Engine, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := &DB{
		DB:                 conn,
		dialect:            migrations.DialectPostgres,
		logger:             logger.Nop(),
		errorClassificator: NewPostgresErrorClassifier(),
	}
	return NewSQLEngine(db), mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestSQLEngine_Get(t *testing.T) {
	engine, mock := newMockSQLEngine(t)
	key := kv.NewKey(kv.String("k"))

	mock.ExpectQuery("SELECT value, versionstamp FROM kv WHERE key = \\$1").
		WithArgs(key.Encode()).
		WillReturnRows(sqlmock.NewRows([]string{"value", "versionstamp"}).AddRow([]byte(`"v"`), int64(3)))

	entry, err := engine.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, kv.VersionstampFromSeq(3), entry.Versionstamp)
	assert.Equal(t, []byte(`"v"`), entry.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEngine_GetMissing(t *testing.T) {
	engine, mock := newMockSQLEngine(t)

	mock.ExpectQuery("SELECT value, versionstamp FROM kv").
		WillReturnRows(sqlmock.NewRows([]string{"value", "versionstamp"}))

	entry, err := engine.Get(context.Background(), kv.NewKey(kv.String("k")))
	require.NoError(t, err)
	assert.False(t, entry.Exists())
}

func TestSQLEngine_GetClassifiesErrors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
	}{
		{name: "connection failure", err: pgError(pgerrcode.ConnectionFailure), wantRetryable: true},
		{name: "serialization failure", err: pgError(pgerrcode.SerializationFailure), wantRetryable: true},
		{name: "syntax error", err: pgError(pgerrcode.SyntaxError), wantRetryable: false},
		{name: "unknown error", err: errors.New("boom"), wantRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, mock := newMockSQLEngine(t)
			mock.ExpectQuery("SELECT value, versionstamp FROM kv").WillReturnError(tt.err)

			_, err := engine.Get(context.Background(), kv.NewKey(kv.String("k")))
			require.ErrorIs(t, err, kv.ErrEngine)
			assert.Equal(t, tt.wantRetryable, kv.IsRetryable(err))
		})
	}
}

func TestSQLEngine_CommitSequence(t *testing.T) {
	engine, mock := newMockSQLEngine(t)
	secret := kv.NewKey(kv.String("secrets"), kv.String("x"))
	counter := kv.NewKey(kv.String("stats"), kv.String("read"))

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE kv_meta SET versionstamp = versionstamp \\+ 1 WHERE id = \\$1 RETURNING versionstamp").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"versionstamp"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT value, versionstamp FROM kv WHERE key = \\$1 FOR UPDATE").
		WithArgs(secret.Encode()).
		WillReturnRows(sqlmock.NewRows([]string{"value", "versionstamp"}).AddRow([]byte(`"s"`), int64(4)))
	mock.ExpectExec("DELETE FROM kv WHERE key = \\$1").
		WithArgs(secret.Encode()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT value, versionstamp FROM kv WHERE key = \\$1 FOR UPDATE").
		WithArgs(counter.Encode()).
		WillReturnRows(sqlmock.NewRows([]string{"value", "versionstamp"}).AddRow([]byte("41"), int64(9)))
	mock.ExpectExec("INSERT INTO kv \\(key,value,versionstamp\\) VALUES \\(\\$1,\\$2,\\$3\\) ON CONFLICT").
		WithArgs(counter.Encode(), []byte("42"), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	batch := kv.Batch{
		Checks: []kv.Check{{Key: secret, Versionstamp: kv.VersionstampFromSeq(4)}},
		Mutations: []kv.Mutation{
			{Kind: kv.MutationDelete, Key: secret},
			{Kind: kv.MutationSum, Key: counter, Delta: 1},
		},
	}
	vs, err := engine.Commit(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, kv.VersionstampFromSeq(10), vs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEngine_CommitConflictRollsBack(t *testing.T) {
	engine, mock := newMockSQLEngine(t)
	key := kv.NewKey(kv.String("k"))

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE kv_meta").
		WillReturnRows(sqlmock.NewRows([]string{"versionstamp"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT value, versionstamp FROM kv").
		WillReturnRows(sqlmock.NewRows([]string{"value", "versionstamp"}))
	mock.ExpectRollback()

	batch := kv.Batch{
		Checks:    []kv.Check{{Key: key, Versionstamp: kv.VersionstampFromSeq(1)}},
		Mutations: []kv.Mutation{{Kind: kv.MutationDelete, Key: key}},
	}
	_, err := engine.Commit(context.Background(), batch)
	require.ErrorIs(t, err, kv.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEngine_CommitBeginFails(t *testing.T) {
	engine, mock := newMockSQLEngine(t)

	mock.ExpectBegin().WillReturnError(pgError(pgerrcode.TooManyConnections))

	_, err := engine.Commit(context.Background(), kv.Batch{
		Mutations: []kv.Mutation{{Kind: kv.MutationSet, Key: kv.NewKey(kv.String("k")), Value: []byte("1")}},
	})
	require.ErrorIs(t, err, ErrBeginningTransaction)
	assert.True(t, kv.IsRetryable(err))
}

func TestSQLEngine_ContradictingChecks(t *testing.T) {
	engine, mock := newMockSQLEngine(t)
	key := kv.NewKey(kv.String("k"))

	_, err := engine.Commit(context.Background(), kv.Batch{
		Checks: []kv.Check{
			{Key: key, Versionstamp: ""},
			{Key: key, Versionstamp: kv.VersionstampFromSeq(1)},
		},
	})
	require.ErrorIs(t, err, kv.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
