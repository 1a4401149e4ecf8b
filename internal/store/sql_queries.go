package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/migrations"
)

const (
	kvTable     = "kv"
	kvMetaTable = "kv_meta"

	upsertSuffix = "ON CONFLICT (key) DO UPDATE SET value = excluded.value, versionstamp = excluded.versionstamp"
)

// sqlQueries builds the statements of the SQL engine for one dialect.
type sqlQueries struct {
	builder sq.StatementBuilderType
	// lockSuffix is appended to reads inside a commit ("FOR UPDATE" on
	// postgres; sqlite transactions already hold the write lock).
	lockSuffix string
}

func newSQLQueries(dialect string) sqlQueries {
	if dialect == migrations.DialectPostgres {
		return sqlQueries{
			builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
			lockSuffix: "FOR UPDATE",
		}
	}
	return sqlQueries{builder: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

func (q sqlQueries) buildGetQuery(key []byte) (string, []any, error) {
	return q.builder.
		Select("value", "versionstamp").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
}

// buildLockedGetQuery reads a row inside a commit.
func (q sqlQueries) buildLockedGetQuery(key []byte) (string, []any, error) {
	query := q.builder.
		Select("value", "versionstamp").
		From(kvTable).
		Where(sq.Eq{"key": key})
	if q.lockSuffix != "" {
		query = query.Suffix(q.lockSuffix)
	}
	return query.ToSql()
}

func (q sqlQueries) buildScanQuery(req kv.ScanRequest) (string, []any, error) {
	query := q.builder.
		Select("key", "value", "versionstamp").
		From(kvTable).
		Where(sq.GtOrEq{"key": req.Start}).
		Where(sq.Lt{"key": req.End}).
		OrderBy("key")
	if req.Limit > 0 {
		query = query.Limit(uint64(req.Limit))
	}
	return query.ToSql()
}

// buildNextVersionQuery bumps the global commit counter. The row lock it
// takes serialises all commits.
func (q sqlQueries) buildNextVersionQuery() (string, []any, error) {
	return q.builder.
		Update(kvMetaTable).
		Set("versionstamp", sq.Expr("versionstamp + 1")).
		Where(sq.Eq{"id": 1}).
		Suffix("RETURNING versionstamp").
		ToSql()
}

func (q sqlQueries) buildUpsertQuery(key, value []byte, version int64) (string, []any, error) {
	return q.builder.
		Insert(kvTable).
		Columns("key", "value", "versionstamp").
		Values(key, value, version).
		Suffix(upsertSuffix).
		ToSql()
}

func (q sqlQueries) buildDeleteQuery(key []byte) (string, []any, error) {
	return q.builder.
		Delete(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
}
