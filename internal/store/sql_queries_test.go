// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/migrations"
)

func Test_buildGetQuery(t *testing.T) {
	tests := []struct {
		name        string
		dialect     string
		placeholder string
	}{
		{name: "postgres uses dollar placeholders", dialect: migrations.DialectPostgres, placeholder: "$1"},
		{name: "sqlite uses question placeholders", dialect: migrations.DialectSQLite, placeholder: "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := []byte{0x02, 'a', 0x00}
			query, args, err := newSQLQueries(tt.dialect).buildGetQuery(key)
			require.NoError(t, err)

			q := strings.ToLower(query)
			assert.Contains(t, q, "select value, versionstamp from kv")
			assert.Contains(t, q, "where key = "+tt.placeholder)
			assert.NotContains(t, q, "for update")
			require.Len(t, args, 1)
			assert.Equal(t, key, args[0])
		})
	}
}

func Test_buildLockedGetQuery(t *testing.T) {
	query, _, err := newSQLQueries(migrations.DialectPostgres).buildLockedGetQuery([]byte("k"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(query, "FOR UPDATE"))

	// sqlite has no row locks; the immediate transaction holds the write lock
	query, _, err = newSQLQueries(migrations.DialectSQLite).buildLockedGetQuery([]byte("k"))
	require.NoError(t, err)
	assert.NotContains(t, query, "FOR UPDATE")
}

func Test_buildScanQuery(t *testing.T) {
	tests := []struct {
		name      string
		req       kv.ScanRequest
		wantLimit bool
	}{
		{name: "with limit", req: kv.ScanRequest{Start: []byte("a"), End: []byte("z"), Limit: 10}, wantLimit: true},
		{name: "without limit", req: kv.ScanRequest{Start: []byte("a"), End: []byte("z")}, wantLimit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := newSQLQueries(migrations.DialectPostgres).buildScanQuery(tt.req)
			require.NoError(t, err)

			q := strings.ToLower(query)
			assert.Contains(t, q, "select key, value, versionstamp from kv")
			assert.Contains(t, q, "key >= $1")
			assert.Contains(t, q, "key < $2")
			assert.Contains(t, q, "order by key")
			assert.Equal(t, tt.wantLimit, strings.Contains(q, "limit 10"))
			require.Len(t, args, 2)
			assert.Equal(t, tt.req.Start, args[0])
			assert.Equal(t, tt.req.End, args[1])
		})
	}
}

func Test_buildNextVersionQuery(t *testing.T) {
	query, args, err := newSQLQueries(migrations.DialectPostgres).buildNextVersionQuery()
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "update kv_meta set versionstamp = versionstamp + 1")
	assert.Contains(t, q, "where id = $1")
	assert.True(t, strings.HasSuffix(q, "returning versionstamp"))
	assert.Equal(t, []any{1}, args)
}

func Test_buildUpsertQuery(t *testing.T) {
	query, args, err := newSQLQueries(migrations.DialectSQLite).buildUpsertQuery([]byte("k"), []byte(`"v"`), 7)
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "insert into kv (key,value,versionstamp) values (?,?,?)")
	assert.Contains(t, q, "on conflict (key) do update")
	assert.Equal(t, []any{[]byte("k"), []byte(`"v"`), int64(7)}, args)
}

func Test_buildDeleteQuery(t *testing.T) {
	query, args, err := newSQLQueries(migrations.DialectPostgres).buildDeleteQuery([]byte("k"))
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM kv WHERE key = $1", query)
	assert.Equal(t, []any{[]byte("k")}, args)
}
