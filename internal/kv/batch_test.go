package kv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_Compact(t *testing.T) {
	a := NewKey(String("a"))
	b := NewKey(String("b"))

	tests := []struct {
		name      string
		mutations []Mutation
		want      []Mutation
		wantErr   error
	}{
		{
			name: "distinct keys keep order",
			mutations: []Mutation{
				{Kind: MutationSet, Key: b, Value: []byte(`1`)},
				{Kind: MutationDelete, Key: a},
			},
			want: []Mutation{
				{Kind: MutationSet, Key: b, Value: []byte(`1`)},
				{Kind: MutationDelete, Key: a},
			},
		},
		{
			name: "delete then set on same key",
			mutations: []Mutation{
				{Kind: MutationDelete, Key: a},
				{Kind: MutationSet, Key: a, Value: []byte(`"x"`)},
			},
			want: []Mutation{{Kind: MutationSet, Key: a, Value: []byte(`"x"`)}},
		},
		{
			name: "sums accumulate",
			mutations: []Mutation{
				{Kind: MutationSum, Key: a, Delta: 2},
				{Kind: MutationSum, Key: a, Delta: 3},
			},
			want: []Mutation{{Kind: MutationSum, Key: a, Delta: 5}},
		},
		{
			name: "sum after set adds to value",
			mutations: []Mutation{
				{Kind: MutationSet, Key: a, Value: []byte(`10`)},
				{Kind: MutationSum, Key: a, Delta: 1},
			},
			want: []Mutation{{Kind: MutationSet, Key: a, Value: []byte(`11`)}},
		},
		{
			name: "sum after delete starts from zero",
			mutations: []Mutation{
				{Kind: MutationDelete, Key: a},
				{Kind: MutationSum, Key: a, Delta: 4},
			},
			want: []Mutation{{Kind: MutationSet, Key: a, Value: []byte(`4`)}},
		},
		{
			name: "sum after non counter set",
			mutations: []Mutation{
				{Kind: MutationSet, Key: a, Value: []byte(`"text"`)},
				{Kind: MutationSum, Key: a, Delta: 1},
			},
			wantErr: ErrInvalidSum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Batch{Mutations: tt.mutations}.Compact()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Kind, got[i].Kind)
				assert.True(t, tt.want[i].Key.Equal(got[i].Key))
				assert.Equal(t, tt.want[i].Value, got[i].Value)
				assert.Equal(t, tt.want[i].Delta, got[i].Delta)
			}
		})
	}
}

func TestBatch_Validate(t *testing.T) {
	key := NewKey(String("k"))

	tooManyChecks := Batch{}
	for range MaxChecks + 1 {
		tooManyChecks.Checks = append(tooManyChecks.Checks, Check{Key: key})
	}
	assert.ErrorIs(t, tooManyChecks.Validate(), ErrBatchTooLarge)

	assert.ErrorIs(t, Batch{Mutations: []Mutation{{Kind: MutationDelete}}}.Validate(), ErrInvalidKey)

	big := []byte(`"` + strings.Repeat("x", MaxValueSize) + `"`)
	assert.ErrorIs(t, Batch{Mutations: []Mutation{{Kind: MutationSet, Key: key, Value: big}}}.Validate(), ErrInvalidValue)

	assert.NoError(t, Batch{Checks: []Check{{Key: key}}, Mutations: []Mutation{{Kind: MutationSum, Key: key, Delta: 1}}}.Validate())
}

func TestBatch_CompactChecks(t *testing.T) {
	key := NewKey(String("k"))

	checks, ok := Batch{Checks: []Check{{Key: key, Versionstamp: "1"}, {Key: key, Versionstamp: "1"}}}.CompactChecks()
	assert.True(t, ok)
	assert.Len(t, checks, 1)

	_, ok = Batch{Checks: []Check{{Key: key, Versionstamp: "1"}, {Key: key}}}.CompactChecks()
	assert.False(t, ok)
}

func TestDecodeCounter(t *testing.T) {
	n, err := DecodeCounter([]byte("18446744073709551615"))
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), n)

	for _, bad := range []string{"-1", "1.5", `"1"`, "", "18446744073709551616"} {
		_, err := DecodeCounter([]byte(bad))
		assert.ErrorIs(t, err, ErrInvalidSum, bad)
	}
}

func TestVersionstamp_Seq(t *testing.T) {
	vs := VersionstampFromSeq(255)
	assert.Equal(t, Versionstamp("000000000000000000ff"), vs)
	seq, ok := vs.Seq()
	assert.True(t, ok)
	assert.Equal(t, uint64(255), seq)

	assert.True(t, VersionstampFromSeq(9) < VersionstampFromSeq(10))

	_, ok = Versionstamp("").Seq()
	assert.False(t, ok)
}
