// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// Key layout under the configured prefix:
//
//	<prefix>d:<encoded key>  hash {v: value, vs: commit sequence}
//	<prefix>idx              sorted set of encoded keys (all scores 0)
//	<prefix>vs               commit sequence counter
const (
	redisDataSegment  = "d:"
	redisIndexKey     = "idx"
	redisSequenceKey  = "vs"
	redisValueField   = "v"
	redisVersionField = "vs"
)

// commitLua applies a compacted batch.
//
// KEYS[1] = sequence counter, KEYS[2] = index, KEYS[3..] = data hashes
// ARGV = nChecks, {keyIndex, expectedSeq}*, nMutations,
// {kind, keyIndex, member, payload}*
//
// Returns {1, seq} on success, {0, keyIndex} when a check fails and
// {-1, keyIndex} when a sum targets a non counter value.
var commitLua = redis.NewScript(`
local p = 1
local nChecks = tonumber(ARGV[p]); p = p + 1
for i = 1, nChecks do
  local k = tonumber(ARGV[p]); local expected = ARGV[p + 1]; p = p + 2
  local current = redis.call('HGET', KEYS[k], 'vs')
  if not current then current = '' end
  if current ~= expected then
    return {0, k}
  end
end

local nMutations = tonumber(ARGV[p]); p = p + 1
local first = p
for i = 1, nMutations do
  local kind = ARGV[p]; local k = tonumber(ARGV[p + 1]); p = p + 4
  if kind == 'sum' then
    local v = redis.call('HGET', KEYS[k], 'v')
    if v and not string.match(v, '^%d+$') then
      return {-1, k}
    end
  end
end

local seq = redis.call('INCR', KEYS[1])
p = first
for i = 1, nMutations do
  local kind = ARGV[p]; local k = tonumber(ARGV[p + 1])
  local member = ARGV[p + 2]; local payload = ARGV[p + 3]
  p = p + 4
  if kind == 'set' then
    redis.call('HSET', KEYS[k], 'v', payload, 'vs', seq)
    redis.call('ZADD', KEYS[2], 0, member)
  elseif kind == 'delete' then
    redis.call('DEL', KEYS[k])
    redis.call('ZREM', KEYS[2], member)
  elseif kind == 'sum' then
    redis.call('HINCRBY', KEYS[k], 'v', payload)
    redis.call('HSET', KEYS[k], 'vs', seq)
    redis.call('ZADD', KEYS[2], 0, member)
  end
end
return {1, seq}
`)

// redisEngine implements [kv.Engine] on Redis. Commits run as a single
// Lua script, which Redis executes without interleaving other commands.
type redisEngine struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisEngine stores all data under keys starting with prefix. Counters
// are limited to the int64 range of HINCRBY.
func NewRedisEngine(client redis.UniversalClient, prefix string) kv.Engine {
	return &redisEngine{client: client, prefix: prefix}
}

func (e *redisEngine) dataKey(enc []byte) string {
	return e.prefix + redisDataSegment + string(enc)
}

func (e *redisEngine) Get(ctx context.Context, key kv.Key) (kv.Entry, error) {
	values, err := e.client.HMGet(ctx, e.dataKey(key.Encode()), redisValueField, redisVersionField).Result()
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*redisEngine.Get").Str("key", key.String()).Msg("failed to read hash")
		return kv.Entry{}, kv.NewEngineError("get", isRedisRetryable(err), err)
	}

	return entryFromHash(key, values)
}

func (e *redisEngine) Scan(ctx context.Context, req kv.ScanRequest) ([]kv.Entry, error) {
	log := logger.FromContext(ctx)

	members, err := e.client.ZRangeByLex(ctx, e.prefix+redisIndexKey, &redis.ZRangeBy{
		Min:   "[" + string(req.Start),
		Max:   "(" + string(req.End),
		Count: int64(max(req.Limit, 0)),
	}).Result()
	if err != nil {
		log.Err(err).Str("func", "*redisEngine.Scan").Msg("failed to range over index")
		return nil, kv.NewEngineError("scan", isRedisRetryable(err), err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := e.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(members))
	for i, member := range members {
		cmds[i] = pipe.HMGet(ctx, e.dataKey([]byte(member)), redisValueField, redisVersionField)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Err(err).Str("func", "*redisEngine.Scan").Msg("failed to read hashes")
		return nil, kv.NewEngineError("scan", isRedisRetryable(err), err)
	}

	entries := make([]kv.Entry, 0, len(members))
	for i, member := range members {
		key, err := kv.DecodeKey([]byte(member))
		if err != nil {
			return nil, kv.NewEngineError("scan", false, err)
		}
		entry, err := entryFromHash(key, cmds[i].Val())
		if err != nil {
			return nil, err
		}
		// a member whose hash is gone is skipped
		if entry.Exists() {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (e *redisEngine) Commit(ctx context.Context, batch kv.Batch) (kv.Versionstamp, error) {
	log := logger.FromContext(ctx)

	checks, ok := batch.CompactChecks()
	if !ok {
		return "", kv.ErrConflict
	}
	mutations, err := batch.Compact()
	if err != nil {
		return "", err
	}

	keys := []string{e.prefix + redisSequenceKey, e.prefix + redisIndexKey}
	slotKeys := []kv.Key{nil, nil}
	slots := make(map[string]int)
	slotOf := func(key kv.Key, enc []byte) int {
		name := e.dataKey(enc)
		if i, ok := slots[name]; ok {
			return i
		}
		keys = append(keys, name)
		slotKeys = append(slotKeys, key)
		slots[name] = len(keys)
		return len(keys)
	}

	args := make([]any, 0, 2+2*len(checks)+4*len(mutations))
	args = append(args, len(checks))
	for _, c := range checks {
		args = append(args, slotOf(c.Key, c.Key.Encode()), expectedSeq(c.Versionstamp))
	}
	args = append(args, len(mutations))
	for _, m := range mutations {
		enc := m.Key.Encode()
		var payload any
		switch m.Kind {
		case kv.MutationSet:
			payload = m.Value
		case kv.MutationDelete:
			payload = ""
		case kv.MutationSum:
			if m.Delta > math.MaxInt64 {
				return "", kv.NewEngineError("commit", false, fmt.Errorf("sum delta %d on %s exceeds int64", m.Delta, m.Key))
			}
			payload = strconv.FormatUint(m.Delta, 10)
		default:
			return "", kv.NewEngineError("commit", false, fmt.Errorf("unknown mutation kind %d", m.Kind))
		}
		args = append(args, m.Kind.String(), slotOf(m.Key, enc), enc, payload)
	}

	res, err := commitLua.Run(ctx, e.client, keys, args...).Int64Slice()
	if err != nil {
		log.Err(err).Str("func", "*redisEngine.Commit").Msg("failed to run commit script")
		return "", kv.NewEngineError("commit", isRedisRetryable(err), err)
	}
	if len(res) != 2 || res[1] < 1 || (res[0] != 1 && int(res[1]) > len(keys)) {
		return "", kv.NewEngineError("commit", false, fmt.Errorf("unexpected commit reply %v", res))
	}

	switch res[0] {
	case 1:
		return kv.VersionstampFromSeq(uint64(res[1])), nil
	case 0:
		log.Debug().Str("func", "*redisEngine.Commit").Str("key", slotKeys[res[1]-1].String()).Msg("versionstamp check failed")
		return "", kv.ErrConflict
	default:
		return "", fmt.Errorf("sum on %s: %w", slotKeys[res[1]-1], kv.ErrInvalidSum)
	}
}

func (e *redisEngine) Close() error {
	return e.client.Close()
}

// expectedSeq converts a versionstamp to the form stored in the hash.
// Versionstamps of other engines can never match.
func expectedSeq(vs kv.Versionstamp) string {
	if vs == "" {
		return ""
	}
	seq, ok := vs.Seq()
	if !ok {
		return "invalid:" + string(vs)
	}
	return strconv.FormatUint(seq, 10)
}

func entryFromHash(key kv.Key, values []any) (kv.Entry, error) {
	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return kv.Entry{Key: key}, nil
	}

	value, _ := values[0].(string)
	rawSeq, _ := values[1].(string)
	seq, err := strconv.ParseUint(rawSeq, 10, 64)
	if err != nil {
		return kv.Entry{}, kv.NewEngineError("get", false, fmt.Errorf("corrupt versionstamp %q of %s: %w", rawSeq, key, err))
	}

	return kv.Entry{Key: key, Value: []byte(value), Versionstamp: kv.VersionstampFromSeq(seq)}, nil
}

func isRedisRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	for _, prefix := range []string{"LOADING", "BUSY", "TRYAGAIN", "CLUSTERDOWN", "MASTERDOWN"} {
		if strings.HasPrefix(err.Error(), prefix) {
			return true
		}
	}
	return false
}
