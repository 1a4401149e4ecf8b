package kv

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Versionstamp identifies the commit that last wrote a key. Versionstamps
// of one engine grow with every commit and compare as plain strings. The
// empty versionstamp means "no value".
type Versionstamp string

// VersionstampFromSeq formats a commit sequence number as a fixed width
// hex versionstamp.
func VersionstampFromSeq(seq uint64) Versionstamp {
	return Versionstamp(fmt.Sprintf("%020x", seq))
}

// Seq parses a versionstamp produced by [VersionstampFromSeq].
func (v Versionstamp) Seq() (uint64, bool) {
	if v == "" {
		return 0, false
	}
	seq, err := strconv.ParseUint(string(v), 16, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// Entry is the result of a point read or a scan. An entry of an absent key
// has a nil Value and an empty Versionstamp.
type Entry struct {
	Key          Key
	Value        []byte
	Versionstamp Versionstamp
}

func (e Entry) Exists() bool {
	return e.Versionstamp != ""
}

// Decode unmarshals the JSON value of e into T.
func Decode[T any](e Entry) (T, error) {
	var out T
	if err := json.Unmarshal(e.Value, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s: %w", ErrInvalidValue, e.Key, err)
	}
	return out, nil
}

var counterPattern = regexp.MustCompile(`^[0-9]+$`)

// EncodeCounter returns the stored form of a counter value.
func EncodeCounter(n uint64) []byte {
	return strconv.AppendUint(nil, n, 10)
}

// DecodeCounter parses a stored counter. Values that are not unsigned
// integers yield [ErrInvalidSum].
func DecodeCounter(value []byte) (uint64, error) {
	if !counterPattern.Match(value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSum, value)
	}
	n, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSum, err)
	}
	return n, nil
}

// EntryFromRaw decodes the engine representation of a stored pair.
func EntryFromRaw(rawKey, value []byte, vs Versionstamp) (Entry, error) {
	key, err := DecodeKey(rawKey)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Key: key, Value: value, Versionstamp: vs}, nil
}
