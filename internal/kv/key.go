// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package kv

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type tags of encoded key segments. The numeric order of the tags defines
// the cross-type order of keys: bytes < string < int < float < bool.
const (
	tagBytes  byte = 0x01
	tagString byte = 0x02
	tagInt    byte = 0x14
	tagFloat  byte = 0x21
	tagFalse  byte = 0x26
	tagTrue   byte = 0x27
)

const (
	terminator byte = 0x00
	escape     byte = 0xFF
)

// PartKind identifies the type of a single key segment.
type PartKind byte

const (
	KindBytes PartKind = iota + 1
	KindString
	KindInt
	KindFloat
	KindBool
)

// Part is one typed segment of a [Key].
type Part struct {
	kind PartKind
	b    []byte
	s    string
	i    int64
	f    float64
	t    bool
}

func Bytes(b []byte) Part  { return Part{kind: KindBytes, b: bytes.Clone(b)} }
func String(s string) Part { return Part{kind: KindString, s: s} }
func Int(i int64) Part     { return Part{kind: KindInt, i: i} }
func Float(f float64) Part { return Part{kind: KindFloat, f: f} }
func Bool(t bool) Part     { return Part{kind: KindBool, t: t} }

// Kind returns the segment type.
func (p Part) Kind() PartKind { return p.kind }

// Value returns the segment payload as []byte, string, int64, float64 or bool.
func (p Part) Value() any {
	switch p.kind {
	case KindBytes:
		return bytes.Clone(p.b)
	case KindString:
		return p.s
	case KindInt:
		return p.i
	case KindFloat:
		return p.f
	case KindBool:
		return p.t
	}
	return nil
}

func (p Part) String() string {
	switch p.kind {
	case KindBytes:
		return fmt.Sprintf("%x", p.b)
	case KindString:
		return p.s
	case KindInt:
		return strconv.FormatInt(p.i, 10)
	case KindFloat:
		return strconv.FormatFloat(p.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(p.t)
	}
	return "?"
}

func (p Part) appendTo(dst []byte) []byte {
	switch p.kind {
	case KindBytes:
		return appendEscaped(append(dst, tagBytes), p.b)
	case KindString:
		return appendEscaped(append(dst, tagString), []byte(p.s))
	case KindInt:
		dst = append(dst, tagInt)
		return binary.BigEndian.AppendUint64(dst, uint64(p.i)^(1<<63))
	case KindFloat:
		bits := math.Float64bits(p.f)
		if bits&(1<<63) != 0 {
			bits = ^bits
		} else {
			bits ^= 1 << 63
		}
		dst = append(dst, tagFloat)
		return binary.BigEndian.AppendUint64(dst, bits)
	case KindBool:
		if p.t {
			return append(dst, tagTrue)
		}
		return append(dst, tagFalse)
	}
	return dst
}

func appendEscaped(dst, payload []byte) []byte {
	for _, c := range payload {
		dst = append(dst, c)
		if c == terminator {
			dst = append(dst, escape)
		}
	}
	return append(dst, terminator)
}

// Key is an ordered tuple of typed segments, e.g. ("secrets", "text", id).
// The binary form produced by [Key.Encode] sorts the same way as the tuples.
type Key []Part

// Encode returns the order-preserving binary form of the key.
func (k Key) Encode() []byte {
	out := make([]byte, 0, 16*len(k))
	for _, p := range k {
		out = p.appendTo(out)
	}
	return out
}

// Range returns the half-open interval [start, end) of encoded keys that
// strictly extend k. The prefix key itself is not part of the range.
func (k Key) Range() (start, end []byte) {
	enc := k.Encode()
	start = append(bytes.Clone(enc), 0x00)
	end = append(bytes.Clone(enc), 0xFF)
	return start, end
}

// HasPrefix reports whether prefix is a leading sub-tuple of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	return bytes.HasPrefix(k.Encode(), prefix.Encode())
}

func (k Key) Equal(other Key) bool {
	return bytes.Equal(k.Encode(), other.Encode())
}

// Last returns the final segment of the key, or a zero Part for an empty key.
func (k Key) Last() Part {
	if len(k) == 0 {
		return Part{}
	}
	return k[len(k)-1]
}

// String renders the key as a slash separated path for logs.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = p.String()
	}
	return strings.Join(parts, "/")
}

// DecodeKey parses the output of [Key.Encode] back into a Key.
func DecodeKey(data []byte) (Key, error) {
	var key Key
	for i := 0; i < len(data); {
		tag := data[i]
		i++
		switch tag {
		case tagBytes, tagString:
			payload, n, err := readEscaped(data[i:])
			if err != nil {
				return nil, err
			}
			i += n
			if tag == tagBytes {
				key = append(key, Part{kind: KindBytes, b: payload})
			} else {
				key = append(key, Part{kind: KindString, s: string(payload)})
			}
		case tagInt, tagFloat:
			if len(data)-i < 8 {
				return nil, fmt.Errorf("%w: truncated number at offset %d", ErrInvalidKey, i)
			}
			bits := binary.BigEndian.Uint64(data[i : i+8])
			i += 8
			if tag == tagInt {
				key = append(key, Part{kind: KindInt, i: int64(bits ^ (1 << 63))})
				continue
			}
			if bits&(1<<63) != 0 {
				bits ^= 1 << 63
			} else {
				bits = ^bits
			}
			key = append(key, Part{kind: KindFloat, f: math.Float64frombits(bits)})
		case tagFalse:
			key = append(key, Part{kind: KindBool, t: false})
		case tagTrue:
			key = append(key, Part{kind: KindBool, t: true})
		default:
			return nil, fmt.Errorf("%w: unknown tag 0x%02x at offset %d", ErrInvalidKey, tag, i-1)
		}
	}
	return key, nil
}

func readEscaped(data []byte) ([]byte, int, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != terminator {
			out = append(out, data[i])
			continue
		}
		if i+1 < len(data) && data[i+1] == escape {
			out = append(out, terminator)
			i++
			continue
		}
		return out, i + 1, nil
	}
	return nil, 0, fmt.Errorf("%w: unterminated segment", ErrInvalidKey)
}
