package kv

// KeyBuilder accumulates key segments. Each call to Build returns a fresh
// Key that does not share memory with the builder.
type KeyBuilder struct {
	parts []Part
}

func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{}
}

func (b *KeyBuilder) With(parts ...Part) *KeyBuilder {
	b.parts = append(b.parts, parts...)
	return b
}

func (b *KeyBuilder) WithString(s string) *KeyBuilder { return b.With(String(s)) }
func (b *KeyBuilder) WithInt(i int64) *KeyBuilder     { return b.With(Int(i)) }
func (b *KeyBuilder) WithBytes(p []byte) *KeyBuilder  { return b.With(Bytes(p)) }

func (b *KeyBuilder) Build() Key {
	key := make(Key, len(b.parts))
	copy(key, b.parts)
	return key
}

// NewKey is a shorthand for NewKeyBuilder().With(parts...).Build().
func NewKey(parts ...Part) Key {
	return NewKeyBuilder().With(parts...).Build()
}
