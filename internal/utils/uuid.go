package utils

import "github.com/google/uuid"

// UUIDGenerator produces secret ids. Version 7 ids sort by creation time;
// a random v4 id is the fallback.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
