package generator

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// UUIDGenerator generates random (v4) or time-ordered (v7) UUIDs.
type UUIDGenerator struct {
	version uuid.Version
	newID   func() (uuid.UUID, error)
}

// NewUUIDGenerator creates a v4 UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{version: 4, newID: uuid.NewRandom}
}

// NewUUIDv7Generator creates a v7 UUIDGenerator.
func NewUUIDv7Generator() *UUIDGenerator {
	return &UUIDGenerator{version: 7, newID: uuid.NewV7}
}

func (g *UUIDGenerator) Generate() (string, error) {
	id, err := g.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (g *UUIDGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, g.Generate)
}

func (g *UUIDGenerator) Validate(id string) (bool, string) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Sprintf("invalid UUID format: %v", err)
	}
	if parsed.Version() != g.version {
		return false, fmt.Sprintf("expected UUID v%d, got v%d", g.version, parsed.Version())
	}
	return true, ""
}

func (g *UUIDGenerator) Parse(id string) (*ParseResult, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format: %w", err)
	}

	r := &ParseResult{
		UUIDVersion: int32(parsed.Version()),
		UUIDVariant: parsed.Variant().String(),
	}
	if parsed.Version() == 7 {
		r.setTime(int64(binary.BigEndian.Uint64(parsed[:8]) >> 16))
	}
	return r, nil
}
