package generator

import (
	"encoding/hex"
	"fmt"

	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

// ULIDGenerator generates ULIDs, monotonic under the shared guard unless
// fast is set.
type ULIDGenerator struct {
	g    *ulid.Generator
	fast bool
}

// NewULIDGenerator returns a monotonic ULID generator.
func NewULIDGenerator(g *ulid.Generator) *ULIDGenerator {
	return &ULIDGenerator{g: g}
}

// NewFastULIDGenerator returns a ULID generator that draws fresh entropy for
// every id and gives no ordering within a millisecond.
func NewFastULIDGenerator(g *ulid.Generator) *ULIDGenerator {
	return &ULIDGenerator{g: g, fast: true}
}

func (g *ULIDGenerator) Generate() (string, error) {
	var (
		id  ulid.ULID
		err error
	)
	if g.fast {
		id, err = g.g.Fast()
	} else {
		id, err = g.g.Create()
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, g.Generate)
}

func (g *ULIDGenerator) Validate(id string) (bool, string) {
	return validateByParse(g, id)
}

func (g *ULIDGenerator) Parse(id string) (*ParseResult, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid ULID format: %w", err)
	}

	r := &ParseResult{
		UUID:          parsed.UUID().String(),
		RandomPayload: hex.EncodeToString(parsed.Entropy()),
	}
	r.setTime(int64(parsed.Time()))
	return r, nil
}
