package generator

import (
	"fmt"
	"time"

	"github.com/weiawesome/wes-io-live/idgen/pkg/flake"
)

// SnowflakeGenerator generates 64-bit snowflake IDs in decimal form.
type SnowflakeGenerator struct {
	g *flake.Generator
}

// NewSnowflakeGenerator wraps a configured flake generator.
func NewSnowflakeGenerator(g *flake.Generator) *SnowflakeGenerator {
	return &SnowflakeGenerator{g: g}
}

func (s *SnowflakeGenerator) Generate() (string, error) {
	return s.g.NextIDString()
}

func (s *SnowflakeGenerator) GenerateBatch(count int) ([]string, error) {
	ids, err := s.g.NextIDs(count)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out, nil
}

func (s *SnowflakeGenerator) Validate(id string) (bool, string) {
	n, err := flake.ParseString(id)
	if err != nil {
		return false, err.Error()
	}
	if ms := n.Time(s.g.Epoch()).UnixMilli(); ms > time.Now().UnixMilli() {
		return false, "timestamp is in the future"
	}
	return true, ""
}

func (s *SnowflakeGenerator) Parse(id string) (*ParseResult, error) {
	n, err := flake.ParseString(id)
	if err != nil {
		return nil, fmt.Errorf("invalid snowflake id: %w", err)
	}

	p := s.g.Decompose(n)
	r := &ParseResult{
		DatacenterID: int64Ptr(p.DatacenterID),
		WorkerID:     int64Ptr(p.WorkerID),
		Sequence:     int64Ptr(p.Sequence),
	}
	r.setTime(p.TimestampMs)
	return r, nil
}
