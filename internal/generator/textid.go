package generator

import (
	"fmt"

	"github.com/weiawesome/wes-io-live/idgen/pkg/textid"
)

// TextGenerator generates datetime-composed text IDs.
type TextGenerator struct {
	g *textid.Generator
}

// NewTextGenerator wraps a configured text id generator.
func NewTextGenerator(g *textid.Generator) *TextGenerator {
	return &TextGenerator{g: g}
}

func (t *TextGenerator) Generate() (string, error) {
	return t.g.NextID()
}

func (t *TextGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, t.g.NextID)
}

func (t *TextGenerator) Validate(id string) (bool, string) {
	p, err := t.g.Parse(id)
	if err != nil {
		return false, err.Error()
	}
	if p.Suffix != t.g.Suffix() {
		return false, fmt.Sprintf("suffix %q does not match %q", p.Suffix, t.g.Suffix())
	}
	return true, ""
}

func (t *TextGenerator) Parse(id string) (*ParseResult, error) {
	p, err := t.g.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid %s id: %w", t.g.Variant(), err)
	}

	r := &ParseResult{
		Sequence: int64Ptr(p.Sequence),
		Suffix:   p.Suffix,
		IDLength: int32(len(id)),
	}
	r.setTime(p.Time.UnixMilli())
	return r, nil
}
