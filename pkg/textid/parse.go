package textid

import (
	"strconv"
	"strings"
	"time"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

// Parts is a text identifier split into its fields.
type Parts struct {
	Time     time.Time `json:"time"`
	Sequence int64     `json:"sequence"`
	Suffix   string    `json:"suffix,omitempty"`
}

// Parse splits s, which must carry the generator's prefix, into its fields.
// Everything after the sequence is returned as the suffix.
func (g *Generator) Parse(s string) (Parts, error) {
	rest, ok := strings.CutPrefix(s, g.prefix)
	if !ok {
		return Parts{}, idgen.InvalidEncoding("text id %q lacks prefix %q", s, g.prefix)
	}

	dtWidth := g.variant.DatetimeWidth()
	if len(rest) < dtWidth+g.f.digits {
		return Parts{}, idgen.InvalidEncoding("text id %q is too short for variant %s", s, g.f.name)
	}
	if !allDigits(rest[:dtWidth+g.f.digits]) {
		return Parts{}, idgen.InvalidEncoding("text id %q has non-digit datetime or sequence", s)
	}

	secWidth := len(g.f.layout)
	t, err := time.ParseInLocation(g.f.layout, rest[:secWidth], g.location)
	if err != nil {
		return Parts{}, idgen.InvalidEncoding("text id %q: %s", s, err)
	}
	if g.f.millis {
		ms, _ := strconv.Atoi(rest[secWidth:dtWidth])
		t = t.Add(time.Duration(ms) * time.Millisecond)
	}

	seq, _ := strconv.ParseInt(rest[dtWidth:dtWidth+g.f.digits], 10, 64)
	return Parts{
		Time:     t,
		Sequence: seq,
		Suffix:   rest[dtWidth+g.f.digits:],
	}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
