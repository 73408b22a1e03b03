// Package textid composes human-readable identifiers from a formatted
// timestamp, a zero-padded sequence and an optional per-process suffix:
//
//	[prefix] datetime sequence [suffix]
//	         20240305060708009 0042 K3F9QZ
//
// Formats are fixed per Variant. Identifiers from one generator sort in
// creation order as plain strings, and identifiers from different processes
// differ in their suffix.
package textid

import (
	"strings"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

// Variant selects the datetime format, sequence width and rollback policy.
type Variant int

const (
	// Seconds is yyyyMMddHHmmss, 5 sequence digits, strict, with suffix.
	Seconds Variant = iota
	// Millis is yyyyMMddHHmmssSSS, 3 sequence digits, strict, with suffix.
	Millis
	// MillisTolerant is yyyyMMddHHmmssSSS, 4 sequence digits, tolerant,
	// with suffix.
	MillisTolerant
	// Compact is yyMMddHHmmss, 2 sequence digits, strict, no suffix.
	Compact
)

type format struct {
	name     string
	layout   string // time.Format layout of the whole-second part
	millis   bool
	digits   int
	tolerant bool
	suffix   bool
}

var formats = [...]format{
	Seconds:        {name: "seconds", layout: "20060102150405", digits: 5, suffix: true},
	Millis:         {name: "millis", layout: "20060102150405", millis: true, digits: 3, suffix: true},
	MillisTolerant: {name: "millis-tolerant", layout: "20060102150405", millis: true, digits: 4, tolerant: true, suffix: true},
	Compact:        {name: "compact", layout: "060102150405", digits: 2},
}

func (v Variant) valid() bool { return v >= 0 && int(v) < len(formats) }

func (v Variant) format() format { return formats[v] }

// String returns the variant name.
func (v Variant) String() string {
	if !v.valid() {
		return "unknown"
	}
	return formats[v].name
}

// ParseVariant looks a variant up by name.
func ParseVariant(name string) (Variant, error) {
	for i, f := range formats {
		if strings.EqualFold(f.name, name) {
			return Variant(i), nil
		}
	}
	return 0, idgen.InvalidConfig("unknown text id variant %q", name)
}

// Variants returns every variant in declaration order.
func Variants() []Variant {
	vs := make([]Variant, len(formats))
	for i := range formats {
		vs[i] = Variant(i)
	}
	return vs
}

// SequenceDigits returns the width of the sequence field.
func (v Variant) SequenceDigits() int { return formats[v].digits }

// MaxSequence returns the largest sequence value per time unit.
func (v Variant) MaxSequence() int64 {
	n := int64(1)
	for i := 0; i < formats[v].digits; i++ {
		n *= 10
	}
	return n - 1
}

// DatetimeWidth returns the width of the datetime field.
func (v Variant) DatetimeWidth() int {
	f := formats[v]
	if f.millis {
		return len(f.layout) + 3
	}
	return len(f.layout)
}

// Tolerant reports whether small clock rollbacks are waited out.
func (v Variant) Tolerant() bool { return formats[v].tolerant }

// HasSuffix reports whether the variant carries the process suffix by
// default.
func (v Variant) HasSuffix() bool { return formats[v].suffix }
