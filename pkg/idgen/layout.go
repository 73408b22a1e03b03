package idgen

import (
	"fmt"
	"strings"
)

// Field is a named bit field of an identifier layout.
type Field struct {
	Name string
	Bits uint
}

// Max returns the largest value the field holds, 2^Bits - 1.
// Fields of 64 bits or more saturate at the maximum uint64.
func (f Field) Max() uint64 {
	if f.Bits >= 64 {
		return ^uint64(0)
	}
	return 1<<f.Bits - 1
}

// Layout is an ordered list of fields packed into a fixed-width container,
// most significant field first.
type Layout struct {
	Width  uint
	Fields []Field
}

// NewLayout builds and validates a layout.
func NewLayout(width uint, fields ...Field) (Layout, error) {
	l := Layout{Width: width, Fields: fields}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// MustLayout is NewLayout for package-level declarations.
func MustLayout(width uint, fields ...Field) Layout {
	l, err := NewLayout(width, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Validate checks the container width, field names and the total bit count.
func (l Layout) Validate() error {
	if l.Width != 64 && l.Width != 128 {
		return InvalidConfig("layout width must be 64 or 128, got %d", l.Width)
	}
	seen := make(map[string]bool, len(l.Fields))
	for _, f := range l.Fields {
		if f.Name == "" {
			return InvalidConfig("layout field without a name")
		}
		if f.Bits == 0 {
			return InvalidConfig("layout field %q has zero width", f.Name)
		}
		if seen[f.Name] {
			return InvalidConfig("duplicate layout field %q", f.Name)
		}
		seen[f.Name] = true
	}
	if used := l.Used(); used > l.Width {
		return InvalidConfig("layout uses %d bits, container has %d", used, l.Width)
	}
	return nil
}

// Used returns the sum of all field widths.
func (l Layout) Used() uint {
	var n uint
	for _, f := range l.Fields {
		n += f.Bits
	}
	return n
}

// Field looks a field up by name.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Shift returns the number of bits below the named field.
// It panics on unknown names; layouts are package constants.
func (l Layout) Shift(name string) uint {
	shift := l.Used()
	for _, f := range l.Fields {
		shift -= f.Bits
		if f.Name == name {
			return shift
		}
	}
	panic(fmt.Sprintf("idgen: layout has no field %q", name))
}

// Max returns the maximum value of the named field.
func (l Layout) Max(name string) uint64 {
	f, ok := l.Field(name)
	if !ok {
		panic(fmt.Sprintf("idgen: layout has no field %q", name))
	}
	return f.Max()
}

func (l Layout) String() string {
	parts := make([]string, 0, len(l.Fields))
	for _, f := range l.Fields {
		parts = append(parts, fmt.Sprintf("%s:%d", f.Name, f.Bits))
	}
	return strings.Join(parts, "|")
}
