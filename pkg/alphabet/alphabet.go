// Package alphabet maps small integers to printable symbols and back.
//
// Three tables are provided: Crockford Base32 (with decode-only aliases),
// Base36 and a URL-safe table whose symbols are in ASCII order, so
// fixed-width strings compare the same way as the numbers they encode.
package alphabet

import (
	"fmt"
	"strings"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

const invalid = 0xFF

// Alphabet is an ordered symbol table with its inverse lookup.
type Alphabet struct {
	symbols string
	decode  [256]byte
}

var (
	// Crockford is the Base32 alphabet without I, L, O and U.
	// Decoding accepts lowercase and the aliases O→0, I→1, L→1.
	Crockford = mustNew("0123456789ABCDEFGHJKMNPQRSTVWXYZ", map[byte]byte{
		'O': '0', 'o': '0',
		'I': '1', 'i': '1',
		'L': '1', 'l': '1',
	}, true)

	// Base36 is 0-9 followed by A-Z. Decoding accepts lowercase.
	Base36 = mustNew("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", nil, true)

	// URLSafe is 34 symbols in ASCII order: '-', digits, '_', and the
	// lowercase letters without i, l, o and u.
	URLSafe = mustNew("-0123456789_abcdefghjkmnpqrstvwxyz", nil, false)
)

// New builds an alphabet from up to 36 distinct printable ASCII symbols.
func New(symbols string) (*Alphabet, error) {
	return build(symbols, nil, false)
}

func mustNew(symbols string, aliases map[byte]byte, foldCase bool) *Alphabet {
	a, err := build(symbols, aliases, foldCase)
	if err != nil {
		panic(err)
	}
	return a
}

func build(symbols string, aliases map[byte]byte, foldCase bool) (*Alphabet, error) {
	if len(symbols) < 2 || len(symbols) > 36 {
		return nil, idgen.InvalidConfig("alphabet needs 2..36 symbols, got %d", len(symbols))
	}

	a := &Alphabet{symbols: symbols}
	for i := range a.decode {
		a.decode[i] = invalid
	}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if c <= ' ' || c > '~' {
			return nil, idgen.InvalidConfig("alphabet symbol %q is not printable ASCII", c)
		}
		if a.decode[c] != invalid {
			return nil, idgen.InvalidConfig("alphabet symbol %q repeated", c)
		}
		a.decode[c] = byte(i)
	}
	if foldCase {
		for i := 0; i < len(symbols); i++ {
			lower := strings.ToLower(symbols[i : i+1])[0]
			if a.decode[lower] == invalid {
				a.decode[lower] = byte(i)
			}
		}
	}
	for alias, target := range aliases {
		a.decode[alias] = a.decode[target]
	}
	return a, nil
}

// Len returns the radix of the alphabet.
func (a *Alphabet) Len() int { return len(a.symbols) }

// Symbols returns the encoding table in order.
func (a *Alphabet) Symbols() string { return a.symbols }

// Symbol returns the symbol for value v. It panics if v is out of range.
func (a *Alphabet) Symbol(v int) byte { return a.symbols[v] }

// Index returns the value of symbol c, including aliases.
func (a *Alphabet) Index(c byte) (int, bool) {
	v := a.decode[c]
	if v == invalid {
		return 0, false
	}
	return int(v), true
}

// Encode renders v with the fewest symbols, most significant first.
func (a *Alphabet) Encode(v uint64) string {
	return a.EncodePadded(v, 1)
}

// EncodePadded renders v left-padded with the zero symbol to at least width
// symbols.
func (a *Alphabet) EncodePadded(v uint64, width int) string {
	var buf [64]byte
	radix := uint64(len(a.symbols))
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = a.symbols[v%radix]
		v /= radix
	}
	for len(buf)-i < width && i > 0 {
		i--
		buf[i] = a.symbols[0]
	}
	return string(buf[i:])
}

// Decode parses s as a weighted sum of symbol values.
func (a *Alphabet) Decode(s string) (uint64, error) {
	if s == "" {
		return 0, idgen.InvalidEncoding("empty input")
	}
	radix := uint64(len(a.symbols))
	var v uint64
	for i := 0; i < len(s); i++ {
		d := a.decode[s[i]]
		if d == invalid {
			return 0, idgen.InvalidEncoding("symbol %q at %d is not in the alphabet", s[i], i)
		}
		if v > (^uint64(0)-uint64(d))/radix {
			return 0, idgen.InvalidEncoding("%q overflows 64 bits", s)
		}
		v = v*radix + uint64(d)
	}
	return v, nil
}

// Width returns how many symbols are needed for every value up to max.
func (a *Alphabet) Width(max uint64) int {
	return len(a.Encode(max))
}

func (a *Alphabet) String() string {
	return fmt.Sprintf("alphabet(%d:%s)", len(a.symbols), a.symbols)
}
