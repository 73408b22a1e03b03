package alphabet

import (
	"encoding/binary"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

// Base32Size is the length of a 128-bit value in Crockford Base32.
// 26 symbols carry 130 bits; the two leading bits are always zero, so the
// first symbol holds only the top 3 bits of the value.
const Base32Size = 26

// EncodeBase32 writes the canonical uppercase form of src into dst,
// 5 bits per symbol, most significant first.
func EncodeBase32(dst *[Base32Size]byte, src [16]byte) {
	encode128(dst, src, Crockford.symbols)
}

// EncodeBase32Lower is EncodeBase32 with lowercase symbols.
func EncodeBase32Lower(dst *[Base32Size]byte, src [16]byte) {
	encode128(dst, src, crockfordLower)
}

const crockfordLower = "0123456789abcdefghjkmnpqrstvwxyz"

func encode128(dst *[Base32Size]byte, src [16]byte, symbols string) {
	hi := binary.BigEndian.Uint64(src[:8])
	lo := binary.BigEndian.Uint64(src[8:])
	for i := 0; i < Base32Size; i++ {
		shift := uint(125 - 5*i)
		dst[i] = symbols[shr128(hi, lo, shift)&0x1F]
	}
}

// shr128 returns the low 64 bits of (hi:lo) >> s.
func shr128(hi, lo uint64, s uint) uint64 {
	switch {
	case s == 0:
		return lo
	case s >= 64:
		return hi >> (s - 64)
	default:
		return lo>>s | hi<<(64-s)
	}
}

// DecodeBase32 parses a 26-symbol Crockford string into 16 bytes.
// Lowercase and the O/I/L aliases are accepted. A first symbol above 7
// would need more than 128 bits and is rejected rather than masked.
func DecodeBase32(s string) ([16]byte, error) {
	var out [16]byte
	if len(s) != Base32Size {
		return out, idgen.InvalidEncoding("base32 length must be %d, got %d", Base32Size, len(s))
	}

	var hi, lo uint64
	for i := 0; i < Base32Size; i++ {
		v, ok := Crockford.Index(s[i])
		if !ok {
			return out, idgen.InvalidEncoding("symbol %q at %d is not crockford base32", s[i], i)
		}
		if i == 0 && v > 7 {
			return out, idgen.InvalidEncoding("leading symbol %q overflows 128 bits", s[0])
		}
		hi = hi<<5 | lo>>59
		lo = lo<<5 | uint64(v)
	}

	binary.BigEndian.PutUint64(out[:8], hi)
	binary.BigEndian.PutUint64(out[8:], lo)
	return out, nil
}
