// Package ulid implements 128-bit lexicographically sortable identifiers:
// a 48-bit Unix millisecond timestamp followed by 80 random bits, written as
// 26 Crockford Base32 symbols.
//
// The binary layout and text form are interchangeable with
// github.com/oklog/ulid/v2; OKLog and FromOKLog convert between the two.
package ulid

import (
	"bytes"
	"crypto/rand"
	"database/sql/driver"
	"encoding/binary"
	"io"
	"time"

	"github.com/google/uuid"
	oklog "github.com/oklog/ulid/v2"

	"github.com/weiawesome/wes-io-live/idgen/pkg/alphabet"
	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

const (
	// EncodedSize is the length of the text form.
	EncodedSize = alphabet.Base32Size

	// MaxTime is the largest representable timestamp, in Unix milliseconds.
	MaxTime uint64 = 1<<48 - 1

	timeBytes    = 6
	entropyBytes = 10
)

// ULID is a 16-byte identifier, big endian: bytes 0-5 hold the timestamp and
// bytes 6-15 the entropy.
type ULID [16]byte

// Zero is the all-zero ULID.
var Zero ULID

// New returns a ULID for ms with entropy read from r. A nil r reads
// crypto/rand.
func New(ms uint64, r io.Reader) (ULID, error) {
	var u ULID
	if err := u.SetTime(ms); err != nil {
		return u, err
	}
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, u[timeBytes:]); err != nil {
		return Zero, err
	}
	return u, nil
}

// SetTime overwrites the timestamp.
func (u *ULID) SetTime(ms uint64) error {
	if ms > MaxTime {
		return idgen.InvalidEncoding("timestamp %d exceeds 48 bits", ms)
	}
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)
	return nil
}

// Time returns the timestamp in Unix milliseconds.
func (u ULID) Time() uint64 {
	return uint64(u[5]) | uint64(u[4])<<8 | uint64(u[3])<<16 |
		uint64(u[2])<<24 | uint64(u[1])<<32 | uint64(u[0])<<40
}

// Timestamp returns the timestamp as a UTC time.
func (u ULID) Timestamp() time.Time {
	return time.UnixMilli(int64(u.Time())).UTC()
}

// Entropy returns a copy of the 80 random bits.
func (u ULID) Entropy() []byte {
	e := make([]byte, entropyBytes)
	copy(e, u[timeBytes:])
	return e
}

// Bytes returns a copy of the 16 bytes.
func (u ULID) Bytes() []byte {
	b := make([]byte, len(u))
	copy(b, u[:])
	return b
}

// Array returns the 16 bytes by value.
func (u ULID) Array() [16]byte { return u }

// FromBytes copies exactly 16 bytes into a ULID.
func FromBytes(b []byte) (ULID, error) {
	var u ULID
	if len(b) != len(u) {
		return Zero, idgen.InvalidEncoding("ulid must be %d bytes, got %d", len(u), len(b))
	}
	copy(u[:], b)
	return u, nil
}

// String returns the canonical uppercase text form.
func (u ULID) String() string {
	var dst [EncodedSize]byte
	alphabet.EncodeBase32(&dst, u)
	return string(dst[:])
}

// LowerString returns the lowercase text form.
func (u ULID) LowerString() string {
	var dst [EncodedSize]byte
	alphabet.EncodeBase32Lower(&dst, u)
	return string(dst[:])
}

// Parse decodes a 26-symbol text form. Case is ignored and O, I and L are
// read as 0, 1 and 1.
func Parse(s string) (ULID, error) {
	b, err := alphabet.DecodeBase32(s)
	if err != nil {
		return Zero, err
	}
	return ULID(b), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ULID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// UUID reinterprets the 16 bytes as a UUID. The result is not a valid
// RFC 4122 UUID; see RFC4122.
func (u ULID) UUID() uuid.UUID { return uuid.UUID(u) }

// FromUUID reinterprets a UUID's bytes as a ULID.
func FromUUID(id uuid.UUID) ULID { return ULID(id) }

// RFC4122 returns a version 4, variant 10 UUID built from the ULID. Six bits
// of entropy are overwritten, so the conversion cannot be reversed.
func (u ULID) RFC4122() uuid.UUID {
	b := uuid.UUID(u)
	b[6] = b[6]&0x0f | 0x40
	b[8] = b[8]&0x3f | 0x80
	return b
}

// OKLog converts to the github.com/oklog/ulid/v2 type.
func (u ULID) OKLog() oklog.ULID { return oklog.ULID(u) }

// FromOKLog converts from the github.com/oklog/ulid/v2 type.
func FromOKLog(id oklog.ULID) ULID { return ULID(id) }

// MinFor returns the smallest ULID with timestamp ms.
func MinFor(ms uint64) (ULID, error) {
	var u ULID
	err := u.SetTime(ms)
	return u, err
}

// MaxFor returns the largest ULID with timestamp ms.
func MaxFor(ms uint64) (ULID, error) {
	var u ULID
	if err := u.SetTime(ms); err != nil {
		return u, err
	}
	for i := timeBytes; i < len(u); i++ {
		u[i] = 0xFF
	}
	return u, nil
}

// Compare returns -1, 0 or +1. Byte order, text order and time order agree.
func (u ULID) Compare(other ULID) int {
	return bytes.Compare(u[:], other[:])
}

// IsZero reports whether u is Zero.
func (u ULID) IsZero() bool { return u == Zero }

// increment adds one to the 128-bit value, carrying from the entropy into the
// timestamp. It reports false when u is all ones.
func (u ULID) increment() (ULID, bool) {
	hi := binary.BigEndian.Uint64(u[:8])
	lo := binary.BigEndian.Uint64(u[8:])
	lo++
	if lo == 0 {
		hi++
		if hi == 0 {
			return u, false
		}
	}
	var next ULID
	binary.BigEndian.PutUint64(next[:8], hi)
	binary.BigEndian.PutUint64(next[8:], lo)
	return next, true
}

// MarshalText implements encoding.TextMarshaler.
func (u ULID) MarshalText() ([]byte, error) {
	var dst [EncodedSize]byte
	alphabet.EncodeBase32(&dst, u)
	return dst[:], nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *ULID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (u ULID) MarshalBinary() ([]byte, error) { return u.Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (u *ULID) UnmarshalBinary(b []byte) error {
	v, err := FromBytes(b)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Value implements driver.Valuer, storing the text form.
func (u ULID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner. It accepts the text form, the 16 raw bytes
// or NULL, which scans as Zero.
func (u *ULID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = Zero
		return nil
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == len(u) {
			return u.UnmarshalBinary(v)
		}
		return u.UnmarshalText(v)
	default:
		return idgen.InvalidEncoding("cannot scan %T into ulid", src)
	}
}
