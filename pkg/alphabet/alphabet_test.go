package alphabet

import (
	"crypto/rand"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

func TestTables(t *testing.T) {
	assert.Equal(t, 32, Crockford.Len())
	assert.Equal(t, 36, Base36.Len())
	assert.Equal(t, 34, URLSafe.Len())

	for _, c := range "ILOU" {
		assert.NotContains(t, Crockford.Symbols(), string(c))
	}
	// URLSafe is in ASCII order.
	s := URLSafe.Symbols()
	for i := 1; i < len(s); i++ {
		assert.Less(t, s[i-1], s[i])
	}
}

func TestCrockfordAliases(t *testing.T) {
	for alias, want := range map[byte]int{'O': 0, 'o': 0, 'I': 1, 'i': 1, 'L': 1, 'l': 1, 'z': 31} {
		v, ok := Crockford.Index(alias)
		require.True(t, ok, "alias %q", alias)
		assert.Equal(t, want, v, "alias %q", alias)
	}
	_, ok := Crockford.Index('U')
	assert.False(t, ok)

	// aliases are decode-only
	assert.Equal(t, "10", Crockford.Encode(32))
}

func TestRadixRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 35, 36, 1295, 1 << 32, math.MaxInt64, math.MaxUint64}
	for _, a := range []*Alphabet{Crockford, Base36, URLSafe} {
		for _, v := range values {
			s := a.Encode(v)
			got, err := a.Decode(s)
			require.NoError(t, err, "%s %d", a, v)
			assert.Equal(t, v, got, "%s %q", a, s)
		}
	}
}

func TestBase36Known(t *testing.T) {
	assert.Equal(t, "0", Base36.Encode(0))
	assert.Equal(t, "Z", Base36.Encode(35))
	assert.Equal(t, "10", Base36.Encode(36))
	assert.Equal(t, "3W5E11264SGSF", Base36.Encode(math.MaxUint64))
	assert.Equal(t, "0000ZZ", Base36.EncodePadded(1295, 6))

	v, err := Base36.Decode("zz")
	require.NoError(t, err)
	assert.Equal(t, uint64(1295), v)
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{"", "A-B", "3W5E11264SGSG", "ÿ"} {
		_, err := Base36.Decode(in)
		assert.True(t, errors.Is(err, idgen.ErrInvalidEncoding), "input %q", in)
	}
	_, err := URLSafe.Decode("ABC")
	assert.True(t, errors.Is(err, idgen.ErrInvalidEncoding), "URLSafe is case sensitive")
}

func TestURLSafeSortsLikeValues(t *testing.T) {
	width := URLSafe.Width(math.MaxInt64)
	prev := URLSafe.EncodePadded(0, width)
	for _, v := range []uint64{1, 33, 34, 1 << 20, 1 << 40, math.MaxInt64} {
		cur := URLSafe.EncodePadded(v, width)
		assert.Len(t, cur, width)
		assert.Less(t, prev, cur)
		prev = cur
	}
}

func TestNewRejects(t *testing.T) {
	for _, symbols := range []string{"a", "aa", "ab c", strings.Repeat("x", 37)} {
		_, err := New(symbols)
		assert.True(t, errors.Is(err, idgen.ErrInvalidConfiguration), "symbols %q", symbols)
	}
	a, err := New("01")
	require.NoError(t, err)
	assert.Equal(t, "101", a.Encode(5))
}

func TestBase32MatchesOKLog(t *testing.T) {
	for i := 0; i < 200; i++ {
		var src [16]byte
		_, err := rand.Read(src[:])
		require.NoError(t, err)

		var dst [Base32Size]byte
		EncodeBase32(&dst, src)
		assert.Equal(t, ulid.ULID(src).String(), string(dst[:]))

		back, err := DecodeBase32(string(dst[:]))
		require.NoError(t, err)
		assert.Equal(t, src, back)

		var lower [Base32Size]byte
		EncodeBase32Lower(&lower, src)
		assert.Equal(t, strings.ToLower(string(dst[:])), string(lower[:]))
		back, err = DecodeBase32(string(lower[:]))
		require.NoError(t, err)
		assert.Equal(t, src, back)
	}
}

func TestBase32Boundaries(t *testing.T) {
	var max [16]byte
	for i := range max {
		max[i] = 0xFF
	}
	var dst [Base32Size]byte
	EncodeBase32(&dst, max)
	assert.Equal(t, "7ZZZZZZZZZZZZZZZZZZZZZZZZZ", string(dst[:]))

	_, err := DecodeBase32("80000000000000000000000000")
	assert.True(t, errors.Is(err, idgen.ErrInvalidEncoding))
	_, err = DecodeBase32("ZZZZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.True(t, errors.Is(err, idgen.ErrInvalidEncoding))
	_, err = DecodeBase32("0000000000000000000000000")
	assert.True(t, errors.Is(err, idgen.ErrInvalidEncoding))
	_, err = DecodeBase32("0000000000000000000000000U")
	assert.True(t, errors.Is(err, idgen.ErrInvalidEncoding))

	got, err := DecodeBase32("0O0I0L000000000000000000oo")
	require.NoError(t, err)
	want, err := DecodeBase32("00010100000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
