// Package flake generates 64-bit, time-ordered integer identifiers.
//
// Layout, most significant bit first:
//
//	+------+----------------------+------------+--------+----------+
//	| sign |      timestamp       | datacenter | worker | sequence |
//	|  1   |          41          |     5      |   5    |    12    |
//	+------+----------------------+------------+--------+----------+
//
// The timestamp counts milliseconds since the generator's epoch, which gives
// about 69 years of range. The sign bit is never set by a generator.
package flake

import (
	"math"
	"strconv"
	"time"

	"github.com/weiawesome/wes-io-live/idgen/pkg/alphabet"
	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

const (
	TimestampBits  = 41
	DatacenterBits = 5
	WorkerBits     = 5
	SequenceBits   = 12

	MaxDatacenterID = 1<<DatacenterBits - 1 // 31
	MaxWorkerID     = 1<<WorkerBits - 1     // 31
	MaxSequence     = 1<<SequenceBits - 1   // 4095
	MaxTimestamp    = 1<<TimestampBits - 1

	workerShift     = SequenceBits
	datacenterShift = SequenceBits + WorkerBits
	timestampShift  = SequenceBits + WorkerBits + DatacenterBits
)

// Layout describes the bit fields of an ID.
var Layout = idgen.MustLayout(64,
	idgen.Field{Name: "sign", Bits: 1},
	idgen.Field{Name: "timestamp", Bits: TimestampBits},
	idgen.Field{Name: "datacenter", Bits: DatacenterBits},
	idgen.Field{Name: "worker", Bits: WorkerBits},
	idgen.Field{Name: "sequence", Bits: SequenceBits},
)

var sortableWidth = alphabet.URLSafe.Width(math.MaxInt64)

// ID is a packed identifier. Larger values were generated later.
type ID int64

// Pack assembles an ID from its fields. Values are masked to their widths.
func Pack(timestamp, datacenterID, workerID, sequence int64) ID {
	return ID((timestamp&MaxTimestamp)<<timestampShift |
		(datacenterID&MaxDatacenterID)<<datacenterShift |
		(workerID&MaxWorkerID)<<workerShift |
		sequence&MaxSequence)
}

// Int64 returns the raw value.
func (id ID) Int64() int64 { return int64(id) }

// Timestamp returns the milliseconds since the epoch the id was packed with.
func (id ID) Timestamp() int64 { return int64(id) >> timestampShift & MaxTimestamp }

// Time resolves the timestamp against epoch (Unix milliseconds).
func (id ID) Time(epoch int64) time.Time { return time.UnixMilli(id.Timestamp() + epoch) }

// DatacenterID returns the datacenter field.
func (id ID) DatacenterID() int64 { return int64(id) >> datacenterShift & MaxDatacenterID }

// WorkerID returns the worker field.
func (id ID) WorkerID() int64 { return int64(id) >> workerShift & MaxWorkerID }

// Sequence returns the sequence field.
func (id ID) Sequence() int64 { return int64(id) & MaxSequence }

// String returns the decimal form.
func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Base36 returns the uppercase Base36 form.
func (id ID) Base36() string { return alphabet.Base36.Encode(uint64(id)) }

// Sortable returns a fixed-width URL-safe form whose lexicographic order
// matches numeric order.
func (id ID) Sortable() string {
	return alphabet.URLSafe.EncodePadded(uint64(id), sortableWidth)
}

// MarshalText encodes the id as a decimal string, which keeps it intact in
// JSON consumers limited to 53-bit numbers.
func (id ID) MarshalText() ([]byte, error) {
	return strconv.AppendInt(nil, int64(id), 10), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	v, err := ParseString(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ParseString parses the decimal form.
func ParseString(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, idgen.InvalidEncoding("flake id %q is not a decimal int64", s)
	}
	if n < 0 {
		return 0, idgen.InvalidEncoding("flake id %q is negative", s)
	}
	return ID(n), nil
}

// ParseBase36 parses the Base36 form.
func ParseBase36(s string) (ID, error) {
	v, err := alphabet.Base36.Decode(s)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 {
		return 0, idgen.InvalidEncoding("flake id %q sets the sign bit", s)
	}
	return ID(v), nil
}

// ParseSortable parses the fixed-width URL-safe form.
func ParseSortable(s string) (ID, error) {
	if len(s) != sortableWidth {
		return 0, idgen.InvalidEncoding("sortable flake id must be %d symbols, got %d", sortableWidth, len(s))
	}
	v, err := alphabet.URLSafe.Decode(s)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 {
		return 0, idgen.InvalidEncoding("flake id %q sets the sign bit", s)
	}
	return ID(v), nil
}
