package idgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutShiftAndMax(t *testing.T) {
	l := MustLayout(64,
		Field{Name: "sign", Bits: 1},
		Field{Name: "time", Bits: 41},
		Field{Name: "datacenter", Bits: 5},
		Field{Name: "worker", Bits: 5},
		Field{Name: "sequence", Bits: 12},
	)

	assert.Equal(t, uint(64), l.Used())
	assert.Equal(t, uint(63), l.Shift("sign"))
	assert.Equal(t, uint(22), l.Shift("time"))
	assert.Equal(t, uint(17), l.Shift("datacenter"))
	assert.Equal(t, uint(12), l.Shift("worker"))
	assert.Equal(t, uint(0), l.Shift("sequence"))
	assert.Equal(t, uint64(31), l.Max("worker"))
	assert.Equal(t, uint64(4095), l.Max("sequence"))
	assert.Equal(t, "sign:1|time:41|datacenter:5|worker:5|sequence:12", l.String())
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		width  uint
		fields []Field
	}{
		{"bad width", 32, []Field{{"a", 8}}},
		{"too wide", 64, []Field{{"a", 60}, {"b", 5}}},
		{"zero field", 64, []Field{{"a", 0}}},
		{"no name", 128, []Field{{"", 4}}},
		{"duplicate", 128, []Field{{"a", 4}, {"a", 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.width, tt.fields...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
		})
	}
}

func TestFieldMaxSaturates(t *testing.T) {
	assert.Equal(t, ^uint64(0), Field{Name: "random", Bits: 80}.Max())
	assert.Equal(t, uint64(1<<48-1), Field{Name: "time", Bits: 48}.Max())
}

func TestClockRollbackError(t *testing.T) {
	err := error(&ClockRollbackError{Last: 5000, Now: 0, Tolerance: 2000})

	var rb *ClockRollbackError
	require.True(t, errors.As(err, &rb))
	assert.Equal(t, int64(5000), rb.Drift())
	assert.True(t, errors.Is(err, ErrClockRollback))
	assert.False(t, errors.Is(err, ErrInvalidEncoding))
	assert.Contains(t, err.Error(), "drift=5000")
}
