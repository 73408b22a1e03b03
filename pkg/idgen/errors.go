package idgen

import (
	"errors"
	"fmt"
)

// Error kinds shared by every generator and codec in this module.
// Match them with errors.Is; the concrete error usually carries more context.
var (
	// ErrClockRollback is returned when the clock reports a time earlier than
	// the last observed time by more than the configured tolerance.
	ErrClockRollback = errors.New("idgen: clock moved backwards")

	// ErrInvalidConfiguration is returned by constructors for out-of-range
	// node ids and other unusable parameters. No identifier is produced.
	ErrInvalidConfiguration = errors.New("idgen: invalid configuration")

	// ErrInvalidEncoding is returned by decoders for malformed text and by
	// encoders for values that do not fit their field.
	ErrInvalidEncoding = errors.New("idgen: invalid encoding")

	// ErrTimestampRange is returned when the clock is before a generator's
	// epoch or past the last instant its time field can represent.
	ErrTimestampRange = errors.New("idgen: timestamp out of range")
)

// ClockRollbackError describes a rejected backward clock step.
// Values are in the generator's time unit (milliseconds or seconds).
type ClockRollbackError struct {
	Last      int64
	Now       int64
	Tolerance int64
}

// Drift returns how far the clock went backwards.
func (e *ClockRollbackError) Drift() int64 {
	return e.Last - e.Now
}

func (e *ClockRollbackError) Error() string {
	return fmt.Sprintf("%s: last=%d now=%d drift=%d tolerance=%d",
		ErrClockRollback, e.Last, e.Now, e.Drift(), e.Tolerance)
}

// Is reports ErrClockRollback as the kind of this error.
func (e *ClockRollbackError) Is(target error) bool {
	return target == ErrClockRollback
}

// InvalidConfig wraps ErrInvalidConfiguration with a formatted reason.
func InvalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// InvalidEncoding wraps ErrInvalidEncoding with a formatted reason.
func InvalidEncoding(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEncoding, fmt.Sprintf(format, args...))
}
