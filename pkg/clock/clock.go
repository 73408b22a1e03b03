// Package clock is the time source of the generators.
//
// Generators read the wall clock only through Clock, so tests can replay
// rollbacks and stalls with Mock or Func.
package clock

import (
	"sync"
	"time"
)

// Clock reports wall-clock time in Unix milliseconds.
type Clock interface {
	UnixMilli() int64
}

// System reads time.Now.
type System struct{}

// UnixMilli implements Clock.
func (System) UnixMilli() int64 { return time.Now().UnixMilli() }

// Default is the clock generators use unless configured otherwise.
var Default Clock = System{}

// Func adapts a function to Clock.
type Func func() int64

// UnixMilli implements Clock.
func (f Func) UnixMilli() int64 { return f() }

// Seconds converts a millisecond reading to whole Unix seconds.
func Seconds(ms int64) int64 {
	if ms < 0 {
		return (ms - 999) / 1000
	}
	return ms / 1000
}

// Mock is a manually driven clock. The zero value reads 0.
//
// Readings come from a script first, if one is set, and then from the
// current value. Every reading is counted.
type Mock struct {
	mu     sync.Mutex
	now    int64
	script []int64
	reads  int
}

// NewMock returns a mock that reads ms until moved.
func NewMock(ms int64) *Mock {
	return &Mock{now: ms}
}

// UnixMilli implements Clock.
func (m *Mock) UnixMilli() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if len(m.script) > 0 {
		m.now = m.script[0]
		m.script = m.script[1:]
	}
	return m.now
}

// Set moves the clock to ms, backwards or forwards.
func (m *Mock) Set(ms int64) {
	m.mu.Lock()
	m.now = ms
	m.mu.Unlock()
}

// Add moves the clock by d, which may be negative.
func (m *Mock) Add(d time.Duration) {
	m.mu.Lock()
	m.now += d.Milliseconds()
	m.mu.Unlock()
}

// Sleep advances the clock by d instead of blocking.
func (m *Mock) Sleep(d time.Duration) {
	m.Add(d)
}

// Script queues readings returned one per call before the clock falls back
// to its last scripted value.
func (m *Mock) Script(readings ...int64) {
	m.mu.Lock()
	m.script = append(m.script, readings...)
	m.mu.Unlock()
}

// Repeat queues n identical readings of ms.
func (m *Mock) Repeat(ms int64, n int) {
	readings := make([]int64, n)
	for i := range readings {
		readings[i] = ms
	}
	m.Script(readings...)
}

// Reads returns how many times the clock was read.
func (m *Mock) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
