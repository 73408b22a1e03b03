package ulid

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-live/idgen/pkg/clock"
	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

// DefaultTolerance is how far behind the last ULID's timestamp the clock may
// read while Create still increments instead of drawing fresh entropy.
const DefaultTolerance = 10 * time.Second

// Guard serializes monotonic generation and remembers the last ULID issued.
// Generators sharing a Guard produce one strictly increasing stream.
type Guard struct {
	mu   sync.Mutex
	last ULID
	set  bool
}

// NewGuard returns an empty guard.
func NewGuard() *Guard { return &Guard{} }

// Last returns the most recent ULID issued under the guard.
func (g *Guard) Last() (ULID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last, g.set
}

var (
	processGuard     *Guard
	processGuardOnce sync.Once
)

// ProcessGuard returns the process-wide guard, creating it on first use.
func ProcessGuard() *Guard {
	processGuardOnce.Do(func() {
		processGuard = NewGuard()
	})
	return processGuard
}

type options struct {
	clock     clock.Clock
	entropy   io.Reader
	guard     *Guard
	tolerance time.Duration
}

// Option configures a Generator.
type Option func(*options)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithEntropy replaces crypto/rand. The reader must be safe for concurrent
// use if Fast is called from several goroutines.
func WithEntropy(r io.Reader) Option {
	return func(o *options) { o.entropy = r }
}

// WithGuard replaces the process-wide guard.
func WithGuard(g *Guard) Option {
	return func(o *options) { o.guard = g }
}

// WithTolerance sets the backward clock window inside which Create keeps
// incrementing the last ULID.
func WithTolerance(d time.Duration) Option {
	return func(o *options) { o.tolerance = d }
}

// Generator creates ULIDs. It is safe for concurrent use.
type Generator struct {
	clock     clock.Clock
	entropy   io.Reader
	guard     *Guard
	tolerance uint64 // ms
}

// NewGenerator builds a Generator. By default it reads the system clock and
// crypto/rand and shares the process-wide guard.
func NewGenerator(opts ...Option) (*Generator, error) {
	o := options{
		clock:     clock.Default,
		entropy:   rand.Reader,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tolerance < 0 {
		return nil, idgen.InvalidConfig("tolerance must not be negative, got %s", o.tolerance)
	}
	if o.entropy == nil {
		return nil, idgen.InvalidConfig("entropy source is nil")
	}
	if o.guard == nil {
		o.guard = ProcessGuard()
	}
	return &Generator{
		clock:     o.clock,
		entropy:   o.entropy,
		guard:     o.guard,
		tolerance: uint64(o.tolerance.Milliseconds()),
	}, nil
}

func (g *Generator) now() (uint64, error) {
	ms := g.clock.UnixMilli()
	if ms < 0 || uint64(ms) > MaxTime {
		return 0, fmt.Errorf("%w: clock %d outside the 48-bit ulid range", idgen.ErrTimestampRange, ms)
	}
	return uint64(ms), nil
}

// Create returns a ULID strictly greater than every ULID previously issued
// under the same guard.
//
// While the clock reads at or up to the tolerance behind the last ULID's
// timestamp, the last ULID is incremented by one, carrying into the
// timestamp when the entropy overflows. Otherwise fresh entropy is drawn for
// the current time.
func (g *Generator) Create() (ULID, error) {
	ms, err := g.now()
	if err != nil {
		return Zero, err
	}

	g.guard.mu.Lock()
	defer g.guard.mu.Unlock()

	if g.guard.set {
		last := g.guard.last.Time()
		if ms <= last && ms+g.tolerance >= last {
			if next, ok := g.guard.last.increment(); ok {
				g.guard.last = next
				return next, nil
			}
		}
	}

	u, err := New(ms, g.entropy)
	if err != nil {
		return Zero, err
	}
	g.guard.last, g.guard.set = u, true
	return u, nil
}

// Fast returns a ULID with fresh entropy without touching the guard. ULIDs
// from the same millisecond are unique with overwhelming probability but are
// not ordered among themselves.
func (g *Generator) Fast() (ULID, error) {
	ms, err := g.now()
	if err != nil {
		return Zero, err
	}
	return New(ms, g.entropy)
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

func generator() *Generator {
	defaultGeneratorOnce.Do(func() {
		g, err := NewGenerator()
		if err != nil {
			panic(err)
		}
		defaultGenerator = g
	})
	return defaultGenerator
}

// Make returns a monotonic ULID from the process-wide generator. It panics
// if the system clock or crypto/rand fails.
func Make() ULID {
	u, err := generator().Create()
	if err != nil {
		panic(err)
	}
	return u
}

// Fast returns a non-monotonic ULID from the process-wide generator. It
// panics if the system clock or crypto/rand fails.
func Fast() ULID {
	u, err := generator().Fast()
	if err != nil {
		panic(err)
	}
	return u
}
