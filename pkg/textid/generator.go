package textid

import (
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/idgen/pkg/clock"
	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
	"github.com/weiawesome/wes-io-live/idgen/pkg/node"
)

// DefaultTolerance is the largest rollback MillisTolerant waits out.
const DefaultTolerance = 5 * time.Millisecond

type options struct {
	clock     clock.Clock
	suffix    *string
	prefix    string
	location  *time.Location
	tolerance time.Duration
	sleep     func(time.Duration)
	resolver  *node.Resolver
	logger    *zerolog.Logger
}

// Option configures a Generator.
type Option func(*options)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithSuffix replaces the derived process suffix. An empty suffix drops it.
func WithSuffix(s string) Option {
	return func(o *options) { o.suffix = &s }
}

// WithPrefix prepends a fixed string to every identifier.
func WithPrefix(p string) Option {
	return func(o *options) { o.prefix = p }
}

// WithLocation sets the time zone of the datetime field. Defaults to UTC.
// The zone must keep a constant offset: a daylight saving fall-back repeats
// an hour of datetimes, so New rejects zones that observe one.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithTolerance sets the largest rollback a tolerant variant waits out.
func WithTolerance(d time.Duration) Option {
	return func(o *options) { o.tolerance = d }
}

// WithSleeper replaces time.Sleep for the tolerant wait.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithResolver derives the suffix from r instead of the running host.
func WithResolver(r *node.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// Generator produces text identifiers of one Variant. It is safe for
// concurrent use.
type Generator struct {
	mu        sync.Mutex
	variant   Variant
	f         format
	maxSeq    int64
	clock     clock.Clock
	sleep     func(time.Duration)
	location  *time.Location
	tolerance int64 // ms
	prefix    string
	suffix    string
	logger    zerolog.Logger

	last int64 // last time unit issued, seconds or ms
	seq  int64
}

// New builds a Generator for v.
func New(v Variant, opts ...Option) (*Generator, error) {
	if !v.valid() {
		return nil, idgen.InvalidConfig("unknown text id variant %d", int(v))
	}
	o := options{
		clock:     clock.Default,
		location:  time.UTC,
		tolerance: DefaultTolerance,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tolerance < 0 {
		return nil, idgen.InvalidConfig("tolerance must not be negative, got %s", o.tolerance)
	}
	if o.location == nil {
		return nil, idgen.InvalidConfig("location is nil")
	}
	if !fixedOffset(o.location, time.Now()) {
		return nil, idgen.InvalidConfig("location %s changes its UTC offset; use UTC or a fixed offset", o.location)
	}

	f := v.format()
	var suffix string
	switch {
	case o.suffix != nil:
		suffix = *o.suffix
	case !f.suffix:
	case o.resolver != nil:
		suffix = o.resolver.Suffix()
	default:
		suffix = node.ProcessSuffix()
	}

	logger := pkglog.L()
	if o.logger != nil {
		logger = *o.logger
	}
	logger = pkglog.Named(logger, "textid").With().
		Str(pkglog.FieldVariant, f.name).
		Logger()

	return &Generator{
		variant:   v,
		f:         f,
		maxSeq:    v.MaxSequence(),
		clock:     o.clock,
		sleep:     o.sleep,
		location:  o.location,
		tolerance: o.tolerance.Milliseconds(),
		prefix:    o.prefix,
		suffix:    suffix,
		logger:    logger,
		last:      -1 << 62,
	}, nil
}

// fixedOffset reports whether loc keeps one UTC offset over the years
// around now, sampled monthly.
func fixedOffset(loc *time.Location, now time.Time) bool {
	y := now.Year()
	_, want := time.Date(y-1, time.January, 1, 0, 0, 0, 0, time.UTC).In(loc).Zone()
	for year := y - 1; year <= y+1; year++ {
		for m := time.January; m <= time.December; m++ {
			for _, d := range []int{1, 15} {
				if _, off := time.Date(year, m, d, 12, 0, 0, 0, time.UTC).In(loc).Zone(); off != want {
					return false
				}
			}
		}
	}
	return true
}

// Variant returns the generator's variant.
func (g *Generator) Variant() Variant { return g.variant }

// Prefix returns the fixed prefix.
func (g *Generator) Prefix() string { return g.prefix }

// Suffix returns the current suffix.
func (g *Generator) Suffix() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suffix
}

// SetSuffix replaces the suffix for subsequent identifiers.
func (g *Generator) SetSuffix(s string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logger.Info().Str(pkglog.FieldSuffix, s).Msg("suffix replaced")
	g.suffix = s
}

func (g *Generator) unit(ms int64) int64 {
	if g.f.millis {
		return ms
	}
	return clock.Seconds(ms)
}

// NextID returns the next identifier.
//
// Strict variants fail on any backward step of the time unit. The tolerant
// variant sleeps twice the drift when it is within tolerance and fails if
// the clock is still behind afterwards. When the sequence for a unit is
// exhausted NextID spins until the clock reaches the next unit.
func (g *Generator) NextID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now, err := g.observe()
	if err != nil {
		return "", err
	}

	var seq int64
	if now == g.last {
		seq = g.seq + 1
		if seq > g.maxSeq {
			now = g.waitAfter(g.last)
			seq = 0
		}
	}
	g.last, g.seq = now, seq
	return g.compose(now, seq), nil
}

// observe reads the clock and applies the rollback policy. It must be
// called with g.mu held.
func (g *Generator) observe() (int64, error) {
	now := g.unit(g.clock.UnixMilli())
	if now >= g.last {
		return now, nil
	}

	drift := g.last - now
	if !g.f.tolerant || drift > g.tolerance {
		return 0, g.rollback(now)
	}

	g.logger.Warn().
		Int64(pkglog.FieldDrift, drift).
		Int64(pkglog.FieldTolerance, g.tolerance).
		Msg("clock moved backwards, waiting for it to catch up")
	g.sleep(time.Duration(2*drift) * time.Millisecond)

	now = g.unit(g.clock.UnixMilli())
	if now < g.last {
		return 0, g.rollback(now)
	}
	return now, nil
}

func (g *Generator) rollback(now int64) error {
	err := &idgen.ClockRollbackError{Last: g.last, Now: now, Tolerance: g.tolerance}
	if !g.f.tolerant {
		err.Tolerance = 0
	}
	g.logger.Error().
		Int64(pkglog.FieldLastTime, err.Last).
		Int64(pkglog.FieldNow, err.Now).
		Int64(pkglog.FieldDrift, err.Drift()).
		Msg("clock moved backwards")
	return err
}

// waitAfter spins until the clock reaches a unit past last.
func (g *Generator) waitAfter(last int64) int64 {
	now := g.unit(g.clock.UnixMilli())
	for now <= last {
		runtime.Gosched()
		now = g.unit(g.clock.UnixMilli())
	}
	return now
}

func (g *Generator) compose(unit, seq int64) string {
	var t time.Time
	if g.f.millis {
		t = time.UnixMilli(unit)
	} else {
		t = time.Unix(unit, 0)
	}
	t = t.In(g.location)

	b := make([]byte, 0, len(g.prefix)+g.variant.DatetimeWidth()+g.f.digits+len(g.suffix))
	b = append(b, g.prefix...)
	b = t.AppendFormat(b, g.f.layout)
	if g.f.millis {
		b = appendPadded(b, int64(t.Nanosecond()/int(time.Millisecond)), 3)
	}
	b = appendPadded(b, seq, g.f.digits)
	b = append(b, g.suffix...)
	return string(b)
}

func appendPadded(b []byte, v int64, width int) []byte {
	s := strconv.FormatInt(v, 10)
	for i := len(s); i < width; i++ {
		b = append(b, '0')
	}
	return append(b, s...)
}
