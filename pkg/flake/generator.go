package flake

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/idgen/pkg/clock"
	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
	"github.com/weiawesome/wes-io-live/idgen/pkg/node"
)

const (
	// DefaultEpoch is 2010-11-04T01:42:54.657Z in Unix milliseconds.
	DefaultEpoch int64 = 1288834974657

	// DefaultTolerance is how far the clock may step back before NextID
	// fails instead of reusing the last timestamp.
	DefaultTolerance = 2 * time.Second
)

type options struct {
	datacenterID *int64
	workerID     *int64
	epoch        int64
	tolerance    time.Duration
	clock        clock.Clock
	resolver     *node.Resolver
	logger       *zerolog.Logger
}

// Option configures a Generator.
type Option func(*options)

// WithDatacenterID pins the datacenter id instead of deriving it from the
// hardware address.
func WithDatacenterID(id int64) Option {
	return func(o *options) { o.datacenterID = &id }
}

// WithWorkerID pins the worker id instead of deriving it from the
// datacenter id and process id.
func WithWorkerID(id int64) Option {
	return func(o *options) { o.workerID = &id }
}

// WithEpoch sets the custom epoch in Unix milliseconds.
func WithEpoch(ms int64) Option {
	return func(o *options) { o.epoch = ms }
}

// WithTolerance sets the largest backward clock step that is absorbed.
func WithTolerance(d time.Duration) Option {
	return func(o *options) { o.tolerance = d }
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithResolver replaces the resolver used to derive node ids.
func WithResolver(r *node.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// Generator produces IDs for one datacenter/worker pair. It is safe for
// concurrent use; IDs from one generator are unique and strictly increasing.
type Generator struct {
	mu           sync.Mutex
	clock        clock.Clock
	logger       zerolog.Logger
	epoch        int64
	datacenterID int64
	workerID     int64
	tolerance    int64 // ms
	sequence     int64
	lastTime     int64 // last Unix ms an ID was issued for
}

// New builds a Generator. Node ids not pinned with options are derived
// from the host.
func New(opts ...Option) (*Generator, error) {
	o := options{
		epoch:     DefaultEpoch,
		tolerance: DefaultTolerance,
		clock:     clock.Default,
		resolver:  node.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.epoch < 0 {
		return nil, idgen.InvalidConfig("epoch must not be negative, got %d", o.epoch)
	}
	if o.tolerance < 0 {
		return nil, idgen.InvalidConfig("tolerance must not be negative, got %s", o.tolerance)
	}

	var dc int64
	if o.datacenterID != nil {
		dc = *o.datacenterID
	} else {
		dc = o.resolver.DatacenterID(MaxDatacenterID)
	}
	if dc < 0 || dc > MaxDatacenterID {
		return nil, idgen.InvalidConfig("datacenter_id must be between 0 and %d, got %d", MaxDatacenterID, dc)
	}

	var worker int64
	if o.workerID != nil {
		worker = *o.workerID
	} else {
		worker = o.resolver.WorkerID(dc, MaxWorkerID)
	}
	if worker < 0 || worker > MaxWorkerID {
		return nil, idgen.InvalidConfig("worker_id must be between 0 and %d, got %d", MaxWorkerID, worker)
	}

	logger := pkglog.L()
	if o.logger != nil {
		logger = *o.logger
	}
	logger = pkglog.Named(logger, "flake").With().
		Int64(pkglog.FieldDatacenterID, dc).
		Int64(pkglog.FieldWorkerID, worker).
		Logger()

	return &Generator{
		clock:        o.clock,
		logger:       logger,
		epoch:        o.epoch,
		datacenterID: dc,
		workerID:     worker,
		tolerance:    o.tolerance.Milliseconds(),
		lastTime:     -1,
	}, nil
}

// DatacenterID returns the datacenter id embedded in every ID.
func (g *Generator) DatacenterID() int64 { return g.datacenterID }

// WorkerID returns the worker id embedded in every ID.
func (g *Generator) WorkerID() int64 { return g.workerID }

// Epoch returns the custom epoch in Unix milliseconds.
func (g *Generator) Epoch() int64 { return g.epoch }

// NextID returns the next ID.
//
// A backward clock step no larger than the tolerance is absorbed by reusing
// the last timestamp. A larger one fails with an error matching
// idgen.ErrClockRollback and leaves the generator unchanged. When the
// sequence for a millisecond is exhausted NextID spins until the clock moves.
func (g *Generator) NextID() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextLocked()
}

// NextIDString returns the decimal form of NextID.
func (g *Generator) NextIDString() (string, error) {
	id, err := g.NextID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NextIDs returns n consecutive IDs under a single lock acquisition.
func (g *Generator) NextIDs(n int) ([]ID, error) {
	if n < 0 {
		return nil, idgen.InvalidConfig("batch size must not be negative, got %d", n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]ID, 0, n)
	for i := 0; i < n; i++ {
		id, err := g.nextLocked()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// nextLocked must be called with g.mu held.
func (g *Generator) nextLocked() (ID, error) {
	now := g.clock.UnixMilli()

	if now < g.lastTime {
		drift := g.lastTime - now
		if drift > g.tolerance {
			g.logger.Error().
				Int64(pkglog.FieldLastTime, g.lastTime).
				Int64(pkglog.FieldNow, now).
				Int64(pkglog.FieldDrift, drift).
				Int64(pkglog.FieldTolerance, g.tolerance).
				Msg("clock moved backwards beyond tolerance")
			return 0, &idgen.ClockRollbackError{Last: g.lastTime, Now: now, Tolerance: g.tolerance}
		}
		g.logger.Warn().
			Int64(pkglog.FieldDrift, drift).
			Int64(pkglog.FieldTolerance, g.tolerance).
			Msg("clock moved backwards, reusing last timestamp")
		now = g.lastTime
	}

	var seq int64
	if now == g.lastTime {
		seq = (g.sequence + 1) & MaxSequence
		if seq == 0 {
			now = g.waitAfter(g.lastTime)
		}
	}

	ts := now - g.epoch
	if ts < 0 {
		return 0, fmt.Errorf("%w: clock %d is before epoch %d", idgen.ErrTimestampRange, now, g.epoch)
	}
	if ts > MaxTimestamp {
		return 0, fmt.Errorf("%w: %d ms since epoch exceeds %d bits", idgen.ErrTimestampRange, ts, TimestampBits)
	}

	g.sequence = seq
	g.lastTime = now
	return Pack(ts, g.datacenterID, g.workerID, seq), nil
}

// waitAfter spins until the clock reads past last.
func (g *Generator) waitAfter(last int64) int64 {
	now := g.clock.UnixMilli()
	for now <= last {
		runtime.Gosched()
		now = g.clock.UnixMilli()
	}
	return now
}

// Parts is an ID broken into its fields, with the time resolved against
// the generator's epoch.
type Parts struct {
	ID           ID        `json:"id"`
	Time         time.Time `json:"time"`
	TimestampMs  int64     `json:"timestamp_ms"`
	DatacenterID int64     `json:"datacenter_id"`
	WorkerID     int64     `json:"worker_id"`
	Sequence     int64     `json:"sequence"`
}

// Decompose breaks id into its fields.
func (g *Generator) Decompose(id ID) Parts {
	ms := id.Timestamp() + g.epoch
	return Parts{
		ID:           id,
		Time:         time.UnixMilli(ms).UTC(),
		TimestampMs:  ms,
		DatacenterID: id.DatacenterID(),
		WorkerID:     id.WorkerID(),
		Sequence:     id.Sequence(),
	}
}
