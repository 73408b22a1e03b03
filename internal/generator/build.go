package generator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/idgen/internal/config"
	"github.com/weiawesome/wes-io-live/idgen/pkg/flake"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
	"github.com/weiawesome/wes-io-live/idgen/pkg/textid"
	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

var textTypes = map[textid.Variant]Type{
	textid.Seconds:        TypeTextSeconds,
	textid.Millis:         TypeTextMillis,
	textid.MillisTolerant: TypeTextMillisTolerant,
	textid.Compact:        TypeTextCompact,
}

// Build creates every generator from cfg and registers it.
func Build(cfg *config.Config, logger zerolog.Logger, observers ...Observer) (*Registry, error) {
	reg := NewRegistry(observers...)

	// Snowflake
	flakeOpts := []flake.Option{
		flake.WithEpoch(cfg.Snowflake.Epoch),
		flake.WithTolerance(cfg.Snowflake.Tolerance),
		flake.WithLogger(logger),
	}
	if cfg.Snowflake.DatacenterID >= 0 {
		flakeOpts = append(flakeOpts, flake.WithDatacenterID(cfg.Snowflake.DatacenterID))
	}
	if cfg.Snowflake.WorkerID >= 0 {
		flakeOpts = append(flakeOpts, flake.WithWorkerID(cfg.Snowflake.WorkerID))
	}
	fg, err := flake.New(flakeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake generator: %w", err)
	}
	reg.Register(TypeSnowflake, NewSnowflakeGenerator(fg))
	logger.Info().
		Int64(pkglog.FieldDatacenterID, fg.DatacenterID()).
		Int64(pkglog.FieldWorkerID, fg.WorkerID()).
		Int64(pkglog.FieldEpoch, fg.Epoch()).
		Msg("snowflake generator initialized")

	// ULID
	ug, err := ulid.NewGenerator(ulid.WithTolerance(cfg.ULID.Tolerance))
	if err != nil {
		return nil, fmt.Errorf("failed to create ulid generator: %w", err)
	}
	reg.Register(TypeULID, NewULIDGenerator(ug))
	reg.Register(TypeULIDFast, NewFastULIDGenerator(ug))

	// Text
	loc, err := time.LoadLocation(cfg.Text.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load text id location %q: %w", cfg.Text.Location, err)
	}
	for _, v := range textid.Variants() {
		opts := []textid.Option{
			textid.WithPrefix(cfg.Text.Prefix),
			textid.WithLocation(loc),
			textid.WithTolerance(cfg.Text.Tolerance),
			textid.WithLogger(logger),
		}
		if cfg.Text.Suffix != "" && v.HasSuffix() {
			opts = append(opts, textid.WithSuffix(cfg.Text.Suffix))
		}
		tg, err := textid.New(v, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s text generator: %w", v, err)
		}
		reg.Register(textTypes[v], NewTextGenerator(tg))
	}
	logger.Info().Str(pkglog.FieldSuffix, cfg.Text.Suffix).Str("location", loc.String()).Msg("text generators initialized")

	reg.Register(TypeUUID, NewUUIDGenerator())
	reg.Register(TypeUUIDv7, NewUUIDv7Generator())
	reg.Register(TypeKSUID, NewKSUIDGenerator())

	// NanoID
	nanoidGen, err := NewNanoIDGenerator(cfg.NanoID.Size, cfg.NanoID.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to create nanoid generator: %w", err)
	}
	reg.Register(TypeNanoID, nanoidGen)

	// CUID2
	cuid2Gen, err := NewCUID2Generator(cfg.CUID2.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to create cuid2 generator: %w", err)
	}
	reg.Register(TypeCUID2, cuid2Gen)

	return reg, nil
}
