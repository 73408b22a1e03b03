package generator

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownType is returned by the registry for unregistered types.
var ErrUnknownType = errors.New("unknown id type")

// Generator defines the interface for ID generation, validation, and parsing.
type Generator interface {
	Generate() (string, error)
	GenerateBatch(count int) ([]string, error)
	Validate(id string) (bool, string) // (valid, reason)
	Parse(id string) (*ParseResult, error)
}

// Type names a registered generator in URLs and metrics.
type Type string

const (
	TypeSnowflake          Type = "snowflake"
	TypeULID               Type = "ulid"
	TypeULIDFast           Type = "ulid-fast"
	TypeTextSeconds        Type = "text-seconds"
	TypeTextMillis         Type = "text-millis"
	TypeTextMillisTolerant Type = "text-millis-tolerant"
	TypeTextCompact        Type = "text-compact"
	TypeUUID               Type = "uuid"
	TypeUUIDv7             Type = "uuid-v7"
	TypeKSUID              Type = "ksuid"
	TypeNanoID             Type = "nanoid"
	TypeCUID2              Type = "cuid2"
)

// ParseResult holds the parsed fields from an ID. Only the fields that the
// ID type carries are set.
type ParseResult struct {
	TimestampMs   int64  `json:"timestamp_ms,omitempty"` // time-ordered types: absolute unix ms
	Time          string `json:"time,omitempty"`         // RFC 3339 form of TimestampMs
	DatacenterID  *int64 `json:"datacenter_id,omitempty"`
	WorkerID      *int64 `json:"worker_id,omitempty"`
	Sequence      *int64 `json:"sequence,omitempty"` // snowflake and text ids
	Suffix        string `json:"suffix,omitempty"`   // text ids
	UUID          string `json:"uuid,omitempty"`     // ULID as a raw UUID
	UUIDVersion   int32  `json:"uuid_version,omitempty"`
	UUIDVariant   string `json:"uuid_variant,omitempty"`
	RandomPayload string `json:"random_payload,omitempty"` // hex-encoded random bytes
	IDLength      int32  `json:"id_length,omitempty"`
	Alphabet      string `json:"alphabet,omitempty"`
}

func (r *ParseResult) setTime(ms int64) {
	r.TimestampMs = ms
	r.Time = time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

func int64Ptr(v int64) *int64 { return &v }

// generateBatch calls generate count times.
func generateBatch(count int, generate func() (string, error)) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("count must not be negative, got %d", count)
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := generate()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// validateByParse reports the Parse error as the reason.
func validateByParse(g Generator, id string) (bool, string) {
	if _, err := g.Parse(id); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Registry maps types to generators. Generators registered through it are
// wrapped so every call is reported to the registry's observers. It is
// built at startup and read-only afterwards.
type Registry struct {
	generators map[Type]Generator
	observers  []Observer
}

// NewRegistry returns an empty registry reporting to observers.
func NewRegistry(observers ...Observer) *Registry {
	return &Registry{
		generators: make(map[Type]Generator),
		observers:  observers,
	}
}

// Register adds g under t, replacing any previous registration.
func (r *Registry) Register(t Type, g Generator) {
	if len(r.observers) > 0 {
		g = Instrument(t, g, r.observers...)
	}
	r.generators[t] = g
}

// Get returns the generator registered under t.
func (r *Registry) Get(t Type) (Generator, error) {
	g, ok := r.generators[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return g, nil
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
