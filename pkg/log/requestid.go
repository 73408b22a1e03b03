package log

import (
	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

// requestIDs mints request ids on its own guard so request traffic never
// advances the process-wide ULID sequence.
var requestIDs = mustRequestIDGenerator(ulid.WithGuard(ulid.NewGuard()))

func mustRequestIDGenerator(opts ...ulid.Option) *ulid.Generator {
	g, err := ulid.NewGenerator(opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// newRequestID returns a fresh ULID, or "" when the clock or entropy
// source fails. Logging must not take a request down.
func newRequestID() string {
	u, err := requestIDs.Create()
	if err != nil {
		return ""
	}
	return u.String()
}
