package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/weiawesome/wes-io-live/idgen/pkg/clock"
	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

// withRequestClock swaps the request id generator for one reading c.
func withRequestClock(t *testing.T, c clock.Clock) {
	t.Helper()
	prev := requestIDs
	requestIDs = mustRequestIDGenerator(ulid.WithGuard(ulid.NewGuard()), ulid.WithClock(c))
	t.Cleanup(func() { requestIDs = prev })
}

func serveGin(t *testing.T, logger zerolog.Logger, header string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(headerRequestID, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGinMiddlewareMintsRequestID(t *testing.T) {
	var buf bytes.Buffer
	w := serveGin(t, zerolog.New(&buf), "")
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get(headerRequestID)
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, id, entry[FieldRequestID])
}

func TestGinMiddlewareKeepsRequestID(t *testing.T) {
	w := serveGin(t, Nop(), "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(headerRequestID))
}

func TestGinMiddlewareClockOutOfRange(t *testing.T) {
	withRequestClock(t, clock.Func(func() int64 { return -1 }))

	var w *httptest.ResponseRecorder
	require.NotPanics(t, func() { w = serveGin(t, Nop(), "") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(headerRequestID))
}

func TestRequestIDsOrdered(t *testing.T) {
	withRequestClock(t, clock.NewMock(1_700_000_000_000))
	a, b := newRequestID(), newRequestID()
	require.NotEmpty(t, a)
	assert.Less(t, a, b)
}

func TestUnaryInterceptorRequestID(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	interceptor := UnaryServerInterceptor(Nop())

	var seen string
	handler := func(ctx context.Context, _ any) (any, error) {
		seen = requestIDFromMD(ctx)
		return "ok", nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(metadataKeyRequestID, "req-7"))
	resp, err := interceptor(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "req-7", seen)

	withRequestClock(t, clock.Func(func() int64 { return int64(ulid.MaxTime) + 1 }))
	require.NotPanics(t, func() {
		_, err = interceptor(context.Background(), nil, info, handler)
	})
	assert.NoError(t, err)
	assert.Empty(t, seen)
}
