package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/idgen/internal/generator"
	"github.com/weiawesome/wes-io-live/idgen/pkg/clock"
	"github.com/weiawesome/wes-io-live/idgen/pkg/flake"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
	"github.com/weiawesome/wes-io-live/idgen/pkg/response"
	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func newRouter(t *testing.T, reg *generator.Registry) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(reg, 100).RegisterRoutes(r)
	return r
}

func newRegistry(t *testing.T) *generator.Registry {
	t.Helper()
	fg, err := flake.New(flake.WithDatacenterID(1), flake.WithWorkerID(1), flake.WithLogger(pkglog.Nop()))
	require.NoError(t, err)
	ug, err := ulid.NewGenerator(ulid.WithGuard(ulid.NewGuard()))
	require.NoError(t, err)

	reg := generator.NewRegistry()
	reg.Register(generator.TypeSnowflake, generator.NewSnowflakeGenerator(fg))
	reg.Register(generator.TypeULID, generator.NewULIDGenerator(ug))
	reg.Register(generator.TypeUUID, generator.NewUUIDGenerator())
	return reg
}

func do(t *testing.T, r *gin.Engine, path string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestListTypes(t *testing.T) {
	r := newRouter(t, newRegistry(t))
	code, env := do(t, r, "/api/v1/ids")
	require.Equal(t, http.StatusOK, code)

	var data struct{ Types []string }
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"snowflake", "ulid", "uuid"}, data.Types)
}

func TestGenerate(t *testing.T) {
	r := newRouter(t, newRegistry(t))

	code, env := do(t, r, "/api/v1/ids/ulid")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var data idResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ulid", data.Type)
	_, err := ulid.Parse(data.ID)
	assert.NoError(t, err)
}

func TestGenerateUnknownType(t *testing.T) {
	r := newRouter(t, newRegistry(t))

	code, env := do(t, r, "/api/v1/ids/bogus")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestGenerateBatch(t *testing.T) {
	r := newRouter(t, newRegistry(t))

	code, env := do(t, r, "/api/v1/ids/snowflake/batch?count=25")
	require.Equal(t, http.StatusOK, code)
	var data batchResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.IDs, 25)

	prev := int64(0)
	for _, s := range data.IDs {
		id, err := flake.ParseString(s)
		require.NoError(t, err)
		assert.Greater(t, id.Int64(), prev)
		prev = id.Int64()
	}

	for _, q := range []string{"0", "101", "-3", "many"} {
		code, env := do(t, r, "/api/v1/ids/snowflake/batch?count="+q)
		assert.Equal(t, http.StatusBadRequest, code, "count=%s", q)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	}
}

func TestValidateAndParse(t *testing.T) {
	r := newRouter(t, newRegistry(t))

	code, env := do(t, r, "/api/v1/ids/ulid/validate/01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.Equal(t, http.StatusOK, code)
	var v validateResponse
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.Valid)

	code, env = do(t, r, "/api/v1/ids/ulid/validate/not-a-ulid")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Reason)

	code, env = do(t, r, "/api/v1/ids/ulid/parse/01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.Equal(t, http.StatusOK, code)
	var p generator.ParseResult
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, int64(1469922850259), p.TimestampMs)

	code, env = do(t, r, "/api/v1/ids/ulid/parse/not-a-ulid")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.CodeInvalidEncoding, env.Error.Code)
}

func TestClockRollbackIs503(t *testing.T) {
	m := clock.NewMock(0)
	m.Script(flake.DefaultEpoch+60_000, flake.DefaultEpoch)
	fg, err := flake.New(flake.WithDatacenterID(0), flake.WithWorkerID(0), flake.WithClock(m), flake.WithLogger(pkglog.Nop()))
	require.NoError(t, err)
	reg := generator.NewRegistry()
	reg.Register(generator.TypeSnowflake, generator.NewSnowflakeGenerator(fg))
	r := newRouter(t, reg)

	code, _ := do(t, r, "/api/v1/ids/snowflake")
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, r, "/api/v1/ids/snowflake")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, response.CodeClockRollback, env.Error.Code)
}

func TestULIDRange(t *testing.T) {
	r := newRouter(t, newRegistry(t))

	code, env := do(t, r, "/api/v1/ulid/range?from=1469922850259&to=2016-07-30T23:54:11Z")
	require.Equal(t, http.StatusOK, code)
	var data rangeResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, uint64(1469922850259), data.FromMs)
	assert.Equal(t, uint64(1469922851000), data.ToMs)
	assert.Equal(t, "01ARZ3NDEK0000000000000000", data.Min)

	id := ulid.MustParse("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.LessOrEqual(t, data.Min, id.String())
	assert.GreaterOrEqual(t, data.Max, id.String())

	code, env = do(t, r, "/api/v1/ulid/range?from=1469922850259")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, data.FromMs, data.ToMs)
	assert.Equal(t, "01ARZ3NDEKZZZZZZZZZZZZZZZZ", data.Max)

	for _, q := range []string{"", "?from=yesterday", "?from=2000&to=1000", "?from=281474976710656"} {
		code, _ := do(t, r, "/api/v1/ulid/range"+q)
		assert.Equal(t, http.StatusBadRequest, code, "query %q", q)
	}
}
