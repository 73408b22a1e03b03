package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/idgen/internal/generator"
	"github.com/weiawesome/wes-io-live/idgen/pkg/log"
	"github.com/weiawesome/wes-io-live/idgen/pkg/response"
	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

// Handler handles HTTP requests for the id service.
type Handler struct {
	registry *generator.Registry
	maxBatch int
}

// NewHandler creates a new HTTP handler. Batch sizes are capped at maxBatch.
func NewHandler(registry *generator.Registry, maxBatch int) *Handler {
	return &Handler{
		registry: registry,
		maxBatch: maxBatch,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		ids := api.Group("/ids")
		{
			ids.GET("", h.ListTypes)
			ids.GET("/:type", h.Generate)
			ids.GET("/:type/batch", h.GenerateBatch)
			ids.GET("/:type/validate/:id", h.Validate)
			ids.GET("/:type/parse/:id", h.Parse)
		}
		api.GET("/ulid/range", h.ULIDRange)
	}
}

type idResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type batchResponse struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type rangeResponse struct {
	FromMs uint64 `json:"from_ms"`
	ToMs   uint64 `json:"to_ms"`
	Min    string `json:"min"`
	Max    string `json:"max"`
}

// generatorFor resolves the :type parameter, writing a 404 when unknown.
func (h *Handler) generatorFor(c *gin.Context) (generator.Generator, bool) {
	g, err := h.registry.Get(generator.Type(c.Param("type")))
	if err != nil {
		response.NotFound(c, err.Error())
		return nil, false
	}
	return g, true
}

// ListTypes lists the registered id types.
func (h *Handler) ListTypes(c *gin.Context) {
	response.Success(c, gin.H{"types": h.registry.Types()})
}

// Generate returns one id.
func (h *Handler) Generate(c *gin.Context) {
	g, ok := h.generatorFor(c)
	if !ok {
		return
	}

	id, err := g.Generate()
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldIDType, c.Param("type")).Msg("failed to generate id")
		response.FromError(c, err)
		return
	}

	response.Success(c, idResponse{Type: c.Param("type"), ID: id})
}

// GenerateBatch returns ?count= ids.
func (h *Handler) GenerateBatch(c *gin.Context) {
	g, ok := h.generatorFor(c)
	if !ok {
		return
	}

	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count < 1 || count > h.maxBatch {
		response.BadRequest(c, "count must be an integer between 1 and "+strconv.Itoa(h.maxBatch))
		return
	}

	ids, err := g.GenerateBatch(count)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldIDType, c.Param("type")).Int(log.FieldCount, count).Msg("failed to generate batch")
		response.FromError(c, err)
		return
	}

	response.Success(c, batchResponse{Type: c.Param("type"), IDs: ids})
}

// Validate reports whether :id is a well-formed id of :type.
func (h *Handler) Validate(c *gin.Context) {
	g, ok := h.generatorFor(c)
	if !ok {
		return
	}

	valid, reason := g.Validate(c.Param("id"))
	response.Success(c, validateResponse{Valid: valid, Reason: reason})
}

// Parse splits :id into its fields.
func (h *Handler) Parse(c *gin.Context) {
	g, ok := h.generatorFor(c)
	if !ok {
		return
	}

	result, err := g.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidEncoding, err.Error())
		return
	}

	response.Success(c, result)
}

// ULIDRange returns the smallest and largest ULIDs for a time range, for
// range scans over stored ULIDs. from and to accept Unix milliseconds or
// RFC 3339 times.
func (h *Handler) ULIDRange(c *gin.Context) {
	from, err := parseInstant(c.Query("from"))
	if err != nil {
		response.BadRequest(c, "from: "+err.Error())
		return
	}
	to, err := parseInstant(c.DefaultQuery("to", c.Query("from")))
	if err != nil {
		response.BadRequest(c, "to: "+err.Error())
		return
	}
	if from > to {
		response.BadRequest(c, "from must not be after to")
		return
	}

	lo, err := ulid.MinFor(from)
	if err != nil {
		response.FromError(c, err)
		return
	}
	hi, err := ulid.MaxFor(to)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, rangeResponse{FromMs: from, ToMs: to, Min: lo.String(), Max: hi.String()})
}

var errMissingInstant = errors.New("missing time")

func parseInstant(s string) (uint64, error) {
	if s == "" {
		return 0, errMissingInstant
	}
	if ms, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, errors.New("expected unix milliseconds or RFC 3339 time")
	}
	if t.UnixMilli() < 0 {
		return 0, errors.New("time is before 1970")
	}
	return uint64(t.UnixMilli()), nil
}
