package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Atomized-titan/qri/internal/domain"
	"github.com/Atomized-titan/qri/internal/service"
	"github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/qri"
	"github.com/Atomized-titan/qri/pkg/response"
)

// Handler handles HTTP requests for qri service.
type Handler struct {
	qriService service.QRIService
}

// NewHandler creates a new HTTP handler.
func NewHandler(qriService service.QRIService) *Handler {
	return &Handler{qriService: qriService}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		qris := api.Group("/qri")
		{
			qris.POST("", h.Generate)
			qris.POST("/batch", h.GenerateBatch)
			qris.POST("/parse", h.Parse)
			qris.POST("/validate", h.Validate)
			qris.POST("/verify", h.VerifySignature)
			qris.GET("/:qri/issued", h.Issued)
		}
	}
}

// Generate creates a new identifier. The request body is optional.
func (h *Handler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		l.Warn().Err(err).Msg("failed to bind generate request")
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.qriService.Generate(ctx, &req)
	if err != nil {
		h.fail(c, err, "failed to generate qri")
		return
	}

	response.Created(c, resp)
}

// GenerateBatch creates several identifiers.
func (h *Handler) GenerateBatch(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.GenerateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind batch request")
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.qriService.GenerateBatch(ctx, &req)
	if err != nil {
		h.fail(c, err, "failed to generate qri batch")
		return
	}

	response.Created(c, resp)
}

// Parse returns the fields of an identifier.
func (h *Handler) Parse(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.qriService.Parse(ctx, &req)
	if err != nil {
		h.fail(c, err, "failed to parse qri")
		return
	}

	response.Success(c, resp)
}

// Validate checks an identifier's integrity and, with a key, its signature.
func (h *Handler) Validate(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.qriService.Validate(ctx, &req)
	if err != nil {
		h.fail(c, err, "failed to validate qri")
		return
	}

	response.Success(c, resp)
}

// VerifySignature checks an identifier's signature against a key.
func (h *Handler) VerifySignature(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.qriService.VerifySignature(ctx, &req)
	if err != nil {
		h.fail(c, err, "failed to verify qri")
		return
	}

	response.Success(c, resp)
}

// Issued reports whether this service generated the identifier.
func (h *Handler) Issued(c *gin.Context) {
	ctx := c.Request.Context()

	rec, err := h.qriService.Issued(ctx, c.Param("qri"))
	if err != nil {
		h.fail(c, err, "failed to look up qri")
		return
	}

	response.Success(c, rec)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, qri.ErrInvalidFormat):
		response.InvalidFormat(c, err.Error())
	case errors.Is(err, qri.ErrPublicKeyRequired):
		response.Error(c, http.StatusBadRequest, response.CodePublicKeyRequired, "a key_id or public_key is required")
	case errors.Is(err, service.ErrBatchSize):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrKeyNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotIssued):
		response.NotFound(c, "qri was not issued by this service")
	case errors.Is(err, service.ErrSigningUnavailable):
		response.Unavailable(c, response.CodeSigningUnavailable, "signing is unavailable")
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
