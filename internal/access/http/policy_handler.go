// Package http provides HTTP handlers for access-control administration and
// the audit log.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keywell/vault/internal/access/http/dto"
	accessUseCase "github.com/keywell/vault/internal/access/usecase"
	"github.com/keywell/vault/internal/httputil"
	customValidation "github.com/keywell/vault/internal/validation"
)

// defaultMetricsWindowDays is the trailing window for access metrics when the
// request does not specify one.
const defaultMetricsWindowDays = 30

// PolicyHandler handles HTTP requests for access policies and the audit log.
type PolicyHandler struct {
	accessUseCase accessUseCase.AccessUseCase
	logger        *slog.Logger
}

// NewPolicyHandler creates a new policy handler with required dependencies.
func NewPolicyHandler(
	useCase accessUseCase.AccessUseCase,
	logger *slog.Logger,
) *PolicyHandler {
	return &PolicyHandler{
		accessUseCase: useCase,
		logger:        logger,
	}
}

// Register attaches the access-control routes to the authenticated API group.
func (h *PolicyHandler) Register(v1 *gin.RouterGroup) {
	v1.POST("/policies", h.CreateHandler)
	v1.GET("/policies", h.ListHandler)
	v1.GET("/policies/:name", h.GetHandler)
	v1.PUT("/policies/:name", h.UpdateHandler)
	v1.DELETE("/policies/:name", h.DeleteHandler)
	v1.POST("/access/grant", h.GrantHandler)
	v1.POST("/access/revoke", h.RevokeHandler)
	v1.GET("/access-log", h.AccessLogHandler)
	v1.GET("/access-log/metrics", h.AccessMetricsHandler)
}

// CreateHandler stores a new access policy.
// POST /v1/policies
func (h *PolicyHandler) CreateHandler(c *gin.Context) {
	var req dto.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.accessUseCase.CreatePolicy(c.Request.Context(), req.ToConfig())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPolicyToResponse(policy))
}

// GetHandler retrieves a policy by name.
// GET /v1/policies/:name
func (h *PolicyHandler) GetHandler(c *gin.Context) {
	policy, err := h.accessUseCase.GetPolicy(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// UpdateHandler rewrites the named policy's rule fields.
// PUT /v1/policies/:name
func (h *PolicyHandler) UpdateHandler(c *gin.Context) {
	var req dto.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.accessUseCase.UpdatePolicy(c.Request.Context(), c.Param("name"), req.ToConfig())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// DeleteHandler removes the named policy.
// DELETE /v1/policies/:name
// Returns 204 No Content.
func (h *PolicyHandler) DeleteHandler(c *gin.Context) {
	if err := h.accessUseCase.DeletePolicy(c.Request.Context(), c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler returns all policies ordered by priority.
// GET /v1/policies
func (h *PolicyHandler) ListHandler(c *gin.Context) {
	policies, err := h.accessUseCase.ListPolicies(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPoliciesToListResponse(policies))
}

// GrantHandler creates a dedicated single-user policy.
// POST /v1/access/grant
func (h *PolicyHandler) GrantHandler(c *gin.Context) {
	var req dto.GrantAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.accessUseCase.GrantAccess(
		c.Request.Context(),
		req.UserID,
		req.SecretPattern,
		dto.MapOperations(req.Operations),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPolicyToResponse(policy))
}

// RevokeHandler deletes the dedicated policy created by a grant.
// POST /v1/access/revoke
// Returns 204 No Content.
func (h *PolicyHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.accessUseCase.RevokeAccess(c.Request.Context(), req.UserID, req.SecretPattern); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// AccessLogHandler returns audit entries, newest first.
// GET /v1/access-log?secret_name=&offset=0&limit=50
func (h *PolicyHandler) AccessLogHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.accessUseCase.GetAccessLog(c.Request.Context(), c.Query("secret_name"), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessLogToResponse(entries))
}

// AccessMetricsHandler aggregates access decisions over a trailing window.
// GET /v1/access-log/metrics?window_days=30
func (h *PolicyHandler) AccessMetricsHandler(c *gin.Context) {
	windowDays := defaultMetricsWindowDays
	if windowStr := c.Query("window_days"); windowStr != "" {
		parsed, err := strconv.Atoi(windowStr)
		if err != nil || parsed < 1 {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid window_days parameter: must be a positive integer"),
				h.logger,
			)
			return
		}
		windowDays = parsed
	}

	metrics, err := h.accessUseCase.GetAccessMetrics(
		c.Request.Context(),
		time.Duration(windowDays)*24*time.Hour,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessMetricsToResponse(metrics))
}
