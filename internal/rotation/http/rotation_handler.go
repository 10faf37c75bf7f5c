// Package http provides HTTP handlers for rotation scheduling operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keywell/vault/internal/httputil"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	"github.com/keywell/vault/internal/rotation/http/dto"
	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
	customValidation "github.com/keywell/vault/internal/validation"
)

// defaultUpcomingDays is the notification horizon when the request does not
// specify one.
const defaultUpcomingDays = 7

// RotationHandler handles HTTP requests for rotation scheduling.
type RotationHandler struct {
	schedulerUseCase rotationUseCase.SchedulerUseCase
	logger           *slog.Logger
}

// NewRotationHandler creates a new rotation handler with required dependencies.
func NewRotationHandler(
	useCase rotationUseCase.SchedulerUseCase,
	logger *slog.Logger,
) *RotationHandler {
	return &RotationHandler{
		schedulerUseCase: useCase,
		logger:           logger,
	}
}

// Register attaches the rotation routes to the authenticated API group.
func (h *RotationHandler) Register(v1 *gin.RouterGroup) {
	v1.POST("/rotation/schedules", h.ScheduleHandler)
	v1.DELETE("/rotation/schedules/:id", h.CancelHandler)
	v1.GET("/rotation/upcoming", h.UpcomingHandler)
	v1.POST("/rotation/run", h.RunHandler)
	v1.POST("/rotation/emergency", h.EmergencyHandler)
	v1.GET("/rotation/metrics", h.MetricsHandler)
}

// ScheduleHandler creates a rotation schedule for a secret.
// POST /v1/rotation/schedules
func (h *RotationHandler) ScheduleHandler(c *gin.Context) {
	var req dto.ScheduleRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secretID, err := uuid.Parse(req.SecretID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid secret_id: %w", err), h.logger)
		return
	}

	schedule, err := h.schedulerUseCase.ScheduleRotation(
		c.Request.Context(),
		secretID,
		req.ScheduledAt,
		rotationDomain.RotationType(req.RotationType),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapScheduleToResponse(schedule))
}

// CancelHandler withdraws an open schedule.
// DELETE /v1/rotation/schedules/:id
// Returns 204 No Content.
func (h *RotationHandler) CancelHandler(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid schedule id: %w", err), h.logger)
		return
	}

	if err := h.schedulerUseCase.CancelScheduledRotation(c.Request.Context(), scheduleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// UpcomingHandler returns open schedules due within the horizon.
// GET /v1/rotation/upcoming?days=7
func (h *RotationHandler) UpcomingHandler(c *gin.Context) {
	days := defaultUpcomingDays
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid days parameter: must be a positive integer"),
				h.logger,
			)
			return
		}
		days = parsed
	}

	schedules, err := h.schedulerUseCase.NotifyUpcomingRotations(c.Request.Context(), days)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSchedulesToListResponse(schedules))
}

// RunHandler processes every due schedule immediately.
// POST /v1/rotation/run
func (h *RotationHandler) RunHandler(c *gin.Context) {
	outcome, err := h.schedulerUseCase.RotateAllDueSecrets(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOutcomeToResponse(outcome))
}

// EmergencyHandler rotates every active secret matching the pattern.
// POST /v1/rotation/emergency
func (h *RotationHandler) EmergencyHandler(c *gin.Context) {
	var req dto.EmergencyRotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	outcome, err := h.schedulerUseCase.EmergencyRotateAll(c.Request.Context(), req.Pattern)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOutcomeToResponse(outcome))
}

// MetricsHandler aggregates rotation outcomes over the trailing 30 days.
// GET /v1/rotation/metrics
func (h *RotationHandler) MetricsHandler(c *gin.Context) {
	metrics, err := h.schedulerUseCase.GetRotationMetrics(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationMetricsToResponse(metrics))
}
