// Package http provides HTTP handlers for secret management operations.
package http

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	apphttp "github.com/keywell/vault/internal/http"
	"github.com/keywell/vault/internal/httputil"
	customValidation "github.com/keywell/vault/internal/validation"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
	"github.com/keywell/vault/internal/vault/http/dto"
	vaultUseCase "github.com/keywell/vault/internal/vault/usecase"
)

// SecretHandler handles HTTP requests for secret management operations.
type SecretHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	logger       *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(
	useCase vaultUseCase.VaultUseCase,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		vaultUseCase: useCase,
		logger:       logger,
	}
}

// Register attaches the secret routes to the authenticated API group.
func (h *SecretHandler) Register(v1 *gin.RouterGroup) {
	v1.POST("/secrets", h.CreateHandler)
	v1.GET("/secrets", h.ListHandler)
	v1.GET("/secrets/:name", h.GetHandler)
	v1.PUT("/secrets/:name", h.UpdateHandler)
	v1.POST("/secrets/:name/rotate", h.RotateHandler)
	v1.POST("/secrets/:name/revoke", h.RevokeHandler)
	v1.POST("/secrets/:name/rollback", h.RollbackHandler)
	v1.GET("/secrets/:name/versions", h.VersionsHandler)
}

// requestActor pulls the actor set by the authentication middleware.
func requestActor(c *gin.Context) accessDomain.Actor {
	actor, _ := apphttp.GetActor(c.Request.Context())
	return actor
}

// CreateHandler creates a new secret.
// POST /v1/secrets
// Returns 201 Created with secret metadata (never the plaintext value).
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}

	config := vaultUseCase.SecretConfig{
		Name:                 req.Name,
		Type:                 vaultDomain.SecretType(req.Type),
		Value:                value,
		RotationEnabled:      req.RotationEnabled,
		RotationIntervalDays: req.RotationIntervalDays,
		ExpiresAt:            req.ExpiresAt,
		Tags:                 req.Tags,
		Metadata:             req.Metadata,
	}

	secret, err := h.vaultUseCase.CreateSecret(c.Request.Context(), config, requestActor(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSecretToResponse(secret))
}

// GetHandler retrieves and decrypts a secret, optionally by version.
// GET /v1/secrets/:name?version=N
// Returns 200 OK with the base64 plaintext. SECURITY: plaintext is zeroed
// after the response is written.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	name := c.Param("name")

	var version uint
	if versionStr := c.Query("version"); versionStr != "" {
		parsed, err := strconv.ParseUint(versionStr, 10, 32)
		if err != nil || parsed == 0 {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid version parameter: must be a positive integer"),
				h.logger,
			)
			return
		}
		version = uint(parsed)
	}

	value, err := h.vaultUseCase.GetSecret(c.Request.Context(), name, requestActor(c), version)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(value.Plaintext)

	c.JSON(http.StatusOK, dto.MapSecretValueToResponse(value))
}

// UpdateHandler stores a new value as the next version of a secret.
// PUT /v1/secrets/:name
func (h *SecretHandler) UpdateHandler(c *gin.Context) {
	name := c.Param("name")

	var req dto.UpdateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}

	secret, err := h.vaultUseCase.UpdateSecret(c.Request.Context(), name, value, requestActor(c), req.Reason)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// RotateHandler generates and stores a fresh value for a secret.
// POST /v1/secrets/:name/rotate
func (h *SecretHandler) RotateHandler(c *gin.Context) {
	secret, err := h.vaultUseCase.RotateSecret(c.Request.Context(), c.Param("name"), requestActor(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// RevokeHandler permanently blocks reads of a secret.
// POST /v1/secrets/:name/revoke
// Returns 204 No Content.
func (h *SecretHandler) RevokeHandler(c *gin.Context) {
	if err := h.vaultUseCase.RevokeSecret(c.Request.Context(), c.Param("name"), requestActor(c)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RollbackHandler re-applies a historical version as a new forward version.
// POST /v1/secrets/:name/rollback
func (h *SecretHandler) RollbackHandler(c *gin.Context) {
	var req dto.RollbackSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, err := h.vaultUseCase.RollbackSecret(c.Request.Context(), c.Param("name"), req.Version, requestActor(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// ListHandler retrieves secret metadata with pagination support.
// GET /v1/secrets?offset=0&limit=50
func (h *SecretHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	secrets, err := h.vaultUseCase.ListSecrets(c.Request.Context(), requestActor(c), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretsToListResponse(secrets))
}

// VersionsHandler retrieves the version history of a secret without ciphertext.
// GET /v1/secrets/:name/versions
func (h *SecretHandler) VersionsHandler(c *gin.Context) {
	versions, err := h.vaultUseCase.GetSecretVersions(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVersionsToListResponse(versions))
}
