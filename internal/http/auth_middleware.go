package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	apperrors "github.com/keywell/vault/internal/errors"
	"github.com/keywell/vault/internal/httputil"
)

// actorKey is a context key type for storing the request actor.
type actorKey struct{}

// WithActor stores the request actor in the context.
func WithActor(ctx context.Context, actor accessDomain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor retrieves the request actor from the context.
// Returns (actor, true) if an actor is present, or (zero, false) otherwise.
func GetActor(ctx context.Context) (accessDomain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(accessDomain.Actor)
	return actor, ok
}

// AuthenticationMiddleware authenticates requests with the operator bearer token.
//
// The Authorization header must carry "Bearer <token>" (case-insensitive). The
// plain token is verified against the configured Argon2id hash. When no hash
// is configured the API fails closed and rejects every request.
//
// After authentication, the actor identity is read from the request headers:
//   - X-Actor-Id: user identifier
//   - X-Actor-Roles: comma-separated role list
//   - X-Actor-Service: calling service name
//
// The actor is stored in the request context for handlers to pass to the
// policy engine. Requests with no actor headers proceed with an anonymous
// actor, which only matches policies with empty allow lists.
func AuthenticationMiddleware(
	tokenHasher cryptoService.TokenHasher,
	apiTokenHash string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiTokenHash == "" {
			logger.Error("authentication failed: no api token hash configured")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" || !tokenHasher.CompareToken(plainToken, apiTokenHash) {
			logger.Debug("authentication failed: invalid bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		actor := actorFromHeaders(c)
		ctx := WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// actorFromHeaders builds the policy-engine actor from the X-Actor-* headers.
func actorFromHeaders(c *gin.Context) accessDomain.Actor {
	actor := accessDomain.Actor{
		UserID:  strings.TrimSpace(c.GetHeader("X-Actor-Id")),
		Service: strings.TrimSpace(c.GetHeader("X-Actor-Service")),
	}

	rolesHeader := c.GetHeader("X-Actor-Roles")
	if rolesHeader != "" {
		for _, role := range strings.Split(rolesHeader, ",") {
			if trimmed := strings.TrimSpace(role); trimmed != "" {
				actor.Roles = append(actor.Roles, trimmed)
			}
		}
	}

	return actor
}
