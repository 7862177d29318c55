package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
)

// TokenParser verifies a bearer token and returns its user id.
type TokenParser interface {
	Parse(token string) (uint64, error)
}

// CallerResolver maps a user id to the caller used for access checks.
type CallerResolver interface {
	Resolve(ctx context.Context, userID uint64) (access.Caller, error)
}

// RequireAuth checks if the user is authenticated via session or, failing
// that, via an "Authorization: Bearer" token.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get(constants.ContextKeyUserID); userID != nil {
			// Store user ID in context for easy access in handlers
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok || tokens == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// ResolveCaller turns the authenticated user id into an access.Caller with
// its admin flag. A user id that no longer resolves is rejected.
func ResolveCaller(resolver CallerResolver, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		caller, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("failed to resolve caller")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !caller.Authenticated() {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyCaller, caller)
		c.Next()
	}
}

// GetCaller returns the caller stored by ResolveCaller, or the anonymous
// caller when there is none.
func GetCaller(c *gin.Context) access.Caller {
	value, exists := c.Get(constants.ContextKeyCaller)
	if !exists {
		return access.Anonymous()
	}
	caller, ok := value.(access.Caller)
	if !ok {
		return access.Anonymous()
	}
	return caller
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
