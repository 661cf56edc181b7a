package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/token"
	"inventario/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	actorKey   = "actor"
	cookieName = "access_token"
)

// SetTokenCookie stores the access token as an HttpOnly cookie.
// Cross-origin deployments (secure=true) need SameSite=None.
func SetTokenCookie(c *gin.Context, accessToken string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(cookieName, accessToken, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie
func ClearTokenCookie(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
}

// Authenticate validates the JWT and stores the caller as a model.Actor.
// The Authorization header wins over the cookie.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			scheme, value, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || value == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorWithCode(http.StatusUnauthorized, "unauthorized", "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = value
		} else if cookie, err := c.Cookie(cookieName); err == nil {
			tokenString = cookie
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorWithCode(http.StatusUnauthorized, "unauthorized", "Authorization is missing"))
			return
		}

		actor, err := token.Parse(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorWithCode(http.StatusUnauthorized, "unauthorized", "Invalid or expired token"))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// CurrentActor returns the actor stored by Authenticate.
func CurrentActor(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}

// UserLookup loads the stored account behind a token subject.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// CurrentRole replaces the role carried by the token with the stored one,
// so a role change applies to tokens issued before it.
// Must run between Authenticate and Authorize.
func CurrentRole(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorWithCode(http.StatusUnauthorized, "unauthorized", "Authorization is missing"))
			return
		}
		user, err := users.GetByID(c.Request.Context(), actor.ID)
		if errors.Is(err, errs.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorWithCode(http.StatusUnauthorized, "unauthorized", "Account no longer exists"))
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorWithCode(http.StatusInternalServerError, "internal", "internal server error"))
			return
		}
		c.Set(actorKey, user.Actor())
		c.Next()
	}
}

// Authorize checks the matched route against the RBAC route table.
// Must run after Authenticate; routes missing from the table are denied.
func Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorWithCode(http.StatusUnauthorized, "unauthorized", "Authorization is missing"))
			return
		}
		if !rbac.AllowedRoute(actor.Role, c.Request.Method, c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorWithCode(http.StatusForbidden, "forbidden", "Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}
