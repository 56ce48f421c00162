// Package middleware holds the gin middleware shared by every storefront
// route: request ids, request logging, browser sessions and role gates.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

const (
	HeaderRequestID = "X-Request-ID"

	ContextKeyRequestID = "request_id"
	ContextKeySessionID = "session_id"
)

var logger = logging.New("middleware")

// RequestID reuses the caller's X-Request-ID or generates one, echoes it on
// the response and stores it on the request context for upstream calls.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(session.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logging.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(ContextKeyRequestID),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("Request failed", fields)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields)
		default:
			logger.Debug("Request served", fields)
		}
	}
}

// Session resolves the browser session from its cookie, creating and
// persisting a fresh anonymous identity when the cookie is missing or
// unknown. The identity is placed on the request context.
func Session(sessions repository.SessionRepository, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var id *session.Identity
		if sessionID, err := c.Cookie(cfg.CookieName); err == nil && sessionID != "" {
			id, err = sessions.Get(ctx, sessionID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Failed to load session", logging.Fields{
					"session_id": sessionID,
					"error":      err.Error(),
				})
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
				return
			}
		}

		if id == nil {
			id = session.New()
			if err := sessions.Create(ctx, id); err != nil {
				logger.Error("Failed to create session", logging.Fields{"error": err.Error()})
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
				return
			}
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id.SessionID, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)

		c.Set(ContextKeySessionID, id.SessionID)
		c.Request = c.Request.WithContext(session.WithIdentity(ctx, id))
		c.Next()
	}
}

// RequireRole aborts with 401 for anonymous sessions and 403 when the
// session token lacks role. The API authorizes again on its side.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := session.FromContext(c.Request.Context())
		if !id.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		if !id.HasRole(role) {
			logger.Warn("Role check failed", logging.Fields{
				"session_id": id.SessionID,
				"role":       role,
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
