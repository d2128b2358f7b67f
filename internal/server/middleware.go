package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/llm"
	"github.com/abhisek/selfassess/internal/storage"
)

// Identity headers set by the fronting authentication proxy.
const (
	HeaderIdentityID     = "X-Identity-Id"
	HeaderIdentityGroups = "X-Identity-Groups"
)

const identityKey = "selfassess_identity"

// identityMiddleware reads the caller identity from request headers.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := storage.Identity{ID: strings.TrimSpace(c.GetHeader(HeaderIdentityID))}
		for _, g := range strings.Split(c.GetHeader(HeaderIdentityGroups), ",") {
			if g = strings.TrimSpace(g); g != "" {
				id.Groups = append(id.Groups, g)
			}
		}
		c.Set(identityKey, id)
		if id.ID != "" {
			c.Request = c.Request.WithContext(llm.WithIdentity(c.Request.Context(), id.ID))
		}
		c.Next()
	}
}

// requireIdentity rejects anonymous callers.
func requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identityFrom(c).ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) storage.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(storage.Identity); ok {
			return id
		}
	}
	return storage.Identity{}
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("identity", identityFrom(c).ID),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
