package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const accountIDKey = "account_id"

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.log.Info("http_request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// authMiddleware validates the bearer token and rejects revoked accounts,
// so erasure terminates live sessions on their next request.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		accountID, err := s.tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization token"})
			return
		}

		revoked, err := s.revoker.IsRevoked(c.Request.Context(), accountID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session check unavailable"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session terminated"})
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

func (s *Server) searchRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.searchLimits.Allow(accountID(c).String()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "search rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func accountID(c *gin.Context) uuid.UUID {
	id, _ := c.MustGet(accountIDKey).(uuid.UUID)
	return id
}
