package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"go.uber.org/zap"
)

const contextUserKey = "user"

// AuthRequired resolves the bearer token against the identity provider and
// stores the user on the request context. Every request pays one provider
// round trip; plan and usage are read fresh so quota decisions never work
// from a cached counter.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.identitySvc.CurrentUser(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// GenerationRateLimit throttles generation endpoints per user. Redis errors
// fail open: a broken limiter must not take generation down with it.
func (s *Server) GenerationRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		user := currentUser(c)
		result, err := s.limiter.AllowUser(c.Request.Context(), user.ID)
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !result.Allowed {
			s.obsMetrics.RecordRateLimitRejected()
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func currentUser(c *gin.Context) *identitydomain.User {
	return c.MustGet(contextUserKey).(*identitydomain.User)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
