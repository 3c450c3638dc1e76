// middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailhq/console/db"
	console_errors "github.com/retailhq/console/errors"
	logger "github.com/retailhq/console/logging"
	"github.com/retailhq/console/util"
)

// RateLimiter throttles inspector clients by IP through the shared Redis
// sliding window. A limiter failure rejects the request; the inspector
// exposes session state, so failing open is not an option.
func RateLimiter(limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		allowed, err := db.RateLimit(c, key, limit, per)
		if err != nil {
			util.RespondWithError(c, http.StatusInternalServerError, "Rate limiting failed", err)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.Header("Retry-After", strconv.Itoa(int(per.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": console_errors.ErrRateLimitExceeded.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
