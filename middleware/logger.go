// middleware/logger.go

package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailhq/console/calllog"
	logger "github.com/retailhq/console/logging"
)

// RequestLogger reports inspector traffic the same way the API client
// reports remote calls: each request lands in the shared call log with a
// status-derived level, plus a console line for live tailing. The log
// endpoints themselves are skipped so reading the log does not grow it.
func RequestLogger(callLog *calllog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestURL := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			requestURL += "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method

		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				if callLog != nil {
					callLog.LogError(method, requestURL, e, "", "")
				}
				logger.Error("Inspector request error",
					zap.String("method", method),
					zap.String("url", requestURL),
					zap.String("ip", c.ClientIP()),
					zap.String("error", e))
			}
			return
		}

		if callLog != nil && !isLogRoute(c.Request.URL.Path) {
			callLog.LogResponse(method, requestURL, status, nil, nil, latency, "", "")
		}

		logger.Info("Inspector request",
			zap.String("method", method),
			zap.String("url", requestURL),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()))
	}
}

func isLogRoute(path string) bool {
	return strings.Contains(path, "/logs")
}
