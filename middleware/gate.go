// middleware/gate.go

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailhq/console/access"
	logger "github.com/retailhq/console/logging"
)

// Gate guards inspector routes with an access contract. The gate never
// errors; every non-granted state maps onto an HTTP status here.
func Gate(gate *access.Gate, contract access.Contract) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := gate.Evaluate(c.Request.Context(), contract)
		switch decision.State {
		case access.StateGranted:
			c.Next()
		case access.StateLoading:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session still loading"})
			c.Abort()
		case access.StateUnauthenticated:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
		default:
			logger.Warn("Access denied",
				zap.String("state", string(decision.State)),
				zap.String("reason", decision.Reason),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{"error": decision.Reason})
			c.Abort()
		}
	}
}
