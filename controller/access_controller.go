// controller/access_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailhq/console/access"
	console_errors "github.com/retailhq/console/errors"
	"github.com/retailhq/console/util"
)

type AccessController struct {
	gate     *access.Gate
	provider access.Provider
}

func NewAccessController(gate *access.Gate, provider access.Provider) *AccessController {
	return &AccessController{gate: gate, provider: provider}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/access/check", ac.Check)
	r.GET("/session", ac.Session)
}

// Check endpoint: evaluates a gate contract against the live session.
// Denials come back as a normal 200 decision, never an error.
func (ac *AccessController) Check(c *gin.Context) {
	var contract access.Contract
	if err := c.ShouldBindJSON(&contract); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access contract", console_errors.ErrInvalidContract)
		return
	}
	c.JSON(http.StatusOK, ac.gate.Evaluate(c.Request.Context(), contract))
}

// Session endpoint: current session snapshot for the inspector.
func (ac *AccessController) Session(c *gin.Context) {
	snap := ac.provider.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"loading":       snap.Loading,
		"authenticated": snap.Authenticated,
		"user":          snap.User,
		"features":      snap.Features,
		"billing":       snap.Billing,
	})
}
