// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailhq/console/access"
	"github.com/retailhq/console/calllog"
	"github.com/retailhq/console/controller"
	"github.com/retailhq/console/middleware"
	"github.com/retailhq/console/model"
)

func SetupRouter(
	controllers *controller.Controllers,
	gate *access.Gate,
	callLog *calllog.Logger,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(callLog))
	if rateLimitRequests > 0 {
		router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	}

	api := router.Group("/api/v1")

	// The inspector exposes request bodies and session state; staff and
	// delivery accounts have no business here.
	api.Use(middleware.Gate(gate, access.Contract{
		AllowedRoles: []model.Role{model.RoleOwner, model.RoleManager},
	}))

	controllers.Log.RegisterRoutes(api)
	controllers.Cache.RegisterRoutes(api)
	controllers.Access.RegisterRoutes(api)

	return router
}
