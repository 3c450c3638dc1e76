// controller/cache_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailhq/console/cache"
	console_errors "github.com/retailhq/console/errors"
	"github.com/retailhq/console/util"
)

type CacheController struct {
	responseCache cache.ResponseCache
}

func NewCacheController(responseCache cache.ResponseCache) *CacheController {
	return &CacheController{responseCache: responseCache}
}

// RegisterRoutes registers the API routes
func (cc *CacheController) RegisterRoutes(r *gin.RouterGroup) {
	cacheRoutes := r.Group("/cache")
	{
		cacheRoutes.GET("/stats", cc.Stats)
		cacheRoutes.POST("/sweep", cc.Sweep)
		cacheRoutes.DELETE("", cc.Clear)
	}
}

// Stats endpoint
func (cc *CacheController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"size": cc.responseCache.Size(c.Request.Context()),
	})
}

// Sweep endpoint: evicts every expired entry ahead of its next read.
func (cc *CacheController) Sweep(c *gin.Context) {
	evicted := cc.responseCache.ClearExpired(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"evicted": evicted})
}

// Clear endpoint
func (cc *CacheController) Clear(c *gin.Context) {
	if err := cc.responseCache.Clear(c.Request.Context()); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to clear cache", console_errors.ErrInternalServer)
		return
	}
	c.Status(http.StatusNoContent)
}
