// controller/log_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailhq/console/calllog"
	console_errors "github.com/retailhq/console/errors"
	"github.com/retailhq/console/util"
	helper_util "github.com/retailhq/console/util/helper"
)

type LogController struct {
	callLog *calllog.Logger
}

func NewLogController(callLog *calllog.Logger) *LogController {
	return &LogController{callLog: callLog}
}

// RegisterRoutes registers the API routes
func (lc *LogController) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/logs")
	{
		logs.GET("", lc.ListLogs)
		logs.DELETE("", lc.ClearLogs)
		logs.GET("/config", lc.GetConfig)
		logs.PUT("/config", lc.UpdateConfig)
	}
}

// ListLogs endpoint: level, search and limit query params compose a filter
// over the retained entries.
func (lc *LogController) ListLogs(c *gin.Context) {
	filter := calllog.Filter{Search: c.Query("search")}

	if levelParam := c.Query("level"); levelParam != "" {
		level, err := calllog.ParseLevel(levelParam)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid log level", console_errors.ErrInvalidLogFilter)
			return
		}
		filter.Level = level
	}

	limit, err := helper_util.GetLimitParam(c, 0)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid limit", console_errors.ErrInvalidLogFilter)
		return
	}
	filter.Limit = limit

	entries := filter.Apply(lc.callLog.GetAll())
	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"count": len(entries),
	})
}

// ClearLogs endpoint
func (lc *LogController) ClearLogs(c *gin.Context) {
	lc.callLog.Clear()
	c.Status(http.StatusNoContent)
}

// GetConfig endpoint
func (lc *LogController) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, lc.callLog.GetConfig())
}

// UpdateConfig endpoint: the patch merges shallowly, leaving unspecified
// fields untouched.
func (lc *LogController) UpdateConfig(c *gin.Context) {
	var patch calllog.ConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid logger config", console_errors.ErrInvalidLogConfig)
		return
	}
	if patch.MinLevel != nil {
		if _, err := calllog.ParseLevel(string(*patch.MinLevel)); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid log level", console_errors.ErrInvalidLogConfig)
			return
		}
	}
	c.JSON(http.StatusOK, lc.callLog.Configure(patch))
}
