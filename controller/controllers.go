// controller/controllers.go
package controller

import (
	"github.com/retailhq/console/access"
	"github.com/retailhq/console/cache"
	"github.com/retailhq/console/calllog"
)

type Controllers struct {
	Log    *LogController
	Cache  *CacheController
	Access *AccessController
}

func InitializeControllers(callLog *calllog.Logger, responseCache cache.ResponseCache, gate *access.Gate, provider access.Provider) *Controllers {
	return &Controllers{
		Log:    NewLogController(callLog),
		Cache:  NewCacheController(responseCache),
		Access: NewAccessController(gate, provider),
	}
}
