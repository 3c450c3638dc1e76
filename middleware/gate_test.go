// middleware/gate_test.go
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/retailhq/console/access"
	logger "github.com/retailhq/console/logging"
	"github.com/retailhq/console/middleware"
	"github.com/retailhq/console/model"
)

type staticProvider struct {
	snap access.Snapshot
}

func (s staticProvider) Snapshot(ctx context.Context) access.Snapshot {
	return s.snap
}

func guardedRouter(snap access.Snapshot, contract access.Contract) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	gate := access.NewGate(staticProvider{snap: snap})
	r.GET("/guarded", middleware.Gate(gate, contract), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestGateMiddleware(t *testing.T) {
	logger.InitLogger("")
	defer logger.Sync()

	ownerOnly := access.Contract{AllowedRoles: []model.Role{model.RoleOwner}}

	t.Run("GrantedPassesThrough", func(t *testing.T) {
		snap := access.Snapshot{
			Authenticated: true,
			User:          model.User{Role: model.RoleOwner},
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/guarded", nil)
		guardedRouter(snap, ownerOnly).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("StaffGetsForbidden", func(t *testing.T) {
		snap := access.Snapshot{
			Authenticated: true,
			User:          model.User{Role: model.RoleStaff},
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/guarded", nil)
		guardedRouter(snap, ownerOnly).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("UnauthenticatedGetsUnauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/guarded", nil)
		guardedRouter(access.Snapshot{}, ownerOnly).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("LoadingGetsServiceUnavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/guarded", nil)
		guardedRouter(access.Snapshot{Loading: true}, ownerOnly).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
