// client/client_test.go
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retailhq/console/cache"
	"github.com/retailhq/console/calllog"
	console_errors "github.com/retailhq/console/errors"
	logger "github.com/retailhq/console/logging"
	"github.com/retailhq/console/model"
	"github.com/retailhq/console/util"
)

type refreshableToken struct {
	token     string
	refreshed atomic.Int32
}

func (r *refreshableToken) Token(ctx context.Context) (string, error) {
	return r.token, nil
}

func (r *refreshableToken) Refresh(ctx context.Context) (string, error) {
	r.refreshed.Add(1)
	r.token = "fresh-token"
	return r.token, nil
}

func envelope(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	assert.NoError(t, err)
	body, err := json.Marshal(model.APIResponse{Success: true, Data: raw})
	assert.NoError(t, err)
	return body
}

func newTestClient(serverURL string, tokens TokenSource, bus *util.EventBus) (*Client, *calllog.Logger, *cache.MemoryCache) {
	callLog := calllog.New(calllog.Config{Enabled: true, MinLevel: calllog.LevelDebug})
	memCache := cache.NewMemoryCache()
	c := New(serverURL, "store-1", "branch-1", tokens, memCache, callLog, bus)
	c.maxRetries = 0
	return c, callLog, memCache
}

func TestClientDo(t *testing.T) {
	logger.InitLogger("")
	defer logger.Sync()
	ctx := context.Background()

	t.Run("SendsAuthAndStoreHeaders", func(t *testing.T) {
		var gotAuth, gotStore, gotBranch string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotStore = r.Header.Get("X-Store-ID")
			gotBranch = r.Header.Get("X-Branch-ID")
			w.Write(envelope(t, []model.Category{}))
		}))
		defer srv.Close()

		c, _, _ := newTestClient(srv.URL, StaticToken("tok"), nil)
		_, err := c.ListCategories(ctx, ListParams{})
		assert.NoError(t, err)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Equal(t, "store-1", gotStore)
		assert.Equal(t, "branch-1", gotBranch)
	})

	t.Run("CachedGetSkipsNetwork", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write(envelope(t, []model.Product{{ID: "p1", Name: "Tea"}}))
		}))
		defer srv.Close()

		c, _, _ := newTestClient(srv.URL, StaticToken("tok"), nil)

		first, _, err := c.ListProducts(ctx, ListParams{})
		assert.NoError(t, err)
		second, _, err := c.ListProducts(ctx, ListParams{})
		assert.NoError(t, err)

		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, first, second)
	})

	t.Run("EveryCallIsLogged", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(envelope(t, model.Order{ID: "o1"}))
		}))
		defer srv.Close()

		c, callLog, _ := newTestClient(srv.URL, StaticToken("tok"), nil)
		_, err := c.GetOrder(ctx, "o1")
		assert.NoError(t, err)

		entries := callLog.GetAll()
		assert.Len(t, entries, 2)
		assert.Zero(t, entries[0].Status)
		assert.Equal(t, http.StatusOK, entries[1].Status)
		assert.Equal(t, calllog.LevelInfo, entries[1].Level)
		assert.Contains(t, entries[1].URL, "/orders/o1")
	})

	t.Run("TransportFailureIsLoggedAsError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		c, callLog, _ := newTestClient(srv.URL, StaticToken("tok"), nil)
		_, err := c.Get(ctx, "/orders", RequestOptions{})
		assert.ErrorIs(t, err, console_errors.ErrRequestFailed)

		entries := callLog.GetAll()
		assert.Len(t, entries, 2)
		assert.Equal(t, calllog.LevelError, entries[1].Level)
		assert.NotEmpty(t, entries[1].Error)
	})

	t.Run("UnauthorizedTriggersOneRefreshAndRetry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"token expired"}`))
				return
			}
			w.Write(envelope(t, model.User{ID: "u1"}))
		}))
		defer srv.Close()

		tokens := &refreshableToken{token: "stale-token"}
		c, _, _ := newTestClient(srv.URL, tokens, nil)

		user, err := c.CurrentUser(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, int32(1), tokens.refreshed.Load())
	})

	t.Run("ApiFailureEnvelopeSurfacesMessage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"success":false,"message":"coupon code already exists"}`))
		}))
		defer srv.Close()

		c, _, _ := newTestClient(srv.URL, StaticToken("tok"), nil)
		_, err := c.CreateCoupon(ctx, model.Coupon{Code: "SAVE10"})
		assert.ErrorIs(t, err, console_errors.ErrRequestFailed)
		assert.Contains(t, err.Error(), "coupon code already exists")
	})

	t.Run("MutationInvalidatesCachedReads", func(t *testing.T) {
		var listHits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				listHits.Add(1)
				w.Write(envelope(t, []model.Product{}))
				return
			}
			w.Write(envelope(t, model.Product{}))
		}))
		defer srv.Close()

		bus := util.NewEventBus()
		c, _, memCache := newTestClient(srv.URL, StaticToken("tok"), bus)
		bus.Subscribe("*", func(ctx context.Context, event util.Event) error {
			return memCache.ClearPrefix(ctx, InvalidationKeyPrefix(event.Resource))
		})

		_, _, err := c.ListProducts(ctx, ListParams{})
		assert.NoError(t, err)
		_, err = c.CreateProduct(ctx, model.Product{Name: "Coffee"})
		assert.NoError(t, err)
		_, _, err = c.ListProducts(ctx, ListParams{})
		assert.NoError(t, err)

		// the second list dials out again because the create evicted it
		assert.Equal(t, int32(2), listHits.Load())
	})

	t.Run("DifferentQueriesCacheSeparately", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write(envelope(t, []model.Product{}))
		}))
		defer srv.Close()

		c, _, _ := newTestClient(srv.URL, StaticToken("tok"), nil)
		_, _, err := c.ListProducts(ctx, ListParams{Page: 1})
		assert.NoError(t, err)
		_, _, err = c.ListProducts(ctx, ListParams{Page: 2})
		assert.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("SetUserIDIsSafeDuringRequests", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(envelope(t, []model.Order{}))
		}))
		defer srv.Close()

		c, callLog, _ := newTestClient(srv.URL, StaticToken("tok"), nil)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.SetUserID("user-42")
			}()
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := c.ListOrders(ctx, ListParams{})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		c.SetUserID("user-42")
		_, err := c.Get(ctx, "/orders/od-1", RequestOptions{})
		assert.NoError(t, err)

		entries := callLog.GetAll()
		assert.Equal(t, "user-42", entries[len(entries)-1].UserID)
	})
}

func TestResourceFor(t *testing.T) {
	assert.Equal(t, "products", resourceFor("/products/42"))
	assert.Equal(t, "orders", resourceFor("/orders"))
	assert.Equal(t, "payment-logs", resourceFor("/payment-logs"))
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	assert.NotEqual(t,
		cacheKeyFor(http.MethodGet, "/products?page=1"),
		cacheKeyFor(http.MethodGet, "/products?page=2"))
}

func TestStaticTokenNeverRefreshes(t *testing.T) {
	tok := StaticToken("abc")
	got, err := tok.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = tok.Refresh(context.Background())
	assert.ErrorIs(t, err, console_errors.ErrTokenExpired)
}

func TestListParamsValues(t *testing.T) {
	q := ListParams{Page: 2, PerPage: 50, Search: "tea"}.values()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "50", q.Get("per_page"))
	assert.Equal(t, "tea", q.Get("search"))

	assert.Empty(t, ListParams{}.values())
}
