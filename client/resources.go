// client/resources.go

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/retailhq/console/model"
)

// Read TTLs differ by endpoint: store config barely moves, live orders do.
const (
	catalogTTL = 5 * time.Minute
	orderTTL   = 30 * time.Second
	configTTL  = 10 * time.Minute
)

// ListParams are the common pagination inputs for collection reads.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func decode[T any](env *model.APIResponse) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response data: %w", err)
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context, params ListParams) ([]model.Category, error) {
	env, err := c.Get(ctx, "/categories", RequestOptions{Query: params.values(), CacheTTL: catalogTTL})
	if err != nil {
		return nil, err
	}
	return decode[[]model.Category](env)
}

func (c *Client) CreateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	env, err := c.Post(ctx, "/categories", RequestOptions{Body: category})
	if err != nil {
		return model.Category{}, err
	}
	return decode[model.Category](env)
}

func (c *Client) UpdateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	env, err := c.Put(ctx, "/categories/"+category.ID, RequestOptions{Body: category})
	if err != nil {
		return model.Category{}, err
	}
	return decode[model.Category](env)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/categories/"+id, RequestOptions{})
	return err
}

func (c *Client) ListProducts(ctx context.Context, params ListParams) ([]model.Product, *model.Pagination, error) {
	env, err := c.Get(ctx, "/products", RequestOptions{Query: params.values(), CacheTTL: catalogTTL})
	if err != nil {
		return nil, nil, err
	}
	products, err := decode[[]model.Product](env)
	if err != nil {
		return nil, nil, err
	}
	return products, env.Pagination, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (model.Product, error) {
	env, err := c.Get(ctx, "/products/"+id, RequestOptions{CacheTTL: catalogTTL})
	if err != nil {
		return model.Product{}, err
	}
	return decode[model.Product](env)
}

func (c *Client) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	env, err := c.Post(ctx, "/products", RequestOptions{Body: product})
	if err != nil {
		return model.Product{}, err
	}
	return decode[model.Product](env)
}

func (c *Client) UpdateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	env, err := c.Put(ctx, "/products/"+product.ID, RequestOptions{Body: product})
	if err != nil {
		return model.Product{}, err
	}
	return decode[model.Product](env)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/products/"+id, RequestOptions{})
	return err
}

func (c *Client) ListOrders(ctx context.Context, params ListParams) ([]model.Order, *model.Pagination, error) {
	env, err := c.Get(ctx, "/orders", RequestOptions{Query: params.values(), CacheTTL: orderTTL})
	if err != nil {
		return nil, nil, err
	}
	orders, err := decode[[]model.Order](env)
	if err != nil {
		return nil, nil, err
	}
	return orders, env.Pagination, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (model.Order, error) {
	env, err := c.Get(ctx, "/orders/"+id, RequestOptions{CacheTTL: orderTTL})
	if err != nil {
		return model.Order{}, err
	}
	return decode[model.Order](env)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (model.Order, error) {
	env, err := c.Put(ctx, "/orders/"+id+"/status", RequestOptions{Body: map[string]string{"status": status}})
	if err != nil {
		return model.Order{}, err
	}
	return decode[model.Order](env)
}

func (c *Client) ListCoupons(ctx context.Context, params ListParams) ([]model.Coupon, error) {
	env, err := c.Get(ctx, "/coupons", RequestOptions{Query: params.values(), CacheTTL: catalogTTL})
	if err != nil {
		return nil, err
	}
	return decode[[]model.Coupon](env)
}

func (c *Client) CreateCoupon(ctx context.Context, coupon model.Coupon) (model.Coupon, error) {
	env, err := c.Post(ctx, "/coupons", RequestOptions{Body: coupon})
	if err != nil {
		return model.Coupon{}, err
	}
	return decode[model.Coupon](env)
}

func (c *Client) ListCustomers(ctx context.Context, params ListParams) ([]model.Customer, *model.Pagination, error) {
	env, err := c.Get(ctx, "/customers", RequestOptions{Query: params.values(), CacheTTL: catalogTTL})
	if err != nil {
		return nil, nil, err
	}
	customers, err := decode[[]model.Customer](env)
	if err != nil {
		return nil, nil, err
	}
	return customers, env.Pagination, nil
}

func (c *Client) ListUsers(ctx context.Context, params ListParams) ([]model.User, error) {
	env, err := c.Get(ctx, "/users", RequestOptions{Query: params.values(), CacheTTL: catalogTTL})
	if err != nil {
		return nil, err
	}
	return decode[[]model.User](env)
}

func (c *Client) ListNotifications(ctx context.Context, params ListParams) ([]model.Notification, error) {
	env, err := c.Get(ctx, "/notifications", RequestOptions{Query: params.values(), CacheTTL: orderTTL})
	if err != nil {
		return nil, err
	}
	return decode[[]model.Notification](env)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.Put(ctx, "/notifications/"+id+"/read", RequestOptions{})
	return err
}

func (c *Client) ListPaymentLogs(ctx context.Context, params ListParams) ([]model.PaymentLog, *model.Pagination, error) {
	env, err := c.Get(ctx, "/payment-logs", RequestOptions{Query: params.values(), CacheTTL: orderTTL})
	if err != nil {
		return nil, nil, err
	}
	logs, err := decode[[]model.PaymentLog](env)
	if err != nil {
		return nil, nil, err
	}
	return logs, env.Pagination, nil
}

// CurrentUser, StoreConfig: consumed by the session provider.

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	env, err := c.Get(ctx, "/me", RequestOptions{CacheTTL: configTTL})
	if err != nil {
		return model.User{}, err
	}
	return decode[model.User](env)
}

func (c *Client) StoreConfig(ctx context.Context) (model.StoreConfig, error) {
	env, err := c.Get(ctx, "/store/config", RequestOptions{CacheTTL: configTTL})
	if err != nil {
		return model.StoreConfig{}, err
	}
	return decode[model.StoreConfig](env)
}
