// Package gateway is the typed boundary to the remote order/auth API. Every
// operation is a pure request/response mapping over the api client: nothing
// is cached, retried or re-sorted, and errors propagate to the caller as-is.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"orderdash/internal/api"
	"orderdash/internal/model"
)

type Gateway struct {
	api *api.Client
}

func New(client *api.Client) *Gateway {
	return &Gateway{api: client}
}

func (g *Gateway) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	req := model.LoginRequest{Username: username, Password: password}
	var resp model.LoginResponse
	if err := g.api.Do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

func (g *Gateway) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	req := model.RegisterRequest{Username: username, Email: email, Password: password}
	var user model.User
	if err := g.api.Do(ctx, http.MethodPost, "/users/register", nil, req, &user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

func (g *Gateway) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	var order model.Order
	if err := g.api.Do(ctx, http.MethodPost, "/orders", nil, req, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// ListOrders translates the filter into query parameters. PerPage travels as
// page_size on the wire; empty or zero fields are omitted entirely.
func (g *Gateway) ListOrders(ctx context.Context, f model.Filter) (*model.OrdersPage, error) {
	query := url.Values{}
	if f.Page > 0 {
		query.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		query.Set("page_size", strconv.Itoa(f.PerPage))
	}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.CustomerName != "" {
		query.Set("customer_name", f.CustomerName)
	}

	var page model.OrdersPage
	if err := g.api.Do(ctx, http.MethodGet, "/orders", query, nil, &page); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &page, nil
}

func (g *Gateway) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := g.api.Do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &order); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func (g *Gateway) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	req := struct {
		Status model.OrderStatus `json:"status"`
	}{Status: status}

	var order model.Order
	if err := g.api.Do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/status", id), nil, req, &order); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &order, nil
}

func (g *Gateway) DeleteOrder(ctx context.Context, id int64) error {
	if err := g.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
