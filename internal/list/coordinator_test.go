package list

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderdash/internal/api"
	"orderdash/internal/model"
)

type fakeLister struct {
	fn    func(f model.Filter) (*model.OrdersPage, error)
	calls []model.Filter
}

func (l *fakeLister) ListOrders(_ context.Context, f model.Filter) (*model.OrdersPage, error) {
	l.calls = append(l.calls, f)
	return l.fn(f)
}

func pageOf(orders []model.Order, f model.Filter, totalPages int) *model.OrdersPage {
	return &model.OrdersPage{
		Orders:     orders,
		Total:      len(orders),
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: totalPages,
	}
}

func TestFilterMutationsResetPage(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Coordinator)
		wantPage int
	}{
		{"status", func(c *Coordinator) { c.SetStatus(model.StatusPending) }, 1},
		{"customer", func(c *Coordinator) { c.SetCustomerName("ali") }, 1},
		{"perpage", func(c *Coordinator) { c.SetPerPage(20) }, 1},
		{"page keeps the rest", func(c *Coordinator) { c.SetPage(7) }, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeLister{fn: func(f model.Filter) (*model.OrdersPage, error) {
				return pageOf(nil, f, 0), nil
			}})
			c.SetPage(4)
			tt.mutate(c)
			if got := c.Snapshot().Filter.Page; got != tt.wantPage {
				t.Errorf("filter page = %d, want %d", got, tt.wantPage)
			}
		})
	}
}

func TestMutationsEnqueueRefetch(t *testing.T) {
	c := New(&fakeLister{fn: func(f model.Filter) (*model.OrdersPage, error) {
		return pageOf(nil, f, 0), nil
	}})
	c.SetStatus(model.StatusShipped)
	if len(c.kick) != 1 {
		t.Fatalf("pending requests = %d, want 1", len(c.kick))
	}
	// Further mutations coalesce into the already pending request.
	c.SetCustomerName("x")
	c.SetPage(2)
	if len(c.kick) != 1 {
		t.Fatalf("pending requests after coalescing = %d, want 1", len(c.kick))
	}
}

func TestFetchSuccess(t *testing.T) {
	orders := []model.Order{{ID: 1, CustomerName: "Alice"}, {ID: 2, CustomerName: "Bob"}}
	lister := &fakeLister{fn: func(f model.Filter) (*model.OrdersPage, error) {
		return pageOf(orders, f, 4), nil
	}}
	c := New(lister)
	c.SetPage(3)

	c.fetch(context.Background())

	snap := c.Snapshot()
	if snap.State != StateSuccess {
		t.Fatalf("state = %v, want StateSuccess", snap.State)
	}
	if len(snap.Orders) != 2 || snap.Page != 3 || snap.TotalPages != 4 {
		t.Errorf("got orders=%d page=%d totalPages=%d", len(snap.Orders), snap.Page, snap.TotalPages)
	}
	if snap.ErrMsg != "" {
		t.Errorf("error = %q, want empty", snap.ErrMsg)
	}
}

func TestFetchGenericFailure(t *testing.T) {
	lister := &fakeLister{fn: func(model.Filter) (*model.OrdersPage, error) {
		return nil, errors.New("connection refused")
	}}
	var expired bool
	c := New(lister, WithSessionExpiredHook(func() { expired = true }))
	c.SetPage(3)

	c.fetch(context.Background())

	snap := c.Snapshot()
	if snap.State != StateFailure {
		t.Fatalf("state = %v, want StateFailure", snap.State)
	}
	if len(snap.Orders) != 0 || snap.TotalPages != 0 || snap.Page != 1 {
		t.Errorf("failure must clear rows and reset page, got orders=%v totalPages=%d page=%d",
			snap.Orders, snap.TotalPages, snap.Page)
	}
	if snap.ErrMsg != MsgFetchFailed {
		t.Errorf("error = %q, want %q", snap.ErrMsg, MsgFetchFailed)
	}
	if expired {
		t.Error("generic failure must not tear down the session")
	}
}

func TestFetchSessionExpired(t *testing.T) {
	lister := &fakeLister{fn: func(model.Filter) (*model.OrdersPage, error) {
		return nil, &api.Error{StatusCode: 401, Code: api.CodeSessionExpired, Message: "invalid or expired token"}
	}}
	var expired bool
	c := New(lister, WithSessionExpiredHook(func() { expired = true }))

	c.fetch(context.Background())

	snap := c.Snapshot()
	if snap.ErrMsg != MsgLoginExpired {
		t.Errorf("error = %q, want %q", snap.ErrMsg, MsgLoginExpired)
	}
	if !expired {
		t.Error("session teardown hook not invoked on code 4011")
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	c := New(nil)
	c.lister = &fakeLister{fn: func(f model.Filter) (*model.OrdersPage, error) {
		// A mutation lands while this request is in flight.
		c.SetCustomerName("newer")
		return pageOf([]model.Order{{ID: 99}}, f, 9), nil
	}}

	c.fetch(context.Background())

	snap := c.Snapshot()
	if len(snap.Orders) != 0 || snap.TotalPages != 0 {
		t.Errorf("stale response applied: orders=%d totalPages=%d", len(snap.Orders), snap.TotalPages)
	}
	if snap.Filter.CustomerName != "newer" {
		t.Errorf("filter = %q, want %q", snap.Filter.CustomerName, "newer")
	}
}

func TestRunProcessesLatestFilter(t *testing.T) {
	done := make(chan model.Filter, 8)
	lister := &fakeLister{fn: func(f model.Filter) (*model.OrdersPage, error) {
		done <- f
		return pageOf(nil, f, 1), nil
	}}
	c := New(lister)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.SetCustomerName("alice")
	select {
	case f := <-done:
		if f.CustomerName != "alice" || f.Page != 1 {
			t.Errorf("fetched filter = %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never ran")
	}
}

func TestResetRestoresDefaultsAndRefetches(t *testing.T) {
	lister := &fakeLister{fn: func(f model.Filter) (*model.OrdersPage, error) {
		return pageOf([]model.Order{{ID: 1}}, f, 3), nil
	}}
	c := New(lister)
	c.SetStatus(model.StatusCancelled)
	c.SetCustomerName("ali")
	c.SetPerPage(50)
	c.SetPage(3)
	c.fetch(context.Background())

	// drain the pending request so Reset's enqueue is observable
	select {
	case <-c.kick:
	default:
	}

	c.Reset()

	snap := c.Snapshot()
	if snap.Filter != model.DefaultFilter() {
		t.Errorf("filter = %+v, want defaults", snap.Filter)
	}
	if snap.State != StateIdle || len(snap.Orders) != 0 || snap.ErrMsg != "" {
		t.Errorf("state not reset: %+v", snap)
	}
	if len(c.kick) != 1 {
		t.Errorf("pending requests = %d, want 1", len(c.kick))
	}
}
