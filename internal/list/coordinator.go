// Package list owns the order list's filter/pagination state and the fetch
// loop that keeps the displayed rows in sync with it. Every filter mutation
// or refresh signal enqueues a refetch request; a single consumer loop
// processes the latest one, issues the query and applies the transition.
// A monotonically increasing version stamp discards responses that raced
// with a later mutation, so the newest filter always wins.
package list

import (
	"context"
	"sync"

	"orderdash/internal/api"
	"orderdash/internal/model"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateFailure
)

// User-facing failure messages. Wording follows the dashboard copy.
const (
	MsgLoginExpired = "Login expired, please login again"
	MsgFetchFailed  = "Failed to fetch order list"
)

// Lister is the single gateway operation the coordinator needs.
type Lister interface {
	ListOrders(ctx context.Context, f model.Filter) (*model.OrdersPage, error)
}

type Coordinator struct {
	lister    Lister
	onExpired func() // session teardown hook, runs outside the lock
	onUpdate  func() // render notification, runs outside the lock

	mu         sync.Mutex
	filter     model.Filter
	state      State
	orders     []model.Order
	errMsg     string
	page       int
	totalPages int
	version    uint64 // bumped by every mutation; stale responses are dropped

	kick chan struct{} // coalescing refetch-request queue
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSessionExpiredHook installs the teardown invoked when a fetch fails
// with the session-invalid code.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Coordinator) { c.onExpired = fn }
}

// WithUpdateHook installs a callback fired after every state transition.
func WithUpdateHook(fn func()) Option {
	return func(c *Coordinator) { c.onUpdate = fn }
}

func New(lister Lister, opts ...Option) *Coordinator {
	c := &Coordinator{
		lister: lister,
		filter: model.DefaultFilter(),
		state:  StateIdle,
		page:   1,
		kick:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes refetch requests until ctx is cancelled. Requests are
// processed serially; ones that arrive mid-fetch coalesce into a single
// follow-up fetch under the then-current filter.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.kick:
			c.fetch(ctx)
		}
	}
}

// request enqueues a refetch. Non-blocking: an already pending request
// covers this one too, since the loop snapshots the filter at fetch time.
func (c *Coordinator) request() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// SetStatus changes the status filter and resets the page to 1.
func (c *Coordinator) SetStatus(status model.OrderStatus) {
	c.mu.Lock()
	c.filter.Status = status
	c.filter.Page = 1
	c.version++
	c.mu.Unlock()
	c.request()
}

// SetCustomerName changes the substring filter and resets the page to 1.
func (c *Coordinator) SetCustomerName(name string) {
	c.mu.Lock()
	c.filter.CustomerName = name
	c.filter.Page = 1
	c.version++
	c.mu.Unlock()
	c.request()
}

// SetPerPage changes the page size and resets the page to 1.
func (c *Coordinator) SetPerPage(perPage int) {
	if perPage < 1 {
		return
	}
	c.mu.Lock()
	c.filter.PerPage = perPage
	c.filter.Page = 1
	c.version++
	c.mu.Unlock()
	c.request()
}

// SetPage moves to the given page, leaving the rest of the filter alone.
func (c *Coordinator) SetPage(page int) {
	if page < 1 {
		return
	}
	c.mu.Lock()
	c.filter.Page = page
	c.version++
	c.mu.Unlock()
	c.request()
}

// Refresh forces a fetch under the current filter.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	c.version++
	c.mu.Unlock()
	c.request()
}

// Reset puts the coordinator back to its freshly mounted state — default
// filter, no rows, no error — and forces a fetch. The parent calls this
// after creating an order so the new row shows up without a manual
// pagination reset.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.filter = model.DefaultFilter()
	c.orders = nil
	c.errMsg = ""
	c.page = 1
	c.totalPages = 0
	c.state = StateIdle
	c.version++
	c.mu.Unlock()
	c.request()
}

// fetch issues one list query and applies the resulting transition. If the
// state was mutated while the request was in flight the response is stale
// and dropped; the pending kick will fetch again under the new filter.
func (c *Coordinator) fetch(ctx context.Context) {
	c.mu.Lock()
	v := c.version
	f := c.filter
	c.state = StateLoading
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	page, err := c.lister.ListOrders(ctx, f)

	c.mu.Lock()
	if c.version != v {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.orders = nil
		c.totalPages = 0
		c.page = 1
		c.state = StateFailure
		expired := api.IsSessionExpired(err)
		if expired {
			c.errMsg = MsgLoginExpired
		} else {
			c.errMsg = MsgFetchFailed
		}
		c.mu.Unlock()
		c.notify()
		if expired && c.onExpired != nil {
			c.onExpired()
		}
		return
	}

	c.orders = page.Orders
	c.totalPages = page.TotalPages
	c.page = page.Page
	if c.page < 1 {
		c.page = 1
	}
	c.state = StateSuccess
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) notify() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

// Snapshot is a point-in-time copy of the coordinator state for rendering.
type Snapshot struct {
	Filter     model.Filter
	State      State
	Orders     []model.Order
	ErrMsg     string
	Page       int
	TotalPages int
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	orders := make([]model.Order, len(c.orders))
	copy(orders, c.orders)
	return Snapshot{
		Filter:     c.filter,
		State:      c.state,
		Orders:     orders,
		ErrMsg:     c.errMsg,
		Page:       c.page,
		TotalPages: c.totalPages,
	}
}
