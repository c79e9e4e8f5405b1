// Package form owns the order creation draft: fixed-order validation, the
// submit-and-reset flow and the live total preview. The preview is display
// only; the server computes its own total.
package form

import (
	"context"
	"strings"
	"sync"
	"time"

	"orderdash/internal/model"
)

// Validation messages, one per rule, first failing rule wins.
const (
	MsgCustomerNameRequired = "Please enter customer name"
	MsgProductNameRequired  = "Please enter product name"
	MsgQuantityInvalid      = "Quantity must be greater than 0"
	MsgUnitPriceInvalid     = "Unit price must be greater than 0"

	MsgCreated      = "Order created successfully!"
	MsgCreateFailed = "Failed to create order, please try again"
)

// successMessageTTL is how long the success banner stays up.
const successMessageTTL = 3 * time.Second

// Draft is the in-progress, unsubmitted order.
type Draft struct {
	CustomerName string
	ProductName  string
	Quantity     int
	UnitPrice    float64
}

// DefaultDraft is the state the form starts from and resets to.
func DefaultDraft() Draft {
	return Draft{Quantity: 1, UnitPrice: 0}
}

// Validate checks the draft rules in field order and returns the message of
// the first violated one, or "" if the draft is submittable.
func Validate(d Draft) string {
	if strings.TrimSpace(d.CustomerName) == "" {
		return MsgCustomerNameRequired
	}
	if strings.TrimSpace(d.ProductName) == "" {
		return MsgProductNameRequired
	}
	if d.Quantity <= 0 {
		return MsgQuantityInvalid
	}
	if d.UnitPrice <= 0 {
		return MsgUnitPriceInvalid
	}
	return ""
}

// Creator is the single gateway operation the form needs.
type Creator interface {
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)
}

type Form struct {
	creator   Creator
	onCreated func() // parent notification, fired after a successful create

	mu         sync.Mutex
	draft      Draft
	busy       bool
	errMsg     string
	successMsg string
	clearTimer *time.Timer
}

func New(creator Creator, onCreated func()) *Form {
	return &Form{
		creator:   creator,
		onCreated: onCreated,
		draft:     DefaultDraft(),
	}
}

func (f *Form) SetDraft(d Draft) {
	f.mu.Lock()
	f.draft = d
	f.mu.Unlock()
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// PreviewTotal is the live quantity x price preview. Never sent to the
// server.
func (f *Form) PreviewTotal() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return float64(f.draft.Quantity) * f.draft.UnitPrice
}

func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Messages returns the current error and success banners.
func (f *Form) Messages() (errMsg, successMsg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg, f.successMsg
}

// Submit validates the current draft and, if it passes, creates the order.
// On success the draft resets to defaults, the success banner goes up for
// three seconds and the parent is notified; on failure the draft stays put
// for correction. The busy flag clears on every path.
func (f *Form) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return
	}
	f.busy = true
	f.errMsg = ""
	f.successMsg = ""
	if f.clearTimer != nil {
		f.clearTimer.Stop()
		f.clearTimer = nil
	}
	draft := f.draft
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	if msg := Validate(draft); msg != "" {
		f.mu.Lock()
		f.errMsg = msg
		f.mu.Unlock()
		return
	}

	req := model.CreateOrderRequest{
		CustomerName: draft.CustomerName,
		ProductName:  draft.ProductName,
		Quantity:     draft.Quantity,
		UnitPrice:    draft.UnitPrice,
	}
	if _, err := f.creator.CreateOrder(ctx, req); err != nil {
		f.mu.Lock()
		f.errMsg = MsgCreateFailed
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.successMsg = MsgCreated
	f.draft = DefaultDraft()
	f.clearTimer = time.AfterFunc(successMessageTTL, f.clearSuccess)
	f.mu.Unlock()

	if f.onCreated != nil {
		f.onCreated()
	}
}

func (f *Form) clearSuccess() {
	f.mu.Lock()
	f.successMsg = ""
	f.clearTimer = nil
	f.mu.Unlock()
}
