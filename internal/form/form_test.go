package form

import (
	"context"
	"errors"
	"testing"

	"orderdash/internal/model"
)

type fakeCreator struct {
	req    model.CreateOrderRequest
	calls  int
	err    error
	result *model.Order
}

func (f *fakeCreator) CreateOrder(_ context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &model.Order{ID: 1}, nil
}

func TestValidateFirstFailingRuleWins(t *testing.T) {
	valid := Draft{CustomerName: "Alice", ProductName: "Widget", Quantity: 2, UnitPrice: 9.99}

	tests := []struct {
		name   string
		mutate func(*Draft)
		want   string
	}{
		{"valid", func(d *Draft) {}, ""},
		{"empty customer", func(d *Draft) { d.CustomerName = "" }, MsgCustomerNameRequired},
		{"blank customer", func(d *Draft) { d.CustomerName = "   " }, MsgCustomerNameRequired},
		{"empty product", func(d *Draft) { d.ProductName = "" }, MsgProductNameRequired},
		{"zero quantity", func(d *Draft) { d.Quantity = 0 }, MsgQuantityInvalid},
		{"negative quantity", func(d *Draft) { d.Quantity = -1 }, MsgQuantityInvalid},
		{"zero price", func(d *Draft) { d.UnitPrice = 0 }, MsgUnitPriceInvalid},
		{"negative price", func(d *Draft) { d.UnitPrice = -5 }, MsgUnitPriceInvalid},
		// Multiple violations report the first rule in field order.
		{"all empty", func(d *Draft) { *d = Draft{} }, MsgCustomerNameRequired},
		{"product and price bad", func(d *Draft) { d.ProductName = ""; d.UnitPrice = 0 }, MsgProductNameRequired},
		{"quantity and price bad", func(d *Draft) { d.Quantity = 0; d.UnitPrice = 0 }, MsgQuantityInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if got := Validate(d); got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubmitValidationFailureSkipsGateway(t *testing.T) {
	creator := &fakeCreator{}
	f := New(creator, nil)
	f.SetDraft(Draft{CustomerName: "", ProductName: "Widget", Quantity: 1, UnitPrice: 1})

	f.Submit(context.Background())

	if creator.calls != 0 {
		t.Fatalf("gateway called %d times, want 0", creator.calls)
	}
	errMsg, _ := f.Messages()
	if errMsg != MsgCustomerNameRequired {
		t.Errorf("error = %q, want %q", errMsg, MsgCustomerNameRequired)
	}
	if got := f.Draft(); got.ProductName != "Widget" {
		t.Errorf("draft should survive a failed submit, got %+v", got)
	}
	if f.Busy() {
		t.Error("busy flag not cleared after validation failure")
	}
}

func TestSubmitSuccess(t *testing.T) {
	creator := &fakeCreator{}
	var notified int
	f := New(creator, func() { notified++ })

	draft := Draft{CustomerName: "Alice", ProductName: "Widget", Quantity: 2, UnitPrice: 9.99}
	f.SetDraft(draft)

	if got := f.PreviewTotal(); got != 19.98 {
		t.Errorf("PreviewTotal() = %v, want 19.98", got)
	}

	f.Submit(context.Background())

	want := model.CreateOrderRequest{CustomerName: "Alice", ProductName: "Widget", Quantity: 2, UnitPrice: 9.99}
	if creator.req != want {
		t.Errorf("gateway got %+v, want %+v", creator.req, want)
	}
	if got := f.Draft(); got != DefaultDraft() {
		t.Errorf("draft after success = %+v, want defaults %+v", got, DefaultDraft())
	}
	errMsg, successMsg := f.Messages()
	if errMsg != "" {
		t.Errorf("error message = %q, want empty", errMsg)
	}
	if successMsg != MsgCreated {
		t.Errorf("success message = %q, want %q", successMsg, MsgCreated)
	}
	if notified != 1 {
		t.Errorf("onCreated fired %d times, want 1", notified)
	}
	if f.Busy() {
		t.Error("busy flag not cleared after success")
	}
}

func TestSubmitSuccessClearsPriorError(t *testing.T) {
	creator := &fakeCreator{}
	f := New(creator, nil)

	f.SetDraft(Draft{})
	f.Submit(context.Background())
	if errMsg, _ := f.Messages(); errMsg == "" {
		t.Fatal("expected a validation error first")
	}

	f.SetDraft(Draft{CustomerName: "Bob", ProductName: "Gadget", Quantity: 1, UnitPrice: 3})
	f.Submit(context.Background())

	errMsg, _ := f.Messages()
	if errMsg != "" {
		t.Errorf("prior error not cleared, got %q", errMsg)
	}
}

func TestSubmitGatewayFailureKeepsDraft(t *testing.T) {
	creator := &fakeCreator{err: errors.New("boom")}
	var notified int
	f := New(creator, func() { notified++ })

	draft := Draft{CustomerName: "Alice", ProductName: "Widget", Quantity: 2, UnitPrice: 9.99}
	f.SetDraft(draft)
	f.Submit(context.Background())

	if got := f.Draft(); got != draft {
		t.Errorf("draft after failure = %+v, want %+v", got, draft)
	}
	errMsg, successMsg := f.Messages()
	if errMsg != MsgCreateFailed {
		t.Errorf("error = %q, want %q", errMsg, MsgCreateFailed)
	}
	if successMsg != "" {
		t.Errorf("success message = %q, want empty", successMsg)
	}
	if notified != 0 {
		t.Errorf("onCreated fired %d times, want 0", notified)
	}
	if f.Busy() {
		t.Error("busy flag not cleared after failure")
	}
}

func TestDefaultDraft(t *testing.T) {
	want := Draft{CustomerName: "", ProductName: "", Quantity: 1, UnitPrice: 0}
	if got := DefaultDraft(); got != want {
		t.Errorf("DefaultDraft() = %+v, want %+v", got, want)
	}
}
