// Package checkout runs the order placement sequence: create order, create
// payment, process payment, clear cart. The chain is linear and
// non-resumable; a failure aborts it with no compensating rollback, leaving
// any already-created order or payment pending server-side. Reconciling
// those is a backend responsibility.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopie/shopie-cli/internal/api"
	"github.com/shopie/shopie-cli/internal/domain/order"
	"github.com/shopie/shopie-cli/internal/metrics"
)

// Requester performs authenticated requests against the backend.
// Satisfied by *session.Manager.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...api.RequestOption) error
}

// Cart is the slice of the cart synchronizer the orchestrator needs.
type Cart interface {
	Total() float64
	ItemCount() int
	Clear(ctx context.Context) error
}

// ErrEmptyCart rejects a checkout before any network call is made.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// Method is a payment method tag accepted by the backend.
type Method string

const (
	MethodStripe   Method = "Stripe"
	MethodPayPal   Method = "PayPal"
	MethodApplePay Method = "Apple Pay"
)

// Methods lists the accepted payment methods.
func Methods() []Method {
	return []Method{MethodStripe, MethodPayPal, MethodApplePay}
}

// ParseMethod validates a payment method tag.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q (accepted: %v)", s, Methods())
}

// paymentRequest is the POST /payments body.
type paymentRequest struct {
	OrderID int64   `json:"orderId"`
	Amount  float64 `json:"montant"`
	Method  Method  `json:"methode"`
}

// payment is the backend's payment resource.
type payment struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"montant"`
	Method string  `json:"methode"`
	Status string  `json:"statut"`
}

// Receipt summarizes a completed checkout.
type Receipt struct {
	OrderID   int64
	PaymentID int64
	Amount    float64
	Method    Method
}

// Orchestrator runs the checkout sequence.
type Orchestrator struct {
	session Requester
	cart    Cart
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewOrchestrator creates a checkout orchestrator.
func NewOrchestrator(session Requester, cart Cart, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		session: session,
		cart:    cart,
		logger:  logger,
		metrics: m,
	}
}

// Checkout places an order for the current cart contents and pays for it
// with the given method. Steps run strictly in sequence, each waiting for
// the previous one:
//
//  1. POST /orders (no body) creates the order from the server-side cart.
//  2. POST /payments creates a payment for the order and the cart total.
//  3. POST /payments/{id}/process triggers the (simulated) processing.
//  4. The cart is cleared.
//
// Any failure at steps 1-3 aborts the sequence and returns the server or
// transport error; the cart is left untouched. The processing response's
// status is logged but not validated before the cart clear, matching the
// backend's demo semantics. A failed cart clear after a successful payment
// is logged and does not fail the checkout.
func (o *Orchestrator) Checkout(ctx context.Context, method Method) (*Receipt, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		o.metrics.RecordCheckout("rejected")
		return nil, err
	}
	if o.cart.ItemCount() == 0 {
		o.metrics.RecordCheckout("rejected")
		return nil, ErrEmptyCart
	}

	amount := o.cart.Total()

	var ord order.Order
	if err := o.session.Do(ctx, http.MethodPost, "/orders", nil, &ord); err != nil {
		o.metrics.RecordCheckout("error")
		return nil, err
	}
	if ord.ID == 0 {
		o.metrics.RecordCheckout("error")
		return nil, &api.MalformedResponseError{What: "order identifier"}
	}
	o.logger.Info("order created", "order_id", ord.ID, "amount", amount)

	var pay payment
	err := o.session.Do(ctx, http.MethodPost, "/payments", paymentRequest{
		OrderID: ord.ID,
		Amount:  amount,
		Method:  method,
	}, &pay)
	if err != nil {
		o.metrics.RecordCheckout("error")
		return nil, err
	}
	if pay.ID == 0 {
		o.metrics.RecordCheckout("error")
		return nil, &api.MalformedResponseError{What: "payment identifier"}
	}
	o.logger.Info("payment created", "payment_id", pay.ID, "order_id", ord.ID)

	var processed payment
	processPath := fmt.Sprintf("/payments/%d/process", pay.ID)
	if err := o.session.Do(ctx, http.MethodPost, processPath, nil, &processed); err != nil {
		o.metrics.RecordCheckout("error")
		return nil, err
	}
	if processed.Status != "" && processed.Status != "PAID" {
		o.logger.Warn("payment processing did not report PAID",
			"payment_id", pay.ID, "status", processed.Status)
	}

	if err := o.cart.Clear(ctx); err != nil {
		o.logger.Warn("cart clear after checkout failed", "error", err)
	}

	o.metrics.RecordCheckout("ok")
	o.logger.Info("checkout complete", "order_id", ord.ID, "payment_id", pay.ID)
	return &Receipt{
		OrderID:   ord.ID,
		PaymentID: pay.ID,
		Amount:    amount,
		Method:    method,
	}, nil
}
