package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
)

// FakeGateway keeps orders in memory and signs payments with its own secret. Payments
// are marked paid when Pay is called.
type FakeGateway struct {
	mu     sync.Mutex
	secret string
	seq    int
	orders map[string]Order
	Err    error
}

func NewFakeGateway(secret string) *FakeGateway {
	return &FakeGateway{secret: secret, orders: map[string]Order{}}
}

func (f *FakeGateway) KeyID() string {
	return "rzp_test_fake"
}

func (f *FakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(f.secret, orderID, paymentID, signature)
}

func (f *FakeGateway) CreateOrder(_ context.Context, param CreateOrderParams) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return Order{}, f.Err
	}
	f.seq++
	order := Order{
		ID:        fmt.Sprintf("order_fake%06d", f.seq),
		Entity:    "order",
		Amount:    param.Amount,
		AmountDue: param.Amount,
		Currency:  param.Currency,
		Receipt:   param.Receipt,
		Status:    "created",
		CreatedAt: time.Now().Unix(),
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *FakeGateway) FetchOrder(_ context.Context, orderID string) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return Order{}, f.Err
	}
	order, ok := f.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("failed fetching order id=%s with error=%w", orderID, inErrors.ErrPaymentInvalid)
	}
	return order, nil
}

// Pay marks orderID paid and returns a payment id with its signature.
func (f *FakeGateway) Pay(orderID string) (paymentID string, signature string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := f.orders[orderID]
	order.AmountPaid, order.AmountDue, order.Status = order.Amount, 0, "paid"
	order.Attempts++
	f.orders[orderID] = order
	f.seq++
	paymentID = fmt.Sprintf("pay_fake%06d", f.seq)
	return paymentID, Sign(f.secret, orderID, paymentID)
}
