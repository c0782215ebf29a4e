package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartModel "github.com/Alturino/framedarchive/cart/pkg/model"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"

	CancelledByUser  = "user"
	CancelledByAdmin = "admin"

	AdminCancelWindow = 48 * time.Hour
	ReturnWindow      = 7 * 24 * time.Hour
)

var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a cart line as charged: the client basePrice is dropped and price holds
// the catalog price.
type OrderItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	PrintType string          `json:"printType"`
	Variant   string          `json:"variant"`
	Size      string          `json:"size"`
	Image     cartModel.Image `json:"image"`
	Hash      string          `json:"hash"`
}

// NewOrderItem prices item at price and stamps the content hash.
func NewOrderItem(item cartModel.CartItem, price decimal.Decimal) OrderItem {
	orderItem := OrderItem{
		ID:        item.ID,
		Name:      item.Name,
		Price:     price,
		Quantity:  cartModel.ClampQuantity(item.Quantity),
		PrintType: item.PrintType,
		Variant:   item.Variant,
		Size:      item.Size,
		Image:     item.Image.Normalize(),
	}
	orderItem.Hash = HashItem(orderItem)
	return orderItem
}

// HashItem returns the sha256 hex digest of the JSON encoding of item without its hash.
func HashItem(item OrderItem) string {
	item.Hash = ""
	raw, _ := json.Marshal(struct {
		ID        int64           `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Quantity  int             `json:"quantity"`
		PrintType string          `json:"printType"`
		Variant   string          `json:"variant"`
		Size      string          `json:"size"`
		Image     cartModel.Image `json:"image"`
	}{item.ID, item.Name, item.Price, item.Quantity, item.PrintType, item.Variant, item.Size, item.Image})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func Total(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type ShippingInfo struct {
	FirstName string `validate:"required,max=100"          json:"firstName"`
	LastName  string `validate:"required,max=100"          json:"lastName"`
	Email     string `validate:"required,storefront_email" json:"email"`
	Phone     string `validate:"required,min=10,max=15"    json:"phone"`
	Address   string `validate:"required,max=300"          json:"address"`
	City      string `validate:"required,max=100"          json:"city"`
	State     string `validate:"required,state"            json:"state"`
	PinCode   string `validate:"required,pincode"          json:"pinCode"`
}

type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            string          `json:"userId"`
	PlacedBy          string          `json:"-"`
	Status            string          `json:"status"`
	OrderDate         time.Time       `json:"orderDate"`
	ProcessedAt       *time.Time      `json:"processedAt,omitempty"`
	ShippedAt         *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt       *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy       string          `json:"cancelledBy,omitempty"`
	ReturnRequested   bool            `json:"returnRequested"`
	ReturnRequestedAt *time.Time      `json:"returnRequestedAt,omitempty"`
	Items             []OrderItem     `json:"items"`
	Total             decimal.Decimal `json:"total"`
	PaymentID         string          `json:"paymentId"`
	GatewayOrderID    string          `json:"gatewayOrderId"`
	ShippingInfo      ShippingInfo    `json:"shippingInfo"`
}

func (o Order) CanUserCancel() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

func (o Order) CanAdminCancel(now time.Time) bool {
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return false
	}
	return now.Sub(o.OrderDate) <= AdminCancelWindow
}

func (o Order) CanRequestReturn(now time.Time) bool {
	if o.Status != StatusDelivered || o.ReturnRequested || o.DeliveredAt == nil {
		return false
	}
	return now.Sub(*o.DeliveredAt) <= ReturnWindow
}

// Transition moves o to status at now, stamping the matching timestamp.
func (o Order) Transition(status string, now time.Time, cancelledBy string) (Order, bool) {
	if !CanTransition(o.Status, status) {
		return o, false
	}
	at := now
	o.Status = status
	switch status {
	case StatusProcessing:
		o.ProcessedAt = &at
	case StatusShipped:
		o.ShippedAt = &at
	case StatusDelivered:
		o.DeliveredAt = &at
	case StatusCancelled:
		o.CancelledAt = &at
		o.CancelledBy = cancelledBy
	}
	return o, true
}
