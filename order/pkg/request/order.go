package request

import (
	"github.com/shopspring/decimal"

	cartModel "github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/order/pkg/model"
)

type CreatePaymentOrder struct {
	Amount  decimal.Decimal      `validate:"required,price"         json:"amount"`
	OrderID string               `validate:"required,max=40"        json:"orderId"`
	Items   []cartModel.CartItem `validate:"required,min=1,max=100" json:"items"`
}

type ConfirmOrder struct {
	GatewayOrderID string             `validate:"required,max=64"  json:"gatewayOrderId"`
	PaymentID      string             `validate:"required,max=64"  json:"paymentId"`
	Signature      string             `validate:"required,max=128" json:"signature"`
	ShippingInfo   model.ShippingInfo `validate:"required"         json:"shippingInfo"`
}

type UpdateOrderStatus struct {
	Status string `validate:"required,oneof=pending processing shipped delivered cancelled" json:"status"`
}

type FindOrders struct {
	Status string `validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Limit  int32  `validate:"gte=0,lte=100"`
	Offset int32  `validate:"gte=0"`
}

type FindStats struct {
	SortBy string `validate:"omitempty,oneof=revenue units orders name"`
	Order  string `validate:"omitempty,oneof=asc desc"`
}
