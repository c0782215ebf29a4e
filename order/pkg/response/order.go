package response

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/framedarchive/order/pkg/model"
)

// PaymentOrder is the gateway order handle the client opens the checkout with.
type PaymentOrder struct {
	ID       string   `json:"id"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Receipt  string   `json:"receipt"`
	Status   string   `json:"status"`
	KeyID    string   `json:"keyId"`
	Hashes   []string `json:"hashes"`
}

type Orders struct {
	Orders []model.Order `json:"orders"`
	Count  int           `json:"count"`
}

func NewOrders(orders []model.Order) Orders {
	if orders == nil {
		orders = []model.Order{}
	}
	return Orders{Orders: orders, Count: len(orders)}
}

// ProductStats aggregates the order lines of one print configuration.
type ProductStats struct {
	Name      string          `json:"name"`
	PrintType string          `json:"printType"`
	Variant   string          `json:"variant"`
	Size      string          `json:"size"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Orders    int             `json:"orders"`
	Status    map[string]int  `json:"status"`
}

type Stats struct {
	Products []ProductStats  `json:"products"`
	Orders   int             `json:"orders"`
	Units    int             `json:"units"`
	Revenue  decimal.Decimal `json:"revenue"`
}
