package response

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/framedarchive/cart/pkg/model"
)

type Cart struct {
	Items    []model.CartItem `json:"items"`
	Count    int              `json:"count"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

func NewCart(items []model.CartItem) Cart {
	if items == nil {
		items = []model.CartItem{}
	}
	return Cart{
		Items:    items,
		Count:    model.CountItems(items),
		Subtotal: model.Total(items),
	}
}
