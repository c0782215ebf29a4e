package request

import (
	"github.com/Alturino/framedarchive/cart/pkg/model"
)

type ReplaceCart struct {
	Items []model.CartItem `validate:"required,max=100" json:"items"`
}

type AddCartItem struct {
	ID        int64       `validate:"omitempty,gt=0"  json:"id"`
	Name      string      `validate:"required"        json:"name"`
	Quantity  int         `validate:"-"               json:"quantity"`
	PrintType string      `validate:"required,max=50" json:"printType"`
	Variant   string      `validate:"required,max=50" json:"variant"`
	Size      string      `validate:"required,max=50" json:"size"`
	Image     model.Image `validate:"-"               json:"image"`
}

type UpdateCartItem struct {
	Quantity  *int    `validate:"-"                     json:"quantity,omitempty"`
	PrintType *string `validate:"omitempty,min=1,max=50" json:"printType,omitempty"`
	Variant   *string `validate:"omitempty,min=1,max=50" json:"variant,omitempty"`
	Size      *string `validate:"omitempty,min=1,max=50" json:"size,omitempty"`
}

type MergeCart struct {
	Items      []model.CartItem `validate:"max=100"           json:"items"`
	MergeToken string           `validate:"omitempty,max=100" json:"mergeToken"`
}
