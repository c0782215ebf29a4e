package integrity

import (
	"context"

	"github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/internal/validate"
)

// ValidateCartItem repairs item instead of rejecting it. It is idempotent.
func ValidateCartItem(c context.Context, item model.CartItem) model.CartItem {
	return model.CartItem{
		ID:        item.ID,
		Name:      model.Truncate(item.Name, model.MaxNameLength),
		BasePrice: item.BasePrice,
		Price:     validate.ValidatePrice(c, item.Price, item.BasePrice),
		Quantity:  model.ClampQuantity(item.Quantity),
		PrintType: model.Truncate(item.PrintType, model.MaxOptionLength),
		Variant:   model.Truncate(item.Variant, model.MaxOptionLength),
		Size:      model.Truncate(item.Size, model.MaxOptionLength),
		Image:     item.Image.Normalize(),
	}
}

func ValidateCartItems(c context.Context, items []model.CartItem) []model.CartItem {
	validated := make([]model.CartItem, 0, len(items))
	for _, item := range items {
		validated = append(validated, ValidateCartItem(c, item))
	}
	return validated
}
