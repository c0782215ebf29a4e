package service

import (
	"github.com/Alturino/framedarchive/cart/pkg/model"
)

// MergeCarts folds local into stored. Without a stored cart the local cart is taken as is,
// with images normalized. Otherwise a local item matching a stored configuration adds its
// quantity, capped at model.MaxQuantity; any other local item is appended with its own
// quantity capped. Appended items are matched by later local items.
func MergeCarts(stored []model.CartItem, found bool, local []model.CartItem) []model.CartItem {
	if !found {
		merged := make([]model.CartItem, 0, len(local))
		for _, item := range local {
			item.Image = item.Image.Normalize()
			merged = append(merged, item)
		}
		return merged
	}

	merged := make([]model.CartItem, len(stored), len(stored)+len(local))
	copy(merged, stored)
	for _, item := range local {
		idx := -1
		for i := range merged {
			if merged[i].SameConfiguration(item) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			merged[idx].Quantity = min(merged[idx].Quantity+item.Quantity, model.MaxQuantity)
			continue
		}
		item.Quantity = min(item.Quantity, model.MaxQuantity)
		item.Image = item.Image.Normalize()
		merged = append(merged, item)
	}
	return merged
}
