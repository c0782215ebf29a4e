package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Alturino/framedarchive/cart/pkg/model"
)

// MergeFunc computes the cart to store from the stored one. found is false when the user
// has never stored a cart.
type MergeFunc func(stored []model.CartItem, found bool) []model.CartItem

type CartStore interface {
	FindCart(c context.Context, userID string) ([]model.CartItem, bool, error)
	SaveCart(c context.Context, userID string, items []model.CartItem) error
	// MergeCart applies merge atomically and records mergeToken. A token equal to the last
	// recorded one returns the stored cart with applied set to false.
	MergeCart(
		c context.Context,
		userID string,
		mergeToken string,
		merge MergeFunc,
	) (items []model.CartItem, applied bool, err error)
}

func decodeCart(raw []byte) ([]model.CartItem, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []model.CartItem{}, false, nil
	}
	items := []model.CartItem{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("failed unmarshaling stored cart with error=%w", err)
	}
	return items, true, nil
}

func encodeCart(items []model.CartItem) ([]byte, error) {
	if items == nil {
		items = []model.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	return raw, nil
}
