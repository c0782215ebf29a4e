package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/framedarchive/cart/pkg/model"
)

func cartItem(id int64, printType, size, variant string, quantity int) model.CartItem {
	return model.CartItem{
		ID:        id,
		Name:      "Print",
		BasePrice: decimal.NewFromInt(500),
		Price:     decimal.NewFromInt(500),
		Quantity:  quantity,
		PrintType: printType,
		Variant:   variant,
		Size:      size,
		Image:     model.Image{Large: "/l.jpg", Medium: "/m.jpg", Small: "/s.jpg"},
	}
}

type mergedLine struct {
	ID       int64
	Size     string
	Quantity int
}

func lines(items []model.CartItem) []mergedLine {
	result := make([]mergedLine, 0, len(items))
	for _, i := range items {
		result = append(result, mergedLine{ID: i.ID, Size: i.Size, Quantity: i.Quantity})
	}
	return result
}

func TestMergeCarts(t *testing.T) {
	testCases := []struct {
		name     string
		stored   []model.CartItem
		found    bool
		local    []model.CartItem
		expected []mergedLine
	}{
		{
			name:  "given no stored cart should take local cart verbatim",
			found: false,
			local: []model.CartItem{
				cartItem(1, "Poster", "A4", "Standard", 3),
				cartItem(2, "Canvas", "A2", "Gallery", 12),
			},
			expected: []mergedLine{{ID: 1, Size: "A4", Quantity: 3}, {ID: 2, Size: "A2", Quantity: 12}},
		},
		{
			name:     "given matching item should add quantities",
			stored:   []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 3)},
			found:    true,
			local:    []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 4)},
			expected: []mergedLine{{ID: 1, Size: "A4", Quantity: 7}},
		},
		{
			name:     "given matching item over the cap should cap merged quantity at ten",
			stored:   []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 8)},
			found:    true,
			local:    []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 9)},
			expected: []mergedLine{{ID: 1, Size: "A4", Quantity: 10}},
		},
		{
			name:   "given same id with different size should append",
			stored: []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 3)},
			found:  true,
			local:  []model.CartItem{cartItem(1, "Poster", "A3", "Standard", 15)},
			expected: []mergedLine{
				{ID: 1, Size: "A4", Quantity: 3},
				{ID: 1, Size: "A3", Quantity: 10},
			},
		},
		{
			name:   "given repeated local configuration should merge into appended item",
			stored: []model.CartItem{},
			found:  true,
			local: []model.CartItem{
				cartItem(5, "Poster", "A4", "Framed", 6),
				cartItem(5, "Poster", "A4", "Framed", 6),
			},
			expected: []mergedLine{{ID: 5, Size: "A4", Quantity: 10}},
		},
		{
			name:     "given empty local cart should keep stored cart",
			stored:   []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 3)},
			found:    true,
			local:    nil,
			expected: []mergedLine{{ID: 1, Size: "A4", Quantity: 3}},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lines(MergeCarts(tt.stored, tt.found, tt.local)))
		})
	}
}

func TestMergeCartsNormalizesImages(t *testing.T) {
	local := cartItem(1, "Poster", "A4", "Standard", 1)
	local.Image = model.Image{Small: "/s.jpg"}

	merged := MergeCarts(nil, false, []model.CartItem{local})
	assert.Equal(t, model.Image{Large: "/s.jpg", Medium: "/s.jpg", Small: "/s.jpg"}, merged[0].Image)

	merged = MergeCarts([]model.CartItem{}, true, []model.CartItem{local})
	assert.Equal(t, model.Image{Large: "/s.jpg", Medium: "/s.jpg", Small: "/s.jpg"}, merged[0].Image)
}

func TestMergeCartsDoesNotMutateStored(t *testing.T) {
	stored := []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 3)}
	_ = MergeCarts(stored, true, []model.CartItem{cartItem(1, "Poster", "A4", "Standard", 4)})
	assert.Equal(t, 3, stored[0].Quantity)
}
