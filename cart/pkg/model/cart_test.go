package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageUnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected Image
	}{
		{
			name:     "given single url string should spread to every size",
			raw:      `"/images/a.jpg"`,
			expected: Image{Large: "/images/a.jpg", Medium: "/images/a.jpg", Small: "/images/a.jpg"},
		},
		{
			name:     "given triple should decode every size",
			raw:      `{"large":"/l.jpg","medium":"/m.jpg","small":"/s.jpg"}`,
			expected: Image{Large: "/l.jpg", Medium: "/m.jpg", Small: "/s.jpg"},
		},
		{
			name: "given null should decode empty image",
			raw:  `null`,
		},
		{
			name: "given number should decode empty image",
			raw:  `42`,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			var image Image
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &image))
			assert.Equal(t, tt.expected, image)
		})
	}
}

func TestLegacyCartItemDecodes(t *testing.T) {
	raw := `{"id":7,"name":"Nocturne","basePrice":500,"price":"500","quantity":2,"printType":"Poster","variant":"Standard","size":"A4","image":"/n.jpg"}`

	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, int64(7), item.ID)
	assert.True(t, item.BasePrice.Equal(decimal.NewFromInt(500)))
	assert.True(t, item.Price.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, Image{Large: "/n.jpg", Medium: "/n.jpg", Small: "/n.jpg"}, item.Image)
}

func TestImageNormalize(t *testing.T) {
	assert.Equal(t,
		Image{Large: PlaceholderImage, Medium: PlaceholderImage, Small: PlaceholderImage},
		Image{}.Normalize(),
	)
	assert.Equal(t,
		Image{Large: "/m.jpg", Medium: "/m.jpg", Small: "/s.jpg"},
		Image{Medium: "/m.jpg", Small: "/s.jpg"}.Normalize(),
	)
	assert.Equal(t,
		Image{Large: "/l.jpg", Medium: "/l.jpg", Small: "/l.jpg"},
		Image{Large: " /l.jpg "}.Normalize(),
	)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "éé", Truncate("ééé", 2))
	assert.Equal(t, "", Truncate("", 0))
}

func TestClampQuantity(t *testing.T) {
	for q, expected := range map[int]int{-5: 1, 0: 1, 1: 1, 7: 7, 10: 10, 11: 10, 1 << 30: 10} {
		assert.Equal(t, expected, ClampQuantity(q))
	}
}

func TestTotal(t *testing.T) {
	items := []CartItem{
		{Price: decimal.NewFromInt(500), Quantity: 2},
		{Price: decimal.NewFromFloat(749.5), Quantity: 1},
	}
	assert.True(t, Total(items).Equal(decimal.NewFromFloat(1749.5)))
	assert.Equal(t, 3, CountItems(items))
}
