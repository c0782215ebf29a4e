package integrity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/internal/event"
)

func newItem() model.CartItem {
	return model.CartItem{
		ID:        1714550400000,
		Name:      "Nocturne in Blue",
		BasePrice: decimal.NewFromInt(500),
		Price:     decimal.NewFromInt(500),
		Quantity:  1,
		PrintType: "Poster",
		Variant:   "Standard",
		Size:      "A4",
		Image:     model.Image{Large: "/l.jpg", Medium: "/m.jpg", Small: "/s.jpg"},
	}
}

func assertItemsEqual(t *testing.T, expected, actual []model.CartItem) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		e, a := expected[i], actual[i]
		assert.Truef(t, e.Price.Equal(a.Price), "item %d price expected=%s actual=%s", i, e.Price, a.Price)
		assert.Truef(
			t,
			e.BasePrice.Equal(a.BasePrice),
			"item %d basePrice expected=%s actual=%s",
			i,
			e.BasePrice,
			a.BasePrice,
		)
		e.Price, a.Price, e.BasePrice, a.BasePrice = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		assert.Equal(t, e, a)
	}
}

func TestValidateCartItem(t *testing.T) {
	c := context.Background()

	testCases := []struct {
		name     string
		mutate   func(item *model.CartItem)
		expected func(item *model.CartItem)
	}{
		{
			name:     "given valid item should keep every field",
			mutate:   func(item *model.CartItem) {},
			expected: func(item *model.CartItem) {},
		},
		{
			name:     "given quantity zero should clamp to one",
			mutate:   func(item *model.CartItem) { item.Quantity = 0 },
			expected: func(item *model.CartItem) { item.Quantity = 1 },
		},
		{
			name:     "given quantity above ten should clamp to ten",
			mutate:   func(item *model.CartItem) { item.Quantity = 99 },
			expected: func(item *model.CartItem) { item.Quantity = 10 },
		},
		{
			name:     "given tampered price should reset to base price",
			mutate:   func(item *model.CartItem) { item.Price = decimal.NewFromInt(1) },
			expected: func(item *model.CartItem) {},
		},
		{
			name:     "given price above one and a half base should reset to base price",
			mutate:   func(item *model.CartItem) { item.Price = decimal.NewFromInt(751) },
			expected: func(item *model.CartItem) {},
		},
		{
			name:     "given framed markup inside bound should keep price",
			mutate:   func(item *model.CartItem) { item.Price = decimal.NewFromInt(750) },
			expected: func(item *model.CartItem) { item.Price = decimal.NewFromInt(750) },
		},
		{
			name: "given long name and options should truncate",
			mutate: func(item *model.CartItem) {
				item.Name = strings.Repeat("n", 150)
				item.PrintType = strings.Repeat("p", 60)
				item.Variant = strings.Repeat("v", 60)
				item.Size = strings.Repeat("s", 60)
			},
			expected: func(item *model.CartItem) {
				item.Name = strings.Repeat("n", 100)
				item.PrintType = strings.Repeat("p", 50)
				item.Variant = strings.Repeat("v", 50)
				item.Size = strings.Repeat("s", 50)
			},
		},
		{
			name:   "given missing image should use placeholder",
			mutate: func(item *model.CartItem) { item.Image = model.Image{} },
			expected: func(item *model.CartItem) {
				item.Image = model.Image{
					Large:  model.PlaceholderImage,
					Medium: model.PlaceholderImage,
					Small:  model.PlaceholderImage,
				}
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			input, expected := newItem(), newItem()
			tt.mutate(&input)
			tt.expected(&expected)

			actual := ValidateCartItem(c, input)
			assertItemsEqual(t, []model.CartItem{expected}, []model.CartItem{actual})
		})
	}
}

func TestValidateCartItemIdempotent(t *testing.T) {
	c := context.Background()
	inputs := []model.CartItem{newItem()}
	for _, q := range []int{math.MinInt, -1, 0, 5, 11, math.MaxInt} {
		item := newItem()
		item.Quantity = q
		inputs = append(inputs, item)
	}
	for _, p := range []float64{-1, 0, 0.5, 1, 749.99, 750, 750.01, 1e9} {
		item := newItem()
		item.Price = decimal.NewFromFloat(p)
		inputs = append(inputs, item)
	}
	zeroBase := newItem()
	zeroBase.BasePrice = decimal.Zero
	inputs = append(inputs, zeroBase)
	blankImage := newItem()
	blankImage.Image = model.Image{Small: " "}
	inputs = append(inputs, blankImage)

	for _, input := range inputs {
		once := ValidateCartItem(c, input)
		twice := ValidateCartItem(c, once)
		assertItemsEqual(t, []model.CartItem{once}, []model.CartItem{twice})
	}
}

func TestValidateCartItemQuantityBound(t *testing.T) {
	c := context.Background()
	for q := -50; q <= 50; q++ {
		item := newItem()
		item.Quantity = q
		actual := ValidateCartItem(c, item).Quantity
		assert.GreaterOrEqual(t, actual, 1)
		assert.LessOrEqual(t, actual, 10)
	}
}

func TestValidateCartItemPriceBound(t *testing.T) {
	c := context.Background()
	for _, base := range []int64{1, 2, 499, 500, 2499} {
		b := decimal.NewFromInt(base)
		upper := b.Mul(decimal.NewFromFloat(1.5))
		for _, p := range []decimal.Decimal{
			decimal.NewFromInt(-1),
			decimal.Zero,
			decimal.NewFromFloat(0.99),
			decimal.NewFromInt(1),
			b,
			upper,
			upper.Add(decimal.NewFromFloat(0.01)),
			b.Mul(decimal.NewFromInt(3)),
		} {
			item := newItem()
			item.BasePrice, item.Price = b, p
			actual := ValidateCartItem(c, item).Price
			if p.LessThan(decimal.NewFromInt(1)) || p.GreaterThan(upper) {
				assert.Truef(t, actual.Equal(b), "base=%s price=%s actual=%s", b, p, actual)
			} else {
				assert.Truef(t, actual.Equal(p), "base=%s price=%s actual=%s", b, p, actual)
			}
		}
	}
}

type recordingPublisher struct {
	events []event.CartUpdated
}

func (p *recordingPublisher) Publish(c context.Context, evt event.CartUpdated) error {
	p.events = append(p.events, evt)
	return nil
}

func TestSecureStoreRoundTrip(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()
	publisher := &recordingPublisher{}
	store := NewSecureStore(storage, publisher)

	tampered := newItem()
	tampered.ID = 2
	tampered.Price = decimal.NewFromInt(10000)
	tampered.Quantity = 42
	items := []model.CartItem{newItem(), tampered}

	require.NoError(t, store.Save(c, "session-1", items))

	expected := ValidateCartItems(c, items)
	assertItemsEqual(t, expected, store.Load(c, "session-1"))

	raw, err := storage.Get(c, "session-1", CartKey)
	require.NoError(t, err)
	_, format := Decode(raw)
	assert.Equal(t, FormatV2, format)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "guests:session-1", publisher.events[0].Owner)
	assert.Equal(t, 11, publisher.events[0].Count)
}

func TestSecureStoreLoad(t *testing.T) {
	c := context.Background()
	item := newItem()
	bareArray, err := json.Marshal([]model.CartItem{item})
	require.NoError(t, err)
	current, err := Encode([]model.CartItem{item})
	require.NoError(t, err)

	testCases := []struct {
		name         string
		raw          string
		expected     []model.CartItem
		expectedBlob func(t *testing.T, raw string, blob string)
	}{
		{
			name:     "given missing blob should return empty cart",
			raw:      "",
			expected: []model.CartItem{},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				assert.Empty(t, blob)
			},
		},
		{
			name:     "given arbitrary non json string should return empty cart and clear blob",
			raw:      "definitely not a cart {",
			expected: []model.CartItem{},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				assert.Empty(t, blob)
			},
		},
		{
			name:     "given base64 of garbage should return empty cart and clear blob",
			raw:      base64.StdEncoding.EncodeToString([]byte("garbage")),
			expected: []model.CartItem{},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				assert.Empty(t, blob)
			},
		},
		{
			name:     "given plain json array should return items and encode blob",
			raw:      string(bareArray),
			expected: []model.CartItem{item},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				_, err := base64.StdEncoding.DecodeString(blob)
				require.NoError(t, err)
				_, format := Decode(blob)
				assert.Equal(t, FormatV2, format)
			},
		},
		{
			name:     "given base64 bare array should return items and upgrade envelope",
			raw:      base64.StdEncoding.EncodeToString(bareArray),
			expected: []model.CartItem{item},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				_, format := Decode(blob)
				assert.Equal(t, FormatV2, format)
			},
		},
		{
			name:     "given current envelope should return items and keep blob",
			raw:      current,
			expected: []model.CartItem{item},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				assert.Equal(t, raw, blob)
			},
		},
		{
			name:     "given envelope from newer version should return empty cart and keep blob",
			raw:      base64.StdEncoding.EncodeToString([]byte(`{"version":3,"entries":[]}`)),
			expected: []model.CartItem{},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				assert.Equal(t, raw, blob)
			},
		},
		{
			name:     "given legacy string image should normalize to triple",
			raw:      `[{"id":9,"name":"Dune","basePrice":500,"price":500,"quantity":3,"printType":"Poster","variant":"Standard","size":"A3","image":"/dune.jpg"}]`,
			expected: []model.CartItem{{
				ID:        9,
				Name:      "Dune",
				BasePrice: decimal.NewFromInt(500),
				Price:     decimal.NewFromInt(500),
				Quantity:  3,
				PrintType: "Poster",
				Variant:   "Standard",
				Size:      "A3",
				Image:     model.Image{Large: "/dune.jpg", Medium: "/dune.jpg", Small: "/dune.jpg"},
			}},
			expectedBlob: func(t *testing.T, raw string, blob string) {
				_, format := Decode(blob)
				assert.Equal(t, FormatV2, format)
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			if tt.raw != "" {
				require.NoError(t, storage.Set(c, "s", CartKey, tt.raw))
			}
			store := NewSecureStore(storage, nil)

			actual := store.Load(c, "s")
			require.NotNil(t, actual)
			assertItemsEqual(t, tt.expected, actual)

			blob, err := storage.Get(c, "s", CartKey)
			require.NoError(t, err)
			tt.expectedBlob(t, tt.raw, blob)
		})
	}
}

func TestSecureStoreClear(t *testing.T) {
	c := context.Background()
	publisher := &recordingPublisher{}
	store := NewSecureStore(NewMemoryStorage(), publisher)

	require.NoError(t, store.Save(c, "s", []model.CartItem{newItem()}))
	require.NoError(t, store.Clear(c, "s"))

	assert.Empty(t, store.Load(c, "s"))
	require.Len(t, publisher.events, 2)
	assert.Equal(t, 0, publisher.events[1].Count)
}
