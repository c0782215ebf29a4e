package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLength   = 100
	MaxOptionLength = 50
	MinQuantity     = 1
	MaxQuantity     = 10

	PlaceholderImage = "/images/placeholder.jpg"
)

type Image struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
	Small  string `json:"small"`
}

// UnmarshalJSON accepts the triple as well as a single URL string, which it spreads over
// every size. Values of any other shape decode to an empty image.
func (i *Image) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*i = Image{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return nil
		}
		*i = Image{Large: url, Medium: url, Small: url}
	case '{':
		type image Image
		var decoded image
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil
		}
		*i = Image(decoded)
	}
	return nil
}

// Normalize fills blank sizes with the first non-empty URL, or the placeholder when none
// is set.
func (i Image) Normalize() Image {
	large, medium, small := strings.TrimSpace(i.Large), strings.TrimSpace(i.Medium), strings.TrimSpace(i.Small)
	fallback := PlaceholderImage
	for _, url := range []string{large, medium, small} {
		if url != "" {
			fallback = url
			break
		}
	}
	if large == "" {
		large = fallback
	}
	if medium == "" {
		medium = fallback
	}
	if small == "" {
		small = fallback
	}
	return Image{Large: large, Medium: medium, Small: small}
}

type CartItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	PrintType string          `json:"printType"`
	Variant   string          `json:"variant"`
	Size      string          `json:"size"`
	Image     Image           `json:"image"`
}

// SameConfiguration reports whether both items are the same product in the same
// print type, size and variant.
func (i CartItem) SameConfiguration(other CartItem) bool {
	return i.ID == other.ID &&
		i.PrintType == other.PrintType &&
		i.Size == other.Size &&
		i.Variant == other.Variant
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func CountItems(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func Total(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func ClampQuantity(quantity int) int {
	if quantity < MinQuantity {
		return MinQuantity
	}
	if quantity > MaxQuantity {
		return MaxQuantity
	}
	return quantity
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
