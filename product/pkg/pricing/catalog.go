package pricing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Alturino/framedarchive/internal/errors"
)

const (
	PrintTypePoster = "Poster"
	PrintTypeCanvas = "Canvas"

	VariantStandard  = "Standard"
	VariantFramed    = "Framed"
	VariantStretched = "Stretched"
	VariantGallery   = "Gallery"
)

var Sizes = []string{"A4", "A3", "A2", "12x18", "18x24", "24x36"}

var posterPrices = map[string]int64{
	"A4":    499,
	"A3":    799,
	"A2":    1199,
	"12x18": 899,
	"18x24": 1499,
	"24x36": 2499,
}

type variant struct {
	printType  string
	name       string
	multiplier decimal.Decimal
}

var variants = []variant{
	{printType: PrintTypePoster, name: VariantStandard, multiplier: decimal.NewFromInt(1)},
	{printType: PrintTypePoster, name: VariantFramed, multiplier: decimal.NewFromFloat(1.5)},
	{printType: PrintTypeCanvas, name: VariantStretched, multiplier: decimal.NewFromInt(2)},
	{printType: PrintTypeCanvas, name: VariantGallery, multiplier: decimal.NewFromInt(2)},
}

type Entry struct {
	PrintType string          `json:"printType"`
	Variant   string          `json:"variant"`
	Size      string          `json:"size"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

// Catalog is the server-held price list. It is immutable after construction.
type Catalog struct {
	prices  map[string]decimal.Decimal
	entries []Entry
}

func key(printType, variant, size string) string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s", printType, variant, size))
}

func NewCatalog(entries ...Entry) *Catalog {
	catalog := &Catalog{prices: make(map[string]decimal.Decimal, len(entries))}
	for _, e := range entries {
		catalog.prices[key(e.PrintType, e.Variant, e.Size)] = e.BasePrice
		catalog.entries = append(catalog.entries, e)
	}
	sort.SliceStable(catalog.entries, func(i, j int) bool {
		a, b := catalog.entries[i], catalog.entries[j]
		if a.PrintType != b.PrintType {
			return a.PrintType > b.PrintType
		}
		if a.Variant != b.Variant {
			return a.Variant > b.Variant
		}
		return a.BasePrice.LessThan(b.BasePrice)
	})
	return catalog
}

// Default returns the storefront price list: the poster price of every size scaled by
// the variant multiplier.
func Default() *Catalog {
	entries := make([]Entry, 0, len(variants)*len(Sizes))
	for _, v := range variants {
		for _, size := range Sizes {
			entries = append(entries, Entry{
				PrintType: v.printType,
				Variant:   v.name,
				Size:      size,
				BasePrice: decimal.NewFromInt(posterPrices[size]).Mul(v.multiplier).Round(0),
			})
		}
	}
	return NewCatalog(entries...)
}

// Lookup matches print type, variant and size case-insensitively.
func (c *Catalog) Lookup(printType, variant, size string) (decimal.Decimal, bool) {
	price, ok := c.prices[key(strings.TrimSpace(printType), strings.TrimSpace(variant), strings.TrimSpace(size))]
	return price, ok
}

func (c *Catalog) Price(printType, variant, size string) (decimal.Decimal, error) {
	price, ok := c.Lookup(printType, variant, size)
	if !ok {
		return decimal.Zero, fmt.Errorf(
			"failed pricing printType=%s variant=%s size=%s with error=%w",
			printType,
			variant,
			size,
			errors.ErrUnknownConfiguration,
		)
	}
	return price, nil
}

func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}
