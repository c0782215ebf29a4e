package validate

import (
	"context"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/framedarchive/internal/location"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/metrics"
)

var (
	MinPrice           = decimal.NewFromInt(1)
	MaxPriceMultiplier = decimal.NewFromFloat(1.5)
)

const (
	MinMessageLength  = 10
	MaxMessageLength  = 1000
	MinPasswordLength = 8
)

var (
	emailRegex       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	digitRegex       = regexp.MustCompile(`\d`)
	javascriptRegex  = regexp.MustCompile(`(?i)javascript:`)
	dataRegex        = regexp.MustCompile(`(?i)data:`)
	unsafeCharsRepl  = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "", ";", "")
)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateMessage counts runes, not bytes.
func ValidateMessage(message string) bool {
	n := len([]rune(message))
	return n >= MinMessageLength && n <= MaxMessageLength
}

func ValidatePassword(password string) bool {
	hasUpper := strings.IndexFunc(password, unicode.IsUpper) >= 0
	return len(password) >= MinPasswordLength &&
		digitRegex.MatchString(password) &&
		specialCharRegex.MatchString(password) &&
		hasUpper
}

func SanitizeInput(input string) string {
	input = unsafeCharsRepl.Replace(input)
	input = javascriptRegex.ReplaceAllString(input, "")
	input = dataRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}

// InPriceBound reports whether MinPrice <= price <= basePrice*MaxPriceMultiplier.
func InPriceBound(price decimal.Decimal, basePrice decimal.Decimal) bool {
	maxPrice := basePrice.Mul(MaxPriceMultiplier)
	return price.GreaterThanOrEqual(MinPrice) && price.LessThanOrEqual(maxPrice)
}

// ValidatePrice returns price when it is inside the allowed bound, otherwise basePrice.
func ValidatePrice(c context.Context, price decimal.Decimal, basePrice decimal.Decimal) decimal.Decimal {
	if InPriceBound(price, basePrice) {
		return price
	}
	zerolog.Ctx(c).Warn().
		Str(log.KeyTag, "ValidatePrice").
		Stringer(log.KeyPrice, price).
		Stringer(log.KeyBasePrice, basePrice).
		Msg("invalid price detected")
	metrics.PriceCorrections.Inc()
	return basePrice
}

func validatePriceTag(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return v.GreaterThanOrEqual(MinPrice)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return false
		}
		return d.GreaterThanOrEqual(MinPrice)
	default:
		return false
	}
}

func decimalValue(v reflect.Value) interface{} {
	n, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return n.String()
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the shared validator with the storefront tags registered:
// price, storefront_email, contact_message, pincode and state.
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("price", validatePriceTag)
		_ = v.RegisterValidation("storefront_email", func(fl validator.FieldLevel) bool {
			return ValidateEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("contact_message", func(fl validator.FieldLevel) bool {
			return ValidateMessage(fl.Field().String())
		})
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return location.ValidPinCode(fl.Field().String())
		})
		_ = v.RegisterValidation("state", func(fl validator.FieldLevel) bool {
			return location.IsState(fl.Field().String())
		})
		instance = v
	})
	return instance
}
