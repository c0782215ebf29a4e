package validate

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		expected bool
	}{
		{name: "given valid email should return true", email: "buyer@framedarchive.in", expected: true},
		{name: "given email without domain dot should return false", email: "buyer@localhost"},
		{name: "given email with spaces should return false", email: "bu yer@mail.com"},
		{name: "given empty email should return false", email: ""},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateEmail(tt.email))
		})
	}
}

func TestValidateMessage(t *testing.T) {
	testCases := []struct {
		name     string
		message  string
		expected bool
	}{
		{name: "given 9 characters should return false", message: "too short"},
		{name: "given 10 characters should return true", message: "just right", expected: true},
		{name: "given 1000 multibyte characters should return true", message: strings.Repeat("é", 1000), expected: true},
		{name: "given 1001 characters should return false", message: strings.Repeat("a", 1001)},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateMessage(tt.message))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Gallery#2024"))
	assert.False(t, ValidatePassword("gallery#2024"))
	assert.False(t, ValidatePassword("Gallery2024"))
	assert.False(t, ValidatePassword("Gal#1"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput(" <script>alert(1)</script> "))
	assert.Equal(t, "alert(1)", SanitizeInput("JavaScript:alert(1)"))
	assert.Equal(t, "texthtml,x", SanitizeInput("DATA:texthtml,x"))
	assert.Equal(t, "a b", SanitizeInput(`"a; b'`))
}

func TestValidatePrice(t *testing.T) {
	base := decimal.NewFromInt(500)
	testCases := []struct {
		name     string
		price    decimal.Decimal
		expected decimal.Decimal
	}{
		{name: "given price equal to base should keep price", price: base, expected: base},
		{name: "given price at upper bound should keep price", price: decimal.NewFromInt(750), expected: decimal.NewFromInt(750)},
		{name: "given price at lower bound should keep price", price: decimal.NewFromInt(1), expected: decimal.NewFromInt(1)},
		{name: "given price above bound should reset to base", price: decimal.NewFromFloat(750.01), expected: base},
		{name: "given price below one should reset to base", price: decimal.NewFromFloat(0.99), expected: base},
		{name: "given negative price should reset to base", price: decimal.NewFromInt(-20), expected: base},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			actual := ValidatePrice(context.Background(), tt.price, base)
			assert.Truef(t, tt.expected.Equal(actual), "expected=%s actual=%s", tt.expected, actual)
		})
	}
}

func TestRegisteredTags(t *testing.T) {
	type contact struct {
		Email   string          `validate:"required,storefront_email"`
		Message string          `validate:"required,contact_message"`
		Amount  decimal.Decimal `validate:"price"`
	}

	v := Get()
	require.NotNil(t, v)
	require.Same(t, v, Get())

	err := v.Struct(contact{
		Email:   "buyer@framedarchive.in",
		Message: "Is the A2 canvas available?",
		Amount:  decimal.NewFromInt(1200),
	})
	assert.NoError(t, err)

	err = v.Struct(contact{Email: "nope", Message: "short", Amount: decimal.Zero})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront_email")
	assert.Contains(t, err.Error(), "contact_message")
	assert.Contains(t, err.Error(), "price")
}

func TestShippingTags(t *testing.T) {
	type shipping struct {
		State   string `validate:"required,state"`
		PinCode string `validate:"required,pincode"`
	}
	testCases := []struct {
		name    string
		input   shipping
		invalid bool
	}{
		{name: "given state and pin code should pass", input: shipping{State: "Kerala", PinCode: "682001"}},
		{name: "given unknown state should fail", input: shipping{State: "Gondor", PinCode: "682001"}, invalid: true},
		{name: "given pin code starting with zero should fail", input: shipping{State: "Kerala", PinCode: "082001"}, invalid: true},
		{name: "given seven digit pin code should fail", input: shipping{State: "Kerala", PinCode: "6820011"}, invalid: true},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := Get().Struct(tt.input)
			if tt.invalid {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
