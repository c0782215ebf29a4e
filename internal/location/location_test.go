package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/internal/config"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
)

func TestValidPinCode(t *testing.T) {
	testCases := []struct {
		name     string
		pinCode  string
		expected bool
	}{
		{name: "given six digits should return true", pinCode: "560001", expected: true},
		{name: "given leading zero should return false", pinCode: "060001"},
		{name: "given five digits should return false", pinCode: "56000"},
		{name: "given letters should return false", pinCode: "56OO01"},
		{name: "given empty pin code should return false", pinCode: ""},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidPinCode(tt.pinCode))
		})
	}
}

func TestIsState(t *testing.T) {
	assert.True(t, IsState("Karnataka"))
	assert.True(t, IsState(" west bengal "))
	assert.True(t, IsState("Delhi"))
	assert.False(t, IsState("Atlantis"))
	assert.False(t, IsState(""))
}

func TestPostalClientLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pincode/560001":
			_, _ = w.Write([]byte(`[{"Status":"Success","PostOffice":[{"District":"Bangalore","State":"Karnataka"}]}]`))
		case "/pincode/999999":
			_, _ = w.Write([]byte(`[{"Status":"Error","PostOffice":null}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	client := NewPostalClient(config.Location{BaseURL: server.URL + "/"})

	testCases := []struct {
		name     string
		pinCode  string
		expected Location
		err      error
	}{
		{
			name:     "given known pin code should return district and state",
			pinCode:  "560001",
			expected: Location{PinCode: "560001", City: "Bangalore", State: "Karnataka"},
		},
		{name: "given unknown pin code should return not found", pinCode: "999999", err: inErrors.ErrPinCodeNotFound},
		{name: "given malformed pin code should return not found", pinCode: "12", err: inErrors.ErrPinCodeNotFound},
		{name: "given failing api should return unavailable", pinCode: "110001", err: inErrors.ErrLocationUnavailable},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := client.Lookup(context.Background(), tt.pinCode)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}
