package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/product/internal/service"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

type catalogEnvelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Data       struct {
		Entries []pricing.Entry `json:"entries"`
		Entry   pricing.Entry   `json:"entry"`
	} `json:"data"`
}

func TestCatalogRoutes(t *testing.T) {
	router := mux.NewRouter()
	AttachCatalogController(router, service.NewCatalogService(pricing.Default()))

	testCases := []struct {
		name         string
		target       string
		expectedCode int
		assertBody   func(t *testing.T, body catalogEnvelope)
	}{
		{
			name:         "given no query should list the whole catalog",
			target:       "/catalog",
			expectedCode: http.StatusOK,
			assertBody: func(t *testing.T, body catalogEnvelope) {
				assert.Len(t, body.Data.Entries, 24)
			},
		},
		{
			name:         "given size filter should list four variants",
			target:       "/catalog?size=24x36",
			expectedCode: http.StatusOK,
			assertBody: func(t *testing.T, body catalogEnvelope) {
				assert.Len(t, body.Data.Entries, 4)
			},
		},
		{
			name:         "given known configuration should quote base price",
			target:       "/catalog/price?printType=Canvas&variant=Stretched&size=A4",
			expectedCode: http.StatusOK,
			assertBody: func(t *testing.T, body catalogEnvelope) {
				assert.Equal(t, "998", body.Data.Entry.BasePrice.String())
			},
		},
		{
			name:         "given incomplete configuration should return 400",
			target:       "/catalog/price?printType=Canvas",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given unknown configuration should return 400",
			target:       "/catalog/price?printType=Canvas&variant=Framed&size=A4",
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.Equal(t, tt.expectedCode, w.Code)

			body := catalogEnvelope{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			if tt.assertBody != nil {
				tt.assertBody(t, body)
			}
		})
	}
}
