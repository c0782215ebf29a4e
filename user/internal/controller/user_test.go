package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/internal/auth"
	"github.com/Alturino/framedarchive/internal/config"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/user/internal/repository"
	"github.com/Alturino/framedarchive/user/internal/service"
)

var appConfig = config.Application{SecretKey: "user-controller-secret", Issuer: "framed-archive-test"}

type envelope struct {
	Status     string                 `json:"status"`
	StatusCode int                    `json:"statusCode"`
	Message    string                 `json:"message"`
	Data       map[string]interface{} `json:"data"`
}

func newRouter(limiters Limiters) *mux.Router {
	admin := config.Admin{Emails: []string{"curator@framedarchive.in"}}
	router := mux.NewRouter()
	AttachUserController(
		router,
		service.NewUserService(repository.NewMemoryUserStore(), admin),
		middleware.NewAuthenticator(appConfig, admin, time.Hour),
		limiters,
	)
	return router
}

func do(t *testing.T, router http.Handler, method, target, body string, header map[string]string) (int, envelope) {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	res := envelope{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return w.Code, res
}

func TestAddressRoutes(t *testing.T) {
	router := newRouter(Limiters{})
	signed, err := auth.IssueToken(appConfig, "user-1", "buyer@example.com", time.Now(), time.Hour)
	require.NoError(t, err)
	header := map[string]string{"Authorization": "Bearer " + signed}

	code, _ := do(t, router, http.MethodGet, "/users/me/address", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, router, http.MethodGet, "/users/me/address", "", header)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodPut, "/users/me/address", `{"street":"4 Park Street"}`, header)
	assert.Equal(t, http.StatusBadRequest, code)

	body := `{"street":"4 Park Street","city":"Kolkata","state":"West Bengal","zipCode":"700016","country":"India"}`
	code, _ = do(t, router, http.MethodPut, "/users/me/address", body, header)
	require.Equal(t, http.StatusOK, code)

	code, res := do(t, router, http.MethodGet, "/users/me/address", "", header)
	require.Equal(t, http.StatusOK, code)
	address, ok := res.Data["address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Kolkata", address["city"])
}

func TestVerifyAdminRoute(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedCode int
		isAdmin      bool
	}{
		{
			name:         "given admin email should return 200",
			body:         `{"email":"curator@framedarchive.in"}`,
			expectedCode: http.StatusOK,
			isAdmin:      true,
		},
		{
			name:         "given other email should return 403",
			body:         `{"email":"buyer@example.com"}`,
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "given missing email should return 400",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given malformed body should return 400",
			body:         `{"email":`,
			expectedCode: http.StatusBadRequest,
		},
	}

	router := newRouter(Limiters{})
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			code, res := do(t, router, http.MethodPost, "/admin/verify", tt.body, nil)
			assert.Equal(t, tt.expectedCode, code)
			if tt.isAdmin {
				assert.Equal(t, true, res.Data["isAdmin"])
			}
		})
	}
}

func TestContactRoute(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(16), "contact", 2, time.Minute)
	router := newRouter(Limiters{Contact: limiter})

	code, _ := do(t, router, http.MethodPost, "/contact", `{"name":"Asha","email":"asha@example.com","message":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	body := `{"name":"Asha","email":"asha@example.com","message":"Do you ship framed prints abroad?"}`
	code, res := do(t, router, http.MethodPost, "/contact", body, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, res.Data["id"])

	code, _ = do(t, router, http.MethodPost, "/contact", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
}
