package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartModel "github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/internal/auth"
	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/order/internal/payment"
	"github.com/Alturino/framedarchive/order/internal/repository"
	"github.com/Alturino/framedarchive/order/internal/service"
	"github.com/Alturino/framedarchive/order/pkg/model"
	"github.com/Alturino/framedarchive/order/pkg/response"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

const (
	guestSession = "guestsession0001"
	adminEmail   = "curator@framedarchive.in"
	shippingJSON = `{"firstName":"Asha","lastName":"Rao","email":"asha@example.com","phone":"9876543210",` +
		`"address":"12 MG Road","city":"Bengaluru","state":"Karnataka","pinCode":"560001"}`
	framedA3JSON = `{"id":1714550400001,"name":"Monsoon Study","basePrice":1,"price":1,"quantity":1,` +
		`"printType":"Poster","variant":"Framed","size":"A3","image":"/images/monsoon.jpg"}`
)

var appConfig = config.Application{SecretKey: "order-controller-secret", Issuer: "framed-archive-test"}

type memoryCarts struct {
	mu    sync.Mutex
	items map[string][]cartModel.CartItem
}

func (m *memoryCarts) Current(_ context.Context, owner auth.Owner) []cartModel.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[owner.Key()]
}

func (m *memoryCarts) Clear(_ context.Context, owner auth.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, owner.Key())
	return nil
}

func (m *memoryCarts) put(owner auth.Owner, items ...cartModel.CartItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[owner.Key()] = items
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type fixture struct {
	router  *mux.Router
	gateway *payment.FakeGateway
	carts   *memoryCarts
}

func newFixture(t *testing.T, limiters Limiters) fixture {
	t.Helper()
	gateway := payment.NewFakeGateway("test-secret")
	carts := &memoryCarts{items: map[string][]cartModel.CartItem{}}
	svc := service.NewOrderService(repository.NewMemoryOrderStore(), gateway, pricing.Default(), carts, "INR")
	router := mux.NewRouter()
	AttachOrderController(
		router,
		svc,
		middleware.NewAuthenticator(appConfig, config.Admin{Emails: []string{adminEmail}}, time.Hour),
		limiters,
		inflight.NewGuard(),
	)
	return fixture{router: router, gateway: gateway, carts: carts}
}

func bearer(t *testing.T, userID, email string) string {
	t.Helper()
	signed, err := auth.IssueToken(appConfig, userID, email, time.Now(), time.Hour)
	require.NoError(t, err)
	return "Bearer " + signed
}

func (f fixture) do(t *testing.T, method, target, body string, header map[string]string) (int, envelope) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	}
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)

	res := envelope{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return w.Code, res
}

func framedA3() cartModel.CartItem {
	item := cartModel.CartItem{}
	if err := json.Unmarshal([]byte(framedA3JSON), &item); err != nil {
		panic(err)
	}
	return item
}

// checkout creates and confirms an order for the owner carried by header.
func (f fixture) checkout(t *testing.T, owner auth.Owner, header map[string]string) model.Order {
	t.Helper()
	f.carts.put(owner, framedA3())

	code, res := f.do(t, http.MethodPost, "/orders/create-order",
		fmt.Sprintf(`{"amount":1199,"orderId":"order-1","items":[%s]}`, framedA3JSON), header)
	require.Equal(t, http.StatusOK, code, res.Message)
	created := struct {
		Order response.PaymentOrder `json:"order"`
	}{}
	require.NoError(t, json.Unmarshal(res.Data, &created))
	assert.Equal(t, int64(119900), created.Order.Amount)
	assert.Equal(t, "rzp_test_fake", created.Order.KeyID)

	paymentID, signature := f.gateway.Pay(created.Order.ID)
	code, res = f.do(t, http.MethodPost, "/orders/confirm", fmt.Sprintf(
		`{"gatewayOrderId":%q,"paymentId":%q,"signature":%q,"shippingInfo":%s}`,
		created.Order.ID, paymentID, signature, shippingJSON,
	), header)
	require.Equal(t, http.StatusOK, code, res.Message)
	confirmed := struct {
		Order model.Order `json:"order"`
	}{}
	require.NoError(t, json.Unmarshal(res.Data, &confirmed))
	return confirmed.Order
}

func TestGuestCheckout(t *testing.T) {
	f := newFixture(t, Limiters{})
	guest := auth.Owner{GuestSession: guestSession}
	order := f.checkout(t, guest, map[string]string{constants.HEADER_GUEST_SESSION: guestSession})

	assert.Equal(t, constants.GUEST_USER_ID, order.UserID)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "1199", order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "1199", order.Items[0].Price.String())
	assert.Empty(t, f.carts.Current(context.Background(), guest))
}

func TestUserOrderRoutes(t *testing.T) {
	f := newFixture(t, Limiters{})
	user := auth.Owner{UserID: "user-1"}
	header := map[string]string{"Authorization": bearer(t, "user-1", "buyer@example.com")}
	order := f.checkout(t, user, header)
	assert.Equal(t, "user-1", order.UserID)

	code, res := f.do(t, http.MethodGet, "/orders", "", header)
	require.Equal(t, http.StatusOK, code)
	listed := struct {
		Orders []model.Order `json:"orders"`
		Count  int           `json:"count"`
	}{}
	require.NoError(t, json.Unmarshal(res.Data, &listed))
	assert.Equal(t, 1, listed.Count)

	code, _ = f.do(t, http.MethodGet, "/orders/"+order.ID.String(), "", header)
	assert.Equal(t, http.StatusOK, code)

	other := map[string]string{"Authorization": bearer(t, "user-2", "other@example.com")}
	code, _ = f.do(t, http.MethodGet, "/orders/"+order.ID.String(), "", other)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/return", "", header)
	assert.Equal(t, http.StatusConflict, code)

	code, res = f.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/cancel", "", header)
	require.Equal(t, http.StatusOK, code)
	cancelled := struct {
		Order model.Order `json:"order"`
	}{}
	require.NoError(t, json.Unmarshal(res.Data, &cancelled))
	assert.Equal(t, model.StatusCancelled, cancelled.Order.Status)
	assert.Equal(t, model.CancelledByUser, cancelled.Order.CancelledBy)
}

func TestAdminOrderRoutes(t *testing.T) {
	f := newFixture(t, Limiters{})
	user := auth.Owner{UserID: "user-1"}
	order := f.checkout(t, user, map[string]string{"Authorization": bearer(t, "user-1", "buyer@example.com")})
	admin := map[string]string{"Authorization": bearer(t, "admin-1", strings.ToUpper(adminEmail))}
	target := "/admin/orders/" + order.ID.String()

	code, res := f.do(t, http.MethodGet, "/admin/orders?status=pending&limit=10", "", admin)
	require.Equal(t, http.StatusOK, code)
	listed := struct {
		Count int `json:"count"`
	}{}
	require.NoError(t, json.Unmarshal(res.Data, &listed))
	assert.Equal(t, 1, listed.Count)

	code, _ = f.do(t, http.MethodPatch, target+"/status", `{"status":"shipped"}`, admin)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = f.do(t, http.MethodPatch, target+"/status", `{"status":"processing"}`, admin)
	assert.Equal(t, http.StatusOK, code)

	code, res = f.do(t, http.MethodPost, target+"/cancel", "", admin)
	require.Equal(t, http.StatusOK, code)
	cancelled := struct {
		Order model.Order `json:"order"`
	}{}
	require.NoError(t, json.Unmarshal(res.Data, &cancelled))
	assert.Equal(t, model.CancelledByAdmin, cancelled.Order.CancelledBy)
}

func TestAdminStatsRoute(t *testing.T) {
	f := newFixture(t, Limiters{})
	f.checkout(t, auth.Owner{UserID: "user-1"}, map[string]string{"Authorization": bearer(t, "user-1", "buyer@example.com")})
	admin := map[string]string{"Authorization": bearer(t, "admin-1", adminEmail)}
	buyer := map[string]string{"Authorization": bearer(t, "user-1", "buyer@example.com")}

	testCases := []struct {
		name         string
		target       string
		header       map[string]string
		expectedCode int
	}{
		{
			name:         "given admin should aggregate orders",
			target:       "/admin/stats?sort=units&order=asc",
			header:       admin,
			expectedCode: http.StatusOK,
		},
		{
			name:         "given non admin should return forbidden",
			target:       "/admin/stats",
			header:       buyer,
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "given no token should return unauthorized",
			target:       "/admin/stats",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "given unknown sort should return bad request",
			target:       "/admin/stats?sort=price",
			header:       admin,
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			code, res := f.do(t, http.MethodGet, tt.target, "", tt.header)
			require.Equal(t, tt.expectedCode, code, res.Message)
			if code != http.StatusOK {
				return
			}
			body := struct {
				Stats response.Stats `json:"stats"`
			}{}
			require.NoError(t, json.Unmarshal(res.Data, &body))
			assert.Equal(t, 1, body.Stats.Orders)
			require.Len(t, body.Stats.Products, 1)
			assert.Equal(t, "Monsoon Study", body.Stats.Products[0].Name)
			assert.Equal(t, "1199", body.Stats.Revenue.String())
		})
	}
}

func TestOrderRouteErrors(t *testing.T) {
	guest := map[string]string{constants.HEADER_GUEST_SESSION: guestSession}
	user := map[string]string{"Authorization": "Bearer placeholder"}

	testCases := []struct {
		name         string
		method       string
		target       string
		body         string
		header       map[string]string
		expectedCode int
	}{
		{
			name:         "given malformed body should return 400",
			method:       http.MethodPost,
			target:       "/orders/create-order",
			body:         `{"amount":`,
			header:       guest,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given no items should return 400",
			method:       http.MethodPost,
			target:       "/orders/create-order",
			body:         `{"amount":1199,"orderId":"order-1","items":[]}`,
			header:       guest,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given amount below one rupee should return 400",
			method:       http.MethodPost,
			target:       "/orders/create-order",
			body:         fmt.Sprintf(`{"amount":0,"orderId":"order-1","items":[%s]}`, framedA3JSON),
			header:       guest,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given amount not matching catalog total should return 400",
			method:       http.MethodPost,
			target:       "/orders/create-order",
			body:         fmt.Sprintf(`{"amount":1,"orderId":"order-1","items":[%s]}`, framedA3JSON),
			header:       guest,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "given forged signature should return 400",
			method: http.MethodPost,
			target: "/orders/confirm",
			body: fmt.Sprintf(
				`{"gatewayOrderId":"order_fake000001","paymentId":"pay_1","signature":"deadbeef","shippingInfo":%s}`,
				shippingJSON,
			),
			header:       guest,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given invalid pin code should return 400",
			method:       http.MethodPost,
			target:       "/orders/confirm",
			body:         `{"gatewayOrderId":"o","paymentId":"p","signature":"s","shippingInfo":{"pinCode":"12"}}`,
			header:       guest,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given no token should return 401 for order history",
			method:       http.MethodGet,
			target:       "/orders",
			header:       guest,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "given invalid token should return 401",
			method:       http.MethodGet,
			target:       "/orders",
			header:       user,
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Limiters{})
			code, res := f.do(t, tt.method, tt.target, tt.body, tt.header)
			assert.Equal(t, tt.expectedCode, code, res.Message)
			assert.Equal(t, "failed", res.Status)
		})
	}
}

func TestSignedInRouteErrors(t *testing.T) {
	f := newFixture(t, Limiters{})
	header := map[string]string{"Authorization": bearer(t, "user-1", "buyer@example.com")}

	code, _ := f.do(t, http.MethodGet, "/orders/not-a-uuid", "", header)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodGet, "/orders/4f6c2a8e-8d4b-4c8e-9a57-1b9f1d7c2e10", "", header)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodGet, "/admin/orders", "", header)
	assert.Equal(t, http.StatusForbidden, code)

	admin := map[string]string{"Authorization": bearer(t, "admin-1", adminEmail)}
	code, _ = f.do(t, http.MethodGet, "/admin/orders?limit=abc", "", admin)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.do(t, http.MethodGet, "/admin/orders?status=lost", "", admin)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateOrderRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(16), "create-order", 1, time.Minute)
	f := newFixture(t, Limiters{CreateOrder: limiter})
	guest := map[string]string{constants.HEADER_GUEST_SESSION: guestSession}
	body := fmt.Sprintf(`{"amount":1199,"orderId":"order-1","items":[%s]}`, framedA3JSON)

	code, _ := f.do(t, http.MethodPost, "/orders/create-order", body, guest)
	assert.Equal(t, http.StatusOK, code)

	code, res := f.do(t, http.MethodPost, "/orders/create-order", body, guest)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "failed", res.Status)
}
