package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/framedarchive/internal/config"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
)

var errRejected = errors.New("rejected by gateway")

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type RazorpayClient struct {
	cfg     config.Payment
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Order]
}

func NewRazorpayClient(cfg config.Payment) *RazorpayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker[Order](gobreaker.Settings{
		Name:        "razorpay",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
	})
	return &RazorpayClient{
		cfg:     cfg,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport), Timeout: timeout},
		breaker: breaker,
	}
}

func (r *RazorpayClient) KeyID() string {
	return r.cfg.KeyID
}

func (r *RazorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(r.cfg.KeySecret, orderID, paymentID, signature)
}

func (r *RazorpayClient) CreateOrder(c context.Context, param CreateOrderParams) (Order, error) {
	c, span := otel.Tracer.Start(c, "RazorpayClient CreateOrder")
	defer span.End()

	body, err := json.Marshal(param)
	if err != nil {
		err = fmt.Errorf("failed marshaling gateway order with error=%w", err)
		inErrors.HandleError(err, span)
		return Order{}, err
	}
	order, err := r.execute(c, http.MethodPost, "/orders", body)
	if err != nil {
		inErrors.HandleError(err, span)
		return Order{}, err
	}
	return order, nil
}

func (r *RazorpayClient) FetchOrder(c context.Context, orderID string) (Order, error) {
	c, span := otel.Tracer.Start(c, "RazorpayClient FetchOrder")
	defer span.End()

	order, err := r.execute(c, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		inErrors.HandleError(err, span)
		return Order{}, err
	}
	return order, nil
}

func (r *RazorpayClient) execute(c context.Context, method, path string, body []byte) (Order, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RazorpayClient execute").
		Str("method", method).
		Str("path", path).
		Logger()

	order, err := r.breaker.Execute(func() (Order, error) {
		return r.do(c, method, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("failed calling gateway with error=%w: %w", inErrors.ErrPaymentGateway, err)
		}
		logger.Error().Err(err).Str("breaker", r.breaker.State().String()).Msg(err.Error())
		return Order{}, err
	}
	logger.Trace().Str(log.KeyGatewayOrderID, order.ID).Msg("called gateway")
	return order, nil
}

func (r *RazorpayClient) do(c context.Context, method, path string, body []byte) (Order, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(c, method, strings.TrimRight(r.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return Order{}, fmt.Errorf("failed creating gateway request with error=%w", err)
	}
	req.SetBasicAuth(r.cfg.KeyID, r.cfg.KeySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("failed calling gateway with error=%w: %w", inErrors.ErrPaymentGateway, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Order{}, fmt.Errorf("failed reading gateway response with error=%w: %w", inErrors.ErrPaymentGateway, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		apiErr := apiError{}
		_ = json.Unmarshal(raw, &apiErr)
		err = fmt.Errorf(
			"gateway responded status=%d code=%s description=%s with error=%w",
			res.StatusCode,
			apiErr.Error.Code,
			apiErr.Error.Description,
			inErrors.ErrPaymentGateway,
		)
		if res.StatusCode < http.StatusInternalServerError {
			err = fmt.Errorf("%w: %w", err, errRejected)
		}
		return Order{}, err
	}

	order := Order{}
	if err := json.Unmarshal(raw, &order); err != nil {
		return Order{}, fmt.Errorf("failed decoding gateway order with error=%w: %w", inErrors.ErrPaymentGateway, err)
	}
	return order, nil
}
