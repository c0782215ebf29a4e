package errors

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth            = errors.New("missing authorization")
	ErrEmptySubject         = errors.New("missing subject")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrForbidden            = errors.New("forbidden")
	ErrMissingOwner         = errors.New("missing user or guest session")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUserNotFound         = errors.New("user not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCartNotSaved         = errors.New("cart could not be saved")
	ErrUnknownConfiguration = errors.New("unknown print configuration")
	ErrAmountMismatch       = errors.New("amount does not match cart total")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrCancelWindowClosed   = errors.New("order can no longer be cancelled")
	ErrReturnNotEligible    = errors.New("order is not eligible for return")
	ErrPaymentInvalid       = errors.New("invalid payment confirmation")
	ErrPaymentGateway       = errors.New("payment gateway unavailable")
	ErrRequestInFlight      = errors.New("request already in flight")
	ErrRateLimited          = errors.New("too many requests")
	ErrAddressNotFound      = errors.New("address not found")
	ErrPinCodeNotFound      = errors.New("pin code not found")
	ErrLocationUnavailable  = errors.New("pin code lookup unavailable")
)

// AppError carries a machine readable code and the HTTP status the error maps to.
type AppError struct {
	Err        error
	Code       string
	StatusCode int
}

func New(err error, code string, statusCode int) *AppError {
	return &AppError{Err: err, Code: code, StatusCode: statusCode}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

var statusCodes = map[error]int{
	ErrEmptyAuth:            http.StatusUnauthorized,
	ErrEmptySubject:         http.StatusUnauthorized,
	ErrTokenInvalid:         http.StatusUnauthorized,
	ErrForbidden:            http.StatusForbidden,
	ErrMissingOwner:         http.StatusBadRequest,
	ErrInvalidRequest:       http.StatusBadRequest,
	ErrUserNotFound:         http.StatusNotFound,
	ErrCartNotFound:         http.StatusNotFound,
	ErrCartItemNotFound:     http.StatusNotFound,
	ErrEmptyCart:            http.StatusBadRequest,
	ErrCartNotSaved:         http.StatusServiceUnavailable,
	ErrUnknownConfiguration: http.StatusBadRequest,
	ErrAmountMismatch:       http.StatusBadRequest,
	ErrOrderNotFound:        http.StatusNotFound,
	ErrInvalidTransition:    http.StatusConflict,
	ErrCancelWindowClosed:   http.StatusConflict,
	ErrReturnNotEligible:    http.StatusConflict,
	ErrPaymentInvalid:       http.StatusBadRequest,
	ErrPaymentGateway:       http.StatusBadGateway,
	ErrRequestInFlight:      http.StatusConflict,
	ErrRateLimited:          http.StatusTooManyRequests,
	ErrAddressNotFound:      http.StatusNotFound,
	ErrPinCodeNotFound:      http.StatusNotFound,
	ErrLocationUnavailable:  http.StatusBadGateway,
}

// StatusCode maps err to an HTTP status, defaulting to 500 for unknown errors.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	for target, code := range statusCodes {
		if errors.Is(err, target) {
			return code
		}
	}
	return http.StatusInternalServerError
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
