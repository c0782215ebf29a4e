package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/auth"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/internal/validate"
	"github.com/Alturino/framedarchive/order/internal/service"
	"github.com/Alturino/framedarchive/order/pkg/model"
	"github.com/Alturino/framedarchive/order/pkg/request"
	"github.com/Alturino/framedarchive/order/pkg/response"
)

const (
	actionCreateOrder  = "order-create"
	actionConfirmOrder = "order-confirm"
)

type Limiters struct {
	CreateOrder  *ratelimit.Limiter
	ConfirmOrder *ratelimit.Limiter
}

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(
	router *mux.Router,
	service *service.OrderService,
	authenticator *middleware.Authenticator,
	limiters Limiters,
	guard *inflight.Guard,
) {
	controller := OrderController{service: service}
	checkout := func(limiter *ratelimit.Limiter, action string, handler http.HandlerFunc) http.Handler {
		return middleware.RateLimit(limiter)(
			authenticator.OptionalAuth(middleware.SingleFlight(guard, action)(handler)),
		)
	}

	router.Handle("/orders/create-order", checkout(limiters.CreateOrder, actionCreateOrder, controller.CreatePaymentOrder)).
		Methods(http.MethodPost)
	router.Handle("/orders/confirm", checkout(limiters.ConfirmOrder, actionConfirmOrder, controller.ConfirmOrder)).
		Methods(http.MethodPost)

	orders := router.PathPrefix("/orders").Subrouter()
	orders.Use(authenticator.RequireAuth)
	orders.HandleFunc("", controller.GetUserOrders).Methods(http.MethodGet)
	orders.HandleFunc("/{orderId}", controller.GetOrder).Methods(http.MethodGet)
	orders.HandleFunc("/{orderId}/cancel", controller.CancelOrder).Methods(http.MethodPost)
	orders.HandleFunc("/{orderId}/return", controller.RequestReturn).Methods(http.MethodPost)

	admin := router.PathPrefix("/admin/orders").Subrouter()
	admin.Use(authenticator.RequireAuth, authenticator.AdminOnly)
	admin.HandleFunc("", controller.ListOrders).Methods(http.MethodGet)
	admin.HandleFunc("/{orderId}/status", controller.UpdateStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/{orderId}/cancel", controller.AdminCancelOrder).Methods(http.MethodPost)

	stats := router.PathPrefix("/admin/stats").Subrouter()
	stats.Use(authenticator.RequireAuth, authenticator.AdminOnly)
	stats.HandleFunc("", controller.Stats).Methods(http.MethodGet)
}

func decodeRequest(r *http.Request, logger zerolog.Logger, dst interface{}) error {
	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body with error=%w: %w", inErrors.ErrInvalidRequest, err)
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.Get().StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("failed validating request body with error=%w: %w", inErrors.ErrInvalidRequest, err)
	}
	logger.Trace().Msg("validated request body")
	return nil
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["orderId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing orderId=%s with error=%w", raw, inErrors.ErrInvalidRequest)
	}
	return id, nil
}

func writeOrder(c context.Context, w http.ResponseWriter, message string, order model.Order) {
	inHttp.WriteSuccessResponse(c, w, message, map[string]interface{}{"order": order})
}

func (s OrderController) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CreatePaymentOrder")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController CreatePaymentOrder").
		Str(log.KeyOwner, owner.Key()).
		Logger()

	reqBody := request.CreatePaymentOrder{}
	if err := decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating payment order").Logger()
	logger.Info().Msg("creating payment order")
	c = logger.WithContext(c)
	paymentOrder, err := s.service.CreatePaymentOrder(c, owner, reqBody)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyGatewayOrderID, paymentOrder.ID).Msg("created payment order")

	inHttp.WriteSuccessResponse(c, w, "created payment order", map[string]interface{}{
		"order": paymentOrder,
	})
}

func (s OrderController) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ConfirmOrder")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController ConfirmOrder").
		Str(log.KeyOwner, owner.Key()).
		Logger()

	reqBody := request.ConfirmOrder{}
	if err := decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "confirming order").Logger()
	logger.Info().Msg("confirming order")
	c = logger.WithContext(c)
	order, err := s.service.ConfirmOrder(c, owner, reqBody)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("confirmed order")

	writeOrder(c, w, "confirmed order", order)
}

func (s OrderController) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController GetUserOrders")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController GetUserOrders").
		Str(log.KeyUserID, owner.UserID).
		Str(log.KeyProcess, "finding orders").
		Logger()

	logger.Info().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := s.service.GetUserOrders(c, owner.UserID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	res := response.NewOrders(orders)
	inHttp.WriteSuccessResponse(c, w, "found orders", map[string]interface{}{
		"orders": res.Orders,
		"count":  res.Count,
	})
}

// ownerOrderAction runs action on the order named in the path on behalf of the signed-in user.
func (s OrderController) ownerOrderAction(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	process string,
	action func(c context.Context, owner auth.Owner, id uuid.UUID) (model.Order, error),
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Str(log.KeyUserID, owner.UserID).
		Logger()

	id, err := orderIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyOrderID, id.String()).Str(log.KeyProcess, process).Logger()
	logger.Info().Msg(process)
	c = logger.WithContext(c)
	order, err := action(c, owner, id)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyOrderStatus, order.Status).Msg("done " + process)

	writeOrder(c, w, "done "+process, order)
}

func (s OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	s.ownerOrderAction(w, r, "OrderController GetOrder", "finding order", s.service.GetOrder)
}

func (s OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	s.ownerOrderAction(w, r, "OrderController CancelOrder", "cancelling order", s.service.CancelOrder)
}

func (s OrderController) RequestReturn(w http.ResponseWriter, r *http.Request) {
	s.ownerOrderAction(w, r, "OrderController RequestReturn", "requesting return", s.service.RequestReturn)
}

func (s OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController ListOrders").Logger()

	query := r.URL.Query()
	param := request.FindOrders{Status: query.Get("status")}
	for name, dst := range map[string]*int32{"limit": &param.Limit, "offset": &param.Offset} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			err = fmt.Errorf("failed parsing %s=%s with error=%w", name, raw, inErrors.ErrInvalidRequest)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		*dst = int32(v)
	}
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating query with error=%w: %w", inErrors.ErrInvalidRequest, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyOrderStatus, param.Status).Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := s.service.ListOrders(c, param)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	res := response.NewOrders(orders)
	inHttp.WriteSuccessResponse(c, w, "found orders", map[string]interface{}{
		"orders": res.Orders,
		"count":  res.Count,
	})
}

func (s OrderController) Stats(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Stats")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController Stats").Logger()

	query := r.URL.Query()
	param := request.FindStats{SortBy: query.Get("sort"), Order: query.Get("order")}
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating query with error=%w: %w", inErrors.ErrInvalidRequest, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyStatsSort, param.SortBy).Str(log.KeyProcess, "aggregating orders").Logger()
	logger.Info().Msg("aggregating orders")
	c = logger.WithContext(c)
	stats, err := s.service.Stats(c, param)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyOrders, stats.Orders).Msg("aggregated orders")

	inHttp.WriteSuccessResponse(c, w, "aggregated orders", map[string]interface{}{"stats": stats})
}

func (s OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController UpdateStatus")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController UpdateStatus").Logger()

	id, err := orderIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	reqBody := request.UpdateOrderStatus{}
	if err = decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().
		Str(log.KeyOrderID, id.String()).
		Str(log.KeyOrderStatus, reqBody.Status).
		Str(log.KeyProcess, "updating order status").
		Logger()
	logger.Info().Msg("updating order status")
	c = logger.WithContext(c)
	order, err := s.service.UpdateStatus(c, id, reqBody.Status)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated order status")

	writeOrder(c, w, "updated order status", order)
}

func (s OrderController) AdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	s.ownerOrderAction(
		w,
		r,
		"OrderController AdminCancelOrder",
		"cancelling order",
		func(c context.Context, _ auth.Owner, id uuid.UUID) (model.Order, error) {
			return s.service.AdminCancelOrder(c, id)
		},
	)
}
