package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	cartModel "github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/internal/auth"
	"github.com/Alturino/framedarchive/internal/common/constants"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/metrics"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/order/internal/payment"
	"github.com/Alturino/framedarchive/order/internal/repository"
	"github.com/Alturino/framedarchive/order/pkg/model"
	"github.com/Alturino/framedarchive/order/pkg/request"
	"github.com/Alturino/framedarchive/order/pkg/response"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

// Carts is the view of the cart service the checkout needs.
type Carts interface {
	Current(c context.Context, owner auth.Owner) []cartModel.CartItem
	Clear(c context.Context, owner auth.Owner) error
}

type OrderService struct {
	store    repository.OrderStore
	gateway  payment.Gateway
	catalog  *pricing.Catalog
	carts    Carts
	currency string
	now      func() time.Time
}

func NewOrderService(
	store repository.OrderStore,
	gateway payment.Gateway,
	catalog *pricing.Catalog,
	carts Carts,
	currency string,
) *OrderService {
	if currency == "" {
		currency = "INR"
	}
	return &OrderService{
		store:    store,
		gateway:  gateway,
		catalog:  catalog,
		carts:    carts,
		currency: currency,
		now:      time.Now,
	}
}

// toMinorUnits converts a rupee amount to paise.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func userIDOf(owner auth.Owner) string {
	if owner.IsGuest() {
		return constants.GUEST_USER_ID
	}
	return owner.UserID
}

// priceItems re-derives the price of every line from the catalog. Client prices are ignored.
func (s *OrderService) priceItems(items []cartModel.CartItem) ([]model.OrderItem, error) {
	priced := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		price, err := s.catalog.Price(item.PrintType, item.Variant, item.Size)
		if err != nil {
			return nil, fmt.Errorf(
				"failed pricing item id=%d %s/%s/%s with error=%w",
				item.ID,
				item.PrintType,
				item.Variant,
				item.Size,
				err,
			)
		}
		priced = append(priced, model.NewOrderItem(item, price))
	}
	return priced, nil
}

// CreatePaymentOrder checks the client amount against the catalog total of items and opens
// a gateway order for it.
func (s *OrderService) CreatePaymentOrder(
	c context.Context,
	owner auth.Owner,
	param request.CreatePaymentOrder,
) (response.PaymentOrder, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreatePaymentOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreatePaymentOrder").
		Str(log.KeyOwner, owner.Key()).
		Str(log.KeyOrderID, param.OrderID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "pricing items").Logger()
	logger.Info().Msg("pricing items")
	items, err := s.priceItems(param.Items)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentOrder{}, err
	}
	total := model.Total(items)
	logger = logger.With().Str(log.KeyAmount, total.String()).Logger()
	logger.Info().Msg("priced items")

	if !param.Amount.Equal(total) {
		metrics.AmountMismatches.Inc()
		err = fmt.Errorf(
			"failed checking amount=%s against total=%s with error=%w",
			param.Amount,
			total,
			inErrors.ErrAmountMismatch,
		)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return response.PaymentOrder{}, err
	}

	hashes := make([]string, 0, len(items))
	for _, item := range items {
		hashes = append(hashes, item.Hash)
	}
	rawHashes, err := json.Marshal(hashes)
	if err != nil {
		err = fmt.Errorf("failed encoding item hashes with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentOrder{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "creating gateway order").Logger()
	logger.Info().Msg("creating gateway order")
	gatewayOrder, err := s.gateway.CreateOrder(c, payment.CreateOrderParams{
		Amount:   toMinorUnits(total),
		Currency: s.currency,
		Receipt:  param.OrderID,
		Notes: map[string]string{
			"orderId": param.OrderID,
			"items":   string(rawHashes),
		},
	})
	if err != nil {
		err = fmt.Errorf("failed creating gateway order with error=%w", err)
		if !errors.Is(err, inErrors.ErrPaymentGateway) {
			err = fmt.Errorf("%w: %w", inErrors.ErrPaymentGateway, err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentOrder{}, err
	}
	logger.Info().Str(log.KeyGatewayOrderID, gatewayOrder.ID).Msg("created gateway order")

	return response.PaymentOrder{
		ID:       gatewayOrder.ID,
		Amount:   gatewayOrder.Amount,
		Currency: gatewayOrder.Currency,
		Receipt:  gatewayOrder.Receipt,
		Status:   gatewayOrder.Status,
		KeyID:    s.gateway.KeyID(),
		Hashes:   hashes,
	}, nil
}

// ConfirmOrder records the order paid for by a verified gateway payment. The lines and the
// total come from the cart held on the server, priced from the catalog. Confirming the same
// gateway order twice returns the order recorded the first time.
func (s *OrderService) ConfirmOrder(
	c context.Context,
	owner auth.Owner,
	param request.ConfirmOrder,
) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService ConfirmOrder")
	defer span.End()

	userID := userIDOf(owner)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ConfirmOrder").
		Str(log.KeyOwner, owner.Key()).
		Str(log.KeyGatewayOrderID, param.GatewayOrderID).
		Str(log.KeyPaymentID, param.PaymentID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying payment signature").Logger()
	logger.Info().Msg("verifying payment signature")
	if !s.gateway.VerifySignature(param.GatewayOrderID, param.PaymentID, param.Signature) {
		err := fmt.Errorf("failed verifying payment signature with error=%w", inErrors.ErrPaymentInvalid)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	logger.Info().Msg("verified payment signature")

	logger = logger.With().Str(log.KeyProcess, "finding recorded order").Logger()
	existing, err := s.store.FindOrderByGatewayOrderID(c, param.GatewayOrderID)
	switch {
	case err == nil:
		return s.recorded(c, existing, owner)
	case !errors.Is(err, inErrors.ErrOrderNotFound):
		err = fmt.Errorf("failed finding recorded order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "pricing cart").Logger()
	logger.Info().Msg("pricing cart")
	cart := s.carts.Current(c, owner)
	if len(cart) == 0 {
		err = fmt.Errorf("failed pricing cart with error=%w", inErrors.ErrEmptyCart)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	items, err := s.priceItems(cart)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	total := model.Total(items)
	logger = logger.With().Str(log.KeyAmount, total.String()).Logger()
	logger.Info().Msg("priced cart")

	logger = logger.With().Str(log.KeyProcess, "fetching gateway order").Logger()
	logger.Info().Msg("fetching gateway order")
	gatewayOrder, err := s.gateway.FetchOrder(c, param.GatewayOrderID)
	if err != nil {
		err = fmt.Errorf("failed fetching gateway order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	if gatewayOrder.Amount != toMinorUnits(total) {
		metrics.AmountMismatches.Inc()
		err = fmt.Errorf(
			"failed checking paid amount=%d against cart total=%s with error=%w",
			gatewayOrder.Amount,
			total,
			inErrors.ErrAmountMismatch,
		)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	logger.Info().Msg("fetched gateway order")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	order, err := s.store.InsertOrder(c, model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		PlacedBy:       owner.Key(),
		Status:         model.StatusPending,
		OrderDate:      s.now(),
		Items:          items,
		Total:          total,
		PaymentID:      param.PaymentID,
		GatewayOrderID: param.GatewayOrderID,
		ShippingInfo:   param.ShippingInfo,
	})
	if errors.Is(err, repository.ErrDuplicateOrder) {
		logger.Warn().Msg("order recorded concurrently")
		existing, err = s.store.FindOrderByGatewayOrderID(c, param.GatewayOrderID)
		if err != nil {
			err = fmt.Errorf("failed finding recorded order with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return model.Order{}, err
		}
		return s.recorded(c, existing, owner)
	}
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("inserted order")

	ownerLabel := "user"
	if owner.IsGuest() {
		ownerLabel = "guest"
	}
	metrics.OrdersCreated.WithLabelValues(ownerLabel).Inc()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	if err := s.carts.Clear(c, owner); err != nil {
		logger.Warn().Err(err).Msg("failed clearing cart after order")
	} else {
		logger.Info().Msg("cleared cart")
	}
	return order, nil
}

// placedBy reports whether order was confirmed by owner. Rows written before placed_by existed
// only match signed-in users.
func placedBy(order model.Order, owner auth.Owner) bool {
	if order.PlacedBy != "" {
		return order.PlacedBy == owner.Key()
	}
	return !owner.IsGuest() && order.UserID == owner.UserID
}

func (s *OrderService) recorded(c context.Context, order model.Order, owner auth.Owner) (model.Order, error) {
	if !placedBy(order, owner) {
		err := fmt.Errorf(
			"failed confirming gateway order of another owner with error=%w",
			inErrors.ErrPaymentInvalid,
		)
		zerolog.Ctx(c).Warn().Err(err).Str(log.KeyOrderID, order.ID.String()).Msg(err.Error())
		return model.Order{}, err
	}
	zerolog.Ctx(c).Info().Str(log.KeyOrderID, order.ID.String()).Msg("order already recorded")
	return order, nil
}

// GetUserOrders lists the orders of userID, newest first.
func (s *OrderService) GetUserOrders(c context.Context, userID string) ([]model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService GetUserOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService GetUserOrders").
		Str(log.KeyUserID, userID).
		Str(log.KeyProcess, "finding orders").
		Logger()

	logger.Info().Msg("finding orders")
	orders, err := s.store.FindOrdersByUserID(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")
	return orders, nil
}

// GetOrder finds order id. Orders of other users are reported as not found.
func (s *OrderService) GetOrder(c context.Context, owner auth.Owner, id uuid.UUID) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService GetOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService GetOrder").
		Str(log.KeyOrderID, id.String()).
		Str(log.KeyProcess, "finding order").
		Logger()

	logger.Info().Msg("finding order")
	order, err := s.store.FindOrderByID(c, id)
	if err == nil && order.UserID != owner.UserID {
		err = inErrors.ErrOrderNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	logger.Info().Msg("found order")
	return order, nil
}

func (s *OrderService) ListOrders(c context.Context, param request.FindOrders) ([]model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ListOrders").
		Str(log.KeyOrderStatus, param.Status).
		Str(log.KeyProcess, "finding orders").
		Logger()

	limit := param.Limit
	if limit == 0 {
		limit = 50
	}
	logger.Info().Msg("finding orders")
	orders, err := s.store.FindOrders(c, param.Status, limit, param.Offset)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")
	return orders, nil
}
