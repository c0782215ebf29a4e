package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/auth"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/order/pkg/model"
)

// UpdateStatus moves order id to status on behalf of an admin. Cancellation goes through
// the admin cancel window.
func (s *OrderService) UpdateStatus(c context.Context, id uuid.UUID, status string) (model.Order, error) {
	if status == model.StatusCancelled {
		return s.AdminCancelOrder(c, id)
	}

	c, span := otel.Tracer.Start(c, "OrderService UpdateStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService UpdateStatus").
		Str(log.KeyOrderID, id.String()).
		Str(log.KeyOrderStatus, status).
		Logger()

	order, err := s.store.FindOrderByID(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	return s.transition(c, order, status, "")
}

// CancelOrder cancels an order of owner while it is pending or processing.
func (s *OrderService) CancelOrder(c context.Context, owner auth.Owner, id uuid.UUID) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService CancelOrder")
	defer span.End()

	order, err := s.GetOrder(c, owner, id)
	if err != nil {
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	if !order.CanUserCancel() {
		err = fmt.Errorf(
			"failed cancelling order in status=%s with error=%w",
			order.Status,
			inErrors.ErrInvalidTransition,
		)
		inErrors.HandleError(err, span)
		zerolog.Ctx(c).Warn().Err(err).Str(log.KeyOrderID, id.String()).Msg(err.Error())
		return model.Order{}, err
	}
	return s.transition(c, order, model.StatusCancelled, model.CancelledByUser)
}

// AdminCancelOrder cancels an order that has not shipped and is at most 48 hours old.
func (s *OrderService) AdminCancelOrder(c context.Context, id uuid.UUID) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService AdminCancelOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService AdminCancelOrder").
		Str(log.KeyOrderID, id.String()).
		Logger()

	order, err := s.store.FindOrderByID(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	if !order.CanAdminCancel(s.now()) {
		cause := inErrors.ErrCancelWindowClosed
		if !order.CanUserCancel() {
			cause = inErrors.ErrInvalidTransition
		}
		err = fmt.Errorf("failed cancelling order in status=%s with error=%w", order.Status, cause)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	return s.transition(c, order, model.StatusCancelled, model.CancelledByAdmin)
}

// RequestReturn flags a delivered order of owner for return within seven days of delivery.
func (s *OrderService) RequestReturn(c context.Context, owner auth.Owner, id uuid.UUID) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService RequestReturn")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService RequestReturn").
		Str(log.KeyOrderID, id.String()).
		Logger()

	order, err := s.GetOrder(c, owner, id)
	if err != nil {
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	now := s.now()
	if !order.CanRequestReturn(now) {
		err = fmt.Errorf("failed requesting return with error=%w", inErrors.ErrReturnNotEligible)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return model.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "requesting return").Logger()
	logger.Info().Msg("requesting return")
	order, err = s.store.RequestOrderReturn(c, id, now)
	if err != nil {
		err = fmt.Errorf("failed requesting return with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	logger.Info().Msg("requested return")
	return order, nil
}

func (s *OrderService) transition(
	c context.Context,
	order model.Order,
	status string,
	cancelledBy string,
) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService transition")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyOrderID, order.ID.String()).
		Str(log.KeyOrderStatus, status).
		Str(log.KeyProcess, "updating order status").
		Logger()

	next, ok := order.Transition(status, s.now(), cancelledBy)
	if !ok {
		err := fmt.Errorf(
			"failed moving order from status=%s to status=%s with error=%w",
			order.Status,
			status,
			inErrors.ErrInvalidTransition,
		)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return model.Order{}, err
	}

	logger.Info().Msg("updating order status")
	updated, err := s.store.UpdateOrderStatus(c, next)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		if errors.Is(err, inErrors.ErrOrderNotFound) {
			logger.Warn().Err(err).Msg(err.Error())
		} else {
			logger.Error().Err(err).Msg(err.Error())
		}
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	logger.Info().Msg("updated order status")
	return updated, nil
}
