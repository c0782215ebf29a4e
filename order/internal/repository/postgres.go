package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/order/pkg/model"
)

const uniqueViolation = "23505"

type PostgresOrderStore struct {
	queries *repository.Queries
}

func NewPostgresOrderStore(queries *repository.Queries) *PostgresOrderStore {
	return &PostgresOrderStore{queries: queries}
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf(format+" with error=%w", append(args, inErrors.ErrOrderNotFound)...)
	}
	return fmt.Errorf(format+" with error=%w", append(args, err)...)
}

func (s *PostgresOrderStore) InsertOrder(c context.Context, order model.Order) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore InsertOrder")
	defer span.End()

	items, err := json.Marshal(order.Items)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed encoding order items with error=%w", err)
	}
	shipping, err := json.Marshal(order.ShippingInfo)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed encoding shipping info with error=%w", err)
	}

	inserted, err := s.queries.InsertOrder(c, repository.InsertOrderParams{
		ID:             order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		Items:          items,
		Total:          numeric(order.Total),
		PaymentID:      order.PaymentID,
		GatewayOrderID: order.GatewayOrderID,
		ShippingInfo:   shipping,
		OrderDate:      pgtype.Timestamptz{Time: order.OrderDate, Valid: true},
		PlacedBy:       order.PlacedBy,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = fmt.Errorf("failed inserting order gatewayOrderId=%s with error=%w", order.GatewayOrderID, ErrDuplicateOrder)
		} else {
			err = fmt.Errorf("failed inserting order with error=%w", err)
		}
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	return toModel(inserted)
}

func (s *PostgresOrderStore) FindOrderByID(c context.Context, id uuid.UUID) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore FindOrderByID")
	defer span.End()

	order, err := s.queries.FindOrderById(c, id)
	if err != nil {
		err = notFound(err, "failed finding order id=%s", id)
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	return toModel(order)
}

func (s *PostgresOrderStore) FindOrderByGatewayOrderID(c context.Context, gatewayOrderID string) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore FindOrderByGatewayOrderID")
	defer span.End()

	order, err := s.queries.FindOrderByGatewayOrderId(c, gatewayOrderID)
	if err != nil {
		err = notFound(err, "failed finding order gatewayOrderId=%s", gatewayOrderID)
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	return toModel(order)
}

func (s *PostgresOrderStore) FindOrdersByUserID(c context.Context, userID string) ([]model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore FindOrdersByUserID")
	defer span.End()

	orders, err := s.queries.FindOrdersByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		return nil, err
	}
	return toModels(orders)
}

func (s *PostgresOrderStore) FindOrders(
	c context.Context,
	status string,
	limit int32,
	offset int32,
) ([]model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore FindOrders")
	defer span.End()

	orders, err := s.queries.FindOrders(c, repository.FindOrdersParams{
		Status: text(status),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		return nil, err
	}
	return toModels(orders)
}

func (s *PostgresOrderStore) UpdateOrderStatus(c context.Context, order model.Order) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore UpdateOrderStatus")
	defer span.End()

	updated, err := s.queries.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{
		ID:          order.ID,
		Status:      order.Status,
		ProcessedAt: timestamptz(order.ProcessedAt),
		ShippedAt:   timestamptz(order.ShippedAt),
		DeliveredAt: timestamptz(order.DeliveredAt),
		CancelledAt: timestamptz(order.CancelledAt),
		CancelledBy: text(order.CancelledBy),
	})
	if err != nil {
		err = notFound(err, "failed updating status of order id=%s", order.ID)
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	return toModel(updated)
}

func (s *PostgresOrderStore) RequestOrderReturn(c context.Context, id uuid.UUID, at time.Time) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresOrderStore RequestOrderReturn")
	defer span.End()

	updated, err := s.queries.RequestOrderReturn(c, repository.RequestOrderReturnParams{
		ID:                id,
		ReturnRequestedAt: pgtype.Timestamptz{Time: at, Valid: true},
	})
	if err != nil {
		err = notFound(err, "failed requesting return of order id=%s", id)
		inErrors.HandleError(err, span)
		return model.Order{}, err
	}
	return toModel(updated)
}
