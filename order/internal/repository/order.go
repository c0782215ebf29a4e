package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Alturino/framedarchive/order/pkg/model"
)

var ErrDuplicateOrder = errors.New("order already recorded for gateway order")

type OrderStore interface {
	// InsertOrder returns ErrDuplicateOrder when the gateway order id is already recorded.
	InsertOrder(c context.Context, order model.Order) (model.Order, error)
	FindOrderByID(c context.Context, id uuid.UUID) (model.Order, error)
	FindOrderByGatewayOrderID(c context.Context, gatewayOrderID string) (model.Order, error)
	// FindOrdersByUserID lists the orders of userID, newest first.
	FindOrdersByUserID(c context.Context, userID string) ([]model.Order, error)
	FindOrders(c context.Context, status string, limit int32, offset int32) ([]model.Order, error)
	UpdateOrderStatus(c context.Context, order model.Order) (model.Order, error)
	RequestOrderReturn(c context.Context, id uuid.UUID, at time.Time) (model.Order, error)
}
