package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, status, items, total, payment_id, gateway_order_id, shipping_info,
    order_date, processed_at, shipped_at, delivered_at, cancelled_at, cancelled_by,
    return_requested, return_requested_at, placed_by`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row scanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Status,
		&i.Items,
		&i.Total,
		&i.PaymentID,
		&i.GatewayOrderID,
		&i.ShippingInfo,
		&i.OrderDate,
		&i.ProcessedAt,
		&i.ShippedAt,
		&i.DeliveredAt,
		&i.CancelledAt,
		&i.CancelledBy,
		&i.ReturnRequested,
		&i.ReturnRequestedAt,
		&i.PlacedBy,
	)
	return i, err
}

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (id, user_id, status, items, total, payment_id, gateway_order_id, shipping_info, order_date, placed_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns

type InsertOrderParams struct {
	ID             uuid.UUID
	UserID         string
	Status         string
	Items          []byte
	Total          pgtype.Numeric
	PaymentID      string
	GatewayOrderID string
	ShippingInfo   []byte
	OrderDate      pgtype.Timestamptz
	PlacedBy       string
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.ID,
		arg.UserID,
		arg.Status,
		arg.Items,
		arg.Total,
		arg.PaymentID,
		arg.GatewayOrderID,
		arg.ShippingInfo,
		arg.OrderDate,
		arg.PlacedBy,
	)
	return scanOrder(row)
}

const findOrderById = `-- name: FindOrderById :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1
`

func (q *Queries) FindOrderById(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, findOrderById, id))
}

const findOrderByGatewayOrderId = `-- name: FindOrderByGatewayOrderId :one
SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = $1
`

func (q *Queries) FindOrderByGatewayOrderId(ctx context.Context, gatewayOrderID string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, findOrderByGatewayOrderId, gatewayOrderID))
}

const findOrdersByUserId = `-- name: FindOrdersByUserId :many
SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date DESC
`

func (q *Queries) FindOrdersByUserId(ctx context.Context, userID string) ([]Order, error) {
	rows, err := q.db.Query(ctx, findOrdersByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findOrders = `-- name: FindOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1::text)
ORDER BY order_date DESC
LIMIT $2 OFFSET $3
`

type FindOrdersParams struct {
	Status pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) FindOrders(ctx context.Context, arg FindOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, findOrders, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET
    status = $2,
    processed_at = COALESCE($3, processed_at),
    shipped_at = COALESCE($4, shipped_at),
    delivered_at = COALESCE($5, delivered_at),
    cancelled_at = COALESCE($6, cancelled_at),
    cancelled_by = COALESCE($7, cancelled_by)
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID          uuid.UUID
	Status      string
	ProcessedAt pgtype.Timestamptz
	ShippedAt   pgtype.Timestamptz
	DeliveredAt pgtype.Timestamptz
	CancelledAt pgtype.Timestamptz
	CancelledBy pgtype.Text
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus,
		arg.ID,
		arg.Status,
		arg.ProcessedAt,
		arg.ShippedAt,
		arg.DeliveredAt,
		arg.CancelledAt,
		arg.CancelledBy,
	)
	return scanOrder(row)
}

const requestOrderReturn = `-- name: RequestOrderReturn :one
UPDATE orders SET return_requested = TRUE, return_requested_at = $2
WHERE id = $1
RETURNING ` + orderColumns

type RequestOrderReturnParams struct {
	ID                uuid.UUID
	ReturnRequestedAt pgtype.Timestamptz
}

func (q *Queries) RequestOrderReturn(ctx context.Context, arg RequestOrderReturnParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, requestOrderReturn, arg.ID, arg.ReturnRequestedAt))
}
