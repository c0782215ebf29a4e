package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/order/pkg/model"
)

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func fromTimestamptz(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	at := t.Time
	return &at
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func toModel(o repository.Order) (model.Order, error) {
	items := []model.OrderItem{}
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return model.Order{}, fmt.Errorf("failed decoding items of order id=%s with error=%w", o.ID, err)
	}
	shipping := model.ShippingInfo{}
	if err := json.Unmarshal(o.ShippingInfo, &shipping); err != nil {
		return model.Order{}, fmt.Errorf("failed decoding shipping info of order id=%s with error=%w", o.ID, err)
	}
	return model.Order{
		ID:                o.ID,
		UserID:            o.UserID,
		PlacedBy:          o.PlacedBy,
		Status:            o.Status,
		OrderDate:         o.OrderDate.Time,
		ProcessedAt:       fromTimestamptz(o.ProcessedAt),
		ShippedAt:         fromTimestamptz(o.ShippedAt),
		DeliveredAt:       fromTimestamptz(o.DeliveredAt),
		CancelledAt:       fromTimestamptz(o.CancelledAt),
		CancelledBy:       o.CancelledBy.String,
		ReturnRequested:   o.ReturnRequested,
		ReturnRequestedAt: fromTimestamptz(o.ReturnRequestedAt),
		Items:             items,
		Total:             fromNumeric(o.Total),
		PaymentID:         o.PaymentID,
		GatewayOrderID:    o.GatewayOrderID,
		ShippingInfo:      shipping,
	}, nil
}

func toModels(orders []repository.Order) ([]model.Order, error) {
	res := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		order, err := toModel(o)
		if err != nil {
			return nil, err
		}
		res = append(res, order)
	}
	return res, nil
}
