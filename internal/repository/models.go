package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             string
	Cart           []byte
	Address        []byte
	LastMergeToken pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type Order struct {
	ID                uuid.UUID
	UserID            string
	Status            string
	Items             []byte
	Total             pgtype.Numeric
	PaymentID         string
	GatewayOrderID    string
	ShippingInfo      []byte
	OrderDate         pgtype.Timestamptz
	ProcessedAt       pgtype.Timestamptz
	ShippedAt         pgtype.Timestamptz
	DeliveredAt       pgtype.Timestamptz
	CancelledAt       pgtype.Timestamptz
	CancelledBy       pgtype.Text
	ReturnRequested   bool
	ReturnRequestedAt pgtype.Timestamptz
	PlacedBy          string
}

type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt pgtype.Timestamptz
}
