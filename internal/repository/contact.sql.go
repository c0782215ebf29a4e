package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertContactMessage = `-- name: InsertContactMessage :one
INSERT INTO contact_messages (id, name, email, message) VALUES ($1, $2, $3, $4)
RETURNING id, name, email, message, created_at
`

type InsertContactMessageParams struct {
	ID      uuid.UUID
	Name    string
	Email   string
	Message string
}

func (q *Queries) InsertContactMessage(
	ctx context.Context,
	arg InsertContactMessageParams,
) (ContactMessage, error) {
	row := q.db.QueryRow(ctx, insertContactMessage, arg.ID, arg.Name, arg.Email, arg.Message)
	var i ContactMessage
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Message, &i.CreatedAt)
	return i, err
}
