package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const findUserCart = `-- name: FindUserCart :one
SELECT cart FROM users WHERE id = $1
`

func (q *Queries) FindUserCart(ctx context.Context, id string) ([]byte, error) {
	row := q.db.QueryRow(ctx, findUserCart, id)
	var cart []byte
	err := row.Scan(&cart)
	return cart, err
}

const ensureUser = `-- name: EnsureUser :exec
INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING
`

func (q *Queries) EnsureUser(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, ensureUser, id)
	return err
}

const findUserCartForUpdate = `-- name: FindUserCartForUpdate :one
SELECT cart, last_merge_token FROM users WHERE id = $1 FOR UPDATE
`

type FindUserCartForUpdateRow struct {
	Cart           []byte
	LastMergeToken pgtype.Text
}

func (q *Queries) FindUserCartForUpdate(ctx context.Context, id string) (FindUserCartForUpdateRow, error) {
	row := q.db.QueryRow(ctx, findUserCartForUpdate, id)
	var i FindUserCartForUpdateRow
	err := row.Scan(&i.Cart, &i.LastMergeToken)
	return i, err
}

const upsertUserCart = `-- name: UpsertUserCart :exec
INSERT INTO users (id, cart) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET cart = EXCLUDED.cart, updated_at = NOW()
`

type UpsertUserCartParams struct {
	ID   string
	Cart []byte
}

func (q *Queries) UpsertUserCart(ctx context.Context, arg UpsertUserCartParams) error {
	_, err := q.db.Exec(ctx, upsertUserCart, arg.ID, arg.Cart)
	return err
}

const updateUserMergedCart = `-- name: UpdateUserMergedCart :exec
UPDATE users SET cart = $2, last_merge_token = $3, updated_at = NOW() WHERE id = $1
`

type UpdateUserMergedCartParams struct {
	ID             string
	Cart           []byte
	LastMergeToken pgtype.Text
}

func (q *Queries) UpdateUserMergedCart(ctx context.Context, arg UpdateUserMergedCartParams) error {
	_, err := q.db.Exec(ctx, updateUserMergedCart, arg.ID, arg.Cart, arg.LastMergeToken)
	return err
}

const findUserAddress = `-- name: FindUserAddress :one
SELECT address FROM users WHERE id = $1
`

func (q *Queries) FindUserAddress(ctx context.Context, id string) ([]byte, error) {
	row := q.db.QueryRow(ctx, findUserAddress, id)
	var address []byte
	err := row.Scan(&address)
	return address, err
}

const upsertUserAddress = `-- name: UpsertUserAddress :exec
INSERT INTO users (id, address) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET address = EXCLUDED.address, updated_at = NOW()
`

type UpsertUserAddressParams struct {
	ID      string
	Address []byte
}

func (q *Queries) UpsertUserAddress(ctx context.Context, arg UpsertUserAddressParams) error {
	_, err := q.db.Exec(ctx, upsertUserAddress, arg.ID, arg.Address)
	return err
}
