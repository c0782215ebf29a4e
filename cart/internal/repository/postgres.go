package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/cart/pkg/model"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/repository"
)

type PostgresCartStore struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewPostgresCartStore(pool *pgxpool.Pool, queries *repository.Queries) *PostgresCartStore {
	return &PostgresCartStore{pool: pool, queries: queries}
}

func (s *PostgresCartStore) FindCart(c context.Context, userID string) ([]model.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "PostgresCartStore FindCart")
	defer span.End()

	raw, err := s.queries.FindUserCart(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return []model.CartItem{}, false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed finding cart of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		return nil, false, err
	}
	items, found, err := decodeCart(raw)
	if err != nil {
		inErrors.HandleError(err, span)
		return nil, false, err
	}
	return items, found, nil
}

func (s *PostgresCartStore) SaveCart(c context.Context, userID string, items []model.CartItem) error {
	c, span := otel.Tracer.Start(c, "PostgresCartStore SaveCart")
	defer span.End()

	raw, err := encodeCart(items)
	if err != nil {
		inErrors.HandleError(err, span)
		return err
	}
	err = s.queries.UpsertUserCart(c, repository.UpsertUserCartParams{ID: userID, Cart: raw})
	if err != nil {
		err = fmt.Errorf("failed saving cart of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}

func (s *PostgresCartStore) MergeCart(
	c context.Context,
	userID string,
	mergeToken string,
	merge MergeFunc,
) ([]model.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "PostgresCartStore MergeCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresCartStore MergeCart").
		Str(log.KeyUserID, userID).
		Str(log.KeyMergeToken, mergeToken).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inErrors.HandleError(err, span)
			l.Error().Err(err).Msg(err.Error())
		}
	}(logger)
	logger.Trace().Msg("initialized transaction")

	queries := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "locking user cart").Logger()
	logger.Trace().Msg("locking user cart")
	if err = queries.EnsureUser(c, userID); err != nil {
		err = fmt.Errorf("failed ensuring userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	row, err := queries.FindUserCartForUpdate(c, userID)
	if err != nil {
		err = fmt.Errorf("failed locking cart of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	stored, found, err := decodeCart(row.Cart)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	logger.Trace().Msg("locked user cart")

	if mergeToken != "" && row.LastMergeToken.Valid && row.LastMergeToken.String == mergeToken {
		logger.Info().Msg("merge token already applied")
		if err = tx.Commit(c); err != nil {
			err = fmt.Errorf("failed committing transaction with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, false, err
		}
		return stored, false, nil
	}

	logger = logger.With().Str(log.KeyProcess, "saving merged cart").Logger()
	logger.Trace().Msg("saving merged cart")
	merged := merge(stored, found)
	raw, err := encodeCart(merged)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	lastMergeToken := row.LastMergeToken
	if mergeToken != "" {
		lastMergeToken = pgtype.Text{String: mergeToken, Valid: true}
	}
	err = queries.UpdateUserMergedCart(c, repository.UpdateUserMergedCartParams{
		ID:             userID,
		Cart:           raw,
		LastMergeToken: lastMergeToken,
	})
	if err != nil {
		err = fmt.Errorf("failed saving merged cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	logger.Trace().Msg("saved merged cart")

	return merged, true, nil
}
