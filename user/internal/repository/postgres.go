package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/user/pkg/model"
)

type PostgresUserStore struct {
	queries *repository.Queries
}

func NewPostgresUserStore(queries *repository.Queries) *PostgresUserStore {
	return &PostgresUserStore{queries: queries}
}

func (s *PostgresUserStore) FindAddress(c context.Context, userID string) (model.Address, error) {
	c, span := otel.Tracer.Start(c, "PostgresUserStore FindAddress")
	defer span.End()

	raw, err := s.queries.FindUserAddress(c, userID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && len(raw) == 0) {
		return model.Address{}, fmt.Errorf(
			"failed finding address of userId=%s with error=%w",
			userID,
			inErrors.ErrAddressNotFound,
		)
	}
	if err != nil {
		err = fmt.Errorf("failed finding address of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		return model.Address{}, err
	}

	address := model.Address{}
	if err = json.Unmarshal(raw, &address); err != nil {
		err = fmt.Errorf("failed decoding address of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		return model.Address{}, err
	}
	return address, nil
}

func (s *PostgresUserStore) UpsertAddress(c context.Context, userID string, address model.Address) error {
	c, span := otel.Tracer.Start(c, "PostgresUserStore UpsertAddress")
	defer span.End()

	raw, err := json.Marshal(address)
	if err != nil {
		err = fmt.Errorf("failed encoding address with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}
	err = s.queries.UpsertUserAddress(c, repository.UpsertUserAddressParams{ID: userID, Address: raw})
	if err != nil {
		err = fmt.Errorf("failed saving address of userId=%s with error=%w", userID, err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}

func (s *PostgresUserStore) InsertContactMessage(
	c context.Context,
	message model.ContactMessage,
) (model.ContactMessage, error) {
	c, span := otel.Tracer.Start(c, "PostgresUserStore InsertContactMessage")
	defer span.End()

	row, err := s.queries.InsertContactMessage(c, repository.InsertContactMessageParams{
		ID:      message.ID,
		Name:    message.Name,
		Email:   message.Email,
		Message: message.Message,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting contact message with error=%w", err)
		inErrors.HandleError(err, span)
		return model.ContactMessage{}, err
	}
	return model.ContactMessage{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Message:   row.Message,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}
