package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/config"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/validate"
	"github.com/Alturino/framedarchive/user/internal/repository"
	"github.com/Alturino/framedarchive/user/pkg/model"
	"github.com/Alturino/framedarchive/user/pkg/request"
)

type UserService struct {
	store repository.UserStore
	admin config.Admin
	now   func() time.Time
}

func NewUserService(store repository.UserStore, admin config.Admin) *UserService {
	return &UserService{store: store, admin: admin, now: time.Now}
}

func (u *UserService) GetAddress(c context.Context, userID string) (model.Address, error) {
	c, span := otel.Tracer.Start(c, "UserService GetAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService GetAddress").
		Str(log.KeyUserID, userID).
		Str(log.KeyProcess, "finding address").
		Logger()

	logger.Info().Msg("finding address")
	address, err := u.store.FindAddress(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Address{}, err
	}
	logger.Info().Msg("found address")
	return address, nil
}

// SaveAddress sanitizes every field before storing the address of userID.
func (u *UserService) SaveAddress(c context.Context, userID string, address model.Address) (model.Address, error) {
	c, span := otel.Tracer.Start(c, "UserService SaveAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService SaveAddress").
		Str(log.KeyUserID, userID).
		Str(log.KeyProcess, "saving address").
		Logger()

	address = model.Address{
		Street:  validate.SanitizeInput(address.Street),
		City:    validate.SanitizeInput(address.City),
		State:   validate.SanitizeInput(address.State),
		ZipCode: validate.SanitizeInput(address.ZipCode),
		Country: validate.SanitizeInput(address.Country),
	}
	if err := validate.Get().StructCtx(c, address); err != nil {
		err = fmt.Errorf("failed validating sanitized address with error=%w: %w", inErrors.ErrInvalidRequest, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Address{}, err
	}

	logger.Info().Msg("saving address")
	if err := u.store.UpsertAddress(c, userID, address); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Address{}, err
	}
	logger.Info().Msg("saved address")
	return address, nil
}

// VerifyAdmin reports whether email belongs to an administrator. A blank email is an
// invalid request.
func (u *UserService) VerifyAdmin(c context.Context, email string) (bool, error) {
	_, span := otel.Tracer.Start(c, "UserService VerifyAdmin")
	defer span.End()

	if strings.TrimSpace(email) == "" {
		err := fmt.Errorf("failed verifying admin with error=%w: missing email", inErrors.ErrInvalidRequest)
		inErrors.HandleError(err, span)
		return false, err
	}
	isAdmin := u.admin.IsAdmin(email)
	zerolog.Ctx(c).Info().
		Str(log.KeyTag, "UserService VerifyAdmin").
		Str(log.KeyEmail, request.MaskEmail(email)).
		Bool("isAdmin", isAdmin).
		Msg("verified admin")
	return isAdmin, nil
}

func (u *UserService) SubmitContact(c context.Context, param request.SubmitContact) (model.ContactMessage, error) {
	c, span := otel.Tracer.Start(c, "UserService SubmitContact")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService SubmitContact").
		Object(log.KeyRequestBody, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating contact message").Logger()
	email := strings.TrimSpace(param.Email)
	message := validate.SanitizeInput(param.Message)
	if !validate.ValidateEmail(email) {
		err := fmt.Errorf("failed validating email with error=%w", inErrors.ErrInvalidRequest)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.ContactMessage{}, err
	}
	if !validate.ValidateMessage(message) {
		err := fmt.Errorf(
			"failed validating message length between %d and %d with error=%w",
			validate.MinMessageLength,
			validate.MaxMessageLength,
			inErrors.ErrInvalidRequest,
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.ContactMessage{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting contact message").Logger()
	logger.Info().Msg("inserting contact message")
	stored, err := u.store.InsertContactMessage(c, model.ContactMessage{
		ID:        uuid.New(),
		Name:      validate.SanitizeInput(param.Name),
		Email:     email,
		Message:   message,
		CreatedAt: u.now(),
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.ContactMessage{}, err
	}
	logger.Info().Str("contactMessageId", stored.ID.String()).Msg("inserted contact message")
	return stored, nil
}
