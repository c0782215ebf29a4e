package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/auth"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/internal/validate"
	"github.com/Alturino/framedarchive/user/internal/service"
	"github.com/Alturino/framedarchive/user/pkg/model"
	"github.com/Alturino/framedarchive/user/pkg/request"
)

type Limiters struct {
	Contact     *ratelimit.Limiter
	VerifyAdmin *ratelimit.Limiter
}

type UserController struct {
	service *service.UserService
}

func AttachUserController(
	router *mux.Router,
	service *service.UserService,
	authenticator *middleware.Authenticator,
	limiters Limiters,
) {
	controller := UserController{service: service}

	users := router.PathPrefix("/users/me").Subrouter()
	users.Use(authenticator.RequireAuth)
	users.HandleFunc("/address", controller.GetAddress).Methods(http.MethodGet)
	users.HandleFunc("/address", controller.SaveAddress).Methods(http.MethodPut)

	router.Handle("/admin/verify", middleware.RateLimit(limiters.VerifyAdmin)(http.HandlerFunc(controller.VerifyAdmin))).
		Methods(http.MethodPost)
	router.Handle("/contact", middleware.RateLimit(limiters.Contact)(http.HandlerFunc(controller.SubmitContact))).
		Methods(http.MethodPost)
}

func decodeRequest(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body with error=%w: %w", inErrors.ErrInvalidRequest, err)
	}
	if err := validate.Get().StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("failed validating request body with error=%w: %w", inErrors.ErrInvalidRequest, err)
	}
	return nil
}

func (u UserController) GetAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController GetAddress")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController GetAddress").
		Str(log.KeyUserID, owner.UserID).
		Logger()

	c = logger.WithContext(c)
	address, err := u.service.GetAddress(c, owner.UserID)
	if err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	inHttp.WriteSuccessResponse(c, w, "found address", map[string]interface{}{"address": address})
}

func (u UserController) SaveAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController SaveAddress")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController SaveAddress").
		Str(log.KeyUserID, owner.UserID).
		Logger()

	reqBody := model.Address{}
	if err := decodeRequest(r.WithContext(c), &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	c = logger.WithContext(c)
	address, err := u.service.SaveAddress(c, owner.UserID, reqBody)
	if err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	inHttp.WriteSuccessResponse(c, w, "saved address", map[string]interface{}{"address": address})
}

func (u UserController) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController VerifyAdmin")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController VerifyAdmin").Logger()

	reqBody := request.VerifyAdmin{}
	if err := decodeRequest(r.WithContext(c), &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	c = logger.WithContext(c)
	isAdmin, err := u.service.VerifyAdmin(c, reqBody.Email)
	statusCode, status, message := http.StatusOK, "success", "verified admin"
	switch {
	case err != nil:
		statusCode, status, message = inErrors.StatusCode(err), "failed", err.Error()
	case !isAdmin:
		statusCode, status, message = http.StatusForbidden, "failed", inErrors.ErrForbidden.Error()
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     status,
		"statusCode": statusCode,
		"message":    message,
		"data":       map[string]interface{}{"isAdmin": isAdmin},
	})
}

func (u UserController) SubmitContact(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController SubmitContact")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController SubmitContact").Logger()

	reqBody := request.SubmitContact{}
	if err := decodeRequest(r.WithContext(c), &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	c = logger.WithContext(c)
	stored, err := u.service.SubmitContact(c, reqBody)
	if err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	inHttp.WriteSuccessResponse(c, w, "message sent", map[string]interface{}{"id": stored.ID})
}
