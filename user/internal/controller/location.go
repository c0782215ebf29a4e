package controller

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/location"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
)

type PinCodeResolver interface {
	Lookup(c context.Context, pinCode string) (location.Location, error)
}

type LocationController struct {
	resolver PinCodeResolver
}

func AttachLocationController(router *mux.Router, resolver PinCodeResolver) {
	controller := LocationController{resolver: resolver}
	router.HandleFunc("/locations/states", controller.GetStates).Methods(http.MethodGet)
	router.HandleFunc("/locations/pincodes/{pinCode}", controller.LookupPinCode).Methods(http.MethodGet)
}

func (l LocationController) GetStates(w http.ResponseWriter, r *http.Request) {
	inHttp.WriteSuccessResponse(r.Context(), w, "found states", map[string]interface{}{"states": location.States})
}

func (l LocationController) LookupPinCode(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "LocationController LookupPinCode")
	defer span.End()

	pinCode := mux.Vars(r)["pinCode"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "LocationController LookupPinCode").
		Str(log.KeyPinCode, pinCode).
		Logger()

	c = logger.WithContext(c)
	found, err := l.resolver.Lookup(c, pinCode)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	inHttp.WriteSuccessResponse(c, w, "found pin code", map[string]interface{}{"location": found})
}
