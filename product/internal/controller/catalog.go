package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/validate"
	"github.com/Alturino/framedarchive/product/internal/service"
	"github.com/Alturino/framedarchive/product/pkg/request"
)

type CatalogController struct {
	service service.CatalogService
}

func AttachCatalogController(mux *mux.Router, service service.CatalogService) {
	controller := CatalogController{service: service}

	router := mux.PathPrefix("/catalog").Subrouter()
	router.HandleFunc("", controller.GetCatalog).Methods(http.MethodGet)
	router.HandleFunc("/price", controller.QuotePrice).Methods(http.MethodGet)
}

func (p CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController GetCatalog")
	defer span.End()

	query := r.URL.Query()
	param := request.FindCatalog{
		PrintType: query.Get("printType"),
		Variant:   query.Get("variant"),
		Size:      query.Get("size"),
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController GetCatalog").
		Any("query", param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating query").Logger()
	logger.Trace().Msg("validating query")
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating query with error=%w: %w", inErrors.ErrInvalidRequest, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Trace().Msg("validated query")

	logger = logger.With().Str(log.KeyProcess, "finding catalog entries").Logger()
	c = logger.WithContext(c)
	entries := p.service.FindEntries(c, param)
	logger.Trace().Int("entries", len(entries)).Msg("found catalog entries")

	inHttp.WriteSuccessResponse(c, w, "found catalog", map[string]interface{}{
		"entries": entries,
	})
}

func (p CatalogController) QuotePrice(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController QuotePrice")
	defer span.End()

	query := r.URL.Query()
	param := request.QuotePrice{
		PrintType: query.Get("printType"),
		Variant:   query.Get("variant"),
		Size:      query.Get("size"),
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController QuotePrice").
		Any("query", param).
		Logger()

	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating query with error=%w: %w", inErrors.ErrInvalidRequest, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	c = logger.WithContext(c)
	entry, err := p.service.Quote(c, param)
	if err != nil {
		err = fmt.Errorf("failed quoting price with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	inHttp.WriteSuccessResponse(c, w, "quoted price", map[string]interface{}{
		"entry": entry,
	})
}
