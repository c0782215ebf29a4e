package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/product/internal/controller"
	"github.com/Alturino/framedarchive/product/internal/service"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

func AttachCatalogService(c context.Context, router *mux.Router, catalog *pricing.Catalog) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_CATALOG_SERVICE).
		Str(log.KeyTag, "main AttachCatalogService").
		Str(log.KeyProcess, "initializing catalog controller").
		Logger()

	logger.Info().Msg("initializing catalog controller")
	controller.AttachCatalogController(router, service.NewCatalogService(catalog))
	logger.Info().Int("entries", len(catalog.Entries())).Msg("initialized catalog controller")
}
