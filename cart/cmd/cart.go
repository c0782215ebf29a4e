package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/cart/internal/controller"
	"github.com/Alturino/framedarchive/cart/internal/integrity"
	cartRepository "github.com/Alturino/framedarchive/cart/internal/repository"
	"github.com/Alturino/framedarchive/cart/internal/service"
	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/event"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Dependencies struct {
	Config        *config.Config
	DB            *pgxpool.Pool
	Queries       *repository.Queries
	Cache         *redis.Client
	Broker        event.Broker
	Catalog       *pricing.Catalog
	Authenticator *middleware.Authenticator
	Guard         *inflight.Guard
}

func newCartStore(c context.Context, deps Dependencies) cartRepository.CartStore {
	logger := zerolog.Ctx(c).With().Str("storage", deps.Config.Cart.Storage).Logger()
	if deps.Config.Cart.Storage == StorageMemory || deps.DB == nil {
		logger.Warn().Msg("using in-memory cart store, carts of signed-in users are not persisted")
		return cartRepository.NewMemoryCartStore()
	}

	var store cartRepository.CartStore = cartRepository.NewPostgresCartStore(deps.DB, deps.Queries)
	if deps.Cache != nil {
		logger.Info().Dur("ttl", deps.Config.Cart.CacheTTL).Msg("caching user carts in redis")
		store = cartRepository.NewCachedCartStore(store, deps.Cache, deps.Config.Cart.CacheTTL)
	}
	return store
}

func newGuestStorage(c context.Context, deps Dependencies) integrity.Storage {
	if deps.Cache == nil {
		zerolog.Ctx(c).Warn().Msg("using in-memory guest cart storage")
		return integrity.NewMemoryStorage()
	}
	return integrity.NewRedisStorage(deps.Cache, deps.Config.Cart.GuestTTL)
}

// AttachCartService builds the cart service from deps and mounts its routes on router.
func AttachCartService(c context.Context, router *mux.Router, deps Dependencies) *service.CartService {
	c, span := otel.Tracer.Start(c, "AttachCartService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_CART_SERVICE).
		Str(log.KeyTag, "main AttachCartService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing cart service").Logger()
	logger.Info().Msg("initializing cart service")
	c = logger.WithContext(c)
	guest := integrity.NewSecureStore(newGuestStorage(c, deps), deps.Broker)
	cartService := service.NewCartService(newCartStore(c, deps), guest, deps.Catalog, deps.Broker)
	logger.Info().Msg("initialized cart service")

	logger = logger.With().Str(log.KeyProcess, "initializing cart controller").Logger()
	logger.Info().Msg("initializing cart controller")
	controller.AttachCartController(router, cartService, deps.Broker, deps.Authenticator, deps.Guard)
	logger.Info().Msg("initialized cart controller")

	return cartService
}
