package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/order/internal/controller"
	"github.com/Alturino/framedarchive/order/internal/payment"
	orderRepository "github.com/Alturino/framedarchive/order/internal/repository"
	"github.com/Alturino/framedarchive/order/internal/service"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

type Dependencies struct {
	Config         *config.Config
	Queries        *repository.Queries
	Catalog        *pricing.Catalog
	Carts          service.Carts
	Authenticator  *middleware.Authenticator
	Guard          *inflight.Guard
	RateLimitStore ratelimit.Store
}

func newGateway(c context.Context, cfg config.Payment) payment.Gateway {
	logger := zerolog.Ctx(c).With().Str("provider", cfg.Provider).Logger()
	if cfg.Provider == payment.ProviderFake {
		logger.Warn().Msg("using fake payment gateway, payments are not charged")
		return payment.NewFakeGateway(cfg.KeySecret)
	}
	logger.Info().Str("baseUrl", cfg.BaseURL).Msg("using razorpay payment gateway")
	return payment.NewRazorpayClient(cfg)
}

func newOrderStore(c context.Context, queries *repository.Queries) orderRepository.OrderStore {
	if queries == nil {
		zerolog.Ctx(c).Warn().Msg("using in-memory order store, orders are not persisted")
		return orderRepository.NewMemoryOrderStore()
	}
	return orderRepository.NewPostgresOrderStore(queries)
}

// AttachOrderService mounts checkout, order history and admin order routes on router.
func AttachOrderService(c context.Context, router *mux.Router, deps Dependencies) {
	c, span := otel.Tracer.Start(c, "AttachOrderService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_ORDER_SERVICE).
		Str(log.KeyTag, "main AttachOrderService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing order service").Logger()
	logger.Info().Msg("initializing order service")
	c = logger.WithContext(c)
	orderService := service.NewOrderService(
		newOrderStore(c, deps.Queries),
		newGateway(c, deps.Config.Payment),
		deps.Catalog,
		deps.Carts,
		deps.Config.Payment.Currency,
	)
	logger.Info().Msg("initialized order service")

	logger = logger.With().Str(log.KeyProcess, "initializing order controller").Logger()
	logger.Info().Msg("initializing order controller")
	limit, window := deps.Config.RateLimit.Limit, deps.Config.RateLimit.Window
	controller.AttachOrderController(
		router,
		orderService,
		deps.Authenticator,
		controller.Limiters{
			CreateOrder:  ratelimit.NewLimiter(deps.RateLimitStore, "create-order", limit, window),
			ConfirmOrder: ratelimit.NewLimiter(deps.RateLimitStore, "confirm-order", limit, window),
		},
		deps.Guard,
	)
	logger.Info().Msg("initialized order controller")
}
