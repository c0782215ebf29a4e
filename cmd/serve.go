package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/Alturino/framedarchive/cart/cmd"
	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/event"
	"github.com/Alturino/framedarchive/internal/infra"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/internal/repository"
	orderCmd "github.com/Alturino/framedarchive/order/cmd"
	productCmd "github.com/Alturino/framedarchive/product/cmd"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
	userCmd "github.com/Alturino/framedarchive/user/cmd"
)

const (
	rateLimitStoreRedis = "redis"
	shutdownTimeout     = 15 * time.Second
)

func newRateLimitStore(c context.Context, cfg config.RateLimit, cache *redis.Client) ratelimit.Store {
	if cfg.Store == rateLimitStoreRedis && cache != nil {
		zerolog.Ctx(c).Info().Msg("using redis rate limit store")
		return ratelimit.NewRedisStore(cache)
	}
	zerolog.Ctx(c).Info().Int("capacity", cfg.Capacity).Msg("using in-memory rate limit store")
	return ratelimit.NewMemoryStore(cfg.Capacity)
}

func runServer(c context.Context) {
	c, span := otel.Tracer.Start(c, "runServer")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_STOREFRONT).
		Str(log.KeyTag, "main runServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_STOREFRONT)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_STOREFRONT, cfg.Application.Env, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		shutdownCtx, cancel := context.WithTimeout(logger.WithContext(context.Background()), shutdownTimeout)
		defer cancel()
		if err := otel.ShutdownOtel(shutdownCtx, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	var (
		db      *pgxpool.Pool
		queries *repository.Queries
	)
	if cfg.Cart.Storage == cartCmd.StoragePostgres {
		logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
		logger.Info().Msg("initializing database")
		c = logger.WithContext(c)
		db = infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger = logger.With().Str(log.KeyProcess, "shutting down database").Logger()
			logger.Info().Msg("shutting down database")
			db.Close()
			logger.Info().Msg("shutdown database")
		}()
		queries = repository.New(db)
		logger.Info().Msg("initialized database")
	}

	var (
		cache  *redis.Client
		broker event.Broker = event.NewMemoryBroker()
	)
	if cfg.Cache.Host != "" {
		logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
		logger.Info().Msg("initializing cache")
		c = logger.WithContext(c)
		cache = infra.NewCacheClient(c, cfg.Cache)
		defer func() {
			logger = logger.With().Str(log.KeyProcess, "shutting down cache").Logger()
			logger.Info().Msg("shutting down cache")
			if err := cache.Close(); err != nil {
				err = fmt.Errorf("failed shutting down cache with error=%w", err)
				inErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown cache")
		}()
		broker = event.NewRedisBroker(cache)
		logger.Info().Msg("initialized cache")
	}

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	proxies, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		err = fmt.Errorf("failed initializing router with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.APP_STOREFRONT),
		middleware.ClientAddress(proxies),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.SecurityHeaders,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	c = logger.WithContext(c)
	catalog := pricing.Default()
	authenticator := middleware.NewAuthenticator(cfg.Application, cfg.Admin, cfg.Cart.GuestTTL)
	guard := inflight.NewGuard()
	rateLimitStore := newRateLimitStore(c, cfg.RateLimit, cache)

	productCmd.AttachCatalogService(c, router, catalog)
	cartService := cartCmd.AttachCartService(c, router, cartCmd.Dependencies{
		Config:        cfg,
		DB:            db,
		Queries:       queries,
		Cache:         cache,
		Broker:        broker,
		Catalog:       catalog,
		Authenticator: authenticator,
		Guard:         guard,
	})
	orderCmd.AttachOrderService(c, router, orderCmd.Dependencies{
		Config:         cfg,
		Queries:        queries,
		Catalog:        catalog,
		Carts:          cartService,
		Authenticator:  authenticator,
		Guard:          guard,
		RateLimitStore: rateLimitStore,
	})
	userCmd.AttachUserService(c, router, userCmd.Dependencies{
		Config:         cfg,
		Queries:        queries,
		Authenticator:  authenticator,
		RateLimitStore: rateLimitStore,
	})

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	serveErr := make(chan error, 1)
	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("error=%w occured while server is running", err)
		}
		close(serveErr)
	}()

	select {
	case <-c.Done():
		logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
		logger.Info().Msg("received interuption signal shutting down")
	case err := <-serveErr:
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
	}

	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(logger.WithContext(context.Background()), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
