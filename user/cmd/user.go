package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/location"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/ratelimit"
	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/user/internal/controller"
	userRepository "github.com/Alturino/framedarchive/user/internal/repository"
	"github.com/Alturino/framedarchive/user/internal/service"
)

type Dependencies struct {
	Config         *config.Config
	Queries        *repository.Queries
	Authenticator  *middleware.Authenticator
	RateLimitStore ratelimit.Store
}

// AttachUserService mounts address, admin verification, contact and location routes on router.
func AttachUserService(c context.Context, router *mux.Router, deps Dependencies) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_USER_SERVICE).
		Str(log.KeyTag, "main AttachUserService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing user service").Logger()
	logger.Info().Msg("initializing user service")
	var store userRepository.UserStore
	if deps.Queries == nil {
		logger.Warn().Msg("using in-memory user store, addresses and contact messages are not persisted")
		store = userRepository.NewMemoryUserStore()
	} else {
		store = userRepository.NewPostgresUserStore(deps.Queries)
	}
	userService := service.NewUserService(store, deps.Config.Admin)
	logger.Info().Int("adminEmails", len(deps.Config.Admin.Emails)).Msg("initialized user service")

	logger = logger.With().Str(log.KeyProcess, "initializing user controller").Logger()
	logger.Info().Msg("initializing user controller")
	limit, window := deps.Config.RateLimit.Limit, deps.Config.RateLimit.Window
	controller.AttachUserController(router, userService, deps.Authenticator, controller.Limiters{
		Contact:     ratelimit.NewLimiter(deps.RateLimitStore, "contact", limit, window),
		VerifyAdmin: ratelimit.NewLimiter(deps.RateLimitStore, "admin-verify", limit, window),
	})
	logger.Info().Msg("initialized user controller")

	logger = logger.With().Str(log.KeyProcess, "initializing location controller").Logger()
	logger.Info().Str("baseUrl", deps.Config.Location.BaseURL).Msg("initializing location controller")
	controller.AttachLocationController(router, location.NewPostalClient(deps.Config.Location))
	logger.Info().Msg("initialized location controller")
}
