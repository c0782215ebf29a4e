package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/infra"
	"github.com/Alturino/framedarchive/internal/log"
)

func Start() {
	env := os.Getenv("APPLICATION_ENV")
	if env == "" {
		env = "development"
	}
	logPath := os.Getenv("APPLICATION_LOG_PATH")
	if logPath == "" {
		logPath = "/var/log/" + constants.APP_STOREFRONT + ".log"
	}
	logger := log.InitLogger(logPath, env).
		With().
		Str(log.KeyAppName, constants.APP_STOREFRONT).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	var down bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := infra.DirectionUp
			if down {
				direction = infra.DirectionDown
			}
			return runMigration(cmd.Context(), direction)
		},
	}
	migrateCmd.Flags().BoolVar(&down, "down", false, "roll back every migration instead of applying them")

	rootCmd := &cobra.Command{
		Use:          constants.APP_STOREFRONT,
		Short:        "The Framed Archive storefront backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the storefront http server",
			Run: func(cmd *cobra.Command, args []string) {
				runServer(cmd.Context())
			},
		},
		migrateCmd,
	)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
