package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/infra"
	"github.com/Alturino/framedarchive/internal/log"
)

func runMigration(c context.Context, direction infra.Direction) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_MIGRATION).
		Str(log.KeyTag, "main runMigration").
		Str("direction", string(direction)).
		Logger()

	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_STOREFRONT)

	logger = logger.With().Str(log.KeyProcess, "migrating database").Logger()
	logger.Info().Msg("migrating database")
	if err := infra.Migrate(c, cfg.Database, direction); err != nil {
		err = fmt.Errorf("failed migrating database with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("migrated database")
	return nil
}
