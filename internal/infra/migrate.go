package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/log"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Migrate applies every migration under dbConfig.MigrationPath in the given direction.
// Running it on an up to date schema is not an error.
func Migrate(c context.Context, dbConfig config.Database, direction Direction) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main Migrate").
		Str(log.KeyMigrationPath, dbConfig.MigrationPath).
		Str(log.KeyAction, string(direction)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "opening database").Logger()
	logger.Info().Msg("opening database")
	db, err := sql.Open("postgres", PostgresURL(dbConfig))
	if err != nil {
		return fmt.Errorf("failed opening database with error=%w", err)
	}
	defer db.Close()
	if err = db.PingContext(c); err != nil {
		return fmt.Errorf("failed ping database with error=%w", err)
	}
	logger.Info().Msg("opened database")

	logger = logger.With().Str(log.KeyProcess, "initializing db driver").Logger()
	logger.Info().Msg("initializing db driver")
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed creating postgres driver to do migration with error=%w", err)
	}
	logger.Info().Msg("initialized db driver")

	logger = logger.With().Str(log.KeyProcess, "initializing migration").Logger()
	logger.Info().Msg("initializing migration")
	migration, err := migrate.NewWithDatabaseInstance(dbConfig.MigrationPath, dbConfig.Name, driver)
	if err != nil {
		return fmt.Errorf("failed initializing migration with error=%w", err)
	}
	logger.Info().Msg("initialized migration")

	logger = logger.With().Str(log.KeyProcess, "migration "+string(direction)).Logger()
	logger.Info().Msg("migration " + string(direction))
	switch direction {
	case DirectionUp:
		err = migration.Up()
	case DirectionDown:
		err = migration.Down()
	default:
		return fmt.Errorf("unknown migration direction=%s", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed migration %s with error=%w", direction, err)
	}
	logger.Info().Msg("successed migration " + string(direction))
	return nil
}
