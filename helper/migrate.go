package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"lodge/config"
	"lodge/infras/database"
	"lodge/migrations"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"
)

var errUnknownAction = errors.New("unknown migration action")

func migrationsTable(config *config.Config) string {
	if config.DB.Postgres.MigrationTable != "" {
		return config.DB.Postgres.MigrationTable
	}

	return "schema_migrations"
}

// getMigrator builds a migrator for the connection's driver. The returned flag tells
// whether closing the migrator is safe, which is false when it borrows the caller's pool.
func getMigrator(config *config.Config, conn *database.Connection) (*migrate.Migrate, bool, error) {
	source, err := iofs.New(migrations.FS, conn.Driver)
	if err != nil {
		return nil, false, fmt.Errorf("error opening embedded migrations: %w", err)
	}

	if conn.Driver == database.DriverSQLite {
		driver, err := sqlite.WithInstance(conn.Write.DB, &sqlite.Config{MigrationsTable: migrationsTable(config)})
		if err != nil {
			return nil, false, fmt.Errorf("error creating sqlite migrate driver: %w", err)
		}

		mig, err := migrate.NewWithInstance("iofs", source, database.DriverSQLite, driver)
		if err != nil {
			return nil, false, fmt.Errorf("error creating migrate instance: %w", err)
		}

		return mig, false, nil
	}

	write := config.DB.Postgres.Write
	connectionString := database.PostgresDSN(
		write.Username,
		write.Password,
		write.Host,
		write.Port,
		database.PostgresDBName(*config, write.Name),
		write.SSLMode,
	) + "&x-migrations-table=" + url.QueryEscape(migrationsTable(config))

	mig, err := migrate.NewWithSourceInstance("iofs", source, connectionString)
	if err != nil {
		return nil, false, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, true, nil
}

func Runner(config *config.Config, conn *database.Connection, action string) error {
	mig, closable, err := getMigrator(config, conn)
	if err != nil {
		return err
	}

	if closable {
		defer mig.Close()
	}

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Down()
	default:
		return fmt.Errorf("%w: %s", errUnknownAction, action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migration %s: %w", action, err)
	}

	log.Info().Str("driver", conn.Driver).Str("action", action).Msg("Database migrations completed successfully")

	return nil
}

func Up(config *config.Config, conn *database.Connection) error {
	return Runner(config, conn, ActionUp)
}

func StepUp(config *config.Config, conn *database.Connection) error {
	return Runner(config, conn, ActionStepUp)
}

func Down(config *config.Config, conn *database.Connection) error {
	return Runner(config, conn, ActionDown)
}

func Drop(config *config.Config, conn *database.Connection) error {
	return Runner(config, conn, ActionDrop)
}
