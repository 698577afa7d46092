// Package database opens the read and write handles for the configured driver.
package database

import (
	"errors"
	"fmt"
	"lodge/config"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var errUnknownDriver = errors.New("unknown database driver")

// Connection separates read and write pools. Drivers without replicas point both at
// the same handle.
type Connection struct {
	Driver string
	Read   *sqlx.DB
	Write  *sqlx.DB
}

// Close releases every distinct pool.
func (c *Connection) Close() error {
	var errs []error

	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}

	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func New(config *config.Config) *Connection {
	conn, err := Open(config)
	if err != nil {
		log.Fatal().Err(err).Str("driver", config.DB.Driver).Msg("Failed to open database")
	}

	return conn
}

func Open(config *config.Config) (*Connection, error) {
	switch config.DB.Driver {
	case DriverPostgres, "":
		return &Connection{
			Driver: DriverPostgres,
			Read:   CreatePostgresReadConn(*config),
			Write:  CreatePostgresWriteConn(*config),
		}, nil
	case DriverSQLite:
		db, err := OpenSQLite(config.DB.SQLite.Path)
		if err != nil {
			return nil, err
		}

		return &Connection{Driver: DriverSQLite, Read: db, Write: db}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownDriver, config.DB.Driver)
	}
}
