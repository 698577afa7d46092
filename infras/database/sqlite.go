package database

//nolint:revive
import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const sqliteMemory = ":memory:"

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// OpenSQLite opens a single-writer sqlite database. ":memory:" yields a private
// database bound to one connection.
func OpenSQLite(path string) (*sqlx.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := sqliteMemory
	if path != sqliteMemory {
		cleanPath := filepath.Clean(path)

		if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}

		dsn = cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	}

	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	log.Info().Str("path", path).Msg("Connected to sqlite database")

	return db, nil
}
