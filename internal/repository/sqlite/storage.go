package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nkiryanov/blogapi/internal/repository"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Connection pragmas applied by the driver to every new connection
const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Storage keeps everything in single SQLite file
// Suitable for one process deployments only
type Storage struct {
	db *sql.DB
}

// New opens (or creates) database at path and applies migrations
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{db: s.db}
}

func (s *Storage) Post() repository.PostRepo {
	return &PostRepo{db: s.db}
}

func (s *Storage) Comment() repository.CommentRepo {
	return &CommentRepo{db: s.db}
}

func constraintFailed(err error, extendedCode int, text string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code() == extendedCode {
		return true
	}
	// Primary code only, when extended result codes are off
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), text)
}

func isUniqueViolation(err error) bool {
	return constraintFailed(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return constraintFailed(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}
