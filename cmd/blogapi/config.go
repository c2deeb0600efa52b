package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/blogapi/internal/logger"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

const (
	defaultListenAddr   = "localhost:3000"
	defaultStorage      = StoragePostgres
	defaultSQLitePath   = "blogapi.db"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the blog api will be run
	ListenAddr string

	// Storage backend: postgres or sqlite
	Storage string

	// Postgres to connect to, required for postgres storage
	DatabaseDSN string

	// SQLite database file
	SQLitePath string

	// Redis for revoked tokens
	// Revoked tokens are kept in memory if empty, fine only for single instance
	RedisURL string

	// Keys to sign access and refresh tokens
	// Both required and must differ
	AccessSecret  string
	RefreshSecret string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Storage:     defaultStorage,
		SQLitePath:  defaultSQLitePath,
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"STORAGE":              setString(&c.Storage),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"SQLITE_PATH":          setString(&c.SQLitePath),
		"REDIS_URL":            setString(&c.RedisURL),
		"ACCESS_TOKEN_SECRET":  setString(&c.AccessSecret),
		"REFRESH_TOKEN_SECRET": setString(&c.RefreshSecret),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("blogapi", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVar(&c.Storage, "storage", c.Storage, "Storage backend (postgres, sqlite)")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Postgres connection string")
	fs.StringVar(&c.SQLitePath, "sqlite-path", c.SQLitePath, "SQLite database file")
	fs.StringVar(&c.RedisURL, "redis", c.RedisURL, "Redis URL for revoked tokens")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Access token secret")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token secret")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}

// Validate catches what can't be started before anything is started
func (c *Config) Validate() error {
	switch {
	case c.AccessSecret == "" || c.RefreshSecret == "":
		return errors.New("both ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	case c.AccessSecret == c.RefreshSecret:
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_URI is required for postgres storage")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for sqlite storage")
		}
	default:
		return fmt.Errorf("unknown storage %q, expected one of: %s, %s", c.Storage, StoragePostgres, StorageSQLite)
	}

	return nil
}
