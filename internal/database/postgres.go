package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"domain-locker/internal/conf"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Connect opens the Postgres pool and waits for the server to answer a ping.
func Connect(cfg conf.PostgresConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	logrus.Infof("Connected to Postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectPostgres)); err != nil {
		return fmt.Errorf("setting dialect for migrations: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db.DB)
	if err == nil {
		logrus.Infof("Database schema at version %d", version)
	}
	return nil
}
