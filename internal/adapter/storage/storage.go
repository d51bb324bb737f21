package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type sqldb interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// A Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name   string
	load   string
	upsert string
	schema string
}

var (
	Postgres = Dialect{
		Name: "postgres",
		load: `SELECT payload FROM cart_slots WHERE slot_key = $1;`,
		upsert: `
			INSERT INTO cart_slots (slot_key, payload, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (slot_key) DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at;`,
	}

	SQLite = Dialect{
		Name: "sqlite",
		load: `SELECT payload FROM cart_slots WHERE slot_key = ?;`,
		upsert: `
			INSERT INTO cart_slots (slot_key, payload, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (slot_key) DO UPDATE SET
				payload = excluded.payload,
				updated_at = excluded.updated_at;`,
		schema: `
			CREATE TABLE IF NOT EXISTS cart_slots (
				slot_key   TEXT PRIMARY KEY,
				payload    TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);`,
	}
)

type SQLDB struct {
	*sql.DB
	dialect Dialect
}

// NewPostgresDB opens a pgx backed pool. The cart_slots table is created
// by cmd/migrator.
func NewPostgresDB(ctx context.Context, dsn string) (SQLDB, error) {
	const op = "NewPostgresDB"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: %w", op, err)
	}
	return newSQLDB(ctx, db, Postgres)
}

// NewSQLiteDB opens a single file database and creates the slot table.
func NewSQLiteDB(ctx context.Context, path string) (SQLDB, error) {
	const op = "NewSQLiteDB"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(1)

	s, err := newSQLDB(ctx, db, SQLite)
	if err != nil {
		return SQLDB{}, err
	}

	if _, err := s.ExecContext(ctx, SQLite.schema); err != nil {
		s.Close()
		return SQLDB{}, fmt.Errorf("%s: failed to create schema: %w", op, err)
	}
	return s, nil
}

func newSQLDB(ctx context.Context, db *sql.DB, d Dialect) (SQLDB, error) {
	const op = "SQLDB"
	log := slog.With("op", op, "dialect", d.Name)

	s := SQLDB{DB: db, dialect: d}
	if err := s.PingContext(ctx); err != nil {
		_ = db.Close()
		return SQLDB{}, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available")
	return s, nil
}

func (s SQLDB) Dialect() Dialect {
	return s.dialect
}

func (s SQLDB) Close() {
	const op = "SQLDB.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.DB.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
