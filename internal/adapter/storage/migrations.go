package storage

import "embed"

// Migrations holds the postgres schema, applied by cmd/migrator.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
