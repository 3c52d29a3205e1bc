// Package db embeds the schema migrations applied by cmd/migration.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsRoot is the directory inside Migrations holding the numbered files.
const MigrationsRoot = "migrations"
