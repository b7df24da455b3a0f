package db

import "embed"

// Migrations holds the goose SQL migrations for postgres.
//
//go:embed migrations/*.sql
var Migrations embed.FS
