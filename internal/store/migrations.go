package store

import "embed"

// Migrations holds the golang-migrate schema files for the Postgres store.
//
//go:embed migrations/*.sql
var Migrations embed.FS
