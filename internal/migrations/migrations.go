// Package migrations embeds the goose SQL migrations: the local credential
// store schema (sqlite/) and the remote document table (postgres/).
package migrations

import "embed"

// SQLiteDir and PostgresDir are the directories to pass to goose together
// with Migrations as its base FS.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
