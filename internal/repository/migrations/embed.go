// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS contains the goose migrations for the wishes store.
//
//go:embed *.sql
var FS embed.FS
