// Package migrations embeds the SQL migration files for the sqlite store.
package migrations

import "embed"

// FS holds the numbered migration files applied in order at startup.
//
//go:embed *.sql
var FS embed.FS
