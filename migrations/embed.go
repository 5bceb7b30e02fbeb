// Package migrations embeds the SQL migration files that define the
// profiles, trials, and match_results schema.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
