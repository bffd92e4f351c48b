// Package migrations embeds the goose SQL migration set applied at
// server startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
