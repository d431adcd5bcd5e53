package migrations

import "embed"

// FS holds the goose migrations of the events schema.
//
//go:embed *.sql
var FS embed.FS
