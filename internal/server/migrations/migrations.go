// Package migrations embeds the goose SQL migrations for the durable parts
// of the store (transaction histories and the recorded-transfer index).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
