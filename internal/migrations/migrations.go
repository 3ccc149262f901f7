// Package migrations embeds the goose SQL migrations. Table names carry
// a {{prefix}} placeholder rendered per environment before goose runs;
// see the postgres package's RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
