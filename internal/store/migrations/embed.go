// Package migrations embeds the goose SQL migrations for the local store.
// Upgrades are additive only: a new migration may create tables and indexes
// but must never drop or rewrite an existing collection.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
