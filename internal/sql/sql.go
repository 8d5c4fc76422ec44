package sql

import "embed"

// Migrations holds the snapshot-store schema, applied in filename order.
//
//go:embed migrations
var Migrations embed.FS
