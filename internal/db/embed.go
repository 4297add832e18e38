package db

import "embed"

// migrationFS holds the SQL migrations compiled into the binary, so the
// server never depends on migration files being present on disk.
//
//go:embed migrations/*.sql
var migrationFS embed.FS
