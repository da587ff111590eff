package db

import "embed"

// migrationFiles holds the schema for each backend, applied in file-name order
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS
