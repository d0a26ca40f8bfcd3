package migrations

import "embed"

// Files stores forward-only SQL migrations embedded into the binary,
// one directory per database dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var Files embed.FS
