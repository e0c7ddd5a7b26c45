// Package migrations bundles the versioned SQL schema for the service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
