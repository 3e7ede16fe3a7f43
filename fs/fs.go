// Package appfs holds the files shipped inside the binaries: SQL migrations, email templates, seed data and assets.
package appfs

import "embed"

//go:embed assets migrations/*.sql templates seeds/*.yaml
var FS embed.FS
