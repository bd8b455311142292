package goldbot

import "embed"

// MigrationsFS contains the embedded SQL migrations applied at startup.
//
//go:embed migrations
var MigrationsFS embed.FS
