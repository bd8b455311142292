package config

import "time"

// ShutdownTimeout is the graceful shutdown deadline for the HTTP server.
const ShutdownTimeout = 15 * time.Second
