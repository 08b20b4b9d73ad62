// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.cabin.build/cabin/internal/adapters/blob"
	_ "go.cabin.build/cabin/internal/adapters/config"
	_ "go.cabin.build/cabin/internal/adapters/fetcher"
	_ "go.cabin.build/cabin/internal/adapters/lockfile"
	_ "go.cabin.build/cabin/internal/adapters/logger"
	_ "go.cabin.build/cabin/internal/adapters/securerepo"
	_ "go.cabin.build/cabin/internal/adapters/tables"
	// Register app and engine nodes.
	_ "go.cabin.build/cabin/internal/app"
	_ "go.cabin.build/cabin/internal/engine/indexsync"
	_ "go.cabin.build/cabin/internal/engine/reexec"
	_ "go.cabin.build/cabin/internal/engine/resolve"
)
