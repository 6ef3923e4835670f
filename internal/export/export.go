// Package export persists assembled rigs. Backends are selected by
// configuration: a JSON file writer for tooling pipelines and a SQLite
// backend for content archives that get queried later.
package export

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/internal/export/jsonfile"
	sqliteexport "github.com/rigforge/rigforge/internal/export/sqlite"
	"github.com/rigforge/rigforge/pkg/rig"
)

// Backend is the interface all export implementations satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Export persists one assembled rig together with the diagnostics
	// its construction produced.
	Export(r *rig.Rig, diags []diag.Message) error
}

// Locatable is an optional interface for backends that produce a file
// whose path is worth reporting back to the user.
type Locatable interface {
	ExportedFilePath() string
}

// NewBackend creates an export backend based on configuration.
func NewBackend(cfg config.ExportConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Backend {
	case "memory", "json":
		return jsonfile.New(cfg), nil
	case "sqlite":
		return sqliteexport.New(cfg, log)
	default:
		return nil, fmt.Errorf("unknown export backend: %s", cfg.Backend)
	}
}
