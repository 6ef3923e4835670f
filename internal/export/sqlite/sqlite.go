// Package sqliteexport persists assembled rigs into a SQLite database
// so content archives can be queried later. Rows are written through
// an in-memory database and dumped to disk on Close.
package sqliteexport

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/database"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/internal/model/convert"
	"github.com/rigforge/rigforge/pkg/rig"
)

// Backend writes rigs into a SQLite database.
type Backend struct {
	cfg config.ExportConfig
	log zerolog.Logger
	db  *gorm.DB
}

// New creates a SQLite export backend backed by an in-memory database.
func New(cfg config.ExportConfig, log zerolog.Logger) (*Backend, error) {
	if cfg.SqlitePath == "" {
		return nil, fmt.Errorf("sqlite export requires a database path")
	}

	db, err := database.Open("", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{cfg: cfg, log: log, db: db}, nil
}

// Init migrates the export schema.
func (b *Backend) Init() error {
	return database.Setup(b.db, b.log)
}

// Close dumps the in-memory database to the configured path.
func (b *Backend) Close() error {
	return database.DumpToDisk(b.db, b.cfg.SqlitePath)
}

// ExportedFilePath returns the on-disk database path.
func (b *Backend) ExportedFilePath() string {
	return b.cfg.SqlitePath
}

// Export inserts one rig row and all its dependent rows.
func (b *Backend) Export(r *rig.Rig, diags []diag.Message) error {
	row := convert.RigToRow(r)
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert rig row: %w", err)
	}

	if nodes := convert.NodesToRows(row.ID, r); len(nodes) > 0 {
		if err := b.db.Create(&nodes).Error; err != nil {
			return fmt.Errorf("failed to insert node rows: %w", err)
		}
	}
	if beams := convert.BeamsToRows(row.ID, r); len(beams) > 0 {
		if err := b.db.Create(&beams).Error; err != nil {
			return fmt.Errorf("failed to insert beam rows: %w", err)
		}
	}
	if shocks := convert.ShocksToRows(row.ID, r); len(shocks) > 0 {
		if err := b.db.Create(&shocks).Error; err != nil {
			return fmt.Errorf("failed to insert shock rows: %w", err)
		}
	}
	if wheels := convert.WheelsToRows(row.ID, r); len(wheels) > 0 {
		if err := b.db.Create(&wheels).Error; err != nil {
			return fmt.Errorf("failed to insert wheel rows: %w", err)
		}
	}
	wheelDiffs, axleDiffs := convert.DiffsToRows(row.ID, r)
	if len(wheelDiffs) > 0 {
		if err := b.db.Create(&wheelDiffs).Error; err != nil {
			return fmt.Errorf("failed to insert wheel diff rows: %w", err)
		}
	}
	if len(axleDiffs) > 0 {
		if err := b.db.Create(&axleDiffs).Error; err != nil {
			return fmt.Errorf("failed to insert axle diff rows: %w", err)
		}
	}
	if rotators := convert.RotatorsToRows(row.ID, r); len(rotators) > 0 {
		if err := b.db.Create(&rotators).Error; err != nil {
			return fmt.Errorf("failed to insert rotator rows: %w", err)
		}
	}
	if rows := convert.DiagnosticsToRows(row.ID, diags); len(rows) > 0 {
		if err := b.db.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert diagnostic rows: %w", err)
		}
	}

	b.log.Debug().Uint("rigId", row.ID).Int("nodes", r.NodeCount()).Int("beams", r.BeamCount()).Msg("Exported rig to SQLite")
	return nil
}
