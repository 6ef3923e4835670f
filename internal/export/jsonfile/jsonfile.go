// Package jsonfile exports assembled rigs as JSON documents, optionally
// gzipped. One rig produces one file named after the rig.
package jsonfile

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/pkg/rig"
)

// Document is the root JSON structure written per rig.
type Document struct {
	Tool        string         `json:"tool"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Rig         *rig.Rig       `json:"rig"`
	Diagnostics []diag.Message `json:"diagnostics"`
}

// Backend writes one JSON file per exported rig.
type Backend struct {
	cfg            config.ExportConfig
	lastExportPath string
}

// New creates a JSON file backend.
func New(cfg config.ExportConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init ensures the output directory exists.
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// Export writes the rig and its diagnostics to a timestamped file.
func (b *Backend) Export(r *rig.Rig, diags []diag.Message) error {
	doc := Document{
		Tool:        "rigforge",
		GeneratedAt: time.Now().UTC(),
		Rig:         r,
		Diagnostics: diags,
	}

	name := strings.ReplaceAll(r.Name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	if name == "" {
		name = "rig"
	}
	timestamp := doc.GeneratedAt.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, doc); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, doc); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

// ExportedFilePath returns the path of the most recent export.
func (b *Backend) ExportedFilePath() string {
	return b.lastExportPath
}

func writeJSON(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(doc)
}

func writeGzipJSON(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(doc)
}
