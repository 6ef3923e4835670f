package jsonfile

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/pkg/rig"
)

func testRig(name string) *rig.Rig {
	r := rig.New(name, rig.Requirements{Nodes: 2, Beams: 1})
	r.Nodes = append(r.Nodes,
		rig.Node{Index: 0, Mass: 50},
		rig.Node{Index: 1, Mass: 50},
	)
	r.Beams = append(r.Beams, rig.Beam{Node1: 0, Node2: 1, RestLength: 1})
	return r
}

func TestExport_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.ExportConfig{OutputDir: dir})
	require.NoError(t, b.Init())
	defer b.Close()

	diags := []diag.Message{
		{Severity: diag.SeverityWarning, Keyword: "wheels", Text: "rim radius exceeds tyre radius"},
	}
	require.NoError(t, b.Export(testRig("my rig: test"), diags))

	path := b.ExportedFilePath()
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".json"))
	// Spaces and colons are not filename material.
	assert.True(t, strings.HasPrefix(filepath.Base(path), "my_rig__test_"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var doc Document
	require.NoError(t, json.NewDecoder(f).Decode(&doc))
	assert.Equal(t, "rigforge", doc.Tool)
	assert.False(t, doc.GeneratedAt.IsZero())
	require.NotNil(t, doc.Rig)
	assert.Equal(t, "my rig: test", doc.Rig.Name)
	assert.Len(t, doc.Rig.Nodes, 2)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, diag.SeverityWarning, doc.Diagnostics[0].Severity)
}

func TestExport_WritesGzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.ExportConfig{OutputDir: dir, CompressOutput: true})
	require.NoError(t, b.Init())

	require.NoError(t, b.Export(testRig("box"), nil))

	path := b.ExportedFilePath()
	assert.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var doc Document
	require.NoError(t, json.NewDecoder(gz).Decode(&doc))
	assert.Equal(t, "box", doc.Rig.Name)
	assert.Len(t, doc.Rig.Beams, 1)
}

func TestExport_EmptyNameFallsBack(t *testing.T) {
	dir := t.TempDir()
	b := New(config.ExportConfig{OutputDir: dir})
	require.NoError(t, b.Init())

	require.NoError(t, b.Export(testRig(""), nil))
	assert.True(t, strings.HasPrefix(filepath.Base(b.ExportedFilePath()), "rig_"))
}

func TestInit_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "rigs")
	b := New(config.ExportConfig{OutputDir: dir})

	require.NoError(t, b.Init())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
