package rigdef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRef(t *testing.T) {
	assert.Equal(t, NodeRef{Number: 12}, Num(12))
	assert.False(t, Num(12).IsNamed())
	assert.False(t, Num(0).IsUnset())

	named := Named("hitch")
	assert.True(t, named.IsNamed())
	assert.False(t, named.IsUnset())
	assert.Equal(t, InvalidNumber, named.Number)

	assert.True(t, NodeRef{Number: InvalidNumber}.IsUnset())
	assert.False(t, NodeRef{Number: 99, Imported: true}.IsUnset())
}

func TestDocumentSelected(t *testing.T) {
	root := &Module{}
	trailer := &Module{Name: "trailer"}
	crane := &Module{Name: "crane"}
	doc := Document{
		Root:    root,
		Modules: []*Module{trailer, crane},
	}

	assert.Equal(t, []*Module{root}, doc.Selected())

	doc.SelectedModules = []string{"crane"}
	assert.Equal(t, []*Module{root, crane}, doc.Selected())

	// Selection follows document order, not selection order.
	doc.SelectedModules = []string{"crane", "trailer"}
	assert.Equal(t, []*Module{root, trailer, crane}, doc.Selected())

	doc.SelectedModules = []string{"ghost"}
	assert.Equal(t, []*Module{root}, doc.Selected())

	empty := Document{}
	assert.Empty(t, empty.Selected())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box.json")
	payload := `{
		"name": "box",
		"root": {
			"nodes": [
				{"number": 0, "position": [0, 0, 0]},
				{"number": 1, "position": [0, 0, 1], "options": {"hook": true}}
			],
			"beams": [{"nodes": [{"number": 0}, {"number": 1}]}]
		},
		"modules": [{"name": "trailer"}],
		"advancedDeform": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "box", doc.Name)
	assert.True(t, doc.AdvancedDeform)
	require.NotNil(t, doc.Root)
	require.Len(t, doc.Root.Nodes, 2)
	assert.True(t, doc.Root.Nodes[1].Options.Hook)
	require.Len(t, doc.Root.Beams, 1)
	assert.Equal(t, Num(1), doc.Root.Beams[0].Nodes[1])
	require.Len(t, doc.Modules, 1)
	assert.Equal(t, "trailer", doc.Modules[0].Name)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	rootless := filepath.Join(dir, "rootless.json")
	require.NoError(t, os.WriteFile(rootless, []byte(`{"name": "x"}`), 0644))
	_, err = Load(rootless)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no root module")
}
