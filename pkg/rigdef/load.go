package rigdef

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a parsed rig document from its JSON serialization.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling document %s: %w", path, err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("document %s has no root module", path)
	}
	return &doc, nil
}
