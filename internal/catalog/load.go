package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"productrag/internal/domain"
)

// file is the on-disk catalog layout. A bare list of items is accepted too.
type file struct {
	Items []domain.Item `json:"items" yaml:"items"`
}

// LoadFile reads a catalog from a .json, .yaml or .yml file and validates
// every item. Duplicate ids are rejected.
func LoadFile(path string) ([]domain.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var items []domain.Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		items, err = decodeJSON(data)
	case ".yaml", ".yml":
		items, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", domain.ErrInvalidArgument, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse catalog %s: %v", domain.ErrInvalidArgument, path, err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", domain.ErrInvalidArgument, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return items, nil
}

func decodeJSON(data []byte) ([]domain.Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []domain.Item
		err := json.Unmarshal(trimmed, &items)
		return items, err
	}
	var f file
	err := json.Unmarshal(trimmed, &f)
	return f.Items, err
}

func decodeYAML(data []byte) ([]domain.Item, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var items []domain.Item
		err := doc.Decode(&items)
		return items, err
	}
	var f file
	err := doc.Decode(&f)
	return f.Items, err
}
