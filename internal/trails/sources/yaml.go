package sources

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/runbuddy/internal/trails"
)

// YAMLCatalog reads trails from a YAML file. The file holds either a list
// of trail mappings or a mapping with a "trails" list. Keys may use any
// header spelling trails.NormalizeRow accepts.
type YAMLCatalog struct {
	path string
}

func NewYAMLCatalog(path string) *YAMLCatalog {
	return &YAMLCatalog{path: path}
}

func (y *YAMLCatalog) Load(_ context.Context) ([]trails.Record, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		return nil, fmt.Errorf("reading trail file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes trail records from YAML bytes.
func ParseYAML(data []byte) ([]trails.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing trail file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var list []map[string]any
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("decoding trails: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Trails []map[string]any `yaml:"trails"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decoding trails: %w", err)
		}
		list = wrapped.Trails
	default:
		return nil, fmt.Errorf("trail file must be a list or a mapping with a trails key")
	}

	out := make([]trails.Record, 0, len(list))
	for _, item := range list {
		row := make(map[string]string, len(item))
		for k, v := range item {
			if v != nil {
				row[k] = fmt.Sprint(v)
			}
		}
		if r := trails.NormalizeRow(row); r.Name != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// WriteYAML writes records in the canonical key spelling.
func WriteYAML(path string, records []trails.Record) error {
	data, err := yaml.Marshal(struct {
		Trails []trails.Record `yaml:"trails"`
	}{records})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
