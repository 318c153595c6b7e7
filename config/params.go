package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/pixelpipe"
)

// ParamsFromPairs turns key=value pairs from the command line into a YAML
// mapping that the registry decodes like recipe options. Values are left
// untagged so "2" decodes as a number and "rgb" as a string.
func ParamsFromPairs(pairs []string) ([]byte, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: param %q is not key=value", pixelpipe.ErrInvalidOptions, pair)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: param %q given twice", pixelpipe.ErrInvalidOptions, key)
		}
		seen[key] = true
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strings.TrimSpace(value)},
		)
	}
	return yaml.Marshal(m)
}
