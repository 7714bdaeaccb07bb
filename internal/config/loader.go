package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// loadFile reads a TOML or YAML settings file into a nested map. A missing
// file is not an error; it reads as empty.
func loadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var values map[string]any
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		return values, nil
	case ".yaml", ".yml":
		var values map[string]any
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		return values, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
