package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed modules.yaml
var defaultManifest []byte

// ModuleManifest lists the account map keys each business module requires.
type ModuleManifest struct {
	Modules map[string][]string `yaml:"modules"`
}

// LoadModuleManifest reads the manifest at path, or the built-in one when path is empty.
func LoadModuleManifest(path string) (*ModuleManifest, error) {
	data := defaultManifest
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading module manifest: %w", err)
		}
	}
	return ParseModuleManifest(data)
}

// ParseModuleManifest decodes a YAML manifest.
func ParseModuleManifest(data []byte) (*ModuleManifest, error) {
	var m ModuleManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing module manifest: %w", err)
	}
	if len(m.Modules) == 0 {
		return nil, fmt.Errorf("module manifest declares no modules")
	}
	return &m, nil
}

// RequiredKeys returns the keys of one module, or the union over all modules when module is empty.
func (m *ModuleManifest) RequiredKeys(module string) ([]string, error) {
	if module != "" {
		keys, ok := m.Modules[module]
		if !ok {
			return nil, fmt.Errorf("unknown module %q", module)
		}
		return dedupe(keys), nil
	}
	var all []string
	for _, keys := range m.Modules {
		all = append(all, keys...)
	}
	return dedupe(all), nil
}

// ModuleNames returns the declared module names in order.
func (m *ModuleManifest) ModuleNames() []string {
	names := make([]string, 0, len(m.Modules))
	for name := range m.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
