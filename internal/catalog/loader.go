package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/actions.yaml data/techs.yaml
var dataFS embed.FS

// Load reads and validates the embedded catalogs.
func Load() (*Catalog, error) {
	actions, err := parseFile[[]*Action]("data/actions.yaml")
	if err != nil {
		return nil, err
	}
	techs, err := parseFile[[]*Tech]("data/techs.yaml")
	if err != nil {
		return nil, err
	}
	return Build(actions, techs)
}

// MustLoad loads the embedded catalogs, panicking on error. A broken catalog
// means a broken build, not a runtime condition.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func parseFile[T any](name string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(name)
	if err != nil {
		return result, fmt.Errorf("read embedded file %s: %w", name, err)
	}

	if err := yaml.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("parse %s: %w", name, err)
	}

	return result, nil
}
