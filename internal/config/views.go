package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/viewdeck/viewdeck/pkg/ui"
	"github.com/viewdeck/viewdeck/pkg/view"
)

// ViewDefinition is one declarative view document. Definitions are
// translated into plain create/add calls against the manager; the
// engine never sees YAML.
type ViewDefinition struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	Layout     map[string]any        `yaml:"layout"`
	Metadata   map[string]any        `yaml:"metadata"`
	Tags       []string              `yaml:"tags"`
	Components []ComponentDefinition `yaml:"components"`
}

// ComponentDefinition is one component node in a view document.
type ComponentDefinition struct {
	ID       string                `yaml:"id"`
	Type     string                `yaml:"type"`
	Props    map[string]any        `yaml:"props"`
	Styles   map[string]string     `yaml:"styles"`
	Children []ComponentDefinition `yaml:"children"`
}

// LoadViewDefinitions reads every *.yaml/*.yml file directly under dir,
// sorted by filename for deterministic seeding order.
func LoadViewDefinitions(dir string) ([]ViewDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read views dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	defs := make([]ViewDefinition, 0, len(files))
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("config: read view file %s: %w", name, err)
		}
		var def ViewDefinition
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("config: parse view file %s: %w", name, err)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("config: view file %s: missing name", name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Seed creates the defined views through the manager. Tags land in the
// view's metadata. Seeding requires the authoring gate to be open.
func Seed(ctx context.Context, manager *view.Manager, defs []ViewDefinition) error {
	for _, def := range defs {
		metadata := def.Metadata
		if len(def.Tags) > 0 {
			if metadata == nil {
				metadata = map[string]any{}
			}
			metadata["tags"] = def.Tags
		}

		v, err := manager.CreateView(ctx, def.Name, def.ID, def.Layout, metadata)
		if err != nil {
			return fmt.Errorf("config: seed view %q: %w", def.Name, err)
		}
		for _, c := range def.Components {
			if _, err := manager.AddComponent(ctx, v.ID, view.AddComponentParams{
				Type:        ui.ComponentType(c.Type),
				Props:       c.Props,
				Styles:      c.Styles,
				ComponentID: c.ID,
				Children:    buildChildren(c.Children),
			}); err != nil {
				return fmt.Errorf("config: seed view %q component %q: %w", def.Name, c.ID, err)
			}
		}
	}
	return nil
}

func buildChildren(defs []ComponentDefinition) []*ui.Component {
	if len(defs) == 0 {
		return nil
	}
	children := make([]*ui.Component, 0, len(defs))
	for _, def := range defs {
		children = append(children, &ui.Component{
			ID:       def.ID,
			Type:     ui.ComponentType(def.Type),
			Props:    def.Props,
			Styles:   def.Styles,
			Children: buildChildren(def.Children),
		})
	}
	return children
}
