// Package registry holds the catalog of component-type definitions:
// prop schemas, default props, and instantiation with validation.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// ErrNotFound is returned when a component type is not registered.
var ErrNotFound = errors.New("registry: component type not found")

// ValidationError reports props that failed a component's schema.
type ValidationError struct {
	Type    ui.ComponentType
	Field   string // JSON pointer to the offending field, "" for the root
	Message string
	Err     error
}

// Error returns the error message with the offending field path.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("registry: invalid props for %q: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("registry: invalid props for %q at %s: %s", e.Type, e.Field, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Definition is an immutable catalog entry for a component type.
// Re-registering the same type replaces the entry wholesale.
type Definition struct {
	Type          ui.ComponentType  `json:"type"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Schema        map[string]any    `json:"schema,omitempty"`
	DefaultProps  map[string]any    `json:"default_props,omitempty"`
	DefaultStyles map[string]string `json:"default_styles,omitempty"`
	RegisteredAt  time.Time         `json:"registered_at"`
}

// Registry is the catalog of component definitions. It is safe for
// concurrent use. Built-in types are registered at construction;
// custom types may be registered at runtime and replace prior entries
// (last writer wins, intentionally, for hot-swappable custom types).
type Registry struct {
	mu       sync.RWMutex
	defs     map[ui.ComponentType]*Definition
	compiled map[ui.ComponentType]*jsonschema.Schema
	order    []ui.ComponentType
}

// New creates a Registry with the built-in component types registered.
func New() *Registry {
	r := &Registry{
		defs:     make(map[ui.ComponentType]*Definition),
		compiled: make(map[ui.ComponentType]*jsonschema.Schema),
	}
	for _, def := range builtinDefinitions() {
		// Built-in schemas are static and known to compile.
		if err := r.Register(def); err != nil {
			panic(fmt.Sprintf("registry: built-in %q: %v", def.Type, err))
		}
	}
	return r
}

// Register inserts or replaces the definition for def.Type. Schemas
// are compiled eagerly so Instantiate never pays compilation cost.
func (r *Registry) Register(def *Definition) error {
	if def.Type == "" {
		return errors.New("registry: definition missing component type")
	}

	var compiled *jsonschema.Schema
	if def.Schema != nil {
		var err error
		compiled, err = compileSchema(def.Type, def.Schema)
		if err != nil {
			return fmt.Errorf("registry: compile schema for %q: %w", def.Type, err)
		}
	}

	if def.RegisteredAt.IsZero() {
		def.RegisteredAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Type]; !exists {
		r.order = append(r.order, def.Type)
	}
	r.defs[def.Type] = def
	if compiled != nil {
		r.compiled[def.Type] = compiled
	} else {
		delete(r.compiled, def.Type)
	}
	return nil
}

// Get returns the definition for a component type.
func (r *Registry) Get(componentType ui.ComponentType) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[componentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, componentType)
	}
	return def, nil
}

// List returns all registered definitions in registration order,
// built-ins first.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.order))
	for _, t := range r.order {
		defs = append(defs, r.defs[t])
	}
	return defs
}

// Instantiate creates a component of the given type. Default props and
// styles are merged under the explicit values (explicit wins key by
// key) and the merged props are validated against the type's schema.
func (r *Registry) Instantiate(componentType ui.ComponentType, id string, props map[string]any, styles map[string]string, children []*ui.Component) (*ui.Component, error) {
	r.mu.RLock()
	def, ok := r.defs[componentType]
	compiled := r.compiled[componentType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, componentType)
	}

	merged := make(map[string]any, len(def.DefaultProps)+len(props))
	for k, v := range def.DefaultProps {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}

	mergedStyles := make(map[string]string, len(def.DefaultStyles)+len(styles))
	for k, v := range def.DefaultStyles {
		mergedStyles[k] = v
	}
	for k, v := range styles {
		mergedStyles[k] = v
	}

	if compiled != nil {
		if err := validateProps(compiled, componentType, merged); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &ui.Component{
		ID:        id,
		Type:      componentType,
		Props:     merged,
		Styles:    mergedStyles,
		Children:  children,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func compileSchema(componentType ui.ComponentType, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("viewdeck:///components/%s.schema.json", componentType)
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// validateProps validates props after a JSON round-trip so numeric
// types match what the schema library expects from decoded JSON.
func validateProps(schema *jsonschema.Schema, componentType ui.ComponentType, props map[string]any) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return &ValidationError{Type: componentType, Message: err.Error(), Err: err}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return &ValidationError{Type: componentType, Message: err.Error(), Err: err}
	}

	if err := schema.Validate(decoded); err != nil {
		field, message := "", err.Error()
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := deepestCause(ve)
			field = leaf.InstanceLocation
			message = leaf.Message
		}
		return &ValidationError{Type: componentType, Field: field, Message: message, Err: err}
	}
	return nil
}

// deepestCause walks to the most specific validation failure.
func deepestCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}
