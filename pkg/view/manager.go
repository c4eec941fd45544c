// Package view contains the orchestrator for all view and component
// operations. The Manager is the only place business rules live: it
// validates component instantiation against the registry, applies
// mutations to the store under a per-view exclusivity guarantee, and
// fans accepted updates out through the push channel.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/viewdeck/viewdeck/pkg/adapter"
	"github.com/viewdeck/viewdeck/pkg/metrics"
	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/registry"
	"github.com/viewdeck/viewdeck/pkg/store"
	"github.com/viewdeck/viewdeck/pkg/ui"
)

// Config holds configuration for the view manager.
type Config struct {
	// AuthoringEnabled gates every mutating operation. Reads, renders
	// and pushes keep working when false.
	AuthoringEnabled bool

	// MaxComponentsPerView limits the total node count of a view's
	// component tree. 0 means no limit.
	MaxComponentsPerView int

	// MaxHistoryEntries bounds the retained update history.
	// Default: 100.
	MaxHistoryEntries int

	// DefaultAdapter is the adapter used when none is named.
	// Default: "json".
	DefaultAdapter string

	// EnabledAdapters restricts which adapter types may be registered.
	// Empty means all.
	EnabledAdapters []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AuthoringEnabled:     true,
		MaxComponentsPerView: 0,
		MaxHistoryEntries:    100,
		DefaultAdapter:       adapter.TypeJSON,
	}
}

// AddComponentParams describes one component to add to a view.
type AddComponentParams struct {
	Type   ui.ComponentType
	Props  map[string]any
	Styles map[string]string

	// ComponentID is optional; a uuid is generated when empty.
	ComponentID string

	// Position inserts at an index in the view's top-level component
	// list, clamped to the valid range. nil appends.
	Position *int

	// Children are attached to the new component as-is.
	Children []*ui.Component
}

// Manager orchestrates views, components, rendering and push fan-out.
// Mutations on the same view id are serialized; distinct views proceed
// concurrently. It is safe for concurrent use.
type Manager struct {
	config   *Config
	store    store.ViewStore
	channel  *push.Channel
	registry *registry.Registry

	adapters *adapterSet
	history  *History
	locks    *lockTable

	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a Manager wired to the given collaborators. A nil config
// uses DefaultConfig; a nil channel disables push fan-out. The json and
// html adapters are registered up front, subject to EnabledAdapters.
func New(config *Config, st store.ViewStore, channel *push.Channel, reg *registry.Registry, logger *slog.Logger) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DefaultAdapter == "" {
		config.DefaultAdapter = adapter.TypeJSON
	}
	if reg == nil {
		reg = registry.New()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		config:   config,
		store:    st,
		channel:  channel,
		registry: reg,
		adapters: newAdapterSet(config.EnabledAdapters),
		history:  NewHistory(config.MaxHistoryEntries),
		locks:    newLockTable(),
		logger:   logger.With("component", "view_manager"),
		tracer:   otel.Tracer("github.com/viewdeck/viewdeck/pkg/view"),
	}

	// Built-in adapters. Registration only fails for disabled types,
	// which is exactly what EnabledAdapters is for.
	_ = m.RegisterAdapter(adapter.NewJSON())
	_ = m.RegisterAdapter(adapter.NewHTML())
	return m
}

// Registry returns the component registry.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Channel returns the push channel, nil when push is disabled.
func (m *Manager) Channel() *push.Channel {
	return m.channel
}

// DefaultAdapter returns the adapter type used when none is named.
func (m *Manager) DefaultAdapter() string {
	return m.config.DefaultAdapter
}

// History returns up to limit retained updates, chronological order
// with the newest last. viewID filters to one view; empty means all.
func (m *Manager) History(viewID string, limit int) []ui.Update {
	return m.history.Recent(viewID, limit)
}

// CreateView creates a view at version 1 and persists it. viewID is
// optional; a uuid is generated when empty. Creation is not broadcast:
// nothing can be subscribed to a view before it exists, and wildcard
// subscribers see it on the first mutation or push.
func (m *Manager) CreateView(ctx context.Context, name, viewID string, layout, metadata map[string]any) (*ui.View, error) {
	ctx, span := m.tracer.Start(ctx, "view.create",
		trace.WithAttributes(attribute.String("view.name", name)))
	defer span.End()

	if !m.config.AuthoringEnabled {
		return nil, ErrAuthoringDisabled
	}
	if viewID == "" {
		viewID = uuid.NewString()
	}

	start := time.Now()
	lock := m.locks.acquire(viewID)
	view, err := m.createLocked(ctx, name, viewID, layout, metadata)
	m.locks.release(viewID, lock)
	metrics.RecordMutation("create_view", statusOf(err), time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	m.recordViewCount(ctx)
	m.logger.Info("view created", "view_id", view.ID, "name", name)
	return view, nil
}

func (m *Manager) createLocked(ctx context.Context, name, viewID string, layout, metadata map[string]any) (*ui.View, error) {
	_, err := m.store.Get(ctx, viewID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrViewExists, viewID)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	if layout == nil {
		layout = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := time.Now().UTC()
	view := &ui.View{
		ID:         viewID,
		Name:       name,
		Components: []*ui.Component{},
		Layout:     layout,
		Metadata:   metadata,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.Save(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

// GetView fetches a view by id.
func (m *Manager) GetView(ctx context.Context, viewID string) (*ui.View, error) {
	view, err := m.store.Get(ctx, viewID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	return view, err
}

// ListViews returns all views in creation order.
func (m *Manager) ListViews(ctx context.Context) ([]*ui.View, error) {
	return m.store.List(ctx)
}

// DeleteView removes a view. Removal is not broadcast; clients detect
// it by absence on their next full fetch.
func (m *Manager) DeleteView(ctx context.Context, viewID string) error {
	ctx, span := m.tracer.Start(ctx, "view.delete",
		trace.WithAttributes(attribute.String("view.id", viewID)))
	defer span.End()

	if !m.config.AuthoringEnabled {
		return ErrAuthoringDisabled
	}

	start := time.Now()
	lock := m.locks.acquire(viewID)
	err := m.store.Delete(ctx, viewID)
	m.locks.release(viewID, lock)
	metrics.RecordMutation("delete_view", statusOf(err), time.Since(start).Seconds())

	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	if err != nil {
		return err
	}
	m.recordViewCount(ctx)
	m.logger.Info("view deleted", "view_id", viewID)
	return nil
}

// AddComponent instantiates a component through the registry and
// inserts it into the view's top-level list. Bumps the version and
// broadcasts an add_component update.
func (m *Manager) AddComponent(ctx context.Context, viewID string, params AddComponentParams) (*ui.Component, error) {
	ctx, span := m.tracer.Start(ctx, "view.add_component", trace.WithAttributes(
		attribute.String("view.id", viewID),
		attribute.String("component.type", string(params.Type))))
	defer span.End()

	var added *ui.Component
	_, err := m.applyMutation(ctx, viewID, ui.ActionAddComponent, func(view *ui.View) (map[string]any, error) {
		componentID := params.ComponentID
		if componentID == "" {
			componentID = uuid.NewString()
		}
		if ui.FindComponent(view.Components, componentID) != nil {
			return nil, fmt.Errorf("%w: %s", ErrComponentExists, componentID)
		}

		component, err := m.registry.Instantiate(params.Type, componentID, params.Props, params.Styles, params.Children)
		if err != nil {
			return nil, err
		}

		if limit := m.config.MaxComponentsPerView; limit > 0 {
			if ui.CountComponents(view.Components)+component.Count() > limit {
				return nil, fmt.Errorf("%w: limit %d", ErrComponentLimit, limit)
			}
		}

		position := len(view.Components)
		if params.Position != nil {
			position = clamp(*params.Position, 0, len(view.Components))
		}
		view.Components = append(view.Components, nil)
		copy(view.Components[position+1:], view.Components[position:])
		view.Components[position] = component

		added = component
		return map[string]any{
			"component": component,
			"position":  position,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateComponent merges props and styles over a component's existing
// values. The merge is a shallow key merge, not a replacement: keys not
// named keep their current values. Bumps the version and broadcasts an
// update_component update.
func (m *Manager) UpdateComponent(ctx context.Context, viewID, componentID string, props map[string]any, styles map[string]string) (*ui.Component, error) {
	ctx, span := m.tracer.Start(ctx, "view.update_component", trace.WithAttributes(
		attribute.String("view.id", viewID),
		attribute.String("component.id", componentID)))
	defer span.End()

	var updated *ui.Component
	_, err := m.applyMutation(ctx, viewID, ui.ActionUpdateComponent, func(view *ui.View) (map[string]any, error) {
		component := ui.FindComponent(view.Components, componentID)
		if component == nil {
			return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, componentID)
		}

		if len(props) > 0 && component.Props == nil {
			component.Props = make(map[string]any, len(props))
		}
		for k, v := range props {
			component.Props[k] = v
		}
		if len(styles) > 0 && component.Styles == nil {
			component.Styles = make(map[string]string, len(styles))
		}
		for k, v := range styles {
			component.Styles[k] = v
		}
		component.UpdatedAt = time.Now().UTC()

		updated = component
		return map[string]any{
			"component_id": componentID,
			"props":        props,
			"styles":       styles,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveComponent removes a component and its subtree from wherever it
// sits in the view's tree. Bumps the version and broadcasts a
// remove_component update.
func (m *Manager) RemoveComponent(ctx context.Context, viewID, componentID string) error {
	ctx, span := m.tracer.Start(ctx, "view.remove_component", trace.WithAttributes(
		attribute.String("view.id", viewID),
		attribute.String("component.id", componentID)))
	defer span.End()

	_, err := m.applyMutation(ctx, viewID, ui.ActionRemoveComponent, func(view *ui.View) (map[string]any, error) {
		components, removed := ui.RemoveComponent(view.Components, componentID)
		if !removed {
			return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, componentID)
		}
		view.Components = components
		return map[string]any{"component_id": componentID}, nil
	})
	return err
}

// PushView re-broadcasts the full current state of a view to its
// subscribers without bumping the version. Used to resync a newly
// connected or desynced client; allowed while authoring is disabled
// since it mutates nothing. Returns the number of clients reached.
func (m *Manager) PushView(ctx context.Context, viewID string) (int, error) {
	ctx, span := m.tracer.Start(ctx, "view.push",
		trace.WithAttributes(attribute.String("view.id", viewID)))
	defer span.End()

	view, err := m.GetView(ctx, viewID)
	if err != nil {
		return 0, err
	}

	update := ui.Update{
		ViewID:    viewID,
		Action:    ui.ActionFull,
		Payload:   map[string]any{"view": view},
		Version:   view.Version,
		Timestamp: time.Now().UTC(),
	}
	m.history.Record(update)
	if m.channel == nil {
		return 0, nil
	}
	return m.channel.Publish(update), nil
}

// Render projects a view through the named adapter. An empty
// adapterType uses the configured default.
func (m *Manager) Render(ctx context.Context, viewID, adapterType string) (*adapter.Result, error) {
	if adapterType == "" {
		adapterType = m.config.DefaultAdapter
	}
	ctx, span := m.tracer.Start(ctx, "view.render", trace.WithAttributes(
		attribute.String("view.id", viewID),
		attribute.String("adapter.type", adapterType)))
	defer span.End()

	a, err := m.adapters.get(adapterType)
	if err != nil {
		return nil, err
	}
	view, err := m.GetView(ctx, viewID)
	if err != nil {
		return nil, err
	}

	result, err := a.RenderView(view)
	if err != nil {
		return nil, fmt.Errorf("view: render %s with %s: %w", viewID, adapterType, err)
	}
	metrics.RecordRender(adapterType)
	return result, nil
}

// RenderComponent projects a single component through the named
// adapter without touching the store.
func (m *Manager) RenderComponent(ctx context.Context, component *ui.Component, adapterType string) (*adapter.Result, error) {
	if adapterType == "" {
		adapterType = m.config.DefaultAdapter
	}
	a, err := m.adapters.get(adapterType)
	if err != nil {
		return nil, err
	}
	result, err := a.RenderComponent(component)
	if err != nil {
		return nil, fmt.Errorf("view: render component %s with %s: %w", component.ID, adapterType, err)
	}
	metrics.RecordRender(adapterType)
	return result, nil
}

// RegisterAdapter adds an adapter to the resolvable set, replacing any
// prior adapter of the same type. Returns ErrAdapterDisabled when the
// type is excluded by EnabledAdapters.
func (m *Manager) RegisterAdapter(a adapter.Adapter) error {
	return m.adapters.register(a)
}

// Adapters lists the registered adapter types in registration order.
func (m *Manager) Adapters() []string {
	return m.adapters.types()
}

// applyMutation runs fn against the view under its per-view lock,
// bumps the version, persists, and — outside the lock — records and
// broadcasts the resulting update. fn edits the view in place and
// returns the update payload; any error from fn aborts the mutation
// with the stored view untouched.
func (m *Manager) applyMutation(ctx context.Context, viewID string, action ui.Action, fn func(*ui.View) (map[string]any, error)) (*ui.View, error) {
	if !m.config.AuthoringEnabled {
		return nil, ErrAuthoringDisabled
	}

	start := time.Now()
	lock := m.locks.acquire(viewID)
	view, payload, err := m.mutateLocked(ctx, viewID, fn)
	m.locks.release(viewID, lock)
	metrics.RecordMutation(string(action), statusOf(err), time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}

	update := ui.Update{
		ViewID:    viewID,
		Action:    action,
		Payload:   payload,
		Version:   view.Version,
		Timestamp: time.Now().UTC(),
	}
	m.history.Record(update)
	if m.channel != nil {
		m.channel.Publish(update)
	}

	m.logger.Debug("mutation applied",
		"view_id", viewID,
		"action", string(action),
		"version", view.Version)
	return view, nil
}

func (m *Manager) mutateLocked(ctx context.Context, viewID string, fn func(*ui.View) (map[string]any, error)) (*ui.View, map[string]any, error) {
	view, err := m.store.Get(ctx, viewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
		}
		return nil, nil, err
	}

	payload, err := fn(view)
	if err != nil {
		return nil, nil, err
	}

	view.Version++
	view.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, view); err != nil {
		return nil, nil, err
	}
	return view, payload, nil
}

// recordViewCount refreshes the active-view gauge, best effort.
func (m *Manager) recordViewCount(ctx context.Context) {
	views, err := m.store.List(ctx)
	if err != nil {
		return
	}
	metrics.RecordViewCount(len(views))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
