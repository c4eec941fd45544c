package view

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/registry"
	"github.com/viewdeck/viewdeck/pkg/store"
	"github.com/viewdeck/viewdeck/pkg/ui"
)

func newTestManager(config *Config) *Manager {
	return New(config, store.NewMemoryStore(0), push.NewChannel(nil, nil), registry.New(), nil)
}

func intPtr(v int) *int { return &v }

func TestManager_CreateView(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, err := m.CreateView(ctx, "Sales", "", nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.ID == "" {
		t.Error("expected a generated view id")
	}
	if view.Version != 1 {
		t.Errorf("expected version 1, got %d", view.Version)
	}
	if len(view.Components) != 0 {
		t.Errorf("expected empty component list, got %d", len(view.Components))
	}

	got, err := m.GetView(ctx, view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Sales" {
		t.Errorf("expected name Sales, got %s", got.Name)
	}
}

func TestManager_CreateViewDuplicateID(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	if _, err := m.CreateView(ctx, "First", "dash", nil, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.CreateView(ctx, "Second", "dash", nil, nil); !errors.Is(err, ErrViewExists) {
		t.Errorf("expected ErrViewExists, got %v", err)
	}
}

func TestManager_CreateViewDoesNotBroadcast(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	client, _ := m.Channel().Connect("watcher", ui.ChannelWebSocket, nil)
	m.Channel().Subscribe("watcher", ui.WildcardView)

	if _, err := m.CreateView(ctx, "Quiet", "", nil, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case update := <-client.Updates():
		t.Errorf("unexpected broadcast on create: %+v", update)
	default:
	}
}

func TestManager_AddComponentScenario(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, err := m.CreateView(ctx, "Sales", "", nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	client, _ := m.Channel().Connect("watcher", ui.ChannelWebSocket, nil)
	m.Channel().Subscribe("watcher", view.ID)

	component, err := m.AddComponent(ctx, view.ID, AddComponentParams{
		Type:  ui.TypeMetric,
		Props: map[string]any{"label": "Revenue", "value": "$50,000"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if component.Props["label"] != "Revenue" {
		t.Errorf("expected explicit props applied, got %v", component.Props)
	}

	got, _ := m.GetView(ctx, view.ID)
	if got.Version != 2 {
		t.Errorf("expected version 2 after add, got %d", got.Version)
	}
	if len(got.Components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(got.Components))
	}

	select {
	case update := <-client.Updates():
		if update.Action != ui.ActionAddComponent {
			t.Errorf("expected add_component action, got %s", update.Action)
		}
		if update.Version != 2 {
			t.Errorf("expected update version 2, got %d", update.Version)
		}
	default:
		t.Error("expected subscriber to receive the update")
	}
}

func TestManager_AddComponentPosition(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Ordered", "", nil, nil)
	for _, id := range []string{"a", "b"} {
		if _, err := m.AddComponent(ctx, view.ID, AddComponentParams{
			Type: ui.TypeText, ComponentID: id,
			Props: map[string]any{"content": id},
		}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	// Insert at the front.
	if _, err := m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "front",
		Props:    map[string]any{"content": "front"},
		Position: intPtr(0),
	}); err != nil {
		t.Fatalf("add front: %v", err)
	}
	// Out-of-range positions clamp rather than fail.
	if _, err := m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "back",
		Props:    map[string]any{"content": "back"},
		Position: intPtr(99),
	}); err != nil {
		t.Fatalf("add back: %v", err)
	}

	got, _ := m.GetView(ctx, view.ID)
	want := []string{"front", "a", "b", "back"}
	for i, c := range got.Components {
		if c.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], c.ID)
		}
	}
}

func TestManager_AddComponentDuplicateID(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Dup", "", nil, nil)
	params := AddComponentParams{
		Type: ui.TypeText, ComponentID: "c1",
		Props: map[string]any{"content": "x"},
	}
	if _, err := m.AddComponent(ctx, view.ID, params); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.AddComponent(ctx, view.ID, params); !errors.Is(err, ErrComponentExists) {
		t.Errorf("expected ErrComponentExists, got %v", err)
	}

	got, _ := m.GetView(ctx, view.ID)
	if got.Version != 2 {
		t.Errorf("expected rejected add to leave version at 2, got %d", got.Version)
	}
}

func TestManager_ComponentLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxComponentsPerView = 2
	m := newTestManager(config)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Small", "", nil, nil)
	for _, id := range []string{"a", "b"} {
		if _, err := m.AddComponent(ctx, view.ID, AddComponentParams{
			Type: ui.TypeText, ComponentID: id,
			Props: map[string]any{"content": id},
		}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	_, err := m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "c",
		Props: map[string]any{"content": "c"},
	})
	if !errors.Is(err, ErrComponentLimit) {
		t.Errorf("expected ErrComponentLimit, got %v", err)
	}
	got, _ := m.GetView(ctx, view.ID)
	if got.Version != 3 {
		t.Errorf("expected version unchanged at 3, got %d", got.Version)
	}
}

func TestManager_VersionMonotonicity(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Mono", "", nil, nil)
	last := view.Version

	mutations := []func() error{
		func() error {
			_, err := m.AddComponent(ctx, view.ID, AddComponentParams{
				Type: ui.TypeText, ComponentID: "t1",
				Props: map[string]any{"content": "a"},
			})
			return err
		},
		func() error {
			_, err := m.UpdateComponent(ctx, view.ID, "t1", map[string]any{"content": "b"}, nil)
			return err
		},
		func() error { return m.RemoveComponent(ctx, view.ID, "t1") },
	}
	for i, mutate := range mutations {
		if err := mutate(); err != nil {
			t.Fatalf("mutation %d: %v", i, err)
		}
		got, _ := m.GetView(ctx, view.ID)
		if got.Version != last+1 {
			t.Errorf("mutation %d: expected version %d, got %d", i, last+1, got.Version)
		}
		last = got.Version
	}
}

func TestManager_AddThenRemoveRestoresListCostsTwoVersions(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Twice", "", nil, nil)
	m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "keep",
		Props: map[string]any{"content": "stays"},
	})
	before, _ := m.GetView(ctx, view.ID)

	if _, err := m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "temp",
		Props: map[string]any{"content": "gone"},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.RemoveComponent(ctx, view.ID, "temp"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	after, _ := m.GetView(ctx, view.ID)
	if after.Version != before.Version+2 {
		t.Errorf("expected version %d, got %d", before.Version+2, after.Version)
	}
	if len(after.Components) != len(before.Components) {
		t.Fatalf("expected component list restored, got %d components", len(after.Components))
	}
	for i := range before.Components {
		if after.Components[i].ID != before.Components[i].ID {
			t.Errorf("position %d: expected %s, got %s",
				i, before.Components[i].ID, after.Components[i].ID)
		}
	}
}

func TestManager_ConcurrentAddsDistinctVersions(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Busy", "", nil, nil)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AddComponent(ctx, view.ID, AddComponentParams{
				Type:  ui.TypeText,
				Props: map[string]any{"content": "x"},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add: %v", err)
		}
	}

	got, _ := m.GetView(ctx, view.ID)
	if got.Version != 1+n {
		t.Errorf("expected version %d after %d adds, got %d", 1+n, n, got.Version)
	}
	if len(got.Components) != n {
		t.Errorf("expected %d components, got %d", n, len(got.Components))
	}

	// The recorded updates carry n distinct, consecutive versions.
	seen := make(map[int]bool)
	for _, update := range m.History(view.ID, 0) {
		if update.Action != ui.ActionAddComponent {
			continue
		}
		if seen[update.Version] {
			t.Errorf("version %d recorded twice (lost update)", update.Version)
		}
		seen[update.Version] = true
	}
	for v := 2; v <= 1+n; v++ {
		if !seen[v] {
			t.Errorf("missing update for version %d", v)
		}
	}
}

func TestManager_UpdateComponentShallowMerge(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Merge", "", nil, nil)
	m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeMetric, ComponentID: "rev",
		Props:  map[string]any{"label": "Revenue", "value": "$1"},
		Styles: map[string]string{"color": "black"},
	})

	updated, err := m.UpdateComponent(ctx, view.ID, "rev",
		map[string]any{"value": "$2"},
		map[string]string{"font-weight": "bold"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Props["value"] != "$2" {
		t.Errorf("expected value replaced, got %v", updated.Props["value"])
	}
	if updated.Props["label"] != "Revenue" {
		t.Errorf("expected untouched keys kept, got %v", updated.Props)
	}
	if updated.Styles["color"] != "black" || updated.Styles["font-weight"] != "bold" {
		t.Errorf("expected styles merged, got %v", updated.Styles)
	}
}

func TestManager_UpdateMissingComponentLeavesVersion(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Stable", "", nil, nil)

	_, err := m.UpdateComponent(ctx, view.ID, "ghost", map[string]any{"x": 1}, nil)
	if !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("expected ErrComponentNotFound, got %v", err)
	}

	got, _ := m.GetView(ctx, view.ID)
	if got.Version != 1 {
		t.Errorf("expected version unchanged at 1, got %d", got.Version)
	}
}

func TestManager_RemoveNestedComponent(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Nested", "", nil, nil)
	child := &ui.Component{ID: "inner", Type: ui.TypeText, Props: map[string]any{"content": "hi"}}
	m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeCard, ComponentID: "outer",
		Props:    map[string]any{"title": "Card"},
		Children: []*ui.Component{child},
	})

	if err := m.RemoveComponent(ctx, view.ID, "inner"); err != nil {
		t.Fatalf("remove nested: %v", err)
	}
	got, _ := m.GetView(ctx, view.ID)
	if ui.FindComponent(got.Components, "inner") != nil {
		t.Error("expected nested component removed")
	}
	if ui.FindComponent(got.Components, "outer") == nil {
		t.Error("expected parent to survive")
	}
}

func TestManager_CustomTypeDefaultProps(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	defaults := map[string]any{"min": float64(0), "max": float64(100)}
	if err := m.Registry().Register(&registry.Definition{
		Type:         ui.ComponentType("gauge"),
		Name:         "Gauge",
		DefaultProps: defaults,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	view, _ := m.CreateView(ctx, "Gauges", "", nil, nil)
	component, err := m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.ComponentType("gauge"),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !reflect.DeepEqual(component.Props, defaults) {
		t.Errorf("expected props to equal default_props exactly:\n got %v\nwant %v",
			component.Props, defaults)
	}
}

func TestManager_PushViewDoesNotBumpVersion(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Resync", "", nil, nil)
	client, _ := m.Channel().Connect("watcher", ui.ChannelWebSocket, nil)
	m.Channel().Subscribe("watcher", view.ID)

	recipients, err := m.PushView(ctx, view.ID)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if recipients != 1 {
		t.Errorf("expected 1 recipient, got %d", recipients)
	}

	select {
	case update := <-client.Updates():
		if update.Action != ui.ActionFull {
			t.Errorf("expected full action, got %s", update.Action)
		}
		if update.Version != 1 {
			t.Errorf("expected version 1, got %d", update.Version)
		}
	default:
		t.Error("expected subscriber to receive the full snapshot")
	}

	got, _ := m.GetView(ctx, view.ID)
	if got.Version != 1 {
		t.Errorf("expected push to leave version at 1, got %d", got.Version)
	}
}

func TestManager_SubscriberIsolation(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	a, _ := m.CreateView(ctx, "A", "", nil, nil)
	b, _ := m.CreateView(ctx, "B", "", nil, nil)

	onlyA, _ := m.Channel().Connect("only-a", ui.ChannelWebSocket, nil)
	everything, _ := m.Channel().Connect("everything", ui.ChannelWebSocket, nil)
	m.Channel().Subscribe("only-a", a.ID)
	m.Channel().Subscribe("everything", ui.WildcardView)

	m.AddComponent(ctx, a.ID, AddComponentParams{
		Type: ui.TypeText, Props: map[string]any{"content": "a"},
	})
	m.AddComponent(ctx, b.ID, AddComponentParams{
		Type: ui.TypeText, Props: map[string]any{"content": "b"},
	})

	// The A-only client sees exactly one update, for view A.
	select {
	case update := <-onlyA.Updates():
		if update.ViewID != a.ID {
			t.Errorf("expected update for view A, got %s", update.ViewID)
		}
	default:
		t.Error("expected A subscriber to receive A's update")
	}
	select {
	case update := <-onlyA.Updates():
		t.Errorf("unexpected second update for A-only client: %+v", update)
	default:
	}

	// The wildcard client sees both.
	for i := 0; i < 2; i++ {
		select {
		case <-everything.Updates():
		default:
			t.Errorf("expected wildcard client to receive update %d", i+1)
		}
	}
}

func TestManager_DeleteView(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Doomed", "", nil, nil)
	client, _ := m.Channel().Connect("watcher", ui.ChannelWebSocket, nil)
	m.Channel().Subscribe("watcher", ui.WildcardView)

	if err := m.DeleteView(ctx, view.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteView(ctx, view.ID); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound on second delete, got %v", err)
	}

	// Deletion is not broadcast.
	select {
	case update := <-client.Updates():
		t.Errorf("unexpected broadcast on delete: %+v", update)
	default:
	}
}

func TestManager_AuthoringGate(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Gated", "", nil, nil)
	m.AddComponent(ctx, view.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "t1",
		Props: map[string]any{"content": "x"},
	})

	config := DefaultConfig()
	config.AuthoringEnabled = false
	readonly := New(config, m.store, m.channel, m.registry, nil)

	mutations := map[string]func() error{
		"create": func() error {
			_, err := readonly.CreateView(ctx, "Nope", "", nil, nil)
			return err
		},
		"delete": func() error { return readonly.DeleteView(ctx, view.ID) },
		"add": func() error {
			_, err := readonly.AddComponent(ctx, view.ID, AddComponentParams{
				Type: ui.TypeText, Props: map[string]any{"content": "y"},
			})
			return err
		},
		"update": func() error {
			_, err := readonly.UpdateComponent(ctx, view.ID, "t1", map[string]any{"content": "z"}, nil)
			return err
		},
		"remove": func() error { return readonly.RemoveComponent(ctx, view.ID, "t1") },
	}
	for name, mutate := range mutations {
		if err := mutate(); !errors.Is(err, ErrAuthoringDisabled) {
			t.Errorf("%s: expected ErrAuthoringDisabled, got %v", name, err)
		}
	}

	// Reads, renders and pushes keep working.
	if _, err := readonly.GetView(ctx, view.ID); err != nil {
		t.Errorf("get while gated: %v", err)
	}
	if _, err := readonly.ListViews(ctx); err != nil {
		t.Errorf("list while gated: %v", err)
	}
	if _, err := readonly.Render(ctx, view.ID, "json"); err != nil {
		t.Errorf("render while gated: %v", err)
	}
	if _, err := readonly.PushView(ctx, view.ID); err != nil {
		t.Errorf("push while gated: %v", err)
	}

	got, _ := readonly.GetView(ctx, view.ID)
	if got.Version != 2 {
		t.Errorf("expected version untouched at 2, got %d", got.Version)
	}
}

func TestManager_Render(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	view, _ := m.CreateView(ctx, "Rendered", "", nil, nil)

	result, err := m.Render(ctx, view.ID, "")
	if err != nil {
		t.Fatalf("render default adapter: %v", err)
	}
	if result.AdapterType != "json" {
		t.Errorf("expected default json adapter, got %s", result.AdapterType)
	}
	var decoded ui.View
	if err := json.Unmarshal(result.Content, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != view.ID {
		t.Errorf("expected rendered view %s, got %s", view.ID, decoded.ID)
	}

	if _, err := m.Render(ctx, view.ID, "pdf"); !errors.Is(err, ErrUnknownAdapter) {
		t.Errorf("expected ErrUnknownAdapter, got %v", err)
	}
	if _, err := m.Render(ctx, "missing", "json"); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
}

func TestManager_EnabledAdapters(t *testing.T) {
	config := DefaultConfig()
	config.EnabledAdapters = []string{"json"}
	m := newTestManager(config)

	types := m.Adapters()
	if len(types) != 1 || types[0] != "json" {
		t.Errorf("expected only json adapter, got %v", types)
	}

	ctx := context.Background()
	view, _ := m.CreateView(ctx, "JSONOnly", "", nil, nil)
	if _, err := m.Render(ctx, view.ID, "html"); !errors.Is(err, ErrUnknownAdapter) {
		t.Errorf("expected ErrUnknownAdapter for disabled html, got %v", err)
	}
}

func TestManager_HistoryNewestLast(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	a, _ := m.CreateView(ctx, "A", "", nil, nil)
	b, _ := m.CreateView(ctx, "B", "", nil, nil)

	m.AddComponent(ctx, a.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "a1", Props: map[string]any{"content": "1"},
	})
	m.AddComponent(ctx, b.ID, AddComponentParams{
		Type: ui.TypeText, ComponentID: "b1", Props: map[string]any{"content": "2"},
	})
	m.UpdateComponent(ctx, a.ID, "a1", map[string]any{"content": "3"}, nil)

	all := m.History("", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(all))
	}
	if all[0].Action != ui.ActionAddComponent || all[2].Action != ui.ActionUpdateComponent {
		t.Errorf("expected chronological order with newest last, got %v then %v",
			all[0].Action, all[2].Action)
	}

	forA := m.History(a.ID, 0)
	if len(forA) != 2 {
		t.Fatalf("expected 2 entries for view A, got %d", len(forA))
	}
	for _, update := range forA {
		if update.ViewID != a.ID {
			t.Errorf("filter leaked update for %s", update.ViewID)
		}
	}

	limited := m.History("", 1)
	if len(limited) != 1 || limited[0].Action != ui.ActionUpdateComponent {
		t.Errorf("expected limit to keep the newest entry, got %v", limited)
	}
}
