package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/registry"
	"github.com/viewdeck/viewdeck/pkg/store"
	"github.com/viewdeck/viewdeck/pkg/view"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", s.Addr)
	}
	if s.AuthoringEnabled {
		t.Error("expected authoring disabled by default")
	}
	if s.StorageBackend != StorageMemory {
		t.Errorf("expected memory backend, got %s", s.StorageBackend)
	}
	if s.DefaultAdapter != "json" {
		t.Errorf("expected json default adapter, got %s", s.DefaultAdapter)
	}
	if s.ClientQueueSize != 64 {
		t.Errorf("expected queue size 64, got %d", s.ClientQueueSize)
	}
	if !s.PushEnabled {
		t.Error("expected push enabled by default")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("VIEWDECK_ADDR", ":9999")
	t.Setenv("VIEWDECK_AUTHORING_ENABLED", "true")
	t.Setenv("VIEWDECK_MAX_VIEWS", "50")
	t.Setenv("VIEWDECK_ENABLED_ADAPTERS", "json,html")
	t.Setenv("VIEWDECK_LOG_LEVEL", "debug")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Addr != ":9999" || !s.AuthoringEnabled || s.MaxViews != 50 {
		t.Errorf("unexpected settings %+v", s)
	}
	if len(s.EnabledAdapters) != 2 || s.EnabledAdapters[1] != "html" {
		t.Errorf("expected [json html], got %v", s.EnabledAdapters)
	}
	if s.SlogLevel().String() != "DEBUG" {
		t.Errorf("expected debug level, got %s", s.SlogLevel())
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Setenv("VIEWDECK_STORAGE_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Error("expected error for s3 backend without bucket")
	}

	t.Setenv("VIEWDECK_S3_BUCKET", "views-bucket")
	if _, err := Load(); err != nil {
		t.Errorf("expected valid s3 settings, got %v", err)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("VIEWDECK_STORAGE_BACKEND", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

const salesYAML = `id: sales
name: Sales Dashboard
layout:
  type: grid
  columns: 3
tags: [demo, sales]
components:
  - id: rev
    type: metric
    props:
      label: Revenue
      value: "$50,000"
      trend: up
  - id: summary
    type: card
    props:
      title: Summary
    children:
      - id: note
        type: text
        props:
          content: Looking good
`

func writeViewFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadViewDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeViewFile(t, dir, "20-sales.yaml", salesYAML)
	writeViewFile(t, dir, "10-empty.yaml", "id: empty\nname: Empty\n")
	writeViewFile(t, dir, "notes.txt", "not a view")

	defs, err := LoadViewDefinitions(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	// Filename order decides seeding order.
	if defs[0].ID != "empty" || defs[1].ID != "sales" {
		t.Errorf("expected [empty sales], got [%s %s]", defs[0].ID, defs[1].ID)
	}
	if len(defs[1].Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(defs[1].Components))
	}
	if len(defs[1].Components[1].Children) != 1 {
		t.Errorf("expected nested child parsed, got %+v", defs[1].Components[1])
	}
}

func TestLoadViewDefinitions_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeViewFile(t, dir, "bad.yaml", "id: anonymous\n")

	if _, err := LoadViewDefinitions(dir); err == nil {
		t.Error("expected error for definition without a name")
	}
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	writeViewFile(t, dir, "sales.yaml", salesYAML)

	defs, err := LoadViewDefinitions(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	manager := view.New(view.DefaultConfig(), store.NewMemoryStore(0), push.NewChannel(nil, nil), registry.New(), nil)
	ctx := context.Background()
	if err := Seed(ctx, manager, defs); err != nil {
		t.Fatalf("seed: %v", err)
	}

	v, err := manager.GetView(ctx, "sales")
	if err != nil {
		t.Fatalf("get seeded view: %v", err)
	}
	if v.Name != "Sales Dashboard" {
		t.Errorf("expected seeded name, got %s", v.Name)
	}
	if len(v.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(v.Components))
	}
	// Each seeded component is one versioned mutation.
	if v.Version != 3 {
		t.Errorf("expected version 3, got %d", v.Version)
	}
	tags, _ := v.Metadata["tags"].([]string)
	if len(tags) != 2 {
		t.Errorf("expected tags in metadata, got %v", v.Metadata["tags"])
	}
}
