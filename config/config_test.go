package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Listen != "127.0.0.1:7806" {
		t.Errorf("Listen: got %q", c.Listen)
	}
	if !c.ScrollSync {
		t.Error("ScrollSync: got false, want true")
	}
	if c.Zoom != 100 {
		t.Errorf("Zoom: got %d, want 100", c.Zoom)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdpreview.yaml")
	data := `
file: /docs/readme.md
listen: 127.0.0.1:9000
scroll_sync: false
zoom: 150
title: Docs
browser:
  headless: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := &Config{
		File:       "/docs/readme.md",
		Listen:     "127.0.0.1:9000",
		ScrollSync: false,
		Zoom:       150,
		Title:      "Docs",
		Browser:    BrowserConfig{Headless: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdpreview.yaml")
	if err := os.WriteFile(path, []byte("file: a.md\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Listen != "127.0.0.1:7806" {
		t.Errorf("Listen default: got %q", got.Listen)
	}
	if !got.ScrollSync {
		t.Error("ScrollSync default: got false, want true")
	}
	if got.Zoom != 100 {
		t.Errorf("Zoom default: got %d, want 100", got.Zoom)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file: want error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("unparsable file: want error")
	}
}

func TestRuntimeScrollSync(t *testing.T) {
	rt := NewRuntime(&Config{ScrollSync: true})

	if !rt.ScrollSyncEnabled() {
		t.Fatal("want enabled")
	}
	rt.SetScrollSync(false)
	if rt.ScrollSyncEnabled() {
		t.Fatal("want disabled after toggle")
	}
}
