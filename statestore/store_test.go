package statestore

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"
)

func TestLoadMissing(t *testing.T) {
	s := OpenMemory(t)

	_, ok, err := s.Load(context.Background(), "/tmp/absent.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("ok: got true, want false for unknown path")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	want := Position{Percentage: 42.5, Line: 17}
	if err := s.Save(ctx, "/docs/readme.md", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load(ctx, "/docs/readme.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("ok: got false, want true")
	}
	if got != want {
		t.Errorf("position: got %+v, want %+v", got, want)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if err := s.Save(ctx, "/docs/a.md", Position{Percentage: 10, Line: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "/docs/a.md", Position{Percentage: 90, Line: 40}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load(ctx, "/docs/a.md")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Percentage != 90 || got.Line != 40 {
		t.Errorf("position: got %+v, want {90 40}", got)
	}
}

func TestPathsAreIndependent(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if err := s.Save(ctx, "/docs/a.md", Position{Percentage: 10, Line: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, ok, err := s.Load(ctx, "/docs/b.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("ok: got true, want false for a different path")
	}
}
