package preview

import (
	"context"
	"math"
	"testing"
)

func TestCaptureRestoreRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		offset float64
		height float64
	}{
		{"mid", 150, 600},
		{"top", 0, 600},
		{"bottom", 600, 600},
		{"tall", 12345, 90000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			surf := newFakeSurface()
			surf.offset = tc.offset
			surf.height = tc.height
			s := NewSynchronizer(surf, identityResolver{}, enabled, nil)

			s.CaptureState(context.Background())
			surf.offset = 0
			s.RestoreState(context.Background())

			if got := surf.snapshot().offset; math.Abs(got-tc.offset) > 1e-9 {
				t.Errorf("offset after restore: got %v, want %v", got, tc.offset)
			}
		})
	}
}

func TestCaptureClampsHeight(t *testing.T) {
	surf := newFakeSurface()
	surf.offset = 5
	surf.height = 0
	s := NewSynchronizer(surf, identityResolver{}, enabled, nil)

	s.CaptureState(context.Background())

	st := s.State()
	if st.CachedHeight != 1 {
		t.Errorf("CachedHeight: got %v, want 1", st.CachedHeight)
	}
	if math.IsInf(st.Percentage, 0) || math.IsNaN(st.Percentage) {
		t.Fatalf("Percentage not finite: %v", st.Percentage)
	}
	if st.Percentage != 500 {
		t.Errorf("Percentage: got %v, want 500", st.Percentage)
	}
}

func TestSyncToLineZeroForcesTop(t *testing.T) {
	surf := newFakeSurface()
	surf.offset = 400
	surf.anchors["pragma-line-0"] = 999
	s := NewSynchronizer(surf, identityResolver{}, enabled, nil)

	s.SyncToLine(context.Background(), 0)

	if got := surf.snapshot().offset; got != 0 {
		t.Errorf("offset: got %v, want 0", got)
	}
}

func TestSyncToLineScrollsResolvedMarker(t *testing.T) {
	surf := newFakeSurface()
	surf.anchors["pragma-line-12"] = 340
	s := NewSynchronizer(surf, mapResolver{14: 12}, enabled, nil)

	s.SyncToLine(context.Background(), 14)

	if got := surf.snapshot().offset; got != 340 {
		t.Errorf("offset: got %v, want 340", got)
	}
	if got := s.State().CurrentLine; got != 14 {
		t.Errorf("CurrentLine: got %d, want 14", got)
	}
}

func TestSyncToLineMissingMarkerIsNoOp(t *testing.T) {
	surf := newFakeSurface()
	surf.offset = 250
	s := NewSynchronizer(surf, identityResolver{}, enabled, nil)

	s.SyncToLine(context.Background(), 33)

	if got := surf.snapshot().offset; got != 250 {
		t.Errorf("offset: got %v, want 250 (view must not move)", got)
	}
}

func TestSyncDisabledCapturesInsteadOfMoving(t *testing.T) {
	surf := newFakeSurface()
	surf.offset = 250
	surf.height = 500
	surf.anchors["pragma-line-7"] = 10
	s := NewSynchronizer(surf, identityResolver{}, disabled, nil)

	s.SyncToLine(context.Background(), 7)

	if got := surf.snapshot().offset; got != 250 {
		t.Errorf("offset: got %v, want 250 (sync disabled must not move)", got)
	}
	if got := s.State().Percentage; got != 50 {
		t.Errorf("Percentage: got %v, want 50", got)
	}
}

func TestSeedSurvivesRestore(t *testing.T) {
	surf := newFakeSurface()
	surf.height = 2000
	s := NewSynchronizer(surf, identityResolver{}, enabled, nil)

	s.Seed(25, 3)
	s.RestoreState(context.Background())

	if got := surf.snapshot().offset; got != 500 {
		t.Errorf("offset: got %v, want 500", got)
	}
}
