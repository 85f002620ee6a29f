package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// pragmaLinePrefix is the marker prefix the rendering pipeline attaches to
// block-level elements. The element rendered from source line N carries
// id="pragma-line-N".
const pragmaLinePrefix = "pragma-line-"

// ScrollState holds the synchronization coordinates for one live preview.
// Invariant: Percentage == CachedPosition * 100 / max(1, CachedHeight).
type ScrollState struct {
	CachedPosition float64 // px
	CachedHeight   float64 // px
	Percentage     float64 // 0-100
	CurrentLine    int     // -1 = unset
}

// NewScrollState returns the initial state with no line set.
func NewScrollState() ScrollState {
	return ScrollState{CurrentLine: -1}
}

// Synchronizer converts between editor line numbers and rendered scroll
// offsets in both directions, and carries relative scroll position across
// full content replacement.
//
// All view-touching methods run on the controller's worker goroutine; the
// state itself is guarded so it can be seeded and read from the outside.
type Synchronizer struct {
	view        Surface
	doc         LineResolver
	syncEnabled func() bool // read fresh on every call, never cached
	logger      *slog.Logger

	mu    sync.Mutex
	state ScrollState
}

// NewSynchronizer wires a synchronizer to a view and a line resolver.
// syncEnabled reports the host's scroll-sync configuration flag.
func NewSynchronizer(view Surface, doc LineResolver, syncEnabled func() bool, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	if syncEnabled == nil {
		syncEnabled = func() bool { return true }
	}
	return &Synchronizer{
		view:        view,
		doc:         doc,
		syncEnabled: syncEnabled,
		logger:      logger,
		state:       NewScrollState(),
	}
}

// State returns a copy of the current scroll state.
func (s *Synchronizer) State() ScrollState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seed primes the state with a previously persisted position, typically
// before the first load so RestoreState lands where the user left off.
func (s *Synchronizer) Seed(percentage float64, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Percentage = percentage
	s.state.CurrentLine = line
}

// SyncToLine drives the view to the given editor line when scroll-sync is
// enabled. Line 0 always forces the view to the top. For any other line the
// resolver picks the closest renderable line and the view scrolls its marker
// into view; a missing marker leaves the view where it is. When scroll-sync
// is disabled the view is not moved at all and the current offset is captured
// instead.
func (s *Synchronizer) SyncToLine(ctx context.Context, line int) {
	if !s.syncEnabled() {
		s.CaptureState(ctx)
		return
	}

	if line >= 0 {
		s.mu.Lock()
		s.state.CurrentLine = line
		s.mu.Unlock()
	}

	switch {
	case line == 0:
		if err := s.view.SetScrollOffset(ctx, 0); err != nil {
			s.logger.Debug("preview: scroll to top failed", "error", err)
		}
	case line > 0:
		resolved := s.doc.ClosestRenderableLine(line)
		found, err := s.view.ScrollToAnchor(ctx, fmt.Sprintf("%s%d", pragmaLinePrefix, resolved))
		if err != nil {
			s.logger.Debug("preview: scroll to line failed", "line", resolved, "error", err)
			return
		}
		if !found {
			// No marker for this line; the view does not move.
			s.logger.Debug("preview: no line marker", "line", resolved)
		}
	}
}

// CaptureState reads the view's offset and scrollable height into the state.
// Height is clamped to at least 1 before the division.
func (s *Synchronizer) CaptureState(ctx context.Context) {
	pos, height, err := s.view.ScrollOffset(ctx)
	if err != nil {
		s.logger.Debug("preview: capture scroll failed", "error", err)
		return
	}
	if height < 1 {
		height = 1
	}
	s.mu.Lock()
	s.state.CachedPosition = pos
	s.state.CachedHeight = height
	s.state.Percentage = pos * 100 / height
	s.mu.Unlock()
}

// RestoreState re-establishes the captured relative position after a full
// document reload. The absolute offset is recomputed against the new height,
// so the position survives template regeneration.
func (s *Synchronizer) RestoreState(ctx context.Context) {
	_, height, err := s.view.ScrollOffset(ctx)
	if err != nil {
		s.logger.Debug("preview: restore scroll failed", "error", err)
		return
	}
	if height < 1 {
		height = 1
	}
	s.mu.Lock()
	pct := s.state.Percentage
	s.mu.Unlock()
	if err := s.view.SetScrollOffset(ctx, pct*height/100); err != nil {
		s.logger.Debug("preview: restore scroll failed", "error", err)
	}
}
