package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle of the embedded view.
type State int

const (
	// StateUninitialized means no document has been loaded yet.
	StateUninitialized State = iota
	// StateLoaded means the view holds a current document.
	StateLoaded
	// StateRefreshing means a content refresh is executing.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateRefreshing:
		return "refreshing"
	}
	return "unknown"
}

// Controller owns the embedded view and exposes the two operations the
// editor drives: cursor moved and content changed. Both are scheduled, not
// executed synchronously; position updates run at higher priority than full
// refreshes and bursts of either coalesce to the latest request.
//
// Controller implements SurfaceListener, so the view reports load completion
// and navigation attempts back to it.
type Controller struct {
	id       string
	view     Surface
	updater  *Updater
	sync     *Synchronizer
	rewriter *Rewriter
	files    FileOpener
	urls     URLOpener
	zoom     ZoomProvider // optional
	sched    *scheduler
	baseDir  string
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	disposed bool
}

// ControllerConfig wires a Controller. View, Renderer, and Resolver are
// required; the opener and zoom capabilities are optional and degrade to
// no-ops when absent.
type ControllerConfig struct {
	View       Surface
	Renderer   Renderer
	Resolver   LineResolver
	ScrollSync func() bool // host flag, read fresh on every sync
	FileOpener FileOpener
	URLOpener  URLOpener
	Zoom       ZoomProvider
	Template   string // shell markup, empty selects the embedded default
	Title      string
	BaseDir    string // folder of the previewed document
	Logger     *slog.Logger
}

// NewController creates a controller in the Uninitialized state. Call Start
// to launch the worker and schedule the first refresh.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With("preview_id", id)

	syncer := NewSynchronizer(cfg.View, cfg.Resolver, cfg.ScrollSync, logger)
	rewriter := NewRewriter(logger)
	updater := NewUpdater(UpdaterConfig{
		View:     cfg.View,
		Renderer: cfg.Renderer,
		Rewriter: rewriter,
		Sync:     syncer,
		Template: cfg.Template,
		Title:    cfg.Title,
		BaseDir:  cfg.BaseDir,
		Logger:   logger,
	})

	return &Controller{
		id:       id,
		view:     cfg.View,
		updater:  updater,
		sync:     syncer,
		rewriter: rewriter,
		files:    cfg.FileOpener,
		urls:     cfg.URLOpener,
		zoom:     cfg.Zoom,
		sched:    newScheduler(),
		baseDir:  cfg.BaseDir,
		logger:   logger,
		state:    StateUninitialized,
	}
}

// Start launches the worker goroutine that owns all view operations and
// schedules the initial refresh. The controller's public methods are safe to
// call from any goroutine after Start.
func (c *Controller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.sched.run(ctx)
	c.OnDocumentChanged()
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ScrollState returns a copy of the current synchronization coordinates,
// e.g. for persistence at shutdown.
func (c *Controller) ScrollState() ScrollState {
	return c.sync.State()
}

// SeedScroll primes the scroll position before the first load, typically
// from persisted state.
func (c *Controller) SeedScroll(percentage float64, line int) {
	c.sync.Seed(percentage, line)
}

// OnCursorLineChanged schedules a position sync for the given source line.
// Rapid successive calls coalesce: only the latest pending line runs.
func (c *Controller) OnCursorLineChanged(line int) {
	if c.isDisposed() {
		return
	}
	c.sched.syncLane.schedule(func(ctx context.Context) {
		c.sync.SyncToLine(ctx, line)
	})
}

// OnDocumentChanged schedules a content refresh. Refreshes run at background
// priority: a pending cursor sync always executes first.
func (c *Controller) OnDocumentChanged() {
	if c.isDisposed() {
		return
	}
	c.sched.refreshLane.schedule(func(ctx context.Context) {
		c.setState(StateRefreshing)
		c.updater.Refresh(ctx)
		c.setState(StateLoaded)
	})
}

// SetZoom applies a zoom percentage when the surface supports it; otherwise
// the preview stays at native scale.
func (c *Controller) SetZoom(percent int) {
	if c.zoom == nil || percent <= 0 {
		return
	}
	if err := c.zoom.ApplyZoom(percent); err != nil {
		c.logger.Debug("preview: zoom not applied", "percent", percent, "error", err)
	}
}

// LoadCompleted implements SurfaceListener. The view finished a full
// document load, for example after an external reset, so the saved relative
// position and the current line are re-applied.
func (c *Controller) LoadCompleted() {
	if c.isDisposed() {
		return
	}
	c.setState(StateLoaded)
	c.sched.syncLane.schedule(func(ctx context.Context) {
		c.sync.RestoreState(ctx)
		c.sync.SyncToLine(ctx, c.sync.State().CurrentLine)
	})
}

// NavigationAttempted implements SurfaceListener. The surface has already
// cancelled the native navigation; classification decides the follow-up.
// Unrecognized targets are dropped without feedback.
func (c *Controller) NavigationAttempted(target string) {
	if c.isDisposed() {
		return
	}
	req, ok := Classify(target)
	if !ok {
		c.logger.Debug("preview: navigation dropped", "target", target)
		return
	}

	switch req.Kind {
	case KindInPageFragment:
		c.sched.syncLane.schedule(func(ctx context.Context) {
			found, err := c.view.ScrollToAnchor(ctx, req.Target)
			if err != nil {
				c.logger.Debug("preview: fragment jump failed", "fragment", req.Target, "error", err)
			} else if !found {
				c.logger.Debug("preview: fragment target missing", "fragment", req.Target)
			}
		})

	case KindLocalFile:
		c.openLocalFile(req.Target)

	case KindExternalURL:
		if c.urls == nil {
			return
		}
		if err := c.urls.OpenURL(req.Target); err != nil {
			c.logger.Warn("preview: open external url failed", "url", req.Target, "error", err)
		}
	}
}

// openLocalFile asks the host to open the path when it exists. A missing
// file is a no-op: resolving alternate paths or extensions is the host's
// policy, not this engine's.
func (c *Controller) openLocalFile(target string) {
	path := target
	if !filepath.IsAbs(path) && c.baseDir != "" {
		path = filepath.Join(c.baseDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		c.logger.Debug("preview: link target not found", "path", path)
		return
	}
	if c.files == nil {
		return
	}
	if err := c.files.OpenFile(path); err != nil {
		c.logger.Warn("preview: open file failed", "path", path, "error", err)
	}
}

// Dispose releases the view and stops the worker. Idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.sched.stop()
	if err := c.view.Close(); err != nil {
		c.logger.Debug("preview: close view", "error", err)
	}
}

func (c *Controller) isDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
