// Package rodview implements the preview engine's browsing surface on a
// Rod-driven Chromium page. Navigation originating from rendered content is
// cancelled in the page and surfaced to the engine's listener; the page
// itself only ever displays what the engine hands it.
package rodview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/ReneLombard/MarkdownEditor2022/preview"
)

// navHookJS cancels every anchor click before the browser can act on it and
// reports the target through the exposed binding. Installed on every new
// document, so it survives full reloads.
const navHookJS = `() => {
	document.addEventListener("click", (e) => {
		const a = e.target && e.target.closest ? e.target.closest("a[href]") : null;
		if (!a) return;
		e.preventDefault();
		e.stopPropagation();
		if (window.__previewNavigate) window.__previewNavigate(a.getAttribute("href"));
	}, true);
	window.open = () => null;
}`

// Config controls browser acquisition.
type Config struct {
	// RemoteURL attaches to an already-running browser's devtools endpoint.
	// Empty launches a local one.
	RemoteURL string
	// Headless hides the browser window. A visible window is the usual mode
	// for an interactive preview.
	Headless bool
	Logger   *slog.Logger
}

// Surface is a live Chromium page implementing preview.Surface and
// preview.ZoomProvider.
type Surface struct {
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher // nil when attached to a remote browser
	logger  *slog.Logger

	mu       sync.Mutex // guards listener against the page event goroutine
	listener preview.SurfaceListener
}

// New acquires a browser, opens a blank page, and installs the navigation
// hook. The returned surface performs no navigation until the engine drives
// it.
func New(ctx context.Context, cfg Config) (*Surface, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var wsURL string
	var lnch *launcher.Launcher
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
		logger.Info("rodview: connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().Headless(cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("rodview: launch: %w", err)
		}
		wsURL = u
		lnch = l
		logger.Info("rodview: launched local browser", "url", wsURL, "headless", cfg.Headless)
	}

	// Close runs after the run context is cancelled, so the browser
	// itself is not bound to ctx. Operations carry their own context.
	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("rodview: connect: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("rodview: create page: %w", err)
	}

	s := &Surface{browser: b, page: page, lnch: lnch, logger: logger}

	if _, err := page.Expose("__previewNavigate", s.onNavigate); err != nil {
		page.Close()
		b.Close()
		return nil, fmt.Errorf("rodview: expose navigation binding: %w", err)
	}
	if _, err := page.EvalOnNewDocument(`(` + navHookJS + `)()`); err != nil {
		logger.Warn("rodview: install navigation hook failed", "error", err)
	}

	go page.EachEvent(func(e *proto.PageLoadEventFired) {
		if l := s.getListener(); l != nil {
			l.LoadCompleted()
		}
	})()

	return s, nil
}

// SetListener registers the engine callbacks. Safe to call while page events
// are already flowing; events before registration are dropped.
func (s *Surface) SetListener(l preview.SurfaceListener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

func (s *Surface) getListener() preview.SurfaceListener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

func (s *Surface) onNavigate(g gson.JSON) (interface{}, error) {
	if l := s.getListener(); l != nil {
		l.NavigationAttempted(g.Str())
	}
	return nil, nil
}

// LoadDocument implements preview.Surface with a real document replacement.
func (s *Surface) LoadDocument(ctx context.Context, markup string) error {
	page := s.page.Context(ctx)
	if err := page.SetDocumentContent(markup); err != nil {
		return fmt.Errorf("rodview: load document: %w", err)
	}
	// SetDocumentContent replaces markup without a navigation; the hook must
	// be re-armed in the fresh document.
	if _, err := page.Eval(navHookJS); err != nil {
		s.logger.Debug("rodview: re-arm navigation hook failed", "error", err)
	}
	return nil
}

// PatchContent replaces the content root's inner markup in place, firing the
// template's content-updated hook when one is defined. Hook failures never
// surface.
func (s *Surface) PatchContent(ctx context.Context, markup string) (bool, error) {
	js := fmt.Sprintf(`(html) => {
		const root = document.getElementById(%q);
		if (!root) return false;
		root.innerHTML = html;
		if (typeof window.__contentUpdated === "function") {
			try { window.__contentUpdated(); } catch (_) {}
		}
		return true;
	}`, preview.ContentRootID)

	res, err := s.page.Context(ctx).Eval(js, markup)
	if err != nil {
		return false, fmt.Errorf("rodview: patch content: %w", err)
	}
	return res.Value.Bool(), nil
}

// ScrollOffset reports the page's scroll position and scrollable height.
func (s *Surface) ScrollOffset(ctx context.Context) (float64, float64, error) {
	res, err := s.page.Context(ctx).Eval(`() => [
		window.scrollY || document.documentElement.scrollTop || 0,
		Math.max(1, document.documentElement.scrollHeight || 0),
	]`)
	if err != nil {
		return 0, 0, fmt.Errorf("rodview: read scroll: %w", err)
	}
	arr := res.Value.Arr()
	if len(arr) != 2 {
		return 0, 0, fmt.Errorf("rodview: read scroll: unexpected result %v", res.Value)
	}
	return arr[0].Num(), arr[1].Num(), nil
}

// SetScrollOffset moves the page to the given vertical position.
func (s *Surface) SetScrollOffset(ctx context.Context, pos float64) error {
	if _, err := s.page.Context(ctx).Eval(`(y) => window.scrollTo(0, y)`, pos); err != nil {
		return fmt.Errorf("rodview: set scroll: %w", err)
	}
	return nil
}

// ScrollToAnchor aligns the element with the given id to the top of the
// view. Missing elements report false, not an error.
func (s *Surface) ScrollToAnchor(ctx context.Context, id string) (bool, error) {
	res, err := s.page.Context(ctx).Eval(`(id) => {
		const el = document.getElementById(id);
		if (!el) return false;
		el.scrollIntoView(true);
		return true;
	}`, id)
	if err != nil {
		return false, fmt.Errorf("rodview: scroll to anchor: %w", err)
	}
	return res.Value.Bool(), nil
}

// ApplyZoom implements preview.ZoomProvider via the emulation domain.
func (s *Surface) ApplyZoom(percent int) error {
	err := proto.EmulationSetPageScaleFactor{
		PageScaleFactor: float64(percent) / 100,
	}.Call(s.page)
	if err != nil {
		return fmt.Errorf("rodview: zoom: %w", err)
	}
	return nil
}

// Close shuts the page down and, when this surface launched the browser,
// the browser with it.
func (s *Surface) Close() error {
	if err := s.page.Close(); err != nil {
		s.logger.Debug("rodview: close page", "error", err)
	}
	if err := s.browser.Close(); err != nil && s.lnch == nil {
		return fmt.Errorf("rodview: close browser: %w", err)
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
	return nil
}
