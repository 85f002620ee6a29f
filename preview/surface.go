// Package preview implements the live preview engine: it keeps an embedded
// browsing surface in sync with an editor view of the same source document,
// refreshes rendered content in place without discarding scroll state, and
// intercepts every navigation originating from the rendered markup.
//
// The package is transport- and toolkit-agnostic. The embedded view, the
// rendering pipeline, and the host's file/URL opening are consumed through
// the narrow interfaces below; rodview provides the Chromium-backed Surface.
package preview

import "context"

// ContentRootID is the id of the single container node whose inner markup is
// replaced on each refresh. Patching it in place preserves the view's frame
// and scroll offset; when it is missing the updater falls back to a full
// document reload.
const ContentRootID = "preview-root"

// Surface is the embedded browsing view the engine drives. Implementations
// must never navigate on their own: every navigation attempt is cancelled
// natively and reported through SurfaceListener, and the engine decides what
// happens next.
type Surface interface {
	// LoadDocument replaces the whole document with the given markup. This is
	// a real reload; the caller re-establishes scroll position afterwards.
	LoadDocument(ctx context.Context, markup string) error

	// PatchContent replaces the inner markup of the content root in place.
	// It returns false when the content root is missing (first load, or the
	// view lost its document to an external reset). After a successful patch
	// the implementation invokes the template's content-updated hook when one
	// is defined; hook failures are swallowed.
	PatchContent(ctx context.Context, markup string) (bool, error)

	// ScrollOffset reports the current vertical scroll position and the total
	// scrollable height, both in pixels.
	ScrollOffset(ctx context.Context) (pos, height float64, err error)

	// SetScrollOffset moves the view to the given vertical position.
	SetScrollOffset(ctx context.Context, pos float64) error

	// ScrollToAnchor scrolls the element with the given id to the top edge of
	// the view. It returns false when no such element exists; a missing
	// anchor is not an error.
	ScrollToAnchor(ctx context.Context, id string) (bool, error)

	Close() error
}

// SurfaceListener is how the view talks back to the engine. Implementations
// of Surface notify it on load completion and before any navigation would
// execute. NavigationAttempted is always a post-cancellation notification:
// the native navigation never runs.
type SurfaceListener interface {
	LoadCompleted()
	NavigationAttempted(target string)
}

// Renderer produces markup for the current document state. Failures are
// recovered by the updater and shown as diagnostic text, never propagated.
type Renderer interface {
	Render(ctx context.Context) (string, error)
}

// LineResolver maps a requested source line to the closest line that carries
// a rendered line marker. Not every source line maps to a renderable anchor.
type LineResolver interface {
	ClosestRenderableLine(line int) int
}

// FileOpener is the host capability that opens a local file, typically in an
// editor tab.
type FileOpener interface {
	OpenFile(path string) error
}

// URLOpener is the host capability that opens an external URL in the user's
// default browser, never inside the embedded surface.
type URLOpener interface {
	OpenURL(url string) error
}

// ZoomProvider is an optional surface capability. When the embedded view does
// not expose zoom, the engine degrades gracefully and stays at native scale.
type ZoomProvider interface {
	ApplyZoom(percent int) error
}
