package preview

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSurface is an in-memory stand-in for the embedded view. Scroll
// geometry is simulated with a flat offset/height pair and a map of anchor
// ids to offsets.
type fakeSurface struct {
	mu      sync.Mutex
	doc     string
	content string
	hasRoot bool
	offset  float64
	height  float64
	anchors map[string]float64
	loads   int
	patches int
	closed  int

	failPatch error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{hasRoot: true, height: 1000, anchors: map[string]float64{}}
}

func (f *fakeSurface) LoadDocument(_ context.Context, markup string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc = markup
	f.hasRoot = strings.Contains(markup, ContentRootID)
	f.loads++
	return nil
}

func (f *fakeSurface) PatchContent(_ context.Context, markup string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPatch != nil {
		return false, f.failPatch
	}
	if !f.hasRoot {
		return false, nil
	}
	f.content = markup
	f.patches++
	return true, nil
}

func (f *fakeSurface) ScrollOffset(context.Context) (float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offset, f.height, nil
}

func (f *fakeSurface) SetScrollOffset(_ context.Context, pos float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offset = pos
	return nil
}

func (f *fakeSurface) ScrollToAnchor(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	off, ok := f.anchors[id]
	if !ok {
		return false, nil
	}
	f.offset = off
	return true, nil
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeSurface) snapshot() fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeSurface{
		doc:     f.doc,
		content: f.content,
		hasRoot: f.hasRoot,
		offset:  f.offset,
		height:  f.height,
		loads:   f.loads,
		patches: f.patches,
		closed:  f.closed,
	}
}

// identityResolver maps every line onto itself.
type identityResolver struct{}

func (identityResolver) ClosestRenderableLine(line int) int { return line }

// mapResolver resolves lines through a fixed table, falling back to the
// requested line.
type mapResolver map[int]int

func (m mapResolver) ClosestRenderableLine(line int) int {
	if r, ok := m[line]; ok {
		return r
	}
	return line
}

// fakeRenderer returns canned markup or a canned error.
type fakeRenderer struct {
	mu  sync.Mutex
	out string
	err error
}

func (r *fakeRenderer) Render(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out, r.err
}

func (r *fakeRenderer) set(out string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out, r.err = out, err
}

// recordingOpener records host open requests.
type recordingOpener struct {
	mu    sync.Mutex
	files []string
	urls  []string
}

func (o *recordingOpener) OpenFile(path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files = append(o.files, path)
	return nil
}

func (o *recordingOpener) OpenURL(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return nil
}

func (o *recordingOpener) snapshot() (files, urls []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.files...), append([]string(nil), o.urls...)
}

func enabled() bool  { return true }
func disabled() bool { return false }

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
