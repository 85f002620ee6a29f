package preview

import (
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ReneLombard/MarkdownEditor2022/bufpool"
)

const (
	// inertScheme is the non-functional protocol rewritten links carry. The
	// interception layer recognizes it; the browsing surface never
	// dereferences it.
	inertScheme = "about"

	// blankPath is the reserved placeholder for anchors that had no file
	// path. The classifier reads it as "in-page fragment, not a file".
	blankPath = "blank"
)

// Anchor is the decomposition of one hyperlink at rewrite time. Anchors are
// transient: recomputed on every rewrite pass, never persisted.
type Anchor struct {
	Protocol string
	Path     string
	Fragment string // without '#', empty when absent
}

// Rewriter neutralizes outgoing-navigation-capable hyperlinks in rendered
// markup. Links whose resolved protocol is the local file protocol are
// rewritten to the inert internal protocol, because direct local-file
// navigation from the embedded surface's security context must never be
// attempted. Paths are carried as written: relative targets stay relative,
// and the interception layer resolves them against the document folder.
// Rewritten state lives only in the rendered markup, so the pass runs again
// on every fragment before it reaches the live view.
type Rewriter struct {
	logger *slog.Logger
}

// NewRewriter returns a hyperlink rewriter.
func NewRewriter(logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{logger: logger}
}

// RewriteAll rewrites every qualifying hyperlink in the given markup
// fragment and returns the result. A malformed anchor is left as-is and
// never aborts rewriting of the remaining anchors. When nothing qualifies
// the input is returned unchanged, which makes the pass idempotent.
func (rw *Rewriter) RewriteAll(markup string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		rw.logger.Debug("preview: anchor pass skipped, unparsable markup", "error", err)
		return markup
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	changed := false
	for n := range body.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			continue
		}
		for i, attr := range n.Attr {
			if attr.Key != "href" || attr.Namespace != "" {
				continue
			}
			if out, ok := rw.rewriteHref(attr.Val); ok {
				n.Attr[i].Val = out
				changed = true
			}
		}
	}

	if !changed {
		return markup
	}

	buf, release := bufpool.Acquire()
	defer release()
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(buf, c); err != nil {
			rw.logger.Debug("preview: anchor pass render failed", "error", err)
			return markup
		}
	}
	return buf.String()
}

// rewriteHref rewrites a single href. It reports false when the anchor is
// not local-file-protocol or could not be parsed, in which case the href
// stays untouched.
func (rw *Rewriter) rewriteHref(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}

	a, ok := rw.decompose(u)
	if !ok {
		return "", false
	}

	// The fragment is held aside while the path and protocol change, then
	// reapplied at the end. The path itself is never resolved here.
	p := a.Path
	if p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, "\\") {
		p = blankPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	out := inertScheme + ":" + p
	if a.Fragment != "" {
		out += "#" + a.Fragment
	}
	return out, true
}

// decompose extracts the anchor parts and decides whether the resolved
// protocol is the local file protocol. Relative links resolve against the
// document's base href, which is a file URL, so scheme-less links without a
// host qualify too.
func (rw *Rewriter) decompose(u *url.URL) (Anchor, bool) {
	switch {
	case u.Scheme == "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return Anchor{Protocol: u.Scheme, Path: p, Fragment: u.Fragment}, true
	case u.Scheme == "" && u.Host == "":
		return Anchor{Protocol: "file", Path: u.Path, Fragment: u.Fragment}, true
	}
	return Anchor{}, false
}
