// Package render converts markdown source into the annotated HTML the
// preview engine consumes. Every block-level element carries an
// id="pragma-line-N" marker naming the zero-based source line it was
// rendered from; the engine's position synchronizer and navigation
// classifier both depend on that convention.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extensionast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/ReneLombard/MarkdownEditor2022/bufpool"
)

const pragmaLinePrefix = "pragma-line-"

// Renderer is a goldmark pipeline over a swappable source snapshot. It
// implements both preview.Renderer and preview.LineResolver.
type Renderer struct {
	md goldmark.Markdown

	mu     sync.RWMutex
	source []byte
	lines  []int // sorted lines that carry a marker, from the last render
}

// New creates a renderer with GFM, explicit-attribute support, and
// chroma-backed code highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.TabWidth(4),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// SetSource replaces the markdown snapshot subsequent renders use.
func (r *Renderer) SetSource(src []byte) {
	r.mu.Lock()
	r.source = src
	r.mu.Unlock()
}

// Render converts the current snapshot to sanitized HTML. The returned
// markup is deterministic: identical source produces byte-identical output.
func (r *Renderer) Render(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	src := r.source
	r.mu.RUnlock()

	doc := r.md.Parser().Parse(text.NewReader(src))
	lines := annotateLines(doc, src)

	buf, release := bufpool.Acquire()
	defer release()
	if err := r.md.Renderer().Render(buf, src, doc); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	out := sanitize(buf.String())

	r.mu.Lock()
	r.lines = lines
	r.mu.Unlock()
	return out, nil
}

// ClosestRenderableLine implements preview.LineResolver. It returns the
// nearest annotated line at or before the requested line, or the first
// annotated line when the request precedes all of them.
func (r *Renderer) ClosestRenderableLine(line int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.lines) == 0 {
		return line
	}
	// First index with lines[i] > line; the marker before it is the match.
	i := sort.SearchInts(r.lines, line+1)
	if i == 0 {
		return r.lines[0]
	}
	return r.lines[i-1]
}

// annotateLines tags annotatable block nodes with their pragma-line marker
// and returns the sorted set of annotated lines. When several blocks start
// on the same line only the outermost keeps the marker, so ids stay unique.
func annotateLines(doc ast.Node, source []byte) []int {
	seen := make(map[int]bool)
	var lines []int

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || !annotatable(n) {
			return ast.WalkContinue, nil
		}
		offset, ok := firstOffset(n)
		if !ok {
			return ast.WalkContinue, nil
		}
		line := offsetToLine(source, offset)
		if seen[line] {
			return ast.WalkContinue, nil
		}
		if _, explicit := n.AttributeString("id"); explicit {
			// An author-assigned id wins; the line stays unannotated so
			// in-page fragment links keep working.
			return ast.WalkContinue, nil
		}
		n.SetAttributeString("id", []byte(fmt.Sprintf("%s%d", pragmaLinePrefix, line)))
		seen[line] = true
		lines = append(lines, line)
		return ast.WalkContinue, nil
	})

	sort.Ints(lines)
	return lines
}

// annotatable reports whether goldmark's HTML renderer emits attributes for
// this node kind. Fenced code blocks are excluded: the highlighting
// extension owns their markup.
func annotatable(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindHeading,
		ast.KindParagraph,
		ast.KindBlockquote,
		ast.KindList,
		ast.KindListItem,
		ast.KindThematicBreak,
		extensionast.KindTable:
		return true
	}
	return false
}

// firstOffset finds the byte offset of the first source segment under n.
// Container blocks carry no segments themselves, so the search descends.
func firstOffset(n ast.Node) (int, bool) {
	if n == nil {
		return 0, false
	}
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := firstOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

// offsetToLine converts a byte offset into a zero-based line number.
func offsetToLine(source []byte, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'})
}
