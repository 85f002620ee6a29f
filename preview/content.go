package preview

import (
	"context"
	_ "embed"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ReneLombard/MarkdownEditor2022/bufpool"
)

// Placeholders recognized in the document shell template.
const (
	contentPlaceholder = "[content]"
	titlePlaceholder   = "[title]"
	headPlaceholder    = "<head>"
)

const defaultTitle = "Markdown Preview"

//go:embed template.html
var defaultTemplate string

// DefaultTemplate returns the embedded document shell.
func DefaultTemplate() string { return defaultTemplate }

// Updater orchestrates one refresh cycle: obtain markup from the rendering
// pipeline, rewrite its anchors, patch it into the live view without a full
// reload when the content root is still there, and leave ScrollState
// consistent with the now-current view.
type Updater struct {
	view     Surface
	renderer Renderer
	rewriter *Rewriter
	sync     *Synchronizer
	template string
	title    string
	baseDir  string
	logger   *slog.Logger
}

// UpdaterConfig wires an Updater. Template and Title fall back to the
// embedded shell and a fixed title when empty.
type UpdaterConfig struct {
	View     Surface
	Renderer Renderer
	Rewriter *Rewriter
	Sync     *Synchronizer
	Template string
	Title    string
	BaseDir  string // document folder, becomes the shell's base href
	Logger   *slog.Logger
}

// NewUpdater creates an Updater from configuration.
func NewUpdater(cfg UpdaterConfig) *Updater {
	if cfg.Template == "" {
		cfg.Template = defaultTemplate
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Updater{
		view:     cfg.View,
		renderer: cfg.Renderer,
		rewriter: cfg.Rewriter,
		sync:     cfg.Sync,
		template: cfg.Template,
		title:    cfg.Title,
		baseDir:  cfg.BaseDir,
		logger:   cfg.Logger,
	}
}

// Refresh runs one content refresh cycle. It never returns an error: a
// rendering failure becomes escaped diagnostic text in the preview body, so
// the preview always shows something rather than going blank.
func (u *Updater) Refresh(ctx context.Context) {
	markup, err := u.renderer.Render(ctx)
	if err != nil {
		u.logger.Warn("preview: render failed, showing diagnostic", "error", err)
		markup = diagnosticMarkup(err.Error())
	}
	markup = u.rewriter.RewriteAll(markup)

	patched, err := u.view.PatchContent(ctx, markup)
	if err != nil {
		u.logger.Warn("preview: patch failed", "error", err)
	} else if !patched {
		// The content root is gone: rebuild the full shell and reload, then
		// put the user back at their prior relative position.
		if err := u.view.LoadDocument(ctx, u.MergeShell(markup)); err != nil {
			u.logger.Warn("preview: reload failed", "error", err)
		} else {
			u.sync.RestoreState(ctx)
		}
	}

	// Always re-apply current scroll semantics last, so a refresh that
	// finishes after a position sync cannot leave a stale position behind.
	u.sync.SyncToLine(ctx, u.sync.State().CurrentLine)
}

// MergeShell builds a full document around the rendered markup: the <head>
// placeholder gains the encoding, compatibility, and base-href block, and the
// [title]/[content] placeholders are substituted.
func (u *Updater) MergeShell(markup string) string {
	shell := strings.Replace(u.template, headPlaceholder, u.headBlock(), 1)
	shell = strings.Replace(shell, titlePlaceholder, u.title, 1)
	return strings.Replace(shell, contentPlaceholder, markup, 1)
}

// headBlock fixes the character encoding, the compatibility directive, and a
// base href pointing at the document's folder so relative resources in the
// rendered markup resolve correctly.
func (u *Updater) headBlock() string {
	buf, release := bufpool.Acquire()
	defer release()

	buf.WriteString("<head>\n")
	buf.WriteString("<meta charset=\"utf-8\" />\n")
	buf.WriteString("<meta http-equiv=\"X-UA-Compatible\" content=\"IE=edge\" />\n")
	if u.baseDir != "" {
		base := filepath.ToSlash(u.baseDir)
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		buf.WriteString("<base href=\"file:///")
		buf.WriteString(strings.TrimPrefix(base, "/"))
		buf.WriteString("\" />")
	}
	return buf.String()
}

// diagnosticMarkup wraps a failure message for display in the preview body.
// Only '<' and '&' are escaped.
func diagnosticMarkup(msg string) string {
	buf, release := bufpool.Acquire()
	defer release()
	buf.WriteString(`<pre class="rendering-error">`)
	buf.WriteString(escapeDiagnostic(msg))
	buf.WriteString(`</pre>`)
	return buf.String()
}

var diagnosticEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;")

func escapeDiagnostic(s string) string {
	return diagnosticEscaper.Replace(s)
}
