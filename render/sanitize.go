package render

import "github.com/microcosm-cc/bluemonday"

// previewPolicy is the sanitation policy rendered markup passes through
// before it reaches the live view. It keeps the pragma-line ids, chroma's
// highlight markup, and the link schemes the navigation layer understands;
// relative and file links survive so the anchor rewriter can neutralize
// them.
var previewPolicy = newPreviewPolicy()

func newPreviewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class", "style").Globally()
	p.AllowURLSchemes("http", "https", "mailto", "file", "about")
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)
	return p
}

func sanitize(markup string) string {
	return previewPolicy.Sanitize(markup)
}
