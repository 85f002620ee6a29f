package preview

import (
	"net/url"
	"path/filepath"
	"strings"
)

// RequestKind classifies an intercepted navigation target.
type RequestKind int

const (
	// KindInPageFragment jumps to an element inside the live view.
	KindInPageFragment RequestKind = iota
	// KindLocalFile asks the host to open a file on disk.
	KindLocalFile
	// KindExternalURL asks the host OS to open the default browser.
	KindExternalURL
)

func (k RequestKind) String() string {
	switch k {
	case KindInPageFragment:
		return "in-page-fragment"
	case KindLocalFile:
		return "local-file"
	case KindExternalURL:
		return "external-url"
	}
	return "unknown"
}

// Request is one intercepted navigation, produced per event and consumed
// immediately.
type Request struct {
	Kind   RequestKind
	Target string
}

// Classify decides what an intercepted navigation target means. The native
// navigation has already been cancelled by the surface; the returned request
// determines the follow-up action. ok is false when the target is
// unrecognized or malformed, in which case it is silently dropped.
func Classify(raw string) (Request, bool) {
	if raw == "" {
		return Request{}, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Request{}, false
	}

	switch {
	case u.Scheme == inertScheme:
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		p = strings.TrimPrefix(p, "/")
		if p == blankPath {
			return Request{Kind: KindInPageFragment, Target: u.Fragment}, true
		}
		if p == "" {
			return Request{}, false
		}
		return Request{Kind: KindLocalFile, Target: filepath.FromSlash(p)}, true

	case strings.HasPrefix(u.Scheme, "http") && u.IsAbs():
		return Request{Kind: KindExternalURL, Target: raw}, true
	}

	return Request{}, false
}
