// Package contenttype is the ContentTypeRegistry collaborator spec.md §1
// declares as external to the core: it maps a URL path's file extension
// to a concrete MIME type so WebResource can resolve a wildcard allowed
// type (e.g. "text/*") against whatever extension the request asked
// for.
package contenttype

import (
	"mime"
	"path"
	"strings"
)

// Registry resolves a file extension (with or without the leading dot)
// to a concrete MIME type.
type Registry interface {
	Lookup(extension string) (mimeType string, ok bool)
}

// Default is the registry used when an embedder does not configure one
// explicitly: it defers to the standard library's mime package, which
// is seeded from the host's own mime.types plus a built-in fallback
// table. The pack carries no bespoke MIME-sniffing dependency, so
// reaching for anything beyond the standard library here would be
// invention, not grounding.
var Default Registry = defaultRegistry{}

type defaultRegistry struct{}

func (defaultRegistry) Lookup(extension string) (string, bool) {
	ext := extension
	if ext == "" {
		return "", false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "", false
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t, true
}

// ExtensionOf returns the extension (without the leading dot) of a URL
// or file path, or "" if it has none.
func ExtensionOf(requestPath string) string {
	ext := path.Ext(requestPath)
	return strings.TrimPrefix(ext, ".")
}
