// Package request turns a raw *http.Request into the RequestDescriptor
// of spec.md §3/§4.4: headers run through the header grammar parser,
// the body is decoded per Content-Type, and Content-Length is enforced
// before any of it reaches the router.
package request

import "github.com/suredesigns/alier-node/header"

// Descriptor is RequestParser's output: the normalised, already-decoded
// view of an inbound request that the router consumes. Query carries
// the raw string values from the query string; the router is
// responsible for the optional query-as-JSON reinterpretation (spec.md
// §4.7), which is a routing policy, not a parsing concern.
type Descriptor struct {
	Method  string
	Path    string
	RawPath string // the unmodified path before any trailing-slash normalisation
	Query   map[string]string

	// Headers maps a lowercased header name to the ordered Descriptors
	// produced by the header grammar parser for that name.
	Headers map[string][]header.Descriptor

	// Body is one of nil, []byte, string, map[string]any, or []any,
	// depending on the decoded Content-Type (spec.md §4.4).
	Body any
}

// Header returns the first header.Descriptor registered under name
// (already lowercased by the caller), if any.
func (d *Descriptor) Header(name string) (header.Descriptor, bool) {
	list := d.Headers[name]
	if len(list) == 0 {
		return header.Descriptor{}, false
	}
	return list[0], true
}
