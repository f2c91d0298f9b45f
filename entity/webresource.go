package entity

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/suredesigns/alier-node/apierror"
	"github.com/suredesigns/alier-node/contenttype"
	"github.com/suredesigns/alier-node/header"
	"github.com/suredesigns/alier-node/pattern"
)

// GetOptions is the context passed to a Target's Get: the negotiated
// content type plus the requesting Pattern's extracted segments
// (spec.md §4.5's "target that is... an object with
// get(requestedPath, {contentType, first, last, params})").
type GetOptions struct {
	ContentType string
	First       []string
	Last        []string
	Params      map[string]string
}

// Target serves the bytes (or string) behind a WebResource. FileTarget
// implements a confined filesystem root; ObjectTargetFunc adapts an
// arbitrary in-process function to the same capability.
type Target interface {
	Get(ctx context.Context, requestedPath string, opts GetOptions) (data any, err error)
}

// WebResource is a static-content endpoint (spec.md §4.5): only GET is
// dispatched, and the response content type is negotiated against the
// client's Accept header before Target.Get is ever called.
type WebResource struct {
	Base
	DefaultContentType string
	AllowedTypes       []string // may include wildcard entries ("text/*")
	Registry           contenttype.Registry
	Target             Target
}

// NewWebResource constructs a WebResource. registry may be nil, in
// which case wildcard allowed types never resolve (only an Accept that
// names DefaultContentType or an exact AllowedTypes entry succeeds).
func NewWebResource(p *pattern.Pattern, defaultContentType string, allowedTypes []string, registry contenttype.Registry, target Target, auths []AuthBinding) *WebResource {
	return &WebResource{
		Base:               Base{PatternValue: p, Auths: auths},
		DefaultContentType: defaultContentType,
		AllowedTypes:       allowedTypes,
		Registry:           registry,
		Target:             target,
	}
}

// SupportsMethod implements WebEntity: WebResource only dispatches GET.
func (w *WebResource) SupportsMethod(method string) bool {
	return strings.EqualFold(method, "GET")
}

// Negotiate parses each Accept descriptor's q parameter (default 1,
// clamped to [0,1]), sorts stably by descending q, and returns the
// first accepted type for which getAllowedType resolves a concrete
// allowed type. An absent Accept header accepts the default type
// outright. No match is a 415 naming every rejected type, per spec.md
// §4.5 and the scenario in spec.md §8 item 8.
func (w *WebResource) Negotiate(accepts []header.Descriptor, requestPath string) (string, error) {
	if len(accepts) == 0 {
		return w.DefaultContentType, nil
	}

	type scored struct {
		desc header.Descriptor
		q    float64
	}
	scoredAccepts := make([]scored, len(accepts))
	for i, d := range accepts {
		q := 1.0
		if qs, ok := d.Params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q < 0 {
			q = 0
		}
		if q > 1 {
			q = 1
		}
		scoredAccepts[i] = scored{desc: d, q: q}
	}
	sort.SliceStable(scoredAccepts, func(i, j int) bool {
		return scoredAccepts[i].q > scoredAccepts[j].q
	})

	var rejected []string
	for _, s := range scoredAccepts {
		if t, ok := w.getAllowedType(s.desc.Value, requestPath); ok {
			return t, nil
		}
		rejected = append(rejected, s.desc.Value)
	}

	return "", apierror.UnsupportedMediaType(fmt.Sprintf("unsupported media type(s): %s", strings.Join(rejected, ", ")))
}

// getAllowedType resolves a single requested media type (itself
// possibly a wildcard, e.g. "text/*" or "*/*") against the
// DefaultContentType and AllowedTypes. A wildcard allowed-types entry
// is only resolved to a concrete type via the ContentTypeRegistry,
// keyed by requestPath's extension, per spec.md §4.5.
func (w *WebResource) getAllowedType(requested, requestPath string) (string, bool) {
	candidates := make([]string, 0, len(w.AllowedTypes)+1)
	candidates = append(candidates, w.DefaultContentType)
	candidates = append(candidates, w.AllowedTypes...)

	for _, c := range candidates {
		if !strings.Contains(c, "*") && mediaTypeMatches(requested, c) {
			return c, true
		}
	}

	if w.Registry == nil {
		return "", false
	}
	ext := contenttype.ExtensionOf(requestPath)
	if ext == "" {
		return "", false
	}
	resolved, ok := w.Registry.Lookup(ext)
	if !ok {
		return "", false
	}
	for _, c := range candidates {
		if strings.Contains(c, "*") && mediaTypeMatches(requested, resolved) && mediaTypeMatches(c, resolved) {
			return resolved, true
		}
	}
	return "", false
}

// mediaTypeMatches reports whether pattern (possibly wildcard on
// either or both halves) matches candidate.
func mediaTypeMatches(pattern, candidate string) bool {
	if pattern == "*/*" || candidate == "*/*" {
		return true
	}
	pType, pSub := splitMediaType(pattern)
	cType, cSub := splitMediaType(candidate)
	if pType != "*" && cType != "*" && !strings.EqualFold(pType, cType) {
		return false
	}
	if pSub != "*" && cSub != "*" && !strings.EqualFold(pSub, cSub) {
		return false
	}
	return true
}

func splitMediaType(t string) (string, string) {
	i := strings.IndexByte(t, '/')
	if i < 0 {
		return t, "*"
	}
	return t[:i], t[i+1:]
}

// Get negotiates a content type for requestPath against accepts, then
// delegates to Target.Get with the path Pattern's extraction merged
// in, per spec.md §4.7 step 6 ("For WebResource.get, call with path
// and Accept descriptors").
func (w *WebResource) Get(ctx context.Context, requestPath string, ext pattern.Extraction, accepts []header.Descriptor) (data any, contentType string, err error) {
	contentType, err = w.Negotiate(accepts, requestPath)
	if err != nil {
		return nil, "", err
	}
	data, err = w.Target.Get(ctx, requestPath, GetOptions{
		ContentType: contentType,
		First:       ext.First,
		Last:        ext.Last,
		Params:      ext.Params,
	})
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
