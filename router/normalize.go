package router

import (
	"net/http"
	"strings"
)

// TrailingSlashPolicy selects how the router normalises a request path
// before lookup, per spec.md §4.7's configuration table.
type TrailingSlashPolicy string

const (
	TrailingSlashAsIs  TrailingSlashPolicy = "asis"
	TrailingSlashAdd   TrailingSlashPolicy = "add"
	TrailingSlashRemove TrailingSlashPolicy = "remove"
)

// normalizePath applies policy to p. "remove" (the default) strips a
// single trailing "/" unless p is the root. "add" appends one unless
// already present. "asis" never touches p.
func normalizePath(p string, policy TrailingSlashPolicy) string {
	switch policy {
	case TrailingSlashAdd:
		if !strings.HasSuffix(p, "/") {
			return p + "/"
		}
		return p
	case TrailingSlashAsIs:
		return p
	default:
		if len(p) > 1 && strings.HasSuffix(p, "/") {
			return p[:len(p)-1]
		}
		return p
	}
}

// methodOverrideHeaders lists the headers honoured for POST method
// override, in the precedence order spec.md §6 requires ("first
// present wins").
var methodOverrideHeaders = []string{
	"X-HTTP-Method",
	"X-HTTP-Method-Override",
	"X-Method-Override",
}

// resolveMethod applies method-override resolution: only ever active
// on a POST request, and only when allowOverride is set.
func resolveMethod(r *http.Request, method string, allowOverride bool) string {
	if !allowOverride || method != http.MethodPost {
		return method
	}
	for _, name := range methodOverrideHeaders {
		if v := r.Header.Get(name); v != "" {
			return strings.ToUpper(v)
		}
	}
	return method
}
