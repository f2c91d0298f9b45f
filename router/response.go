package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/suredesigns/alier-node/apierror"
)

// writeEnvelope translates a handler's returned envelope into an HTTP
// response, per the per-method table in spec.md §4.7 step 7.
func (rt *Router) writeEnvelope(w http.ResponseWriter, method string, envelope map[string]any) {
	if envelope == nil {
		envelope = map[string]any{}
	}

	switch strings.ToUpper(method) {
	case http.MethodHead:
		rt.writeHeadEnvelope(w, envelope)
	case http.MethodPut:
		rt.writePutEnvelope(w, envelope)
	case http.MethodDelete:
		rt.writeDeleteEnvelope(w, envelope)
	default: // GET, POST, PATCH, OPTIONS
		rt.writeBodyEnvelope(w, envelope)
	}
}

// writeHeadEnvelope implements the HEAD row: reply headers only, 204
// by default.
func (rt *Router) writeHeadEnvelope(w http.ResponseWriter, envelope map[string]any) {
	for k, v := range stripKeys(envelope, "statusCode") {
		w.Header().Set(k, fmt.Sprint(v))
	}
	writeBody(w, http.StatusNoContent, nil)
}

// writeBodyEnvelope implements the GET/POST/PATCH/OPTIONS row: the
// whole envelope (minus statusCode) is JSON-encoded as the body.
func (rt *Router) writeBodyEnvelope(w http.ResponseWriter, envelope map[string]any) {
	status := http.StatusOK
	if sc, ok := validStatusCode(envelope["statusCode"]); ok {
		status = sc
	}

	data, err := json.Marshal(stripKeys(envelope, "statusCode"))
	if err != nil {
		rt.writeError(w, apierror.Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeBody(w, status, data)
}

// writePutEnvelope implements the PUT row.
func (rt *Router) writePutEnvelope(w http.ResponseWriter, envelope map[string]any) {
	noContent, _ := envelope["noContent"].(bool)
	created, _ := envelope["created"].(bool)

	var status int
	switch {
	case noContent && created:
		status = http.StatusOK
		rt.warnf("PUT handler set both noContent and created; defaulting to 200")
	case noContent:
		status = http.StatusNoContent
	case created:
		status = http.StatusCreated
	default:
		var ok bool
		if status, ok = validStatusCode(envelope["statusCode"]); !ok {
			status = http.StatusOK
		}
	}

	for k, v := range stripKeys(envelope, "noContent", "created", "statusCode") {
		w.Header().Set(k, fmt.Sprint(v))
	}
	writeBody(w, status, nil)
}

// writeDeleteEnvelope implements the DELETE row.
func (rt *Router) writeDeleteEnvelope(w http.ResponseWriter, envelope map[string]any) {
	noContent, _ := envelope["noContent"].(bool)
	accepted, _ := envelope["accepted"].(bool)

	var status int
	switch {
	case noContent && accepted:
		status = http.StatusOK
		rt.warnf("DELETE handler set both noContent and accepted; defaulting to 200")
	case noContent:
		status = http.StatusNoContent
	case accepted:
		status = http.StatusAccepted
	default:
		var ok bool
		if status, ok = validStatusCode(envelope["statusCode"]); !ok {
			status = http.StatusOK
		}
	}

	if status == http.StatusNoContent {
		writeBody(w, status, nil)
		return
	}

	data, err := json.Marshal(stripKeys(envelope, "noContent", "accepted", "statusCode"))
	if err != nil {
		rt.writeError(w, apierror.Wrap(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeBody(w, status, data)
}

func (rt *Router) warnf(format string, args ...any) {
	if rt.Logger != nil {
		rt.Logger.Warnf(format, args...)
	}
}

// validStatusCode reports whether v names a valid response status per
// spec.md §4.7 ("statusCode if integer in [200,599]"), accepting any
// numeric JSON representation the envelope might carry.
func validStatusCode(v any) (int, bool) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		n = int64(t)
	case json.Number:
		parsed, err := t.Int64()
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < 200 || n > 599 {
		return 0, false
	}
	return int(n), true
}

func stripKeys(m map[string]any, keys ...string) map[string]any {
	skip := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		skip[k] = struct{}{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, ok := skip[k]; ok {
			continue
		}
		out[k] = v
	}
	return out
}
