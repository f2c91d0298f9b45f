// Package router implements the Router of spec.md §4.7: the HTTP
// front-end that composes RequestParser, the PatternMap, WebEntity
// verification, method dispatch, and response envelope translation
// into a single http.Handler.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/suredesigns/alier-node/apierror"
	"github.com/suredesigns/alier-node/auth"
	"github.com/suredesigns/alier-node/entity"
	"github.com/suredesigns/alier-node/header"
	"github.com/suredesigns/alier-node/pattern"
	"github.com/suredesigns/alier-node/request"
)

// Logger is the minimal structured-logging capability the router uses
// for the warnings spec.md §4.4/§4.7 call for (a query value that
// failed JSON re-parsing); internal/alog.Logger implements it. A nil
// Logger silently drops these warnings.
type Logger interface {
	Warnf(format string, args ...any)
}

// Options configures a Router, per spec.md §4.7's configuration table.
type Options struct {
	TrailingSlashPolicy      TrailingSlashPolicy
	AllowsPostMethodOverride bool
	ParsesQueryAsJson        bool
	MaxBodySize              int64
}

// DefaultOptions matches spec.md §4.7's stated defaults.
func DefaultOptions() Options {
	return Options{
		TrailingSlashPolicy:      TrailingSlashRemove,
		AllowsPostMethodOverride: false,
		ParsesQueryAsJson:        true,
	}
}

// Router is an http.Handler dispatching to registered WebEntity values
// by path pattern.
type Router struct {
	mu     sync.RWMutex
	routes *pattern.Map[entity.WebEntity]
	opts   Options
	parser *request.Parser
	Logger Logger
}

// New constructs a Router with the given options.
func New(opts Options) *Router {
	return &Router{
		routes: pattern.NewMap[entity.WebEntity](),
		opts:   opts,
		parser: request.NewParser(opts.MaxBodySize),
	}
}

// Enable registers e at p. enable/disable are setup-time operations
// per spec.md §5; if invoked at runtime they are serialised against
// concurrent readers by the router's mutex, satisfying the
// reader/writer discipline spec.md §5 requires.
func (rt *Router) Enable(p *pattern.Pattern, e entity.WebEntity) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.routes.Set(p, e)
}

// Disable removes the entity registered at p, reporting whether one
// was present.
func (rt *Router) Disable(p *pattern.Pattern) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.routes.Delete(p)
}

// ServeHTTP implements http.Handler, running the pipeline of spec.md
// §4.7 steps 1–7.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	desc, err := rt.parser.Parse(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	path := normalizePath(desc.Path, rt.opts.TrailingSlashPolicy)
	method := resolveMethod(r, desc.Method, rt.opts.AllowsPostMethodOverride)

	// The trie percent-decodes each segment itself, so it is given the
	// escaped path: an encoded "/" stays inside its segment.
	lookupPath := normalizePath(r.URL.EscapedPath(), rt.opts.TrailingSlashPolicy)

	rt.mu.RLock()
	ent, ext, ok := rt.routes.Resolve(lookupPath)
	rt.mu.RUnlock()
	if !ok {
		rt.writeError(w, apierror.NotFound("no route matches "+path))
		return
	}

	if !ent.SupportsMethod(method) {
		rt.writeError(w, apierror.MethodNotAllowed("method "+method+" is not supported on "+path))
		return
	}

	authHeaders := desc.Headers["authorization"]
	result, err := ent.Verify(ctx, r, authHeaders)
	if err != nil {
		rt.writeError(w, apierror.Wrap(err))
		return
	}
	if !result.Ok {
		rt.writeAuthFailure(ctx, w, ent, result)
		return
	}

	switch e := ent.(type) {
	case *entity.WebResource:
		rt.handleResource(w, r, e, path, ext, desc)
	case *entity.WebApi:
		rt.handleApi(w, r, e, method, desc, ext)
	default:
		rt.writeError(w, apierror.InternalServerError("unrecognised entity type registered at "+path))
	}
}

func (rt *Router) handleResource(w http.ResponseWriter, r *http.Request, res *entity.WebResource, path string, ext pattern.Extraction, desc *request.Descriptor) {
	accepts := desc.Headers["accept"]
	data, contentType, err := res.Get(r.Context(), path, ext, accepts)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	body, err := toBytes(data)
	if err != nil {
		rt.writeError(w, apierror.Wrap(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	writeBody(w, http.StatusOK, body)
}

func toBytes(data any) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}

func (rt *Router) handleApi(w http.ResponseWriter, r *http.Request, api *entity.WebApi, method string, desc *request.Descriptor, ext pattern.Extraction) {
	params := rt.buildParams(desc, ext, method)

	envelope, err := api.Dispatch(r.Context(), method, desc, params)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	rt.writeEnvelope(w, method, envelope)
}

// buildParams merges query, path parameters, and (for methods that
// carry content) a map-shaped body into a single params map, per
// spec.md §4.7 step 6.
func (rt *Router) buildParams(desc *request.Descriptor, ext pattern.Extraction, method string) map[string]any {
	params := make(map[string]any, len(desc.Query)+len(ext.Params)+1)

	for k, v := range desc.Query {
		params[k] = rt.parseQueryValue(k, v)
	}
	for k, v := range ext.Params {
		params[k] = v
	}

	if hasContent(method) {
		switch b := desc.Body.(type) {
		case map[string]any:
			for k, v := range b {
				params[k] = v
			}
		case string:
			params["body"] = b
		case []byte:
			params["body"] = b
		}
	}

	return params
}

// hasContent reports whether method is expected to carry a body that
// should be merged into params — every method except GET, HEAD, and
// DELETE, per spec.md §4.7 step 6.
func hasContent(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return false
	default:
		return true
	}
}

// parseQueryValue applies the parsesQueryAsJson policy: on successful
// JSON parse, the parsed value is used; on failure, the raw string is
// kept and a warning logged (spec.md §4.7).
func (rt *Router) parseQueryValue(key, raw string) any {
	if !rt.opts.ParsesQueryAsJson {
		return raw
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed
	}
	if rt.Logger != nil {
		rt.Logger.Warnf("query parameter %q could not be parsed as JSON, using raw string", key)
	}
	return raw
}

// writeAuthFailure assembles the WWW-Authenticate header per spec.md
// §4.7 step 5: when result carries no scheme, every registered
// protocol's challenge is joined; when it does, that protocol's own
// challenge is extended with ", name=value" pairs built from
// result.Reason.
func (rt *Router) writeAuthFailure(ctx context.Context, w http.ResponseWriter, ent entity.WebEntity, result auth.VerifyResult) {
	status := http.StatusUnauthorized
	if result.Status == http.StatusBadRequest || result.Status == http.StatusForbidden {
		status = result.Status
	}

	challenge, err := rt.challengeFor(ctx, ent, result)
	if err == nil && challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}

	apiErr := apierror.New(status, "")
	body, marshalErr := json.Marshal(apiErr.AsBody())
	if marshalErr != nil {
		body = []byte(`{"error":{"status":401}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	writeBody(w, status, body)
}

func (rt *Router) challengeFor(ctx context.Context, ent entity.WebEntity, result auth.VerifyResult) (string, error) {
	if result.Scheme == "" {
		return ent.GetChallenges(ctx)
	}

	challenger, ok := ent.(interface {
		ChallengeForScheme(ctx context.Context, scheme string) (string, bool, error)
	})
	if !ok {
		return ent.GetChallenges(ctx)
	}
	base, found, err := challenger.ChallengeForScheme(ctx, result.Scheme)
	if err != nil || !found {
		return ent.GetChallenges(ctx)
	}

	var b strings.Builder
	b.WriteString(base)
	for name, value := range result.Reason {
		b.WriteString(", ")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(header.QuoteValue(value))
	}
	return b.String(), nil
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	apiErr := apierror.AsError(err)

	if apiErr.HasRetryAfter() {
		w.Header().Set("Retry-After", apiErr.RetryAfter.UTC().Format(http.TimeFormat))
	}

	body, marshalErr := json.Marshal(apiErr.AsBody())
	if marshalErr != nil {
		body = []byte(`{"error":{"status":500}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	writeBody(w, apiErr.StatusCode, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}
