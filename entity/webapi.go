package entity

import (
	"context"
	"fmt"
	"strings"

	"github.com/suredesigns/alier-node/apierror"
	"github.com/suredesigns/alier-node/pattern"
	"github.com/suredesigns/alier-node/request"
)

// Handler is a method-dispatched endpoint implementation. params merges
// query values, path parameters, and (for methods that carry content) a
// map-shaped request body, per spec.md §4.7 step 6. The returned map is
// the response envelope the router translates per spec.md §4.7 step 7.
type Handler func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error)

var supportedMethods = []string{
	"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
}

// WebApi is a method-dispatched endpoint (spec.md §4.5). Its path
// Pattern must be Exact; it exposes the seven method operations as a
// handler table rather than virtual-method overriding, per the
// REDESIGN FLAG in spec.md §9 — supports(entity, method) becomes a
// direct table lookup instead of introspecting which method was
// overridden.
type WebApi struct {
	Base
	handlers map[string]Handler
}

// NewWebApi constructs a WebApi bound to p, which must be Exact.
func NewWebApi(p *pattern.Pattern, auths []AuthBinding) (*WebApi, error) {
	if p.Kind() != pattern.Exact {
		return nil, fmt.Errorf("entity: WebApi requires an exact pattern, got %q (%s)", p.Raw(), p.Kind())
	}
	return &WebApi{
		Base:     Base{PatternValue: p, Auths: auths},
		handlers: make(map[string]Handler, len(supportedMethods)),
	}, nil
}

// Handle registers h for method, overwriting any previous handler for
// the same method. Returns the receiver for chained construction.
func (w *WebApi) Handle(method string, h Handler) *WebApi {
	w.handlers[strings.ToUpper(method)] = h
	return w
}

func (w *WebApi) Get(h Handler) *WebApi     { return w.Handle("GET", h) }
func (w *WebApi) Head(h Handler) *WebApi    { return w.Handle("HEAD", h) }
func (w *WebApi) Post(h Handler) *WebApi    { return w.Handle("POST", h) }
func (w *WebApi) Put(h Handler) *WebApi     { return w.Handle("PUT", h) }
func (w *WebApi) Patch(h Handler) *WebApi   { return w.Handle("PATCH", h) }
func (w *WebApi) Delete(h Handler) *WebApi  { return w.Handle("DELETE", h) }
func (w *WebApi) Options(h Handler) *WebApi { return w.Handle("OPTIONS", h) }

// SupportsMethod implements WebEntity: true iff a handler was actually
// registered for method (spec.md §8's "method gating" property).
func (w *WebApi) SupportsMethod(method string) bool {
	_, ok := w.handlers[strings.ToUpper(method)]
	return ok
}

// Dispatch invokes the handler registered for method. The caller (the
// router) is responsible for having already checked SupportsMethod;
// Dispatch still returns a 405 defensively rather than panicking on a
// missing handler.
func (w *WebApi) Dispatch(ctx context.Context, method string, req *request.Descriptor, params map[string]any) (map[string]any, error) {
	h, ok := w.handlers[strings.ToUpper(method)]
	if !ok {
		return nil, apierror.MethodNotAllowed(fmt.Sprintf("method %s is not supported on %s", method, req.Path))
	}
	return h(ctx, req, params)
}
