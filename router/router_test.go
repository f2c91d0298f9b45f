package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suredesigns/alier-node/auth"
	"github.com/suredesigns/alier-node/credential"
	"github.com/suredesigns/alier-node/entity"
	"github.com/suredesigns/alier-node/pattern"
	"github.com/suredesigns/alier-node/request"
)

func mustApi(t *testing.T, raw string) *entity.WebApi {
	t.Helper()
	p, err := pattern.Parse(raw, true)
	require.NoError(t, err)
	api, err := entity.NewWebApi(p, nil)
	require.NoError(t, err)
	return api
}

func TestRouterSimpleGetNoAuth(t *testing.T) {
	rt := New(DefaultOptions())
	api := mustApi(t, "/hello")
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"statusCode": 200, "message": "hi"}, nil
	})
	p, _ := pattern.Parse("/hello", true)
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "hi", body["message"])
	_, hasStatusCode := body["statusCode"]
	assert.False(t, hasStatusCode)
}

func TestRouterParameterisedPathPercentDecoded(t *testing.T) {
	rt := New(DefaultOptions())
	p, err := pattern.Parse("/users/:id", true)
	require.NoError(t, err)
	api, err := entity.NewWebApi(p, nil)
	require.NoError(t, err)

	var received string
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		received, _ = params["id"].(string)
		return map[string]any{}, nil
	})
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodGet, "/users/42%2Fadmin", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42/admin", received)
}

func TestRouterTrailingSlashPolicyRemove(t *testing.T) {
	rt := New(DefaultOptions())
	pa, err := pattern.Parse("/a", true)
	require.NoError(t, err)
	apiA, err := entity.NewWebApi(pa, nil)
	require.NoError(t, err)
	apiA.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"which": "a"}, nil
	})
	require.NoError(t, rt.Enable(pa, apiA))

	pab, err := pattern.Parse("/a/b", true)
	require.NoError(t, err)
	apiAB, err := entity.NewWebApi(pab, nil)
	require.NoError(t, err)
	apiAB.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"which": "a/b"}, nil
	})
	require.NoError(t, rt.Enable(pab, apiAB))

	req := httptest.NewRequest(http.MethodGet, "/a/", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "a", body["which"])
}

func TestRouterMethodOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowsPostMethodOverride = true
	rt := New(opts)

	api := mustApi(t, "/res")
	api.Put(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"handled": "put"}, nil
	})
	p, _ := pattern.Parse("/res", true)
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodPost, "/res", nil)
	req.Header.Set("X-HTTP-Method-Override", "PUT")
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/res", nil)
	getReq.Header.Set("X-HTTP-Method-Override", "PUT")
	w2 := httptest.NewRecorder()
	rt.ServeHTTP(w2, getReq)
	assert.Equal(t, http.StatusMethodNotAllowed, w2.Code)
}

func TestRouterDigestChallengeOnMissingAuth(t *testing.T) {
	rt := New(DefaultOptions())
	lookup := credential.NewStaticLookup()
	digest, err := auth.NewDigest(auth.QopAuth, []byte("secret"), lookup, auth.WithRealm("r"))
	require.NoError(t, err)

	p, err := pattern.Parse("/secure", true)
	require.NoError(t, err)
	api, err := entity.NewWebApi(p, []entity.AuthBinding{{Scheme: "digest", Protocol: digest}})
	require.NoError(t, err)
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	})
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	challenge := w.Header().Get("WWW-Authenticate")
	assert.Contains(t, challenge, "Digest")
	assert.Contains(t, challenge, `realm="r"`)
	assert.Contains(t, challenge, `algorithm=MD5`)
}

func TestRouterPutEnvelopeCreated(t *testing.T) {
	rt := New(DefaultOptions())
	api := mustApi(t, "/x/1")
	api.Put(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"created": true, "location": "/x/1"}, nil
	})
	p, _ := pattern.Parse("/x/1", true)
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodPut, "/x/1", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/x/1", w.Header().Get("location"))
	assert.Empty(t, w.Body.Bytes())
}

func TestRouterDeleteEnvelopeNoContent(t *testing.T) {
	rt := New(DefaultOptions())
	api := mustApi(t, "/x/1")
	api.Delete(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"noContent": true}, nil
	})
	p, _ := pattern.Parse("/x/1", true)
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodDelete, "/x/1", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestRouterNoRouteIs404(t *testing.T) {
	rt := New(DefaultOptions())
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterUnsupportedMethodIs405(t *testing.T) {
	rt := New(DefaultOptions())
	api := mustApi(t, "/hello")
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	})
	p, _ := pattern.Parse("/hello", true)
	require.NoError(t, rt.Enable(p, api))

	req := httptest.NewRequest(http.MethodPost, "/hello", nil)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
