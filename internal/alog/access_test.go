package alog

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	return req
}

func TestLogAccessStripsQuery(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	req := httptest.NewRequest(http.MethodGet, "/hello?token=secret", nil)
	LogAccess(&AccessEntry{Request: req, StatusCode: 200}, AccessLogOptions{StripQuery: true})

	assert.NotContains(t, buf.String(), "token=secret")
}

func TestLogAccessKeepsQueryByDefault(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	req := httptest.NewRequest(http.MethodGet, "/hello?x=1", nil)
	LogAccess(&AccessEntry{Request: req, StatusCode: 200}, AccessLogOptions{})

	assert.Contains(t, buf.String(), "/hello?x=1")
}

func TestLogAccessNilRequestIsNoop(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	LogAccess(&AccessEntry{Request: nil}, AccessLogOptions{})
	LogAccess(nil, AccessLogOptions{})

	assert.Empty(t, buf.String())
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	var seenByHandler string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenByHandler = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}), AccessLogOptions{})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, seenByHandler)
	assert.Equal(t, seenByHandler, rec.Header().Get(RequestIDHeader))
}

func TestMiddlewarePreservesCallerRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), AccessLogOptions{})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied-id", rec.Header().Get(RequestIDHeader))
}

func TestMiddlewareLogsStatusAndResponseSize(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf, AccessLogJSONEnabled: true})

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	}), AccessLogOptions{})

	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"response-size":2`)
}
