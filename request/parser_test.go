package request

import (
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/widgets?color=red", strings.NewReader(`{"name":"gizmo","count":3}`))
	req.Header.Set("Content-Type", "application/json")

	p := NewParser(0)
	d, err := p.Parse(req)
	require.NoError(t, err)

	assert.Equal(t, "POST", d.Method)
	assert.Equal(t, "red", d.Query["color"])

	body, ok := d.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gizmo", body["name"])
}

func TestParseJSONBodyRejectsProtoPollution(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"__proto__":{"polluted":true}}`))
	req.Header.Set("Content-Type", "application/json")

	p := NewParser(0)
	_, err := p.Parse(req)
	assert.Error(t, err)
}

func TestParseUrlencodedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`user=alice&pass=s3cr3t`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewParser(0)
	d, err := p.Parse(req)
	require.NoError(t, err)

	body, ok := d.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", body["user"])
	assert.Equal(t, "s3cr3t", body["pass"])
}

func TestParseTextBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("hello world"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	p := NewParser(0)
	d, err := p.Parse(req)
	require.NoError(t, err)
	assert.Equal(t, "hello world", d.Body)
}

func TestParseTextBodyInvalidUTF8(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("\xff\xfe bad"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	p := NewParser(0)
	_, err := p.Parse(req)
	assert.Error(t, err)
}

func TestParseRawBodyUnknownContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/blob", strings.NewReader("\x01\x02\x03"))
	req.Header.Set("Content-Type", "application/octet-stream")

	p := NewParser(0)
	d, err := p.Parse(req)
	require.NoError(t, err)

	raw, ok := d.Body.([]byte)
	require.True(t, ok)
	assert.Equal(t, []byte("\x01\x02\x03"), raw)
}

func TestParseMultipartBody(t *testing.T) {
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormField("title")
	require.NoError(t, err)
	_, err = fw.Write([]byte("my widget"))
	require.NoError(t, err)

	jw, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="meta"`},
		"Content-Type":        {"application/json"},
	})
	require.NoError(t, err)
	_, err = jw.Write([]byte(`{"weight":42}`))
	require.NoError(t, err)

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	p := NewParser(0)
	d, err := p.Parse(req)
	require.NoError(t, err)

	body, ok := d.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "my widget", body["title"])

	meta, ok := body["meta"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, toInt(t, meta["weight"]))
}

func TestParseContentLengthMismatch(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = 100

	p := NewParser(0)
	_, err := p.Parse(req)
	assert.Error(t, err)
}

func TestParseOversizedBodyRejected(t *testing.T) {
	big := strings.Repeat("a", 64)
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(big))
	req.Header.Set("Content-Type", "text/plain")
	req.ContentLength = -1

	p := NewParser(32)
	_, err := p.Parse(req)
	assert.Error(t, err)
}

func TestParseHeadersLowercasedAndGrammared(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Accept", "application/json; q=1.0, text/html; q=0.5")

	p := NewParser(0)
	d, err := p.Parse(req)
	require.NoError(t, err)

	descs, ok := d.Headers["accept"]
	require.True(t, ok)
	require.Len(t, descs, 2)
	assert.Equal(t, "application/json", descs[0].Value)
	assert.Equal(t, "1.0", descs[0].Params["q"])
}

func toInt(t *testing.T, v any) int64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		if num, ok := v.(interface{ Int64() (int64, error) }); ok {
			i, err := num.Int64()
			require.NoError(t, err)
			return i
		}
	}
	t.Fatalf("unexpected numeric type %T", v)
	return 0
}
