package entity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suredesigns/alier-node/contenttype"
	"github.com/suredesigns/alier-node/header"
	"github.com/suredesigns/alier-node/pattern"
)

func TestWebResourceSupportsOnlyGet(t *testing.T) {
	p, err := pattern.Parse("/page", true)
	require.NoError(t, err)
	r := NewWebResource(p, "text/html", nil, contenttype.Default, nil, nil)

	assert.True(t, r.SupportsMethod("GET"))
	assert.True(t, r.SupportsMethod("get"))
	assert.False(t, r.SupportsMethod("POST"))
}

func TestWebResourceNegotiateNoAcceptHeaderUsesDefault(t *testing.T) {
	p, err := pattern.Parse("/page", true)
	require.NoError(t, err)
	r := NewWebResource(p, "text/html", nil, contenttype.Default, nil, nil)

	ct, err := r.Negotiate(nil, "/page")
	require.NoError(t, err)
	assert.Equal(t, "text/html", ct)
}

func TestWebResourceNegotiatePicksHighestQMatch(t *testing.T) {
	p, err := pattern.Parse("/page", true)
	require.NoError(t, err)
	r := NewWebResource(p, "text/html", []string{"application/json"}, contenttype.Default, nil, nil)

	accepts, err := header.ParseGeneric(`application/json;q=0.5, text/html;q=0.9`)
	require.NoError(t, err)

	ct, err := r.Negotiate(accepts, "/page")
	require.NoError(t, err)
	assert.Equal(t, "text/html", ct)
}

func TestWebResourceNegotiateRejectsUnacceptable(t *testing.T) {
	p, err := pattern.Parse("/page", true)
	require.NoError(t, err)
	r := NewWebResource(p, "text/html", nil, contenttype.Default, nil, nil)

	accepts, err := header.ParseGeneric(`application/pdf`)
	require.NoError(t, err)

	_, err = r.Negotiate(accepts, "/page")
	assert.Error(t, err)
}

func TestWebResourceNegotiateWildcardResolvesViaRegistry(t *testing.T) {
	p, err := pattern.Parse("/assets/*", true)
	require.NoError(t, err)
	r := NewWebResource(p, "application/octet-stream", []string{"text/*"}, contenttype.Default, nil, nil)

	accepts, err := header.ParseGeneric(`text/css`)
	require.NoError(t, err)

	ct, err := r.Negotiate(accepts, "/assets/site.css")
	require.NoError(t, err)
	assert.Equal(t, "text/css", ct)
}

func TestFileTargetServesFileWithinRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644))

	target := &FileTarget{Root: dir}
	data, err := target.Get(context.Background(), "hello.txt", GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
}

func TestFileTargetRejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "public")
	require.NoError(t, os.Mkdir(sub, 0o755))

	secretPath := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secretPath, []byte("top secret"), 0o644))

	target := &FileTarget{Root: sub}
	_, err := target.Get(context.Background(), "../secret.txt", GetOptions{})
	assert.Error(t, err)
}

func TestFileTargetMissingFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	target := &FileTarget{Root: dir}
	_, err := target.Get(context.Background(), "nope.txt", GetOptions{})
	assert.Error(t, err)
}

func TestFileTargetDirectoryIsNotFoundNotForbidden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	target := &FileTarget{Root: dir}
	_, err := target.Get(context.Background(), "sub", GetOptions{})
	assert.Error(t, err)
}
