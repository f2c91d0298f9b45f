package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suredesigns/alier-node/router"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAddress, cfg.Address)
	assert.True(t, cfg.QueryAsJSON)
	assert.False(t, cfg.AllowPostOverride)
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse([]string{"-address", ":9999", "-allow-post-override", "-trailing-slash", "add"})
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Address)
	assert.True(t, cfg.AllowPostOverride)
	assert.Equal(t, "add", cfg.TrailingSlashPolicy)
}

func TestParseManifestAppliesUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alier.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: \":7070\"\nqueryAsJson: false\n"), 0o600))

	cfg, err := Parse([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Address)
	assert.False(t, cfg.QueryAsJSON)
}

func TestParseManifestDoesNotOverrideExplicitFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alier.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: \":7070\"\n"), 0o600))

	cfg, err := Parse([]string{"-config", path, "-address", ":1111"})
	require.NoError(t, err)
	assert.Equal(t, ":1111", cfg.Address)
}

func TestRouterOptionsTranslatesPolicy(t *testing.T) {
	cfg := Default()
	cfg.TrailingSlashPolicy = "asis"
	opts := cfg.RouterOptions()
	assert.Equal(t, router.TrailingSlashAsIs, opts.TrailingSlashPolicy)
}
