package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suredesigns/alier-node/pattern"
	"github.com/suredesigns/alier-node/request"
)

func TestNewWebApiRejectsForwardPattern(t *testing.T) {
	p, err := pattern.Parse("/files/*", true)
	require.NoError(t, err)
	_, err = NewWebApi(p, nil)
	assert.Error(t, err)
}

func TestWebApiSupportsMethodReflectsRegisteredHandlers(t *testing.T) {
	p, err := pattern.Parse("/widgets", true)
	require.NoError(t, err)
	api, err := NewWebApi(p, nil)
	require.NoError(t, err)

	assert.False(t, api.SupportsMethod("GET"))
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})
	assert.True(t, api.SupportsMethod("GET"))
	assert.True(t, api.SupportsMethod("get"))
	assert.False(t, api.SupportsMethod("POST"))
}

func TestWebApiDispatchInvokesRegisteredHandler(t *testing.T) {
	p, err := pattern.Parse("/widgets", true)
	require.NoError(t, err)
	api, err := NewWebApi(p, nil)
	require.NoError(t, err)

	api.Post(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"created": true, "name": params["name"]}, nil
	})

	result, err := api.Dispatch(context.Background(), "POST", &request.Descriptor{Path: "/widgets"}, map[string]any{"name": "gizmo"})
	require.NoError(t, err)
	assert.Equal(t, true, result["created"])
	assert.Equal(t, "gizmo", result["name"])
}

func TestWebApiDispatchUnsupportedMethodErrors(t *testing.T) {
	p, err := pattern.Parse("/widgets", true)
	require.NoError(t, err)
	api, err := NewWebApi(p, nil)
	require.NoError(t, err)

	_, err = api.Dispatch(context.Background(), "DELETE", &request.Descriptor{Path: "/widgets"}, nil)
	assert.Error(t, err)
}
