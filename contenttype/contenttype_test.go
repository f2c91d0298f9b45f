package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLookupKnownExtension(t *testing.T) {
	mt, ok := Default.Lookup("html")
	assert.True(t, ok)
	assert.Equal(t, "text/html", mt)
}

func TestDefaultLookupWithDot(t *testing.T) {
	mt, ok := Default.Lookup(".json")
	assert.True(t, ok)
	assert.Equal(t, "application/json", mt)
}

func TestDefaultLookupUnknownExtension(t *testing.T) {
	_, ok := Default.Lookup(".not-a-real-extension-xyz")
	assert.False(t, ok)
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "html", ExtensionOf("/a/b/page.html"))
	assert.Equal(t, "", ExtensionOf("/a/b/page"))
}
