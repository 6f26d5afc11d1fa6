package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	html, err := New().Render("Modern **e-commerce** site")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>e-commerce</strong>")
}

func TestRender_StripsScripts(t *testing.T) {
	html, err := New().Render("hi <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "javascript:")
}
