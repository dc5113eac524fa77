package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/transform"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestCopy(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/fonts/a.woff2":     "font-a",
		"src/fonts/sub/b.woff2": "font-b",
	})

	req := newRequest(root, domain.NewPathSet("src/fonts/**"), "dist/fonts", "src/fonts/a.woff2", "src/fonts/sub/b.woff2")
	produced, err := transform.Copy{}.Apply(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/fonts/a.woff2", "dist/fonts/sub/b.woff2"}, produced)
	assert.Equal(t, "font-a", readOut(t, root, "dist/fonts/a.woff2"))
	assert.Equal(t, "font-b", readOut(t, root, "dist/fonts/sub/b.woff2"))
}

func TestCopy_MissingInput(t *testing.T) {
	req := newRequest(t.TempDir(), domain.NewPathSet("src/**"), "dist", "src/missing.txt")
	_, err := transform.Copy{}.Apply(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrFileReadFailed.Error())
}
