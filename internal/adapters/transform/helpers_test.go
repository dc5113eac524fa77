package transform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// writeTree creates the given slash-separated files below root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func readOut(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func newRequest(root string, input domain.PathSet, output string, files ...string) ports.TransformRequest {
	return ports.TransformRequest{
		Name:   "test",
		Root:   root,
		Input:  input,
		Files:  files,
		Output: output,
		Settings: domain.Settings{
			Root:   root,
			Source: "src",
			Output: "dist",
		},
	}
}
