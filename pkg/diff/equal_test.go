package diff

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoriesEqual(t *testing.T) {
	ctx := context.Background()

	t.Run("IdenticalTrees", func(t *testing.T) {
		files := map[string]string{
			"a.txt":     "alpha",
			"sub/b.txt": "beta",
			"sub/c":     "",
		}
		left := makeTree(t, files)
		right := makeTree(t, files)

		equal, err := DirectoriesEqual(ctx, left, right)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("BothEmpty", func(t *testing.T) {
		equal, err := DirectoriesEqual(ctx, t.TempDir(), t.TempDir())
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("ExtraFileOnOneSide", func(t *testing.T) {
		left := makeTree(t, map[string]string{"a.txt": "alpha"})
		right := makeTree(t, map[string]string{"a.txt": "alpha", "b.txt": "beta"})

		equal, err := DirectoriesEqual(ctx, left, right)
		require.NoError(t, err)
		assert.False(t, equal)

		// Symmetric in the other direction
		equal, err = DirectoriesEqual(ctx, right, left)
		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("SamePathsDifferentContent", func(t *testing.T) {
		left := makeTree(t, map[string]string{"a.txt": "one"})
		right := makeTree(t, map[string]string{"a.txt": "two"})

		equal, err := DirectoriesEqual(ctx, left, right)
		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("SameSizeDifferentBytes", func(t *testing.T) {
		left := makeTree(t, map[string]string{"a.bin": "xxxx"})
		right := makeTree(t, map[string]string{"a.bin": "xxxy"})

		equal, err := DirectoriesEqual(ctx, left, right)
		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("FileVersusDirectory", func(t *testing.T) {
		left := makeTree(t, map[string]string{"node": "a plain file"})
		right := makeTree(t, map[string]string{"node/inner.txt": "a directory"})

		equal, err := DirectoriesEqual(ctx, left, right)
		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("EmptyDirectoriesCount", func(t *testing.T) {
		left := makeTree(t, map[string]string{"a.txt": "x"})
		right := makeTree(t, map[string]string{"a.txt": "x"})
		require.NoError(t, os.MkdirAll(filepath.Join(right, "empty"), 0755))

		equal, err := DirectoriesEqual(ctx, left, right)
		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		_, err := DirectoriesEqual(ctx, "/nonexistent/left", t.TempDir())
		assert.Error(t, err)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		left := makeTree(t, map[string]string{"a.txt": "x"})
		right := makeTree(t, map[string]string{"a.txt": "x"})

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := DirectoriesEqual(cancelled, left, right)
		assert.Error(t, err)
	})
}
