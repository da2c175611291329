package apply

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/treesync/pkg/diff"
	"github.com/sdejongh/treesync/pkg/fingerprint"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func diffTrees(t *testing.T, sourceDir, targetDir string) []models.Result {
	t.Helper()

	source, err := storage.NewLocal(sourceDir)
	require.NoError(t, err)
	target, err := storage.NewLocal(targetDir)
	require.NoError(t, err)

	differ := diff.NewDiffer(source, target, fingerprint.NewComputer(fingerprint.DefaultBlockSize), nil)
	outcome, err := differ.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, outcome.Errors)
	return outcome.Results
}

func newTestApplier(t *testing.T, sourceDir, targetDir string, opts Options) *Applier {
	t.Helper()

	source, err := storage.NewLocal(sourceDir)
	require.NoError(t, err)
	target, err := storage.NewLocal(targetDir)
	require.NoError(t, err)

	return NewApplier(source, target, nil, opts)
}

func TestApplyDryRun(t *testing.T) {
	source := makeTree(t, map[string]string{"a.txt": "new", "sub/b.txt": "also new"})
	target := makeTree(t, map[string]string{"a.txt": "old"})

	results := diffTrees(t, source, target)
	applier := newTestApplier(t, source, target, Options{})

	outcome, err := applier.Apply(context.Background(), results, false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.Stats.FilesCopied)
	assert.Equal(t, 1, outcome.Stats.FilesModified)
	assert.Zero(t, outcome.Stats.BytesTransferred)

	// Target tree is untouched
	content, err := os.ReadFile(filepath.Join(target, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
	_, err = os.Stat(filepath.Join(target, "sub"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("CopiesAndOverwrites", func(t *testing.T) {
		source := makeTree(t, map[string]string{
			"new.txt":       "brand new",
			"changed.txt":   "updated content",
			"unchanged.txt": "stable",
			"sub/deep.txt":  "nested",
		})
		target := makeTree(t, map[string]string{
			"changed.txt":   "stale content",
			"unchanged.txt": "stable",
		})

		results := diffTrees(t, source, target)
		applier := newTestApplier(t, source, target, Options{MaxWorkers: 3})

		outcome, err := applier.Apply(ctx, results, true)
		require.NoError(t, err)

		assert.Equal(t, models.StatusSuccess, outcome.Status)
		assert.Equal(t, 2, outcome.Stats.FilesCopied)
		assert.Equal(t, 1, outcome.Stats.FilesModified)
		assert.Equal(t, 1, outcome.Stats.FilesUnchanged)
		assert.Empty(t, outcome.Errors)

		for rel, want := range map[string]string{
			"new.txt":      "brand new",
			"changed.txt":  "updated content",
			"sub/deep.txt": "nested",
		} {
			content, err := os.ReadFile(filepath.Join(target, rel))
			require.NoError(t, err)
			assert.Equal(t, want, string(content), rel)
		}
	})

	t.Run("PreservesMetadata", func(t *testing.T) {
		source := makeTree(t, map[string]string{"a.sh": "#!/bin/sh\n"})
		target := makeTree(t, nil)

		srcPath := filepath.Join(source, "a.sh")
		modTime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
		require.NoError(t, os.Chmod(srcPath, 0755))
		require.NoError(t, os.Chtimes(srcPath, modTime, modTime))

		results := diffTrees(t, source, target)
		applier := newTestApplier(t, source, target, Options{})

		_, err := applier.Apply(ctx, results, true)
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(target, "a.sh"))
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(modTime))
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
		}
	})

	t.Run("ReportsBytesAndProgress", func(t *testing.T) {
		source := makeTree(t, map[string]string{"a.txt": "12345", "b.txt": "678"})
		target := makeTree(t, nil)

		var progressed int64
		results := diffTrees(t, source, target)
		applier := newTestApplier(t, source, target, Options{
			Progress: func(n int64) { atomic.AddInt64(&progressed, n) },
		})

		outcome, err := applier.Apply(ctx, results, true)
		require.NoError(t, err)
		assert.Equal(t, int64(8), outcome.Stats.BytesTransferred)
		assert.Equal(t, int64(8), atomic.LoadInt64(&progressed))
	})

	t.Run("FailedEntryDoesNotStopOthers", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Getuid() == 0 {
			t.Skip("permission bits are not enforced here")
		}

		source := makeTree(t, map[string]string{"good.txt": "fine", "locked.txt": "secret"})
		target := makeTree(t, nil)

		results := diffTrees(t, source, target)
		require.NoError(t, os.Chmod(filepath.Join(source, "locked.txt"), 0000))
		defer os.Chmod(filepath.Join(source, "locked.txt"), 0644)

		applier := newTestApplier(t, source, target, Options{MaxWorkers: 2})
		outcome, err := applier.Apply(ctx, results, true)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPartial, outcome.Status)
		assert.Equal(t, 1, outcome.Stats.FilesErrored)
		require.Len(t, outcome.Errors, 1)
		assert.Equal(t, models.PhaseApply, outcome.Errors[0].Phase)
		assert.Equal(t, models.ActionCopy, outcome.Errors[0].Action)

		content, err := os.ReadFile(filepath.Join(target, "good.txt"))
		require.NoError(t, err)
		assert.Equal(t, "fine", string(content))
	})

	t.Run("CancelledContext", func(t *testing.T) {
		source := makeTree(t, map[string]string{"a.txt": "x"})
		target := makeTree(t, nil)

		results := diffTrees(t, source, target)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		applier := newTestApplier(t, source, target, Options{})
		outcome, err := applier.Apply(cancelled, results, true)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, models.StatusCancelled, outcome.Status)
	})
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()

	source := makeTree(t, map[string]string{
		"a.txt":     "alpha",
		"sub/b.txt": "beta",
	})
	target := makeTree(t, map[string]string{"a.txt": "stale"})

	results := diffTrees(t, source, target)
	applier := newTestApplier(t, source, target, Options{MaxWorkers: 2})

	_, err := applier.Apply(ctx, results, true)
	require.NoError(t, err)

	// A second pass classifies everything as no action
	second := diffTrees(t, source, target)
	for _, r := range second {
		assert.Equal(t, models.ActionNone, r.Action, r.RelativePath)
	}

	equal, err := diff.DirectoriesEqual(ctx, source, target)
	require.NoError(t, err)
	assert.True(t, equal)
}
