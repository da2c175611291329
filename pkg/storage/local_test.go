package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "treesync-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	local, err := NewLocal(tempDir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	return local, tempDir
}

func writeTestFile(t *testing.T, root, name string, content []byte) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
}

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, _ := newTestLocal(t)
		if local == nil {
			t.Fatal("NewLocal() returned nil")
		}
		defer local.Close()
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		if err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		tempFile, err := os.CreateTemp("", "treesync-file-*")
		if err != nil {
			t.Fatalf("failed to create temp file: %v", err)
		}
		tempFile.Close()
		defer os.Remove(tempFile.Name())

		_, err = NewLocal(tempFile.Name())
		if err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})

	t.Run("Root", func(t *testing.T) {
		local, tempDir := newTestLocal(t)
		if local.Root() != tempDir {
			t.Errorf("Root() = %s, want %s", local.Root(), tempDir)
		}
	})
}

// TestLocalList tests the List method
func TestLocalList(t *testing.T) {
	local, tempDir := newTestLocal(t)
	ctx := context.Background()

	files := map[string][]byte{
		"file1.txt":        []byte("content1"),
		"file2.txt":        []byte("content2"),
		"subdir/file3.txt": []byte("content3"),
	}
	for name, content := range files {
		writeTestFile(t, tempDir, name, content)
	}

	t.Run("ListAll", func(t *testing.T) {
		entries, err := local.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		// Root dir + subdir + 3 files = 5 entries
		if len(entries) != 5 {
			t.Errorf("List() returned %d entries, want 5", len(entries))
		}

		fileCount := 0
		for _, e := range entries {
			if !e.IsDir {
				fileCount++
				if _, ok := files[filepath.ToSlash(e.RelativePath)]; !ok {
					t.Errorf("unexpected file in listing: %s", e.RelativePath)
				}
			}
		}
		if fileCount != 3 {
			t.Errorf("List() returned %d files, want 3", fileCount)
		}
	})

	t.Run("WalkOrderIsStable", func(t *testing.T) {
		first, err := local.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		second, err := local.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(first) != len(second) {
			t.Fatalf("listing lengths differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].RelativePath != second[i].RelativePath {
				t.Errorf("walk order differs at %d: %s vs %s", i, first[i].RelativePath, second[i].RelativePath)
			}
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := local.List(cancelled, "")
		if err == nil {
			t.Error("List() should fail with cancelled context")
		}
	})
}

// TestLocalReadWrite tests Read and Write round trips
func TestLocalReadWrite(t *testing.T) {
	local, tempDir := newTestLocal(t)
	ctx := context.Background()

	t.Run("WriteAndRead", func(t *testing.T) {
		content := []byte("hello treesync")
		err := local.Write(ctx, "dir/new.txt", bytes.NewReader(content), int64(len(content)), nil)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		reader, err := local.Read(ctx, "dir/new.txt")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		defer reader.Close()

		got, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("read content = %q, want %q", got, content)
		}
	})

	t.Run("WritePreservesMetadata", func(t *testing.T) {
		content := []byte("metadata test")
		modTime := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
		metadata := &FileInfo{
			ModTime:     modTime,
			Permissions: 0600,
		}

		err := local.Write(ctx, "meta.txt", bytes.NewReader(content), int64(len(content)), metadata)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		info, err := os.Stat(filepath.Join(tempDir, "meta.txt"))
		if err != nil {
			t.Fatalf("stat error = %v", err)
		}
		if !info.ModTime().Truncate(time.Second).Equal(modTime) {
			t.Errorf("mod time = %v, want %v", info.ModTime(), modTime)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
		}
	})

	t.Run("WriteSizeMismatch", func(t *testing.T) {
		content := []byte("short")
		err := local.Write(ctx, "bad.txt", bytes.NewReader(content), 100, nil)
		if err == nil {
			t.Error("Write() should fail when written bytes do not match declared size")
		}
	})

	t.Run("WriteOverDirectory", func(t *testing.T) {
		if err := os.MkdirAll(filepath.Join(tempDir, "blocker"), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}

		content := []byte("collision")
		err := local.Write(ctx, "blocker", bytes.NewReader(content), int64(len(content)), nil)
		if err == nil {
			t.Error("Write() should refuse to overwrite a directory")
		}
	})

	t.Run("ReadMissingFile", func(t *testing.T) {
		_, err := local.Read(ctx, "does-not-exist.txt")
		if err == nil {
			t.Error("Read() should fail for missing file")
		}
	})
}

// TestLocalStatExists tests Stat and Exists
func TestLocalStatExists(t *testing.T) {
	local, tempDir := newTestLocal(t)
	ctx := context.Background()

	writeTestFile(t, tempDir, "present.txt", []byte("here"))

	t.Run("StatFile", func(t *testing.T) {
		info, err := local.Stat(ctx, "present.txt")
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info.Size != 4 {
			t.Errorf("Size = %d, want 4", info.Size)
		}
		if info.IsDir {
			t.Error("IsDir should be false for a file")
		}
	})

	t.Run("StatMissingIsNotExist", func(t *testing.T) {
		_, err := local.Stat(ctx, "missing.txt")
		if err == nil {
			t.Fatal("Stat() should fail for missing file")
		}
		if !os.IsNotExist(err) {
			t.Errorf("Stat() error should satisfy os.IsNotExist, got %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := local.Exists(ctx, "present.txt")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !exists {
			t.Error("Exists() = false for present file")
		}

		exists, err = local.Exists(ctx, "missing.txt")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if exists {
			t.Error("Exists() = true for missing file")
		}
	})

	t.Run("MkdirAll", func(t *testing.T) {
		if err := local.MkdirAll(ctx, "a/b/c"); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		info, err := os.Stat(filepath.Join(tempDir, "a", "b", "c"))
		if err != nil || !info.IsDir() {
			t.Error("MkdirAll() did not create nested directory")
		}
	})
}
