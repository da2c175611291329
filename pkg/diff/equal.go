package diff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sdejongh/treesync/pkg/storage"
)

const equalityBufferSize = 64 * 1024

// DirectoriesEqual reports whether two directory trees are deeply identical:
// both contain the same set of relative paths, entry kinds match everywhere,
// and every pair of regular files is byte-identical. It is a standalone
// predicate and does not feed the diff/apply pipeline.
func DirectoriesEqual(ctx context.Context, dir1, dir2 string) (bool, error) {
	left, err := storage.NewLocal(dir1)
	if err != nil {
		return false, err
	}
	defer left.Close()

	right, err := storage.NewLocal(dir2)
	if err != nil {
		return false, err
	}
	defer right.Close()

	leftEntries, err := left.List(ctx, "")
	if err != nil {
		return false, fmt.Errorf("failed to walk %s: %w", dir1, err)
	}
	rightEntries, err := right.List(ctx, "")
	if err != nil {
		return false, fmt.Errorf("failed to walk %s: %w", dir2, err)
	}

	leftSet := entrySet(leftEntries)
	rightSet := entrySet(rightEntries)

	if len(leftSet) != len(rightSet) {
		return false, nil
	}

	for rel, leftInfo := range leftSet {
		rightInfo, ok := rightSet[rel]
		if !ok {
			return false, nil
		}
		if leftInfo.IsDir != rightInfo.IsDir {
			return false, nil
		}
		if leftInfo.IsDir {
			continue
		}
		if leftInfo.Size != rightInfo.Size {
			return false, nil
		}

		same, err := filesIdentical(ctx, left, right, rel)
		if err != nil {
			return false, err
		}
		if !same {
			return false, nil
		}
	}

	return true, nil
}

// entrySet maps relative paths to their file info, excluding the root itself
func entrySet(entries []storage.FileInfo) map[string]storage.FileInfo {
	set := make(map[string]storage.FileInfo, len(entries))
	for _, e := range entries {
		if e.RelativePath == "." {
			continue
		}
		set[filepath.ToSlash(e.RelativePath)] = e
	}
	return set
}

// filesIdentical compares two same-sized files byte by byte
func filesIdentical(ctx context.Context, left, right storage.Backend, rel string) (bool, error) {
	leftReader, err := left.Read(ctx, rel)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer leftReader.Close()

	rightReader, err := right.Read(ctx, rel)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer rightReader.Close()

	leftBuf := make([]byte, equalityBufferSize)
	rightBuf := make([]byte, equalityBufferSize)

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		leftN, leftErr := io.ReadFull(leftReader, leftBuf)
		rightN, rightErr := io.ReadFull(rightReader, rightBuf)

		if leftN != rightN {
			return false, nil
		}
		if leftN > 0 && !bytes.Equal(leftBuf[:leftN], rightBuf[:rightN]) {
			return false, nil
		}

		leftDone := leftErr == io.EOF || leftErr == io.ErrUnexpectedEOF
		rightDone := rightErr == io.EOF || rightErr == io.ErrUnexpectedEOF
		if leftDone && rightDone {
			return true, nil
		}
		if leftDone != rightDone {
			return false, nil
		}
		if leftErr != nil {
			return false, fmt.Errorf("failed to read %s: %w", rel, leftErr)
		}
		if rightErr != nil {
			return false, fmt.Errorf("failed to read %s: %w", rel, rightErr)
		}
	}
}
