// Package fingerprint computes the content identity of a single file:
// extension, exact byte size, and a streaming SHA-256 digest. The identity is
// recomputed on every traversal and never cached, so an unmodified file
// always yields the same value.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

// DefaultBlockSize is the read chunk size used when none is configured
const DefaultBlockSize = 4096

// ReaderWrapper wraps a reader, e.g. for rate limiting
type ReaderWrapper func(io.Reader) io.Reader

// Computer produces fingerprints by streaming file content through SHA-256
// in fixed-size blocks
type Computer struct {
	blockSize     int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewComputer creates a fingerprint computer with the given block size
func NewComputer(blockSize int) *Computer {
	if blockSize < DefaultBlockSize {
		blockSize = DefaultBlockSize
	}
	return &Computer{
		blockSize: blockSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, blockSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *Computer) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Compute reads the entire file at path and returns its fingerprint.
// An unreadable path fails with an I/O error naming the path; classification
// correctness depends on this propagating, so it is never swallowed.
func (c *Computer) Compute(ctx context.Context, backend storage.Backend, path string) (models.Fingerprint, error) {
	info, err := backend.Stat(ctx, path)
	if err != nil {
		return models.Fingerprint{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir {
		return models.Fingerprint{}, fmt.Errorf("cannot fingerprint directory: %s", path)
	}

	hash, err := c.hashContent(ctx, backend, path)
	if err != nil {
		return models.Fingerprint{}, err
	}

	return models.Fingerprint{
		Extension: filepath.Ext(path),
		Size:      info.Size,
		Hash:      hash,
	}, nil
}

// hashContent streams the file through SHA-256 in fixed-size blocks until EOF
func (c *Computer) hashContent(ctx context.Context, backend storage.Backend, path string) (string, error) {
	reader, err := backend.Read(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer reader.Close()

	var src io.Reader = reader
	if c.readerWrapper != nil {
		src = c.readerWrapper(reader)
	}

	hasher := sha256.New()

	bufPtr := c.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer c.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := src.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
