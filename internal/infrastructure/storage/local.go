package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"livecast/pkg/optimize"

	"go.uber.org/zap"
)

const copyBufferSize = 256 * 1024

// Local keeps uploaded videos in a single flat directory. Stored names
// come from pkg/utils and are validated again here so a crafted name
// cannot escape the directory.
type Local struct {
	dir    string
	pool   *optimize.BytePool
	logger *zap.SugaredLogger
}

func NewLocal(dir string, logger *zap.SugaredLogger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Local{
		dir:    dir,
		pool:   optimize.NewBytePool(copyBufferSize),
		logger: logger,
	}, nil
}

// Save streams content into the store under storedName. The write goes
// through a temp file in the same directory and is renamed into place,
// so readers never observe a partial upload.
func (l *Local) Save(ctx context.Context, storedName string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target, err := l.resolve(storedName)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := l.pool.Get()
	written, err := io.CopyBuffer(tmp, content, buf)
	l.pool.Put(buf)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to close upload: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to move upload into place: %w", err)
	}

	l.logger.Debugw("stored upload", "stored_name", storedName, "bytes", written)
	return written, nil
}

// Remove deletes the stored file. A file that is already gone is not
// an error.
func (l *Local) Remove(ctx context.Context, storedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := l.resolve(storedName)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stored file: %w", err)
	}
	return nil
}

// Path returns the absolute location of a stored file, whether or not
// it exists.
func (l *Local) Path(storedName string) string {
	return filepath.Join(l.dir, filepath.Base(storedName))
}

func (l *Local) Exists(storedName string) bool {
	target, err := l.resolve(storedName)
	if err != nil {
		return false
	}

	info, err := os.Stat(target)
	return err == nil && !info.IsDir()
}

func (l *Local) resolve(storedName string) (string, error) {
	if storedName == "" ||
		storedName == "." || storedName == ".." ||
		strings.ContainsAny(storedName, `/\`) {
		return "", fmt.Errorf("invalid stored name %q", storedName)
	}
	return filepath.Join(l.dir, storedName), nil
}
