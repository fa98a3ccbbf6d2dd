package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores blobs under a root directory and serves them through the
// API's file proxy.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) *Local {
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) abs(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}

	return filepath.Join(l.root, clean), nil
}

func (l *Local) Put(ctx context.Context, logicalPath string, r io.Reader) (string, error) {
	dir, name := filepath.Split(filepath.ToSlash(logicalPath))
	key := dir + SanitizeName(name)

	target, err := l.abs(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		key = withSuffix(key, uuid.NewString()[:8])
		if target, err = l.abs(key); err != nil {
			return "", err
		}

		f, err = os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}

	if err != nil {
		return "", fmt.Errorf("creating blob: %w", err)
	}

	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		f.Close()
		os.Remove(target)

		return "", fmt.Errorf("writing blob: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing blob: %w", err)
	}

	return key, nil
}

func (l *Local) URL(_ context.Context, key string) (string, error) {
	return l.baseURL + "/" + strings.TrimLeft(key, "/"), nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := l.abs(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("opening blob: %w", err)
	}

	return f, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	target, err := l.abs(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}

	return nil
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	target, err := l.abs(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return err == nil, err
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
