package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/blob"
)

// ErrDuplicate is returned by Repository.Create when a live record with the
// same hash already exists.
var ErrDuplicate = errors.New("uploaded file already exists")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=upload
type Repository interface {
	Create(ctx context.Context, f *File) error
	Get(ctx context.Context, id uuid.UUID) (*File, error)
	GetByHash(ctx context.Context, sha string) (*File, error)
}

type Options struct {
	// UploadTimeout bounds a single blob write.
	UploadTimeout time.Duration
	// MaxSize rejects larger inputs. Zero disables the check.
	MaxSize int64
}

type Service struct {
	repo  Repository
	blobs blob.Store
	opts  Options
	now   func() time.Time
}

func NewService(repo Repository, blobs blob.Store, opts Options) *Service {
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 2 * time.Minute
	}

	return &Service{repo: repo, blobs: blobs, opts: opts, now: time.Now}
}

// Store spools r to a temporary file while hashing it, then either returns
// the existing record for that hash or writes the bytes to the blob store.
// The boolean reports whether an existing record was reused.
func (s *Service) Store(ctx context.Context, filename, mimeType string, r io.Reader) (*File, bool, error) {
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, false, fmt.Errorf("creating temp file: %w", err)
	}

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	sum, size, err := s.spool(tmp, r)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByHash(ctx, sum)
	if err == nil {
		return existing, true, nil
	}

	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("rewinding temp file: %w", err)
	}

	key, err := s.put(ctx, blob.InvoicePath(s.now().UTC(), filename), tmp)
	if err != nil {
		return nil, false, err
	}

	f := &File{
		SHA256:   sum,
		Path:     key,
		Filename: filepath.Base(filename),
		Size:     size,
		Mime:     detectMime(filename, mimeType),
	}

	err = s.repo.Create(ctx, f)
	if errors.Is(err, ErrDuplicate) {
		// Lost a race with a concurrent upload of the same bytes.
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			slog.Warn("failed to delete orphaned blob", "key", key, "error", derr)
		}

		existing, err := s.repo.GetByHash(ctx, sum)
		if err != nil {
			return nil, false, err
		}

		return existing, true, nil
	}

	if err != nil {
		return nil, false, err
	}

	return f, false, nil
}

func (s *Service) spool(w io.Writer, r io.Reader) (string, int64, error) {
	h := sha256.New()

	src := r
	if s.opts.MaxSize > 0 {
		src = io.LimitReader(r, s.opts.MaxSize+1)
	}

	n, err := io.Copy(io.MultiWriter(w, h), src)
	if err != nil {
		return "", 0, fmt.Errorf("reading upload: %w", err)
	}

	if s.opts.MaxSize > 0 && n > s.opts.MaxSize {
		return "", 0, apperr.Validation("file", fmt.Sprintf("exceeds %d bytes", s.opts.MaxSize))
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func (s *Service) put(ctx context.Context, logicalPath string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UploadTimeout)
	defer cancel()

	key, err := s.blobs.Put(ctx, logicalPath, r)
	if err != nil {
		return "", fmt.Errorf("storing blob: %w", err)
	}

	return key, nil
}

// StoreReceipt writes a supplier-payment receipt and returns its blob key.
// Receipts are not deduplicated.
func (s *Service) StoreReceipt(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.put(ctx, blob.ReceiptPath(s.now().UTC(), filename), r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*File, error) {
	return s.repo.Get(ctx, id)
}

// Open streams the bytes of an uploaded file.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*File, io.ReadCloser, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, f.Path)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, apperr.NotFound("file content")
	}

	if err != nil {
		return nil, nil, fmt.Errorf("opening blob: %w", err)
	}

	return f, rc, nil
}

// ReadAll loads a whole uploaded file into memory for text extraction.
func (s *Service) ReadAll(ctx context.Context, id uuid.UUID) (*File, []byte, error) {
	f, rc, err := s.Open(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("reading blob: %w", err)
	}

	return f, data, nil
}

// URL returns a link end users can follow without blob-store credentials.
func (s *Service) URL(ctx context.Context, id uuid.UUID) (string, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	return s.blobs.URL(ctx, f.Path)
}

func detectMime(filename, given string) string {
	if given != "" {
		return given
	}

	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}

	return "application/octet-stream"
}
