package upload_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/blob"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

func hashOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestService_Store(t *testing.T) {
	const content = "FACTURA 001-001-000000123"

	t.Run("NewFileIsWritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := upload.NewMockRepository(ctrl)
		blobs := blob.NewLocal(t.TempDir(), "http://localhost/files")
		svc := upload.NewService(repo, blobs, upload.Options{})

		repo.EXPECT().GetByHash(gomock.Any(), hashOf(content)).Return(nil, apperr.NotFound("uploaded file"))
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f *upload.File) error {
				assert.Equal(t, hashOf(content), f.SHA256)
				assert.Equal(t, int64(len(content)), f.Size)
				assert.Equal(t, "application/pdf", f.Mime)
				assert.True(t, strings.HasPrefix(f.Path, "invoices/"))
				assert.True(t, strings.HasSuffix(f.Path, "/Factura_1.pdf"))
				f.ID = uuid.New()

				return nil
			})

		f, reused, err := svc.Store(context.Background(), "Factura 1.pdf", "", strings.NewReader(content))
		require.NoError(t, err)
		assert.False(t, reused)

		rc, err := blobs.Open(context.Background(), f.Path)
		require.NoError(t, err)
		defer rc.Close()

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	})

	t.Run("SameBytesReuseRecord", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := upload.NewMockRepository(ctrl)
		svc := upload.NewService(repo, blob.NewLocal(t.TempDir(), ""), upload.Options{})

		existing := &upload.File{ID: uuid.New(), SHA256: hashOf(content)}
		repo.EXPECT().GetByHash(gomock.Any(), hashOf(content)).Return(existing, nil)

		f, reused, err := svc.Store(context.Background(), "other-name.pdf", "application/pdf", strings.NewReader(content))
		require.NoError(t, err)
		assert.True(t, reused)
		assert.Equal(t, existing.ID, f.ID)
	})

	t.Run("RaceFallsBackToWinner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := upload.NewMockRepository(ctrl)
		root := t.TempDir()
		blobs := blob.NewLocal(root, "")
		svc := upload.NewService(repo, blobs, upload.Options{})

		winner := &upload.File{ID: uuid.New(), SHA256: hashOf(content)}

		var written string

		gomock.InOrder(
			repo.EXPECT().GetByHash(gomock.Any(), hashOf(content)).Return(nil, apperr.NotFound("uploaded file")),
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, f *upload.File) error {
					written = f.Path
					return upload.ErrDuplicate
				}),
			repo.EXPECT().GetByHash(gomock.Any(), hashOf(content)).Return(winner, nil),
		)

		f, reused, err := svc.Store(context.Background(), "f.txt", "", strings.NewReader(content))
		require.NoError(t, err)
		assert.True(t, reused)
		assert.Equal(t, winner.ID, f.ID)

		ok, err := blobs.Exists(context.Background(), written)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("TooLarge", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := upload.NewMockRepository(ctrl)
		svc := upload.NewService(repo, blob.NewLocal(t.TempDir(), ""), upload.Options{MaxSize: 4})

		_, _, err := svc.Store(context.Background(), "f.txt", "", strings.NewReader(content))
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}
