package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket          string
	CredentialsJSON string
	SignerEmail     string
	SignerKey       string
	SignedURLTTL    time.Duration
	UploadTimeout   time.Duration
	ChunkSize       int
	ProxyBaseURL    string
}

// GCS stores blobs in a Google Cloud Storage bucket. Objects are never
// probed for existence: uniqueness is enforced with a DoesNotExist
// precondition on write.
type GCS struct {
	client *storage.Client
	cfg    GCSConfig

	accessID   string
	privateKey []byte
}

type serviceAccountJSON struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

func NewGCS(ctx context.Context, cfg GCSConfig) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	g := &GCS{client: client, cfg: cfg}

	g.accessID, g.privateKey, err = loadSigner(cfg)
	if err != nil {
		client.Close()
		return nil, err
	}

	return g, nil
}

func loadSigner(cfg GCSConfig) (string, []byte, error) {
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		var key serviceAccountJSON
		if err := json.Unmarshal([]byte(cfg.CredentialsJSON), &key); err != nil {
			return "", nil, fmt.Errorf("invalid GCS_CREDENTIALS_JSON: %w", err)
		}

		if key.ClientEmail != "" && key.PrivateKey != "" {
			return key.ClientEmail, normalizePrivateKey(key.PrivateKey), nil
		}
	}

	if cfg.SignerEmail == "" || cfg.SignerKey == "" {
		return "", nil, nil
	}

	return cfg.SignerEmail, normalizePrivateKey(cfg.SignerKey), nil
}

func normalizePrivateKey(key string) []byte {
	return []byte(strings.ReplaceAll(key, "\\n", "\n"))
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) Put(ctx context.Context, logicalPath string, r io.Reader) (string, error) {
	if g.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.UploadTimeout)

		defer cancel()
	}

	dir, name := splitKey(logicalPath)
	key := dir + SanitizeName(name)

	// A taken name fails the precondition; the payload is replayed under a
	// suffixed key when r can seek.
	err := g.write(ctx, key, r)
	if isPreconditionFailed(err) {
		if rs, ok := r.(io.Seeker); ok {
			if _, serr := rs.Seek(0, io.SeekStart); serr == nil {
				key = withSuffix(key, uuid.NewString()[:8])
				err = g.write(ctx, key, r)
			}
		}
	}

	if err != nil {
		return "", classify(fmt.Errorf("uploading %s: %w", key, err))
	}

	return key, nil
}

func (g *GCS) write(ctx context.Context, key string, r io.Reader) error {
	obj := g.client.Bucket(g.cfg.Bucket).Object(key).If(storage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ChunkSize = g.cfg.ChunkSize

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func (g *GCS) URL(ctx context.Context, key string) (string, error) {
	if g.accessID == "" {
		return strings.TrimRight(g.cfg.ProxyBaseURL, "/") + "/" + key, nil
	}

	url, err := g.client.Bucket(g.cfg.Bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(g.cfg.SignedURLTTL),
		GoogleAccessID: g.accessID,
		PrivateKey:     g.privateKey,
	})
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	return url, nil
}

func (g *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := g.client.Bucket(g.cfg.Bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, classify(fmt.Errorf("opening %s: %w", key, err))
	}

	return rc, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.cfg.Bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return classify(fmt.Errorf("deleting %s: %w", key, err))
	}

	return nil
}

// Exists always reports false; see the type comment.
func (g *GCS) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func splitKey(p string) (string, string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}

	return p[:i+1], p[i+1:]
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
