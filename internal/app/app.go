// Package app builds the service graph shared by the api, worker and tui
// commands from one configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/forwarder/internal/blob"
	"github.com/MrJamesThe3rd/forwarder/internal/client"
	clientStore "github.com/MrJamesThe3rd/forwarder/internal/client/store"
	"github.com/MrJamesThe3rd/forwarder/internal/config"
	"github.com/MrJamesThe3rd/forwarder/internal/costtype"
	costtypeStore "github.com/MrJamesThe3rd/forwarder/internal/costtype/store"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/email"
	emailStore "github.com/MrJamesThe3rd/forwarder/internal/email/store"
	"github.com/MrJamesThe3rd/forwarder/internal/export"
	"github.com/MrJamesThe3rd/forwarder/internal/importer"
	importerStore "github.com/MrJamesThe3rd/forwarder/internal/importer/store"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/forwarder/internal/invoice/store"
	"github.com/MrJamesThe3rd/forwarder/internal/lock"
	"github.com/MrJamesThe3rd/forwarder/internal/mailsource"
	"github.com/MrJamesThe3rd/forwarder/internal/maintenance"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
	patternStore "github.com/MrJamesThe3rd/forwarder/internal/pattern/store"
	"github.com/MrJamesThe3rd/forwarder/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/forwarder/internal/payment/store"
	"github.com/MrJamesThe3rd/forwarder/internal/provider"
	providerStore "github.com/MrJamesThe3rd/forwarder/internal/provider/store"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	provisionStore "github.com/MrJamesThe3rd/forwarder/internal/provision/store"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
	uploadStore "github.com/MrJamesThe3rd/forwarder/internal/upload/store"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
	workorderStore "github.com/MrJamesThe3rd/forwarder/internal/workorder/store"
)

type App struct {
	Config *config.Config
	DB     *sql.DB
	Logger *slog.Logger
	Blobs  blob.Store
	Locker lock.Locker

	Uploads     *upload.Service
	Providers   *provider.Service
	CostTypes   *costtype.Service
	Patterns    *pattern.Service
	Clients     *client.Service
	WorkOrders  *workorder.Service
	Provision   *provision.Engine
	Invoices    *invoice.Service
	Payments    *payment.Service
	Importer    *importer.Service
	Email       *email.Service
	Maintenance *maintenance.Service
	Export      *export.Service

	redis *redis.Client
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.App.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(h).With("app", cfg.App.Name)
}

// New connects to the database, applies migrations when enabled and wires
// every service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return nil, err
		}
	}

	db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
		MaxOpen:     cfg.DB.MaxOpenConns,
		MaxIdle:     cfg.DB.MaxIdleConns,
		MaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db, Logger: logger}

	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	a.Blobs = blobs

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}

		a.redis = redis.NewClient(opts)
		a.Locker = lock.NewRedis(a.redis)
	} else {
		a.Locker = lock.NewPostgres(a.DB)
	}

	mail, err := newMailSource(cfg, a.Logger)
	if err != nil {
		return err
	}

	var (
		tx     = database.NewTransactor(a.DB)
		engine = provision.NewEngine(provisionStore.New(a.DB), a.Logger)
		woRepo = workorderStore.New(a.DB)
	)

	a.Provision = engine
	a.Uploads = upload.NewService(uploadStore.New(a.DB), blobs, upload.Options{
		UploadTimeout: cfg.Storage.UploadTimeout,
	})
	a.Providers = provider.NewService(providerStore.New(a.DB))
	a.CostTypes = costtype.NewService(costtypeStore.New(a.DB))
	a.Patterns = pattern.NewService(patternStore.New(a.DB), pattern.NewCache(512, cfg.Ops.CacheTTL), a.Logger)
	a.Clients = client.NewService(clientStore.New(a.DB), tx, a.Logger, client.Options{
		Threshold: cfg.Ops.SimilarityThreshold,
		CacheTTL:  cfg.Ops.CacheTTL,
	})
	a.WorkOrders = workorder.NewService(woRepo, tx, engine, a.Clients)
	a.Invoices = invoice.NewService(invoice.Deps{
		Repo:       invoiceStore.New(a.DB),
		Tx:         tx,
		Linker:     engine,
		CostTypes:  a.CostTypes,
		WorkOrders: a.WorkOrders,
		Files:      a.Uploads,
		Patterns:   a.Patterns,
		Logger:     a.Logger,
	}, invoice.Options{
		ProviderConfidence: cfg.Ops.ProviderConfidence,
		DueWindowDays:      cfg.Ops.DueAlertDays,
	})
	a.Payments = payment.NewService(paymentStore.New(a.DB), tx, a.Invoices, a.Uploads, a.Logger)
	a.Importer = importer.NewService(importerStore.New(a.DB), woRepo, a.Clients, a.Providers, tx, importer.Options{
		Year:     cfg.OperationalYear,
		BatchTTL: cfg.Ops.PendingBatchTTL,
	}, a.Logger)
	a.Email = email.NewService(emailStore.New(a.DB), mail, a.Uploads, a.Invoices, a.Locker, email.Options{
		ProcessedFolder:    cfg.Mail.ProcessedFolder,
		MaxAttachmentBytes: cfg.Ops.MaxAttachmentBytes,
		LockTTL:            cfg.Queue.HardTimeLimit,
	}, a.Logger)
	a.Maintenance = maintenance.NewService(a.Email, engine, a.Clients, a.CostTypes, tx, a.Logger)
	a.Export = export.NewService(a.Invoices, a.Uploads)

	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.StorageProvider() {
	case "local":
		if err := os.MkdirAll(cfg.Storage.LocalRoot, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage root: %w", err)
		}

		return blob.NewLocal(cfg.Storage.LocalRoot, cfg.Storage.PublicBaseURL), nil
	case "gcs":
		return blob.NewGCS(ctx, blob.GCSConfig{
			Bucket:          cfg.Storage.Bucket,
			CredentialsJSON: cfg.Storage.CredentialsJSON,
			SignerEmail:     cfg.Storage.SignerEmail,
			SignerKey:       cfg.Storage.SignerKey,
			SignedURLTTL:    cfg.Storage.SignedURLTTL,
			UploadTimeout:   cfg.Storage.UploadTimeout,
			ChunkSize:       cfg.Storage.ChunkSize,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Storage.Provider)
	}
}

func newMailSource(cfg *config.Config, logger *slog.Logger) (email.MailSource, error) {
	if cfg.Mail.TenantID == "" || cfg.Mail.ClientID == "" || cfg.Mail.Mailbox == "" {
		logger.Warn("mail source not configured, email ingestion disabled")
		return mailsource.Unconfigured{}, nil
	}

	tokens, err := mailsource.NewClientSecretTokens(cfg.Mail.TenantID, cfg.Mail.ClientID, cfg.Mail.ClientSecret, cfg.Mail.TokenTimeout)
	if err != nil {
		return nil, err
	}

	return mailsource.New(tokens, mailsource.Options{
		BaseURL:           cfg.Mail.GraphBaseURL,
		Mailbox:           cfg.Mail.Mailbox,
		RequestTimeout:    cfg.Mail.RequestTimeout,
		RequestsPerSecond: cfg.Mail.RequestsPerSec,
		Logger:            logger,
	}), nil
}

// Bootstrap creates the rows the rest of the system assumes exist.
func (a *App) Bootstrap(ctx context.Context) error {
	if _, err := a.Patterns.EnsureSystemGroup(ctx); err != nil {
		return fmt.Errorf("ensuring system pattern group: %w", err)
	}

	return nil
}

func (a *App) Close() error {
	var errs []error

	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}

	if c, ok := a.Blobs.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}

	errs = append(errs, a.DB.Close())

	return errors.Join(errs...)
}
