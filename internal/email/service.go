package email

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/lock"
	"github.com/MrJamesThe3rd/forwarder/internal/mailsource"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=email
type Repository interface {
	GetConfig(ctx context.Context) (*Config, error)
	UpdateConfig(ctx context.Context, cfg *Config) error
	SaveRun(ctx context.Context, at time.Time, status string) error

	LogExists(ctx context.Context, messageID string) (bool, error)
	// CreateLog fails with ErrAlreadyLogged when the message has a row.
	CreateLog(ctx context.Context, l *Log) error
	GetLog(ctx context.Context, id uuid.UUID) (*Log, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]*Log, error)
}

type MailSource interface {
	ListMessages(ctx context.Context, folder string, q mailsource.Query) ([]mailsource.Message, error)
	ListAttachments(ctx context.Context, messageID string) ([]mailsource.Attachment, error)
	DownloadAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
	MarkAsRead(ctx context.Context, messageID string) error
	MoveMessage(ctx context.Context, messageID, destination string) error
	TestConnection(ctx context.Context) error
}

type Uploads interface {
	Store(ctx context.Context, filename, mimeType string, r io.Reader) (*upload.File, bool, error)
}

type Invoices interface {
	CreateFromFile(ctx context.Context, params invoice.FromFileParams) (*invoice.FromFileResult, error)
}

type LogFilter struct {
	Status *Status
	Since  *time.Time
	Limit  int
	Offset int
}

type Options struct {
	// DaysBack bounds how old a listed message may be.
	DaysBack int
	// ProcessedFolder, when set, receives messages that yielded invoices.
	ProcessedFolder    string
	MaxAttachmentBytes int64
	LockTTL            time.Duration
	Now                func() time.Time
}

type Service struct {
	repo     Repository
	mail     MailSource
	uploads  Uploads
	invoices Invoices
	locker   lock.Locker
	opts     Options
	logger   *slog.Logger
}

func NewService(repo Repository, mail MailSource, uploads Uploads, invoices Invoices, locker lock.Locker, opts Options, logger *slog.Logger) *Service {
	if opts.DaysBack <= 0 {
		opts.DaysBack = 7
	}

	if opts.MaxAttachmentBytes <= 0 {
		opts.MaxAttachmentBytes = 15 << 20
	}

	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo: repo, mail: mail, uploads: uploads, invoices: invoices,
		locker: locker, opts: opts, logger: logger,
	}
}

func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	return s.repo.GetConfig(ctx)
}

type ConfigParams struct {
	Active          *bool    `json:"is_active"`
	IntervalMinutes *int     `json:"interval_minutes" validate:"omitempty,min=1,max=1440"`
	TargetFolders   []string `json:"target_folders"`
	SubjectFilters  []string `json:"subject_filters"`
	SenderWhitelist []string `json:"sender_whitelist"`
	MaxEmailsPerRun *int     `json:"max_emails_per_run" validate:"omitempty,min=1"`
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))

	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// UpdateConfig applies a partial update to the singleton configuration.
// A nil list leaves the stored one untouched.
func (s *Service) UpdateConfig(ctx context.Context, params ConfigParams) (*Config, error) {
	if err := apperr.Struct(params); err != nil {
		return nil, err
	}

	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	if params.Active != nil {
		cfg.Active = *params.Active
	}

	if params.IntervalMinutes != nil {
		cfg.IntervalMinutes = *params.IntervalMinutes
	}

	if params.MaxEmailsPerRun != nil {
		cfg.MaxEmailsPerRun = *params.MaxEmailsPerRun
	}

	if params.TargetFolders != nil {
		cfg.TargetFolders = cleanList(params.TargetFolders)
		if len(cfg.TargetFolders) == 0 {
			return nil, apperr.Validation("target_folders", "at least one folder is required")
		}
	}

	if params.SubjectFilters != nil {
		cfg.SubjectFilters = cleanList(params.SubjectFilters)
	}

	if params.SenderWhitelist != nil {
		cfg.SenderWhitelist = cleanList(params.SenderWhitelist)
		for i, v := range cfg.SenderWhitelist {
			cfg.SenderWhitelist[i] = strings.ToLower(v)
		}
	}

	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TestConnection checks the mail source credentials.
func (s *Service) TestConnection(ctx context.Context) error {
	return s.mail.TestConnection(ctx)
}

func (s *Service) GetLog(ctx context.Context, id uuid.UUID) (*Log, error) {
	return s.repo.GetLog(ctx, id)
}

func (s *Service) ListLogs(ctx context.Context, filter LogFilter) ([]*Log, error) {
	return s.repo.ListLogs(ctx, filter)
}
