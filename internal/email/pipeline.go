package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/lock"
	"github.com/MrJamesThe3rd/forwarder/internal/mailsource"
	"github.com/MrJamesThe3rd/forwarder/internal/metrics"
	"github.com/MrJamesThe3rd/forwarder/internal/textextract"
)

const lockKey = "email-auto-processing"

var ErrAlreadyLogged = errors.New("message already logged")

// RunReport summarises one pass over the mailbox.
type RunReport struct {
	Ran        bool           `json:"ran"`
	Reason     string         `json:"reason,omitempty"`
	Processed  int            `json:"processed"`
	Invoices   int            `json:"invoices"`
	ByStatus   map[Status]int `json:"by_status"`
	FolderErrs []string       `json:"folder_errors,omitempty"`
}

func (r *RunReport) summary() string {
	if len(r.FolderErrs) > 0 {
		return fmt.Sprintf("error: %s", strings.Join(r.FolderErrs, "; "))
	}

	return fmt.Sprintf("ok: %d processed, %d invoices", r.Processed, r.Invoices)
}

// RunOnce polls every target folder and processes what it finds. force
// runs even when auto-processing is switched off. Concurrent calls do not
// overlap: the loser returns without doing anything.
func (s *Service) RunOnce(ctx context.Context, force bool) (*RunReport, error) {
	report := &RunReport{ByStatus: map[Status]int{}}

	l, err := s.locker.TryLock(ctx, lockKey, s.opts.LockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		report.Reason = "another run is in progress"
		return report, nil
	}

	if err != nil {
		return nil, err
	}

	defer func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release mailbox lock", "error", err)
		}
	}()

	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	if !cfg.Active && !force {
		report.Reason = "auto-processing is disabled"
		return report, nil
	}

	report.Ran = true
	now := s.opts.Now()
	query := mailsource.Query{
		Keywords: cfg.SubjectFilters,
		Since:    now.AddDate(0, 0, -s.opts.DaysBack),
	}

folders:
	for _, folder := range cfg.TargetFolders {
		remaining := cfg.MaxEmailsPerRun - report.Processed
		if remaining <= 0 {
			break
		}

		query.Top = remaining

		msgs, err := s.mail.ListMessages(ctx, folder, query)
		if err != nil {
			s.logger.Error("failed to list messages", "folder", folder, "error", err)
			report.FolderErrs = append(report.FolderErrs, fmt.Sprintf("%s: %v", folder, err))

			if ctx.Err() != nil {
				break
			}

			continue
		}

		for _, msg := range msgs {
			if ctx.Err() != nil {
				break folders
			}

			entry := s.ProcessMessage(ctx, cfg, msg, folder)

			report.Processed++
			report.ByStatus[entry.Status]++
			report.Invoices += len(entry.InvoicesCreated)

			if report.Processed >= cfg.MaxEmailsPerRun {
				break folders
			}
		}
	}

	if err := s.repo.SaveRun(context.WithoutCancel(ctx), now, report.summary()); err != nil {
		return report, fmt.Errorf("saving run status: %w", err)
	}

	s.logger.Info("mailbox run finished",
		"processed", report.Processed, "invoices", report.Invoices,
		"success", report.ByStatus[StatusSuccess], "partial", report.ByStatus[StatusPartial],
		"failed", report.ByStatus[StatusFailed], "skipped", report.ByStatus[StatusSkipped])

	return report, ctx.Err()
}

// ProcessMessage turns one message's supported attachments into invoice
// drafts. It never fails: problems end up in the returned log entry, which
// is persisted unless the message was already processed.
func (s *Service) ProcessMessage(ctx context.Context, cfg *Config, msg mailsource.Message, folder string) *Log {
	started := time.Now()

	entry := &Log{
		MessageID: msg.DedupKey(),
		Subject:   msg.Subject,
		Sender:    msg.Sender,
		Folder:    folder,
	}

	if !msg.ReceivedAt.IsZero() {
		entry.ReceivedAt = &msg.ReceivedAt
	}

	exists, err := s.repo.LogExists(ctx, entry.MessageID)
	if err != nil {
		entry.Status, entry.Error = StatusFailed, err.Error()
		s.logger.Error("failed to check processing log", "message_id", entry.MessageID, "error", err)

		return entry
	}

	if exists {
		entry.Status, entry.Reason = StatusSkipped, ReasonAlreadyProcessed
		return entry
	}

	matched := s.process(ctx, cfg, msg, entry)
	entry.ProcessingMS = time.Since(started).Milliseconds()

	if err := s.repo.CreateLog(ctx, entry); err != nil {
		if errors.Is(err, ErrAlreadyLogged) {
			entry.Status, entry.Reason = StatusSkipped, ReasonAlreadyProcessed
			return entry
		}

		s.logger.Error("failed to write processing log", "message_id", entry.MessageID, "error", err)
	}

	metrics.RecordEmailMessage(string(entry.Status))
	metrics.RecordEmailInvoices(len(entry.InvoicesCreated))

	if entry.Status == StatusSkipped {
		return entry
	}

	if err := s.mail.MarkAsRead(ctx, msg.ID); err != nil {
		s.logger.Warn("failed to mark message as read", "message_id", entry.MessageID, "error", err)
	}

	if s.opts.ProcessedFolder != "" && len(entry.InvoicesCreated) > 0 {
		if err := s.mail.MoveMessage(ctx, msg.ID, s.opts.ProcessedFolder); err != nil {
			s.logger.Warn("failed to move message", "message_id", entry.MessageID, "error", err)
		}
	}

	s.logger.Info("message processed",
		"message_id", entry.MessageID, "status", entry.Status, "reason", entry.Reason,
		"invoices", len(entry.InvoicesCreated), "ots_matched", matched)

	return entry
}

// process fills entry with the outcome for msg and returns how many
// created invoices were matched to a work order.
func (s *Service) process(ctx context.Context, cfg *Config, msg mailsource.Message, entry *Log) int {
	if !cfg.Allows(msg.Sender) {
		entry.Status, entry.Reason = StatusSkipped, ReasonNotWhitelisted
		return 0
	}

	attachments, err := s.mail.ListAttachments(ctx, msg.ID)
	if err != nil {
		entry.Status, entry.Error = StatusFailed, err.Error()
		return 0
	}

	var (
		files   []mailsource.Attachment
		skipped int
	)

	for _, a := range attachments {
		if a.IsInline {
			continue
		}

		entry.AttachmentFilenames = append(entry.AttachmentFilenames, a.Name)

		switch {
		case !textextract.IsSupported(a.Name):
			skipped++
		case a.Size > s.opts.MaxAttachmentBytes:
			skipped++

			s.logger.Warn("attachment too large, skipping",
				"message_id", entry.MessageID, "attachment", a.Name,
				"size", a.Size, "limit", s.opts.MaxAttachmentBytes)
		default:
			files = append(files, a)
		}
	}

	if skipped > 0 {
		s.logger.Debug("attachments skipped", "message_id", entry.MessageID, "skipped", skipped)
	}

	switch {
	case len(entry.AttachmentFilenames) == 0:
		entry.Status, entry.Reason = StatusSkipped, ReasonNoAttachments
		return 0
	case len(files) == 0:
		entry.Status, entry.Reason = StatusSkipped, ReasonUnsupportedFiles
		return 0
	}

	var (
		errs    []string
		matched int
	)

	for _, a := range files {
		res, err := s.ingest(ctx, msg.ID, a)
		if err != nil {
			s.logger.Warn("attachment not ingested",
				"message_id", entry.MessageID, "attachment", a.Name, "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", a.Name, err))

			continue
		}

		entry.InvoicesCreated = append(entry.InvoicesCreated, res.Invoice.ID)

		if res.MatchedWorkOrder {
			matched++
		}
	}

	entry.OTsMatched = matched
	entry.Error = strings.Join(errs, "; ")

	switch {
	case len(entry.InvoicesCreated) > 0 && len(errs) == 0:
		entry.Status = StatusSuccess
	case len(entry.InvoicesCreated) > 0:
		entry.Status = StatusPartial
	default:
		entry.Status = StatusFailed
	}

	return matched
}

func (s *Service) ingest(ctx context.Context, messageID string, a mailsource.Attachment) (*invoice.FromFileResult, error) {
	data, err := s.mail.DownloadAttachment(ctx, messageID, a.ID)
	if err != nil {
		return nil, err
	}

	mime := a.ContentType
	if mime == "" || mime == "application/octet-stream" {
		mime = textextract.MimeFor(a.Name)
	}

	file, _, err := s.uploads.Store(ctx, a.Name, mime, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storing attachment: %w", err)
	}

	return s.invoices.CreateFromFile(ctx, invoice.FromFileParams{
		UploadedFileID: file.ID,
		Source:         invoice.SourceEmail,
		AutoParse:      true,
	})
}
