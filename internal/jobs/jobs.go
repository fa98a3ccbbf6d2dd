// Package jobs binds background work to task names and periodic schedules.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/forwarder/internal/email"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/tasks"
)

const (
	TaskProcessEmails          = "process_emails"
	TaskRefreshDueAlerts       = "refresh_due_alerts"
	TaskSyncLinkedInvoices     = "sync_linked_invoices"
	TaskDetectSimilarClients   = "detect_similar_clients"
	TaskCleanSimilarityMatches = "clean_similarity_matches"
	TaskRecalculateClientUsage = "recalculate_client_usage"
	TaskExpireImportBatches    = "expire_import_batches"
)

//go:generate mockgen -source=jobs.go -destination=jobs_mock.go -package=jobs
type Mailbox interface {
	GetConfig(ctx context.Context) (*email.Config, error)
	RunOnce(ctx context.Context, force bool) (*email.RunReport, error)
}

type DueAlerts interface {
	RefreshDueAlerts(ctx context.Context) (invoice.DueReport, error)
}

type Maintenance interface {
	SyncLinkedInvoices(ctx context.Context) (provision.SyncReport, error)
	DetectSimilarClients(ctx context.Context) (int, error)
	CleanSimilarityMatches(ctx context.Context) (int, error)
	RecalculateClientUsage(ctx context.Context) (int, error)
}

type Batches interface {
	ExpireBatches(ctx context.Context) (int, error)
}

type Registrar interface {
	Register(name string, h tasks.Handler)
}

type Scheduler interface {
	Schedule(name, spec string, args any, opts tasks.Options) error
}

// EmailArgs are the process_emails task arguments.
type EmailArgs struct {
	Force bool `json:"force"`
}

type Jobs struct {
	mailbox     Mailbox
	due         DueAlerts
	maintenance Maintenance
	batches     Batches
	now         func() time.Time
	logger      *slog.Logger
}

func New(mailbox Mailbox, due DueAlerts, maintenance Maintenance, batches Batches, logger *slog.Logger) *Jobs {
	if logger == nil {
		logger = slog.Default()
	}

	return &Jobs{
		mailbox: mailbox, due: due, maintenance: maintenance, batches: batches,
		now: time.Now, logger: logger,
	}
}

func (j *Jobs) Register(r Registrar) {
	r.Register(TaskProcessEmails, j.ProcessEmails)
	r.Register(TaskRefreshDueAlerts, j.RefreshDueAlerts)
	r.Register(TaskSyncLinkedInvoices, func(ctx context.Context, _ *tasks.Task) error {
		_, err := j.maintenance.SyncLinkedInvoices(ctx)
		return err
	})
	r.Register(TaskDetectSimilarClients, func(ctx context.Context, _ *tasks.Task) error {
		_, err := j.maintenance.DetectSimilarClients(ctx)
		return err
	})
	r.Register(TaskCleanSimilarityMatches, func(ctx context.Context, _ *tasks.Task) error {
		_, err := j.maintenance.CleanSimilarityMatches(ctx)
		return err
	})
	r.Register(TaskRecalculateClientUsage, func(ctx context.Context, _ *tasks.Task) error {
		_, err := j.maintenance.RecalculateClientUsage(ctx)
		return err
	})
	r.Register(TaskExpireImportBatches, func(ctx context.Context, _ *tasks.Task) error {
		n, err := j.batches.ExpireBatches(ctx)
		if n > 0 {
			j.logger.Info("expired pending import batches", "batches", n)
		}

		return err
	})
}

// schedule is the periodic plan. Mailbox polling ticks every minute and
// the handler honours the configured interval.
var schedule = []struct {
	task string
	spec string
	opts tasks.Options
}{
	{TaskProcessEmails, "@every 1m", tasks.Options{Expires: time.Minute, MaxRetries: new(0)}},
	{TaskRefreshDueAlerts, "0 6 * * *", tasks.Options{Expires: time.Hour}},
	{TaskSyncLinkedInvoices, "30 2 * * *", tasks.Options{Expires: time.Hour}},
	{TaskDetectSimilarClients, "0 3 * * *", tasks.Options{Expires: time.Hour}},
	{TaskCleanSimilarityMatches, "30 3 * * *", tasks.Options{Expires: time.Hour}},
	{TaskRecalculateClientUsage, "0 4 * * 0", tasks.Options{Expires: time.Hour}},
	{TaskExpireImportBatches, "@hourly", tasks.Options{Expires: 30 * time.Minute}},
}

func Schedule(s Scheduler) error {
	for _, e := range schedule {
		if err := s.Schedule(e.task, e.spec, nil, e.opts); err != nil {
			return err
		}
	}

	return nil
}

// ProcessEmails polls the mailbox when the configured interval has
// elapsed, or unconditionally when forced.
func (j *Jobs) ProcessEmails(ctx context.Context, t *tasks.Task) error {
	var args EmailArgs
	if err := t.Decode(&args); err != nil {
		return err
	}

	if !args.Force {
		cfg, err := j.mailbox.GetConfig(ctx)
		if err != nil {
			return err
		}

		if !cfg.Due(j.now()) {
			return nil
		}
	}

	report, err := j.mailbox.RunOnce(ctx, args.Force)
	if err != nil {
		return err
	}

	if !report.Ran {
		j.logger.Debug("mailbox run skipped", "reason", report.Reason)
	}

	return nil
}

func (j *Jobs) RefreshDueAlerts(ctx context.Context, _ *tasks.Task) error {
	report, err := j.due.RefreshDueAlerts(ctx)
	if err != nil {
		return err
	}

	j.logger.Info("due alerts refreshed",
		"checked", report.Checked, "flagged", report.Flagged,
		"cleared", report.Cleared, "overdue", report.Overdue)

	return nil
}
