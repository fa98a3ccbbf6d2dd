// Package maintenance exposes the operator procedures that repair or
// re-derive state in bulk. Each one is safe to run repeatedly.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/forwarder/internal/email"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

//go:generate mockgen -source=maintenance.go -destination=maintenance_mock.go -package=maintenance
type Mailbox interface {
	RunOnce(ctx context.Context, force bool) (*email.RunReport, error)
	TestConnection(ctx context.Context) error
}

type Linkage interface {
	SyncAll(ctx context.Context) (provision.SyncReport, error)
}

type Clients interface {
	DetectSimilar(ctx context.Context) (int, error)
	CleanObsoleteMatches(ctx context.Context) (int, error)
	RecalculateUsageCounts(ctx context.Context) (int, error)
}

type CostTypes interface {
	NormalizeCodes(ctx context.Context) (int, []string, error)
}

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	mailbox   Mailbox
	linkage   Linkage
	clients   Clients
	costTypes CostTypes
	tx        TxRunner
	logger    *slog.Logger
}

func NewService(mailbox Mailbox, linkage Linkage, clients Clients, costTypes CostTypes, tx TxRunner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		mailbox: mailbox, linkage: linkage, clients: clients,
		costTypes: costTypes, tx: tx, logger: logger,
	}
}

// ProcessEmailsNow forces one mailbox pass regardless of the schedule or
// the active flag.
func (s *Service) ProcessEmailsNow(ctx context.Context) (*email.RunReport, error) {
	return s.mailbox.RunOnce(ctx, true)
}

// TestMailConnection only acquires a token.
func (s *Service) TestMailConnection(ctx context.Context) error {
	if err := s.mailbox.TestConnection(ctx); err != nil {
		return fmt.Errorf("testing mail source: %w", err)
	}

	return nil
}

func (s *Service) SyncLinkedInvoices(ctx context.Context) (provision.SyncReport, error) {
	var report provision.SyncReport

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.linkage.SyncAll(ctx)

		return err
	})
	if err != nil {
		return provision.SyncReport{}, fmt.Errorf("syncing linked invoices: %w", err)
	}

	s.logger.Info("linked invoices synced", "work_orders", report.WorkOrders, "invoices", report.Invoices)

	return report, nil
}

func (s *Service) RecalculateClientUsage(ctx context.Context) (int, error) {
	n, err := s.clients.RecalculateUsageCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("recalculating client usage: %w", err)
	}

	s.logger.Info("client usage recalculated", "aliases", n)

	return n, nil
}

func (s *Service) DetectSimilarClients(ctx context.Context) (int, error) {
	n, err := s.clients.DetectSimilar(ctx)
	if err != nil {
		return n, fmt.Errorf("detecting similar clients: %w", err)
	}

	s.logger.Info("similar clients detected", "new_matches", n)

	return n, nil
}

func (s *Service) CleanSimilarityMatches(ctx context.Context) (int, error) {
	n, err := s.clients.CleanObsoleteMatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleaning similarity matches: %w", err)
	}

	s.logger.Info("obsolete similarity matches rejected", "matches", n)

	return n, nil
}

type NormalizeReport struct {
	Changed int      `json:"changed"`
	Skipped []string `json:"skipped"`
}

func (s *Service) NormalizeCostTypeCodes(ctx context.Context) (NormalizeReport, error) {
	var report NormalizeReport

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		report.Changed, report.Skipped, err = s.costTypes.NormalizeCodes(ctx)

		return err
	})
	if err != nil {
		return NormalizeReport{}, fmt.Errorf("normalizing cost type codes: %w", err)
	}

	if len(report.Skipped) > 0 {
		s.logger.Warn("cost type codes left untouched", "codes", report.Skipped)
	}

	return report, nil
}
