package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/client"
	"github.com/MrJamesThe3rd/forwarder/internal/importer/sheet"
	"github.com/MrJamesThe3rd/forwarder/internal/metrics"
	"github.com/MrJamesThe3rd/forwarder/internal/provider"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=importer
type Repository interface {
	ProcessedFileExists(ctx context.Context, hash string) (bool, error)
	// CreateProcessedFile fails with ErrAlreadyProcessed when the hash is
	// already recorded.
	CreateProcessedFile(ctx context.Context, f *ProcessedFile) error
	ListProcessedFiles(ctx context.Context, limit, offset int) ([]*ProcessedFile, error)

	CreateBatch(ctx context.Context, b *Batch) error
	// GetBatch hides expired batches.
	GetBatch(ctx context.Context, id uuid.UUID, now time.Time) (*Batch, error)
	DeleteBatch(ctx context.Context, id uuid.UUID) error
	DeleteExpiredBatches(ctx context.Context, now time.Time) (int, error)
}

type WorkOrders interface {
	GetByNumbers(ctx context.Context, numbers []string) (map[string]*workorder.WorkOrder, error)
	Create(ctx context.Context, wo *workorder.WorkOrder) error
	Update(ctx context.Context, wo *workorder.WorkOrder) error
}

type Clients interface {
	Lookup(ctx context.Context, name string) (*client.Alias, error)
	Resolve(ctx context.Context, name, country string) (*client.Alias, error)
}

type Providers interface {
	FindByName(ctx context.Context, name string) (*provider.Provider, error)
}

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Options struct {
	// Year returns the two-digit operational year OT numbers must carry.
	Year     func(now time.Time) int
	BatchTTL time.Duration
	Now      func() time.Time
}

type Service struct {
	repo       Repository
	workOrders WorkOrders
	clients    Clients
	providers  Providers
	tx         TxRunner
	opts       Options
	logger     *slog.Logger
}

func NewService(repo Repository, workOrders WorkOrders, clients Clients, providers Providers, tx TxRunner, opts Options, logger *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Year == nil {
		opts.Year = func(now time.Time) int { return now.Year() % 100 }
	}

	if opts.BatchTTL <= 0 {
		opts.BatchTTL = 24 * time.Hour
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo: repo, workOrders: workOrders, clients: clients, providers: providers,
		tx: tx, opts: opts, logger: logger,
	}
}

type ImportParams struct {
	Filename      string
	Data          []byte
	OperationType string
	ProcessedBy   string
}

// Import runs the load phase. Without conflicts the rows are committed
// right away; otherwise nothing is written and the result carries a
// pending batch id to resolve.
func (s *Service) Import(ctx context.Context, params ImportParams) (*Result, error) {
	sum := sha256.Sum256(params.Data)
	result := &Result{FileHash: hex.EncodeToString(sum[:]), Filename: params.Filename}

	exists, err := s.repo.ProcessedFileExists(ctx, result.FileHash)
	if err != nil {
		return nil, fmt.Errorf("checking processed files: %w", err)
	}

	if exists {
		s.fileSkipped(result)
		return result, nil
	}

	table, err := sheet.Parse(params.Filename, params.Data)
	if err != nil {
		return nil, apperr.Validation("file", err.Error())
	}

	payload := BatchPayload{Format: table.Format}
	payload.Records, payload.Skipped, payload.Warnings = s.records(table)

	result.Skipped = payload.Skipped
	result.Warnings = payload.Warnings

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		plans, err := s.planAll(ctx, payload.Format, payload.Records, result)
		if err != nil {
			return err
		}

		for _, rp := range plans {
			for _, c := range rp.conflicts {
				payload.Conflicts = append(payload.Conflicts, c.descriptor(rp.rec.Number))
			}
		}

		if len(payload.Conflicts) > 0 {
			return s.park(ctx, params, payload, result)
		}

		if err := s.commit(ctx, plans, sourceFor(payload.Format), nil, result); err != nil {
			return err
		}

		return s.remember(ctx, params.Filename, params.OperationType, params.ProcessedBy, result)
	})
	if errors.Is(err, ErrAlreadyProcessed) {
		lost := &Result{FileHash: result.FileHash, Filename: result.Filename}
		s.fileSkipped(lost)

		return lost, nil
	}

	if err != nil {
		return nil, err
	}

	s.finish(result)

	return result, nil
}

func (s *Service) fileSkipped(r *Result) {
	r.FileSkipped = true
	r.Skipped = 1
	r.warn(0, "", "file already processed")

	s.logger.Warn("spreadsheet already processed", "filename", r.Filename, "file_hash", r.FileHash)
}

func (s *Service) finish(r *Result) {
	if r.Pending() {
		s.logger.Info("spreadsheet import waiting for resolutions",
			"filename", r.Filename, "batch_id", r.BatchID, "conflicts", len(r.Conflicts))

		return
	}

	metrics.RecordImportRows(r.Created, r.Updated, r.Skipped)
	s.logger.Info("spreadsheet imported",
		"filename", r.Filename, "created", r.Created, "updated", r.Updated, "skipped", r.Skipped)
}

// records parses every row, keeping the last row of any repeated OT.
func (s *Service) records(table *sheet.Table) ([]Record, int, []Warning) {
	var (
		recs     []Record
		skipped  int
		warnings []Warning
		position = map[string]int{}
		year     = s.opts.Year(s.opts.Now())
	)

	for _, row := range table.Rows {
		rec, skip, warns := parseRow(row, year)
		if skip != "" {
			skipped++
			warnings = append(warnings, Warning{Line: row.Line, OT: rec.Number, Message: skip})

			continue
		}

		for _, w := range warns {
			warnings = append(warnings, Warning{Line: row.Line, OT: rec.Number, Message: w})
		}

		if i, dup := position[rec.Number]; dup {
			skipped++
			warnings = append(warnings, Warning{
				Line: recs[i].Line, OT: rec.Number,
				Message: fmt.Sprintf("superseded by line %d", row.Line),
			})
			recs[i] = rec

			continue
		}

		position[rec.Number] = len(recs)
		recs = append(recs, rec)
	}

	return recs, skipped, warnings
}

func (s *Service) planAll(ctx context.Context, format sheet.Format, recs []Record, result *Result) ([]rowPlan, error) {
	numbers := make([]string, len(recs))
	for i, r := range recs {
		numbers[i] = r.Number
	}

	existing, err := s.workOrders.GetByNumbers(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("loading work orders: %w", err)
	}

	p := &planner{clients: s.clients, providers: s.providers, source: sourceFor(format)}
	plans := make([]rowPlan, 0, len(recs))

	for _, rec := range recs {
		rp, warns, err := p.plan(ctx, rec, existing[rec.Number])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}

		for _, w := range warns {
			result.warn(rec.Line, rec.Number, w)
		}

		plans = append(plans, rp)
	}

	return plans, nil
}

func sourceFor(f sheet.Format) workorder.FieldSource {
	if f == sheet.FormatExcel {
		return workorder.SourceExcel
	}

	return workorder.SourceCSV
}

func (s *Service) park(ctx context.Context, params ImportParams, payload BatchPayload, result *Result) error {
	b := &Batch{
		FileHash:      result.FileHash,
		Filename:      params.Filename,
		OperationType: params.OperationType,
		ProcessedBy:   params.ProcessedBy,
		Payload:       payload,
		ExpiresAt:     s.opts.Now().Add(s.opts.BatchTTL),
	}

	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return fmt.Errorf("storing pending batch: %w", err)
	}

	result.BatchID = &b.ID
	result.Conflicts = payload.Conflicts

	return nil
}

func resolutionKey(ot string, f workorder.Field) string {
	return ot + "|" + string(f)
}

// commit writes every plan. resolutions, when given, decide conflicts;
// a conflict without one keeps the current value.
func (s *Service) commit(ctx context.Context, plans []rowPlan, src workorder.FieldSource, resolutions map[string]Resolution, result *Result) error {
	for _, rp := range plans {
		if rp.unchanged {
			result.Skipped++
			continue
		}

		wo := rp.existing
		if wo == nil {
			wo = &workorder.WorkOrder{
				Number:          rp.rec.Number,
				TipoOperacion:   workorder.TipoImport,
				Estado:          "abierta",
				EstadoProvision: provision.StatePendiente,
				Sources:         workorder.Sources{},
			}
		}

		applied := 0

		write := func(c change, as workorder.FieldSource) error {
			err := c.apply(ctx, wo, as)
			if errors.Is(err, errProvisionKept) {
				result.warn(rp.rec.Line, rp.rec.Number, "provision snapshot is locked; value kept")
				return nil
			}

			if err != nil {
				return fmt.Errorf("line %d %s: %w", rp.rec.Line, c.field, err)
			}

			wo.SetSource(c.field, as)
			applied++

			return nil
		}

		for _, c := range rp.accepted {
			if err := write(c, src); err != nil {
				return err
			}
		}

		for _, c := range rp.conflicts {
			switch resolutions[resolutionKey(rp.rec.Number, c.field)] {
			case UseNew:
				// An explicit choice outranks every import source.
				if err := write(c.change, workorder.SourceManual); err != nil {
					return err
				}
			case KeepCurrent:
			default:
				result.warn(rp.rec.Line, rp.rec.Number,
					fmt.Sprintf("unresolved conflict on %s; current value kept", c.field))
			}
		}

		if rp.existing == nil {
			wo.RowHash = rp.rec.Hash()
			if err := s.workOrders.Create(ctx, wo); err != nil {
				return fmt.Errorf("line %d: creating work order: %w", rp.rec.Line, err)
			}

			result.Created++

			continue
		}

		if applied == 0 {
			result.Skipped++
			continue
		}

		wo.RowHash = rp.rec.Hash()
		if err := s.workOrders.Update(ctx, wo); err != nil {
			return fmt.Errorf("line %d: updating work order: %w", rp.rec.Line, err)
		}

		result.Updated++
	}

	return nil
}

func (s *Service) remember(ctx context.Context, filename, opType, by string, result *Result) error {
	f := &ProcessedFile{
		FileHash:      result.FileHash,
		Filename:      filename,
		Created:       result.Created,
		Updated:       result.Updated,
		Skipped:       result.Skipped,
		OperationType: opType,
		ProcessedBy:   by,
	}

	if err := s.repo.CreateProcessedFile(ctx, f); err != nil {
		return fmt.Errorf("recording processed file: %w", err)
	}

	return nil
}

// ResolveBatch commits a pending batch with the caller's answers. Plans are
// rebuilt against the current state, so edits made since the upload are
// honoured.
func (s *Service) ResolveBatch(ctx context.Context, id uuid.UUID, inputs []ResolutionInput) (*Result, error) {
	b, err := s.repo.GetBatch(ctx, id, s.opts.Now())
	if err != nil {
		return nil, err
	}

	resolutions, err := validateResolutions(b.Payload.Conflicts, inputs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		FileHash: b.FileHash,
		Filename: b.Filename,
		Skipped:  b.Payload.Skipped,
		Warnings: b.Payload.Warnings,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		plans, err := s.planAll(ctx, b.Payload.Format, b.Payload.Records, result)
		if err != nil {
			return err
		}

		if err := s.commit(ctx, plans, sourceFor(b.Payload.Format), resolutions, result); err != nil {
			return err
		}

		if err := s.remember(ctx, b.Filename, b.OperationType, b.ProcessedBy, result); err != nil {
			return err
		}

		return s.repo.DeleteBatch(ctx, id)
	})
	if errors.Is(err, ErrAlreadyProcessed) {
		if derr := s.repo.DeleteBatch(ctx, id); derr != nil {
			s.logger.Warn("failed to drop stale batch", "batch_id", id, "error", derr)
		}

		lost := &Result{FileHash: b.FileHash, Filename: b.Filename}
		s.fileSkipped(lost)

		return lost, nil
	}

	if err != nil {
		return nil, err
	}

	s.finish(result)

	return result, nil
}

func validateResolutions(conflicts []Conflict, inputs []ResolutionInput) (map[string]Resolution, error) {
	known := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		known[resolutionKey(c.OT, c.Field)] = true
	}

	var fields apperr.Fields

	out := make(map[string]Resolution, len(inputs))

	for i, in := range inputs {
		key := resolutionKey(workorder.NormalizeNumber(in.OT), in.Field)

		switch {
		case !in.Resolution.Valid():
			fields.Add(fmt.Sprintf("resolutions[%d].resolution", i), "must be use_new or keep_current")
		case !known[key]:
			fields.Add(fmt.Sprintf("resolutions[%d]", i), fmt.Sprintf("no conflict on %s for %s", in.Field, in.OT))
		default:
			out[key] = in.Resolution
		}
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// GetBatch returns a pending batch that has not expired.
func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return s.repo.GetBatch(ctx, id, s.opts.Now())
}

func (s *Service) DiscardBatch(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBatch(ctx, id)
}

// ExpireBatches drops batches nobody resolved in time.
func (s *Service) ExpireBatches(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteExpiredBatches(ctx, s.opts.Now())
	if err != nil {
		return 0, fmt.Errorf("expiring import batches: %w", err)
	}

	if n > 0 {
		s.logger.Info("expired pending import batches", "count", n)
	}

	return n, nil
}

func (s *Service) ListProcessedFiles(ctx context.Context, limit, offset int) ([]*ProcessedFile, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return s.repo.ListProcessedFiles(ctx, limit, offset)
}
