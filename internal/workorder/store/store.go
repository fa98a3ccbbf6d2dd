package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `
	SELECT w.id, w.number, w.client_id, COALESCE(c.original_name, ''), w.provider_id, COALESCE(p.name, ''),
		w.tipo_operacion, w.master_bl, w.house_bls, w.containers, w.etd, w.eta, w.estado,
		w.estado_provision, w.fecha_provision, w.fecha_facturacion, w.provision, w.sources, w.row_hash,
		w.created_at, w.updated_at, w.deleted_at
	FROM work_orders w
	LEFT JOIN client_aliases c ON c.id = w.client_id
	LEFT JOIN providers p ON p.id = w.provider_id`

// scanWorkOrder reads a row in selectColumns order.
func scanWorkOrder(s scanner) (*workorder.WorkOrder, error) {
	var (
		wo                                 workorder.WorkOrder
		tipo, estadoProv                   string
		houseBLs, containers, prov, source []byte
	)

	if err := s.Scan(
		&wo.ID, &wo.Number, &wo.ClientID, &wo.ClientName, &wo.ProviderID, &wo.ProviderName,
		&tipo, &wo.MasterBL, &houseBLs, &containers, &wo.ETD, &wo.ETA, &wo.Estado,
		&estadoProv, &wo.FechaProvision, &wo.FechaFacturacion, &prov, &source, &wo.RowHash,
		&wo.CreatedAt, &wo.UpdatedAt, &wo.DeletedAt,
	); err != nil {
		return nil, err
	}

	wo.TipoOperacion = workorder.TipoOperacion(tipo)
	wo.EstadoProvision = provision.State(estadoProv)

	if err := unmarshalIfSet(houseBLs, &wo.HouseBLs); err != nil {
		return nil, fmt.Errorf("decoding house bls: %w", err)
	}

	if err := unmarshalIfSet(containers, &wo.Containers); err != nil {
		return nil, fmt.Errorf("decoding containers: %w", err)
	}

	if len(prov) > 0 && string(prov) != "null" {
		wo.Provision = &workorder.ProvisionSnapshot{}
		if err := json.Unmarshal(prov, wo.Provision); err != nil {
			return nil, fmt.Errorf("decoding provision: %w", err)
		}
	}

	if err := unmarshalIfSet(source, &wo.Sources); err != nil {
		return nil, fmt.Errorf("decoding sources: %w", err)
	}

	return &wo, nil
}

func unmarshalIfSet(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}

	return json.Unmarshal(b, v)
}

// encode returns the JSONB arguments shared by insert and update.
func encode(wo *workorder.WorkOrder) (houseBLs, containers, prov, sources []byte, err error) {
	list := func(v []string) ([]byte, error) {
		if v == nil {
			v = []string{}
		}

		return json.Marshal(v)
	}

	if houseBLs, err = list(wo.HouseBLs); err != nil {
		return
	}

	if containers, err = list(wo.Containers); err != nil {
		return
	}

	if wo.Provision != nil {
		if prov, err = json.Marshal(wo.Provision); err != nil {
			return
		}
	}

	src := wo.Sources
	if src == nil {
		src = workorder.Sources{}
	}

	sources, err = json.Marshal(src)

	return
}

func (s *Store) Create(ctx context.Context, wo *workorder.WorkOrder) error {
	houseBLs, containers, prov, sources, err := encode(wo)
	if err != nil {
		return fmt.Errorf("encoding work order: %w", err)
	}

	query := `
		INSERT INTO work_orders (
			number, client_id, provider_id, tipo_operacion, master_bl, house_bls, containers,
			etd, eta, estado, estado_provision, fecha_provision, fecha_facturacion,
			provision, sources, row_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		wo.Number, wo.ClientID, wo.ProviderID, wo.TipoOperacion, wo.MasterBL, houseBLs, containers,
		wo.ETD, wo.ETA, wo.Estado, wo.EstadoProvision, wo.FechaProvision, wo.FechaFacturacion,
		prov, sources, wo.RowHash,
	).Scan(&wo.ID, &wo.CreatedAt, &wo.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Validation("number", fmt.Sprintf("work order %s already exists", wo.Number))
	}

	if err != nil {
		return fmt.Errorf("inserting work order: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	return s.get(ctx, id, "")
}

func (s *Store) GetForUpdate(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	return s.get(ctx, id, " FOR UPDATE OF w")
}

func (s *Store) get(ctx context.Context, id uuid.UUID, lock string) (*workorder.WorkOrder, error) {
	query := selectColumns + ` WHERE w.id = $1 AND w.is_deleted = FALSE` + lock

	wo, err := scanWorkOrder(database.Conn(ctx, s.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("work order")
	}

	if err != nil {
		return nil, fmt.Errorf("getting work order: %w", err)
	}

	return wo, nil
}

// GetByNumbers loads every live work order whose number is in numbers,
// keyed by number.
func (s *Store) GetByNumbers(ctx context.Context, numbers []string) (map[string]*workorder.WorkOrder, error) {
	out := make(map[string]*workorder.WorkOrder, len(numbers))
	if len(numbers) == 0 {
		return out, nil
	}

	encoded, err := json.Marshal(numbers)
	if err != nil {
		return nil, fmt.Errorf("encoding numbers: %w", err)
	}

	query := selectColumns + `
		WHERE w.is_deleted = FALSE
		AND w.number IN (SELECT jsonb_array_elements_text($1::jsonb))`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, encoded)
	if err != nil {
		return nil, fmt.Errorf("querying work orders by number: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work order: %w", err)
		}

		out[wo.Number] = wo
	}

	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, wo *workorder.WorkOrder) error {
	houseBLs, containers, prov, sources, err := encode(wo)
	if err != nil {
		return fmt.Errorf("encoding work order: %w", err)
	}

	query := `
		UPDATE work_orders
		SET client_id = $1, provider_id = $2, tipo_operacion = $3, master_bl = $4, house_bls = $5,
			containers = $6, etd = $7, eta = $8, estado = $9, estado_provision = $10,
			fecha_provision = $11, fecha_facturacion = $12, provision = $13, sources = $14,
			row_hash = $15, updated_at = NOW()
		WHERE id = $16 AND is_deleted = FALSE`

	res, err := database.Conn(ctx, s.db).ExecContext(ctx, query,
		wo.ClientID, wo.ProviderID, wo.TipoOperacion, wo.MasterBL, houseBLs,
		containers, wo.ETD, wo.ETA, wo.Estado, wo.EstadoProvision,
		wo.FechaProvision, wo.FechaFacturacion, prov, sources,
		wo.RowHash, wo.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("work order")
	}

	return nil
}

func (s *Store) List(ctx context.Context, filter workorder.ListFilter) ([]*workorder.WorkOrder, error) {
	var (
		conditions = []string{"w.is_deleted = FALSE"}
		args       []any
	)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(w.number ILIKE $%d OR w.master_bl ILIKE $%d OR c.original_name ILIKE $%d OR w.house_bls::text ILIKE $%d OR w.containers::text ILIKE $%d)",
			n, n, n, n, n))
	}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("w.client_id = $%d", len(args)))
	}

	if filter.EstadoProvision != nil {
		args = append(args, *filter.EstadoProvision)
		conditions = append(conditions, fmt.Sprintf("w.estado_provision = $%d", len(args)))
	}

	query := selectColumns + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY w.number DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return s.queryMany(ctx, query, args...)
}

// FindBy looks work orders up by a shipment reference. List columns are
// JSONB arrays, so membership uses the ? operator backed by the GIN index.
func (s *Store) FindBy(ctx context.Context, key workorder.MatchKey, value string) ([]*workorder.WorkOrder, error) {
	var cond string

	switch key {
	case workorder.MatchNumber:
		cond = "w.number = $1"
	case workorder.MatchMasterBL:
		cond = "w.master_bl = $1"
	case workorder.MatchHouseBL:
		cond = "w.house_bls ? $1"
	case workorder.MatchContainer:
		cond = "w.containers ? $1"
	default:
		return nil, fmt.Errorf("unknown match key %q", key)
	}

	query := selectColumns + " WHERE w.is_deleted = FALSE AND " + cond + " ORDER BY w.number"

	return s.queryMany(ctx, query, value)
}

func (s *Store) queryMany(ctx context.Context, query string, args ...any) ([]*workorder.WorkOrder, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying work orders: %w", err)
	}
	defer rows.Close()

	var out []*workorder.WorkOrder

	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work order: %w", err)
		}

		out = append(out, wo)
	}

	return out, rows.Err()
}

func (s *Store) CountLiveInvoices(ctx context.Context, id uuid.UUID) (int, error) {
	var n int

	query := `SELECT COUNT(*) FROM invoices WHERE work_order_id = $1 AND is_deleted = FALSE`
	if err := database.Conn(ctx, s.db).QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting work order invoices: %w", err)
	}

	return n, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE work_orders SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`

	res, err := database.Conn(ctx, s.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting work order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("work order")
	}

	return nil
}
