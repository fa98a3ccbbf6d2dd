package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/client"
	"github.com/MrJamesThe3rd/forwarder/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const aliasColumns = `SELECT id, original_name, normalized_name, country, usage_count, merged_into, created_at, updated_at FROM client_aliases`

func scanAlias(s scanner) (*client.Alias, error) {
	var a client.Alias
	if err := s.Scan(&a.ID, &a.OriginalName, &a.NormalizedName, &a.Country, &a.UsageCount,
		&a.MergedInto, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}

// LockName serializes alias creation for one normalized name within the
// caller's transaction.
func (s *Store) LockName(ctx context.Context, normalized string) error {
	return database.XactLock(ctx, s.db, "client-alias:"+normalized)
}

func (s *Store) FindResolution(ctx context.Context, originalName string) (*uuid.UUID, error) {
	var id uuid.UUID

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT resolved_to FROM client_resolutions
		WHERE original_name = $1
		ORDER BY created_at DESC
		LIMIT 1`, originalName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying client resolution: %w", err)
	}

	return &id, nil
}

func (s *Store) FindActiveByNormalized(ctx context.Context, normalized string) (*client.Alias, error) {
	a, err := scanAlias(database.Conn(ctx, s.db).QueryRowContext(ctx, aliasColumns+`
		WHERE normalized_name = $1 AND is_deleted = FALSE AND merged_into IS NULL
		ORDER BY usage_count DESC, created_at ASC
		LIMIT 1`, normalized))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying client alias: %w", err)
	}

	return a, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*client.Alias, error) {
	return s.get(ctx, id, "")
}

func (s *Store) GetForUpdate(ctx context.Context, id uuid.UUID) (*client.Alias, error) {
	return s.get(ctx, id, " FOR UPDATE")
}

func (s *Store) get(ctx context.Context, id uuid.UUID, lock string) (*client.Alias, error) {
	a, err := scanAlias(database.Conn(ctx, s.db).QueryRowContext(ctx,
		aliasColumns+` WHERE id = $1 AND is_deleted = FALSE`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("client alias")
	}

	if err != nil {
		return nil, fmt.Errorf("getting client alias: %w", err)
	}

	return a, nil
}

func (s *Store) Create(ctx context.Context, a *client.Alias) error {
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO client_aliases (original_name, normalized_name, country, usage_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		a.OriginalName, a.NormalizedName, a.Country, a.UsageCount,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting client alias: %w", err)
	}

	return nil
}

func (s *Store) AddUsage(ctx context.Context, id uuid.UUID, delta int) error {
	if _, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE client_aliases SET usage_count = usage_count + $1, updated_at = NOW() WHERE id = $2`, delta, id,
	); err != nil {
		return fmt.Errorf("updating client usage: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context, filter client.ListFilter) ([]*client.Alias, error) {
	query := aliasColumns + ` WHERE is_deleted = FALSE`
	args := []any{}

	if !filter.IncludeMerged {
		query += ` AND merged_into IS NULL`
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (original_name ILIKE $1 OR normalized_name ILIKE $1)`
	}

	return s.queryAliases(ctx, query+` ORDER BY normalized_name`, args...)
}

func (s *Store) ListActive(ctx context.Context) ([]*client.Alias, error) {
	return s.queryAliases(ctx, aliasColumns+` WHERE is_deleted = FALSE AND merged_into IS NULL ORDER BY normalized_name`)
}

func (s *Store) queryAliases(ctx context.Context, query string, args ...any) ([]*client.Alias, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing client aliases: %w", err)
	}
	defer rows.Close()

	var out []*client.Alias

	for rows.Next() {
		a, err := scanAlias(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client alias: %w", err)
		}

		out = append(out, a)
	}

	return out, rows.Err()
}

func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE client_aliases SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("deleting client alias: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("client alias")
	}

	return nil
}

func (s *Store) SetMergedInto(ctx context.Context, src, dst uuid.UUID) error {
	return s.exec(ctx, "marking alias merged",
		`UPDATE client_aliases SET merged_into = $1, updated_at = NOW() WHERE id = $2`, dst, src)
}

// RepointMerged keeps merge chains one level deep.
func (s *Store) RepointMerged(ctx context.Context, from, to uuid.UUID) (int, error) {
	return s.execCount(ctx, "repointing merged aliases",
		`UPDATE client_aliases SET merged_into = $1, updated_at = NOW() WHERE merged_into = $2`, to, from)
}

func (s *Store) RewriteReferences(ctx context.Context, from, to uuid.UUID) (int, error) {
	return s.execCount(ctx, "rewriting client references",
		`UPDATE work_orders SET client_id = $1, updated_at = NOW() WHERE client_id = $2`, to, from)
}

// RepointResolutions moves every resolution of from onto to, dropping those
// that would duplicate an existing (original_name, to) row.
func (s *Store) RepointResolutions(ctx context.Context, from, to uuid.UUID) error {
	if err := s.exec(ctx, "dropping duplicate resolutions", `
		DELETE FROM client_resolutions r
		WHERE r.resolved_to = $1
		AND EXISTS (
			SELECT 1 FROM client_resolutions x
			WHERE x.original_name = r.original_name AND x.resolved_to = $2
		)`, from, to); err != nil {
		return err
	}

	return s.exec(ctx, "repointing resolutions",
		`UPDATE client_resolutions SET resolved_to = $1 WHERE resolved_to = $2`, to, from)
}

func (s *Store) InsertResolution(ctx context.Context, r client.Resolution) error {
	return s.exec(ctx, "inserting client resolution", `
		INSERT INTO client_resolutions (original_name, normalized_name, resolved_to, resolution_kind)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (original_name, resolved_to) DO NOTHING`,
		r.OriginalName, r.NormalizedName, r.ResolvedTo, r.Kind)
}

const matchColumns = `
	SELECT m.id, m.alias_a, m.alias_b, a.original_name, b.original_name, m.score, m.status, m.notes,
		m.reviewed_at, m.created_at
	FROM similarity_matches m
	JOIN client_aliases a ON a.id = m.alias_a
	JOIN client_aliases b ON b.id = m.alias_b`

func scanMatch(s scanner) (*client.Match, error) {
	var (
		m      client.Match
		status string
	)

	if err := s.Scan(&m.ID, &m.AliasA, &m.AliasB, &m.NameA, &m.NameB, &m.Score, &status, &m.Notes,
		&m.ReviewedAt, &m.CreatedAt); err != nil {
		return nil, err
	}

	m.Status = client.MatchStatus(status)

	return &m, nil
}

// InsertMatch records a candidate pair. It reports false when the pair was
// already known.
func (s *Store) InsertMatch(ctx context.Context, a, b uuid.UUID, score int) (bool, error) {
	n, err := s.execCount(ctx, "inserting similarity match", `
		INSERT INTO similarity_matches (alias_a, alias_b, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (alias_a, alias_b) DO NOTHING`, a, b, score)

	return n > 0, err
}

func (s *Store) GetMatch(ctx context.Context, id uuid.UUID) (*client.Match, error) {
	m, err := scanMatch(database.Conn(ctx, s.db).QueryRowContext(ctx, matchColumns+` WHERE m.id = $1 FOR UPDATE OF m`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("similarity match")
	}

	if err != nil {
		return nil, fmt.Errorf("getting similarity match: %w", err)
	}

	return m, nil
}

func (s *Store) ListMatches(ctx context.Context, status client.MatchStatus) ([]*client.Match, error) {
	query := matchColumns
	args := []any{}

	if status != "" {
		query += ` WHERE m.status = $1`
		args = append(args, status)
	}

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query+` ORDER BY m.score DESC, m.created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing similarity matches: %w", err)
	}
	defer rows.Close()

	var out []*client.Match

	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning similarity match: %w", err)
		}

		out = append(out, m)
	}

	return out, rows.Err()
}

func (s *Store) SetMatchStatus(ctx context.Context, id uuid.UUID, status client.MatchStatus, notes string) error {
	return s.exec(ctx, "updating similarity match", `
		UPDATE similarity_matches
		SET status = $1, notes = $2, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $3`, status, notes, id)
}

func (s *Store) RejectPendingMatchesFor(ctx context.Context, aliasID uuid.UUID, notes string) (int, error) {
	return s.execCount(ctx, "rejecting similarity matches", `
		UPDATE similarity_matches
		SET status = 'rejected', notes = $1, reviewed_at = NOW(), updated_at = NOW()
		WHERE status = 'pending' AND (alias_a = $2 OR alias_b = $2)`, notes, aliasID)
}

func (s *Store) RejectObsoleteMatches(ctx context.Context, notes string) (int, error) {
	return s.execCount(ctx, "rejecting obsolete matches", `
		UPDATE similarity_matches m
		SET status = 'rejected', notes = $1, reviewed_at = NOW(), updated_at = NOW()
		FROM client_aliases a, client_aliases b
		WHERE m.status = 'pending' AND a.id = m.alias_a AND b.id = m.alias_b
		AND (a.is_deleted OR b.is_deleted OR a.merged_into IS NOT NULL OR b.merged_into IS NOT NULL)`, notes)
}

// RecalculateUsageCounts resets each alias to the number of live work
// orders that reference it.
func (s *Store) RecalculateUsageCounts(ctx context.Context) (int, error) {
	return s.execCount(ctx, "recalculating client usage", `
		UPDATE client_aliases a
		SET usage_count = sub.n, updated_at = NOW()
		FROM (
			SELECT ca.id, COUNT(w.id) AS n
			FROM client_aliases ca
			LEFT JOIN work_orders w ON w.client_id = ca.id AND w.is_deleted = FALSE
			GROUP BY ca.id
		) sub
		WHERE a.id = sub.id AND a.usage_count <> sub.n`)
}

func (s *Store) exec(ctx context.Context, action, query string, args ...any) error {
	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	return nil
}

func (s *Store) execCount(ctx context.Context, action, query string, args ...any) (int, error) {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", action, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", action, err)
	}

	return int(n), nil
}
