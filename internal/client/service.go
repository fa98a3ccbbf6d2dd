package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	LockName(ctx context.Context, normalized string) error
	FindResolution(ctx context.Context, originalName string) (*uuid.UUID, error)
	FindActiveByNormalized(ctx context.Context, normalized string) (*Alias, error)
	Get(ctx context.Context, id uuid.UUID) (*Alias, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Alias, error)
	Create(ctx context.Context, a *Alias) error
	AddUsage(ctx context.Context, id uuid.UUID, delta int) error
	List(ctx context.Context, filter ListFilter) ([]*Alias, error)
	ListActive(ctx context.Context) ([]*Alias, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	SetMergedInto(ctx context.Context, src, dst uuid.UUID) error
	RepointMerged(ctx context.Context, from, to uuid.UUID) (int, error)
	RewriteReferences(ctx context.Context, from, to uuid.UUID) (int, error)
	RepointResolutions(ctx context.Context, from, to uuid.UUID) error
	InsertResolution(ctx context.Context, r Resolution) error

	InsertMatch(ctx context.Context, a, b uuid.UUID, score int) (bool, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*Match, error)
	ListMatches(ctx context.Context, status MatchStatus) ([]*Match, error)
	SetMatchStatus(ctx context.Context, id uuid.UUID, status MatchStatus, notes string) error
	RejectPendingMatchesFor(ctx context.Context, aliasID uuid.UUID, notes string) (int, error)
	RejectObsoleteMatches(ctx context.Context, notes string) (int, error)
	RecalculateUsageCounts(ctx context.Context) (int, error)
}

type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ListFilter struct {
	Search        string
	IncludeMerged bool
}

// maxChain bounds merged_into walks so a corrupt cycle cannot spin forever.
const maxChain = 32

type Service struct {
	repo      Repository
	tx        TxRunner
	cache     *expirable.LRU[string, Alias]
	threshold int
	logger    *slog.Logger
}

type Options struct {
	// Threshold is the minimum token-set ratio recorded as a candidate match.
	Threshold int
	CacheSize int
	CacheTTL  time.Duration
}

func NewService(repo Repository, tx TxRunner, logger *slog.Logger, opts Options) *Service {
	if opts.Threshold <= 0 {
		opts.Threshold = 85
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	return &Service{
		repo:      repo,
		tx:        tx,
		cache:     expirable.NewLRU[string, Alias](opts.CacheSize, nil, opts.CacheTTL),
		threshold: opts.Threshold,
		logger:    logger,
	}
}

// Lookup resolves name without creating anything. It returns nil when no
// resolution or active alias matches.
func (s *Service) Lookup(ctx context.Context, name string) (*Alias, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if a, ok := s.cache.Get(name); ok {
		return &a, nil
	}

	a, err := s.lookup(ctx, name)
	if err != nil || a == nil {
		return a, err
	}

	s.cache.Add(name, *a)

	return a, nil
}

func (s *Service) lookup(ctx context.Context, name string) (*Alias, error) {
	resolved, err := s.repo.FindResolution(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding resolution: %w", err)
	}

	if resolved != nil {
		a, err := s.root(ctx, *resolved)
		if !errors.Is(err, apperr.ErrNotFound) {
			return a, err
		}
		// The remembered alias was deleted; fall back to the name.
	}

	return s.repo.FindActiveByNormalized(ctx, textnorm.Name(name))
}

// Resolve maps a free-text client name to its canonical alias, creating one
// when nothing matches, and counts one more use of it.
func (s *Service) Resolve(ctx context.Context, name, country string) (*Alias, error) {
	name = strings.TrimSpace(name)
	normalized := textnorm.Name(name)

	if normalized == "" {
		return nil, apperr.Validation("client", "is required")
	}

	var out *Alias

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockName(ctx, normalized); err != nil {
			return err
		}

		a, err := s.lookup(ctx, name)
		if err != nil {
			return err
		}

		if a == nil {
			a = &Alias{
				OriginalName:   name,
				NormalizedName: normalized,
				Country:        strings.ToUpper(strings.TrimSpace(country)),
				UsageCount:     1,
			}

			if err := s.repo.Create(ctx, a); err != nil {
				return err
			}

			out = a

			return nil
		}

		if err := s.repo.AddUsage(ctx, a.ID, 1); err != nil {
			return err
		}

		a.UsageCount++
		out = a

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// root follows merged_into to the alias that absorbed id.
func (s *Service) root(ctx context.Context, id uuid.UUID) (*Alias, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for range maxChain {
		if a.MergedInto == nil {
			return a, nil
		}

		if a, err = s.repo.Get(ctx, *a.MergedInto); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("alias %s: merge chain longer than %d", id, maxChain)
}

// Canonical returns the id of the alias that absorbed id, or id itself when
// it was never merged.
func (s *Service) Canonical(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	a, err := s.root(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	return a.ID, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Alias, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Alias, error) {
	return s.repo.List(ctx, filter)
}

// Merge folds src into dst. Both sides are first walked to their roots, so
// merging an already merged pair is a no-op. Everything that pointed at src
// (work orders, merged aliases, resolutions) is rewritten to dst.
func (s *Service) Merge(ctx context.Context, srcID, dstID uuid.UUID) (*Alias, error) {
	if srcID == dstID {
		return nil, apperr.Validation("dst", "cannot merge an alias into itself")
	}

	var out *Alias

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		src, err := s.root(ctx, srcID)
		if err != nil {
			return err
		}

		dst, err := s.root(ctx, dstID)
		if err != nil {
			return err
		}

		if src.ID == dst.ID {
			out = dst
			return nil
		}

		if src, err = s.repo.GetForUpdate(ctx, src.ID); err != nil {
			return err
		}

		if dst, err = s.repo.GetForUpdate(ctx, dst.ID); err != nil {
			return err
		}

		if err := s.repo.SetMergedInto(ctx, src.ID, dst.ID); err != nil {
			return err
		}

		if err := s.repo.AddUsage(ctx, dst.ID, src.UsageCount); err != nil {
			return err
		}

		refs, err := s.repo.RewriteReferences(ctx, src.ID, dst.ID)
		if err != nil {
			return err
		}

		if _, err := s.repo.RepointMerged(ctx, src.ID, dst.ID); err != nil {
			return err
		}

		if err := s.repo.RepointResolutions(ctx, src.ID, dst.ID); err != nil {
			return err
		}

		if err := s.repo.InsertResolution(ctx, Resolution{
			OriginalName:   src.OriginalName,
			NormalizedName: src.NormalizedName,
			ResolvedTo:     dst.ID,
			Kind:           ResolutionMerge,
		}); err != nil {
			return err
		}

		if _, err := s.repo.RejectPendingMatchesFor(ctx, src.ID, "alias merged into "+dst.OriginalName); err != nil {
			return err
		}

		dst.UsageCount += src.UsageCount
		out = dst

		s.logger.Info("merged client alias", "src", src.OriginalName, "dst", dst.OriginalName, "references", refs)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Purge()

	return out, nil
}

// Remember records a manual resolution of name to an alias.
func (s *Service) Remember(ctx context.Context, name string, aliasID uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("name", "is required")
	}

	a, err := s.root(ctx, aliasID)
	if err != nil {
		return err
	}

	if err := s.repo.InsertResolution(ctx, Resolution{
		OriginalName:   name,
		NormalizedName: textnorm.Name(name),
		ResolvedTo:     a.ID,
		Kind:           ResolutionManual,
	}); err != nil {
		return err
	}

	s.cache.Remove(name)

	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SoftDelete(ctx, id); err != nil {
			return err
		}

		_, err := s.repo.RejectPendingMatchesFor(ctx, id, "alias deleted")

		return err
	})
	if err != nil {
		return err
	}

	s.cache.Purge()

	return nil
}

// DetectSimilar scores every pair of active aliases sharing a country (or
// both countryless) and records pairs at or above the threshold as pending
// matches. Pairs already recorded, in any status, are left alone.
func (s *Service) DetectSimilar(ctx context.Context) (int, error) {
	aliases, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	byCountry := map[string][]*Alias{}
	for _, a := range aliases {
		byCountry[a.Country] = append(byCountry[a.Country], a)
	}

	created := 0

	for _, group := range byCountry {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]

				score := TokenSetRatio(a.NormalizedName, b.NormalizedName)
				if score < s.threshold {
					continue
				}

				first, second := a.ID, b.ID
				if second.String() < first.String() {
					first, second = second, first
				}

				ok, err := s.repo.InsertMatch(ctx, first, second, score)
				if err != nil {
					return created, err
				}

				if ok {
					created++
				}
			}
		}
	}

	return created, nil
}

// CleanObsoleteMatches rejects pending matches whose sides were merged or
// deleted since the sweep found them.
func (s *Service) CleanObsoleteMatches(ctx context.Context) (int, error) {
	return s.repo.RejectObsoleteMatches(ctx, "obsolete: alias merged or deleted")
}

func (s *Service) RecalculateUsageCounts(ctx context.Context) (int, error) {
	return s.repo.RecalculateUsageCounts(ctx)
}

func (s *Service) ListMatches(ctx context.Context, status MatchStatus) ([]*Match, error) {
	return s.repo.ListMatches(ctx, status)
}

// AcceptMatch merges the side of the pair that is not keep into keep.
func (s *Service) AcceptMatch(ctx context.Context, matchID, keep uuid.UUID) (*Alias, error) {
	var out *Alias

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}

		if m.Status != MatchPending {
			return apperr.Validation("status", "match already reviewed")
		}

		var src uuid.UUID

		switch keep {
		case m.AliasA:
			src = m.AliasB
		case m.AliasB:
			src = m.AliasA
		default:
			return apperr.Validation("keep", "must be one side of the match")
		}

		if err := s.repo.SetMatchStatus(ctx, m.ID, MatchAccepted, ""); err != nil {
			return err
		}

		out, err = s.Merge(ctx, src, keep)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Service) RejectMatch(ctx context.Context, matchID uuid.UUID, notes string) error {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	if m.Status != MatchPending {
		return apperr.Validation("status", "match already reviewed")
	}

	return s.repo.SetMatchStatus(ctx, m.ID, MatchRejected, notes)
}
