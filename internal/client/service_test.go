package client_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/client"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo is an in-memory client repository. workOrders maps a work order
// id to its client alias id.
type fakeRepo struct {
	aliases     map[uuid.UUID]*client.Alias
	deleted     map[uuid.UUID]bool
	resolutions []client.Resolution
	matches     map[uuid.UUID]*client.Match
	workOrders  map[uuid.UUID]uuid.UUID
	lookups     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		aliases:    map[uuid.UUID]*client.Alias{},
		deleted:    map[uuid.UUID]bool{},
		matches:    map[uuid.UUID]*client.Match{},
		workOrders: map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeRepo) add(name, country string, usage int) *client.Alias {
	a := &client.Alias{ID: uuid.New(), OriginalName: name, NormalizedName: name, Country: country, UsageCount: usage}
	f.aliases[a.ID] = a

	return a
}

func (f *fakeRepo) LockName(context.Context, string) error { return nil }

func (f *fakeRepo) FindResolution(_ context.Context, name string) (*uuid.UUID, error) {
	f.lookups++

	for i := len(f.resolutions) - 1; i >= 0; i-- {
		if f.resolutions[i].OriginalName == name {
			id := f.resolutions[i].ResolvedTo
			return &id, nil
		}
	}

	return nil, nil
}

func (f *fakeRepo) FindActiveByNormalized(_ context.Context, normalized string) (*client.Alias, error) {
	for _, a := range f.aliases {
		if a.NormalizedName == normalized && a.MergedInto == nil && !f.deleted[a.ID] {
			cp := *a
			return &cp, nil
		}
	}

	return nil, nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*client.Alias, error) {
	a, ok := f.aliases[id]
	if !ok || f.deleted[id] {
		return nil, apperr.NotFound("client alias")
	}

	cp := *a

	return &cp, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*client.Alias, error) {
	return f.Get(ctx, id)
}

func (f *fakeRepo) Create(_ context.Context, a *client.Alias) error {
	a.ID = uuid.New()
	cp := *a
	f.aliases[a.ID] = &cp

	return nil
}

func (f *fakeRepo) AddUsage(_ context.Context, id uuid.UUID, delta int) error {
	f.aliases[id].UsageCount += delta
	return nil
}

func (f *fakeRepo) List(context.Context, client.ListFilter) ([]*client.Alias, error) {
	return f.ListActive(context.Background())
}

func (f *fakeRepo) ListActive(context.Context) ([]*client.Alias, error) {
	var out []*client.Alias

	for _, a := range f.aliases {
		if a.MergedInto == nil && !f.deleted[a.ID] {
			cp := *a
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].NormalizedName < out[j].NormalizedName })

	return out, nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.deleted[id] = true
	return nil
}

func (f *fakeRepo) SetMergedInto(_ context.Context, src, dst uuid.UUID) error {
	f.aliases[src].MergedInto = &dst
	return nil
}

func (f *fakeRepo) RepointMerged(_ context.Context, from, to uuid.UUID) (int, error) {
	n := 0

	for _, a := range f.aliases {
		if a.MergedInto != nil && *a.MergedInto == from {
			a.MergedInto = &to
			n++
		}
	}

	return n, nil
}

func (f *fakeRepo) RewriteReferences(_ context.Context, from, to uuid.UUID) (int, error) {
	n := 0

	for wo, c := range f.workOrders {
		if c == from {
			f.workOrders[wo] = to
			n++
		}
	}

	return n, nil
}

func (f *fakeRepo) RepointResolutions(_ context.Context, from, to uuid.UUID) error {
	for i := range f.resolutions {
		if f.resolutions[i].ResolvedTo == from {
			f.resolutions[i].ResolvedTo = to
		}
	}

	return nil
}

func (f *fakeRepo) InsertResolution(_ context.Context, r client.Resolution) error {
	for _, x := range f.resolutions {
		if x.OriginalName == r.OriginalName && x.ResolvedTo == r.ResolvedTo {
			return nil
		}
	}

	f.resolutions = append(f.resolutions, r)

	return nil
}

func (f *fakeRepo) InsertMatch(_ context.Context, a, b uuid.UUID, score int) (bool, error) {
	for _, m := range f.matches {
		if m.AliasA == a && m.AliasB == b {
			return false, nil
		}
	}

	m := &client.Match{ID: uuid.New(), AliasA: a, AliasB: b, Score: score, Status: client.MatchPending}
	f.matches[m.ID] = m

	return true, nil
}

func (f *fakeRepo) GetMatch(_ context.Context, id uuid.UUID) (*client.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, apperr.NotFound("similarity match")
	}

	cp := *m

	return &cp, nil
}

func (f *fakeRepo) ListMatches(_ context.Context, status client.MatchStatus) ([]*client.Match, error) {
	var out []*client.Match

	for _, m := range f.matches {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}

	return out, nil
}

func (f *fakeRepo) SetMatchStatus(_ context.Context, id uuid.UUID, status client.MatchStatus, notes string) error {
	f.matches[id].Status = status
	f.matches[id].Notes = notes

	return nil
}

func (f *fakeRepo) RejectPendingMatchesFor(_ context.Context, aliasID uuid.UUID, notes string) (int, error) {
	n := 0

	for _, m := range f.matches {
		if m.Status == client.MatchPending && (m.AliasA == aliasID || m.AliasB == aliasID) {
			m.Status = client.MatchRejected
			m.Notes = notes
			n++
		}
	}

	return n, nil
}

func (f *fakeRepo) RejectObsoleteMatches(_ context.Context, notes string) (int, error) {
	n := 0
	gone := func(id uuid.UUID) bool { return f.deleted[id] || f.aliases[id].MergedInto != nil }

	for _, m := range f.matches {
		if m.Status == client.MatchPending && (gone(m.AliasA) || gone(m.AliasB)) {
			m.Status = client.MatchRejected
			m.Notes = notes
			n++
		}
	}

	return n, nil
}

func (f *fakeRepo) RecalculateUsageCounts(context.Context) (int, error) {
	counts := map[uuid.UUID]int{}
	for _, c := range f.workOrders {
		counts[c]++
	}

	n := 0

	for id, a := range f.aliases {
		if a.UsageCount != counts[id] {
			a.UsageCount = counts[id]
			n++
		}
	}

	return n, nil
}

func newService(repo *fakeRepo) *client.Service {
	return client.NewService(repo, inlineTx{}, slog.New(slog.NewTextHandler(io.Discard, nil)), client.Options{Threshold: 85})
}

func TestService_Resolve(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	created, err := svc.Resolve(ctx, "  Acmé Import S.A. ", "ec")
	require.NoError(t, err)
	assert.Equal(t, "ACME IMPORT S.A", created.NormalizedName)
	assert.Equal(t, "EC", created.Country)
	assert.Equal(t, 1, created.UsageCount)

	again, err := svc.Resolve(ctx, "ACME  import s.a.", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 2, repo.aliases[created.ID].UsageCount)

	_, err = svc.Resolve(ctx, "  ", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Resolve_FollowsResolutionAndMerge(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	root := repo.add("ACME", "", 5)
	mid := repo.add("ACME SA", "", 1)
	mid.MergedInto = &root.ID
	repo.resolutions = append(repo.resolutions, client.Resolution{OriginalName: "Acme S.A.", ResolvedTo: mid.ID})

	got, err := svc.Resolve(ctx, "Acme S.A.", "")
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.Equal(t, 6, repo.aliases[root.ID].UsageCount)
}

func TestService_Resolve_TrailingPunctuationSharesAlias(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "Beta S.A. ;", "")
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, first.NormalizedName, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.aliases, 1)
}

func TestService_Canonical(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	root := repo.add("ACME", "", 5)
	mid := repo.add("ACME SA", "", 1)
	mid.MergedInto = &root.ID

	got, err := svc.Canonical(ctx, mid.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got)

	got, err = svc.Canonical(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got)

	_, err = svc.Canonical(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Lookup_Caches(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	a := repo.add("ACME", "", 1)

	got, err := svc.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lookups)

	missing, err := svc.Lookup(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestService_Merge(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	dst := repo.add("ACME IMPORT", "", 4)
	src := repo.add("ACME IMPORTS", "", 3)
	child := repo.add("ACME IMP", "", 0)
	child.MergedInto = &src.ID

	wo := uuid.New()
	repo.workOrders[wo] = src.ID
	_, _ = repo.InsertMatch(ctx, src.ID, uuid.Nil, 90)

	got, err := svc.Merge(ctx, src.ID, dst.ID)
	require.NoError(t, err)
	assert.Equal(t, dst.ID, got.ID)

	assert.Equal(t, 7, repo.aliases[dst.ID].UsageCount)
	assert.Equal(t, dst.ID, *repo.aliases[src.ID].MergedInto)
	assert.Equal(t, dst.ID, *repo.aliases[child.ID].MergedInto, "chains stay one level deep")
	assert.Equal(t, dst.ID, repo.workOrders[wo])

	resolved, err := repo.FindResolution(ctx, "ACME IMPORTS")
	require.NoError(t, err)
	assert.Equal(t, dst.ID, *resolved)

	for _, m := range repo.matches {
		assert.Equal(t, client.MatchRejected, m.Status)
	}

	t.Run("Idempotent", func(t *testing.T) {
		_, err := svc.Merge(ctx, src.ID, dst.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, repo.aliases[dst.ID].UsageCount)

		_, err = svc.Merge(ctx, child.ID, dst.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, repo.aliases[dst.ID].UsageCount)
	})

	t.Run("Self", func(t *testing.T) {
		_, err := svc.Merge(ctx, dst.ID, dst.ID)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestService_DetectSimilar(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	repo.add("ACME IMPORTADORA", "EC", 1)
	repo.add("ACME IMPORTADRA", "EC", 1)
	repo.add("ACME IMPORTADORA", "PE", 1)
	repo.add("GLOBAL LOGISTICS", "EC", 1)

	created, err := svc.DetectSimilar(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	for _, m := range repo.matches {
		assert.Less(t, m.AliasA.String(), m.AliasB.String())
	}

	created, err = svc.DetectSimilar(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestService_AcceptMatch(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	a := repo.add("ACME", "", 2)
	b := repo.add("ACME SA", "", 1)
	_, _ = repo.InsertMatch(ctx, a.ID, b.ID, 95)

	var matchID uuid.UUID
	for id := range repo.matches {
		matchID = id
	}

	_, err := svc.AcceptMatch(ctx, matchID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrValidation)

	kept, err := svc.AcceptMatch(ctx, matchID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, kept.ID)
	assert.Equal(t, client.MatchAccepted, repo.matches[matchID].Status)
	assert.Equal(t, b.ID, *repo.aliases[a.ID].MergedInto)

	assert.ErrorIs(t, svc.RejectMatch(ctx, matchID, "late"), apperr.ErrValidation)
}

func TestService_CleanObsoleteMatches(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	a := repo.add("ACME", "", 1)
	b := repo.add("ACME SA", "", 1)
	_, _ = repo.InsertMatch(ctx, a.ID, b.ID, 95)
	repo.deleted[b.ID] = true

	n, err := svc.CleanObsoleteMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_RecalculateUsageCounts(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	a := repo.add("ACME", "", 40)
	repo.workOrders[uuid.New()] = a.ID
	repo.workOrders[uuid.New()] = a.ID

	n, err := svc.RecalculateUsageCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, repo.aliases[a.ID].UsageCount)
}
