package validity

import (
	"context"
	"sync"
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

type fakeValidityRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.ValidityEntry

	setVerificationErr error
	softDeleteErr      error
}

func newFakeValidityRepo() *fakeValidityRepo {
	return &fakeValidityRepo{entries: make(map[string]*entity.ValidityEntry)}
}

func (f *fakeValidityRepo) Create(ctx context.Context, e *entity.ValidityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeValidityRepo) GetByID(ctx context.Context, id string) (*entity.ValidityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeValidityRepo) List(ctx context.Context, filter repository.ValidityFilter) ([]*entity.ValidityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.ValidityEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if !filter.IncludeDeleted && e.Status == entity.ValidityExcluido {
			continue
		}
		if filter.StoreID != nil && e.StoreID != *filter.StoreID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, st := range filter.Statuses {
				if e.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.ExpiresBefore != nil && !e.ExpiresAt.Before(*filter.ExpiresBefore) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeValidityRepo) Update(ctx context.Context, e *entity.ValidityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeValidityRepo) SetVerification(ctx context.Context, id, status string, verifiedAt *time.Time, verifiedBy *string) error {
	if f.setVerificationErr != nil {
		return f.setVerificationErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[id]; ok {
		e.Status = status
		e.VerifiedAt = verifiedAt
		e.VerifiedBy = verifiedBy
	}
	return nil
}

func (f *fakeValidityRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	if f.softDeleteErr != nil {
		return f.softDeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[id]; ok {
		e.Status = entity.ValidityExcluido
		e.DeletedAt = &deletedAt
	}
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*entity.DeleteRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entity.DeleteRequest)}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *entity.DeleteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.requests[r.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*entity.DeleteRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) PendingByEntry(ctx context.Context, entryID string) (*entity.DeleteRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.ValidityEntryID == entryID && r.Status == entity.DeleteRequestPendente {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRequestRepo) ListPending(ctx context.Context) ([]*entity.DeleteRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.DeleteRequest, 0)
	for _, r := range f.requests {
		if r.Status == entity.DeleteRequestPendente {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) Resolve(ctx context.Context, id, status string, resolvedAt time.Time, resolvedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.requests[id]; ok {
		r.Status = status
		r.ResolvedAt = &resolvedAt
		r.ResolvedBy = &resolvedBy
	}
	return nil
}

type fakeTx struct {
	entries  repository.ValidityRepository
	requests repository.DeleteRequestRepository
}

func (f *fakeTx) RunValidity(ctx context.Context, fn func(repository.ValidityRepository, repository.DeleteRequestRepository) error) error {
	return fn(f.entries, f.requests)
}

type fakeStoreRepo struct {
	stores map[string]*entity.Store
}

func (f *fakeStoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	return f.stores[id], nil
}

func (f *fakeStoreRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Store, error) {
	out := make([]*entity.Store, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.stores[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStoreRepo) List(ctx context.Context) ([]*entity.Store, error) {
	out := make([]*entity.Store, 0, len(f.stores))
	for _, s := range f.stores {
		out = append(out, s)
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	profiles map[string]*entity.Profile
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *entity.Profile) error { return nil }

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return f.profiles[id], nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) GetByHandle(ctx context.Context, handle string) (*entity.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Profile, error) {
	out := make([]*entity.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) List(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *entity.Profile) error { return nil }

func (f *fakeProfileRepo) ReplacePermissions(ctx context.Context, id string, grants map[entity.Module]entity.Grant) error {
	return nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, id string) error { return nil }

type staticIdentity struct {
	profile *entity.Profile
}

func (s *staticIdentity) Profile() *entity.Profile { return s.profile }
