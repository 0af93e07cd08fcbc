package butcher

import (
	"context"
	"sync"
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entity.ButcherOrder

	setStatusErr    error
	replaceItemsErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*entity.ButcherOrder)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *entity.ButcherOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	cp.Items = append([]entity.ButcherOrderItem(nil), o.Items...)
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*entity.ButcherOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]entity.ButcherOrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.ButcherOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.ButcherOrder, 0, len(f.orders))
	for _, o := range f.orders {
		if filter.StoreID != nil && o.RequesterStoreID != *filter.StoreID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, st := range filter.Statuses {
				if o.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderRepo) SetStatus(ctx context.Context, id string, change repository.OrderStatusChange) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil
	}
	o.Status = change.Status
	if change.SubmittedAt != nil {
		o.SubmittedAt = change.SubmittedAt
	}
	if change.PrintedAt != nil {
		o.PrintedAt = change.PrintedAt
	}
	if change.CompletedAt != nil {
		o.CompletedAt = change.CompletedAt
	}
	if change.ReceivedAt != nil {
		o.ReceivedAt = change.ReceivedAt
	}
	if change.CancelledAt != nil {
		o.CancelledAt = change.CancelledAt
	}
	return nil
}

func (f *fakeOrderRepo) ReplaceItems(ctx context.Context, orderID string, items []entity.ButcherOrderItem) error {
	if f.replaceItemsErr != nil {
		return f.replaceItemsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
		o.Items = append([]entity.ButcherOrderItem(nil), items...)
	}
	return nil
}

func (f *fakeOrderRepo) CountCreatedForDay(ctx context.Context, storeID string, day time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	y, m, d := day.Date()
	count := 0
	for _, o := range f.orders {
		oy, om, od := o.CreatedAt.Date()
		if o.RequesterStoreID == storeID && oy == y && om == m && od == d {
			count++
		}
	}
	return count, nil
}

func (f *fakeOrderRepo) HardDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	return nil
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

type fakeProductRepo struct{}

func (fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return nil, nil
}

func (fakeProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return nil, nil
}

func (fakeProductRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	return nil, nil
}

func (fakeProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	return nil, nil
}

type fakeTx struct {
	orders repository.OrderRepository
	runs   int
}

func (f *fakeTx) RunOrders(ctx context.Context, fn func(repository.OrderRepository) error) error {
	f.runs++
	return fn(f.orders)
}

type staticIdentity struct {
	profile *entity.Profile
}

func (s *staticIdentity) Profile() *entity.Profile { return s.profile }
