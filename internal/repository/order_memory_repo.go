package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"freightledger/internal/model"
	"freightledger/pkg/pagination"
)

type memoryEntry struct {
	order model.Order
	seq   uint64
}

// memoryOrderRepository keeps the whole collection in process. Mutations are
// serialized by mu; readers copy records out under the read lock.
type memoryOrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*memoryEntry
	counter uint64
}

func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{orders: make(map[string]*memoryEntry)}
}

// Create assigns ORDER_%06d ids. The counter never rewinds, so ids of deleted
// orders are not reused.
func (r *memoryOrderRepository) Create(ctx context.Context, order *model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	order.ID = fmt.Sprintf("ORDER_%06d", r.counter)
	r.orders[order.ID] = &memoryEntry{order: order.Clone(), seq: r.counter}
	return nil
}

func (r *memoryOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	o := e.order.Clone()
	return &o, nil
}

func (r *memoryOrderRepository) Update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}

	draft := e.order.Clone()
	if err := mutate(&draft); err != nil {
		return nil, err
	}
	draft.ID = id
	e.order = draft.Clone()
	return &draft, nil
}

func (r *memoryOrderRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryOrderRepository) List(ctx context.Context, filter model.OrderFilter, page pagination.Params) ([]model.Order, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*memoryEntry, 0, len(r.orders))
	for _, e := range r.orders {
		if filter.Matches(&e.order) {
			matched = append(matched, e)
		}
	}
	sortNewestFirst(matched)

	start, end := page.Bounds(len(matched))
	out := make([]model.Order, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, e.order.Clone())
	}

	return out, int64(len(matched)), nil
}

func (r *memoryOrderRepository) Snapshot(ctx context.Context) ([]model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*memoryEntry, 0, len(r.orders))
	for _, e := range r.orders {
		entries = append(entries, e)
	}
	sortNewestFirst(entries)

	out := make([]model.Order, len(entries))
	for i, e := range entries {
		out[i] = e.order.Clone()
	}
	return out, nil
}

// newest createdAt first; ties broken by insertion order, latest first
func sortNewestFirst(entries []*memoryEntry) {
	slices.SortFunc(entries, func(a, b *memoryEntry) int {
		if c := b.order.CreatedAt.Compare(a.order.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
}
