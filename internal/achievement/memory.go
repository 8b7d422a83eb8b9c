package achievement

import (
	"context"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Ids are
// assigned sequentially, matching the Postgres bigserial behaviour.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	recs   []*Record
}

// NewInMemory creates an empty record store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) Create(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	cp := *rec
	m.recs = append(m.recs, &cp)
	return nil
}

func (m *InMemory) Find(ctx context.Context, id int64) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.recs {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *InMemory) ListAll(ctx context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyFiltered(func(*Record) bool { return true }), nil
}

func (m *InMemory) ListByOwner(ctx context.Context, ownerID string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyFiltered(func(r *Record) bool { return r.OwnerID == ownerID }), nil
}

func (m *InMemory) ListApproved(ctx context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyFiltered(func(r *Record) bool { return r.Status == StatusApproved }), nil
}

func (m *InMemory) copyFiltered(keep func(*Record) bool) []*Record {
	var out []*Record
	for _, rec := range m.recs {
		if keep(rec) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out
}

func (m *InMemory) UpdateStatus(ctx context.Context, id int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.recs {
		if rec.ID == id {
			rec.Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (m *InMemory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range m.recs {
		if rec.ID == id {
			m.recs = append(m.recs[:i], m.recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *InMemory) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var locators []string
	kept := m.recs[:0]
	for _, rec := range m.recs {
		if rec.OwnerID == ownerID {
			if rec.FileLocator != "" {
				locators = append(locators, rec.FileLocator)
			}
			continue
		}
		kept = append(kept, rec)
	}
	m.recs = kept
	return locators, nil
}
