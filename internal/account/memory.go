package account

import (
	"context"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. It backs
// tests and DSN-less development runs; production uses the Postgres store.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[string]*Account
	byName   map[string]string // username -> id
	creation []string          // ids in insertion order, keeps listings stable
}

// NewInMemory creates an empty registry store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[string]*Account),
		byName: make(map[string]string),
	}
}

func (m *InMemory) Create(ctx context.Context, acc *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byName[acc.Username]; taken {
		return ErrDuplicateName
	}
	cp := *acc
	m.byID[cp.ID] = &cp
	m.byName[cp.Username] = cp.ID
	m.creation = append(m.creation, cp.ID)
	return nil
}

func (m *InMemory) Find(ctx context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *InMemory) FindByUsername(ctx context.Context, username string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *InMemory) List(ctx context.Context) ([]*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Account, 0, len(m.creation))
	for _, id := range m.creation {
		if acc, ok := m.byID[id]; ok {
			cp := *acc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *InMemory) Update(ctx context.Context, acc *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[acc.ID]; !ok {
		return ErrNotFound
	}
	cp := *acc
	m.byID[cp.ID] = &cp
	return nil
}

func (m *InMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byName, acc.Username)
	delete(m.byID, id)
	for i := 0; i < len(m.creation); i++ {
		if m.creation[i] == id {
			m.creation = append(m.creation[:i], m.creation[i+1:]...)
			break
		}
	}
	return nil
}
