package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"brickpress/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs tests and the archive's
// "memory" database driver for local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]domain.User // key: user ID
	email       map[string]string      // email -> user ID
	generations []domain.Generation
	passkeys    map[string]domain.Passkey // key: credential ID
	orders      []domain.Order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		passkeys: make(map[string]domain.Passkey),
	}
}

func (m *MemoryStore) SaveUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.users[u.ID]; ok && prev.Email != u.Email {
		delete(m.email, strings.ToLower(prev.Email))
	}
	m.users[u.ID] = u
	m.email[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (m *MemoryStore) HasUserEmail(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[strings.ToLower(email)]
	return ok, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[strings.ToLower(email)]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) CreateGeneration(_ context.Context, g domain.Generation) error {
	m.mu.Lock()
	m.generations = append(m.generations, g)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetGeneration(_ context.Context, id string) (domain.Generation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.generations {
		if g.ID == id {
			return g, true, nil
		}
	}
	return domain.Generation{}, false, nil
}

// ListGenerationsByOwner returns newest first; ties keep reverse insertion order.
func (m *MemoryStore) ListGenerationsByOwner(_ context.Context, ownerID string, limit int) ([]domain.Generation, error) {
	m.mu.RLock()
	res := make([]domain.Generation, 0)
	for i := len(m.generations) - 1; i >= 0; i-- {
		if g := m.generations[i]; g.OwnerID == ownerID && ownerID != "" {
			res = append(res, g)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) SavePasskey(_ context.Context, p domain.Passkey) (domain.Passkey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.passkeys[p.CredentialID]; ok {
		if prev.UserID != p.UserID {
			return domain.Passkey{}, ErrPasskeyConflict
		}
		prev.Name = p.Name
		prev.Counter = p.Counter
		prev.BackedUp = p.BackedUp
		prev.Transports = p.Transports
		m.passkeys[p.CredentialID] = prev
		return prev, nil
	}
	m.passkeys[p.CredentialID] = p
	return p, nil
}

func (m *MemoryStore) ListPasskeysByUser(_ context.Context, userID string) ([]domain.Passkey, error) {
	m.mu.RLock()
	res := make([]domain.Passkey, 0)
	for _, p := range m.passkeys {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	m.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) CreateOrder(_ context.Context, o domain.Order) error {
	m.mu.Lock()
	m.orders = append(m.orders, o)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListOrdersByOwner(_ context.Context, ownerID string) ([]domain.Order, error) {
	m.mu.RLock()
	res := make([]domain.Order, 0)
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].OwnerID == ownerID {
			res = append(res, m.orders[i])
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}
