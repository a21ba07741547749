package store

import (
	"context"
	"fmt"
	"sync"

	"db_migrator/internal/domain"
)

// MemoryStore хранит записи в памяти. Используется в dry-run и в тестах.
type MemoryStore struct {
	mu     sync.Mutex
	items  map[string][]domain.Entity
	nextID map[string]int64
	queue  []pending
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make(map[string][]domain.Entity),
		nextID: make(map[string]int64),
	}
}

func (m *MemoryStore) Purge(ctx context.Context, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// счетчик ID не сбрасываем, как и автоинкремент после DELETE
	delete(m.items, kind)
	return nil
}

func (m *MemoryStore) Persist(ctx context.Context, kind string, e domain.Entity) error {
	if e == nil {
		return fmt.Errorf("cannot persist nil entity of %s", kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, pending{kind: kind, entity: e})
	return nil
}

func (m *MemoryStore) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.queue {
		m.nextID[p.kind]++
		p.entity.SetID(m.nextID[p.kind])
		m.items[p.kind] = append(m.items[p.kind], p.entity)
	}
	m.queue = nil
	return nil
}

func (m *MemoryStore) Detach() {}

// All возвращает записанные записи вида в порядке записи
func (m *MemoryStore) All(kind string) []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Entity, len(m.items[kind]))
	copy(out, m.items[kind])
	return out
}

// Count число записанных записей вида
func (m *MemoryStore) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items[kind])
}
