package store

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps todos in an ordered slice. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	todos []Todo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// indexOf returns the position of id, or -1. Callers hold the lock.
func (m *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(m.todos, func(t Todo) bool { return t.ID == id })
}

func (m *MemoryStore) Add(text string) (Todo, error) {
	text, err := NormalizeText(text)
	if err != nil {
		return Todo{}, err
	}
	t := Todo{ID: uuid.NewString(), Text: text}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.todos = append(m.todos, t)
	return t, nil
}

func (m *MemoryStore) Toggle(id string) (Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return Todo{}, &NotFoundError{ID: id}
	}
	m.todos[i].Completed = !m.todos[i].Completed
	return m.todos[i], nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	m.todos = slices.Delete(m.todos, i, i+1)
	return nil
}

func (m *MemoryStore) List() ([]Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Todo, len(m.todos))
	copy(result, m.todos)
	return result, nil
}
