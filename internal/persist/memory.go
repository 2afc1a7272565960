package persist

import (
	"context"
	"sync"
)

// Memory keeps state in process. It backs tests and dry runs.
type Memory struct {
	mu sync.Mutex
	st *State
}

// NewMemory returns an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return nil, ErrEmpty
	}
	return m.st.Clone(), nil
}

func (m *Memory) Save(_ context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if m.st != nil {
		current = m.st.Version
	}
	if st.Version != current {
		return ErrConflict
	}
	next := st.Clone()
	next.Version++
	m.st = next
	st.Version = next.Version
	return nil
}

func (m *Memory) Close() error { return nil }
