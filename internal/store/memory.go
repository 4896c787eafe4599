package store

import (
	"context"
	"sync"
)

// Memory is a map-backed Backend for tests and DEV_MODE.
type Memory struct {
	mu       sync.RWMutex
	tables   map[string][]byte
	writes   map[string]int
	writeErr error
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]byte),
		writes: make(map[string]int),
	}
}

func (m *Memory) Read(_ context.Context, table string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.tables[table]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Write(_ context.Context, table string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[table]++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.tables[table] = append([]byte(nil), data...)
	return nil
}

// FailWrites makes every subsequent Write return err. Pass nil to recover.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes reports how many times table was written, including failed attempts.
func (m *Memory) Writes(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[table]
}

// Put seeds raw table bytes.
func (m *Memory) Put(table string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append([]byte(nil), data...)
}
