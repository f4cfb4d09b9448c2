package store

import (
	"context"
	"slices"
	"sync"

	"github.com/roach88/quarry/internal/record"
)

// Provider supplies named tables. A missing table must be reported as
// an empty (nil) sequence with a nil error; errors are reserved for
// backend failures (I/O, corruption).
type Provider interface {
	GetTable(ctx context.Context, name string) ([]record.Record, error)
}

// Memory is the in-process provider: a named map of tables.
// Safe for concurrent readers; writes take the lock.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]record.Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]record.Record)}
}

// NewMemoryFrom creates a store seeded with the given tables. The maps
// are referenced, not copied; the engine's defensive copy at pipeline
// entry keeps them safe from query-side mutation.
func NewMemoryFrom(tables map[string][]record.Record) *Memory {
	m := NewMemory()
	for name, rows := range tables {
		m.tables[name] = rows
	}
	return m
}

// GetTable returns the named table, or nil if absent. Never errors.
func (m *Memory) GetTable(_ context.Context, name string) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables[name], nil
}

// SetTable replaces the named table.
func (m *Memory) SetTable(name string, rows []record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = rows
}

// Append adds rows to the named table, creating it if absent.
func (m *Memory) Append(name string, rows ...record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = append(m.tables[name], rows...)
}

// Tables lists the table names in ascending order.
func (m *Memory) Tables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
