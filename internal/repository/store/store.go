// Package store defines the durable key-value contract that every record
// repository is built on, plus an in-memory driver.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Table names one physical collection of records keyed by id.
type Table string

const (
	Users        Table = "users"
	Breeders     Table = "breeders"
	Prices       Table = "prices"
	Sheep        Table = "sheep"
	Health       Table = "health"
	Production   Table = "production"
	Reproduction Table = "reproduction"
	Nutrition    Table = "nutrition"
)

// Tables lists every table a driver must provision.
var Tables = []Table{Users, Breeders, Prices, Sheep, Health, Production, Reproduction, Nutrition}

// SchemaVersion is recorded by drivers when they provision tables.
const SchemaVersion = 5

// Store persists opaque JSON documents per table. Every call is atomic on its
// own; there are no cross-table transactions.
type Store interface {
	// GetAll returns every document of the table in unspecified order.
	GetAll(ctx context.Context, table Table) ([][]byte, error)
	// Put inserts or fully replaces the document stored under id.
	Put(ctx context.Context, table Table, id string, doc []byte) error
	// Remove deletes the document stored under id. A missing id is not an error.
	Remove(ctx context.Context, table Table, id string) error
	Close(ctx context.Context) error
}

// Known reports whether t is one of the provisioned tables.
func Known(t Table) bool {
	for _, table := range Tables {
		if table == t {
			return true
		}
	}
	return false
}

// Memory is a process-local Store used by tests and ephemeral runs.
type Memory struct {
	mu     sync.RWMutex
	tables map[Table]map[string][]byte
}

// NewMemory creates an empty in-memory store with every table provisioned.
func NewMemory() *Memory {
	m := &Memory{tables: make(map[Table]map[string][]byte, len(Tables))}
	for _, t := range Tables {
		m.tables[t] = make(map[string][]byte)
	}
	return m
}

func (m *Memory) GetAll(_ context.Context, table Table) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]byte, 0, len(rows))
	for _, id := range ids {
		out = append(out, append([]byte(nil), rows[id]...))
	}
	return out, nil
}

func (m *Memory) Put(_ context.Context, table Table, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	rows[id] = append([]byte(nil), doc...)
	return nil
}

func (m *Memory) Remove(_ context.Context, table Table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	delete(rows, id)
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }
