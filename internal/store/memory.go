package store

import (
	"context"
	"strings"
	"sync"

	"github.com/park285/rooky/internal/note"
)

// memstore keeps entries in process memory; used when no backend is configured.
type memstore struct {
	mu      sync.RWMutex
	entries map[string]note.Entry
}

func NewMemoryStore() Store {
	return &memstore{entries: make(map[string]note.Entry)}
}

func (m *memstore) Put(ctx context.Context, e note.Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[e.ID] = copyEntry(e)
	m.mu.Unlock()
	return nil
}

func (m *memstore) Get(ctx context.Context, id string) (*note.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[strings.TrimSpace(id)]
	if !ok {
		return nil, nil
	}
	c := copyEntry(e)
	return &c, nil
}

func (m *memstore) List(ctx context.Context, opts ListOptions) ([]note.Entry, error) {
	m.mu.RLock()
	items := make([]note.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if opts.matches(e.Origin) {
			items = append(items, copyEntry(e))
		}
	}
	m.mu.RUnlock()
	sortEntries(items)
	return applyLimit(items, opts.Limit), nil
}

func (m *memstore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memstore) Close() error { return nil }

func copyEntry(e note.Entry) note.Entry {
	c := e
	if e.Tags != nil {
		c.Tags = make([][]string, len(e.Tags))
		for i, t := range e.Tags {
			c.Tags[i] = append([]string(nil), t...)
		}
	}
	return c
}
