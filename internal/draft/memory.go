package draft

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bryanpdl/briefly/internal/apperr"
)

// Memory is an in-process Store. Drafts live until Delete or process exit.
type Memory struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{drafts: make(map[string]*Draft)}
}

func (m *Memory) Create(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[d.ID]; ok {
		return fmt.Errorf("draft %s: %w", d.ID, apperr.ErrAlreadyExists)
	}
	m.drafts[d.ID] = d.Clone()
	return nil
}

func (m *Memory) Load(_ context.Context, id string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	return d.Clone(), nil
}

func (m *Memory) Update(_ context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	work := d.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	m.drafts[id] = work
	return work.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	delete(m.drafts, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]*Draft, error) {
	m.mu.Lock()
	out := make([]*Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, d.Clone())
	}
	m.mu.Unlock()
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(ds []*Draft) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].UpdatedAt.After(ds[j].UpdatedAt) })
}
