package remote

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, ScoreProvider and Pinner used by
// tests and the local review TUI.
type MemoryStore struct {
	mu        sync.Mutex
	documents map[Handle]string
	labels    map[Handle]map[string]bool
	scores    map[Handle]float64
	pinned    map[Handle]bool
	notices   map[Handle][]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[Handle]string),
		labels:    make(map[Handle]map[string]bool),
		scores:    make(map[Handle]float64),
		pinned:    make(map[Handle]bool),
		notices:   make(map[Handle][]string),
	}
}

func (m *MemoryStore) GetDocument(_ context.Context, h Handle) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.documents[h]
	return text, ok, nil
}

func (m *MemoryStore) SetDocument(_ context.Context, h Handle, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[h] = text
	return nil
}

func (m *MemoryStore) AddLabel(_ context.Context, h Handle, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labels[h] == nil {
		m.labels[h] = make(map[string]bool)
	}
	m.labels[h][name] = true
	return nil
}

func (m *MemoryStore) RemoveLabel(_ context.Context, h Handle, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.labels[h], name)
	return nil
}

func (m *MemoryStore) ListLabels(_ context.Context, h Handle) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.labels[h]))
	for k, v := range m.labels[h] {
		out[k] = v
	}
	return out, nil
}

// SetScore seeds the quality score for a handle.
func (m *MemoryStore) SetScore(h Handle, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[h] = score
}

func (m *MemoryStore) QualityScore(_ context.Context, h Handle) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score, ok := m.scores[h]
	return score, ok, nil
}

func (m *MemoryStore) Pin(_ context.Context, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned[h] = true
	return nil
}

func (m *MemoryStore) Unpin(_ context.Context, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned[h] = false
	return nil
}

func (m *MemoryStore) Notify(_ context.Context, h Handle, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[h] = append(m.notices[h], message)
	return nil
}

// Pinned reports whether the handle is currently pinned.
func (m *MemoryStore) Pinned(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pinned[h]
}

// Notices returns the notification messages recorded for a handle.
func (m *MemoryStore) Notices(h Handle) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notices[h]...)
}
