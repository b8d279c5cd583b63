package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/sells-group/outreach-cli/internal/model"
)

// MemoryStore keeps everything in process memory. State does not survive
// the process, which suits `serve` and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	usage     []model.UsageRecord
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (m *MemoryStore) GetSnapshot(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) PutSnapshot(_ context.Context, sessionID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[sessionID] = slices.Clone(data)
	return nil
}

func (m *MemoryStore) DeleteSnapshot(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, sessionID)
	return nil
}

func (m *MemoryStore) RecordUsage(_ context.Context, rec model.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, rec)
	return nil
}

func (m *MemoryStore) ListUsage(_ context.Context, filter UsageFilter) ([]model.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.UsageRecord
	for _, r := range m.usage {
		if filter.Service != "" && r.Service != filter.Service {
			continue
		}
		if !filter.Since.IsZero() && r.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
