// Package store persists pipeline snapshots and API usage records.
package store

import (
	"context"
	"time"

	"github.com/sells-group/outreach-cli/internal/model"
)

// UsageFilter selects usage records.
type UsageFilter struct {
	Service model.Service
	Since   time.Time
}

// Store defines the persistence interface. Snapshots are stored as opaque
// JSON so a corrupt document can be detected and discarded by the caller.
type Store interface {
	// Snapshots. GetSnapshot returns nil, nil when none exists.
	GetSnapshot(ctx context.Context, sessionID string) ([]byte, error)
	PutSnapshot(ctx context.Context, sessionID string, data []byte) error
	DeleteSnapshot(ctx context.Context, sessionID string) error

	// Usage
	RecordUsage(ctx context.Context, rec model.UsageRecord) error
	ListUsage(ctx context.Context, filter UsageFilter) ([]model.UsageRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
