// Package session persists the pipeline snapshot for one named session
// with a staleness TTL.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// DefaultTTL is how long a saved snapshot stays usable.
const DefaultTTL = time.Hour

// Option configures a Session.
type Option func(*Session)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session reads and writes one snapshot in a Store.
type Session struct {
	store store.Store
	id    string
	ttl   time.Duration
	now   func() time.Time
}

// New creates a Session for id.
func New(st store.Store, id string, opts ...Option) *Session {
	s := &Session{store: st, id: id, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session name.
func (s *Session) ID() string { return s.id }

// TTL returns the staleness window.
func (s *Session) TTL() time.Duration { return s.ttl }

// Load returns the saved snapshot, or defaults when it is absent, corrupt
// or older than the TTL. Expired snapshots are deleted. Running stages are
// reported as idle since no process can still be executing them.
func (s *Session) Load(ctx context.Context) model.PipelineSnapshot {
	log := zap.L().With(zap.String("component", "session"), zap.String("session", s.id))

	raw, err := s.store.GetSnapshot(ctx, s.id)
	if err != nil {
		log.Warn("session: load failed, using defaults", zap.Error(err))
		return model.DefaultSnapshot()
	}
	if raw == nil {
		return model.DefaultSnapshot()
	}

	snap, err := decode(raw)
	if err != nil {
		log.Warn("session: discarding corrupt snapshot", zap.Error(err))
		return model.DefaultSnapshot()
	}

	if age := s.now().Sub(snap.SavedAt); age > s.ttl {
		log.Info("session: snapshot expired", zap.Duration("age", age))
		if err := s.store.DeleteSnapshot(ctx, s.id); err != nil {
			log.Warn("session: delete expired snapshot", zap.Error(err))
		}
		return model.DefaultSnapshot()
	}

	snap.CoerceRunning()
	return snap
}

// Save applies mutate to the current snapshot, stamps SavedAt and writes
// it back.
func (s *Session) Save(ctx context.Context, mutate func(*model.PipelineSnapshot)) error {
	snap := s.Load(ctx)
	mutate(&snap)
	snap.SavedAt = s.now().UTC()

	raw, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "session: marshal snapshot")
	}
	return eris.Wrap(s.store.PutSnapshot(ctx, s.id, raw), "session: save")
}

// Clear deletes the snapshot.
func (s *Session) Clear(ctx context.Context) error {
	return eris.Wrap(s.store.DeleteSnapshot(ctx, s.id), "session: clear")
}

func decode(raw []byte) (model.PipelineSnapshot, error) {
	snap := model.DefaultSnapshot()
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, eris.Wrap(err, "session: unmarshal snapshot")
	}
	if snap.SavedAt.IsZero() {
		return snap, eris.New("session: snapshot has no savedAt")
	}
	for _, st := range model.Stages {
		if status := snap.StateOf(st).Status; !status.Valid() {
			return snap, eris.Errorf("session: invalid %s status %q", st, status)
		}
	}
	if snap.FetchedContacts == nil {
		snap.FetchedContacts = []model.Contact{}
	}
	if snap.FilteredContacts == nil {
		snap.FilteredContacts = []model.ValidatedContact{}
	}
	if snap.DedupedContacts == nil {
		snap.DedupedContacts = []model.ValidatedContact{}
	}
	return snap, nil
}
