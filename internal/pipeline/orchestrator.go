// Package pipeline runs the fetch, filter, dedupe and send stages and
// keeps their state in a session.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/filter"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/sender"
	"github.com/sells-group/outreach-cli/internal/session"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/pkg/apollo"
)

// Stage error messages shown to the user.
const (
	MsgNoContactsToFilter = "No contacts to filter. Run Fetch first."
	MsgNoContactsToDedupe = "No contacts to dedupe. Run Filter first."
	MsgNoContactsToSend   = "No contacts to send. Run Dedupe first."
	MsgSendFailed         = "Failed to send leads to Instantly"
)

// ContactFetcher pages contacts out of the lead database.
type ContactFetcher interface {
	FetchContacts(ctx context.Context, filters apollo.SearchFilters, dailyLimit int) source.Result
}

// DuplicateChecker reports which emails already exist as leads.
type DuplicateChecker interface {
	CheckLeads(ctx context.Context, emails []string, campaignID string) (*dedupe.Result, error)
}

// BulkSender uploads contacts into a campaign.
type BulkSender interface {
	SendBulk(ctx context.Context, req sender.Request) *sender.Result
}

// Deps are the stage collaborators.
type Deps struct {
	Fetcher ContactFetcher
	Checker DuplicateChecker
	Sender  BulkSender
}

// StageHook observes every stage transition.
type StageHook func(stage model.StageName, state model.StageState)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStageHook registers a transition observer. Hooks run outside the
// orchestrator lock.
func WithStageHook(h StageHook) Option {
	return func(o *Orchestrator) { o.hooks = append(o.hooks, h) }
}

// Orchestrator owns the pipeline snapshot. Contact slices in the snapshot
// are replaced on update, never modified in place.
type Orchestrator struct {
	session *session.Session
	deps    Deps
	hooks   []StageHook

	mu   sync.Mutex
	snap model.PipelineSnapshot
	// gen is bumped by ResetAll; stage results from an older generation
	// are dropped.
	gen uint64
}

// New loads the session snapshot once and returns an Orchestrator.
func New(ctx context.Context, sess *session.Session, deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		session: sess,
		deps:    deps,
		snap:    sess.Load(ctx),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the read model.
func (o *Orchestrator) State() model.PipelineState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap.State()
}

// Snapshot returns a copy of the current snapshot.
func (o *Orchestrator) Snapshot() model.PipelineSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// IsAnyRunning reports whether any stage is in flight.
func (o *Orchestrator) IsAnyRunning() bool {
	return o.State().IsAnyRunning
}

// Contacts returns the contacts produced by stage in export shape. The
// send stage keeps no contacts.
func (o *Orchestrator) Contacts(stage model.StageName) []model.ValidatedContact {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch stage {
	case model.StageFetch:
		out := make([]model.ValidatedContact, len(o.snap.FetchedContacts))
		for i, c := range o.snap.FetchedContacts {
			out[i] = c.Flatten()
		}
		return out
	case model.StageFilter:
		return o.snap.FilteredContacts
	case model.StageDedupe:
		return o.snap.DedupedContacts
	}
	return nil
}

// RunFetch validates filters and fetches contacts. On success every
// downstream stage is reset.
func (o *Orchestrator) RunFetch(ctx context.Context, filters model.SearchFilters) (ok bool) {
	const stage = model.StageFetch
	if err := filters.Validate(); err != nil {
		return o.reject(ctx, stage, apperr.Message(err))
	}

	gen, start := o.begin(stage)
	defer o.recoverStage(ctx, stage, gen, "Failed to fetch contacts", &ok)

	res := o.deps.Fetcher.FetchContacts(ctx, source.ToApolloFilters(filters), filters.DailyLimit)
	if res.Err != nil {
		zap.L().Warn("pipeline: fetch failed",
			zap.Int("partial_contacts", len(res.Contacts)),
			zap.Error(res.Err),
		)
		return o.fail(ctx, stage, gen, apperr.Message(res.Err))
	}

	return o.commit(ctx, stage, gen, start, func(s *model.PipelineSnapshot) {
		s.FetchedContacts = res.Contacts
		s.FetchResult = &model.FetchResult{
			Status:       model.StatusCompleted,
			Contacts:     res.Contacts,
			TotalFetched: res.TotalFetched,
		}
	}, zap.Int("contacts", len(res.Contacts)), zap.Int("total_fetched", res.TotalFetched))
}

// RunFilter keeps verified, non-generic, unique emails from the fetched
// contacts.
func (o *Orchestrator) RunFilter(ctx context.Context) (ok bool) {
	const stage = model.StageFilter
	o.mu.Lock()
	contacts, done := o.snap.FetchedContacts, o.upstreamCompletedLocked(stage)
	o.mu.Unlock()
	if !done || len(contacts) == 0 {
		return o.reject(ctx, stage, MsgNoContactsToFilter)
	}

	gen, start := o.begin(stage)
	defer o.recoverStage(ctx, stage, gen, "Failed to filter contacts", &ok)

	res := filterStage(contacts)
	return o.commit(ctx, stage, gen, start, func(s *model.PipelineSnapshot) {
		s.FilteredContacts = res.Contacts
		s.FilterResult = res
	}, zap.Int("processed", len(contacts)), zap.Int("verified", res.TotalVerified))
}

// RunDedupe drops contacts that already exist as leads. Test mode skips
// the lookup entirely.
func (o *Orchestrator) RunDedupe(ctx context.Context, settings model.CampaignSettings) (ok bool) {
	const stage = model.StageDedupe
	o.mu.Lock()
	contacts, done := o.snap.FilteredContacts, o.upstreamCompletedLocked(stage)
	o.mu.Unlock()
	if !done || len(contacts) == 0 {
		return o.reject(ctx, stage, MsgNoContactsToDedupe)
	}

	gen, start := o.begin(stage)
	defer o.recoverStage(ctx, stage, gen, "Failed to dedupe contacts", &ok)

	result := &model.DedupeResult{Status: model.StatusCompleted, Contacts: contacts}
	if !settings.TestMode {
		emails := make([]string, len(contacts))
		for i, c := range contacts {
			emails[i] = c.Email
		}
		found, err := o.deps.Checker.CheckLeads(ctx, emails, strings.TrimSpace(settings.CampaignID))
		if err != nil {
			return o.fail(ctx, stage, gen, "Failed to dedupe contacts: "+apperr.Message(err))
		}

		fresh := make([]model.ValidatedContact, 0, len(contacts))
		for _, c := range contacts {
			if _, dup := found.Existing[strings.ToLower(strings.TrimSpace(c.Email))]; !dup {
				fresh = append(fresh, c)
			}
		}
		result.Contacts = fresh
		result.SkippedDuplicates = len(contacts) - len(fresh)
		result.LookupFailures = found.LookupFailures
	}

	return o.commit(ctx, stage, gen, start, func(s *model.PipelineSnapshot) {
		s.DedupedContacts = result.Contacts
		s.DedupeResult = result
	},
		zap.Bool("test_mode", settings.TestMode),
		zap.Int("remaining", len(result.Contacts)),
		zap.Int("skipped", result.SkippedDuplicates),
	)
}

// RunSend uploads the deduped contacts to the campaign.
func (o *Orchestrator) RunSend(ctx context.Context, settings model.CampaignSettings) (ok bool) {
	const stage = model.StageSend
	if err := settings.Validate(); err != nil {
		return o.reject(ctx, stage, apperr.Message(err))
	}
	o.mu.Lock()
	contacts, done := o.snap.DedupedContacts, o.upstreamCompletedLocked(stage)
	o.mu.Unlock()
	if !done || len(contacts) == 0 {
		return o.reject(ctx, stage, MsgNoContactsToSend)
	}

	gen, start := o.begin(stage)
	defer o.recoverStage(ctx, stage, gen, "Failed to send contacts", &ok)

	req := sender.Request{
		Contacts:   contacts,
		CampaignID: strings.TrimSpace(settings.CampaignID),
		TestMode:   settings.TestMode,
	}
	if settings.TestMode {
		req.TestEmail = strings.TrimSpace(settings.TestEmail)
	}

	res := o.deps.Sender.SendBulk(ctx, req)
	if res.Successful == 0 && len(res.Errors) > 0 {
		msg := res.Errors[0].Error
		if msg == "" {
			msg = MsgSendFailed
		}
		return o.fail(ctx, stage, gen, msg)
	}

	sent, testSent := res.Counts(settings.TestMode)
	result := &model.SendResult{
		Status:        model.StatusCompleted,
		Sent:          sent,
		TestSent:      testSent,
		Errors:        res.Failed,
		ErrorMessages: res.ErrorMessages(),
	}
	return o.commit(ctx, stage, gen, start, func(s *model.PipelineSnapshot) {
		s.SendResult = result
	}, zap.Int("sent", sent), zap.Int("test_sent", testSent), zap.Int("errors", res.Failed))
}

// RunAll runs every stage in order and stops at the first failure.
func (o *Orchestrator) RunAll(ctx context.Context, filters model.SearchFilters, settings model.CampaignSettings) bool {
	return o.RunFetch(ctx, filters) &&
		o.RunFilter(ctx) &&
		o.RunDedupe(ctx, settings) &&
		o.RunSend(ctx, settings)
}

// ResetAll idles every stage, drops all data and clears the session.
// Stages still in flight will discard their results.
func (o *Orchestrator) ResetAll(ctx context.Context) error {
	o.mu.Lock()
	o.gen++
	o.snap = model.DefaultSnapshot()
	o.mu.Unlock()

	for _, st := range model.Stages {
		o.notify(st, model.Idle())
	}
	zap.L().Info("pipeline: reset")
	return o.session.Clear(ctx)
}

func (o *Orchestrator) begin(stage model.StageName) (uint64, time.Time) {
	o.mu.Lock()
	o.snap.SetState(stage, model.Running())
	clearResult(&o.snap, stage)
	gen := o.gen
	o.mu.Unlock()

	o.notify(stage, model.Running())
	zap.L().Info("pipeline: stage started", zap.String("stage", string(stage)))
	return gen, time.Now()
}

// reject fails a stage before it starts.
func (o *Orchestrator) reject(ctx context.Context, stage model.StageName, msg string) bool {
	o.mu.Lock()
	gen := o.gen
	o.mu.Unlock()
	return o.fail(ctx, stage, gen, msg)
}

func (o *Orchestrator) fail(ctx context.Context, stage model.StageName, gen uint64, msg string) bool {
	state := model.Failed(msg)

	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		zap.L().Info("pipeline: dropping stale stage failure", zap.String("stage", string(stage)))
		return false
	}
	o.snap.SetState(stage, state)
	o.persistLocked(ctx)
	o.mu.Unlock()

	o.notify(stage, state)
	zap.L().Warn("pipeline: stage failed", zap.String("stage", string(stage)), zap.String("error", msg))
	return false
}

func (o *Orchestrator) commit(
	ctx context.Context,
	stage model.StageName,
	gen uint64,
	start time.Time,
	apply func(*model.PipelineSnapshot),
	fields ...zap.Field,
) bool {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		zap.L().Info("pipeline: dropping stale stage result", zap.String("stage", string(stage)))
		return false
	}
	apply(&o.snap)
	o.snap.SetState(stage, model.Completed())
	downstream := stage.Downstream()
	for _, d := range downstream {
		o.snap.ClearStage(d)
	}
	o.persistLocked(ctx)
	o.mu.Unlock()

	o.notify(stage, model.Completed())
	for _, d := range downstream {
		o.notify(d, model.Idle())
	}

	fields = append([]zap.Field{
		zap.String("stage", string(stage)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}, fields...)
	zap.L().Info("pipeline: stage complete", fields...)
	return true
}

// recoverStage turns a panic inside a stage into a failed stage.
func (o *Orchestrator) recoverStage(ctx context.Context, stage model.StageName, gen uint64, prefix string, ok *bool) {
	if r := recover(); r != nil {
		zap.L().Error("pipeline: stage panicked", zap.String("stage", string(stage)), zap.Any("panic", r))
		*ok = o.fail(ctx, stage, gen, fmt.Sprintf("%s: %v", prefix, r))
	}
}

// upstreamCompletedLocked reports whether every stage before stage is
// completed. A failed earlier stage blocks everything after it until it is
// re-run successfully. Caller holds o.mu.
func (o *Orchestrator) upstreamCompletedLocked(stage model.StageName) bool {
	for _, st := range model.Stages {
		if st == stage {
			return true
		}
		if o.snap.StateOf(st).Status != model.StatusCompleted {
			return false
		}
	}
	return false
}

// persistLocked writes every stage to the session, so a save after the
// stored snapshot has expired still carries the earlier stages. It runs
// under the lock so saves land in transition order. Failures are logged;
// the in-memory state stays authoritative.
func (o *Orchestrator) persistLocked(ctx context.Context) {
	snap := o.snap
	err := o.session.Save(ctx, func(s *model.PipelineSnapshot) {
		for _, st := range model.Stages {
			copyStage(s, &snap, st)
		}
	})
	if err != nil {
		zap.L().Error("pipeline: persist snapshot", zap.Error(err))
	}
}

func (o *Orchestrator) notify(stage model.StageName, state model.StageState) {
	for _, h := range o.hooks {
		h(stage, state)
	}
}

func copyStage(dst, src *model.PipelineSnapshot, stage model.StageName) {
	dst.SetState(stage, src.StateOf(stage))
	switch stage {
	case model.StageFetch:
		dst.FetchResult = src.FetchResult
		dst.FetchedContacts = src.FetchedContacts
	case model.StageFilter:
		dst.FilterResult = src.FilterResult
		dst.FilteredContacts = src.FilteredContacts
	case model.StageDedupe:
		dst.DedupeResult = src.DedupeResult
		dst.DedupedContacts = src.DedupedContacts
	case model.StageSend:
		dst.SendResult = src.SendResult
	}
}

func clearResult(s *model.PipelineSnapshot, stage model.StageName) {
	switch stage {
	case model.StageFetch:
		s.FetchResult = nil
	case model.StageFilter:
		s.FilterResult = nil
	case model.StageDedupe:
		s.DedupeResult = nil
	case model.StageSend:
		s.SendResult = nil
	}
}

// filterStage applies the contact rules and drops repeated emails.
func filterStage(contacts []model.Contact) *model.FilterResult {
	res := filter.FilterContacts(contacts)
	unique := filter.RemoveDuplicateEmails(res.ValidContacts)
	return &model.FilterResult{
		Status:        model.StatusCompleted,
		Contacts:      unique,
		TotalVerified: len(unique),
		FilteredOut:   res.FilteredOut,
	}
}
