package model

import "time"

// PipelineSnapshot is the persisted form of a pipeline session.
type PipelineSnapshot struct {
	FetchState  StageState `json:"fetchState"`
	FilterState StageState `json:"filterState"`
	DedupeState StageState `json:"dedupeState"`
	SendState   StageState `json:"sendState"`

	FetchResult  *FetchResult  `json:"fetchResult"`
	FilterResult *FilterResult `json:"filterResult"`
	DedupeResult *DedupeResult `json:"dedupeResult"`
	SendResult   *SendResult   `json:"sendResult"`

	FetchedContacts  []Contact          `json:"fetchedContacts"`
	FilteredContacts []ValidatedContact `json:"filteredContacts"`
	DedupedContacts  []ValidatedContact `json:"dedupedContacts"`

	SavedAt time.Time `json:"savedAt"`
}

// DefaultSnapshot returns a snapshot with every stage idle and no data.
func DefaultSnapshot() PipelineSnapshot {
	return PipelineSnapshot{
		FetchState:       Idle(),
		FilterState:      Idle(),
		DedupeState:      Idle(),
		SendState:        Idle(),
		FetchedContacts:  []Contact{},
		FilteredContacts: []ValidatedContact{},
		DedupedContacts:  []ValidatedContact{},
	}
}

// IsZero reports whether the snapshot was never saved.
func (s PipelineSnapshot) IsZero() bool { return s.SavedAt.IsZero() }

// StateOf returns the state of the named stage.
func (s *PipelineSnapshot) StateOf(stage StageName) StageState {
	if p := s.statePtr(stage); p != nil {
		return *p
	}
	return Idle()
}

// SetState updates the state of the named stage.
func (s *PipelineSnapshot) SetState(stage StageName, st StageState) {
	if p := s.statePtr(stage); p != nil {
		*p = st
	}
}

func (s *PipelineSnapshot) statePtr(stage StageName) *StageState {
	switch stage {
	case StageFetch:
		return &s.FetchState
	case StageFilter:
		return &s.FilterState
	case StageDedupe:
		return &s.DedupeState
	case StageSend:
		return &s.SendState
	}
	return nil
}

// ClearStage resets the named stage to idle and drops its result and data.
func (s *PipelineSnapshot) ClearStage(stage StageName) {
	s.SetState(stage, Idle())
	switch stage {
	case StageFetch:
		s.FetchResult = nil
		s.FetchedContacts = []Contact{}
	case StageFilter:
		s.FilterResult = nil
		s.FilteredContacts = []ValidatedContact{}
	case StageDedupe:
		s.DedupeResult = nil
		s.DedupedContacts = []ValidatedContact{}
	case StageSend:
		s.SendResult = nil
	}
}

// CoerceRunning turns any running stage into idle. A running state can
// only be observed after a process died mid-stage.
func (s *PipelineSnapshot) CoerceRunning() {
	for _, st := range Stages {
		if s.StateOf(st).Status == StatusRunning {
			s.SetState(st, Idle())
		}
	}
}

// PipelineState is the read model exposed to callers.
type PipelineState struct {
	FetchState  StageState `json:"fetchState"`
	FilterState StageState `json:"filterState"`
	DedupeState StageState `json:"dedupeState"`
	SendState   StageState `json:"sendState"`

	FetchResult  *FetchResult  `json:"fetchResult"`
	FilterResult *FilterResult `json:"filterResult"`
	DedupeResult *DedupeResult `json:"dedupeResult"`
	SendResult   *SendResult   `json:"sendResult"`

	IsAnyRunning bool `json:"isAnyRunning"`
}

// State derives the read model from the snapshot.
func (s PipelineSnapshot) State() PipelineState {
	st := PipelineState{
		FetchState:   s.FetchState,
		FilterState:  s.FilterState,
		DedupeState:  s.DedupeState,
		SendState:    s.SendState,
		FetchResult:  s.FetchResult,
		FilterResult: s.FilterResult,
		DedupeResult: s.DedupeResult,
		SendResult:   s.SendResult,
	}
	for _, name := range Stages {
		if s.StateOf(name).Status == StatusRunning {
			st.IsAnyRunning = true
		}
	}
	return st
}
