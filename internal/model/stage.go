package model

// StageName identifies one of the four pipeline stages.
type StageName string

const (
	StageFetch  StageName = "fetch"
	StageFilter StageName = "filter"
	StageDedupe StageName = "dedupe"
	StageSend   StageName = "send"
)

// Stages lists the pipeline stages in execution order.
var Stages = []StageName{StageFetch, StageFilter, StageDedupe, StageSend}

// ParseStage converts s to a StageName.
func ParseStage(s string) (StageName, bool) {
	for _, st := range Stages {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Downstream returns the stages that run after s.
func (s StageName) Downstream() []StageName {
	for i, st := range Stages {
		if st == s {
			return Stages[i+1:]
		}
	}
	return nil
}

// StageStatus is the lifecycle state of a single stage.
type StageStatus string

const (
	StatusIdle      StageStatus = "idle"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusError     StageStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s StageStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusRunning, StatusCompleted, StatusError:
		return true
	}
	return false
}

func (s StageStatus) String() string { return string(s) }

// StageState is a stage status plus an error message when Status is error.
type StageState struct {
	Status StageStatus `json:"status" yaml:"status"`
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Idle returns the initial stage state.
func Idle() StageState { return StageState{Status: StatusIdle} }

// Running returns an in-flight stage state.
func Running() StageState { return StageState{Status: StatusRunning} }

// Completed returns a successful stage state.
func Completed() StageState { return StageState{Status: StatusCompleted} }

// Failed returns an error stage state carrying msg.
func Failed(msg string) StageState { return StageState{Status: StatusError, Error: msg} }

// FetchResult is the outcome of the fetch stage.
type FetchResult struct {
	Status       StageStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
	Contacts     []Contact   `json:"contacts"`
	TotalFetched int         `json:"totalFetched"`
}

// FilterBreakdown counts contacts rejected by each filter rule.
type FilterBreakdown struct {
	NoEmail    int `json:"noEmail"`
	Unverified int `json:"unverified"`
	Generic    int `json:"generic"`
}

// Total is the sum of all rejection counts.
func (b FilterBreakdown) Total() int { return b.NoEmail + b.Unverified + b.Generic }

// FilterResult is the outcome of the filter stage.
type FilterResult struct {
	Status        StageStatus        `json:"status"`
	Error         string             `json:"error,omitempty"`
	Contacts      []ValidatedContact `json:"contacts"`
	TotalVerified int                `json:"totalVerified"`
	FilteredOut   FilterBreakdown    `json:"filteredOut"`
}

// DedupeResult is the outcome of the dedupe stage.
type DedupeResult struct {
	Status            StageStatus        `json:"status"`
	Error             string             `json:"error,omitempty"`
	Contacts          []ValidatedContact `json:"contacts"`
	SkippedDuplicates int                `json:"skippedDuplicates"`
	LookupFailures    int                `json:"lookupFailures,omitempty"`
}

// SendResult is the outcome of the send stage.
type SendResult struct {
	Status        StageStatus `json:"status"`
	Error         string      `json:"error,omitempty"`
	Sent          int         `json:"sent"`
	TestSent      int         `json:"testSent"`
	Errors        int         `json:"errors"`
	ErrorMessages []string    `json:"errorMessages,omitempty"`
}
