// Package usage records upstream API calls and aggregates them into
// per-service usage stats.
package usage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Recorder persists a single usage record.
type Recorder interface {
	RecordUsage(ctx context.Context, rec model.UsageRecord) error
}

// Transport is an http.RoundTripper that records one usage record per
// request. Recording failures are logged and never fail the request.
type Transport struct {
	Base     http.RoundTripper
	Service  model.Service
	Recorder Recorder

	now func() time.Time
}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, service model.Service, rec Recorder) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Service: service, Recorder: rec, now: time.Now}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	credits := t.credits(req)

	resp, err := t.Base.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	t.record(req, status, credits)
	return resp, err
}

func (t *Transport) record(req *http.Request, status, credits int) {
	if t.Recorder == nil {
		return
	}
	now := time.Now
	if t.now != nil {
		now = t.now
	}

	rec := model.UsageRecord{
		Service:    t.Service,
		Endpoint:   req.URL.Path,
		Method:     req.Method,
		StatusCode: status,
		Credits:    credits,
		Timestamp:  now().UTC(),
	}
	// The caller's context may already be done once the response is read.
	ctx := context.WithoutCancel(req.Context())
	if err := t.Recorder.RecordUsage(ctx, rec); err != nil {
		zap.L().Warn("usage: failed to record api call",
			zap.String("service", string(t.Service)),
			zap.String("endpoint", rec.Endpoint),
			zap.Error(err),
		)
	}
}

// credits is the number of Apollo credits a request consumes: one per
// person in a bulk_match reveal, zero otherwise.
func (t *Transport) credits(req *http.Request) int {
	if t.Service != model.ServiceApollo || !strings.HasSuffix(req.URL.Path, "/people/bulk_match") {
		return 0
	}
	if req.GetBody == nil {
		return 0
	}
	body, err := req.GetBody()
	if err != nil {
		return 0
	}
	defer body.Close() //nolint:errcheck

	var payload struct {
		Details []json.RawMessage `json:"details"`
	}
	raw, err := io.ReadAll(body)
	if err != nil || json.Unmarshal(raw, &payload) != nil {
		return 0
	}
	return len(payload.Details)
}

// Client returns an http.Client whose transport records usage for service.
func Client(base *http.Client, service model.Service, rec Recorder) *http.Client {
	hc := &http.Client{Timeout: 30 * time.Second}
	if base != nil {
		c := *base
		hc = &c
	}
	hc.Transport = NewTransport(hc.Transport, service, rec)
	return hc
}
