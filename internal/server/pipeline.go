package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/export"
	"github.com/sells-group/outreach-cli/internal/model"
)

const msgPipelineBusy = "A pipeline stage is already running"

// stageRequest is the body for stage and run requests. Fetch reads
// Filters, dedupe and send read Settings.
type stageRequest struct {
	Filters  model.SearchFilters    `json:"filters"`
	Settings model.CampaignSettings `json:"settings"`
}

// stageResponse reports whether the stage succeeded and the resulting state.
type stageResponse struct {
	OK    bool                `json:"ok"`
	State model.PipelineState `json:"state"`
}

func (s *Server) getPipeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Pipeline.State())
}

func (s *Server) resetPipeline(w http.ResponseWriter, r *http.Request) {
	if !s.acquire(w) {
		return
	}
	defer s.busy.Unlock()

	if err := s.deps.Pipeline.ResetAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Pipeline.State())
}

func (s *Server) runStage(w http.ResponseWriter, r *http.Request) {
	stage, ok := model.ParseStage(chi.URLParam(r, "stage"))
	if !ok {
		writeError(w, apperr.Validation("Unknown stage: "+chi.URLParam(r, "stage")))
		return
	}

	var req stageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !s.acquire(w) {
		return
	}
	defer s.busy.Unlock()

	ctx := r.Context()
	var done bool
	switch stage {
	case model.StageFetch:
		done = s.deps.Pipeline.RunFetch(ctx, req.Filters)
	case model.StageFilter:
		done = s.deps.Pipeline.RunFilter(ctx)
	case model.StageDedupe:
		done = s.deps.Pipeline.RunDedupe(ctx, req.Settings)
	case model.StageSend:
		done = s.deps.Pipeline.RunSend(ctx, req.Settings)
	}
	writeJSON(w, http.StatusOK, stageResponse{OK: done, State: s.deps.Pipeline.State()})
}

func (s *Server) runAll(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !s.acquire(w) {
		return
	}
	defer s.busy.Unlock()

	done := s.deps.Pipeline.RunAll(r.Context(), req.Filters, req.Settings)
	writeJSON(w, http.StatusOK, stageResponse{OK: done, State: s.deps.Pipeline.State()})
}

// pipelineContacts downloads a stage's contacts in the requested format.
func (s *Server) pipelineContacts(w http.ResponseWriter, r *http.Request) {
	stage := model.StageDedupe
	if q := r.URL.Query().Get("stage"); q != "" {
		var ok bool
		if stage, ok = model.ParseStage(q); !ok || stage == model.StageSend {
			writeError(w, apperr.Validation("Unknown stage: "+q))
			return
		}
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := map[export.Format]string{
		export.FormatCSV:  "text/csv",
		export.FormatJSON: "application/json",
		export.FormatYAML: "application/yaml",
		export.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}[format]
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(stage)+"."+string(format)+`"`)
	if err := export.Write(w, format, s.deps.Pipeline.Contacts(stage)); err != nil {
		writeError(w, err)
	}
}

// acquire takes the run lock or answers 409.
func (s *Server) acquire(w http.ResponseWriter) bool {
	if s.deps.Pipeline.IsAnyRunning() || !s.busy.TryLock() {
		writeError(w, apperr.Conflict(msgPipelineBusy))
		return false
	}
	return true
}
