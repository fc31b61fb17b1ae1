package api

import (
	"net/http"
	"sort"

	"github.com/sprite-ai/mergegate/internal/classify"
	"github.com/sprite-ai/mergegate/internal/docsync"
	"github.com/sprite-ai/mergegate/internal/engine"
	"github.com/sprite-ai/mergegate/internal/history"
	"github.com/sprite-ai/mergegate/internal/model"
	"github.com/sprite-ai/mergegate/internal/remote"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Shared descriptor payload ---

type commitJSON struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type descriptorJSON struct {
	Title   string       `json:"title"`
	Commits []commitJSON `json:"commits,omitempty"`
	Labels  []string     `json:"labels,omitempty"`
}

func (d descriptorJSON) toModel() model.ChangeDescriptor {
	out := model.ChangeDescriptor{
		Title:  d.Title,
		Labels: make(map[string]bool, len(d.Labels)),
	}
	for _, c := range d.Commits {
		out.Commits = append(out.Commits, model.CommitRecord{Message: c.Message, ID: c.ID})
	}
	for _, l := range d.Labels {
		out.Labels[l] = true
	}
	return out
}

type classificationJSON struct {
	Category      string   `json:"category"`
	Source        string   `json:"source"`
	DerivedLabels []string `json:"derived_labels,omitempty"`
}

func classificationToJSON(cls model.Classification) classificationJSON {
	return classificationJSON{
		Category:      cls.Category.String(),
		Source:        cls.Source.String(),
		DerivedLabels: sortedKeys(cls.DerivedLabels),
	}
}

type verdictJSON struct {
	Decision string   `json:"decision"`
	Category string   `json:"category"`
	Reasons  []string `json:"reasons,omitempty"`
}

// --- Classify ---

type classifyRequest struct {
	Descriptor descriptorJSON `json:"descriptor"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cls := classify.Classify(req.Descriptor.toModel(), s.engine.Vocabulary)
	writeJSON(w, http.StatusOK, classificationToJSON(cls))
}

// --- Evaluate ---

type evaluateRequest struct {
	Descriptor descriptorJSON `json:"descriptor"`
	Patch      string         `json:"patch,omitempty"`
	// QualityScore is nil when the score collaborator had nothing;
	// the engine then fails closed.
	QualityScore *float64 `json:"quality_score,omitempty"`
	Handle       string   `json:"handle,omitempty"`
}

type evaluateResponse struct {
	Classification classificationJSON `json:"classification"`
	Verdict        verdictJSON        `json:"verdict"`
	Document       string             `json:"document"`
	Warning        string             `json:"warning,omitempty"`
	Transitions    []transitionJSON   `json:"transitions,omitempty"`
	DiffStats      *diffStatsJSON     `json:"diff_stats,omitempty"`
}

type transitionJSON struct {
	Label    string `json:"label"`
	Action   string `json:"action"`
	Behavior string `json:"behavior"`
}

type diffStatsJSON struct {
	Files   int `json:"files"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Descriptor.Title == "" && len(req.Descriptor.Commits) == 0 {
		writeError(w, http.StatusBadRequest, "descriptor is required")
		return
	}

	res, err := s.evaluate(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.history != nil {
		if _, err := s.history.Record(req.Handle, req.Descriptor.Title,
			res.Classification, res.Verdict, res.Score); err != nil {
			// The evaluation itself succeeded; the audit log is best effort.
			writeJSON(w, http.StatusOK, toEvaluateResponse(res))
			return
		}
	}

	writeJSON(w, http.StatusOK, toEvaluateResponse(res))
}

func (s *Server) evaluate(r *http.Request, req evaluateRequest) (*engine.Result, error) {
	// Per-request engine copy: the request carries its own score and
	// labels, the shared configuration comes from the server.
	eng := *s.engine
	eng.Store = nil
	eng.Pins = nil
	eng.Scores = nil
	if req.QualityScore != nil {
		eng.Scores = remote.StaticScore(*req.QualityScore)
	}

	return eng.Evaluate(r.Context(), remote.Handle(req.Handle), req.Descriptor.toModel(), req.Patch)
}

func toEvaluateResponse(res *engine.Result) evaluateResponse {
	resp := evaluateResponse{
		Classification: classificationToJSON(res.Classification),
		Verdict: verdictJSON{
			Decision: res.Verdict.Decision.String(),
			Category: res.Verdict.Category.String(),
			Reasons:  res.Verdict.Reasons,
		},
		Document: res.Document,
	}
	if res.Warning != nil {
		resp.Warning = res.Warning.String()
	}
	for i, tr := range res.Transitions {
		resp.Transitions = append(resp.Transitions, transitionJSON{
			Label:    tr.Label,
			Action:   tr.Action.String(),
			Behavior: res.Behaviors[i].String(),
		})
	}
	if res.DiffStats.Files > 0 {
		resp.DiffStats = &diffStatsJSON{
			Files:   res.DiffStats.Files,
			Added:   res.DiffStats.Added,
			Deleted: res.DiffStats.Deleted,
		}
	}
	return resp
}

// --- Document upsert ---

type upsertRequest struct {
	Document  string `json:"document"`
	SectionID string `json:"section_id"`
	Body      string `json:"body"`
}

type upsertResponse struct {
	Document string `json:"document"`
	Warning  string `json:"warning,omitempty"`
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.SectionID == "" {
		writeError(w, http.StatusBadRequest, "section_id is required")
		return
	}

	doc, warn := docsync.UpsertSection(req.Document, req.SectionID, req.Body)
	resp := upsertResponse{Document: doc}
	if warn != nil {
		resp.Warning = warn.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- History ---

type historyResponse struct {
	Counts  history.Counts  `json:"counts"`
	Entries []history.Entry `json:"entries"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	counts, err := s.history.DecisionCounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries, err := s.history.Recent(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Counts: counts, Entries: entries})
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
