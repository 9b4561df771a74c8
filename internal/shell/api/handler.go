// Package api provides the HTTP surface for render and validate runs. Apply
// never goes through this surface; deployments run through the CLI where the
// production gate lives.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/pipeline"
	"github.com/stackpact/stackpact/internal/core/render"
	"github.com/stackpact/stackpact/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	runner  *pipeline.Runner
	history store.Store
	logger  *slog.Logger
	secret  string
}

// NewHandler creates a new API handler. An empty secret disables
// authentication; history may be nil to disable run persistence.
func NewHandler(runner *pipeline.Runner, history store.Store, logger *slog.Logger, secret string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runner:  runner,
		history: history,
		logger:  logger,
		secret:  secret,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)

	r.Get("/health", h.handleHealth)
	r.Get("/openapi.json", h.handleOpenAPI)

	r.Route("/api/v1", func(r chi.Router) {
		if h.secret != "" {
			r.Use(SharedSecretAuth(h.secret))
		}
		r.Post("/render", h.handleRender)
		r.Post("/validate", h.handleValidate)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.handleListRuns)
			r.Get("/{id}", h.handleGetRun)
		})
	})

	return r
}

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// =============================================================================
// Render / Validate
// =============================================================================

// handleRender resolves identity and renders artifacts without validating.
// The pipeline still runs validation; this handler just includes the
// rendered artifacts in the response.
func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	h.runPipeline(w, r, true)
}

// handleValidate runs resolve, render and validate, returning violations.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	h.runPipeline(w, r, false)
}

func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request, includeArtifacts bool) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	env, err := identity.ParseEnvironment(req.Environment)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}
	if len(req.Templates) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one template is required", "validation_error")
		return
	}

	templates := make([]render.ArtifactTemplate, 0, len(req.Templates))
	for _, t := range req.Templates {
		templates = append(templates, render.ArtifactTemplate{Name: t.Name, Content: t.Content})
	}

	// The HTTP surface never applies. WantsApply stays false so the
	// production gate and inventory fetch are not involved.
	result, err := h.runner.Run(r.Context(), pipeline.Request{
		RawInputs:   req.Inputs,
		Environment: env,
		Templates:   templates,
	})

	runID := uuid.NewString()
	h.persistRun(r.Context(), runID, result)

	if err != nil && result.State != pipeline.StateFailed && result.State != pipeline.StateBlocked {
		h.logger.Error("pipeline run failed", "run_id", runID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "pipeline run failed", "internal_error")
		return
	}

	resp := RunResponse{
		RunID:      runID,
		State:      string(result.State),
		Violations: result.Violations,
	}
	if result.Identity.Stack != "" {
		resp.Identity = &IdentityResponse{
			Stack:        result.Identity.Stack,
			Environment:  string(result.Identity.Environment),
			DomainSuffix: result.Identity.DomainSuffix,
			AppHost:      result.Identity.AppHost,
			ProjectName:  result.Identity.ProjectName,
		}
	}
	if includeArtifacts {
		for _, artifact := range result.Rendered {
			resp.Artifacts = append(resp.Artifacts, ArtifactResponse{Name: artifact.Name, Content: artifact.Content})
		}
	}

	status := http.StatusOK
	if result.State == pipeline.StateFailed {
		// A failed run is a valid outcome, but config-level failures
		// (bad identity, unresolved placeholders) have no violations
		// and surface as a client error.
		if len(result.Violations) == 0 {
			msg := "configuration rejected"
			if err != nil {
				msg = err.Error()
			}
			h.writeError(w, http.StatusUnprocessableEntity, msg, "config_error")
			return
		}
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) persistRun(ctx context.Context, runID string, result pipeline.Result) {
	if h.history == nil || result.Identity.Stack == "" {
		return
	}
	record := &store.RunRecord{
		ID:          runID,
		Stack:       result.Identity.Stack,
		Environment: string(result.Identity.Environment),
		State:       result.State,
		Violations:  result.Violations,
		Applied:     result.Applied,
	}
	if err := h.history.RecordRun(ctx, record); err != nil {
		h.logger.Warn("failed to persist run", "run_id", runID, "error", err)
	}
}

// =============================================================================
// Run History
// =============================================================================

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusNotFound, "run history is disabled", "not_found")
		return
	}

	stack := r.URL.Query().Get("stack")
	if stack == "" {
		h.writeError(w, http.StatusBadRequest, "stack query parameter is required", "validation_error")
		return
	}

	runs, err := h.history.ListRuns(r.Context(), stack, store.ListOptions{})
	if err != nil {
		h.logger.Error("failed to list runs", "stack", stack, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list runs", "internal_error")
		return
	}

	resp := make([]HistoryResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, historyResponse(run))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusNotFound, "run history is disabled", "not_found")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := h.history.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "run not found", "not_found")
			return
		}
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get run", "internal_error")
		return
	}
	h.writeJSON(w, http.StatusOK, historyResponse(*run))
}

func historyResponse(run store.RunRecord) HistoryResponse {
	return HistoryResponse{
		RunID:       run.ID,
		Stack:       run.Stack,
		Environment: run.Environment,
		State:       string(run.State),
		Violations:  run.Violations,
		Applied:     run.Applied,
		CreatedAt:   run.CreatedAt,
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
