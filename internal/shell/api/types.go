package api

import (
	"time"

	"github.com/stackpact/stackpact/internal/core/policy"
)

// =============================================================================
// Request Types
// =============================================================================

// ArtifactRequest is one artifact template in a render or validate request.
type ArtifactRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// RunRequest is the request body for render and validate operations.
type RunRequest struct {
	Environment string            `json:"environment"`
	Inputs      map[string]string `json:"inputs"`
	Templates   []ArtifactRequest `json:"templates"`
}

// =============================================================================
// Response Types
// =============================================================================

// ArtifactResponse is one rendered artifact.
type ArtifactResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// IdentityResponse is the resolved stack identity.
type IdentityResponse struct {
	Stack        string `json:"stack"`
	Environment  string `json:"environment"`
	DomainSuffix string `json:"domain_suffix"`
	AppHost      string `json:"app_host"`
	ProjectName  string `json:"project_name"`
}

// RunResponse is the response for render and validate operations.
type RunResponse struct {
	RunID      string             `json:"run_id"`
	State      string             `json:"state"`
	Identity   *IdentityResponse  `json:"identity,omitempty"`
	Artifacts  []ArtifactResponse `json:"artifacts,omitempty"`
	Violations []policy.Violation `json:"violations,omitempty"`
}

// HistoryResponse is one persisted run in the history listing.
type HistoryResponse struct {
	RunID       string             `json:"run_id"`
	Stack       string             `json:"stack"`
	Environment string             `json:"environment"`
	State       string             `json:"state"`
	Violations  []policy.Violation `json:"violations,omitempty"`
	Applied     bool               `json:"applied"`
	CreatedAt   time.Time          `json:"created_at"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
