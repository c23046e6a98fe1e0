// Package http is the thin HTTP transport adapter that drives the
// decision and management services. All decision logic lives in
// internal/service; this package only translates JSON requests into
// domain calls and domain results back into JSON.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/authzgate/authzgate/internal/domain/authz"
	"github.com/authzgate/authzgate/internal/domain/policy"
	"github.com/authzgate/authzgate/internal/domain/role"
	"github.com/authzgate/authzgate/internal/service"
)

// Handler wires the decision and management services into HTTP routes.
type Handler struct {
	decisions *service.DecisionService
	policies  *service.PolicyRegistry
	roles     role.Graph
	pinger    Pinger
	adminKey  string
	logger    *slog.Logger
	startTime time.Time
}

// Option configures a Handler dependency.
type Option func(*Handler)

// WithAdminKey sets the bearer credential required on management routes.
func WithAdminKey(key string) Option {
	return func(h *Handler) { h.adminKey = key }
}

// WithPinger sets the store health check used by GET /health.
func WithPinger(p Pinger) Option {
	return func(h *Handler) { h.pinger = p }
}

// WithLogger sets the logger used for handler-level errors.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler creates a Handler backed by the given services.
func NewHandler(decisions *service.DecisionService, policies *service.PolicyRegistry, roles role.Graph, opts ...Option) *Handler {
	h := &Handler{
		decisions: decisions,
		policies:  policies,
		roles:     roles,
		logger:    slog.Default(),
		startTime: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns an http.Handler with the decision surface (unauthenticated
// per §6) and the management surface (guarded by adminAuthMiddleware).
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("POST /authorize", h.handleAuthorize)
	mux.HandleFunc("POST /authorize/batch", h.handleAuthorizeBatch)

	admin := http.NewServeMux()
	admin.HandleFunc("POST /roles", h.handleCreateRole)
	admin.HandleFunc("POST /policies", h.handleCreatePolicy)
	admin.HandleFunc("POST /policies/{id}/activate", h.handleActivatePolicy)
	admin.HandleFunc("GET /policies", h.handleListPolicies)
	admin.HandleFunc("GET /policies/active", h.handleGetActivePolicy)
	mux.Handle("/roles", h.adminAuthMiddleware(admin))
	mux.Handle("/roles/", h.adminAuthMiddleware(admin))
	mux.Handle("/policies", h.adminAuthMiddleware(admin))
	mux.Handle("/policies/", h.adminAuthMiddleware(admin))

	return h.requestIDMiddleware(mux)
}

// --- decision surface ---

type authorizeRequest struct {
	Subject  map[string]interface{} `json:"subject"`
	Resource map[string]interface{} `json:"resource"`
	Action   string                 `json:"action"`
	DryRun   bool                   `json:"dry_run"`
}

type authorizeResponse struct {
	Decision bool    `json:"decision"`
	Reason   string  `json:"reason"`
	TraceID  *int64  `json:"trace_id,omitempty"`
}

func toRequest(r authorizeRequest) authz.Request {
	return authz.Request{Subject: r.Subject, Resource: r.Resource, Action: r.Action, DryRun: r.DryRun}
}

func toResponse(r authz.Response) authorizeResponse {
	return authorizeResponse{Decision: r.Decision, Reason: r.Reason, TraceID: r.TraceID}
}

func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	resp, err := h.decisions.Authorize(r.Context(), toRequest(req))
	if err != nil {
		h.logger.Error("authorize failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "authorization failed")
		return
	}
	h.respondJSON(w, http.StatusOK, toResponse(resp))
}

func (h *Handler) handleAuthorizeBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []authorizeRequest
	if err := h.readJSON(r, &reqs); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	domainReqs := make([]authz.Request, len(reqs))
	for i, req := range reqs {
		domainReqs[i] = toRequest(req)
	}

	resps, err := h.decisions.AuthorizeBatch(r.Context(), domainReqs)
	if err != nil {
		h.logger.Error("authorize_batch failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "authorization failed")
		return
	}

	out := make([]authorizeResponse, len(resps))
	for i, resp := range resps {
		out[i] = toResponse(resp)
	}
	h.respondJSON(w, http.StatusOK, out)
}

// --- management surface ---

type createRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ParentNames []string `json:"parent_names,omitempty"`
}

type roleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Parents     []string `json:"parents,omitempty"`
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.roles.Create(r.Context(), req.Name, req.Description, req.ParentNames)
	if err != nil {
		var cycleErr *role.CycleError
		var unknownParentErr *role.UnknownParentError
		switch {
		case errors.As(err, &cycleErr), errors.As(err, &unknownParentErr):
			h.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, role.ErrConflict):
			h.respondError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("create_role failed", "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to create role")
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, roleResponse{ID: created.ID, Name: created.Name, Description: created.Description, Parents: created.Parents})
}

type createPolicyRequest struct {
	Name    string         `json:"name"`
	Content policy.Content `json:"content"`
}

type policyResponse struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Version   int           `json:"version"`
	Content   policy.Content `json:"content"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

func toPolicyResponse(p *policy.Policy) policyResponse {
	return policyResponse{ID: p.ID, Name: p.Name, Version: p.Version, Content: p.Content, IsActive: p.IsActive, CreatedAt: p.CreatedAt}
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req createPolicyRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.policies.Create(r.Context(), req.Name, req.Content)
	if err != nil {
		h.logger.Error("create_policy failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create policy")
		return
	}
	h.respondJSON(w, http.StatusCreated, toPolicyResponse(created))
}

func (h *Handler) handleActivatePolicy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(h.pathParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "policy id must be an integer")
		return
	}

	activated, err := h.policies.Activate(r.Context(), id)
	if err != nil {
		if errors.Is(err, policy.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "policy not found")
			return
		}
		h.logger.Error("activate_policy failed", "error", err, "id", id)
		h.respondError(w, http.StatusInternalServerError, "failed to activate policy")
		return
	}
	h.respondJSON(w, http.StatusOK, toPolicyResponse(activated))
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	skip, limit := 0, 50
	if v := r.URL.Query().Get("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			skip = parsed
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	policies, err := h.policies.List(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error("list_policies failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list policies")
		return
	}

	out := make([]policyResponse, len(policies))
	for i := range policies {
		out[i] = toPolicyResponse(&policies[i])
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetActivePolicy(w http.ResponseWriter, r *http.Request) {
	active, err := h.policies.Active(r.Context())
	if err != nil {
		h.logger.Error("get_active_policy failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to fetch active policy")
		return
	}
	if active == nil {
		h.respondError(w, http.StatusNotFound, "no active policy")
		return
	}
	h.respondJSON(w, http.StatusOK, toPolicyResponse(active))
}

// --- helpers ---

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) readJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
