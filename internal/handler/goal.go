package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/goal-tracker/internal/auth"
	"github.com/sakif/goal-tracker/internal/service"
)

// GoalHandler exposes goal CRUD over JSON. Every route sits behind
// RequireAuth, so the session email is always available as the owner scope.
type GoalHandler struct {
	svc    *service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(svc *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, logger: logger}
}

type goalRequest struct {
	Text string `json:"text"`
}

// owner pulls the session email out of the request context. The bool is
// false only if the route was somehow reached without RequireAuth.
func (h *GoalHandler) owner(r *http.Request) (string, bool) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		return "", false
	}
	return sess.Email, true
}

// HandleList returns the caller's goals, optionally filtered.
//
// HTTP: GET /api/goals?filter=all|completed|incomplete
func (h *GoalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	filter, err := service.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, err)
		return
	}

	goals, err := h.svc.List(r.Context(), owner, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// HandleDashboard returns all goals in dashboard order: incomplete first.
//
// HTTP: GET /api/goals/dashboard
func (h *GoalHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	goals, err := h.svc.Dashboard(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// HandleCreate adds a new goal.
//
// HTTP: POST /api/goals
// Body: {"text": "Ship v1"}
func (h *GoalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid goal JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	goal, err := h.svc.Add(r.Context(), owner, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// HandleToggle flips a goal's completed flag.
//
// HTTP: POST /api/goals/{id}/toggle
func (h *GoalHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	goal, err := h.svc.Toggle(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// HandleUpdate replaces a goal's text.
//
// HTTP: PUT /api/goals/{id}
// Body: {"text": "Ship v2"}
func (h *GoalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid goal JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	goal, err := h.svc.Edit(r.Context(), owner, r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// HandleDelete removes a goal after explicit confirmation.
//
// HTTP: DELETE /api/goals/{id}?confirm=true
//
// Without confirm=true the request is rejected before any store call — the
// confirmation step is enforced here, not just in the UI dialog.
func (h *GoalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.svc.Delete(r.Context(), owner, r.PathValue("id"), confirmed); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
