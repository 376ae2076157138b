// Package api exposes HTTP handlers for the activity service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"example.com/timeflow/internal/auth"
	"example.com/timeflow/internal/domain"
	"example.com/timeflow/internal/logger"
)

const activitiesPath = "/api/activities"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	log     *logger.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{service: service, log: log.With("component", "api")}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(activitiesPath, h.activities)
	mux.HandleFunc(activitiesPath+"/", h.activityByID)
	mux.HandleFunc(activitiesPath+"/summary", h.dailySummary)
	mux.HandleFunc("/api/categories", categories)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, activitiesPath+"/")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not_found", "Activity not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateActivity(w, r, id)
	case http.MethodDelete:
		h.deleteActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), principal.UserID, input)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateActivityResponse{ID: activity.ID})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireScope(w, r, auth.ScopeActivitiesRead)
	if !ok {
		return
	}

	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	activities, err := h.service.ListActivities(r.Context(), principal.UserID, date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		items = append(items, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, id int64) {
	principal, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	if _, err := h.service.UpdateActivity(r.Context(), id, principal.UserID, input); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id int64) {
	principal, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	if err := h.service.DeleteActivity(r.Context(), id, principal.UserID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	principal, ok := requireScope(w, r, auth.ScopeActivitiesRead)
	if !ok {
		return
	}

	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	summary, err := h.service.DailySummary(r.Context(), principal.UserID, date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(summary))
}

func categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	all := domain.Categories()
	resp := make([]domain.CategoryStyle, 0, len(all))
	for _, c := range all {
		resp = append(resp, c.Style())
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireScope fetches the principal and checks that it may use scope. Write access
// implies read access.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	switch {
	case date == "":
		writeError(w, http.StatusBadRequest, "validation_failed", "Date parameter is required")
		return "", false
	case !domain.ValidDate(date):
		writeError(w, http.StatusBadRequest, "validation_failed", "Invalid date format")
		return "", false
	}
	return date, true
}

func requireScope(w http.ResponseWriter, r *http.Request, scope string) (*auth.Principal, bool) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return nil, false
	}
	if principal.HasScope(scope) {
		return principal, true
	}
	if scope == auth.ScopeActivitiesRead && principal.HasScope(auth.ScopeActivitiesWrite) {
		return principal, true
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
	return nil, false
}

func decodeInput(w http.ResponseWriter, r *http.Request) (domain.ActivityInput, bool) {
	var input domain.ActivityInput
	err := json.NewDecoder(r.Body).Decode(&input)
	if err == nil {
		return input, true
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		writeValidationError(w, domain.FieldError(typeErr.Field))
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is required")
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
	}
	return domain.ActivityInput{}, false
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		budgetErr *domain.BudgetError
		fieldErrs domain.ValidationErrors
	)
	switch {
	case errors.As(err, &budgetErr):
		remaining := budgetErr.RemainingMinutes()
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Type:             "budget_exceeded",
			Detail:           "Total minutes for the day cannot exceed 1440",
			RemainingMinutes: &remaining,
		})
	case errors.As(err, &fieldErrs):
		writeValidationError(w, fieldErrs)
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Activity not found")
	default:
		h.log.Error("activity request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func writeValidationError(w http.ResponseWriter, fields domain.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Type:   "validation_failed",
		Detail: "Invalid activity",
		Fields: fields,
	})
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
