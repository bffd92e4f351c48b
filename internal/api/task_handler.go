// Package api provides HTTP handlers for the query facade.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/api/shared"
	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/feed"
	"github.com/medirent/opsdesk/internal/platform/logger"
	"github.com/medirent/opsdesk/internal/store"
)

// TaskHandler handles the task feed endpoints: list, create (manual
// tasks only), complete and notes update.
type TaskHandler struct {
	aggregator  *feed.Aggregator
	lifecycle   *feed.Lifecycle
	manualTasks store.ManualTaskStore
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	aggregator *feed.Aggregator,
	lifecycle *feed.Lifecycle,
	manualTasks store.ManualTaskStore,
	log *slog.Logger,
) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		aggregator:  aggregator,
		lifecycle:   lifecycle,
		manualTasks: manualTasks,
		logger:      log.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests. Query parameters: start and
// end (RFC 3339 or YYYY-MM-DD), filter (all, a group alias, or a task
// type), assignedTo (a user ID or "all"), hideCompleted (boolean).
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	window, err := parseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		log.Warn("invalid query window", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	types, err := feed.ParseTypeFilter(r.URL.Query().Get("filter"))
	if err != nil {
		log.Warn("invalid type filter", slog.String("filter", r.URL.Query().Get("filter")))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	filters := feed.Filters{
		Types:         types,
		HideCompleted: r.URL.Query().Get("hideCompleted") == "true",
	}

	if assignedTo := r.URL.Query().Get("assignedTo"); assignedTo != "" && assignedTo != "all" {
		userID, err := uuid.Parse(assignedTo)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid assignedTo user ID")
			return
		}
		filters.AssignedTo = &userID
	}

	result, err := h.aggregator.Aggregate(r.Context(), window, filters)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// CreateTaskRequest represents the request body for creating a manual task.
type CreateTaskRequest struct {
	Title        string     `json:"title"                  validate:"required,min=1"`
	Description  string     `json:"description,omitempty"`
	Priority     string     `json:"priority"               validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssignedToID *uuid.UUID `json:"assigned_to_id,omitempty"`
	PatientID    *uuid.UUID `json:"patient_id,omitempty"`
	CompanyID    *uuid.UUID `json:"company_id,omitempty"`
}

// CreateTask handles POST /api/tasks requests, creating a manual task,
// the one task type this service owns.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var startDate time.Time
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	task, err := domain.NewManualTask(req.Title, req.Description, domain.TaskPriority(req.Priority), startDate, req.DueDate)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}
	task.AssignedToID = req.AssignedToID
	task.PatientID = req.PatientID
	task.CompanyID = req.CompanyID

	if err := h.manualTasks.Create(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to create task", err)
		return
	}

	log.Info("manual task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// CompleteTaskRequest represents the request body for completing a task.
type CompleteTaskRequest struct {
	Type        string    `json:"type"         validate:"required"`
	CompletedBy uuid.UUID `json:"completed_by" validate:"required"`
}

// CompleteResponse is the success payload of a completion.
type CompleteResponse struct {
	Success bool `json:"success"`
}

// CompleteTask handles POST /api/tasks/{id}/complete requests. A derived
// task whose real-world precondition is unmet gets a conflict response
// carrying requires_action and the URL where the operator can resolve it.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	var req CompleteTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.lifecycle.Complete(r.Context(), taskID, domain.TaskType(req.Type), req.CompletedBy)
	if err != nil {
		var requiresAction *feed.RequiresActionError
		if errors.As(err, &requiresAction) {
			log.Debug("completion requires action",
				slog.String("task_id", taskID),
				slog.String("action_url", requiresAction.ActionURL))
			shared.RespondWithJSON(w, r, http.StatusConflict, shared.ErrorResponse{
				Error:          requiresAction.Reason,
				Code:           http.StatusConflict,
				TraceID:        shared.GetTraceID(r.Context()),
				RequiresAction: true,
				ActionURL:      requiresAction.ActionURL,
			})
			return
		}

		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("task completed",
		slog.String("task_id", taskID),
		slog.String("task_type", req.Type))
	shared.RespondWithJSON(w, r, http.StatusOK, CompleteResponse{Success: true})
}

// UpdateNotesRequest represents the request body for a notes update.
type UpdateNotesRequest struct {
	Type  string `json:"type" validate:"required"`
	Notes string `json:"notes"`
}

// UpdateTaskNotes handles PATCH /api/tasks/{id}/notes requests. Only
// manual tasks and appointment reminders carry editable notes; other
// types are rejected so callers can tell "saved" from "not applicable".
func (h *TaskHandler) UpdateTaskNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	var req UpdateNotesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.lifecycle.UpdateNotes(r.Context(), taskID, domain.TaskType(req.Type), req.Notes)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("task notes updated", slog.String("task_id", taskID))
	shared.RespondWithJSON(w, r, http.StatusOK, CompleteResponse{Success: true})
}

// parseWindow builds the query window from the start and end parameters,
// accepting RFC 3339 timestamps or plain dates. A date-only end bound is
// extended to the end of that day so the window is inclusive.
func parseWindow(start, end string) (feed.Window, error) {
	startTime, err := parseDateParam(start)
	if err != nil {
		return feed.Window{}, feed.ErrInvalidWindow
	}

	endTime, dateOnly, err := parseDateParamEnd(end)
	if err != nil {
		return feed.Window{}, feed.ErrInvalidWindow
	}
	if dateOnly {
		endTime = endTime.Add(24*time.Hour - time.Nanosecond)
	}

	window := feed.Window{Start: startTime, End: endTime}
	return window, window.Validate()
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseDateParamEnd(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", value)
	return t, err == nil, err
}
