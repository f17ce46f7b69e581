package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/events"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/repository"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/usecase"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/pkg/response"
)

// Reminders is the slice of the lifecycle engine the API layer consumes.
type Reminders interface {
	CreateReminder(p usecase.CreateReminderParams) (domain.Reminder, error)
	GetReminders(userID string, f repository.ReminderFilter, page, limit int) ([]domain.Reminder, int, error)
	GetReminderSummary(userID string) (usecase.ReminderSummary, error)
	GetOrCreatePreferences(userID string) (domain.ReminderPreference, error)
	UpdatePreferences(userID string, upd usecase.PreferenceUpdate) (domain.ReminderPreference, error)
	SnoozeReminder(id string, durationHours int) (domain.Reminder, error)
	DismissReminder(id, reason string) (domain.Reminder, error)
	UndoDismiss(id string) (domain.Reminder, error)
	DeleteReminder(id string) error
}

type Handler struct {
	mux       *http.ServeMux
	reminders Reminders
	tasks     repository.TaskRepository
	bus       *events.Bus
}

func New(reminders Reminders, tasks repository.TaskRepository, bus *events.Bus) http.Handler {
	h := &Handler{
		mux:       http.NewServeMux(),
		reminders: reminders,
		tasks:     tasks,
		bus:       bus,
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("GET /api/reminders", h.listReminders)
	h.mux.HandleFunc("POST /api/reminders", h.createReminder)
	h.mux.HandleFunc("GET /api/reminders/summary", h.reminderSummary)
	h.mux.HandleFunc("GET /api/reminders/preferences", h.preferences)
	h.mux.HandleFunc("PATCH /api/reminders/preferences", h.updatePreferences)
	h.mux.HandleFunc("POST /api/reminders/{id}/snooze", h.snoozeReminder)
	h.mux.HandleFunc("POST /api/reminders/{id}/dismiss", h.dismissReminder)
	h.mux.HandleFunc("POST /api/reminders/{id}/undo-dismiss", h.undoDismiss)
	h.mux.HandleFunc("DELETE /api/reminders/{id}", h.deleteReminder)
	h.mux.HandleFunc("POST /api/tasks", h.createTask)
	h.mux.HandleFunc("PATCH /api/tasks/{id}/status", h.updateTaskStatus)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

func (h *Handler) listReminders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id")
		return
	}
	f := repository.ReminderFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
		TaskID: r.URL.Query().Get("task_id"),
	}
	if f.Status != "" && !domain.ValidReminderStatus(f.Status) {
		writeError(w, http.StatusBadRequest, "status")
		return
	}
	if f.Type != "" && !domain.ValidReminderType(f.Type) {
		writeError(w, http.StatusBadRequest, "type")
		return
	}
	page := intQuery(r, "page", 1)
	limit := intQuery(r, "limit", 20)
	items, total, err := h.reminders.GetReminders(userID, f, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"reminders": items,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (h *Handler) createReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string         `json:"user_id"`
		TaskID       string         `json:"task_id"`
		Title        string         `json:"title"`
		Description  string         `json:"description"`
		ScheduledFor time.Time      `json:"scheduled_for"`
		Recurring    *struct {
			Enabled bool `json:"enabled"`
		} `json:"recurring"`
		Channels []string `json:"channels"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if req.UserID == "" || req.TaskID == "" || req.Title == "" || req.ScheduledFor.IsZero() {
		writeError(w, http.StatusBadRequest, "user_id/task_id/title/scheduled_for")
		return
	}
	// One-off custom reminders complete after one send.
	maxRecurrences := 1
	if req.Recurring != nil && req.Recurring.Enabled {
		maxRecurrences = 0
	}
	item, err := h.reminders.CreateReminder(usecase.CreateReminderParams{
		UserID:         req.UserID,
		TaskID:         req.TaskID,
		Type:           domain.ReminderTypeCustom,
		Title:          req.Title,
		Description:    req.Description,
		ScheduledFor:   req.ScheduledFor,
		MaxRecurrences: maxRecurrences,
		Payload: map[string]any{
			"channels": req.Channels,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"id":            item.ID,
		"task_id":       item.TaskID,
		"type":          item.Type,
		"title":         item.Title,
		"status":        item.Status,
		"scheduled_for": item.ScheduledFor,
	})
}

func (h *Handler) reminderSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id")
		return
	}
	summary, err := h.reminders.GetReminderSummary(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id")
		return
	}
	prefs, err := h.reminders.GetOrCreatePreferences(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, prefs)
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id")
		return
	}
	var upd usecase.PreferenceUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	prefs, err := h.reminders.UpdatePreferences(userID, upd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, prefs)
}

func (h *Handler) snoozeReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		DurationHours int `json:"duration_hours"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if req.DurationHours <= 0 {
		writeError(w, http.StatusBadRequest, "duration_hours")
		return
	}
	item, err := h.reminders.SnoozeReminder(id, req.DurationHours)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"id":           item.ID,
		"status":       item.Status,
		"snooze_until": item.SnoozeUntil,
	})
}

func (h *Handler) dismissReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "json")
			return
		}
	}
	item, err := h.reminders.DismissReminder(id, req.Reason)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"id":           item.ID,
		"status":       item.Status,
		"dismissed_at": item.DismissedAt,
	})
}

func (h *Handler) undoDismiss(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	item, err := h.reminders.UndoDismiss(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"id":           item.ID,
		"status":       item.Status,
		"dismissed_at": item.DismissedAt,
	})
}

func (h *Handler) deleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.reminders.DeleteReminder(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatedBy      string   `json:"created_by"`
		Description    string   `json:"description"`
		LLMSummary     string   `json:"llm_summary"`
		GithubPRNumber int      `json:"github_pr_number"`
		GithubPRURL    string   `json:"github_pr_url"`
		GithubPRStatus string   `json:"github_pr_status"`
		Questions      []string `json:"clarification_questions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if req.CreatedBy == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "created_by/description")
		return
	}
	item, err := h.tasks.CreateTask(domain.Task{
		Status:                 domain.TaskStatusReceived,
		Description:            req.Description,
		LLMSummary:             req.LLMSummary,
		CreatedBy:              req.CreatedBy,
		GithubPRNumber:         req.GithubPRNumber,
		GithubPRURL:            req.GithubPRURL,
		GithubPRStatus:         req.GithubPRStatus,
		ClarificationQuestions: req.Questions,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if !domain.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status")
		return
	}
	item, err := h.tasks.GetTask(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	item.Status = req.Status
	if req.ErrorMessage != "" {
		item.ErrorMessage = req.ErrorMessage
	}
	if req.Status == domain.TaskStatusDispatched && item.DispatchedAt == nil {
		now := time.Now().UTC()
		item.DispatchedAt = &now
	}
	item, err = h.tasks.UpdateTask(item)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	h.bus.Publish(context.WithoutCancel(r.Context()), events.TaskStatusChanged{
		Task:      item,
		NewStatus: req.Status,
	})
	response.JSON(w, http.StatusOK, item)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data")
	}
	return nil
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeError(w http.ResponseWriter, code int, msg string) {
	response.JSON(w, code, map[string]string{"error": msg})
}
