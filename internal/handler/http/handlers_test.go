package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/events"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/notify"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage/memory"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/usecase"
)

func newTestHandler() http.Handler {
	store := memory.New()
	svc := usecase.NewReminderService(store, store, store, notify.LogDispatcher{})
	bus := events.NewBus()
	usecase.NewTaskEventListener(svc).Register(bus)
	return New(svc, store, bus)
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateCustomReminder(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/reminders",
		`{"user_id":"alice","task_id":"t1","title":"check deploy","scheduled_for":"2026-09-02T10:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &resp)
	if resp.ID == "" {
		t.Fatal("expected id in response")
	}
	if resp.Type != domain.ReminderTypeCustom {
		t.Fatalf("expected custom type, got %s", resp.Type)
	}
	if resp.Status != domain.ReminderStatusPending {
		t.Fatalf("expected pending, got %s", resp.Status)
	}

	list := doJSON(t, h, http.MethodGet, "/api/reminders?user_id=alice", "")
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.Code)
	}
	var listed struct {
		Reminders []domain.Reminder `json:"reminders"`
		Total     int               `json:"total"`
	}
	decodeBody(t, list, &listed)
	if listed.Total != 1 || len(listed.Reminders) != 1 {
		t.Fatalf("expected one reminder, got %+v", listed)
	}
	// One-off custom reminders carry a single-send cap.
	if listed.Reminders[0].MaxRecurrences != 1 {
		t.Fatalf("expected cap 1, got %d", listed.Reminders[0].MaxRecurrences)
	}
}

func TestCreateReminderValidation(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/reminders", `{"user_id":"alice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/api/reminders", `{"user_id":"alice","bogus":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestRecurringCustomReminderUncapped(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/reminders",
		`{"user_id":"alice","task_id":"t1","title":"standup","scheduled_for":"2026-09-02T10:00:00Z","recurring":{"enabled":true}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	list := doJSON(t, h, http.MethodGet, "/api/reminders?user_id=alice", "")
	var listed struct {
		Reminders []domain.Reminder `json:"reminders"`
	}
	decodeBody(t, list, &listed)
	if len(listed.Reminders) != 1 || listed.Reminders[0].MaxRecurrences != 0 {
		t.Fatalf("expected uncapped recurring reminder, got %+v", listed.Reminders)
	}
}

func TestListRemindersRejectsBadFilter(t *testing.T) {
	h := newTestHandler()

	if rec := doJSON(t, h, http.MethodGet, "/api/reminders", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/reminders?user_id=alice&status=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/reminders?user_id=alice&type=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type, got %d", rec.Code)
	}
}

func TestSnoozeDismissLifecycle(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/reminders",
		`{"user_id":"alice","task_id":"t1","title":"check","scheduled_for":"2026-09-02T10:00:00Z"}`)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	snooze := doJSON(t, h, http.MethodPost, "/api/reminders/"+created.ID+"/snooze", `{"duration_hours":4}`)
	if snooze.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", snooze.Code, snooze.Body.String())
	}
	var snoozed struct {
		Status      string `json:"status"`
		SnoozeUntil string `json:"snooze_until"`
	}
	decodeBody(t, snooze, &snoozed)
	if snoozed.Status != domain.ReminderStatusSnoozed || snoozed.SnoozeUntil == "" {
		t.Fatalf("expected snoozed with timestamp, got %+v", snoozed)
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/reminders/"+created.ID+"/snooze", `{"duration_hours":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive duration, got %d", rec.Code)
	}

	dismiss := doJSON(t, h, http.MethodPost, "/api/reminders/"+created.ID+"/dismiss", `{"reason":"handled"}`)
	if dismiss.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", dismiss.Code)
	}
	undo := doJSON(t, h, http.MethodPost, "/api/reminders/"+created.ID+"/undo-dismiss", "")
	if undo.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", undo.Code)
	}
	var undone struct {
		Status string `json:"status"`
	}
	decodeBody(t, undo, &undone)
	if undone.Status != domain.ReminderStatusPending {
		t.Fatalf("expected pending after undo, got %s", undone.Status)
	}

	del := doJSON(t, h, http.MethodDelete, "/api/reminders/"+created.ID, "")
	if del.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.Code)
	}
}

func TestSnoozeMissingReminder(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodPost, "/api/reminders/nope/snooze", `{"duration_hours":2}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	h := newTestHandler()

	get := doJSON(t, h, http.MethodGet, "/api/reminders/preferences?user_id=alice", "")
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.Code)
	}
	var prefs domain.ReminderPreference
	decodeBody(t, get, &prefs)
	if !prefs.Channels.InApp || !prefs.Channels.Email || !prefs.Channels.Slack {
		t.Fatalf("expected default channels enabled, got %+v", prefs.Channels)
	}

	patch := doJSON(t, h, http.MethodPatch, "/api/reminders/preferences?user_id=alice",
		`{"quiet_hours":{"enabled":true,"start_time":"22:00","end_time":"07:00","timezone":"UTC"}}`)
	if patch.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", patch.Code, patch.Body.String())
	}
	var updated domain.ReminderPreference
	decodeBody(t, patch, &updated)
	if !updated.QuietHours.Enabled || updated.QuietHours.StartTime != "22:00" {
		t.Fatalf("expected quiet hours updated, got %+v", updated.QuietHours)
	}
	if !updated.Channels.Email {
		t.Fatal("expected untouched sections preserved")
	}
}

func TestTaskStatusChangeCreatesReminder(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/tasks",
		`{"created_by":"alice","description":"migrate billing","llm_summary":"Migrate billing tables"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var task domain.Task
	decodeBody(t, rec, &task)
	if task.Status != domain.TaskStatusReceived {
		t.Fatalf("expected received, got %s", task.Status)
	}

	patch := doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID+"/status",
		`{"status":"failed","error_message":"migration timeout"}`)
	if patch.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", patch.Code, patch.Body.String())
	}

	list := doJSON(t, h, http.MethodGet, "/api/reminders?user_id=alice&type=task_failed", "")
	var listed struct {
		Reminders []domain.Reminder `json:"reminders"`
		Total     int               `json:"total"`
	}
	decodeBody(t, list, &listed)
	if listed.Total != 1 {
		t.Fatalf("expected auto-created task_failed reminder, got %+v", listed)
	}
	r := listed.Reminders[0]
	if r.Title != "Task failed: Migrate billing tables" {
		t.Fatalf("unexpected title %q", r.Title)
	}
	if r.TaskID != task.ID {
		t.Fatalf("expected reminder bound to task, got %s", r.TaskID)
	}

	summary := doJSON(t, h, http.MethodGet, "/api/reminders/summary?user_id=alice", "")
	if summary.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", summary.Code)
	}
	var sum usecase.ReminderSummary
	decodeBody(t, summary, &sum)
	if sum.Pending != 1 {
		t.Fatalf("expected 1 pending in summary, got %d", sum.Pending)
	}
}

func TestUpdateTaskStatusValidation(t *testing.T) {
	h := newTestHandler()

	if rec := doJSON(t, h, http.MethodPatch, "/api/tasks/nope/status", `{"status":"failed"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing task, got %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/tasks", `{"created_by":"alice","description":"x"}`)
	var task domain.Task
	decodeBody(t, rec, &task)

	if rec := doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID+"/status", `{"status":"bogus"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", rec.Code)
	}
}

func TestDispatchedSetsTimestamp(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/tasks", `{"created_by":"alice","description":"ship"}`)
	var task domain.Task
	decodeBody(t, rec, &task)

	patch := doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID+"/status", `{"status":"dispatched"}`)
	if patch.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", patch.Code)
	}
	var updated domain.Task
	decodeBody(t, patch, &updated)
	if updated.DispatchedAt == nil {
		t.Fatal("expected dispatchedAt stamped")
	}
}
