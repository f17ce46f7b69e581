package usecase

import (
	"testing"
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
)

func TestConditionHolds(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	staleDispatch := now.Add(-4 * 24 * time.Hour)
	freshDispatch := now.Add(-time.Hour)

	tests := []struct {
		name string
		typ  string
		task domain.Task
		want bool
	}{
		{
			name: "stuck clarification after a day",
			typ:  domain.ReminderTypeStuckClarification,
			task: domain.Task{Status: domain.TaskStatusNeedsClarification, UpdatedAt: now.Add(-25 * time.Hour)},
			want: true,
		},
		{
			name: "clarification too recent",
			typ:  domain.ReminderTypeStuckClarification,
			task: domain.Task{Status: domain.TaskStatusNeedsClarification, UpdatedAt: now.Add(-23 * time.Hour)},
			want: false,
		},
		{
			name: "clarification already answered",
			typ:  domain.ReminderTypeStuckClarification,
			task: domain.Task{Status: domain.TaskStatusCoding, UpdatedAt: now.Add(-48 * time.Hour)},
			want: false,
		},
		{
			name: "pr review while open",
			typ:  domain.ReminderTypePRReview,
			task: domain.Task{Status: domain.TaskStatusPROpen, GithubPRStatus: domain.PRStatusOpen},
			want: true,
		},
		{
			name: "pr review after merge",
			typ:  domain.ReminderTypePRReview,
			task: domain.Task{Status: domain.TaskStatusMerged, GithubPRStatus: "merged"},
			want: false,
		},
		{
			name: "pr overdue past threshold",
			typ:  domain.ReminderTypePROverdue,
			task: domain.Task{Status: domain.TaskStatusPROpen, GithubPRStatus: domain.PRStatusOpen, DispatchedAt: &staleDispatch},
			want: true,
		},
		{
			name: "pr overdue too recent",
			typ:  domain.ReminderTypePROverdue,
			task: domain.Task{Status: domain.TaskStatusPROpen, GithubPRStatus: domain.PRStatusOpen, DispatchedAt: &freshDispatch},
			want: false,
		},
		{
			name: "pr overdue never dispatched",
			typ:  domain.ReminderTypePROverdue,
			task: domain.Task{Status: domain.TaskStatusPROpen, GithubPRStatus: domain.PRStatusOpen},
			want: false,
		},
		{
			name: "task failed",
			typ:  domain.ReminderTypeTaskFailed,
			task: domain.Task{Status: domain.TaskStatusFailed},
			want: true,
		},
		{
			name: "task recovered",
			typ:  domain.ReminderTypeTaskFailed,
			task: domain.Task{Status: domain.TaskStatusCoding},
			want: false,
		},
		{
			name: "custom always holds",
			typ:  domain.ReminderTypeCustom,
			task: domain.Task{Status: domain.TaskStatusMerged},
			want: true,
		},
		{
			name: "unknown type never holds",
			typ:  "mystery",
			task: domain.Task{Status: domain.TaskStatusFailed},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conditionHolds(tt.typ, tt.task, now); got != tt.want {
				t.Fatalf("conditionHolds(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestConditionChangedSinceDismiss(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		task domain.Task
		want bool
	}{
		{"pr overdue still open", domain.ReminderTypePROverdue, domain.Task{Status: domain.TaskStatusPROpen}, false},
		{"pr overdue merged", domain.ReminderTypePROverdue, domain.Task{Status: domain.TaskStatusMerged}, true},
		{"failed task still failed", domain.ReminderTypeTaskFailed, domain.Task{Status: domain.TaskStatusFailed}, false},
		{"failed task retried", domain.ReminderTypeTaskFailed, domain.Task{Status: domain.TaskStatusDispatched}, true},
		{"types without change detection stay dismissed", domain.ReminderTypePRReview, domain.Task{Status: domain.TaskStatusMerged}, false},
		{"unknown type stays dismissed", "mystery", domain.Task{Status: domain.TaskStatusMerged}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conditionChangedSinceDismiss(tt.typ, tt.task); got != tt.want {
				t.Fatalf("conditionChangedSinceDismiss(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestReminderTypeEnabled(t *testing.T) {
	prefs := domain.DefaultPreferences("u1")
	prefs.Reminders.FailedTasks = false

	if reminderTypeEnabled(prefs, domain.ReminderTypeTaskFailed) {
		t.Fatal("expected disabled toggle to be honored")
	}
	if !reminderTypeEnabled(prefs, domain.ReminderTypePRReview) {
		t.Fatal("expected enabled toggle to pass")
	}
	if !reminderTypeEnabled(prefs, "mystery") {
		t.Fatal("expected unknown type to pass the toggle gate")
	}
}

func TestNextRecurrence(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	th := domain.DefaultPreferences("u1").Thresholds

	if got := nextRecurrence(domain.ReminderTypePRReview, th, now); !got.Equal(now.Add(48 * time.Hour)) {
		t.Fatalf("pr_review: got %v", got)
	}
	if got := nextRecurrence(domain.ReminderTypePROverdue, th, now); !got.Equal(now.Add(2 * 24 * time.Hour)) {
		t.Fatalf("pr_overdue: got %v", got)
	}
	if got := nextRecurrence(domain.ReminderTypeStuckClarification, th, now); !got.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("stuck_clarification: got %v", got)
	}
	if got := nextRecurrence("mystery", th, now); !got.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unknown type should fall back to a day: got %v", got)
	}
}

func TestShouldRecur(t *testing.T) {
	if !shouldRecur(domain.ReminderTypePRReview) {
		t.Fatal("pr_review should recur")
	}
	if shouldRecur(domain.ReminderTypeTaskFailed) {
		t.Fatal("task_failed should not recur on its own")
	}
	if shouldRecur(domain.ReminderTypeCustom) {
		t.Fatal("custom reminders recur only via an explicit cap")
	}
	if shouldRecur("mystery") {
		t.Fatal("unknown types should not recur")
	}
}
