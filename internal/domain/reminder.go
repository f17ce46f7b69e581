package domain

import "time"

const (
	ReminderTypeStuckClarification = "stuck_clarification"
	ReminderTypePRReview           = "pr_review"
	ReminderTypePROverdue          = "pr_overdue"
	ReminderTypeTaskFailed         = "task_failed"
	ReminderTypeCustom             = "custom"
)

const (
	ReminderStatusPending   = "pending"
	ReminderStatusSent      = "sent"
	ReminderStatusSnoozed   = "snoozed"
	ReminderStatusDismissed = "dismissed"
	ReminderStatusCompleted = "completed"
	ReminderStatusFailed    = "failed"
)

// Reminder is one follow-up obligation attached to one task for one user.
// Times are stored in UTC. MaxRecurrences of zero means unbounded: the
// reminder recurs until its condition stops holding.
type Reminder struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	TaskID           string         `json:"task_id"`
	Type             string         `json:"type"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Payload          map[string]any `json:"payload,omitempty"`
	ScheduledFor     time.Time      `json:"scheduled_for"`
	NextRecurrenceAt *time.Time     `json:"next_recurrence_at,omitempty"`
	SnoozeUntil      *time.Time     `json:"snooze_until,omitempty"`
	Status           string         `json:"status"`
	SentAt           *time.Time     `json:"sent_at,omitempty"`
	DismissedAt      *time.Time     `json:"dismissed_at,omitempty"`
	DismissReason    string         `json:"dismiss_reason,omitempty"`
	RecurrenceCount  int            `json:"recurrence_count"`
	MaxRecurrences   int            `json:"max_recurrences,omitempty"`
	SnoozeCount      int            `json:"snooze_count"`
	FailureCount     int            `json:"failure_count"`
	SentVia          []string       `json:"sent_via"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func ValidReminderType(s string) bool {
	switch s {
	case ReminderTypeStuckClarification, ReminderTypePRReview,
		ReminderTypePROverdue, ReminderTypeTaskFailed, ReminderTypeCustom:
		return true
	}
	return false
}

func ValidReminderStatus(s string) bool {
	switch s {
	case ReminderStatusPending, ReminderStatusSent, ReminderStatusSnoozed,
		ReminderStatusDismissed, ReminderStatusCompleted, ReminderStatusFailed:
		return true
	}
	return false
}
