package repository

import (
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
)

// ReminderFilter narrows ListReminders. Empty fields match everything;
// set fields are ANDed.
type ReminderFilter struct {
	Status string
	Type   string
	TaskID string
}

// ReminderRepository stores reminders in UTC and returns them in UTC.
// FindDue returns reminders awaiting delivery: status pending or snoozed,
// scheduledFor at or before now, and no active snooze.
type ReminderRepository interface {
	CreateReminder(r domain.Reminder) (domain.Reminder, error)
	GetReminder(id string) (domain.Reminder, error)
	UpdateReminder(r domain.Reminder) (domain.Reminder, error)
	DeleteReminder(id string) error
	FindDue(now time.Time) ([]domain.Reminder, error)
	ListReminders(userID string, f ReminderFilter, page, limit int) ([]domain.Reminder, int, error)
	CountRemindersByStatus(userID, status string) (int, error)
	ListOverdue(userID string, now time.Time, limit int) ([]domain.Reminder, error)
}
