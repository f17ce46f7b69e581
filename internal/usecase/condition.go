package usecase

import (
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
)

// typeSpec is the single table entry per reminder type: how to read the
// preference toggle, whether the triggering condition still holds against the
// live task, whether a dismissal is voided by a task change, and how the
// reminder recurs after a send. Adding a reminder type is one new entry here.
type typeSpec struct {
	enabled              func(t domain.ReminderToggles) bool
	condition            func(task domain.Task, now time.Time) bool
	changedSinceDismiss  func(task domain.Task) bool
	recurring            bool
	nextFire             func(now time.Time, th domain.ReminderThresholds) time.Time
}

const (
	clarificationStuckAfter = 24 * time.Hour
	prOverdueAfter          = 3 * 24 * time.Hour
	defaultRecurrence       = 24 * time.Hour
)

var typeSpecs = map[string]typeSpec{
	domain.ReminderTypeStuckClarification: {
		enabled: func(t domain.ReminderToggles) bool { return t.StuckClarification },
		condition: func(task domain.Task, now time.Time) bool {
			if task.Status != domain.TaskStatusNeedsClarification {
				return false
			}
			return now.Sub(task.UpdatedAt) >= clarificationStuckAfter
		},
		recurring: true,
		nextFire: func(now time.Time, _ domain.ReminderThresholds) time.Time {
			return now.Add(24 * time.Hour)
		},
	},
	domain.ReminderTypePRReview: {
		enabled: func(t domain.ReminderToggles) bool { return t.PRReviewReady },
		condition: func(task domain.Task, _ time.Time) bool {
			return task.Status == domain.TaskStatusPROpen && task.GithubPRStatus == domain.PRStatusOpen
		},
		recurring: true,
		nextFire: func(now time.Time, th domain.ReminderThresholds) time.Time {
			return now.Add(time.Duration(th.PRReviewReminderIntervalHours) * time.Hour)
		},
	},
	domain.ReminderTypePROverdue: {
		enabled: func(t domain.ReminderToggles) bool { return t.PROpenTooLong },
		condition: func(task domain.Task, now time.Time) bool {
			if task.Status != domain.TaskStatusPROpen || task.DispatchedAt == nil {
				return false
			}
			return now.Sub(*task.DispatchedAt) >= prOverdueAfter && task.GithubPRStatus == domain.PRStatusOpen
		},
		changedSinceDismiss: func(task domain.Task) bool {
			return task.Status != domain.TaskStatusPROpen
		},
		recurring: true,
		nextFire: func(now time.Time, _ domain.ReminderThresholds) time.Time {
			return now.Add(2 * 24 * time.Hour)
		},
	},
	domain.ReminderTypeTaskFailed: {
		enabled: func(t domain.ReminderToggles) bool { return t.FailedTasks },
		condition: func(task domain.Task, _ time.Time) bool {
			return task.Status == domain.TaskStatusFailed
		},
		changedSinceDismiss: func(task domain.Task) bool {
			return task.Status != domain.TaskStatusFailed
		},
	},
	domain.ReminderTypeCustom: {
		enabled: func(t domain.ReminderToggles) bool { return t.CustomReminders },
		// User-authored reminders are never auto-retired.
		condition: func(domain.Task, time.Time) bool { return true },
	},
}

// reminderTypeEnabled reports whether the user wants this reminder type at
// all. Unknown types are allowed through; conditionHolds rejects them.
func reminderTypeEnabled(prefs domain.ReminderPreference, typ string) bool {
	spec, ok := typeSpecs[typ]
	if !ok {
		return true
	}
	return spec.enabled(prefs.Reminders)
}

func conditionHolds(typ string, task domain.Task, now time.Time) bool {
	spec, ok := typeSpecs[typ]
	if !ok {
		return false
	}
	return spec.condition(task, now)
}

// conditionChangedSinceDismiss reports whether the state a dismissal was made
// against has materially moved on, voiding the dismissal.
func conditionChangedSinceDismiss(typ string, task domain.Task) bool {
	spec, ok := typeSpecs[typ]
	if !ok || spec.changedSinceDismiss == nil {
		return false
	}
	return spec.changedSinceDismiss(task)
}

func shouldRecur(typ string) bool {
	return typeSpecs[typ].recurring
}

func nextRecurrence(typ string, th domain.ReminderThresholds, now time.Time) time.Time {
	spec, ok := typeSpecs[typ]
	if !ok || spec.nextFire == nil {
		return now.Add(defaultRecurrence)
	}
	return spec.nextFire(now, th)
}
