package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/events"
)

// TaskEventListener auto-creates reminders on task status transitions.
// A reminder-creation failure is logged and swallowed; it must never fail
// the task transition that triggered it.
type TaskEventListener struct {
	svc *ReminderService
}

func NewTaskEventListener(svc *ReminderService) *TaskEventListener {
	return &TaskEventListener{svc: svc}
}

func (l *TaskEventListener) Register(bus *events.Bus) {
	bus.Subscribe(l.OnTaskStatusChanged)
}

func (l *TaskEventListener) OnTaskStatusChanged(_ context.Context, evt events.TaskStatusChanged) {
	if err := l.handle(evt); err != nil {
		log.Printf("failed to create reminder for task %s: %v", evt.Task.ID, err)
	}
}

func (l *TaskEventListener) handle(evt events.TaskStatusChanged) error {
	task := evt.Task
	userID := task.CreatedBy
	if userID == "" {
		userID = "unknown"
	}
	prefs, err := l.svc.GetOrCreatePreferences(userID)
	if err != nil {
		return err
	}
	now := l.svc.now().UTC()

	switch evt.NewStatus {
	case domain.TaskStatusNeedsClarification:
		if !prefs.Reminders.StuckClarification {
			return nil
		}
		questions := task.ClarificationQuestions
		if questions == nil {
			questions = []string{}
		}
		_, err := l.svc.CreateReminder(CreateReminderParams{
			UserID:         userID,
			TaskID:         task.ID,
			Type:           domain.ReminderTypeStuckClarification,
			Title:          "Task waiting for clarification: " + task.DisplayTitle(),
			ScheduledFor:   now.Add(time.Duration(prefs.Thresholds.ClarificationDelayHours) * time.Hour),
			MaxRecurrences: 7,
			Payload: map[string]any{
				"taskTitle":        task.LLMSummary,
				"taskDescription":  task.Description,
				"clarificationAge": prefs.Thresholds.ClarificationDelayHours,
				"questions":        questions,
			},
		})
		return err

	case domain.TaskStatusPROpen:
		if !prefs.Reminders.PRReviewReady {
			return nil
		}
		_, err := l.svc.CreateReminder(CreateReminderParams{
			UserID:         userID,
			TaskID:         task.ID,
			Type:           domain.ReminderTypePRReview,
			Title:          fmt.Sprintf("PR #%d ready for review", task.GithubPRNumber),
			ScheduledFor:   now,
			MaxRecurrences: 5,
			Payload: map[string]any{
				"taskTitle": task.LLMSummary,
				"prNumber":  task.GithubPRNumber,
				"prUrl":     task.GithubPRURL,
				"githubUrl": task.GithubPRURL,
			},
		})
		return err

	case domain.TaskStatusFailed:
		if !prefs.Reminders.FailedTasks {
			return nil
		}
		_, err := l.svc.CreateReminder(CreateReminderParams{
			UserID:         userID,
			TaskID:         task.ID,
			Type:           domain.ReminderTypeTaskFailed,
			Title:          "Task failed: " + task.DisplayTitle(),
			Description:    task.ErrorMessage,
			ScheduledFor:   now,
			MaxRecurrences: 3,
			Payload: map[string]any{
				"taskTitle":       task.LLMSummary,
				"taskDescription": task.Description,
				"errorMessage":    task.ErrorMessage,
			},
		})
		return err
	}
	return nil
}
