package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/repository"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage"
)

// maxSendFailures is how many dispatch failures a reminder survives before it
// is parked as failed. Retries happen across poll cycles, not in-line.
const maxSendFailures = 3

// Dispatcher hands a reminder notification to the delivery side. Any error
// counts as a failed attempt; the engine does not inspect it further.
type Dispatcher interface {
	SendNotification(ctx context.Context, userID, eventKey string, payload map[string]any) error
}

type CreateReminderParams struct {
	UserID         string
	TaskID         string
	Type           string
	Title          string
	Description    string
	ScheduledFor   time.Time
	MaxRecurrences int
	Payload        map[string]any
}

type OverdueReminder struct {
	TaskID       string `json:"task_id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	OverdueSince string `json:"overdue_since"`
	Link         string `json:"link"`
}

type ReminderSummary struct {
	Pending int               `json:"pending"`
	Snoozed int               `json:"snoozed"`
	Overdue []OverdueReminder `json:"overdue"`
}

// PreferenceUpdate is a partial preference change; nil sections are left as
// they are. Whole sections are replaced, last writer wins.
type PreferenceUpdate struct {
	Channels   *domain.ReminderChannels   `json:"channels"`
	Reminders  *domain.ReminderToggles    `json:"reminders"`
	Thresholds *domain.ReminderThresholds `json:"thresholds"`
	Digest     *domain.DigestSettings     `json:"digest"`
	QuietHours *domain.QuietHours         `json:"quiet_hours"`
}

// ReminderService owns the reminder lifecycle: creation, the send transition,
// snooze/dismiss/undo/delete, listing and preference management. It performs
// no scheduling of its own; an external poller drives FindPending and
// SendReminder.
type ReminderService struct {
	reminders  repository.ReminderRepository
	prefs      repository.PreferenceRepository
	tasks      repository.TaskProvider
	dispatcher Dispatcher
	now        func() time.Time
}

func NewReminderService(
	reminders repository.ReminderRepository,
	prefs repository.PreferenceRepository,
	tasks repository.TaskProvider,
	dispatcher Dispatcher,
) *ReminderService {
	return &ReminderService{
		reminders:  reminders,
		prefs:      prefs,
		tasks:      tasks,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

func (s *ReminderService) CreateReminder(p CreateReminderParams) (domain.Reminder, error) {
	log.Printf("creating reminder: %s for user %s, task %s", p.Type, p.UserID, p.TaskID)
	payload := p.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return s.reminders.CreateReminder(domain.Reminder{
		UserID:         p.UserID,
		TaskID:         p.TaskID,
		Type:           p.Type,
		Title:          p.Title,
		Description:    p.Description,
		Payload:        payload,
		ScheduledFor:   p.ScheduledFor.UTC(),
		MaxRecurrences: p.MaxRecurrences,
		Status:         domain.ReminderStatusPending,
		SentVia:        []string{},
	})
}

// FindPending returns the reminders a poller should send right now.
func (s *ReminderService) FindPending() ([]domain.Reminder, error) {
	return s.reminders.FindDue(s.now().UTC())
}

// SendReminder performs the core state transition. A missing id is a silent
// no-op: the poller may hold a stale id after a concurrent delete. Errors
// from the dispatcher are absorbed into the failure count and returned so
// the caller can log them; the reminder stays pending until the count hits
// maxSendFailures.
func (s *ReminderService) SendReminder(ctx context.Context, id string) error {
	r, err := s.reminders.GetReminder(id)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("reminder %s not found, skipping", id)
		return nil
	}
	if err != nil {
		return err
	}

	valid, err := s.evaluate(&r)
	if err != nil {
		return err
	}
	if !valid {
		log.Printf("reminder %s no longer valid", id)
		_, err := s.reminders.UpdateReminder(r)
		return err
	}

	prefs, err := s.GetOrCreatePreferences(r.UserID)
	if err != nil {
		return err
	}
	if !reminderTypeEnabled(prefs, r.Type) {
		log.Printf("reminder type %s disabled for user %s", r.Type, r.UserID)
		r.Status = domain.ReminderStatusCompleted
		_, err := s.reminders.UpdateReminder(r)
		return err
	}
	// Inside quiet hours the reminder is left untouched; the next poll
	// retries once the window ends.
	if InQuietHours(prefs.QuietHours, s.now()) {
		log.Printf("user %s in quiet hours, holding reminder %s", r.UserID, id)
		return nil
	}

	payload := make(map[string]any, len(r.Payload)+4)
	for k, v := range r.Payload {
		payload[k] = v
	}
	payload["taskId"] = r.TaskID
	payload["reminderId"] = r.ID
	payload["reminderTitle"] = r.Title
	payload["reminderDescription"] = r.Description

	if err := s.dispatcher.SendNotification(ctx, r.UserID, "reminder_"+r.Type, payload); err != nil {
		log.Printf("failed to send reminder %s: %v", id, err)
		r.FailureCount++
		if r.FailureCount >= maxSendFailures {
			r.Status = domain.ReminderStatusFailed
		}
		if _, uerr := s.reminders.UpdateReminder(r); uerr != nil {
			return uerr
		}
		return fmt.Errorf("send reminder %s: %w", id, err)
	}

	now := s.now().UTC()
	r.Status = domain.ReminderStatusSent
	r.SentAt = &now
	r.RecurrenceCount++
	r.SentVia = enabledChannels(prefs.Channels)

	switch {
	case r.MaxRecurrences > 0 && r.RecurrenceCount >= r.MaxRecurrences:
		r.Status = domain.ReminderStatusCompleted
		r.NextRecurrenceAt = nil
	case shouldRecur(r.Type):
		next := nextRecurrence(r.Type, prefs.Thresholds, now)
		r.NextRecurrenceAt = &next
		r.ScheduledFor = next
		r.Status = domain.ReminderStatusPending
	default:
		r.Status = domain.ReminderStatusCompleted
	}

	if _, err := s.reminders.UpdateReminder(r); err != nil {
		return err
	}
	log.Printf("reminder %s sent (%s)", id, r.Type)
	return nil
}

// evaluate re-checks a reminder against the live task, mutating it in place:
// a vanished task or a false condition marks it completed, an expired snooze
// is cleared, and a dismissal is cleared when the dismissed-against state has
// materially changed. The caller persists whatever was mutated.
func (s *ReminderService) evaluate(r *domain.Reminder) (bool, error) {
	task, err := s.tasks.GetTask(r.TaskID)
	if errors.Is(err, storage.ErrNotFound) {
		r.Status = domain.ReminderStatusCompleted
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if r.DismissedAt != nil {
		if !conditionChangedSinceDismiss(r.Type, task) {
			return false, nil
		}
		r.DismissedAt = nil
	}

	now := s.now().UTC()
	if r.SnoozeUntil != nil {
		if r.SnoozeUntil.After(now) {
			return false, nil
		}
		r.SnoozeUntil = nil
		r.Status = domain.ReminderStatusPending
	}

	if !conditionHolds(r.Type, task, now) {
		r.Status = domain.ReminderStatusCompleted
		return false, nil
	}
	return true, nil
}

func (s *ReminderService) SnoozeReminder(id string, durationHours int) (domain.Reminder, error) {
	r, err := s.reminders.GetReminder(id)
	if err != nil {
		return domain.Reminder{}, err
	}
	now := s.now().UTC()
	until := now.Add(time.Duration(durationHours) * time.Hour)
	r.Status = domain.ReminderStatusSnoozed
	r.SnoozeUntil = &until
	r.SnoozeCount++
	r, err = s.reminders.UpdateReminder(r)
	if err != nil {
		return domain.Reminder{}, err
	}

	prefs, err := s.GetOrCreatePreferences(r.UserID)
	if err != nil {
		return domain.Reminder{}, err
	}
	prefs.SnoozedReminders = append(prefs.SnoozedReminders, domain.SnoozeRecord{
		ReminderID:          id,
		SnoozedAt:           now,
		SnoozeDurationHours: durationHours,
		SnoozedUntil:        until,
	})
	if _, err := s.prefs.SavePreferences(prefs); err != nil {
		return domain.Reminder{}, err
	}
	log.Printf("reminder %s snoozed until %s", id, until.Format(time.RFC3339))
	return r, nil
}

func (s *ReminderService) DismissReminder(id, reason string) (domain.Reminder, error) {
	r, err := s.reminders.GetReminder(id)
	if err != nil {
		return domain.Reminder{}, err
	}
	now := s.now().UTC()
	r.Status = domain.ReminderStatusDismissed
	r.DismissedAt = &now
	r.DismissReason = reason
	r, err = s.reminders.UpdateReminder(r)
	if err != nil {
		return domain.Reminder{}, err
	}
	log.Printf("reminder %s dismissed", id)
	return r, nil
}

// UndoDismiss trusts the explicit user action; the condition is not
// re-checked until the next send attempt.
func (s *ReminderService) UndoDismiss(id string) (domain.Reminder, error) {
	r, err := s.reminders.GetReminder(id)
	if err != nil {
		return domain.Reminder{}, err
	}
	r.Status = domain.ReminderStatusPending
	r.DismissedAt = nil
	r.DismissReason = ""
	r, err = s.reminders.UpdateReminder(r)
	if err != nil {
		return domain.Reminder{}, err
	}
	log.Printf("reminder %s dismiss undone", id)
	return r, nil
}

func (s *ReminderService) DeleteReminder(id string) error {
	if err := s.reminders.DeleteReminder(id); err != nil {
		return err
	}
	log.Printf("reminder %s deleted", id)
	return nil
}

func (s *ReminderService) GetReminders(userID string, f repository.ReminderFilter, page, limit int) ([]domain.Reminder, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.reminders.ListReminders(userID, f, page, limit)
}

func (s *ReminderService) GetReminderSummary(userID string) (ReminderSummary, error) {
	pending, err := s.reminders.CountRemindersByStatus(userID, domain.ReminderStatusPending)
	if err != nil {
		return ReminderSummary{}, err
	}
	snoozed, err := s.reminders.CountRemindersByStatus(userID, domain.ReminderStatusSnoozed)
	if err != nil {
		return ReminderSummary{}, err
	}
	now := s.now().UTC()
	overdue, err := s.reminders.ListOverdue(userID, now, 5)
	if err != nil {
		return ReminderSummary{}, err
	}
	summary := ReminderSummary{
		Pending: pending,
		Snoozed: snoozed,
		Overdue: make([]OverdueReminder, 0, len(overdue)),
	}
	for _, r := range overdue {
		summary.Overdue = append(summary.Overdue, OverdueReminder{
			TaskID:       r.TaskID,
			Title:        r.Title,
			Type:         r.Type,
			OverdueSince: formatOverdue(now.Sub(r.ScheduledFor)),
			Link:         "/tasks/" + r.TaskID,
		})
	}
	return summary, nil
}

func (s *ReminderService) GetOrCreatePreferences(userID string) (domain.ReminderPreference, error) {
	prefs, err := s.prefs.GetPreferences(userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return domain.ReminderPreference{}, err
	}
	return s.prefs.SavePreferences(domain.DefaultPreferences(userID))
}

func (s *ReminderService) UpdatePreferences(userID string, upd PreferenceUpdate) (domain.ReminderPreference, error) {
	prefs, err := s.GetOrCreatePreferences(userID)
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	if upd.Channels != nil {
		prefs.Channels = *upd.Channels
	}
	if upd.Reminders != nil {
		prefs.Reminders = *upd.Reminders
	}
	if upd.Thresholds != nil {
		prefs.Thresholds = *upd.Thresholds
	}
	if upd.Digest != nil {
		prefs.Digest = *upd.Digest
	}
	if upd.QuietHours != nil {
		prefs.QuietHours = *upd.QuietHours
	}
	return s.prefs.SavePreferences(prefs)
}

func enabledChannels(c domain.ReminderChannels) []string {
	channels := []string{}
	if c.InApp {
		channels = append(channels, domain.ChannelInApp)
	}
	if c.Email {
		channels = append(channels, domain.ChannelEmail)
	}
	if c.Slack {
		channels = append(channels, domain.ChannelSlack)
	}
	return channels
}

func formatOverdue(d time.Duration) string {
	hours := int(d.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", hours/24)
}
