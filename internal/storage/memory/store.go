package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/repository"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage"
)

// Store keeps reminders, preferences and tasks in process memory. It backs
// the default configuration and the test suite.
type Store struct {
	mu        sync.RWMutex
	reminders map[string]domain.Reminder
	prefs     map[string]domain.ReminderPreference
	tasks     map[string]domain.Task
}

func New() *Store {
	return &Store{
		reminders: make(map[string]domain.Reminder),
		prefs:     make(map[string]domain.ReminderPreference),
		tasks:     make(map[string]domain.Task),
	}
}

func (s *Store) CreateReminder(r domain.Reminder) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.reminders[r.ID] = cloneReminder(r)
	return r, nil
}

func (s *Store) GetReminder(id string) (domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reminders[id]
	if !ok {
		return domain.Reminder{}, storage.ErrNotFound
	}
	return cloneReminder(r), nil
}

func (s *Store) UpdateReminder(r domain.Reminder) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders[r.ID]; !ok {
		return domain.Reminder{}, storage.ErrNotFound
	}
	r.UpdatedAt = time.Now().UTC()
	s.reminders[r.ID] = cloneReminder(r)
	return r, nil
}

// DeleteReminder is idempotent: deleting an absent id is not an error.
func (s *Store) DeleteReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reminders, id)
	return nil
}

func (s *Store) FindDue(now time.Time) ([]domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.Reminder
	for _, r := range s.reminders {
		if r.Status != domain.ReminderStatusPending && r.Status != domain.ReminderStatusSnoozed {
			continue
		}
		if r.ScheduledFor.After(now) {
			continue
		}
		if r.SnoozeUntil != nil && r.SnoozeUntil.After(now) {
			continue
		}
		res = append(res, cloneReminder(r))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ScheduledFor.Before(res[j].ScheduledFor) })
	return res, nil
}

func (s *Store) ListReminders(userID string, f repository.ReminderFilter, page, limit int) ([]domain.Reminder, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.Reminder
	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.TaskID != "" && r.TaskID != f.TaskID {
			continue
		}
		matched = append(matched, cloneReminder(r))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ScheduledFor.After(matched[j].ScheduledFor) })
	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Reminder{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) CountRemindersByStatus(userID, status string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.reminders {
		if r.UserID == userID && r.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListOverdue(userID string, now time.Time, limit int) ([]domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.Reminder
	for _, r := range s.reminders {
		if r.UserID != userID || r.Status != domain.ReminderStatusPending {
			continue
		}
		if !r.ScheduledFor.Before(now) {
			continue
		}
		res = append(res, cloneReminder(r))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ScheduledFor.Before(res[j].ScheduledFor) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *Store) GetPreferences(userID string) (domain.ReminderPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return domain.ReminderPreference{}, storage.ErrNotFound
	}
	return clonePreference(p), nil
}

func (s *Store) SavePreferences(p domain.ReminderPreference) (domain.ReminderPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := s.prefs[p.UserID]; ok {
		p.CreatedAt = prev.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.prefs[p.UserID] = clonePreference(p)
	return p, nil
}

func (s *Store) GetTask(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, storage.ErrNotFound
	}
	return cloneTask(t), nil
}

func (s *Store) CreateTask(t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = domain.TaskStatusReceived
	}
	s.tasks[t.ID] = cloneTask(t)
	return t, nil
}

func (s *Store) UpdateTask(t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.tasks[t.ID]
	if !ok {
		return domain.Task{}, storage.ErrNotFound
	}
	t.CreatedAt = prev.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.tasks[t.ID] = cloneTask(t)
	return t, nil
}

func cloneReminder(r domain.Reminder) domain.Reminder {
	if r.Payload != nil {
		p := make(map[string]any, len(r.Payload))
		for k, v := range r.Payload {
			p[k] = v
		}
		r.Payload = p
	}
	if r.SentVia != nil {
		r.SentVia = append([]string(nil), r.SentVia...)
	}
	r.NextRecurrenceAt = cloneTime(r.NextRecurrenceAt)
	r.SnoozeUntil = cloneTime(r.SnoozeUntil)
	r.SentAt = cloneTime(r.SentAt)
	r.DismissedAt = cloneTime(r.DismissedAt)
	return r
}

func clonePreference(p domain.ReminderPreference) domain.ReminderPreference {
	p.SnoozedReminders = append([]domain.SnoozeRecord(nil), p.SnoozedReminders...)
	p.Digest.Categories = append([]string(nil), p.Digest.Categories...)
	return p
}

func cloneTask(t domain.Task) domain.Task {
	if t.ClarificationQuestions != nil {
		t.ClarificationQuestions = append([]string(nil), t.ClarificationQuestions...)
	}
	t.DispatchedAt = cloneTime(t.DispatchedAt)
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tt := *t
	return &tt
}
