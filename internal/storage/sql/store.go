package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/repository"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage"
)

const reminderColumns = `id, user_id, task_id, type, title, description, payload,
		scheduled_for, next_recurrence_at, snooze_until, status, sent_at,
		dismissed_at, dismiss_reason, recurrence_count, max_recurrences,
		snooze_count, failure_count, sent_via, created_at, updated_at`

type Store struct {
	db *sql.DB
}

func New(driver, dsn string) *Store {
	var db *sql.DB
	if driver != "" && dsn != "" {
		db, _ = sql.Open(driver, dsn)
	}
	return &Store{db: db}
}

func (s *Store) CreateReminder(r domain.Reminder) (domain.Reminder, error) {
	if s.db == nil {
		return domain.Reminder{}, errors.New("db")
	}
	r.ID = uuid.NewString()
	payload, err := json.Marshal(orEmptyMap(r.Payload))
	if err != nil {
		return domain.Reminder{}, err
	}
	sentVia, err := json.Marshal(orEmptySlice(r.SentVia))
	if err != nil {
		return domain.Reminder{}, err
	}
	row := s.db.QueryRow(`
		insert into reminders(id, user_id, task_id, type, title, description,
			payload, scheduled_for, next_recurrence_at, snooze_until, status,
			recurrence_count, max_recurrences, snooze_count, failure_count, sent_via)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		returning created_at, updated_at`,
		r.ID,
		r.UserID,
		r.TaskID,
		r.Type,
		r.Title,
		r.Description,
		payload,
		r.ScheduledFor,
		r.NextRecurrenceAt,
		r.SnoozeUntil,
		r.Status,
		r.RecurrenceCount,
		r.MaxRecurrences,
		r.SnoozeCount,
		r.FailureCount,
		sentVia,
	)
	if err := row.Scan(&r.CreatedAt, &r.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Reminder{}, storage.ErrNotFound
		}
		return domain.Reminder{}, err
	}
	return r, nil
}

func (s *Store) GetReminder(id string) (domain.Reminder, error) {
	if s.db == nil {
		return domain.Reminder{}, errors.New("db")
	}
	row := s.db.QueryRow(`
		select `+reminderColumns+`
		from reminders
		where id = $1`,
		id,
	)
	r, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reminder{}, storage.ErrNotFound
		}
		return domain.Reminder{}, err
	}
	return r, nil
}

func (s *Store) UpdateReminder(r domain.Reminder) (domain.Reminder, error) {
	if s.db == nil {
		return domain.Reminder{}, errors.New("db")
	}
	payload, err := json.Marshal(orEmptyMap(r.Payload))
	if err != nil {
		return domain.Reminder{}, err
	}
	sentVia, err := json.Marshal(orEmptySlice(r.SentVia))
	if err != nil {
		return domain.Reminder{}, err
	}
	row := s.db.QueryRow(`
		update reminders
		set title = $1,
			description = $2,
			payload = $3,
			scheduled_for = $4,
			next_recurrence_at = $5,
			snooze_until = $6,
			status = $7,
			sent_at = $8,
			dismissed_at = $9,
			dismiss_reason = $10,
			recurrence_count = $11,
			max_recurrences = $12,
			snooze_count = $13,
			failure_count = $14,
			sent_via = $15,
			updated_at = now()
		where id = $16
		returning updated_at`,
		r.Title,
		r.Description,
		payload,
		r.ScheduledFor,
		r.NextRecurrenceAt,
		r.SnoozeUntil,
		r.Status,
		r.SentAt,
		r.DismissedAt,
		r.DismissReason,
		r.RecurrenceCount,
		r.MaxRecurrences,
		r.SnoozeCount,
		r.FailureCount,
		sentVia,
		r.ID,
	)
	if err := row.Scan(&r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reminder{}, storage.ErrNotFound
		}
		return domain.Reminder{}, err
	}
	return r, nil
}

func (s *Store) DeleteReminder(id string) error {
	if s.db == nil {
		return errors.New("db")
	}
	_, err := s.db.Exec(`delete from reminders where id = $1`, id)
	return err
}

func (s *Store) FindDue(now time.Time) ([]domain.Reminder, error) {
	if s.db == nil {
		return nil, errors.New("db")
	}
	rows, err := s.db.Query(`
		select `+reminderColumns+`
		from reminders
		where status in ('pending', 'snoozed')
			and scheduled_for <= $1
			and (snooze_until is null or snooze_until <= $1)
		order by scheduled_for`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (s *Store) ListReminders(userID string, f repository.ReminderFilter, page, limit int) ([]domain.Reminder, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("db")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	where := `user_id = $1
			and ($2 = '' or status = $2)
			and ($3 = '' or type = $3)
			and ($4 = '' or task_id = $4)`
	var total int
	row := s.db.QueryRow(`select count(*) from reminders where `+where,
		userID, f.Status, f.Type, f.TaskID)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`
		select `+reminderColumns+`
		from reminders
		where `+where+`
		order by scheduled_for desc
		offset $5 limit $6`,
		userID, f.Status, f.Type, f.TaskID, (page-1)*limit, limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	res, err := collectReminders(rows)
	if err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

func (s *Store) CountRemindersByStatus(userID, status string) (int, error) {
	if s.db == nil {
		return 0, errors.New("db")
	}
	var n int
	row := s.db.QueryRow(`select count(*) from reminders where user_id = $1 and status = $2`,
		userID, status)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) ListOverdue(userID string, now time.Time, limit int) ([]domain.Reminder, error) {
	if s.db == nil {
		return nil, errors.New("db")
	}
	rows, err := s.db.Query(`
		select `+reminderColumns+`
		from reminders
		where user_id = $1 and status = 'pending' and scheduled_for < $2
		order by scheduled_for
		limit $3`,
		userID, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (s *Store) GetPreferences(userID string) (domain.ReminderPreference, error) {
	if s.db == nil {
		return domain.ReminderPreference{}, errors.New("db")
	}
	var p domain.ReminderPreference
	var channels, toggles, thresholds, digest, quietHours, snoozed []byte
	row := s.db.QueryRow(`
		select user_id, channels, reminders, thresholds, digest, quiet_hours,
			snoozed_reminders, created_at, updated_at
		from reminder_preferences
		where user_id = $1`,
		userID,
	)
	err := row.Scan(&p.UserID, &channels, &toggles, &thresholds, &digest,
		&quietHours, &snoozed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReminderPreference{}, storage.ErrNotFound
		}
		return domain.ReminderPreference{}, err
	}
	for _, part := range []struct {
		raw []byte
		dst any
	}{
		{channels, &p.Channels},
		{toggles, &p.Reminders},
		{thresholds, &p.Thresholds},
		{digest, &p.Digest},
		{quietHours, &p.QuietHours},
		{snoozed, &p.SnoozedReminders},
	} {
		if err := json.Unmarshal(part.raw, part.dst); err != nil {
			return domain.ReminderPreference{}, err
		}
	}
	return p, nil
}

func (s *Store) SavePreferences(p domain.ReminderPreference) (domain.ReminderPreference, error) {
	if s.db == nil {
		return domain.ReminderPreference{}, errors.New("db")
	}
	channels, err := json.Marshal(p.Channels)
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	toggles, err := json.Marshal(p.Reminders)
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	thresholds, err := json.Marshal(p.Thresholds)
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	digest, err := json.Marshal(p.Digest)
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	quietHours, err := json.Marshal(p.QuietHours)
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	snoozed, err := json.Marshal(orEmptySnoozes(p.SnoozedReminders))
	if err != nil {
		return domain.ReminderPreference{}, err
	}
	row := s.db.QueryRow(`
		insert into reminder_preferences(user_id, channels, reminders, thresholds,
			digest, quiet_hours, snoozed_reminders)
		values ($1, $2, $3, $4, $5, $6, $7)
		on conflict (user_id) do update
		set channels = excluded.channels,
			reminders = excluded.reminders,
			thresholds = excluded.thresholds,
			digest = excluded.digest,
			quiet_hours = excluded.quiet_hours,
			snoozed_reminders = excluded.snoozed_reminders,
			updated_at = now()
		returning created_at, updated_at`,
		p.UserID, channels, toggles, thresholds, digest, quietHours, snoozed,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.ReminderPreference{}, err
	}
	return p, nil
}

func (s *Store) GetTask(id string) (domain.Task, error) {
	if s.db == nil {
		return domain.Task{}, errors.New("db")
	}
	var t domain.Task
	var description, summary, errMsg, createdBy, prURL, prStatus sql.NullString
	var prNumber sql.NullInt64
	var questions []byte
	var dispatchedAt sql.NullTime
	row := s.db.QueryRow(`
		select id, status, description, llm_summary, error_message, created_by,
			github_pr_number, github_pr_url, github_pr_status,
			clarification_questions, dispatched_at, created_at, updated_at
		from tasks
		where id = $1`,
		id,
	)
	err := row.Scan(&t.ID, &t.Status, &description, &summary, &errMsg,
		&createdBy, &prNumber, &prURL, &prStatus, &questions, &dispatchedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, storage.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Description = description.String
	t.LLMSummary = summary.String
	t.ErrorMessage = errMsg.String
	t.CreatedBy = createdBy.String
	t.GithubPRNumber = int(prNumber.Int64)
	t.GithubPRURL = prURL.String
	t.GithubPRStatus = prStatus.String
	if questions != nil {
		if err := json.Unmarshal(questions, &t.ClarificationQuestions); err != nil {
			return domain.Task{}, err
		}
	}
	if dispatchedAt.Valid {
		t.DispatchedAt = &dispatchedAt.Time
	}
	return t, nil
}

func (s *Store) CreateTask(t domain.Task) (domain.Task, error) {
	if s.db == nil {
		return domain.Task{}, errors.New("db")
	}
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = domain.TaskStatusReceived
	}
	questions, err := json.Marshal(orEmptySlice(t.ClarificationQuestions))
	if err != nil {
		return domain.Task{}, err
	}
	row := s.db.QueryRow(`
		insert into tasks(id, status, description, llm_summary, error_message,
			created_by, github_pr_number, github_pr_url, github_pr_status,
			clarification_questions, dispatched_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning created_at, updated_at`,
		t.ID,
		t.Status,
		t.Description,
		t.LLMSummary,
		t.ErrorMessage,
		t.CreatedBy,
		t.GithubPRNumber,
		t.GithubPRURL,
		t.GithubPRStatus,
		questions,
		t.DispatchedAt,
	)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (s *Store) UpdateTask(t domain.Task) (domain.Task, error) {
	if s.db == nil {
		return domain.Task{}, errors.New("db")
	}
	questions, err := json.Marshal(orEmptySlice(t.ClarificationQuestions))
	if err != nil {
		return domain.Task{}, err
	}
	row := s.db.QueryRow(`
		update tasks
		set status = $1,
			description = $2,
			llm_summary = $3,
			error_message = $4,
			github_pr_number = $5,
			github_pr_url = $6,
			github_pr_status = $7,
			clarification_questions = $8,
			dispatched_at = $9,
			updated_at = now()
		where id = $10
		returning updated_at`,
		t.Status,
		t.Description,
		t.LLMSummary,
		t.ErrorMessage,
		t.GithubPRNumber,
		t.GithubPRURL,
		t.GithubPRStatus,
		questions,
		t.DispatchedAt,
		t.ID,
	)
	if err := row.Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, storage.ErrNotFound
		}
		return domain.Task{}, err
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (domain.Reminder, error) {
	var r domain.Reminder
	var description, dismissReason sql.NullString
	var payload, sentVia []byte
	var nextAt, snoozeUntil, sentAt, dismissedAt sql.NullTime
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.TaskID,
		&r.Type,
		&r.Title,
		&description,
		&payload,
		&r.ScheduledFor,
		&nextAt,
		&snoozeUntil,
		&r.Status,
		&sentAt,
		&dismissedAt,
		&dismissReason,
		&r.RecurrenceCount,
		&r.MaxRecurrences,
		&r.SnoozeCount,
		&r.FailureCount,
		&sentVia,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return domain.Reminder{}, err
	}
	r.Description = description.String
	r.DismissReason = dismissReason.String
	if payload != nil {
		if err := json.Unmarshal(payload, &r.Payload); err != nil {
			return domain.Reminder{}, err
		}
	}
	if sentVia != nil {
		if err := json.Unmarshal(sentVia, &r.SentVia); err != nil {
			return domain.Reminder{}, err
		}
	}
	if nextAt.Valid {
		r.NextRecurrenceAt = &nextAt.Time
	}
	if snoozeUntil.Valid {
		r.SnoozeUntil = &snoozeUntil.Time
	}
	if sentAt.Valid {
		r.SentAt = &sentAt.Time
	}
	if dismissedAt.Valid {
		r.DismissedAt = &dismissedAt.Time
	}
	return r, nil
}

func collectReminders(rows *sql.Rows) ([]domain.Reminder, error) {
	var res []domain.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptySnoozes(s []domain.SnoozeRecord) []domain.SnoozeRecord {
	if s == nil {
		return []domain.SnoozeRecord{}
	}
	return s
}
