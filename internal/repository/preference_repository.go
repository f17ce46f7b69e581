package repository

import "github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"

// PreferenceRepository persists one ReminderPreference per user.
// GetPreferences returns storage.ErrNotFound for users without a record;
// callers are expected to fall back to domain.DefaultPreferences.
type PreferenceRepository interface {
	GetPreferences(userID string) (domain.ReminderPreference, error)
	SavePreferences(p domain.ReminderPreference) (domain.ReminderPreference, error)
}
