package domain

import "time"

const (
	ChannelInApp = "in-app"
	ChannelEmail = "email"
	ChannelSlack = "slack"
)

type ReminderChannels struct {
	InApp bool `json:"in_app"`
	Email bool `json:"email"`
	Slack bool `json:"slack"`
}

// ReminderToggles gates auto-creation and delivery per reminder type.
type ReminderToggles struct {
	StuckClarification bool `json:"stuck_clarification"`
	PRReviewReady      bool `json:"pr_review_ready"`
	PROpenTooLong      bool `json:"pr_open_too_long"`
	FailedTasks        bool `json:"failed_tasks"`
	CustomReminders    bool `json:"custom_reminders"`
}

type ReminderThresholds struct {
	ClarificationDelayHours       int `json:"clarification_delay_hours"`
	PROpenDaysThreshold           int `json:"pr_open_days_threshold"`
	PRReviewReminderIntervalHours int `json:"pr_review_reminder_interval_hours"`
}

type DigestSettings struct {
	Enabled    bool     `json:"enabled"`
	Frequency  string   `json:"frequency"`
	Time       string   `json:"time"`
	Timezone   string   `json:"timezone"`
	Categories []string `json:"categories"`
}

// QuietHours is a HH:MM window during which non-urgent reminders are held.
// A start later than the end wraps past midnight.
type QuietHours struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
}

type SnoozeRecord struct {
	ReminderID          string    `json:"reminder_id"`
	SnoozedAt           time.Time `json:"snoozed_at"`
	SnoozeDurationHours int       `json:"snooze_duration_hours"`
	SnoozedUntil        time.Time `json:"snoozed_until"`
}

// ReminderPreference is the per-user reminder configuration. A user without a
// stored record gets DefaultPreferences on first read; callers never see an
// absent preference.
type ReminderPreference struct {
	UserID           string             `json:"user_id"`
	Channels         ReminderChannels   `json:"channels"`
	Reminders        ReminderToggles    `json:"reminders"`
	Thresholds       ReminderThresholds `json:"thresholds"`
	Digest           DigestSettings     `json:"digest"`
	QuietHours       QuietHours         `json:"quiet_hours"`
	SnoozedReminders []SnoozeRecord     `json:"snoozed_reminders"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// DefaultPreferences is the single definition of first-read defaults.
func DefaultPreferences(userID string) ReminderPreference {
	return ReminderPreference{
		UserID: userID,
		Channels: ReminderChannels{
			InApp: true,
			Email: true,
			Slack: true,
		},
		Reminders: ReminderToggles{
			StuckClarification: true,
			PRReviewReady:      true,
			PROpenTooLong:      true,
			FailedTasks:        true,
			CustomReminders:    true,
		},
		Thresholds: ReminderThresholds{
			ClarificationDelayHours:       24,
			PROpenDaysThreshold:           3,
			PRReviewReminderIntervalHours: 48,
		},
		Digest: DigestSettings{
			Enabled:    false,
			Frequency:  "daily",
			Time:       "09:00",
			Timezone:   "UTC",
			Categories: []string{},
		},
		QuietHours: QuietHours{
			Enabled:   false,
			StartTime: "18:00",
			EndTime:   "09:00",
			Timezone:  "UTC",
		},
		SnoozedReminders: []SnoozeRecord{},
	}
}
