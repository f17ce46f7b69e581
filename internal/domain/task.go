package domain

import "time"

const (
	TaskStatusReceived           = "received"
	TaskStatusAnalyzing          = "analyzing"
	TaskStatusNeedsClarification = "needs_clarification"
	TaskStatusDispatched         = "dispatched"
	TaskStatusCoding             = "coding"
	TaskStatusPROpen             = "pr_open"
	TaskStatusMerged             = "merged"
	TaskStatusFailed             = "failed"
)

const PRStatusOpen = "open"

// Task is the tracker's coding task. The reminder engine only reads tasks;
// creation, LLM analysis and GitHub dispatch live outside this service.
type Task struct {
	ID                     string     `json:"id"`
	Status                 string     `json:"status"`
	Description            string     `json:"description"`
	LLMSummary             string     `json:"llm_summary,omitempty"`
	ErrorMessage           string     `json:"error_message,omitempty"`
	CreatedBy              string     `json:"created_by"`
	GithubPRNumber         int        `json:"github_pr_number,omitempty"`
	GithubPRURL            string     `json:"github_pr_url,omitempty"`
	GithubPRStatus         string     `json:"github_pr_status,omitempty"`
	ClarificationQuestions []string   `json:"clarification_questions,omitempty"`
	DispatchedAt           *time.Time `json:"dispatched_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// DisplayTitle prefers the LLM summary over the raw description.
func (t Task) DisplayTitle() string {
	if t.LLMSummary != "" {
		return t.LLMSummary
	}
	return t.Description
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusReceived, TaskStatusAnalyzing, TaskStatusNeedsClarification,
		TaskStatusDispatched, TaskStatusCoding, TaskStatusPROpen,
		TaskStatusMerged, TaskStatusFailed:
		return true
	}
	return false
}
