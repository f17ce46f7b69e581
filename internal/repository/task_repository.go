package repository

import "github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"

// TaskProvider is the engine's read-only view of tasks. GetTask returns
// storage.ErrNotFound when the task no longer exists.
type TaskProvider interface {
	GetTask(id string) (domain.Task, error)
}

// TaskRepository adds the minimal write surface used by the API layer to
// record tasks and status transitions. The task domain proper (analysis,
// GitHub dispatch) lives outside this service.
type TaskRepository interface {
	TaskProvider
	CreateTask(t domain.Task) (domain.Task, error)
	UpdateTask(t domain.Task) (domain.Task, error)
}
