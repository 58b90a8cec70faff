package repository

import (
	"context"

	"github.com/visahub/backend/domain"
)

// TaskFilter narrows List results. Zero values mean "no constraint".
type TaskFilter struct {
	Phase    domain.Phase
	Category domain.Category
	Limit    int
	Offset   int
}

// TaskUpdate carries a partial task mutation; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Category    *domain.Category
	Phase       *domain.Phase
	Priority    *domain.Priority
	DueDate     *string
	Completed   *bool
}

// TaskRepository is the persistence boundary for compliance tasks.
//
// Every operation is scoped to the calling user: addressing a task owned by
// someone else yields a FORBIDDEN domain error, never a silent no-op.
type TaskRepository interface {
	// List returns the user's non-deleted tasks, newest-first.
	List(ctx context.Context, userID string, filter TaskFilter) ([]domain.Task, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, update TaskUpdate) (*domain.Task, error)
	SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
	// UpsertGenerated commits a generated checklist in one batch, keyed on
	// (user_id, title, phase): matching rows are refreshed in place, new
	// templates inserted, unrelated rows untouched.
	UpsertGenerated(ctx context.Context, userID string, tasks []domain.Task) ([]domain.Task, error)
}
