package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/pkg/dates"
	"github.com/visahub/backend/repository"
)

const taskColumns = "id, user_id, title, description, category, phase, priority, due_date, completed, visa_type, generated, created_at, updated_at"

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) List(ctx context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM tasks
	WHERE user_id = $1
	  AND deleted_at IS NULL
	  AND ($2 = '' OR phase = $2)
	  AND ($3 = '' OR category = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`, taskColumns)

	rows, err := r.pool.Query(ctx, query, userID, string(filter.Phase), string(filter.Category), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM tasks
	WHERE id = $1 AND deleted_at IS NULL
	`, taskColumns)

	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskForbidden
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := validateNewTask(task); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, category, phase, priority, due_date, completed, visa_type, generated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $10)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Category,
		task.Phase,
		task.Priority,
		nullDate(task.DueDate),
		task.VisaType,
		task.Generated,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, storeError("create task", err)
	}

	task.Completed = false
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, userID, id string, update repository.TaskUpdate) (*domain.Task, error) {
	set, args, err := buildTaskSet(update)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return r.GetByID(ctx, userID, id)
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`
	UPDATE tasks
	SET %s, updated_at = NOW()
	WHERE id = $%d AND user_id = $%d AND deleted_at IS NULL
	RETURNING %s
	`, strings.Join(set, ", "), len(args)-1, len(args), taskColumns)

	task, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, r.classifyMiss(ctx, id)
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error) {
	return r.Update(ctx, userID, id, repository.TaskUpdate{Completed: &completed})
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `
	UPDATE tasks
	SET deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return storeError("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

func (r *taskRepository) UpsertGenerated(ctx context.Context, userID string, tasks []domain.Task) ([]domain.Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storeError("begin generation commit", err)
	}
	defer tx.Rollback(ctx)

	const query = `
	INSERT INTO tasks (id, user_id, title, description, category, phase, priority, due_date, completed, visa_type, generated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, true)
	ON CONFLICT (user_id, title, phase) WHERE deleted_at IS NULL
	DO UPDATE SET
		description = EXCLUDED.description,
		category = EXCLUDED.category,
		priority = EXCLUDED.priority,
		due_date = EXCLUDED.due_date,
		visa_type = EXCLUDED.visa_type,
		generated = true,
		updated_at = NOW()
	RETURNING ` + taskColumns

	committed := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		id := task.ID
		if id == "" {
			id = uuid.NewString()
		}
		row, err := scanTask(tx.QueryRow(ctx, query,
			id,
			userID,
			task.Title,
			task.Description,
			task.Category,
			task.Phase,
			task.Priority,
			nullDate(task.DueDate),
			task.VisaType,
		))
		if err != nil {
			return nil, err
		}
		committed = append(committed, *row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeError("commit generation", err)
	}
	return committed, nil
}

// classifyMiss tells an authorization failure apart from a missing row so
// the caller can surface an access-denied message instead of a 404.
func (r *taskRepository) classifyMiss(ctx context.Context, id string) error {
	var owner string
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM tasks WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return storeError("classify task miss", err)
	}
	return domain.ErrTaskForbidden
}

func validateNewTask(task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	switch {
	case task.UserID == "":
		return domain.NewError(domain.ErrCodeInvalid, "task user id is required")
	case strings.TrimSpace(task.Title) == "":
		return domain.NewError(domain.ErrCodeInvalid, "task title is required")
	case task.DueDate == nil:
		return domain.NewError(domain.ErrCodeInvalid, "task due date is required")
	case !domain.ValidPriorities[task.Priority]:
		return domain.NewError(domain.ErrCodeInvalid, "task priority must be low, medium or high")
	case !domain.ValidCategories[task.Category]:
		return domain.NewError(domain.ErrCodeInvalid, "unknown task category")
	}
	if task.Phase == "" {
		task.Phase = domain.PhaseGeneral
	}
	return nil
}

func buildTaskSet(update repository.TaskUpdate) ([]string, []interface{}, error) {
	var (
		set  []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, nil, domain.NewError(domain.ErrCodeInvalid, "task title cannot be empty")
		}
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		if !domain.ValidCategories[*update.Category] {
			return nil, nil, domain.NewError(domain.ErrCodeInvalid, "unknown task category")
		}
		add("category", *update.Category)
	}
	if update.Phase != nil {
		add("phase", *update.Phase)
	}
	if update.Priority != nil {
		if !domain.ValidPriorities[*update.Priority] {
			return nil, nil, domain.NewError(domain.ErrCodeInvalid, "task priority must be low, medium or high")
		}
		add("priority", *update.Priority)
	}
	if update.DueDate != nil {
		parsed, ok := dates.Parse(*update.DueDate)
		if !ok {
			return nil, nil, domain.NewError(domain.ErrCodeInvalid, "due date is not a valid calendar date")
		}
		add("due_date", parsed)
	}
	if update.Completed != nil {
		add("completed", *update.Completed)
	}
	return set, args, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var due *time.Time

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Phase,
		&task.Priority,
		&due,
		&task.Completed,
		&task.VisaType,
		&task.Generated,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeError("scan task", err)
	}

	task.DueDate = due
	return &task, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 200
	}
	return limit
}
