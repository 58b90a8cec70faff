// Package tasks exposes toggle/add/delete operations over a user's
// persisted task set while keeping an in-memory mirror consistent with the
// store.
package tasks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/pkg/dates"
	"github.com/visahub/backend/repository"
)

// State is the mirror lifecycle: idle -> loading -> {ready, error}.
// Mutating operations are accepted only in StateReady.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Controller mirrors one user's task list. Mutations are never applied
// optimistically: the mirror changes only after the store confirms, so a
// failed call leaves the mirror exactly as it was.
type Controller struct {
	userID string
	repo   repository.TaskRepository
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	mirror  map[string]domain.Task
	order   []string
	pending map[string]bool
}

// NewController builds a controller for one user. Call Refresh before
// mutating.
func NewController(userID string, repo repository.TaskRepository, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		userID:  userID,
		repo:    repo,
		logger:  logger.With(zap.String("user_id", userID)),
		state:   StateIdle,
		mirror:  map[string]domain.Task{},
		pending: map[string]bool{},
	}
}

// State returns the current mirror state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the mirrored task list in display order.
func (c *Controller) Snapshot() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Task, 0, len(c.order))
	for _, id := range c.order {
		if task, ok := c.mirror[id]; ok {
			out = append(out, task)
		}
	}
	return out
}

// Refresh re-fetches the task list and replaces the mirror wholesale. It is
// the reconciliation path after background generation.
func (c *Controller) Refresh(ctx context.Context) ([]domain.Task, error) {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	tasks, err := c.repo.List(ctx, c.userID, repository.TaskFilter{})
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		return nil, err
	}

	c.mirror = make(map[string]domain.Task, len(tasks))
	c.order = make([]string, 0, len(tasks))
	for _, task := range tasks {
		c.mirror[task.ID] = task
		c.order = append(c.order, task.ID)
	}
	c.state = StateReady
	return tasks, nil
}

// Toggle flips the completion flag of one task. It awaits store
// confirmation before touching the mirror; on failure the mirror is left
// unchanged and the error is reported.
func (c *Controller) Toggle(ctx context.Context, id string) (*domain.Task, error) {
	current, err := c.acquire(id)
	if err != nil {
		return nil, err
	}
	defer c.release(id)

	updated, err := c.repo.SetCompleted(ctx, c.userID, id, !current.Completed)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mirror[id] = *updated
	c.mu.Unlock()
	return updated, nil
}

// Update applies a partial field update to one task, store first.
func (c *Controller) Update(ctx context.Context, id string, update repository.TaskUpdate) (*domain.Task, error) {
	if _, err := c.acquire(id); err != nil {
		return nil, err
	}
	defer c.release(id)

	updated, err := c.repo.Update(ctx, c.userID, id, update)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mirror[id] = *updated
	c.mu.Unlock()
	return updated, nil
}

// AddCustom creates a user-authored task. Custom tasks always land in the
// personal category and the general phase, not completed.
func (c *Controller) AddCustom(ctx context.Context, title, dueDate string, priority domain.Priority) (*domain.Task, error) {
	if err := c.requireReady(); err != nil {
		return nil, err
	}

	due, ok := dates.Parse(dueDate)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeInvalid, "due date is not a valid calendar date")
	}

	task := &domain.Task{
		ID:       uuid.NewString(),
		UserID:   c.userID,
		Title:    title,
		Category: domain.CategoryPersonal,
		Phase:    domain.PhaseGeneral,
		Priority: priority,
		DueDate:  &due,
	}

	created, err := c.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mirror[created.ID] = *created
	c.order = append([]string{created.ID}, c.order...)
	c.mu.Unlock()
	return created, nil
}

// Delete removes the task from the mirror only after the store confirms.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if _, err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	if err := c.repo.Delete(ctx, c.userID, id); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.mirror, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// acquire validates state, locates the task and marks it in flight so no
// two mutations of the same task run concurrently.
func (c *Controller) acquire(id string) (domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return domain.Task{}, domain.NewError(domain.ErrCodeConflict, "task list is not ready, refresh first")
	}
	task, ok := c.mirror[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if c.pending[id] {
		return domain.Task{}, domain.NewError(domain.ErrCodeConflict, "another update for this task is in flight")
	}
	c.pending[id] = true
	return task, nil
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Controller) requireReady() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return domain.NewError(domain.ErrCodeConflict, "task list is not ready, refresh first")
	}
	return nil
}

// Manager hands out one Controller per user so HTTP handlers share a mirror
// across requests.
type Manager struct {
	repo   repository.TaskRepository
	logger *zap.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(repo repository.TaskRepository, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:        repo,
		logger:      logger,
		controllers: map[string]*Controller{},
	}
}

// ForUser returns the user's controller, creating it on first use.
func (m *Manager) ForUser(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[userID]; ok {
		return c
	}
	c := NewController(userID, m.repo, m.logger)
	m.controllers[userID] = c
	return c
}
