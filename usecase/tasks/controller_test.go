package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/repository"
)

// memRepo is an in-memory TaskRepository with failure injection.
type memRepo struct {
	rows    map[string]domain.Task
	nextErr error
	nextID  int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]domain.Task{}}
}

func (r *memRepo) takeErr() error {
	err := r.nextErr
	r.nextErr = nil
	return err
}

func (r *memRepo) seed(userID, title string, completed bool) domain.Task {
	r.nextID++
	due := time.Now().AddDate(0, 0, 7)
	task := domain.Task{
		ID:        fmt.Sprintf("task-%d", r.nextID),
		UserID:    userID,
		Title:     title,
		Category:  domain.CategoryImmigration,
		Phase:     domain.PhaseF1,
		Priority:  domain.PriorityMedium,
		DueDate:   &due,
		Completed: completed,
	}
	r.rows[task.ID] = task
	return task
}

func (r *memRepo) List(_ context.Context, userID string, _ repository.TaskFilter) ([]domain.Task, error) {
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	var tasks []domain.Task
	for _, t := range r.rows {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *memRepo) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	task, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskForbidden
	}
	return &task, nil
}

func (r *memRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	r.rows[task.ID] = *task
	return task, nil
}

func (r *memRepo) Update(_ context.Context, userID, id string, update repository.TaskUpdate) (*domain.Task, error) {
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	task, err := r.GetByID(context.Background(), userID, id)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	r.rows[id] = *task
	return task, nil
}

func (r *memRepo) SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error) {
	return r.Update(ctx, userID, id, repository.TaskUpdate{Completed: &completed})
}

func (r *memRepo) Delete(_ context.Context, userID, id string) error {
	if err := r.takeErr(); err != nil {
		return err
	}
	task, ok := r.rows[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if task.UserID != userID {
		return domain.ErrTaskForbidden
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) UpsertGenerated(_ context.Context, _ string, tasks []domain.Task) ([]domain.Task, error) {
	return tasks, nil
}

func readyController(t *testing.T, repo *memRepo, userID string) *Controller {
	t.Helper()
	c := NewController(userID, repo, nil)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateReady, c.State())
	return c
}

func TestRefresh_PopulatesMirror(t *testing.T) {
	repo := newMemRepo()
	repo.seed("user-1", "Verify I-20", false)
	repo.seed("user-1", "Pay SEVIS fee", true)
	repo.seed("user-2", "Someone else's task", false)

	c := NewController("user-1", repo, nil)
	assert.Equal(t, StateIdle, c.State())

	tasks, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Len(t, c.Snapshot(), 2)
	assert.Equal(t, StateReady, c.State())
}

func TestRefresh_FailureEntersErrorState(t *testing.T) {
	repo := newMemRepo()
	repo.nextErr = domain.NewError(domain.ErrCodeTransient, "store down")

	c := NewController("user-1", repo, nil)
	_, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateError, c.State())

	_, err = c.Toggle(context.Background(), "task-1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestToggle_RoundTrip(t *testing.T) {
	repo := newMemRepo()
	seeded := repo.seed("user-1", "Verify I-20", false)
	c := readyController(t, repo, "user-1")

	first, err := c.Toggle(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := c.Toggle(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, second.Completed)
	assert.False(t, c.Snapshot()[0].Completed)
}

func TestToggle_StoreFailureLeavesMirrorUnchanged(t *testing.T) {
	repo := newMemRepo()
	seeded := repo.seed("user-1", "Verify I-20", false)
	c := readyController(t, repo, "user-1")

	repo.nextErr = domain.NewError(domain.ErrCodeTransient, "store down")
	_, err := c.Toggle(context.Background(), seeded.ID)
	require.Error(t, err)
	assert.True(t, domain.Retryable(err))
	assert.False(t, c.Snapshot()[0].Completed, "mirror must not change without store confirmation")
}

func TestToggle_UnknownTask(t *testing.T) {
	repo := newMemRepo()
	repo.seed("user-1", "Verify I-20", false)
	c := readyController(t, repo, "user-1")

	_, err := c.Toggle(context.Background(), "missing")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestToggle_ForbiddenPassesThrough(t *testing.T) {
	repo := newMemRepo()
	seeded := repo.seed("user-1", "Verify I-20", false)
	c := readyController(t, repo, "user-1")

	// ownership flips underneath the mirror, the store must win
	task := repo.rows[seeded.ID]
	task.UserID = "user-2"
	repo.rows[seeded.ID] = task

	_, err := c.Toggle(context.Background(), seeded.ID)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	assert.False(t, c.Snapshot()[0].Completed)
}

func TestAddCustom_Defaults(t *testing.T) {
	repo := newMemRepo()
	c := readyController(t, repo, "user-1")

	created, err := c.AddCustom(context.Background(), "Renew passport", "2025-12-01", domain.PriorityHigh)
	require.NoError(t, err)

	assert.Equal(t, "Renew passport", created.Title)
	assert.Equal(t, domain.CategoryPersonal, created.Category)
	assert.Equal(t, domain.PhaseGeneral, created.Phase)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	assert.False(t, created.Completed)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2025-12-01", created.DueDate.Format("2006-01-02"))

	snapshot := c.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, created.ID, snapshot[0].ID)
}

func TestAddCustom_InvalidDueDate(t *testing.T) {
	repo := newMemRepo()
	c := readyController(t, repo, "user-1")

	_, err := c.AddCustom(context.Background(), "Renew passport", "someday", domain.PriorityLow)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Empty(t, c.Snapshot())
}

func TestDelete_RemovesAfterConfirm(t *testing.T) {
	repo := newMemRepo()
	seeded := repo.seed("user-1", "Verify I-20", false)
	c := readyController(t, repo, "user-1")

	require.NoError(t, c.Delete(context.Background(), seeded.ID))
	assert.Empty(t, c.Snapshot())
}

func TestDelete_FailureKeepsMirror(t *testing.T) {
	repo := newMemRepo()
	seeded := repo.seed("user-1", "Verify I-20", false)
	c := readyController(t, repo, "user-1")

	repo.nextErr = domain.NewError(domain.ErrCodeTransient, "store down")
	err := c.Delete(context.Background(), seeded.ID)
	require.Error(t, err)
	assert.Len(t, c.Snapshot(), 1)
}

func TestManager_OneControllerPerUser(t *testing.T) {
	repo := newMemRepo()
	m := NewManager(repo, nil)

	a := m.ForUser("user-1")
	b := m.ForUser("user-1")
	other := m.ForUser("user-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}
