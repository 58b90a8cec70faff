package compliance

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

// fakeTaskRepo mimics the upsert-on-(user,title,phase) contract in memory.
type fakeTaskRepo struct {
	rows        map[string]domain.Task
	upsertCalls int
	failUpsert  error
	nextID      int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{rows: map[string]domain.Task{}}
}

func (f *fakeTaskRepo) key(userID, title string, phase domain.Phase) string {
	return fmt.Sprintf("%s|%s|%s", userID, title, phase)
}

func (f *fakeTaskRepo) UpsertGenerated(_ context.Context, userID string, tasks []domain.Task) ([]domain.Task, error) {
	f.upsertCalls++
	if f.failUpsert != nil {
		return nil, f.failUpsert
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		k := f.key(userID, task.Title, task.Phase)
		existing, ok := f.rows[k]
		if ok {
			existing.Description = task.Description
			existing.DueDate = task.DueDate
			existing.Priority = task.Priority
			f.rows[k] = existing
			out = append(out, existing)
			continue
		}
		f.nextID++
		task.ID = fmt.Sprintf("task-%d", f.nextID)
		task.UserID = userID
		f.rows[k] = task
		out = append(out, task)
	}
	return out, nil
}

func (f *fakeTaskRepo) List(context.Context, string, repository.TaskFilter) ([]domain.Task, error) {
	var tasks []domain.Task
	for _, t := range f.rows {
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (f *fakeTaskRepo) GetByID(context.Context, string, string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	return task, nil
}

func (f *fakeTaskRepo) Update(context.Context, string, string, repository.TaskUpdate) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTaskRepo) SetCompleted(context.Context, string, string, bool) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTaskRepo) Delete(context.Context, string, string) error {
	return domain.ErrTaskNotFound
}

// echoPersonalizer converts the baseline one-to-one, the minimal valid
// collaborator behavior.
type echoPersonalizer struct {
	err   error
	extra []domain.Task
	calls int
}

func (p *echoPersonalizer) Personalize(_ context.Context, profile *domain.Profile, baseline []domain.BaselineItem) ([]domain.Task, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	now := time.Now()
	tasks := make([]domain.Task, 0, len(baseline)+len(p.extra))
	for _, item := range baseline {
		due := now.AddDate(0, 0, item.DueInDays)
		tasks = append(tasks, domain.Task{
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Phase:       item.Phase,
			Priority:    item.Priority,
			DueDate:     &due,
		})
	}
	return append(tasks, p.extra...), nil
}

func TestClassifyPhase(t *testing.T) {
	cases := []struct {
		name    string
		profile domain.Profile
		want    domain.Phase
	}{
		{"default F1", domain.Profile{VisaType: domain.VisaF1}, domain.PhaseF1},
		{"empty visa type", domain.Profile{}, domain.PhaseF1},
		{"OPT beats F1", domain.Profile{VisaType: domain.VisaF1, OPTActive: true}, domain.PhaseOPT},
		{"STEM beats OPT", domain.Profile{VisaType: domain.VisaF1, OPTActive: true, STEMOPTActive: true}, domain.PhaseSTEMOPT},
		{"J1", domain.Profile{VisaType: domain.VisaJ1}, domain.PhaseJ1},
		{"H1B", domain.Profile{VisaType: domain.VisaH1B}, domain.PhaseH1B},
		{"OPT beats J1 visa", domain.Profile{VisaType: domain.VisaJ1, OPTActive: true}, domain.PhaseOPT},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyPhase(&tc.profile))
		})
	}
}

func TestGenerate_F1Baseline(t *testing.T) {
	repo := newFakeTaskRepo()
	engine := New(repo, &echoPersonalizer{}, nil)

	profile := &domain.Profile{ID: "user-1", VisaType: domain.VisaF1}
	tasks, err := engine.Generate(context.Background(), profile)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)

	for _, task := range tasks {
		assert.Equal(t, "user-1", task.UserID)
		assert.Equal(t, domain.PhaseF1, task.Phase)
		assert.Equal(t, domain.VisaF1, task.VisaType)
		assert.True(t, task.Generated)
		assert.False(t, task.Completed)
	}
	assert.Len(t, repo.rows, len(tasks))
}

func TestGenerate_OPTIndicatorWinsOverVisaType(t *testing.T) {
	repo := newFakeTaskRepo()
	engine := New(repo, &echoPersonalizer{}, nil)

	profile := &domain.Profile{ID: "user-1", VisaType: domain.VisaF1, OPTActive: true}
	tasks, err := engine.Generate(context.Background(), profile)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)

	for _, task := range tasks {
		assert.Equal(t, domain.PhaseOPT, task.Phase)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	repo := newFakeTaskRepo()
	engine := New(repo, &echoPersonalizer{}, nil)
	profile := &domain.Profile{ID: "user-1", VisaType: domain.VisaF1}

	first, err := engine.Generate(context.Background(), profile)
	require.NoError(t, err)
	second, err := engine.Generate(context.Background(), profile)
	require.NoError(t, err)

	assert.Len(t, second, len(first))
	assert.Len(t, repo.rows, len(first), "second run must update rows, not insert new ones")

	ids := map[string]bool{}
	for _, task := range first {
		ids[task.ID] = true
	}
	for _, task := range second {
		assert.True(t, ids[task.ID], "row %q should keep its identity across runs", task.Title)
	}
}

func TestGenerate_MalformedResponseCommitsNothing(t *testing.T) {
	repo := newFakeTaskRepo()
	engine := New(repo, &echoPersonalizer{
		err: domain.NewError(domain.ErrCodeMalformed, "bad shape"),
	}, nil)

	_, err := engine.Generate(context.Background(), &domain.Profile{ID: "user-1"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformed))
	assert.Zero(t, repo.upsertCalls, "nothing may be committed on personalization failure")
	assert.Empty(t, repo.rows)
}

func TestGenerate_CommitFailureIsSurfaced(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.failUpsert = domain.NewError(domain.ErrCodeTransient, "store down")
	engine := New(repo, &echoPersonalizer{}, nil)

	_, err := engine.Generate(context.Background(), &domain.Profile{ID: "user-1"})
	require.Error(t, err)
	assert.True(t, domain.Retryable(err))
}

func TestGenerate_EmptyBaselineNoSideEffects(t *testing.T) {
	repo := newFakeTaskRepo()
	personalizer := &echoPersonalizer{}
	engine := New(repo, personalizer, nil, WithBaseline(
		func(domain.VisaType, domain.Phase) []domain.BaselineItem { return nil },
	))

	tasks, err := engine.Generate(context.Background(), &domain.Profile{ID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Zero(t, personalizer.calls)
	assert.Zero(t, repo.upsertCalls)
}

func TestGenerate_PersonalizerAdditionsCommitted(t *testing.T) {
	repo := newFakeTaskRepo()
	engine := New(repo, &echoPersonalizer{
		extra: []domain.Task{{
			Title:    "Schedule advising appointment",
			Category: domain.CategoryAcademic,
			Priority: domain.PriorityLow,
		}},
	}, nil)

	profile := &domain.Profile{ID: "user-1", VisaType: domain.VisaF1}
	tasks, err := engine.Generate(context.Background(), profile)
	require.NoError(t, err)

	var found *domain.Task
	for i := range tasks {
		if tasks[i].Title == "Schedule advising appointment" {
			found = &tasks[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, domain.PhaseF1, found.Phase, "phaseless additions inherit the resolved phase")
	assert.Equal(t, "user-1", found.UserID)
}

type mapCache struct {
	entries map[string][]domain.Task
	gets    int
	puts    int
}

func (c *mapCache) Get(_ context.Context, key string) ([]domain.Task, error) {
	c.gets++
	return c.entries[key], nil
}

func (c *mapCache) Put(_ context.Context, key string, tasks []domain.Task) error {
	c.puts++
	c.entries[key] = tasks
	return nil
}

func TestGenerate_CacheSkipsPersonalizer(t *testing.T) {
	repo := newFakeTaskRepo()
	personalizer := &echoPersonalizer{}
	cache := &mapCache{entries: map[string][]domain.Task{}}
	fingerprint := func(p *domain.Profile, phase domain.Phase) string {
		return p.ID + ":" + string(phase)
	}
	engine := New(repo, personalizer, nil, WithCache(cache, fingerprint))
	profile := &domain.Profile{ID: "user-1", VisaType: domain.VisaF1}

	_, err := engine.Generate(context.Background(), profile)
	require.NoError(t, err)
	_, err = engine.Generate(context.Background(), profile)
	require.NoError(t, err)

	assert.Equal(t, 1, personalizer.calls, "second run should be served from cache")
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.puts)
}
