// Package compliance turns a student profile into a committed set of
// persisted checklist tasks.
package compliance

import (
	"context"

	"go.uber.org/zap"

	"github.com/visahub/backend/checklist"
	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/repository"
)

// Personalizer is the external collaborator that extends or annotates the
// baseline checklist for a specific profile.
type Personalizer interface {
	Personalize(ctx context.Context, profile *domain.Profile, baseline []domain.BaselineItem) ([]domain.Task, error)
}

// ResultCache holds recent personalization results keyed by a profile
// fingerprint. Implementations must treat outages as misses.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) ([]domain.Task, error)
	Put(ctx context.Context, fingerprint string, tasks []domain.Task) error
}

// Fingerprinter derives the cache key for a profile and phase.
type Fingerprinter func(profile *domain.Profile, phase domain.Phase) string

// phaseRule matches a profile signal to the phase it implies. Rules are
// evaluated in order; the first match wins.
type phaseRule struct {
	name  string
	match func(p *domain.Profile) bool
	phase domain.Phase
}

// phaseRules encodes the observed precedence STEM-OPT > OPT > J1 > H1B,
// falling through to F1. CPT and general are never produced here; they are
// reachable only through explicit task phase assignment (known limitation).
var phaseRules = []phaseRule{
	{name: "stem_opt_active", match: func(p *domain.Profile) bool { return p.STEMOPTActive }, phase: domain.PhaseSTEMOPT},
	{name: "opt_active", match: func(p *domain.Profile) bool { return p.OPTActive }, phase: domain.PhaseOPT},
	{name: "visa_j1", match: func(p *domain.Profile) bool { return p.VisaType == domain.VisaJ1 }, phase: domain.PhaseJ1},
	{name: "visa_h1b", match: func(p *domain.Profile) bool { return p.VisaType == domain.VisaH1B }, phase: domain.PhaseH1B},
}

// ClassifyPhase resolves the profile's current visa-lifecycle phase.
func ClassifyPhase(profile *domain.Profile) domain.Phase {
	for _, rule := range phaseRules {
		if rule.match(profile) {
			return rule.phase
		}
	}
	return domain.PhaseF1
}

// Engine orchestrates checklist generation: classify, fetch baseline,
// personalize, commit.
type Engine struct {
	tasks        repository.TaskRepository
	personalizer Personalizer
	cache        ResultCache
	fingerprint  Fingerprinter
	baseline     func(domain.VisaType, domain.Phase) []domain.BaselineItem
	logger       *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCache attaches a personalization result cache.
func WithCache(cache ResultCache, fingerprint Fingerprinter) Option {
	return func(e *Engine) {
		e.cache = cache
		e.fingerprint = fingerprint
	}
}

// WithBaseline overrides the baseline provider.
func WithBaseline(fn func(domain.VisaType, domain.Phase) []domain.BaselineItem) Option {
	return func(e *Engine) {
		e.baseline = fn
	}
}

func New(tasks repository.TaskRepository, personalizer Personalizer, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		tasks:        tasks,
		personalizer: personalizer,
		baseline:     checklist.Baseline,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate derives, personalizes and commits the checklist for a profile.
//
// The operation is all-or-nothing: a personalization or commit failure
// leaves no partial task set behind, and the whole call may be retried. An
// empty baseline short-circuits to an empty result with no side effects.
// Generation is idempotent: commits upsert on (user, title, phase), so
// re-running refreshes existing rows instead of duplicating them.
func (e *Engine) Generate(ctx context.Context, profile *domain.Profile) ([]domain.Task, error) {
	if profile == nil || profile.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	visaType := profile.NormalizedVisaType()
	phase := ClassifyPhase(profile)

	baseline := e.baseline(visaType, phase)
	if len(baseline) == 0 {
		e.logger.Info("no baseline checklist for phase, skipping generation",
			zap.String("user_id", profile.ID),
			zap.String("visa_type", string(visaType)),
			zap.String("phase", string(phase)))
		return nil, nil
	}

	tasks, err := e.personalized(ctx, profile, phase, baseline)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].UserID = profile.ID
		tasks[i].VisaType = visaType
		tasks[i].Generated = true
		if tasks[i].Phase == "" {
			tasks[i].Phase = phase
		}
	}

	committed, err := e.tasks.UpsertGenerated(ctx, profile.ID, tasks)
	if err != nil {
		e.logger.Error("checklist commit failed",
			zap.String("user_id", profile.ID),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("checklist generated",
		zap.String("user_id", profile.ID),
		zap.String("visa_type", string(visaType)),
		zap.String("phase", string(phase)),
		zap.Int("tasks", len(committed)))
	return committed, nil
}

func (e *Engine) personalized(ctx context.Context, profile *domain.Profile, phase domain.Phase, baseline []domain.BaselineItem) ([]domain.Task, error) {
	var key string
	if e.cache != nil && e.fingerprint != nil {
		key = e.fingerprint(profile, phase)
		if cached, err := e.cache.Get(ctx, key); err != nil {
			e.logger.Warn("personalization cache unavailable", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	tasks, err := e.personalizer.Personalize(ctx, profile, baseline)
	if err != nil {
		return nil, err
	}

	if e.cache != nil && key != "" {
		if err := e.cache.Put(ctx, key, tasks); err != nil {
			e.logger.Warn("failed to cache personalization result", zap.Error(err))
		}
	}
	return tasks, nil
}
