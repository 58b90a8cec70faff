// Package personalization talks to the external checklist personalization
// service: baseline templates in, a possibly extended task list out.
package personalization

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/pkg/dates"
)

// ProfileSnapshot is the normalized profile view sent with each request.
// Date fields are ISO calendar dates; absent signals stay null on the wire.
type ProfileSnapshot struct {
	UserID           string          `json:"user_id"`
	VisaType         domain.VisaType `json:"visa_type"`
	EmploymentStatus string          `json:"employment_status,omitempty"`
	OPTActive        bool            `json:"opt_active"`
	STEMOPTActive    bool            `json:"stem_opt_active"`
	EntryDate        *string         `json:"entry_date"`
	GraduationDate   *string         `json:"graduation_date"`
	TransferDate     *string         `json:"transfer_date"`
}

// Snapshot normalizes a profile for the personalization request payload.
func Snapshot(profile *domain.Profile) ProfileSnapshot {
	return ProfileSnapshot{
		UserID:           profile.ID,
		VisaType:         profile.NormalizedVisaType(),
		EmploymentStatus: profile.EmploymentStatus,
		OPTActive:        profile.OPTActive,
		STEMOPTActive:    profile.STEMOPTActive,
		EntryDate:        isoDate(profile.EntryDate),
		GraduationDate:   isoDate(profile.GraduationDate),
		TransferDate:     isoDate(profile.TransferDate),
	}
}

type request struct {
	UserProfile   ProfileSnapshot       `json:"user_profile"`
	BaselineTasks []domain.BaselineItem `json:"baseline_tasks"`
}

type taskRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Phase       string `json:"phase"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// Config holds the client endpoint settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client calls the personalization service over HTTP.
type Client struct {
	http   *fasthttp.Client
	cfg    Config
	logger *zap.Logger
}

// NewClient builds a personalization client. The timeout is a hard cap for
// the whole exchange; there is no retry, re-running generation is the
// caller's recovery path.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Personalize submits the profile and baseline templates and returns the
// service's task list. A transport failure maps to a transient error; a
// response not shaped as {"tasks": [...]} is a hard malformed-response
// failure for this generation attempt.
func (c *Client) Personalize(ctx context.Context, profile *domain.Profile, baseline []domain.BaselineItem) ([]domain.Task, error) {
	payload, err := json.Marshal(request{
		UserProfile:   Snapshot(profile),
		BaselineTasks: baseline,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "encode personalization request", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.SetBody(payload)

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, domain.WrapError(domain.ErrCodeTransient, "personalization service unreachable", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("personalization service returned non-200",
			zap.Int("status", resp.StatusCode()))
		return nil, domain.NewError(domain.ErrCodeTransient, "personalization service unavailable")
	}

	tasks, err := decodeResponse(resp.Body(), profile)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// decodeResponse enforces the response contract: a JSON object containing a
// "tasks" array. Anything else fails the generation attempt.
func decodeResponse(body []byte, profile *domain.Profile) ([]domain.Task, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, domain.WrapError(domain.ErrCodeMalformed, "personalization response is not a JSON object", err)
	}
	raw, ok := envelope["tasks"]
	if !ok {
		return nil, domain.NewError(domain.ErrCodeMalformed, "personalization response is missing the tasks array")
	}

	var records []taskRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, domain.WrapError(domain.ErrCodeMalformed, "personalization tasks field is not an array", err)
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		task := domain.Task{
			UserID:      profile.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Category:    domain.Category(rec.Category),
			Phase:       domain.Phase(rec.Phase),
			Priority:    domain.Priority(rec.Priority),
			VisaType:    profile.NormalizedVisaType(),
			Generated:   true,
		}
		if !domain.ValidCategories[task.Category] {
			task.Category = domain.CategoryOther
		}
		if !domain.ValidPriorities[task.Priority] {
			task.Priority = domain.PriorityMedium
		}
		if due, ok := dates.Parse(rec.DueDate); ok {
			task.DueDate = &due
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dates.DateOnly)
	return &s
}
