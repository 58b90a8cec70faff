package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/visahub/backend/domain"
)

// PersonalizationCache keeps recent personalization responses so re-running
// generation for an unchanged profile does not repeat the external call.
// A cache outage is never fatal: callers fall back to a direct call.
type PersonalizationCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewPersonalizationCache creates a Redis-backed personalization cache.
func NewPersonalizationCache(client *redislib.Client, ttl time.Duration) *PersonalizationCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &PersonalizationCache{
		client: client,
		prefix: "personalization:",
		ttl:    ttl,
	}
}

// Fingerprint derives the cache key material from the signals that change
// the personalization outcome.
func Fingerprint(profile *domain.Profile, phase domain.Phase) string {
	payload, _ := json.Marshal(struct {
		UserID   string          `json:"user_id"`
		VisaType domain.VisaType `json:"visa_type"`
		Phase    domain.Phase    `json:"phase"`
		OPT      bool            `json:"opt"`
		STEM     bool            `json:"stem"`
		Grad     *time.Time      `json:"grad,omitempty"`
		Transfer *time.Time      `json:"transfer,omitempty"`
	}{
		UserID:   profile.ID,
		VisaType: profile.NormalizedVisaType(),
		Phase:    phase,
		OPT:      profile.OPTActive,
		STEM:     profile.STEMOPTActive,
		Grad:     profile.GraduationDate,
		Transfer: profile.TransferDate,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}

// Get returns the cached task list for the fingerprint, or (nil, nil) on a
// miss or any cache failure.
func (c *PersonalizationCache) Get(ctx context.Context, fingerprint string) ([]domain.Task, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	result, err := c.client.Get(ctx, c.key(fingerprint)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var tasks []domain.Task
	if err := json.Unmarshal([]byte(result), &tasks); err != nil {
		// stale or corrupt entry, treat as a miss
		return nil, nil
	}
	return tasks, nil
}

// Put stores the personalization result under the fingerprint.
func (c *PersonalizationCache) Put(ctx context.Context, fingerprint string, tasks []domain.Task) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(fingerprint), payload, c.ttl).Err()
}

// Invalidate drops a cached entry, used when the profile changes.
func (c *PersonalizationCache) Invalidate(ctx context.Context, fingerprint string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(fingerprint)).Err()
}

func (c *PersonalizationCache) key(fingerprint string) string {
	return fmt.Sprintf("%s%s", c.prefix, fingerprint)
}
