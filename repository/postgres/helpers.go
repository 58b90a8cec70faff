package postgres

import (
	"errors"
	"time"

	"github.com/visahub/backend/domain"
)

// storeError wraps low-level pgx failures as retryable transient errors;
// already-classified domain errors pass through unchanged.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	return domain.WrapError(domain.ErrCodeTransient, "task store unavailable: "+op, err)
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
