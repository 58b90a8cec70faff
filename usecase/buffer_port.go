package usecase

import (
	"context"

	"github.com/visahub/backend/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the offline buffer so use cases stay
// storage-agnostic. Only profile writes are buffered: task mutations must
// await store confirmation (the mirror contract) and generation commits are
// all-or-nothing, so neither may be silently deferred.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, profile *domain.Profile) error
}
