package services

import (
	"context"
	"encoding/json"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/internal/infrastructure/buffer"
	"github.com/visahub/backend/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, profile *domain.Profile) error {
	if b.processor == nil || profile == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    profile.ID,
		Entity:    buffer.EntityProfile,
		Operation: operation,
		Data:      payload,
		Priority:  3,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
