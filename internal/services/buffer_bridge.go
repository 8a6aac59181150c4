package services

import (
	"context"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/internal/infrastructure/buffer"
	"github.com/sorayamlj/FocusTache/usecase"
)

// BufferBridge lets the task use case hand failed writes to the processor.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	item, err := buffer.NewTaskItem(operation, task)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
