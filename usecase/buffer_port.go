package usecase

import (
	"context"

	"github.com/sorayamlj/FocusTache/domain"
)

// Buffered operation kinds.
const (
	OperationCreate = "create"
	OperationSave   = "save"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}
