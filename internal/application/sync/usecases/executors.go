package usecases

import (
	"context"

	"mirra/internal/shared/config"
)

// Executor interfaces let the HTTP layer depend on the operations
// without the concrete use case types.

type SyncUpdatedExecutor interface {
	Execute(ctx context.Context, project config.ProjectConfig) (*SyncUpdatedResult, error)
}

type SyncNewExecutor interface {
	Execute(ctx context.Context, project config.ProjectConfig) (*SyncNewResult, error)
}

type SyncAllExecutor interface {
	Execute(ctx context.Context, project config.ProjectConfig) (*SyncAllResult, error)
}

type GetStatusExecutor interface {
	Execute(ctx context.Context) *StatusReport
}
