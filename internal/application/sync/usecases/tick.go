package usecases

import (
	"context"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

// IncrementalSyncUseCase is one scheduler tick for one project: the
// new-issue pass followed by the updated pass. A failing new pass does
// not stop the updated pass; the first error is reported.
type IncrementalSyncUseCase struct {
	syncNew     SyncNewExecutor
	syncUpdated SyncUpdatedExecutor
	log         logger.Interface
}

// NewIncrementalSyncUseCase creates an IncrementalSyncUseCase.
func NewIncrementalSyncUseCase(syncNew SyncNewExecutor, syncUpdated SyncUpdatedExecutor, log logger.Interface) *IncrementalSyncUseCase {
	return &IncrementalSyncUseCase{
		syncNew:     syncNew,
		syncUpdated: syncUpdated,
		log:         log,
	}
}

// Execute runs both incremental passes for the project.
func (uc *IncrementalSyncUseCase) Execute(ctx context.Context, project config.ProjectConfig) error {
	var firstErr error

	if _, err := uc.syncNew.Execute(ctx, project); err != nil {
		uc.log.Errorw("new-issue pass failed", "project", project.Key, "error", err)
		firstErr = err
	}

	if _, err := uc.syncUpdated.Execute(ctx, project); err != nil {
		uc.log.Errorw("updated pass failed", "project", project.Key, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
