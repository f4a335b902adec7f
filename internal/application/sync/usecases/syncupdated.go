package usecases

import (
	"context"
	"errors"
	"fmt"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

// SyncUpdatedResult reports one updated-issue pass for one project.
type SyncUpdatedResult struct {
	Processed int    `json:"processed"`
	LastKey   string `json:"last_key,omitempty"`
}

// SyncUpdatedUseCase processes tickets recently updated in the tracker,
// in fetch order, advancing the project cursor after each successful
// write. The cursor is never advanced past a failed write.
type SyncUpdatedUseCase struct {
	source   TicketSource
	upserter *Upserter
	cursors  CursorStore
	log      logger.Interface
}

// NewSyncUpdatedUseCase creates a SyncUpdatedUseCase.
func NewSyncUpdatedUseCase(source TicketSource, upserter *Upserter, cursors CursorStore, log logger.Interface) *SyncUpdatedUseCase {
	return &SyncUpdatedUseCase{
		source:   source,
		upserter: upserter,
		cursors:  cursors,
		log:      log,
	}
}

// Execute runs one updated-issue pass for the project.
func (uc *SyncUpdatedUseCase) Execute(ctx context.Context, project config.ProjectConfig) (*SyncUpdatedResult, error) {
	issues, err := uc.source.FetchUpdated(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("fetch updated issues for %s: %w", project.Key, err)
	}

	if len(issues) == 0 {
		uc.log.Infow("no updated issues", "project", project.Key)
		return &SyncUpdatedResult{}, nil
	}

	result := &SyncUpdatedResult{}
	for _, issue := range issues {
		if err := issue.Validate(); err != nil {
			uc.log.Warnw("skipping malformed issue", "project", project.Key, "error", err)
			continue
		}

		uc.log.Infow("processing updated issue", "project", project.Key, "key", issue.Key)
		if _, err := uc.upserter.Upsert(ctx, project, issue); err != nil {
			if errors.Is(err, ErrUnmappable) {
				uc.log.Warnw("skipping unmappable issue",
					"project", project.Key, "key", issue.Key, "error", err)
				continue
			}
			uc.log.Errorw("upsert failed, stopping pass",
				"project", project.Key, "key", issue.Key, "error", err)
			return result, err
		}

		if err := uc.cursors.Set(ctx, project.Key, issue.Key); err != nil {
			uc.log.Errorw("cursor update failed, stopping pass",
				"project", project.Key, "key", issue.Key, "error", err)
			return result, fmt.Errorf("persist cursor for %s: %w", project.Key, err)
		}

		result.Processed++
		result.LastKey = issue.Key
	}

	return result, nil
}
