package usecases

import (
	"context"
	"errors"
	"fmt"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

// SyncNewResult reports one new-issue pass for one project.
type SyncNewResult struct {
	Processed bool   `json:"processed"`
	IssueKey  string `json:"issue_key,omitempty"`
}

// SyncNewUseCase is the fast-poll path: it picks up the single newest
// ticket assigned to the operator. Bulk catch-up is the updated-issue
// pass's job.
type SyncNewUseCase struct {
	source   TicketSource
	upserter *Upserter
	cursors  CursorStore
	operator string
	log      logger.Interface
}

// NewSyncNewUseCase creates a SyncNewUseCase. operator is the identity
// whose assignments this instance mirrors.
func NewSyncNewUseCase(source TicketSource, upserter *Upserter, cursors CursorStore, operator string, log logger.Interface) *SyncNewUseCase {
	return &SyncNewUseCase{
		source:   source,
		upserter: upserter,
		cursors:  cursors,
		operator: operator,
		log:      log,
	}
}

// Execute runs one new-issue pass for the project.
func (uc *SyncNewUseCase) Execute(ctx context.Context, project config.ProjectConfig) (*SyncNewResult, error) {
	issues, err := uc.source.FetchNew(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("fetch new issues for %s: %w", project.Key, err)
	}
	if len(issues) == 0 {
		uc.log.Infow("no new issues", "project", project.Key)
		return &SyncNewResult{}, nil
	}

	filtered := FilterByAssignee(issues, uc.operator)
	uc.log.Infow("filtered new issues by assignee",
		"project", project.Key, "assignee", uc.operator,
		"fetched", len(issues), "matched", len(filtered))
	if len(filtered) == 0 {
		return &SyncNewResult{}, nil
	}

	latest := filtered[0]
	if err := latest.Validate(); err != nil {
		uc.log.Warnw("skipping malformed issue", "project", project.Key, "error", err)
		return &SyncNewResult{}, nil
	}

	cursor, err := uc.cursors.Get(ctx, project.Key)
	if err != nil {
		return nil, fmt.Errorf("read cursor for %s: %w", project.Key, err)
	}
	if latest.Key == cursor {
		uc.log.Infow("newest issue already processed", "project", project.Key, "key", latest.Key)
		return &SyncNewResult{}, nil
	}

	uc.log.Infow("new issue detected", "project", project.Key, "key", latest.Key)
	if _, err := uc.upserter.Upsert(ctx, project, latest); err != nil {
		if errors.Is(err, ErrUnmappable) {
			uc.log.Warnw("skipping unmappable issue",
				"project", project.Key, "key", latest.Key, "error", err)
			return &SyncNewResult{}, nil
		}
		uc.log.Errorw("upsert failed", "project", project.Key, "key", latest.Key, "error", err)
		return nil, err
	}

	if err := uc.cursors.Set(ctx, project.Key, latest.Key); err != nil {
		return nil, fmt.Errorf("persist cursor for %s: %w", project.Key, err)
	}

	return &SyncNewResult{Processed: true, IssueKey: latest.Key}, nil
}
