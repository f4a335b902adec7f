package usecases

import (
	"context"
	"fmt"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"

	"mirra/internal/application/sync/mapper"
)

// SyncAllResult reports one full reconciliation pass for one project.
type SyncAllResult struct {
	Keys []string `json:"issues"`
}

// SyncAllUseCase reconciles every open-work ticket assigned to the
// operator, independent of the cursor. Existing pages are marked
// unverified and overwritten; missing pages are created. Used for
// bootstrap and drift correction.
type SyncAllUseCase struct {
	source    TicketSource
	workspace Workspace
	mapper    *mapper.Mapper
	body      BodyBuilder
	log       logger.Interface
}

// NewSyncAllUseCase creates a SyncAllUseCase.
func NewSyncAllUseCase(source TicketSource, workspace Workspace, m *mapper.Mapper, body BodyBuilder, log logger.Interface) *SyncAllUseCase {
	return &SyncAllUseCase{
		source:    source,
		workspace: workspace,
		mapper:    m,
		body:      body,
		log:       log,
	}
}

// Execute runs one full reconciliation pass for the project. The first
// write failure aborts the pass.
func (uc *SyncAllUseCase) Execute(ctx context.Context, project config.ProjectConfig) (*SyncAllResult, error) {
	uc.log.Infow("starting full synchronization", "project", project.Key)

	issues, err := uc.source.FetchAssigned(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("fetch assigned issues for %s: %w", project.Key, err)
	}
	if len(issues) == 0 {
		uc.log.Infow("no issues assigned to operator", "project", project.Key)
		return &SyncAllResult{Keys: []string{}}, nil
	}

	schema, err := uc.workspace.Schema(ctx, project.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("fetch workspace schema: %w", err)
	}

	result := &SyncAllResult{Keys: []string{}}
	for _, issue := range issues {
		if err := issue.Validate(); err != nil {
			uc.log.Warnw("skipping malformed issue", "project", project.Key, "error", err)
			continue
		}

		uc.log.Infow("synchronizing issue", "project", project.Key, "key", issue.Key)

		props, err := uc.mapper.Map(issue, schema)
		if err != nil {
			uc.log.Warnw("skipping unmappable issue",
				"project", project.Key, "key", issue.Key, "error", err)
			continue
		}

		existing, err := uc.workspace.FindByKey(ctx, project.DatabaseID, issue.Key)
		if err != nil {
			return result, fmt.Errorf("lookup page for %s: %w", issue.Key, err)
		}

		if existing != nil {
			// Re-synced pages need manual re-verification.
			if err := uc.workspace.SetVerified(ctx, existing.ID, false); err != nil {
				return result, fmt.Errorf("unverify page for %s: %w", issue.Key, err)
			}
			if _, err := uc.workspace.UpdatePage(ctx, existing.ID, props); err != nil {
				return result, fmt.Errorf("update page for %s: %w", issue.Key, err)
			}
		} else {
			if _, err := uc.workspace.CreatePage(ctx, project.DatabaseID, props, uc.body.Build(issue)); err != nil {
				return result, fmt.Errorf("create page for %s: %w", issue.Key, err)
			}
		}

		result.Keys = append(result.Keys, issue.Key)
	}

	uc.log.Infow("full synchronization finished",
		"project", project.Key, "processed", len(result.Keys))
	return result, nil
}
