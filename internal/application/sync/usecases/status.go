package usecases

import (
	"context"
	"time"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

// ProjectStatus is the per-project slice of the status report.
type ProjectStatus struct {
	LastProcessedIssue string `json:"last_processed_issue,omitempty"`
	NextRun            string `json:"next_run,omitempty"`
}

// StatusReport is the engine status exposed by the status endpoint.
type StatusReport struct {
	Status          string                   `json:"status"`
	JiraConnected   bool                     `json:"jira_connected"`
	NotionConnected bool                     `json:"notion_connected"`
	Projects        map[string]ProjectStatus `json:"projects"`
}

// GetStatusUseCase reports cursors, connectivity, and upcoming ticks.
// It always answers, even while a sync pass is mid-failure.
type GetStatusUseCase struct {
	source    TicketSource
	workspace Workspace
	cursors   CursorStore
	schedule  Schedule
	projects  []config.ProjectConfig
	log       logger.Interface
}

// NewGetStatusUseCase creates a GetStatusUseCase.
func NewGetStatusUseCase(
	source TicketSource,
	workspace Workspace,
	cursors CursorStore,
	schedule Schedule,
	projects []config.ProjectConfig,
	log logger.Interface,
) *GetStatusUseCase {
	return &GetStatusUseCase{
		source:    source,
		workspace: workspace,
		cursors:   cursors,
		schedule:  schedule,
		projects:  projects,
		log:       log,
	}
}

// Execute assembles the status report.
func (uc *GetStatusUseCase) Execute(ctx context.Context) *StatusReport {
	report := &StatusReport{
		Status:        "running",
		JiraConnected: uc.source.CheckConnection(ctx),
		Projects:      make(map[string]ProjectStatus, len(uc.projects)),
	}

	if len(uc.projects) > 0 {
		report.NotionConnected = uc.workspace.CheckConnection(ctx, uc.projects[0].DatabaseID)
	}

	for _, project := range uc.projects {
		status := ProjectStatus{}

		cursor, err := uc.cursors.Get(ctx, project.Key)
		if err != nil {
			uc.log.Warnw("cursor read failed for status report",
				"project", project.Key, "error", err)
		} else {
			status.LastProcessedIssue = cursor
		}

		if uc.schedule != nil {
			if next, ok := uc.schedule.NextRun(project.Key); ok {
				status.NextRun = next.Format(time.RFC3339)
			}
		}

		report.Projects[project.Key] = status
	}

	return report
}
