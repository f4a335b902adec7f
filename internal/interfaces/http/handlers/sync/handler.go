// Package sync exposes the synchronization passes over HTTP. Every
// pass endpoint runs each configured project and reports per-project
// results; one project failing does not abort the others.
package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mirra/internal/application/sync/usecases"
	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
	"mirra/internal/shared/utils"
)

// RunGuard is the shared per-project run slot. HTTP-triggered passes
// and scheduled ticks never run concurrently for the same project.
type RunGuard interface {
	TryAcquire(projectKey string) bool
	Release(projectKey string)
}

// ProjectResult is one project's slice of a pass response.
type ProjectResult struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Status string `json:"status"`
}

type SyncHandler struct {
	syncUpdatedUC usecases.SyncUpdatedExecutor
	syncNewUC     usecases.SyncNewExecutor
	syncAllUC     usecases.SyncAllExecutor
	getStatusUC   usecases.GetStatusExecutor
	guard         RunGuard
	projects      []config.ProjectConfig
	logger        logger.Interface
}

func NewSyncHandler(
	syncUpdatedUC usecases.SyncUpdatedExecutor,
	syncNewUC usecases.SyncNewExecutor,
	syncAllUC usecases.SyncAllExecutor,
	getStatusUC usecases.GetStatusExecutor,
	guard RunGuard,
	projects []config.ProjectConfig,
	log logger.Interface,
) *SyncHandler {
	return &SyncHandler{
		syncUpdatedUC: syncUpdatedUC,
		syncNewUC:     syncNewUC,
		syncAllUC:     syncAllUC,
		getStatusUC:   getStatusUC,
		guard:         guard,
		projects:      projects,
		logger:        log,
	}
}

// SyncUpdated handles POST /sync/updated
func (h *SyncHandler) SyncUpdated(c *gin.Context) {
	results := h.runAll(c, func(c *gin.Context, project config.ProjectConfig) (any, error) {
		return h.syncUpdatedUC.Execute(c.Request.Context(), project)
	})
	utils.SuccessResponse(c, http.StatusOK, "Updated pass finished", results)
}

// SyncNew handles POST /sync/new
func (h *SyncHandler) SyncNew(c *gin.Context) {
	results := h.runAll(c, func(c *gin.Context, project config.ProjectConfig) (any, error) {
		return h.syncNewUC.Execute(c.Request.Context(), project)
	})
	utils.SuccessResponse(c, http.StatusOK, "New-issue pass finished", results)
}

// SyncAll handles POST /sync/full
func (h *SyncHandler) SyncAll(c *gin.Context) {
	results := h.runAll(c, func(c *gin.Context, project config.ProjectConfig) (any, error) {
		return h.syncAllUC.Execute(c.Request.Context(), project)
	})
	utils.SuccessResponse(c, http.StatusOK, "Full synchronization finished", results)
}

// GetStatus handles GET /status
func (h *SyncHandler) GetStatus(c *gin.Context) {
	report := h.getStatusUC.Execute(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Status", report)
}

// runAll executes one pass for every project, collecting per-project
// outcomes instead of failing the whole request.
func (h *SyncHandler) runAll(c *gin.Context, pass func(*gin.Context, config.ProjectConfig) (any, error)) map[string]ProjectResult {
	results := make(map[string]ProjectResult, len(h.projects))

	for _, project := range h.projects {
		if h.guard != nil && !h.guard.TryAcquire(project.Key) {
			h.logger.Warnw("sync pass already running, skipping project",
				"project", project.Key)
			results[project.Key] = ProjectResult{Status: "skipped", Error: "a pass is already running"}
			continue
		}

		result, err := pass(c, project)
		if h.guard != nil {
			h.guard.Release(project.Key)
		}

		if err != nil {
			h.logger.Errorw("sync pass failed",
				"project", project.Key, "error", err)
			results[project.Key] = ProjectResult{Status: "error", Error: err.Error(), Result: result}
			continue
		}
		results[project.Key] = ProjectResult{Status: "ok", Result: result}
	}

	return results
}
