package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirra/internal/application/sync/usecases"
	"mirra/internal/interfaces/http/handlers/testutil"
	"mirra/internal/shared/config"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockSyncUpdatedUC struct {
	results map[string]*usecases.SyncUpdatedResult
	errs    map[string]error
	calls   []string
}

func (m *mockSyncUpdatedUC) Execute(_ context.Context, project config.ProjectConfig) (*usecases.SyncUpdatedResult, error) {
	m.calls = append(m.calls, project.Key)
	return m.results[project.Key], m.errs[project.Key]
}

type mockSyncNewUC struct {
	result *usecases.SyncNewResult
	err    error
}

func (m *mockSyncNewUC) Execute(_ context.Context, _ config.ProjectConfig) (*usecases.SyncNewResult, error) {
	return m.result, m.err
}

type mockSyncAllUC struct {
	result *usecases.SyncAllResult
	err    error
}

func (m *mockSyncAllUC) Execute(_ context.Context, _ config.ProjectConfig) (*usecases.SyncAllResult, error) {
	return m.result, m.err
}

type mockGetStatusUC struct {
	report *usecases.StatusReport
}

func (m *mockGetStatusUC) Execute(_ context.Context) *usecases.StatusReport {
	return m.report
}

type stubGuard struct {
	busy map[string]bool
}

func (g *stubGuard) TryAcquire(projectKey string) bool { return !g.busy[projectKey] }
func (g *stubGuard) Release(projectKey string)         {}

// =====================================================================
// Test helper
// =====================================================================

type testDeps struct {
	syncUpdatedUC usecases.SyncUpdatedExecutor
	syncNewUC     usecases.SyncNewExecutor
	syncAllUC     usecases.SyncAllExecutor
	getStatusUC   usecases.GetStatusExecutor
	guard         RunGuard
	projects      []config.ProjectConfig
}

func newTestSyncHandler(deps testDeps) *SyncHandler {
	if deps.projects == nil {
		deps.projects = []config.ProjectConfig{
			{Key: "OPS", DatabaseID: "db-1"},
			{Key: "INFRA", DatabaseID: "db-2"},
		}
	}
	return NewSyncHandler(
		deps.syncUpdatedUC,
		deps.syncNewUC,
		deps.syncAllUC,
		deps.getStatusUC,
		deps.guard,
		deps.projects,
		testutil.NewMockLogger(),
	)
}

func parseResults(t *testing.T, resp testutil.APIResponse) map[string]ProjectResult {
	t.Helper()
	var results map[string]ProjectResult
	require.NoError(t, json.Unmarshal(resp.Data, &results))
	return results
}

// =====================================================================
// Tests
// =====================================================================

func TestSyncHandler_SyncUpdated_AllProjects(t *testing.T) {
	mockUC := &mockSyncUpdatedUC{
		results: map[string]*usecases.SyncUpdatedResult{
			"OPS":   {Processed: 2, LastKey: "OPS-2"},
			"INFRA": {Processed: 0},
		},
	}
	handler := newTestSyncHandler(testDeps{syncUpdatedUC: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/sync/updated", nil)
	handler.SyncUpdated(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"OPS", "INFRA"}, mockUC.calls)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	results := parseResults(t, resp)
	assert.Equal(t, "ok", results["OPS"].Status)
	assert.Equal(t, "ok", results["INFRA"].Status)
}

func TestSyncHandler_SyncUpdated_OneProjectFails(t *testing.T) {
	mockUC := &mockSyncUpdatedUC{
		results: map[string]*usecases.SyncUpdatedResult{
			"OPS": {Processed: 1, LastKey: "OPS-1"},
		},
		errs: map[string]error{"INFRA": assert.AnError},
	}
	handler := newTestSyncHandler(testDeps{syncUpdatedUC: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/sync/updated", nil)
	handler.SyncUpdated(c)

	// One failing project does not fail the endpoint.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"OPS", "INFRA"}, mockUC.calls)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	results := parseResults(t, resp)
	assert.Equal(t, "ok", results["OPS"].Status)
	assert.Equal(t, "error", results["INFRA"].Status)
	assert.NotEmpty(t, results["INFRA"].Error)
}

func TestSyncHandler_SyncUpdated_SkipsBusyProject(t *testing.T) {
	mockUC := &mockSyncUpdatedUC{
		results: map[string]*usecases.SyncUpdatedResult{"INFRA": {}},
	}
	handler := newTestSyncHandler(testDeps{
		syncUpdatedUC: mockUC,
		guard:         &stubGuard{busy: map[string]bool{"OPS": true}},
	})

	c, w := testutil.NewTestContext(http.MethodPost, "/sync/updated", nil)
	handler.SyncUpdated(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"INFRA"}, mockUC.calls, "busy project is not run")

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	results := parseResults(t, resp)
	assert.Equal(t, "skipped", results["OPS"].Status)
	assert.Equal(t, "ok", results["INFRA"].Status)
}

func TestSyncHandler_SyncNew(t *testing.T) {
	handler := newTestSyncHandler(testDeps{
		syncNewUC: &mockSyncNewUC{result: &usecases.SyncNewResult{Processed: true, IssueKey: "OPS-7"}},
		projects:  []config.ProjectConfig{{Key: "OPS", DatabaseID: "db-1"}},
	})

	c, w := testutil.NewTestContext(http.MethodPost, "/sync/new", nil)
	handler.SyncNew(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	results := parseResults(t, resp)
	assert.Equal(t, "ok", results["OPS"].Status)
}

func TestSyncHandler_SyncAll(t *testing.T) {
	handler := newTestSyncHandler(testDeps{
		syncAllUC: &mockSyncAllUC{result: &usecases.SyncAllResult{Keys: []string{"OPS-1", "OPS-2"}}},
		projects:  []config.ProjectConfig{{Key: "OPS", DatabaseID: "db-1"}},
	})

	c, w := testutil.NewTestContext(http.MethodPost, "/sync/full", nil)
	handler.SyncAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	results := parseResults(t, resp)
	assert.Equal(t, "ok", results["OPS"].Status)
}

func TestSyncHandler_GetStatus(t *testing.T) {
	report := &usecases.StatusReport{
		Status:        "running",
		JiraConnected: true,
		Projects: map[string]usecases.ProjectStatus{
			"OPS": {LastProcessedIssue: "OPS-9"},
		},
	}
	handler := newTestSyncHandler(testDeps{getStatusUC: &mockGetStatusUC{report: report}})

	c, w := testutil.NewTestContext(http.MethodGet, "/status", nil)
	handler.GetStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var got usecases.StatusReport
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "running", got.Status)
	assert.True(t, got.JiraConnected)
	assert.Equal(t, "OPS-9", got.Projects["OPS"].LastProcessedIssue)
}
