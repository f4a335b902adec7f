package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		InProgressStatuses: []string{"Routing", "QUARANTINE"},
		OpenWorkStatuses:   []string{"Open", "In Progress"},
		FieldMap: map[string]string{
			"key":               "Jira Issue Key",
			"summary":           "Name",
			"customfield_10010": "Sprint",
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.JiraConfig{BaseURL: server.URL, Email: "ops@x.com", APIToken: "token"}
	return NewClient(cfg, testSyncConfig(), logger.NewLogger()), server
}

func issuePayload(key, summary string) map[string]any {
	return map[string]any{
		"key": key,
		"fields": map[string]any{
			"summary": summary,
			"status":  map[string]any{"name": "Routing"},
			"created": "2025-01-15T10:30:00.000-0500",
			"assignee": map[string]any{
				"displayName":  "Jane Doe",
				"emailAddress": "jane@x.com",
			},
			"customfield_10010": "Sprint 12",
		},
	}
}

func TestSearchPagesThroughResults(t *testing.T) {
	var requests []searchRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, searchPath, r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "ops@x.com", user)
		require.Equal(t, "token", pass)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		resp := map[string]any{}
		if req.NextPageToken == "" {
			resp["issues"] = []any{issuePayload("OPS-2", "second")}
			resp["nextPageToken"] = "page-2"
		} else {
			resp["issues"] = []any{issuePayload("OPS-1", "first")}
		}
		json.NewEncoder(w).Encode(resp)
	}))

	tickets, err := client.FetchUpdated(context.Background(), config.ProjectConfig{Key: "OPS"})
	require.NoError(t, err)

	require.Len(t, tickets, 2)
	assert.Equal(t, "OPS-2", tickets[0].Key)
	assert.Equal(t, "second", tickets[0].Summary)
	assert.Equal(t, "Routing", tickets[0].Status)
	assert.Equal(t, "jane@x.com", tickets[0].Assignee.EmailAddress)
	assert.Equal(t, "Sprint 12", tickets[0].Extra["customfield_10010"])

	require.Len(t, requests, 2)
	assert.Equal(t, "page-2", requests[1].NextPageToken)
	assert.Contains(t, requests[0].Fields, "summary")
	assert.Contains(t, requests[0].Fields, "customfield_10010")
	assert.Contains(t, requests[0].JQL, `updated >= "-3m"`)
	assert.Contains(t, requests[0].JQL, `created >= "-5d"`)
	assert.Contains(t, requests[0].JQL, `status IN ("Routing", "QUARANTINE")`)
	assert.Contains(t, requests[0].JQL, "ORDER BY updated DESC")
}

func TestFetchNewJQLWindow(t *testing.T) {
	var gotJQL string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotJQL = req.JQL
		json.NewEncoder(w).Encode(map[string]any{"issues": []any{}})
	}))

	_, err := client.FetchNew(context.Background(), config.ProjectConfig{
		Key:     "OPS",
		BaseJQL: "labels = mirror",
	})
	require.NoError(t, err)

	assert.Equal(t,
		`project = OPS AND (labels = mirror) AND created >= "-3m" ORDER BY created DESC`,
		gotJQL)
}

func TestFetchAssignedJQL(t *testing.T) {
	var gotJQL string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotJQL = req.JQL
		json.NewEncoder(w).Encode(map[string]any{"issues": []any{}})
	}))

	_, err := client.FetchAssigned(context.Background(), config.ProjectConfig{Key: "OPS"})
	require.NoError(t, err)

	assert.Equal(t,
		`project = OPS AND assignee = currentUser() AND status IN ("Open", "In Progress") ORDER BY updated DESC`,
		gotJQL)
}

func TestSearchSurfacesAPIErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["bad jql"]}`))
	}))

	_, err := client.FetchNew(context.Background(), config.ProjectConfig{Key: "OPS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "bad jql")
}

func TestCheckConnection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == serverInfoPath {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	assert.True(t, client.CheckConnection(context.Background()))

	down, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	assert.False(t, down.CheckConnection(context.Background()))
}

func TestLatestAssigneeChange(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/3/issue/OPS-1", r.URL.Path)
		require.Equal(t, "changelog", r.URL.Query().Get("expand"))
		json.NewEncoder(w).Encode(map[string]any{
			"changelog": map[string]any{
				"histories": []any{
					map[string]any{
						"created": "2025-01-10T08:00:00.000-0500",
						"items": []any{
							map[string]any{"field": "status", "fromString": "Open", "toString": "Routing"},
						},
					},
					map[string]any{
						"created": "2025-01-15T09:00:00.000-0500",
						"items": []any{
							map[string]any{"field": "assignee", "fromString": "Sam Smith", "toString": "Jane Doe"},
						},
					},
				},
			},
		})
	}))

	change, err := client.LatestAssigneeChange(context.Background(), "OPS-1")
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, "Sam Smith", change.From)
	assert.Equal(t, "Jane Doe", change.To)
	assert.Equal(t, "2025-01-15T09:00:00.000-0500", change.At)
}

func TestLatestAssigneeChangePicksNewestTimestamp(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"changelog": map[string]any{
				"histories": []any{
					map[string]any{
						"created": "2025-01-15T09:00:00.000-0500",
						"items": []any{
							map[string]any{"field": "assignee", "fromString": "Sam Smith", "toString": "Jane Doe"},
						},
					},
					map[string]any{
						"created": "2025-01-10T08:00:00.000-0500",
						"items": []any{
							map[string]any{"field": "status", "fromString": "Open", "toString": "Routing"},
						},
					},
				},
			},
		})
	}))

	change, err := client.LatestAssigneeChange(context.Background(), "OPS-1")
	require.NoError(t, err)
	require.NotNil(t, change, "the newest entry by timestamp wins regardless of response order")
	assert.Equal(t, "Jane Doe", change.To)
}

func TestLatestAssigneeChangeIgnoresOtherFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"changelog": map[string]any{
				"histories": []any{
					map[string]any{
						"created": "2025-01-15T09:00:00.000-0500",
						"items": []any{
							map[string]any{"field": "status", "fromString": "Open", "toString": "Routing"},
						},
					},
				},
			},
		})
	}))

	change, err := client.LatestAssigneeChange(context.Background(), "OPS-1")
	require.NoError(t, err)
	assert.Nil(t, change)
}
