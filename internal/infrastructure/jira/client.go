// Package jira is a thin client for the Jira Cloud REST v3 API. It
// pages through search results transparently and converts wire issues
// into domain tickets.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mirra/internal/domain/ticket"
	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

const (
	searchPath     = "/rest/api/3/search/jql"
	serverInfoPath = "/rest/api/3/serverInfo"

	requestTimeout         = 30 * time.Second
	connectionCheckTimeout = 20 * time.Second

	pageSize = 100

	// Maximum response body size per page (4MB)
	maxResponseSize = 4 << 20

	// Recency windows for the incremental passes
	createdWindow   = `created >= "-3m"`
	updatedWindow   = `updated >= "-3m"`
	createdLookback = `created >= "-5d"`
)

// coreFields are always requested; configured custom fields are added
// on top.
var coreFields = []string{"summary", "status", "created", "assignee", "reporter", "description"}

// Client talks to one Jira site with basic auth.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client

	inProgressStatuses []string
	openWorkStatuses   []string
	extraFields        []string

	log logger.Interface
}

// NewClient creates a Jira client. The sync configuration supplies the
// status sets for the JQL windows and the custom fields to request.
func NewClient(cfg config.JiraConfig, syncCfg config.SyncConfig, log logger.Interface) *Client {
	return &Client{
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		email:              cfg.Email,
		apiToken:           cfg.APIToken,
		httpClient:         &http.Client{Timeout: requestTimeout},
		inProgressStatuses: syncCfg.InProgressStatuses,
		openWorkStatuses:   syncCfg.OpenWorkStatuses,
		extraFields:        extraFields(syncCfg),
		log:                log,
	}
}

// extraFields collects the configured custom field IDs that are not
// part of the core request set.
func extraFields(syncCfg config.SyncConfig) []string {
	core := make(map[string]bool, len(coreFields)+1)
	for _, f := range coreFields {
		core[f] = true
	}
	core["key"] = true

	seen := make(map[string]bool)
	var extras []string
	add := func(field string) {
		if field == "" || core[field] || seen[field] {
			return
		}
		seen[field] = true
		extras = append(extras, field)
	}
	for field := range syncCfg.FieldMap {
		add(field)
	}
	for _, alternate := range syncCfg.AlternateFields {
		add(alternate)
	}
	return extras
}

// FetchNew returns tickets created within the short recency window,
// newest-created first.
func (c *Client) FetchNew(ctx context.Context, project config.ProjectConfig) ([]*ticket.Ticket, error) {
	jql := c.buildJQL(project,
		[]string{createdWindow},
		"ORDER BY created DESC")
	return c.search(ctx, jql)
}

// FetchUpdated returns tickets updated within the recency window,
// created within the lookback window and currently in an in-progress
// status, newest-updated first.
func (c *Client) FetchUpdated(ctx context.Context, project config.ProjectConfig) ([]*ticket.Ticket, error) {
	jql := c.buildJQL(project,
		[]string{updatedWindow, createdLookback, statusIn(c.inProgressStatuses)},
		"ORDER BY updated DESC")
	return c.search(ctx, jql)
}

// FetchAssigned returns every open-work ticket assigned to the
// authenticated operator, for full reconciliation.
func (c *Client) FetchAssigned(ctx context.Context, project config.ProjectConfig) ([]*ticket.Ticket, error) {
	jql := c.buildJQL(project,
		[]string{"assignee = currentUser()", statusIn(c.openWorkStatuses)},
		"ORDER BY updated DESC")
	return c.search(ctx, jql)
}

// CheckConnection reports whether the Jira site answers.
func (c *Client) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectionCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+serverInfoPath, nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(c.email, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("jira connection check failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize)) //nolint:errcheck

	return resp.StatusCode == http.StatusOK
}

// buildJQL assembles project scope, the project's base filter, the
// given clauses, and an ordering into one JQL statement.
func (c *Client) buildJQL(project config.ProjectConfig, clauses []string, orderBy string) string {
	parts := []string{fmt.Sprintf("project = %s", project.Key)}
	if project.BaseJQL != "" {
		parts = append(parts, "("+project.BaseJQL+")")
	}
	for _, clause := range clauses {
		if clause != "" {
			parts = append(parts, clause)
		}
	}
	return strings.Join(parts, " AND ") + " " + orderBy
}

// statusIn renders a quoted status IN (...) clause, "" for an empty
// set.
func statusIn(statuses []string) string {
	if len(statuses) == 0 {
		return ""
	}
	quoted := make([]string, len(statuses))
	for i, s := range statuses {
		quoted[i] = `"` + s + `"`
	}
	return "status IN (" + strings.Join(quoted, ", ") + ")"
}

// search runs one JQL query and pages through every result.
func (c *Client) search(ctx context.Context, jql string) ([]*ticket.Ticket, error) {
	var tickets []*ticket.Ticket
	token := ""

	for {
		page, err := c.searchPage(ctx, jql, token)
		if err != nil {
			return nil, err
		}
		for _, issue := range page.Issues {
			tickets = append(tickets, issue.toTicket(c.extraFields))
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	c.log.Debugw("jira search finished", "jql", jql, "issues", len(tickets))
	return tickets, nil
}

func (c *Client) searchPage(ctx context.Context, jql, token string) (*searchResponse, error) {
	body, err := json.Marshal(searchRequest{
		JQL:           jql,
		MaxResults:    pageSize,
		Fields:        append(append([]string{}, coreFields...), c.extraFields...),
		NextPageToken: token,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira search returned status %d: %s", resp.StatusCode, truncate(data, 512))
	}

	var page searchResponse
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &page, nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
