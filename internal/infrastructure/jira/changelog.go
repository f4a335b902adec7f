package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AssigneeChange is one reassignment recorded in an issue changelog.
type AssigneeChange struct {
	At   string
	From string
	To   string
}

type changelogHistory struct {
	Created string `json:"created"`
	Items   []struct {
		Field      string `json:"field"`
		FromString string `json:"fromString"`
		ToString   string `json:"toString"`
	} `json:"items"`
}

type changelogResponse struct {
	Changelog struct {
		Histories []changelogHistory `json:"histories"`
	} `json:"changelog"`
}

// LatestAssigneeChange returns the most recent changelog entry for an
// issue when that entry is a reassignment, nil otherwise. The latest
// entry is picked by its created timestamp, not by response order.
func (c *Client) LatestAssigneeChange(ctx context.Context, key string) (*AssigneeChange, error) {
	url := fmt.Sprintf("%s/rest/api/3/issue/%s?expand=changelog&fields=assignee", c.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create changelog request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch changelog for %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read changelog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira changelog returned status %d: %s", resp.StatusCode, truncate(data, 512))
	}

	var payload changelogResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode changelog response: %w", err)
	}

	histories := payload.Changelog.Histories
	if len(histories) == 0 {
		return nil, nil
	}
	latest := latestHistory(histories)
	for _, item := range latest.Items {
		if item.Field == "assignee" {
			return &AssigneeChange{At: latest.Created, From: item.FromString, To: item.ToString}, nil
		}
	}
	return nil, nil
}

func latestHistory(histories []changelogHistory) changelogHistory {
	latest := histories[0]
	latestAt := parseChangelogTime(latest.Created)
	for _, h := range histories[1:] {
		if at := parseChangelogTime(h.Created); at.After(latestAt) {
			latest, latestAt = h, at
		}
	}
	return latest
}

func parseChangelogTime(raw string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
