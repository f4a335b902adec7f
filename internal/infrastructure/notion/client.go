// Package notion is a thin client for the Notion REST API. It mirrors
// tickets into one database per project and caches each database
// schema until explicitly refreshed.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"mirra/internal/domain/page"
	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

const (
	apiBaseURL = "https://api.notion.com/v1"
	apiVersion = "2022-06-28"

	requestTimeout = 30 * time.Second

	// Maximum response body size (4MB)
	maxResponseSize = 4 << 20
)

// Client talks to the Notion API with a workspace integration token.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cfg        config.NotionConfig

	mu      sync.RWMutex
	schemas map[string][]string

	log logger.Interface
}

// NewClient creates a Notion client.
func NewClient(cfg config.NotionConfig, log logger.Interface) *Client {
	return &Client{
		baseURL:    apiBaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		cfg:        cfg,
		schemas:    make(map[string][]string),
		log:        log,
	}
}

// FindByKey looks up the page whose key property equals key. Returns
// nil when no page matches.
func (c *Client) FindByKey(ctx context.Context, databaseID, key string) (*page.Page, error) {
	body := map[string]any{
		"filter": map[string]any{
			"property":  c.cfg.KeyProperty,
			"rich_text": map[string]any{"equals": key},
		},
		"page_size": 1,
	}

	var result struct {
		Results []struct {
			ID         string          `json:"id"`
			Properties page.Properties `json:"properties"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%s/query", databaseID), body, &result); err != nil {
		return nil, fmt.Errorf("query database for %s: %w", key, err)
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &page.Page{ID: result.Results[0].ID, Properties: result.Results[0].Properties}, nil
}

// CreatePage creates a page with the mapped properties, the workspace
// static defaults, and the given body blocks.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props page.Properties, blocks []page.Block) (*page.Page, error) {
	merged := make(page.Properties, len(props)+3)
	for k, v := range props {
		merged[k] = v
	}
	c.applyDefaults(merged)

	body := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": merged,
	}
	if len(blocks) > 0 {
		body["children"] = blocks
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", body, &created); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	c.log.Infow("notion page created", "page_id", created.ID)
	return &page.Page{ID: created.ID, Properties: merged}, nil
}

// UpdatePage replaces the given properties on an existing page. Static
// defaults and the verification flag are left alone.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props page.Properties) (*page.Page, error) {
	body := map[string]any{"properties": props}

	var updated struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, body, &updated); err != nil {
		return nil, fmt.Errorf("update page %s: %w", pageID, err)
	}
	return &page.Page{ID: updated.ID, Properties: props}, nil
}

// SetVerified flips the verification checkbox on a page.
func (c *Client) SetVerified(ctx context.Context, pageID string, verified bool) error {
	if c.cfg.VerifiedProperty == "" {
		return nil
	}
	body := map[string]any{
		"properties": map[string]any{
			c.cfg.VerifiedProperty: map[string]any{"checkbox": verified},
		},
	}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, body, nil); err != nil {
		return fmt.Errorf("set verified on page %s: %w", pageID, err)
	}
	return nil
}

// Schema returns the property names of a database. The first call per
// database hits the API; later calls serve the cache until
// RefreshSchema.
func (c *Client) Schema(ctx context.Context, databaseID string) ([]string, error) {
	c.mu.RLock()
	cached, ok := c.schemas[databaseID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return c.RefreshSchema(ctx, databaseID)
}

// RefreshSchema reloads a database schema into the cache.
func (c *Client) RefreshSchema(ctx context.Context, databaseID string) ([]string, error) {
	var db struct {
		Properties map[string]any `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, fmt.Errorf("retrieve database %s: %w", databaseID, err)
	}

	names := make([]string, 0, len(db.Properties))
	for name := range db.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	c.mu.Lock()
	c.schemas[databaseID] = names
	c.mu.Unlock()
	return names, nil
}

// CheckConnection reports whether the database is reachable.
func (c *Client) CheckConnection(ctx context.Context, databaseID string) bool {
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, nil); err != nil {
		c.log.Warnw("notion connection check failed", "database_id", databaseID, "error", err)
		return false
	}
	return true
}

// applyDefaults adds the static properties every new page carries: the
// workspace tag, the operator assignment, and the unverified flag.
func (c *Client) applyDefaults(props page.Properties) {
	if c.cfg.TagProperty != "" && c.cfg.Tag != "" {
		props[c.cfg.TagProperty] = map[string]any{
			"multi_select": []any{map[string]any{"name": c.cfg.Tag}},
		}
	}
	if c.cfg.AssigneeProperty != "" && c.cfg.AssigneeID != "" {
		props[c.cfg.AssigneeProperty] = map[string]any{
			"people": []any{map[string]any{"object": "user", "id": c.cfg.AssigneeID}},
		}
	}
	if c.cfg.VerifiedProperty != "" {
		props[c.cfg.VerifiedProperty] = map[string]any{"checkbox": false}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notion API returned status %d: %s", resp.StatusCode, truncate(data, 512))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
