// Package usecases contains the synchronization engine: the
// create-or-update decision logic, cursor tracking, and the per-project
// sync passes.
package usecases

import (
	"context"
	"time"

	"mirra/internal/domain/page"
	"mirra/internal/domain/ticket"
	"mirra/internal/shared/config"
)

// TicketSource is the tracker-side port. Implementations page through
// all results transparently and bound every call with a timeout.
type TicketSource interface {
	// FetchNew returns tickets created within the short recency window,
	// newest-created first.
	FetchNew(ctx context.Context, project config.ProjectConfig) ([]*ticket.Ticket, error)

	// FetchUpdated returns tickets updated within the recency window,
	// created within the lookback window and in a configured in-progress
	// status, newest-updated first.
	FetchUpdated(ctx context.Context, project config.ProjectConfig) ([]*ticket.Ticket, error)

	// FetchAssigned returns every ticket assigned to the operator in an
	// open-work status, for full reconciliation.
	FetchAssigned(ctx context.Context, project config.ProjectConfig) ([]*ticket.Ticket, error)

	CheckConnection(ctx context.Context) bool
}

// Workspace is the document-workspace port.
type Workspace interface {
	// FindByKey looks up the page whose key property equals key.
	// Returns nil when no page matches.
	FindByKey(ctx context.Context, databaseID, key string) (*page.Page, error)

	// CreatePage creates a page with the mapped properties plus the
	// implementation's static defaults (tags, assignment, unverified
	// flag) and the given body blocks.
	CreatePage(ctx context.Context, databaseID string, props page.Properties, blocks []page.Block) (*page.Page, error)
	UpdatePage(ctx context.Context, pageID string, props page.Properties) (*page.Page, error)

	// SetVerified flips the verification checkbox on a page.
	SetVerified(ctx context.Context, pageID string, verified bool) error

	// Schema returns the property names of a database. Cached;
	// refreshed explicitly by the implementation's own refresh call.
	Schema(ctx context.Context, databaseID string) ([]string, error)

	CheckConnection(ctx context.Context, databaseID string) bool
}

// CursorStore persists the last processed ticket key per project.
// Values are replaced atomically per project key.
type CursorStore interface {
	// Get returns the cursor for a project, "" when none is stored.
	Get(ctx context.Context, projectKey string) (string, error)
	Set(ctx context.Context, projectKey, issueKey string) error
}

// BodyBuilder assembles the content blocks for a newly created page.
type BodyBuilder interface {
	Build(t *ticket.Ticket) []page.Block
}

// Schedule exposes the scheduler's view of upcoming work for the status
// report.
type Schedule interface {
	NextRun(projectKey string) (time.Time, bool)
}
