package usecases

import (
	"context"
	"errors"
	"fmt"

	"mirra/internal/domain/ticket"
	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"

	"mirra/internal/application/sync/mapper"
)

// ErrUnmappable marks a ticket whose field mapping failed. Incremental
// passes skip these tickets; only write failures stop a pass.
var ErrUnmappable = errors.New("unmappable ticket")

// Upserter implements the idempotency core: lookup by ticket key, then
// update the existing page or create a new one.
//
// Lookup-then-act is not atomic against the remote store; two truly
// concurrent upserts for the same new key can each create a page. The
// scheduler's one-in-flight-run-per-project guarantee is what rules
// that out in practice.
type Upserter struct {
	workspace Workspace
	mapper    *mapper.Mapper
	body      BodyBuilder
	log       logger.Interface
}

// NewUpserter creates an Upserter.
func NewUpserter(workspace Workspace, m *mapper.Mapper, body BodyBuilder, log logger.Interface) *Upserter {
	return &Upserter{
		workspace: workspace,
		mapper:    m,
		body:      body,
		log:       log,
	}
}

// Upsert creates or updates the page mirroring the ticket. Returns
// whether a new page was created. Updates never touch the verification
// flag; only full reconciliation resets it.
func (u *Upserter) Upsert(ctx context.Context, project config.ProjectConfig, t *ticket.Ticket) (bool, error) {
	schema, err := u.workspace.Schema(ctx, project.DatabaseID)
	if err != nil {
		return false, fmt.Errorf("fetch workspace schema: %w", err)
	}

	props, err := u.mapper.Map(t, schema)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrUnmappable, t.Key, err)
	}

	existing, err := u.workspace.FindByKey(ctx, project.DatabaseID, t.Key)
	if err != nil {
		return false, fmt.Errorf("lookup page for %s: %w", t.Key, err)
	}

	if existing != nil {
		u.log.Debugw("page exists, updating", "key", t.Key, "page_id", existing.ID)
		if _, err := u.workspace.UpdatePage(ctx, existing.ID, props); err != nil {
			return false, fmt.Errorf("update page for %s: %w", t.Key, err)
		}
		return false, nil
	}

	u.log.Debugw("no page found, creating", "key", t.Key)
	if _, err := u.workspace.CreatePage(ctx, project.DatabaseID, props, u.body.Build(t)); err != nil {
		return false, fmt.Errorf("create page for %s: %w", t.Key, err)
	}
	return true, nil
}
