// Package testutil provides mock implementations for testing the sync
// application layer.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mirra/internal/domain/page"
	"mirra/internal/domain/ticket"
	"mirra/internal/shared/config"
	"mirra/internal/shared/logger"
)

// MockTicketSource is a mock implementation of the tracker port.
type MockTicketSource struct {
	NewIssues      []*ticket.Ticket
	UpdatedIssues  []*ticket.Ticket
	AssignedIssues []*ticket.Ticket
	Connected      bool

	FetchNewErr      error
	FetchUpdatedErr  error
	FetchAssignedErr error
}

// NewMockTicketSource creates a connected mock source with no issues.
func NewMockTicketSource() *MockTicketSource {
	return &MockTicketSource{Connected: true}
}

func (m *MockTicketSource) FetchNew(_ context.Context, _ config.ProjectConfig) ([]*ticket.Ticket, error) {
	return m.NewIssues, m.FetchNewErr
}

func (m *MockTicketSource) FetchUpdated(_ context.Context, _ config.ProjectConfig) ([]*ticket.Ticket, error) {
	return m.UpdatedIssues, m.FetchUpdatedErr
}

func (m *MockTicketSource) FetchAssigned(_ context.Context, _ config.ProjectConfig) ([]*ticket.Ticket, error) {
	return m.AssignedIssues, m.FetchAssignedErr
}

func (m *MockTicketSource) CheckConnection(_ context.Context) bool {
	return m.Connected
}

// MockWorkspace is a mock implementation of the workspace port backed
// by an in-memory page map keyed by ticket key.
type MockWorkspace struct {
	mu     sync.Mutex
	pages  map[string]*page.Page
	nextID int

	SchemaNames []string
	Connected   bool

	// Error injection
	FindErr     error
	CreateErr   error
	UpdateErr   error
	VerifyErr   error
	SchemaErr   error
	FailCreates map[string]error // per ticket key

	CreateCalls   []string
	UpdateCalls   []string
	VerifiedCalls []string // page IDs passed to SetVerified(false)
}

// NewMockWorkspace creates an empty connected workspace.
func NewMockWorkspace(schema ...string) *MockWorkspace {
	return &MockWorkspace{
		pages:       make(map[string]*page.Page),
		SchemaNames: schema,
		Connected:   true,
	}
}

// AddPage seeds an existing page for a ticket key.
func (m *MockWorkspace) AddPage(key string) *page.Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p := &page.Page{ID: fmt.Sprintf("page-%d", m.nextID), Properties: page.Properties{}}
	m.pages[key] = p
	return p
}

// PageCount returns the number of stored pages.
func (m *MockWorkspace) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

func (m *MockWorkspace) FindByKey(_ context.Context, _, key string) (*page.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.pages[key], nil
}

func (m *MockWorkspace) CreatePage(_ context.Context, _ string, props page.Properties, _ []page.Block) (*page.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := keyFromProps(props)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if err, ok := m.FailCreates[key]; ok {
		return nil, err
	}

	m.nextID++
	p := &page.Page{ID: fmt.Sprintf("page-%d", m.nextID), Properties: props}
	m.pages[key] = p
	m.CreateCalls = append(m.CreateCalls, key)
	return p, nil
}

func (m *MockWorkspace) UpdatePage(_ context.Context, pageID string, props page.Properties) (*page.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.UpdateCalls = append(m.UpdateCalls, pageID)
	for _, p := range m.pages {
		if p.ID == pageID {
			p.Properties = props
			return p, nil
		}
	}
	return nil, fmt.Errorf("page %s not found", pageID)
}

func (m *MockWorkspace) SetVerified(_ context.Context, pageID string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VerifyErr != nil {
		return m.VerifyErr
	}
	if !verified {
		m.VerifiedCalls = append(m.VerifiedCalls, pageID)
	}
	return nil
}

func (m *MockWorkspace) Schema(_ context.Context, _ string) ([]string, error) {
	if m.SchemaErr != nil {
		return nil, m.SchemaErr
	}
	return m.SchemaNames, nil
}

func (m *MockWorkspace) CheckConnection(_ context.Context, _ string) bool {
	return m.Connected
}

// keyFromProps digs the ticket key out of a mapped property set. Mirrors
// the rich_text shape the mapper produces for the key property.
func keyFromProps(props page.Properties) string {
	for _, v := range props {
		prop, ok := v.(map[string]any)
		if !ok {
			continue
		}
		runs, ok := prop["rich_text"].([]any)
		if !ok || len(runs) == 0 {
			continue
		}
		run, ok := runs[0].(map[string]any)
		if !ok {
			continue
		}
		text, ok := run["text"].(map[string]any)
		if !ok {
			continue
		}
		if s, ok := text["content"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// MockCursorStore is an in-memory cursor store with error injection.
type MockCursorStore struct {
	mu      sync.Mutex
	cursors map[string]string

	GetErr error
	SetErr error
	Sets   []string
}

// NewMockCursorStore creates an empty cursor store.
func NewMockCursorStore() *MockCursorStore {
	return &MockCursorStore{cursors: make(map[string]string)}
}

func (m *MockCursorStore) Get(_ context.Context, projectKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.cursors[projectKey], nil
}

func (m *MockCursorStore) Set(_ context.Context, projectKey, issueKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.cursors[projectKey] = issueKey
	m.Sets = append(m.Sets, issueKey)
	return nil
}

// Cursor returns the stored cursor for a project.
func (m *MockCursorStore) Cursor(projectKey string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[projectKey]
}

// Seed stores a cursor without going through Set.
func (m *MockCursorStore) Seed(projectKey, issueKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[projectKey] = issueKey
}

// MockBodyBuilder returns a fixed single-block body.
type MockBodyBuilder struct{}

func (MockBodyBuilder) Build(_ *ticket.Ticket) []page.Block {
	return []page.Block{{"type": "paragraph"}}
}

// MockSchedule returns a fixed next-run time for every project.
type MockSchedule struct {
	Next time.Time
}

func (m *MockSchedule) NextRun(_ string) (time.Time, bool) {
	if m.Next.IsZero() {
		return time.Time{}, false
	}
	return m.Next, true
}

// MockLogger is a logger.Interface that records messages.
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

// NewMockLogger creates a MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

func (m *MockLogger) Debug(msg string, _ ...any) { m.record(msg) }
func (m *MockLogger) Info(msg string, _ ...any)  { m.record(msg) }
func (m *MockLogger) Warn(msg string, _ ...any)  { m.record(msg) }
func (m *MockLogger) Error(msg string, _ ...any) { m.record(msg) }
func (m *MockLogger) Fatal(msg string, _ ...any) { m.record(msg) }

func (m *MockLogger) With(_ ...any) logger.Interface  { return m }
func (m *MockLogger) Named(_ string) logger.Interface { return m }

func (m *MockLogger) Debugw(msg string, _ ...interface{}) { m.record(msg) }
func (m *MockLogger) Infow(msg string, _ ...interface{})  { m.record(msg) }
func (m *MockLogger) Warnw(msg string, _ ...interface{})  { m.record(msg) }
func (m *MockLogger) Errorw(msg string, _ ...interface{}) { m.record(msg) }
func (m *MockLogger) Fatalw(msg string, _ ...interface{}) { m.record(msg) }
