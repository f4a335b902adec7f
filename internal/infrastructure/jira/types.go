package jira

import (
	"mirra/internal/domain/ticket"
)

// searchRequest is the body of the paginated JQL search endpoint.
type searchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
	Issues        []wireIssue `json:"issues"`
	NextPageToken string      `json:"nextPageToken"`
}

// wireIssue keeps fields as a raw map so that configured custom fields
// survive into the domain ticket's Extra set.
type wireIssue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// toTicket converts one wire issue into a domain ticket. extraFields
// names the custom field IDs to carry through verbatim.
func (w wireIssue) toTicket(extraFields []string) *ticket.Ticket {
	t := &ticket.Ticket{Key: w.Key}
	if w.Fields == nil {
		return t
	}

	if s, ok := w.Fields["summary"].(string); ok {
		t.Summary = s
	}
	if s, ok := w.Fields["created"].(string); ok {
		t.Created = s
	}
	if status, ok := w.Fields["status"].(map[string]any); ok {
		if name, ok := status["name"].(string); ok {
			t.Status = name
		}
	}
	t.Assignee = toUser(w.Fields["assignee"])
	t.Reporter = toUser(w.Fields["reporter"])
	t.Description = w.Fields["description"]

	for _, field := range extraFields {
		v, ok := w.Fields[field]
		if !ok || v == nil {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[field] = v
	}
	return t
}

func toUser(v any) *ticket.User {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	u := &ticket.User{}
	if s, ok := m["displayName"].(string); ok {
		u.DisplayName = s
	}
	if s, ok := m["emailAddress"].(string); ok {
		u.EmailAddress = s
	}
	return u
}
