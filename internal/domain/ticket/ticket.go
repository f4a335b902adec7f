// Package ticket models tracker issues as they arrive from the remote
// API. Tickets are constructed fresh on every fetch and never mutated;
// only their key outlives a sync pass, via the cursor.
package ticket

import (
	"fmt"
	"strings"

	"mirra/internal/domain/content"
)

// UnknownUser is the display name used when a ticket has no assignee or
// reporter.
const UnknownUser = "Unknown"

// User identifies a tracker account on a ticket.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Ticket is one issue as fetched from the tracker. Fixed fields cover
// what the engine itself needs; everything else the field map references
// lives in Extra.
type Ticket struct {
	Key         string
	Summary     string
	Status      string
	Created     string
	Assignee    *User
	Reporter    *User
	Description any

	// Extra holds additional named fields requested through the field
	// map, keyed by tracker field name. Values are raw API values.
	Extra map[string]any
}

// Validate reports whether the ticket carries the minimum data the
// engine requires. Upstream occasionally returns partial records; those
// are skipped, not fatal.
func (t *Ticket) Validate() error {
	if strings.TrimSpace(t.Key) == "" {
		return fmt.Errorf("ticket is missing key")
	}
	if strings.TrimSpace(t.Summary) == "" {
		return fmt.Errorf("ticket %s is missing summary", t.Key)
	}
	return nil
}

// Field returns a named extra field and whether it was present.
func (t *Ticket) Field(name string) (any, bool) {
	if t.Extra == nil {
		return nil, false
	}
	v, ok := t.Extra[name]
	return v, ok
}

// StringField returns a named extra field stringified, or "" when absent.
func (t *Ticket) StringField(name string) string {
	v, ok := t.Field(name)
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// AssigneeName returns the assignee display name, defaulting to Unknown.
func (t *Ticket) AssigneeName() string {
	if t.Assignee == nil || t.Assignee.DisplayName == "" {
		return UnknownUser
	}
	return t.Assignee.DisplayName
}

// ReporterName returns the reporter display name, defaulting to Unknown.
func (t *Ticket) ReporterName() string {
	if t.Reporter == nil || t.Reporter.DisplayName == "" {
		return UnknownUser
	}
	return t.Reporter.DisplayName
}

// DescriptionText flattens the rich description to plain text. Malformed
// documents fall back to their raw textual form.
func (t *Ticket) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	text, _ := content.FlattenRaw(t.Description)
	return text
}

// MatchesAssignee reports whether the ticket is assigned to the given
// identity. An identifier containing "@" matches the assignee email,
// otherwise the display name; both comparisons are exact and
// case-insensitive. Unassigned tickets never match.
func (t *Ticket) MatchesAssignee(identifier string) bool {
	if t.Assignee == nil || identifier == "" {
		return false
	}
	if strings.Contains(identifier, "@") {
		return strings.EqualFold(t.Assignee.EmailAddress, identifier)
	}
	return strings.EqualFold(t.Assignee.DisplayName, identifier)
}
