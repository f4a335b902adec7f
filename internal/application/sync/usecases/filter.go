package usecases

import "mirra/internal/domain/ticket"

// FilterByAssignee returns the tickets assigned to the given identity.
// Identifiers containing "@" match the assignee email, all others the
// display name; both exact and case-insensitive. Input order is kept.
func FilterByAssignee(tickets []*ticket.Ticket, identifier string) []*ticket.Ticket {
	filtered := make([]*ticket.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.MatchesAssignee(identifier) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
