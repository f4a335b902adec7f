// Package page holds the workspace-side representation of a mirrored
// ticket.
package page

// Properties is a set of workspace property payloads keyed by property
// name. Values follow the workspace API's JSON shapes and are built by
// the field mapper.
type Properties map[string]any

// Block is one content block of a page body, in the workspace API's
// JSON shape.
type Block map[string]any

// Page is a mirrored record in the document workspace. The ID is the
// workspace's opaque page identifier.
type Page struct {
	ID         string
	Properties Properties
}
