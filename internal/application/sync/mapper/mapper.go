// Package mapper converts tracker tickets into workspace property sets
// according to the configured field map. Pure transformation, no side
// effects beyond warning logs.
package mapper

import (
	"fmt"
	"strings"
	"time"

	"mirra/internal/domain/content"
	"mirra/internal/domain/page"
	"mirra/internal/domain/ticket"
	"mirra/internal/shared/logger"
)

// Fixed tracker fields handled specially; everything else is treated as
// an open extension field.
const (
	fieldKey         = "key"
	fieldSummary     = "summary"
	fieldStatus      = "status"
	fieldCreated     = "created"
	fieldAssignee    = "assignee"
	fieldReporter    = "reporter"
	fieldDescription = "description"
)

// Mapper applies a tracker-field to workspace-property mapping.
type Mapper struct {
	fieldMap       map[string]string
	alternates     map[string]string
	fallbackOffset *time.Location
	log            logger.Interface
}

// New creates a Mapper. fallbackUTCOffset is the whole-hour UTC offset
// assumed for timestamps that arrive without their own zone.
func New(fieldMap, alternates map[string]string, fallbackUTCOffset int, log logger.Interface) *Mapper {
	return &Mapper{
		fieldMap:       fieldMap,
		alternates:     alternates,
		fallbackOffset: time.FixedZone(fmt.Sprintf("UTC%+d", fallbackUTCOffset), fallbackUTCOffset*3600),
		log:            log,
	}
}

// Map builds the property set for one ticket. Target properties missing
// from the workspace schema are skipped with a warning so remote schema
// drift never fails a sync pass.
func (m *Mapper) Map(t *ticket.Ticket, schema []string) (page.Properties, error) {
	if t == nil {
		return nil, fmt.Errorf("nil ticket")
	}

	known := make(map[string]bool, len(schema))
	for _, name := range schema {
		known[name] = true
	}

	props := page.Properties{}
	for trackerField, targetProperty := range m.fieldMap {
		if len(schema) > 0 && !known[targetProperty] {
			m.log.Warnw("target property missing from workspace schema, skipping",
				"tracker_field", trackerField,
				"target_property", targetProperty,
			)
			continue
		}

		value, err := m.mapField(t, trackerField)
		if err != nil {
			return nil, fmt.Errorf("map field %s: %w", trackerField, err)
		}
		props[targetProperty] = value
	}

	return props, nil
}

func (m *Mapper) mapField(t *ticket.Ticket, trackerField string) (any, error) {
	switch trackerField {
	case fieldSummary:
		return titleProperty(t.Summary), nil
	case fieldKey:
		return richTextProperty(t.Key), nil
	case fieldStatus:
		return richTextProperty(t.Status), nil
	case fieldCreated:
		normalized, err := m.NormalizeTimestamp(t.Created)
		if err != nil {
			return nil, err
		}
		return dateProperty(normalized), nil
	case fieldAssignee:
		return richTextProperty(t.AssigneeName()), nil
	case fieldReporter:
		return richTextProperty(t.ReporterName()), nil
	case fieldDescription:
		return richTextProperty(m.descriptionText(t)), nil
	default:
		return richTextProperty(m.extraText(t, trackerField)), nil
	}
}

func (m *Mapper) descriptionText(t *ticket.Ticket) string {
	if t.Description != nil {
		text, err := content.FlattenRaw(t.Description)
		if err != nil {
			m.log.Warnw("description parse failed, using raw text",
				"key", t.Key, "error", err)
		}
		return text
	}
	if alt, ok := m.alternates[fieldDescription]; ok {
		return m.extraText(t, alt)
	}
	return ""
}

// extraText resolves an open extension field, consulting the configured
// alternate when the primary is absent. Rich-content values flatten to
// plain text, everything else stringifies.
func (m *Mapper) extraText(t *ticket.Ticket, trackerField string) string {
	value, ok := t.Field(trackerField)
	if !ok || value == nil || value == "" {
		alt, hasAlt := m.alternates[trackerField]
		if !hasAlt {
			return ""
		}
		if value, ok = t.Field(alt); !ok || value == nil {
			return ""
		}
	}

	if doc, isDoc := value.(map[string]any); isDoc {
		text, err := content.FlattenRaw(doc)
		if err != nil {
			m.log.Warnw("rich field parse failed, using raw text",
				"key", t.Key, "field", trackerField, "error", err)
		}
		return text
	}
	if s, isString := value.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// Timestamp layouts the tracker emits, tried in order.
var (
	zonedLayouts = []string{
		"2006-01-02T15:04:05.000-0700",
		time.RFC3339Nano,
		time.RFC3339,
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
)

// NormalizeTimestamp converts a tracker timestamp to UTC ISO-8601 with
// second precision. Values with their own offset are converted directly;
// naive values are interpreted in the configured fallback zone.
func (m *Mapper) NormalizeTimestamp(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty timestamp")
	}

	for _, layout := range zonedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().Format("2006-01-02T15:04:05Z07:00"), nil
		}
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, raw, m.fallbackOffset); err == nil {
			return ts.UTC().Format("2006-01-02T15:04:05Z07:00"), nil
		}
	}

	return "", fmt.Errorf("unrecognized timestamp %q", raw)
}

func titleProperty(text string) map[string]any {
	return map[string]any{
		"title": []any{
			map[string]any{
				"type": "text",
				"text": map[string]any{"content": text},
			},
		},
	}
}

func richTextProperty(text string) map[string]any {
	return map[string]any{
		"rich_text": []any{
			map[string]any{
				"type": "text",
				"text": map[string]any{"content": text},
			},
		},
	}
}

func dateProperty(start string) map[string]any {
	return map[string]any{
		"date": map[string]any{"start": start},
	}
}
