// Package content models the rich-text documents attached to tracker
// tickets as a small tagged block tree, and flattens them to plain text.
package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block type tags as they appear on the wire (Atlassian document format).
const (
	TypeDoc        = "doc"
	TypeParagraph  = "paragraph"
	TypeBulletList = "bulletList"
	TypeListItem   = "listItem"
	TypeText       = "text"
	TypeHardBreak  = "hardBreak"
)

// Block is one node of a rich-content document. Unrecognized types are
// carried as-is and ignored by Flatten.
type Block struct {
	Type    string  `json:"type"`
	Text    string  `json:"text,omitempty"`
	Content []Block `json:"content,omitempty"`
}

// Doc is the root of a rich-content document.
type Doc struct {
	Type    string  `json:"type"`
	Content []Block `json:"content"`
}

// Parse decodes a rich-content document from whatever shape the upstream
// delivered: an already-parsed tree, a generic map, or a serialized string.
// String input is decoded leniently; single-quoted pseudo-JSON gets a
// normalization pass before the strict decode.
func Parse(raw any) (*Doc, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("empty document")
	case *Doc:
		return v, nil
	case Doc:
		return &v, nil
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("re-encode document: %w", err)
		}
		return decode(data)
	case []byte:
		return decodeLenient(string(v))
	case string:
		return decodeLenient(v)
	default:
		return nil, fmt.Errorf("unsupported document type %T", raw)
	}
}

func decode(data []byte) (*Doc, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeLenient(s string) (*Doc, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty document")
	}

	doc, err := decode([]byte(s))
	if err == nil {
		return doc, nil
	}

	// Some upstream exports serialize dicts with single quotes and Python
	// literals. Normalize the common cases and retry once.
	normalized := strings.NewReplacer(
		"'", `"`,
		"True", "true",
		"False", "false",
		"None", "null",
	).Replace(s)

	if doc, retryErr := decode([]byte(normalized)); retryErr == nil {
		return doc, nil
	}
	return nil, err
}

// Flatten walks the document depth-first and emits plain text: paragraph
// text runs joined, hard breaks as newlines, bullet items prefixed with
// "* ". Everything else is dropped. The result is trimmed of trailing
// whitespace.
func Flatten(doc *Doc) string {
	if doc == nil {
		return ""
	}

	var b strings.Builder
	for _, block := range doc.Content {
		switch block.Type {
		case TypeParagraph:
			writeParagraph(&b, block)
		case TypeBulletList:
			writeBulletList(&b, block)
		}
	}

	return strings.TrimRight(b.String(), " \t\n")
}

func writeParagraph(b *strings.Builder, block Block) {
	for _, run := range block.Content {
		switch run.Type {
		case TypeText:
			b.WriteString(run.Text)
			b.WriteString("\n")
		case TypeHardBreak:
			b.WriteString("\n")
		}
	}
}

func writeBulletList(b *strings.Builder, block Block) {
	for _, item := range block.Content {
		if item.Type != TypeListItem {
			continue
		}
		for _, paragraph := range item.Content {
			if paragraph.Type != TypeParagraph {
				continue
			}
			for _, run := range paragraph.Content {
				if run.Type == TypeText {
					b.WriteString("* ")
					b.WriteString(run.Text)
					b.WriteString("\n")
				}
			}
		}
	}
}

// FlattenRaw parses and flattens in one step. On parse failure the raw
// input is returned unchanged as a string, so malformed documents degrade
// to their original text instead of being lost.
func FlattenRaw(raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return "", nil
	}

	doc, err := Parse(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw), err
	}
	return Flatten(doc), nil
}
