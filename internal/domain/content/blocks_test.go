package content

import "testing"

func paragraph(runs ...Block) Block {
	return Block{Type: TypeParagraph, Content: runs}
}

func text(s string) Block {
	return Block{Type: TypeText, Text: s}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		doc      *Doc
		expected string
	}{
		{
			name:     "nil document",
			doc:      nil,
			expected: "",
		},
		{
			name: "single paragraph",
			doc: &Doc{Type: TypeDoc, Content: []Block{
				paragraph(text("Hello")),
			}},
			expected: "Hello",
		},
		{
			name: "paragraph then bullet list",
			doc: &Doc{Type: TypeDoc, Content: []Block{
				paragraph(text("Hello")),
				{Type: TypeBulletList, Content: []Block{
					{Type: TypeListItem, Content: []Block{
						paragraph(text("world")),
					}},
				}},
			}},
			expected: "Hello\n* world",
		},
		{
			name: "hard break inside paragraph",
			doc: &Doc{Type: TypeDoc, Content: []Block{
				paragraph(text("line one"), Block{Type: TypeHardBreak}, text("line two")),
			}},
			expected: "line one\n\nline two",
		},
		{
			name: "unknown block types are ignored",
			doc: &Doc{Type: TypeDoc, Content: []Block{
				{Type: "mediaGroup", Content: []Block{text("hidden")}},
				paragraph(text("visible")),
			}},
			expected: "visible",
		},
		{
			name: "multiple bullet items",
			doc: &Doc{Type: TypeDoc, Content: []Block{
				{Type: TypeBulletList, Content: []Block{
					{Type: TypeListItem, Content: []Block{paragraph(text("first"))}},
					{Type: TypeListItem, Content: []Block{paragraph(text("second"))}},
				}},
			}},
			expected: "* first\n* second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(tt.doc)
			if got != tt.expected {
				t.Errorf("Flatten() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseJSONString(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello"}]}]}`

	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := Flatten(doc); got != "Hello" {
		t.Errorf("Flatten() = %q, want %q", got, "Hello")
	}
}

func TestParseSingleQuoted(t *testing.T) {
	raw := `{'type': 'doc', 'content': [{'type': 'paragraph', 'content': [{'type': 'text', 'text': 'quoted'}]}]}`

	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := Flatten(doc); got != "quoted" {
		t.Errorf("Flatten() = %q, want %q", got, "quoted")
	}
}

func TestParseMap(t *testing.T) {
	raw := map[string]any{
		"type": "doc",
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": "from map"},
				},
			},
		},
	}

	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := Flatten(doc); got != "from map" {
		t.Errorf("Flatten() = %q, want %q", got, "from map")
	}
}

func TestFlattenRawFallback(t *testing.T) {
	raw := "plain text, not a document"

	got, err := FlattenRaw(raw)
	if err == nil {
		t.Error("FlattenRaw() expected parse error for plain text")
	}
	if got != raw {
		t.Errorf("FlattenRaw() = %q, want original input %q", got, raw)
	}
}

func TestFlattenRawEmpty(t *testing.T) {
	got, err := FlattenRaw(nil)
	if err != nil {
		t.Errorf("FlattenRaw(nil) error = %v", err)
	}
	if got != "" {
		t.Errorf("FlattenRaw(nil) = %q, want empty", got)
	}

	got, err = FlattenRaw("   ")
	if err != nil {
		t.Errorf("FlattenRaw(blank) error = %v", err)
	}
	if got != "" {
		t.Errorf("FlattenRaw(blank) = %q, want empty", got)
	}
}
