package notion

import (
	"strings"

	"mirra/internal/domain/page"
	"mirra/internal/domain/ticket"
)

// Notion caps a rich_text run at 2000 characters; longer description
// text is split across paragraphs.
const maxRichTextLength = 2000

// BodyBuilder assembles the body blocks of a newly created page: the
// working checklist template, a link back to the tracker issue, and
// the ticket description.
type BodyBuilder struct {
	issueBaseURL string
}

// NewBodyBuilder creates a BodyBuilder. issueBaseURL is the tracker
// site root used for the issue link.
func NewBodyBuilder(issueBaseURL string) *BodyBuilder {
	return &BodyBuilder{issueBaseURL: strings.TrimRight(issueBaseURL, "/")}
}

// Build returns the body blocks for a ticket.
func (b *BodyBuilder) Build(t *ticket.Ticket) []page.Block {
	blocks := []page.Block{
		heading("Checklist"),
		todo("Revisar el ticket"),
		todo("Reproducir el problema"),
		todo("Documentar la solución"),
		callout("Sincronizado automáticamente desde Jira."),
	}

	if b.issueBaseURL != "" {
		blocks = append(blocks, linkParagraph(t.Key, b.issueBaseURL+"/browse/"+t.Key))
	}

	description := t.DescriptionText()
	if description != "" {
		blocks = append(blocks, heading("Descripción"))
		for _, chunk := range splitChunks(description, maxRichTextLength) {
			blocks = append(blocks, paragraph(chunk))
		}
	}

	return blocks
}

// splitChunks cuts text into pieces of at most size runes, preserving
// order and content.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}

func heading(text string) page.Block {
	return page.Block{
		"object": "block",
		"type":   "heading_2",
		"heading_2": map[string]any{
			"rich_text": richText(text),
		},
	}
}

func todo(text string) page.Block {
	return page.Block{
		"object": "block",
		"type":   "to_do",
		"to_do": map[string]any{
			"rich_text": richText(text),
			"checked":   false,
		},
	}
}

func callout(text string) page.Block {
	return page.Block{
		"object": "block",
		"type":   "callout",
		"callout": map[string]any{
			"rich_text": richText(text),
			"icon":      map[string]any{"type": "emoji", "emoji": "🔄"},
		},
	}
}

func paragraph(text string) page.Block {
	return page.Block{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": richText(text),
		},
	}
}

func linkParagraph(text, url string) page.Block {
	return page.Block{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []any{
				map[string]any{
					"type": "text",
					"text": map[string]any{
						"content": text,
						"link":    map[string]any{"url": url},
					},
				},
			},
		},
	}
}

func richText(text string) []any {
	return []any{
		map[string]any{
			"type": "text",
			"text": map[string]any{"content": text},
		},
	}
}
