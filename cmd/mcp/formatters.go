package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/omarkov/insight-session/internal/core/domain"
)

func formatDocuments(snap domain.Session) string {
	if len(snap.Documents) == 0 {
		return "No documents in the session."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Documents (%d)\n\n", len(snap.Documents)))
	for _, doc := range snap.Documents {
		marker := " "
		if doc.ID == snap.SelectedDocumentID {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %s — %s (%d pages, %s)\n",
			marker, doc.ID, doc.DisplayName, doc.PageCount, doc.Processing))
	}
	if snap.SelectedDocumentID != "" {
		b.WriteString(fmt.Sprintf("\nSelected: %s, page %d", snap.SelectedDocumentID, snap.CurrentPage))
	}
	return b.String()
}

func formatCards(cards []domain.Card) string {
	if len(cards) == 0 {
		return "No insight cards. Run generate_insights first."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Insight cards (%d)\n\n", len(cards)))
	for i, card := range cards {
		b.WriteString(fmt.Sprintf("%d. [%s] %s (document %s, page %d)\n",
			i+1, card.ID, card.Heading, card.SourceDocumentID, card.SourcePage))
		if card.Snippet != "" {
			b.WriteString("   " + truncate(card.Snippet, 200) + "\n")
		}
	}
	return b.String()
}

func formatDetail(cardID string, detail domain.Detail) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Detail for card %s\n", cardID))
	writeSection(&b, "Key insights", detail.KeyInsights)
	writeSection(&b, "Did you know", detail.DidYouKnow)
	writeSection(&b, "Contradictions", detail.Contradictions)
	writeSection(&b, "Inspirations", detail.Inspirations)
	if detail.IsZero() {
		b.WriteString("\n(no detail content)")
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n## " + title + "\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}

// truncate cuts s to at most n bytes, backing up to a rune boundary so the
// output is always valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
