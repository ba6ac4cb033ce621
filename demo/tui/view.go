package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("📈 tickerbrief Stream Demo"))
	b.WriteString("\n\n")

	// Target
	target := fmt.Sprintf("Researching %s (%s)", m.Ticker, m.Exchange)
	if m.CompanyName != "" {
		target += " - " + m.CompanyName
	}
	b.WriteString(logStyle.Render(target))
	b.WriteString("\n\n")

	// Current stage
	b.WriteString(m.statusText())
	b.WriteString("\n\n")

	// Logs
	if len(m.Logs) > 0 {
		b.WriteString(logStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.Logs {
			b.WriteString(logStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Final brief
	if m.Result != nil {
		b.WriteString(briefBoxStyle.Render(m.formatResult()))
		b.WriteString("\n\n")
	}

	// Help text
	if m.Finished {
		b.WriteString(completeStyle.Render("Press 'q' or Ctrl+C to exit"))
	} else {
		b.WriteString(logStyle.Render("Press 'q' or Ctrl+C to quit"))
	}

	return b.String()
}

// formatResult renders the research document for the brief box.
func (m Model) formatResult() string {
	doc := m.Result
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Brief for %s (%s)\n", doc.Ticker, doc.Exchange))
	b.WriteString(fmt.Sprintf("Mode: %s | Sentiment: %s | Confidence: %.2f\n\n",
		doc.PipelineMode,
		sentimentStyle(doc.Sentiment).Render(doc.Sentiment),
		doc.ConfidenceOverall))

	b.WriteString(wrapText(doc.Synthesis, 72))
	b.WriteString("\n")

	if len(doc.Catalysts) > 0 {
		b.WriteString("\nCatalysts:\n")
		for _, c := range doc.Catalysts {
			b.WriteString(fmt.Sprintf("  • [%s, %.2f] %s\n", c.Impact, c.Confidence, c.Catalyst))
		}
	}

	if len(doc.Sources) > 0 {
		b.WriteString("\nSources:\n")
		for id, cite := range doc.Sources {
			b.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", id, cite.Title, cite.URL))
		}
	}

	return b.String()
}

// wrapText does a simple word wrap for terminal display.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
