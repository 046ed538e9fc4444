package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/usher/pkg/domain"
)

// OutcomeMarkdown renders a single classified outcome as markdown.
func OutcomeMarkdown(out domain.Outcome) string {
	switch out.Kind {
	case domain.KindOpened:
		return fmt.Sprintf("✅ Opened **%s**\n", out.Resource)
	case domain.KindOpenFailed:
		md := fmt.Sprintf("❌ Open failed for **%s**\n", out.Resource)
		if out.Detail != "" {
			md += fmt.Sprintf("\n> %s\n", out.Detail)
		}
		return md
	case domain.KindUnsupported:
		return fmt.Sprintf("🚫 No handler supports **%s**\n", out.Resource)
	default:
		return fmt.Sprintf("%s **%s**\n", out.Kind, out.Resource)
	}
}

// HistoryMarkdown renders recent outcomes, newest first, as a markdown table.
func HistoryMarkdown(outcomes []domain.Outcome) string {
	var sb strings.Builder
	sb.WriteString("# Recent Outcomes\n\n")

	if len(outcomes) == 0 {
		sb.WriteString("_No outcomes recorded yet._\n")
		return sb.String()
	}

	sb.WriteString("| When | Kind | Resource | Detail |\n")
	sb.WriteString("|------|------|----------|--------|\n")
	for _, out := range outcomes {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			out.At.Format(time.RFC3339),
			kindBadge(out.Kind),
			escapeCell(out.Resource),
			escapeCell(out.Detail),
		))
	}
	return sb.String()
}

func kindBadge(kind domain.Kind) string {
	switch kind {
	case domain.KindOpened:
		return "✅ opened"
	case domain.KindOpenFailed:
		return "❌ open_failed"
	case domain.KindUnsupported:
		return "🚫 unsupported"
	default:
		return string(kind)
	}
}

// escapeCell keeps pipes and newlines from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
