package graph

import (
	"fmt"
	"strings"
)

// Route is one scheme-to-handler binding in the routing table.
type Route struct {
	Scheme  string
	Handler string
}

// Overlay contains dynamic outcome data to visualize on the graph.
type Overlay struct {
	// Active is the scheme of the in-flight attempt, if any.
	Active string
	// Opened lists schemes whose most recent outcome was a successful open.
	Opened []string
	// Failed lists schemes whose most recent outcome was a failed attempt.
	Failed []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from the routing
// table. Every resource flows from a single entry circle along its scheme
// edge into the handler that opens it; unrouted schemes fall through a dotted
// edge into the unsupported sink. Overlay styles (Opened/Failed/Active) are
// applied if provided.
func GenerateMermaid(routes []Route, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    resource((\"resource\"))\n")

	for _, route := range routes {
		safeID := sanitizeMermaidID(route.Scheme)
		if safeID == "" {
			continue
		}

		handler := route.Handler
		if handler == "" {
			handler = route.Scheme
		}
		// Escape double quotes in handler commands for Mermaid labels
		safeHandler := strings.ReplaceAll(handler, "\"", "'")

		sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", safeID, safeHandler))
		sb.WriteString(fmt.Sprintf("    resource -- \"%s\" --> %s\n", route.Scheme, safeID))
	}

	sb.WriteString("    unsupported[\"unsupported\"]\n")
	sb.WriteString("    resource -.-> unsupported\n")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef opened fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, scheme := range overlay.Opened {
			safeID := sanitizeMermaidID(scheme)
			if safeID != "" && !styled[safeID] {
				styled[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s opened;\n", safeID))
			}
		}
		for _, scheme := range overlay.Failed {
			safeID := sanitizeMermaidID(scheme)
			if safeID != "" && !styled[safeID] {
				styled[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s failed;\n", safeID))
			}
		}
		if overlay.Active != "" {
			safeActive := sanitizeMermaidID(overlay.Active)
			if safeActive != "" {
				sb.WriteString(fmt.Sprintf("    class %s active;\n", safeActive))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "+", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
