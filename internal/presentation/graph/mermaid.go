package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sitepass/pkg/domain"
)

// startNode is the pseudo node new conversations enter from.
const startNode = "new"

// GraphOverlay highlights a conversation's position on the diagram.
type GraphOverlay struct {
	CurrentStatus domain.Status
}

// Options tunes the rendered diagram.
type Options struct {
	// SelfLoops keeps edges whose status does not change.
	SelfLoops bool
}

// GenerateMermaid produces a Mermaid flowchart of the conversation state
// machine. Edges sharing the same endpoints are merged into one arrow whose
// label lists every evidence combination that takes it.
// It applies semantic styling:
// - Entry: ((Circle))
// - Terminal status: ([Stadium])
// - Default: [Rectangle]
func GenerateMermaid(edges []domain.Transition, opts Options, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", startNode, startNode)
	for _, s := range domain.Statuses() {
		opener, closer := "[", "]"
		if s.Terminal() {
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, s, closer)
	}

	type key struct{ from, to string }
	var order []key
	labels := make(map[key][]string)
	for _, e := range edges {
		if e.From != "" && e.From == e.To && !opts.SelfLoops {
			continue
		}
		k := key{from: startNode, to: nodeID(e.To)}
		if e.From != "" {
			k.from = nodeID(e.From)
		}
		if _, seen := labels[k]; !seen {
			order = append(order, k)
		}
		labels[k] = append(labels[k], e.Evidence.Label())
	}

	for _, k := range order {
		label := strings.Join(labels[k], " / ")
		// Escape double quotes in the label for Mermaid
		label = strings.ReplaceAll(label, "\"", "'")
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if k.from == k.to {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", k.from, arrow, k.to)
	}

	if overlay != nil && overlay.CurrentStatus != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		current := domain.ParseStatus(string(overlay.CurrentStatus))
		if current.Known() {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(current))
		}
	}

	return sb.String()
}

func nodeID(s domain.Status) string {
	if s.Known() {
		return s.Identifier()
	}
	return sanitizeMermaidID(string(s))
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
