package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/sitepass/pkg/conversation"
	"github.com/aretw0/sitepass/pkg/domain"
)

// ConversationReport describes the outcome of one advance as markdown.
func ConversationReport(out conversation.Outcome) string {
	var sb strings.Builder
	sb.WriteString("## Conversation\n\n")
	fmt.Fprintf(&sb, "%s\n\n", out.Message())
	fmt.Fprintf(&sb, "- **Status:** %s\n", out.Status)
	if out.Record.CompanyName != "" {
		fmt.Fprintf(&sb, "- **Company:** %s\n", out.Record.CompanyName)
	}
	if !out.Record.LastUpdated.IsZero() {
		fmt.Fprintf(&sb, "- **Last updated:** %s\n", out.Record.LastUpdated.Format(domain.DateLayout))
	}
	fmt.Fprintf(&sb, "\n> %s\n", out.Instruction)
	return sb.String()
}

// InductionReport lists one line per engineer.
func InductionReport(company string, results []domain.InductionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Inductions for %s\n\n", company)
	if len(results) == 0 {
		sb.WriteString("_No engineers given._\n")
		return sb.String()
	}
	for _, r := range results {
		mark := "✗"
		if r.Classification == domain.Inducted {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "- %s %s\n", mark, r.Message())
	}
	return sb.String()
}

// WindowReport describes a maintenance window check.
func WindowReport(equipment, company string, w domain.WindowResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Maintenance window: %s (%s)\n\n", equipment, company)
	fmt.Fprintf(&sb, "**%s**\n\n", w.Status())
	fmt.Fprintf(&sb, "%s\n\n", w.Message())
	if len(w.ScheduledMonths) > 0 {
		fmt.Fprintf(&sb, "Scheduled months: %s\n", strings.Join(w.ScheduledMonths, ", "))
	}
	return sb.String()
}

// TransitionTable renders the state machine as a markdown table.
func TransitionTable(edges []domain.Transition) string {
	var sb strings.Builder
	sb.WriteString("| From | Evidence | To |\n|---|---|---|\n")
	for _, e := range edges {
		from := string(e.From)
		if from == "" {
			from = "_(new)_"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", from, e.Evidence.Label(), e.To)
	}
	return sb.String()
}
