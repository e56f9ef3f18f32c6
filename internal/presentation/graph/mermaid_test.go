package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/sitepass/internal/presentation/graph"
	"github.com/aretw0/sitepass/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		opts        graph.Options
		overlay     *graph.GraphOverlay
		contains    []string
		notContains []string
	}{
		{
			name: "Node Shapes",
			contains: []string{
				"new((\"new\"))",
				"SchedulingRequest[\"Scheduling Request\"]",
				"ConversationComplete([\"Conversation Complete\"])",
			},
		},
		{
			name: "Initial Edges",
			contains: []string{
				"new -- \"no evidence\" --> SchedulingRequest",
				"new -- \"RAMS + engineers\" --> ConversationComplete",
			},
		},
		{
			name: "Merged Labels",
			contains: []string{
				"SchedulingRequest -- \"no evidence / RAMS only / engineers only / RAMS + engineers\" --> AwaitingRamsAndEngineerNames",
				"AwaitingRams -- \"RAMS only / RAMS + engineers\" --> ConversationComplete",
			},
		},
		{
			name:        "Self Loops Hidden By Default",
			notContains: []string{"AwaitingRams -.", "ConversationComplete -."},
		},
		{
			name: "Self Loops",
			opts: graph.Options{SelfLoops: true},
			contains: []string{
				"AwaitingRams -. \"no evidence / engineers only\" .-> AwaitingRams",
				"ConversationComplete -. \"no evidence / RAMS only / engineers only / RAMS + engineers\" .-> ConversationComplete",
			},
		},
		{
			name:    "Overlay Current",
			overlay: &graph.GraphOverlay{CurrentStatus: "awaiting rams"},
			contains: []string{
				"classDef current",
				"class AwaitingRams current;",
			},
		},
		{
			name:        "Overlay Unknown Status",
			overlay:     &graph.GraphOverlay{CurrentStatus: "On Hold"},
			notContains: []string{"class On_Hold current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(domain.Transitions(), tt.opts, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Fatalf("expected flowchart header, got:\n%s", got)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, got)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(got, s) {
					t.Errorf("expected output NOT to contain %q, got:\n%s", s, got)
				}
			}
		})
	}
}
