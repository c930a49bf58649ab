package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rvachev/tierwatch/internal/model"
)

// Briefer turns a computed score and its confirmed claims into a short
// markdown brief.
type Briefer struct {
	provider Provider
}

// NewBriefer creates a briefer over the given provider.
func NewBriefer(provider Provider) *Briefer {
	return &Briefer{provider: provider}
}

// GenerateBrief produces a markdown brief for the score. The inputs are the
// already-derived score tuple and confirmed claims only; nothing here feeds
// back into the engine.
func (b *Briefer) GenerateBrief(ctx context.Context, score model.RiskScore, confirmed []model.Claim) (string, error) {
	prompt := buildBriefPrompt(score, confirmed)

	text, err := b.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate brief: %w", err)
	}

	var out strings.Builder
	out.WriteString("# Risk Brief\n\n")
	out.WriteString(fmt.Sprintf("> Generated by %s. Narrative only: this text never feeds back into scoring.\n\n", b.provider.Name()))
	out.WriteString(text)
	out.WriteString("\n")
	return out.String(), nil
}

func buildBriefPrompt(score model.RiskScore, confirmed []model.Claim) string {
	var sb strings.Builder

	sb.WriteString(`You are writing a short operational brief over a systemic-risk score.

RULES:
1. Only restate the facts below. Do not speculate or add outside knowledge.
2. Confirmed claims below are verified; everything else is out of bounds.
3. Keep it under 300 words, markdown, no headings above level 2.

`)
	sb.WriteString(fmt.Sprintf("Composite risk: %.2f (%s), as of %s\n", score.Composite, score.Label, score.AsOf.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Funding stress: %d/100\n", score.FundingStress))
	sb.WriteString(fmt.Sprintf("Enforcement heat: %d/100\n", score.EnforcementHeat))
	sb.WriteString(fmt.Sprintf("Deliverability stress: %d/100\n", score.DeliverabilityStress))
	sb.WriteString(fmt.Sprintf("Cascade flag: %v\n", score.Cascade))
	if score.Degraded {
		sb.WriteString("Note: one or more dimensions had no data and defaulted to neutral.\n")
	}

	if len(confirmed) > 0 {
		sb.WriteString("\nConfirmed claims:\n")
		for _, cl := range confirmed {
			sb.WriteString(fmt.Sprintf("- [%s/%s] %s\n", cl.Entity, cl.Category, cl.Text))
		}
	} else {
		sb.WriteString("\nNo confirmed claims in the window.\n")
	}

	return sb.String()
}
