package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/genai"
)

// ContentOptimization rewrites existing copy toward the caller's goals.
type ContentOptimization struct {
	client TextGenerator
}

// NewContentOptimization wires the strategy to a text capability.
func NewContentOptimization(client TextGenerator) *ContentOptimization {
	return &ContentOptimization{client: client}
}

// Execute fulfils the Strategy interface.
func (s *ContentOptimization) Execute(ctx context.Context, job *domain.Job) (Outcome, error) {
	var payload domain.ContentOptimizationPayload
	if err := unmarshalPayload(job.Payload, &payload); err != nil {
		return Outcome{}, err
	}
	res, err := s.client.GenerateText(ctx, genai.TextRequest{
		Prompt:    buildOptimizationPrompt(payload),
		RequestID: job.ID,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("content optimization: %w: %v", domain.ErrProviderFailure, err)
	}
	return Outcome{Result: domain.MustMarshal(domain.ContentResult{
		Content: res.Text,
		Model:   res.Model,
		Usage: domain.ContentUsage{
			PromptTokens: res.Usage.PromptTokens,
			OutputTokens: res.Usage.OutputTokens,
			TotalTokens:  res.Usage.TotalTokens,
		},
	})}, nil
}

func buildOptimizationPrompt(p domain.ContentOptimizationPayload) string {
	var b strings.Builder
	b.WriteString("You are a marketing copy editor. Rewrite the content below and return only the improved version.\n")
	b.WriteString("Optimization goals:\n")
	for _, goal := range p.Goals {
		if goal = strings.TrimSpace(goal); goal != "" {
			fmt.Fprintf(&b, "- %s\n", goal)
		}
	}
	fmt.Fprintf(&b, "Original content:\n%s", strings.TrimSpace(p.Content))
	return b.String()
}
