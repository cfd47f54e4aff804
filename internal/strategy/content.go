package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/genai"
)

var titleCaser = cases.Title(language.English)

// ContentGeneration produces fresh marketing copy from a caller brief. It
// composes a fixed instruction template with the payload parameters, calls
// the text capability once, and returns its output verbatim.
type ContentGeneration struct {
	client TextGenerator
}

// NewContentGeneration wires the strategy to a text capability.
func NewContentGeneration(client TextGenerator) *ContentGeneration {
	return &ContentGeneration{client: client}
}

// Execute fulfils the Strategy interface.
func (s *ContentGeneration) Execute(ctx context.Context, job *domain.Job) (Outcome, error) {
	var payload domain.ContentGenerationPayload
	if err := unmarshalPayload(job.Payload, &payload); err != nil {
		return Outcome{}, err
	}
	res, err := s.client.GenerateText(ctx, genai.TextRequest{
		Prompt:    buildGenerationPrompt(payload),
		RequestID: job.ID,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("content generation: %w: %v", domain.ErrProviderFailure, err)
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

func buildGenerationPrompt(p domain.ContentGenerationPayload) string {
	var b strings.Builder
	b.WriteString("You are a marketing copywriter for small businesses. Write the requested content and return only the content itself.\n")
	if v := strings.TrimSpace(p.Platform); v != "" {
		fmt.Fprintf(&b, "Platform: %s.\n", titleCaser.String(v))
	}
	if v := strings.TrimSpace(p.Audience); v != "" {
		fmt.Fprintf(&b, "Audience: %s.\n", v)
	}
	if v := strings.TrimSpace(p.Tone); v != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", strings.ToLower(v))
	}
	if v := strings.TrimSpace(p.Style); v != "" {
		fmt.Fprintf(&b, "Style: %s.\n", strings.ToLower(v))
	}
	if v := strings.TrimSpace(p.Length); v != "" {
		fmt.Fprintf(&b, "Length: %s.\n", strings.ToLower(v))
	}
	fmt.Fprintf(&b, "Brief: %s", strings.TrimSpace(p.Prompt))
	return b.String()
}

func unmarshalPayload(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode payload: %v", domain.ErrValidation, err)
	}
	return nil
}
