package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/genai"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/image"
)

type fakeText struct {
	lastPrompt string
	result     *genai.TextResult
	err        error
}

func (f *fakeText) GenerateText(ctx context.Context, req genai.TextRequest) (*genai.TextResult, error) {
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeText) Model() string { return "fake-text" }

type fakeImages struct {
	lastReq image.SubmitRequest
	taskID  string
	err     error
}

func (f *fakeImages) Submit(ctx context.Context, req image.SubmitRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.taskID, nil
}

func (f *fakeImages) Model() string { return "fake-image" }

func jobWithPayload(t *testing.T, jobType domain.JobType, payload any) *domain.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &domain.Job{ID: "job_1_test", Type: jobType, Payload: raw}
}

func TestContentGenerationComposesPromptFromParameters(t *testing.T) {
	client := &fakeText{result: &genai.TextResult{Text: "Buy our coffee!", Model: "fake-text", Usage: genai.Usage{TotalTokens: 5}}}
	s := NewContentGeneration(client)

	job := jobWithPayload(t, domain.JobTypeContentGeneration, domain.ContentGenerationPayload{
		Prompt:   "announce our new espresso blend",
		Tone:     "Casual",
		Platform: "instagram",
		Audience: "young professionals",
	})
	outcome, err := s.Execute(context.Background(), job)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	for _, want := range []string{"Platform: Instagram.", "Tone: casual.", "Audience: young professionals.", "Brief: announce our new espresso blend"} {
		if !strings.Contains(client.lastPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, client.lastPrompt)
		}
	}

	var result domain.ContentResult
	if err := json.Unmarshal(outcome.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Content != "Buy our coffee!" {
		t.Fatalf("Content = %q", result.Content)
	}
	if result.Usage.TotalTokens != 5 {
		t.Fatalf("TotalTokens = %d, want 5", result.Usage.TotalTokens)
	}
	if outcome.ProviderTaskID != "" {
		t.Fatalf("ProviderTaskID = %q, want empty for sync strategy", outcome.ProviderTaskID)
	}
}

func TestContentOptimizationListsGoals(t *testing.T) {
	client := &fakeText{result: &genai.TextResult{Text: "Better copy.", Model: "fake-text"}}
	s := NewContentOptimization(client)

	job := jobWithPayload(t, domain.JobTypeContentOptimization, domain.ContentOptimizationPayload{
		Content: "we sell shoes",
		Goals:   []string{"stronger call to action", "shorter sentences"},
	})
	if _, err := s.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !strings.Contains(client.lastPrompt, "- stronger call to action") {
		t.Fatalf("prompt missing goal list:\n%s", client.lastPrompt)
	}
	if !strings.Contains(client.lastPrompt, "Original content:\nwe sell shoes") {
		t.Fatalf("prompt missing original content:\n%s", client.lastPrompt)
	}
}

func TestContentGenerationPropagatesProviderError(t *testing.T) {
	client := &fakeText{err: errors.New("quota exhausted")}
	s := NewContentGeneration(client)
	job := jobWithPayload(t, domain.JobTypeContentGeneration, domain.ContentGenerationPayload{Prompt: "x"})
	_, err := s.Execute(context.Background(), job)
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("Execute error = %v, want provider error", err)
	}
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("Execute error = %v, want ErrProviderFailure", err)
	}
}

func TestImageGenerationReturnsTaskHandleOnly(t *testing.T) {
	client := &fakeImages{taskID: "task-77"}
	s := NewImageGeneration(client)

	job := jobWithPayload(t, domain.JobTypeImageGeneration, domain.ImageGenerationPayload{
		Prompt:    "storefront hero image",
		ProjectID: "proj-1",
		Quantity:  3,
	})
	outcome, err := s.Execute(context.Background(), job)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if outcome.ProviderTaskID != "task-77" {
		t.Fatalf("ProviderTaskID = %q, want task-77", outcome.ProviderTaskID)
	}
	if outcome.Result != nil {
		t.Fatalf("Result = %s, want nil for async strategy", outcome.Result)
	}
	if client.lastReq.Quantity != 3 {
		t.Fatalf("Quantity = %d, want 3", client.lastReq.Quantity)
	}
}

func TestRegistryCoversAllJobTypes(t *testing.T) {
	reg := NewRegistry(&fakeText{}, &fakeImages{})
	for _, jobType := range []domain.JobType{
		domain.JobTypeContentGeneration,
		domain.JobTypeContentOptimization,
		domain.JobTypeImageGeneration,
	} {
		if _, ok := reg[jobType]; !ok {
			t.Fatalf("registry missing strategy for %q", jobType)
		}
	}
}
