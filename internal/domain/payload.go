package domain

import "encoding/json"

// ContentGenerationPayload carries the inputs for a synchronous text
// generation job. Only the prompt is mandatory; the remaining fields steer
// the instruction template.
type ContentGenerationPayload struct {
	Prompt   string `json:"prompt" validate:"required"`
	Tone     string `json:"tone,omitempty"`
	Length   string `json:"length,omitempty"`
	Style    string `json:"style,omitempty"`
	Audience string `json:"audience,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// ContentOptimizationPayload carries an existing piece of content plus the
// goals the rewrite should pursue.
type ContentOptimizationPayload struct {
	Content string   `json:"content" validate:"required"`
	Goals   []string `json:"goals" validate:"required,min=1,dive,required"`
}

// ImageGenerationPayload carries the inputs for an asynchronous image job.
// Produced assets are owned by the project, so the project id is mandatory.
type ImageGenerationPayload struct {
	Prompt    string `json:"prompt" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	UserID    string `json:"user_id,omitempty"`
	Style     string `json:"style,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity,omitempty" validate:"omitempty,min=1,max=4"`

	// ProviderTaskID is written back once submission to the external
	// provider succeeds, so callback notifications can be correlated.
	ProviderTaskID string `json:"provider_task_id,omitempty"`
}

// ContentResult is the terminal payload of a synchronous text job.
type ContentResult struct {
	Content string       `json:"content"`
	Model   string       `json:"model,omitempty"`
	Usage   ContentUsage `json:"usage,omitempty"`
}

// ContentUsage mirrors the provider's token accounting verbatim.
type ContentUsage struct {
	PromptTokens int `json:"prompt_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

// ImageResult is the terminal payload of an asynchronous image job. URL is
// the primary (first) result; AssetIDs reference the materialized records.
type ImageResult struct {
	URL      string   `json:"url"`
	AssetIDs []string `json:"asset_ids,omitempty"`
}

// MustMarshal encodes v or panics; reserved for payloads built from our own
// structs where failure is a programming error.
func MustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
