// Package image provides the client for the asynchronous text-to-image
// capability. Submission returns a provider task handle; the finished result
// arrives later through the provider's callback, so this client never polls.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("image: api key is required")

// Options configures the DashScope-style image synthesis client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	DefaultSize string
	CallbackURL string
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client submits asynchronous image synthesis tasks.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	defaultSize string
	callbackURL string
	httpClient  *http.Client
	logger      *infra.Logger
}

// SubmitRequest captures the inputs for one image synthesis task.
type SubmitRequest struct {
	Prompt    string
	Style     string
	Size      string
	Quantity  int
	RequestID string
}

type synthesisRequest struct {
	Model      string          `json:"model"`
	Input      synthesisInput  `json:"input"`
	Parameters synthesisParams `json:"parameters"`
	Callback   string          `json:"callback_url,omitempty"`
}

type synthesisInput struct {
	Prompt string `json:"prompt"`
}

type synthesisParams struct {
	Style string `json:"style,omitempty"`
	Size  string `json:"size,omitempty"`
	N     int    `json:"n,omitempty"`
}

type synthesisResponse struct {
	Output struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
	} `json:"output"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "wanx2.1-t2i-turbo"
	}
	defaultSize := strings.TrimSpace(opts.DefaultSize)
	if defaultSize == "" {
		defaultSize = "1024*1024"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		model:       model,
		defaultSize: defaultSize,
		callbackURL: strings.TrimSpace(opts.CallbackURL),
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Submit enqueues a synthesis task with the provider and returns its task id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("image: prompt is required")
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	size := strings.TrimSpace(req.Size)
	if size == "" {
		size = c.defaultSize
	}
	payload := synthesisRequest{
		Model:    c.model,
		Input:    synthesisInput{Prompt: prompt},
		Callback: c.callbackURL,
		Parameters: synthesisParams{
			Style: strings.TrimSpace(req.Style),
			Size:  size,
			N:     quantity,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("image: encode request: %w", err)
	}
	endpoint := c.baseURL + "/services/aigc/text2image/image-synthesis"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("image: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-DashScope-Async", "enable")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("image: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("image: read response: %w", err)
	}
	var decoded synthesisResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= 300 {
			return "", fmt.Errorf("image: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("image: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || decoded.Code != "" {
		return "", fmt.Errorf("image: %s (%s)", decoded.Message, decoded.Code)
	}
	taskID := strings.TrimSpace(decoded.Output.TaskID)
	if taskID == "" {
		return "", errors.New("image: empty task id")
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("request_id", decoded.RequestID).
		Str("task_id", taskID).
		Msg("image: submitted synthesis task")
	return taskID, nil
}
