package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGenerateTextReturnsCandidateAndUsage(t *testing.T) {
	var captured *http.Request
	client, err := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			return jsonResponse(http.StatusOK, `{
				"candidates":[{"content":{"parts":[{"text":"Fresh roast, friendly prices."}]}}],
				"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":7,"totalTokenCount":19}
			}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	res, err := client.GenerateText(context.Background(), TextRequest{Prompt: "write a caption"})
	if err != nil {
		t.Fatalf("GenerateText returned error: %v", err)
	}
	if res.Text != "Fresh roast, friendly prices." {
		t.Fatalf("Text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 19 || res.Usage.PromptTokens != 12 || res.Usage.OutputTokens != 7 {
		t.Fatalf("Usage = %+v", res.Usage)
	}

	if captured == nil {
		t.Fatal("no request captured")
	}
	if !strings.Contains(captured.URL.Path, ":generateContent") {
		t.Fatalf("path = %q, want generateContent endpoint", captured.URL.Path)
	}
	raw, _ := io.ReadAll(captured.Body)
	var payload generateContentRequest
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		t.Fatalf("decode request payload: %v", err)
	}
	if len(payload.Contents) != 1 || payload.Contents[0].Parts[0].Text != "write a caption" {
		t.Fatalf("request payload = %s", raw)
	}
}

func TestGenerateTextSurfacesProviderError(t *testing.T) {
	client, err := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"error":{"code":400,"message":"prompt blocked"}}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.GenerateText(context.Background(), TextRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "prompt blocked") {
		t.Fatalf("GenerateText error = %v, want provider message", err)
	}
}

func TestGenerateTextRequiresAPIKey(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := client.GenerateText(context.Background(), TextRequest{Prompt: "x"}); err != ErrMissingAPIKey {
		t.Fatalf("GenerateText error = %v, want ErrMissingAPIKey", err)
	}
}
