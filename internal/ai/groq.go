package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const groqDefaultURL = "https://api.groq.com/openai/v1/chat/completions"

// Groq calls the Groq chat-completions API (OpenAI-compatible).
type Groq struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	httpc       *http.Client
}

// NewGroq creates a Groq client with a fixed model and sampling settings.
func NewGroq(apiKey, model string, timeout time.Duration) *Groq {
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	return &Groq{
		apiKey:      apiKey,
		model:       model,
		baseURL:     groqDefaultURL,
		temperature: 0.7,
		maxTokens:   300,
		httpc:       &http.Client{Timeout: timeout},
	}
}

// Complete implements Client.
func (g *Groq) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"messages":    messages,
		"model":       g.model,
		"temperature": g.temperature,
		"max_tokens":  g.maxTokens,
		"top_p":       0.9,
	})
	if err != nil {
		return "", fmt.Errorf("groq: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("groq: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("groq: status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("groq: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}
