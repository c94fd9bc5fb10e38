package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyDefaultURL = "https://api.tavily.com/search"

// Tavily is the quality-tier provider; requires an API key.
type Tavily struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewTavily creates a Tavily provider with the given key and timeout.
func NewTavily(apiKey string, timeout time.Duration) *Tavily {
	return &Tavily{
		apiKey:  apiKey,
		baseURL: tavilyDefaultURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (t *Tavily) Name() string { return "tavily" }

// Search implements Provider via the Tavily REST API.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) (*Results, error) {
	payload, err := json.Marshal(map[string]any{
		"api_key":        t.apiKey,
		"query":          query,
		"search_depth":   "basic",
		"include_answer": true,
		"max_results":    maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily: status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	res := &Results{Query: query, Answer: out.Answer, Items: []Item{}}
	for _, r := range out.Results {
		if len(res.Items) >= maxResults {
			break
		}
		res.Items = append(res.Items, Item{Title: r.Title, Snippet: r.Content, URL: r.URL})
	}
	return res, nil
}
