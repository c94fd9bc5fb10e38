package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const ddgDefaultURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo is the keyless fallback provider. It scrapes the HTML endpoint,
// so results carry titles and links but no snippets.
type DuckDuckGo struct {
	baseURL string
	httpc   *http.Client
}

// NewDuckDuckGo creates the keyless provider with the given timeout.
func NewDuckDuckGo(timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		baseURL: ddgDefaultURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

var (
	ddgResultRe = regexp.MustCompile(`<a[^>]*class="result__a"[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
)

// Search implements Provider against the DuckDuckGo HTML endpoint.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) (*Results, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := d.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: read body: %w", err)
	}

	res := &Results{Query: query, Items: []Item{}}
	for _, m := range ddgResultRe.FindAllStringSubmatch(string(body), -1) {
		if len(res.Items) >= maxResults {
			break
		}
		link := m[1]
		title := strings.TrimSpace(htmlTagRe.ReplaceAllString(m[2], ""))
		if title == "" || link == "" {
			continue
		}
		res.Items = append(res.Items, Item{Title: title, URL: link})
	}
	if len(res.Items) > 0 {
		res.Answer = fmt.Sprintf("Encontré %d resultados para \"%s\".", len(res.Items), query)
	}
	return res, nil
}
