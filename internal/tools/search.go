package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/muhammadolammi/careeragent/internal/workflow"
)

const (
	DefaultTavilyURL  = "https://api.tavily.com/search"
	DefaultMaxResults = 5
)

// Searcher is a web search provider.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, region string) ([]workflow.SearchResult, error)
}

// TavilyClient calls the Tavily search API.
type TavilyClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		APIKey:     apiKey,
		BaseURL:    DefaultTavilyURL,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
	Country    string `json:"country,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search returns provider results in the order Tavily ranked them.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int, region string) ([]workflow.SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:      query,
		MaxResults: maxResults,
		Topic:      "general",
		Country:    strings.ToLower(region),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}

	results := make([]workflow.SearchResult, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, workflow.SearchResult{URL: r.URL, Content: r.Content})
	}
	return results, nil
}

// JobSearch wraps a provider so that a failed search degrades to no
// results instead of failing the run.
type JobSearch struct {
	Provider   Searcher
	MaxResults int
	// Region is used when a search names no region of its own.
	Region string
	Logger *slog.Logger
}

// Search never returns more than MaxResults entries. Provider errors are
// logged and yield an empty, non-nil slice.
func (j *JobSearch) Search(ctx context.Context, query, region string) []workflow.SearchResult {
	limit := j.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Warn("job search skipped: empty query")
		return []workflow.SearchResult{}
	}

	region = strings.TrimSpace(region)
	if region == "" {
		region = j.Region
	}

	results, err := j.Provider.Search(ctx, query, limit, region)
	if err != nil {
		logger.Warn("job search failed", slog.String("query", query), slog.Any("error", err))
		return []workflow.SearchResult{}
	}
	if results == nil {
		return []workflow.SearchResult{}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
