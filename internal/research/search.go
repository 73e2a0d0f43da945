// Package research provides budgeted web search and research brief
// synthesis for the writing loop.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"muse/internal/logging"
)

// DefaultMaxSearches bounds how many searches one run may spend.
const DefaultMaxSearches = 3

// DefaultMaxResults is the per-query result cap.
const DefaultMaxResults = 5

// Budget is a concurrency-safe search counter scoped to one run.
type Budget struct {
	mu    sync.Mutex
	max   int
	spent int
}

// NewBudget creates a budget allowing max searches. Zero or negative max
// falls back to the default.
func NewBudget(max int) *Budget {
	if max <= 0 {
		max = DefaultMaxSearches
	}
	return &Budget{max: max}
}

// Take consumes one search if any remain.
func (b *Budget) Take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.spent >= b.max {
		return false
	}
	b.spent++
	return true
}

// Remaining reports how many searches are left.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max - b.spent
}

// Max returns the budget ceiling.
func (b *Budget) Max() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max
}

// Reset restores the full budget, for the next run.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spent = 0
}

// Result is one web search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Config holds search provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Topic      string
	Timeout    time.Duration
}

// DefaultConfig returns Tavily defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.tavily.com",
		MaxResults: DefaultMaxResults,
		Topic:      "general",
		Timeout:    30 * time.Second,
	}
}

// Client talks to a Tavily-compatible search API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a search client.
func NewClient(config Config) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.MaxResults <= 0 {
		config.MaxResults = defaults.MaxResults
	}
	if config.Topic == "" {
		config.Topic = defaults.Topic
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one web query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("search API key not configured")
	}

	body, err := json.Marshal(searchRequest{
		APIKey:     c.config.APIKey,
		Query:      query,
		MaxResults: c.config.MaxResults,
		Topic:      c.config.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, data)
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	logging.Research("search %q returned %d results", query, len(parsed.Results))
	return parsed.Results, nil
}

// FormatResults renders results as a bulleted summary block, content capped
// at 400 characters per hit.
func FormatResults(results []Result) string {
	var b strings.Builder
	b.WriteString("Search results:\n")
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		content := r.Content
		if len(content) > 400 {
			content = content[:400]
		}
		fmt.Fprintf(&b, "- %s :: %s\n  %s\n", title, r.URL, content)
	}
	return b.String()
}

// Searcher runs budgeted searches and formats the outcome.
type Searcher struct {
	client *Client
	budget *Budget
}

// NewSearcher wires a client to a per-run budget.
func NewSearcher(client *Client, budget *Budget) *Searcher {
	return &Searcher{client: client, budget: budget}
}

// Search spends one budgeted search. An exhausted budget is not an error;
// it returns a message telling the caller to work with what it has.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	if !s.budget.Take() {
		logging.Research("search budget exhausted for %q", query)
		return fmt.Sprintf("Search limit reached (%d). Summarize with current context.", s.budget.Max()), nil
	}

	results, err := s.client.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return FormatResults(results), nil
}
