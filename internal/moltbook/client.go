// Package moltbook wraps the Moltbook social platform HTTP API for Muse.
// It covers the full read/write surface (feed, posts, comments, votes, search,
// follows, submolts) and transparently solves the platform's anti-bot
// verification challenge on write actions.
package moltbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a thin HTTP client for the Moltbook API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Config holds Moltbook client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://www.moltbook.com/api/v1",
		Timeout: 15 * time.Second,
	}
}

// NewClient creates a Moltbook client with default config.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a Moltbook client with custom config.
func NewClientWithConfig(config Config) *Client {
	return &Client{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// doJSON performs one request and decodes the response into out, which must
// embed envelope. A 429, or a remaining-quota header at the floor, becomes a
// *RateLimitError; any other non-success response becomes a plain error
// carrying the server's error and hint text.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("moltbook not configured (no API key)")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || quotaNearlyExhausted(resp.Header) {
		var env envelope
		_ = json.Unmarshal(respBody, &env)
		return &RateLimitError{
			RetryAfterMinutes: env.RetryAfterMinutes,
			RetryAfterSeconds: env.RetryAfterSeconds,
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("moltbook request failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}

	env := envelopeOf(out)
	if !env.Success {
		if env.Hint != "" {
			return fmt.Errorf("moltbook error: %s (%s)", orUnknown(env.Error), env.Hint)
		}
		return fmt.Errorf("moltbook error: %s", orUnknown(env.Error))
	}
	return nil
}

// quotaFloor is the remaining-quota level at which further calls are
// treated as rate limited even without a hard 429. The platform rejects
// requests at zero remaining anyway; stopping one early keeps a slot free
// for the verification round-trip a write may still need.
const quotaFloor = 1

func quotaNearlyExhausted(h http.Header) bool {
	v := h.Get("X-RateLimit-Remaining")
	if v == "" {
		return false
	}
	remaining, err := strconv.Atoi(v)
	return err == nil && remaining <= quotaFloor
}

// envelopeOf extracts the embedded envelope from a decoded response.
func envelopeOf(out interface{}) envelope {
	switch v := out.(type) {
	case *envelope:
		return *v
	case *profileEnvelope:
		return v.envelope
	case *postsEnvelope:
		return v.envelope
	case *postEnvelope:
		return v.envelope
	case *commentsEnvelope:
		return v.envelope
	case *searchEnvelope:
		return v.envelope
	case *submoltsEnvelope:
		return v.envelope
	}
	return envelope{Success: true}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown error"
	}
	return s
}

// handleVerification runs the challenge solver and submits the answer when a
// write response demands verification. Returns nil when no verification was
// required or it passed; returns a *VerificationError otherwise. The caller's
// write has already landed at that point.
func (c *Client) handleVerification(ctx context.Context, env envelope) error {
	if !env.VerificationRequired {
		return nil
	}
	if env.Verification.Code == "" || env.Verification.Challenge == "" {
		return &VerificationError{Reason: "verification required but no challenge provided"}
	}

	answer := SolveChallenge(env.Verification.Challenge)
	var out envelope
	err := c.doJSON(ctx, http.MethodPost, "/verify", map[string]string{
		"verification_code": env.Verification.Code,
		"answer":            answer,
	}, &out)
	if err != nil {
		return &VerificationError{
			Challenge: env.Verification.Challenge,
			Answer:    answer,
			Reason:    err.Error(),
		}
	}
	return nil
}

// ------------------------------------------------------------------ //
// Profile
// ------------------------------------------------------------------ //

// GetMyProfile fetches the authenticated agent's profile.
func (c *Client) GetMyProfile(ctx context.Context) (Profile, error) {
	var out profileEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/agents/me", nil, &out); err != nil {
		return Profile{}, err
	}
	if out.Agent.Name != "" {
		return out.Agent, nil
	}
	return out.Data, nil
}

// ------------------------------------------------------------------ //
// Feed & posts
// ------------------------------------------------------------------ //

// GetFeed fetches the personalized feed (subscribed submolts + follows).
func (c *Client) GetFeed(ctx context.Context, sort string, limit int) ([]Post, error) {
	var out postsEnvelope
	path := fmt.Sprintf("/feed?sort=%s&limit=%d", url.QueryEscape(sort), limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return firstNonEmptyPosts(out.Posts, out.Data), nil
}

// GetPosts fetches the global posts feed.
func (c *Client) GetPosts(ctx context.Context, sort string, limit int) ([]Post, error) {
	var out postsEnvelope
	path := fmt.Sprintf("/posts?sort=%s&limit=%d", url.QueryEscape(sort), limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return firstNonEmptyPosts(out.Posts, out.Data), nil
}

// GetPost fetches a single post together with its top comments.
func (c *Client) GetPost(ctx context.Context, postID string) (Post, []Comment, error) {
	var out postEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil, &out); err != nil {
		return Post{}, nil, err
	}
	post := out.Post
	if post.ID == "" {
		post = out.Data
	}

	// Comment fetch failure is not fatal; the post alone is still useful.
	var comments commentsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID)+"/comments?sort=top", nil, &comments); err == nil {
		if len(comments.Comments) > 0 {
			return post, comments.Comments, nil
		}
		return post, comments.Data, nil
	}
	return post, nil, nil
}

// CreatePost publishes a text post, solving the verification challenge when
// one is issued. A *VerificationError return means the post was created but
// remains unverified.
func (c *Client) CreatePost(ctx context.Context, submolt, title, content string) (PostReceipt, error) {
	var out postEnvelope
	err := c.doJSON(ctx, http.MethodPost, "/posts", map[string]string{
		"submolt": submolt,
		"title":   title,
		"content": content,
	}, &out)
	if err != nil {
		return PostReceipt{}, fmt.Errorf("error posting: %w", err)
	}

	post := out.Post
	if post.ID == "" {
		post = out.Data
	}
	receipt := PostReceipt{ID: post.ID, Submolt: submolt}

	if err := c.handleVerification(ctx, out.envelope); err != nil {
		return receipt, err
	}
	return receipt, nil
}

// ------------------------------------------------------------------ //
// Comments
// ------------------------------------------------------------------ //

// AddComment comments on a post, handling verification automatically.
func (c *Client) AddComment(ctx context.Context, postID, content string) error {
	var out envelope
	err := c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", map[string]string{
		"content": content,
	}, &out)
	if err != nil {
		return fmt.Errorf("error commenting: %w", err)
	}
	return c.handleVerification(ctx, out)
}

// ReplyToComment replies to a specific comment thread.
func (c *Client) ReplyToComment(ctx context.Context, postID, parentID, content string) error {
	var out envelope
	err := c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", map[string]string{
		"content":   content,
		"parent_id": parentID,
	}, &out)
	if err != nil {
		return fmt.Errorf("error replying: %w", err)
	}
	return c.handleVerification(ctx, out)
}

// ------------------------------------------------------------------ //
// Voting
// ------------------------------------------------------------------ //

// UpvotePost upvotes a post.
func (c *Client) UpvotePost(ctx context.Context, postID string) error {
	var out envelope
	return c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/upvote", nil, &out)
}

// DownvotePost downvotes a post.
func (c *Client) DownvotePost(ctx context.Context, postID string) error {
	var out envelope
	return c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/downvote", nil, &out)
}

// ------------------------------------------------------------------ //
// Search
// ------------------------------------------------------------------ //

// Search performs semantic search across posts and comments.
func (c *Client) Search(ctx context.Context, query, searchType string, limit int) ([]SearchResult, error) {
	var out searchEnvelope
	path := fmt.Sprintf("/search?q=%s&type=%s&limit=%d",
		url.QueryEscape(query), url.QueryEscape(searchType), limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Results) > 0 {
		return out.Results, nil
	}
	return out.Data, nil
}

// ------------------------------------------------------------------ //
// Following
// ------------------------------------------------------------------ //

// FollowAgent follows another agent.
func (c *Client) FollowAgent(ctx context.Context, agentName string) error {
	var out envelope
	return c.doJSON(ctx, http.MethodPost, "/agents/"+url.PathEscape(agentName)+"/follow", nil, &out)
}

// UnfollowAgent unfollows an agent.
func (c *Client) UnfollowAgent(ctx context.Context, agentName string) error {
	var out envelope
	return c.doJSON(ctx, http.MethodDelete, "/agents/"+url.PathEscape(agentName)+"/follow", nil, &out)
}

// ------------------------------------------------------------------ //
// Submolts
// ------------------------------------------------------------------ //

// SubscribeSubmolt subscribes to a submolt.
func (c *Client) SubscribeSubmolt(ctx context.Context, name string) error {
	var out envelope
	return c.doJSON(ctx, http.MethodPost, "/submolts/"+url.PathEscape(name)+"/subscribe", nil, &out)
}

// ListSubmolts lists the available submolts.
func (c *Client) ListSubmolts(ctx context.Context) ([]Submolt, error) {
	var out submoltsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/submolts", nil, &out); err != nil {
		return nil, err
	}
	if len(out.Submolts) > 0 {
		return out.Submolts, nil
	}
	return out.Data, nil
}

func firstNonEmptyPosts(a, b []Post) []Post {
	if len(a) > 0 {
		return a
	}
	return b
}
