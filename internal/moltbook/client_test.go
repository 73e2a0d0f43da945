package moltbook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClientWithConfig(Config{APIKey: "test-key", BaseURL: srv.URL})
	return c, srv
}

func TestCreatePost_FullSuccess_NoVerification(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"post":    map[string]interface{}{"id": "p1"},
		})
	}))

	receipt, err := c.CreatePost(context.Background(), "stories", "Title", "Body")
	require.NoError(t, err)
	assert.Equal(t, "p1", receipt.ID)
	assert.Equal(t, "stories", receipt.Submolt)
}

func TestCreatePost_VerificationSolvedAndSubmitted(t *testing.T) {
	var verifyBody map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":               true,
				"post":                  map[string]interface{}{"id": "p2"},
				"verification_required": true,
				"verification": map[string]string{
					"code":      "vc-123",
					"challenge": "What is five plus three?",
				},
			})
		case "/verify":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&verifyBody))
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	receipt, err := c.CreatePost(context.Background(), "stories", "Title", "Body")
	require.NoError(t, err)
	assert.Equal(t, "p2", receipt.ID)
	assert.Equal(t, "vc-123", verifyBody["verification_code"])
	assert.Equal(t, "8.00", verifyBody["answer"])
}

func TestCreatePost_SucceededButUnverified(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":               true,
				"post":                  map[string]interface{}{"id": "p3"},
				"verification_required": true,
				"verification": map[string]string{
					"code":      "vc-9",
					"challenge": "What is five plus three?",
				},
			})
		case "/verify":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "wrong answer",
			})
		}
	}))

	receipt, err := c.CreatePost(context.Background(), "stories", "Title", "Body")
	require.Error(t, err)
	assert.True(t, IsUnverified(err), "expected created-but-unverified outcome")
	assert.False(t, IsRateLimited(err))
	// The post itself landed.
	assert.Equal(t, "p3", receipt.ID)
}

func TestCreatePost_WriteFailure_IsNotVerificationError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "submolt not found",
			"hint":    "try m/stories",
		})
	}))

	_, err := c.CreatePost(context.Background(), "nope", "Title", "Body")
	require.Error(t, err)
	assert.False(t, IsUnverified(err))
	assert.Contains(t, err.Error(), "submolt not found")
	assert.Contains(t, err.Error(), "try m/stories")
}

func TestRateLimit_Surfaced(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":             false,
			"retry_after_minutes": 30,
		})
	}))

	err := c.AddComment(context.Background(), "p1", "hi")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 30, rl.RetryAfterMinutes)
}

func TestRateLimit_QuotaHeaderNearExhaustion(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":             false,
			"retry_after_seconds": 90,
		})
	}))

	err := c.AddComment(context.Background(), "p1", "hi")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 90, rl.RetryAfterSeconds)
}

func TestRateLimit_QuotaHeaderHealthy(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "42")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    []map[string]interface{}{{"id": "a", "title": "Fine"}},
		})
	}))

	posts, err := c.GetFeed(context.Background(), "hot", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestGetFeed_DataKeyFallback(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feed", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"id": "a", "title": "First"},
				{"id": "b", "title": "Second"},
			},
		})
	}))

	posts, err := c.GetFeed(context.Background(), "hot", 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "First", posts[0].Title)
}

func TestGetPost_CommentFetchFailureIsNotFatal(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/posts/p1" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"post":    map[string]interface{}{"id": "p1", "title": "Solo"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "comments down"})
	}))

	post, comments, err := c.GetPost(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Solo", post.Title)
	assert.Empty(t, comments)
}

func TestNoAPIKey(t *testing.T) {
	c := NewClientWithConfig(Config{BaseURL: "http://localhost:0"})
	_, err := c.GetMyProfile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("", 5))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
}
