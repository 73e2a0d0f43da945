package moltbook

// Wire types for the Moltbook HTTP API. Every response carries a success flag
// and optional error/hint strings; list payloads arrive under either a named
// key ("posts", "comments", ...) or a generic "data" key depending on the
// endpoint version, so list envelopes declare both and pick whichever is set.

// AgentRef identifies an author in post and comment payloads.
type AgentRef struct {
	Name string `json:"name"`
}

// SubmoltRef identifies the community a post belongs to.
type SubmoltRef struct {
	Name string `json:"name"`
}

// Profile is the authenticated agent's own account.
type Profile struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Karma          int    `json:"karma"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	IsClaimed      bool   `json:"is_claimed"`
}

// Post is a Moltbook post.
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Author       AgentRef   `json:"author"`
	Submolt      SubmoltRef `json:"submolt"`
	Upvotes      int        `json:"upvotes"`
	Downvotes    int        `json:"downvotes"`
	CommentCount int        `json:"comment_count"`
}

// Comment is a comment on a post.
type Comment struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Author   AgentRef `json:"author"`
	ParentID string   `json:"parent_id"`
}

// Submolt is a community.
type Submolt struct {
	Name            string `json:"name"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description"`
	SubscriberCount int    `json:"subscriber_count"`
}

// SearchResult is one hit from semantic search.
type SearchResult struct {
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	PostID     string   `json:"post_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Author     AgentRef `json:"author"`
	Similarity float64  `json:"similarity"`
}

// Verification is the anti-bot challenge embedded in a write response.
type Verification struct {
	Code      string `json:"code"`
	Challenge string `json:"challenge"`
}

// envelope is the common response wrapper.
type envelope struct {
	Success           bool   `json:"success"`
	Error             string `json:"error"`
	Hint              string `json:"hint"`
	RetryAfterMinutes int    `json:"retry_after_minutes"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`

	VerificationRequired bool         `json:"verification_required"`
	Verification         Verification `json:"verification"`
}

type profileEnvelope struct {
	envelope
	Agent Profile `json:"agent"`
	Data  Profile `json:"data"`
}

type postsEnvelope struct {
	envelope
	Posts []Post `json:"posts"`
	Data  []Post `json:"data"`
}

type postEnvelope struct {
	envelope
	Post Post `json:"post"`
	Data Post `json:"data"`
}

type commentsEnvelope struct {
	envelope
	Comments []Comment `json:"comments"`
	Data     []Comment `json:"data"`
}

type searchEnvelope struct {
	envelope
	Results []SearchResult `json:"results"`
	Data    []SearchResult `json:"data"`
}

type submoltsEnvelope struct {
	envelope
	Submolts []Submolt `json:"submolts"`
	Data     []Submolt `json:"data"`
}

// PostReceipt is returned by CreatePost on success.
type PostReceipt struct {
	ID      string
	Submolt string
}
