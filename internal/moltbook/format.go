package moltbook

import (
	"fmt"
	"strings"
)

// MaxContentLength caps external content passed back into prompts. Platform
// text is untrusted; truncation limits prompt-injection surface and token
// cost.
const MaxContentLength = 500

// Truncate caps text at maxLen characters, appending an ellipsis when cut.
func Truncate(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}

// FormatProfile renders a profile for the agent's context window.
func FormatProfile(p Profile) string {
	return fmt.Sprintf(
		"Profile: %s\nDescription: %s\nKarma: %d\nFollowers: %d\nFollowing: %d\nClaimed: %v",
		p.Name, p.Description, p.Karma, p.FollowerCount, p.FollowingCount, p.IsClaimed)
}

// FormatPosts renders a post listing under a header.
func FormatPosts(posts []Post, header string) string {
	lines := []string{fmt.Sprintf("%s - %d posts:", header, len(posts))}
	for _, p := range posts {
		lines = append(lines, fmt.Sprintf(
			"---\n[%s] @%s in m/%s | %d upvotes | %d comments\n%s\n%s",
			p.ID, p.Author.Name, p.Submolt.Name, p.Upvotes, p.CommentCount,
			Truncate(p.Title, 100), Truncate(p.Content, 150)))
	}
	return strings.Join(lines, "\n")
}

// FormatPost renders a single post with up to ten comments.
func FormatPost(p Post, comments []Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Post: %s\nAuthor: @%s\nSubmolt: m/%s\nUpvotes: %d | Downvotes: %d\n---\n%s\n",
		p.Title, p.Author.Name, p.Submolt.Name, p.Upvotes, p.Downvotes,
		Truncate(p.Content, 1000))
	if len(comments) > 0 {
		fmt.Fprintf(&b, "---\nComments (%d):\n", len(comments))
		for i, c := range comments {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "  [%s] @%s: %s\n", c.ID, c.Author.Name, Truncate(c.Content, 300))
		}
	}
	return b.String()
}

// FormatSearchResults renders semantic search hits.
func FormatSearchResults(results []SearchResult, query string) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results for %q.", query)
	}
	lines := []string{fmt.Sprintf("Search results for %q:", query)}
	for _, r := range results {
		id := r.PostID
		if id == "" {
			id = r.ID
		}
		lines = append(lines, fmt.Sprintf(
			"---\n[%s] post:%s | @%s | similarity:%.2f\n%s\n%s",
			r.Type, id, r.Author.Name, r.Similarity,
			Truncate(r.Title, 100), Truncate(r.Content, 200)))
	}
	return strings.Join(lines, "\n")
}

// FormatSubmolts renders the submolt directory.
func FormatSubmolts(submolts []Submolt) string {
	if len(submolts) == 0 {
		return "No submolts found."
	}
	lines := []string{"Available submolts:"}
	for _, s := range submolts {
		display := s.DisplayName
		if display == "" {
			display = s.Name
		}
		lines = append(lines, fmt.Sprintf("  m/%s (%s) - %d subscribers - %s",
			s.Name, display, s.SubscriberCount, Truncate(s.Description, 100)))
	}
	return strings.Join(lines, "\n")
}
