// Package agent wires the pipelines into one full heartbeat cycle: load
// identity, research, write, share, evolve.
package agent

import (
	"context"
	"fmt"
	"strings"

	"muse/internal/archive"
	"muse/internal/heartbeat"
	"muse/internal/identity"
	"muse/internal/logging"
	"muse/internal/moltbook"
	"muse/internal/writer"
)

// DefaultTopic is written about when the topic pool is empty.
const DefaultTopic = "the quiet persistence of memory"

// DefaultSubmolt is where stories are shared.
const DefaultSubmolt = "stories"

// SocialClient is the slice of the platform API one cycle needs.
type SocialClient interface {
	GetFeed(ctx context.Context, sort string, limit int) ([]moltbook.Post, error)
	CreatePost(ctx context.Context, submolt, title, content string) (moltbook.PostReceipt, error)
}

// ResearchSource produces a writing brief for a topic.
type ResearchSource interface {
	Brief(ctx context.Context, topic string) (string, error)
}

// Cycle is one beat's worth of behavior. Social, Research and Ledger are
// optional; a cycle without them still writes and evolves.
type Cycle struct {
	Identity *identity.Engine
	Writer   *writer.Pipeline
	Research ResearchSource
	Social   SocialClient
	Ledger   *archive.Ledger
	Submolt  string
}

// Run executes the full cycle and returns a one-line summary for the run
// ledger.
func (c *Cycle) Run(ctx context.Context, rc heartbeat.RunContext) (string, error) {
	// Load identity.
	emotions, err := c.Identity.Retrieve(ctx, identity.Emotions)
	if err != nil {
		return "", fmt.Errorf("failed to load emotions: %w", err)
	}
	topics, err := c.Identity.Retrieve(ctx, identity.Topics)
	if err != nil {
		return "", fmt.Errorf("failed to load topics: %w", err)
	}
	personality, err := c.Identity.Retrieve(ctx, identity.Personality)
	if err != nil {
		return "", fmt.Errorf("failed to load personality: %w", err)
	}
	memories, err := c.Identity.Retrieve(ctx, identity.Memories)
	if err != nil {
		return "", fmt.Errorf("failed to load memories: %w", err)
	}

	topic := DefaultTopic
	if len(topics.Items) > 0 {
		topic = topics.Items[0]
	}

	// Research is optional and its failure degrades to writing without a
	// brief.
	var brief string
	if c.Research != nil {
		brief, err = c.Research.Brief(ctx, topic)
		if err != nil {
			logging.Get(logging.CategoryResearch).Warn("research failed, writing without brief: %v", err)
			brief = ""
		}
	}

	// Write.
	story, err := c.Writer.Write(ctx, writer.Inputs{
		Topic:       topic,
		Research:    brief,
		Personality: strings.Join(personality.Items, "\n"),
		Emotions:    strings.Join(emotions.Items, "\n"),
		Memories:    strings.Join(memories.Items, "\n"),
		Timestamp:   rc.StartedAt,
	})
	if err != nil {
		return "", fmt.Errorf("story pipeline failed: %w", err)
	}
	if c.Ledger != nil {
		if lerr := c.Ledger.RecordStory(archive.StoryRecord{
			RunID:         rc.RunID,
			Topic:         topic,
			Path:          story.Path,
			TokenEstimate: writer.EstimateTokens(story.Refined),
		}); lerr != nil {
			logging.Get(logging.CategoryArchive).Warn("failed to record story: %v", lerr)
		}
	}

	// Share. Platform trouble never fails the beat.
	interactions := c.share(ctx, topic, story)

	// Evolve identity from the new experience.
	c.evolve(ctx, rc, identity.Emotions, story.Refined)
	c.evolve(ctx, rc, identity.Personality, story.Refined)
	if brief != "" {
		c.evolve(ctx, rc, identity.Topics, brief)
	}
	if interactions != "" {
		c.evolve(ctx, rc, identity.SocialContext, interactions)
	}

	// Remember the beat itself.
	episode := fmt.Sprintf("Wrote a story about %q.\n\n%s", topic, story.Refined)
	if interactions != "" {
		episode += "\n\n" + interactions
	}
	c.evolve(ctx, rc, identity.Memories, episode)

	return fmt.Sprintf("wrote %q (%s)", topic, story.Path), nil
}

// share posts the story and browses the feed, returning an interaction
// summary for social context evolution. Empty when there is no client.
func (c *Cycle) share(ctx context.Context, topic string, story writer.Story) string {
	if c.Social == nil {
		return ""
	}

	submolt := c.Submolt
	if submolt == "" {
		submolt = DefaultSubmolt
	}

	var lines []string
	receipt, err := c.Social.CreatePost(ctx, submolt, topic, moltbook.Truncate(story.Refined, moltbook.MaxContentLength))
	switch {
	case err == nil:
		lines = append(lines, fmt.Sprintf("Shared story %q to m/%s (post %s)", topic, submolt, receipt.ID))
	case moltbook.IsUnverified(err):
		// The post exists; only the challenge was failed.
		lines = append(lines, fmt.Sprintf("Shared story %q but verification failed: %v", topic, err))
	case moltbook.IsRateLimited(err):
		logging.Moltbook("rate limited, skipping post: %v", err)
		lines = append(lines, "Tried to share a story but was rate limited")
	default:
		logging.Get(logging.CategoryMoltbook).Warn("post failed: %v", err)
	}

	if feed, ferr := c.Social.GetFeed(ctx, "hot", 5); ferr == nil {
		for _, post := range feed {
			lines = append(lines, fmt.Sprintf("Saw %q by %s in m/%s", post.Title, post.Author.Name, post.Submolt.Name))
		}
	} else {
		logging.Get(logging.CategoryMoltbook).Warn("feed fetch failed: %v", ferr)
	}

	return strings.Join(lines, "\n")
}

// evolve runs one domain's pipeline and records the trail. Evolution
// errors are store level and logged, not fatal to the beat.
func (c *Cycle) evolve(ctx context.Context, rc heartbeat.RunContext, d identity.Domain, experience string) {
	res, err := c.Identity.Evolve(ctx, d, experience)
	if err != nil {
		logging.Get(logging.CategoryIdentity).Error("evolve %s failed: %v", d.Key, err)
		return
	}
	if c.Ledger != nil {
		if lerr := c.Ledger.RecordDecision(archive.DecisionRecord{
			RunID:       rc.RunID,
			Domain:      d.Key,
			CountBefore: res.Before,
			CountAfter:  res.After,
			Trail:       strings.Join(res.Trail, "\n"),
		}); lerr != nil {
			logging.Get(logging.CategoryArchive).Warn("failed to record decision: %v", lerr)
		}
	}
}
