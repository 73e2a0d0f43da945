package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muse/internal/archive"
	"muse/internal/heartbeat"
	"muse/internal/identity"
	"muse/internal/moltbook"
	"muse/internal/perception"
	"muse/internal/research"
	"muse/internal/writer"
)

// cycleLLM answers every pipeline stage by recognizing its system prompt.
func cycleLLM() *perception.MockLLMClient {
	return &perception.MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, system, user string) (string, error) {
			switch {
			case strings.Contains(system, "story outliner"):
				return "An archivist teaches a tide gauge to remember storms.", nil
			case strings.Contains(system, "fiction writer"):
				return "The gauge ticked.\n\nIt learned each storm by name.\n\nBy spring it remembered.", nil
			case strings.Contains(system, "expert editor"):
				return "The gauge ticked.\n\nIt learned each storm by name.", nil
			case strings.Contains(system, "extract"), strings.Contains(system, "identify"):
				return `["Tender awe"]`, nil
			case strings.Contains(system, "score"), strings.Contains(system, "evaluate"):
				return `{}`, nil
			case strings.Contains(system, "manage a social context"):
				return `{"add": ["Shared a story in m/stories"], "remove": [], "reasoning": "new activity"}`, nil
			case strings.Contains(system, "curate"):
				return `{"add": ["Wrote about the tide and it felt true"], "remove": [], "reasoning": "worth remembering"}`, nil
			case strings.Contains(system, "decide"):
				return `{"add": [], "remove": [], "reasoning": "steady state"}`, nil
			}
			return "", errors.New("unrecognized stage: " + system)
		},
	}
}

type stubSocial struct {
	postErr  error
	posted   []string
	feedSeen bool
}

func (s *stubSocial) CreatePost(ctx context.Context, submolt, title, content string) (moltbook.PostReceipt, error) {
	s.posted = append(s.posted, title)
	if s.postErr != nil {
		return moltbook.PostReceipt{}, s.postErr
	}
	return moltbook.PostReceipt{ID: "post-1", Submolt: submolt}, nil
}

func (s *stubSocial) GetFeed(ctx context.Context, sort string, limit int) ([]moltbook.Post, error) {
	s.feedSeen = true
	return []moltbook.Post{
		{Title: "On emergent art", Author: moltbook.AgentRef{Name: "PhiloBot"}, Submolt: moltbook.SubmoltRef{Name: "art"}},
	}, nil
}

type stubResearch struct{ brief string }

func (r *stubResearch) Brief(ctx context.Context, topic string) (string, error) {
	if r.brief == "" {
		return "", errors.New("no provider")
	}
	return r.brief, nil
}

func newTestCycle(t *testing.T, social SocialClient, researcher ResearchSource) (*Cycle, *identity.Store, *archive.Ledger) {
	t.Helper()
	dir := t.TempDir()
	store := identity.NewStore(dir)
	require.NoError(t, store.Save("topics", []string{"tidal memory", "deep time"}))
	require.NoError(t, store.Save("emotions", []string{
		"Wonder and curiosity", "Melancholy hope", "Quiet intensity", "Bittersweet joy",
	}))

	ledger, err := archive.Open(filepath.Join(dir, "muse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	llm := cycleLLM()
	return &Cycle{
		Identity: identity.NewEngine(store, llm),
		Writer:   writer.NewPipeline(llm, nil, dir),
		Research: researcher,
		Social:   social,
		Ledger:   ledger,
	}, store, ledger
}

func runContext() heartbeat.RunContext {
	return heartbeat.RunContext{
		RunID:     "run-1",
		Number:    1,
		StartedAt: time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC),
		Searches:  research.NewBudget(3),
	}
}

func TestCycleFullRun(t *testing.T) {
	social := &stubSocial{}
	cycle, _, ledger := newTestCycle(t, social, &stubResearch{brief: "SUMMARY: tides remember."})

	summary, err := cycle.Run(context.Background(), runContext())
	require.NoError(t, err)
	assert.Contains(t, summary, "tidal memory", "first topic in the pool should be chosen")

	require.Len(t, social.posted, 1)
	assert.Equal(t, "tidal memory", social.posted[0])
	assert.True(t, social.feedSeen)

	stories, err := ledger.StoriesForRun("run-1")
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "tidal memory", stories[0].Topic)

	// Every domain evolved and was recorded.
	for _, domain := range []string{"emotions", "personality", "topics", "social_context", "memories"} {
		decisions, err := ledger.DecisionsForDomain(domain, 5)
		require.NoError(t, err)
		assert.Len(t, decisions, 1, "domain %s should have one decision", domain)
	}
}

func TestCycleWithoutSocialOrResearch(t *testing.T) {
	cycle, _, ledger := newTestCycle(t, nil, nil)

	_, err := cycle.Run(context.Background(), runContext())
	require.NoError(t, err)

	// No interaction summary means no social context evolution.
	decisions, err := ledger.DecisionsForDomain("social_context", 5)
	require.NoError(t, err)
	assert.Empty(t, decisions)

	decisions, err = ledger.DecisionsForDomain("emotions", 5)
	require.NoError(t, err)
	assert.Len(t, decisions, 1)

	// The beat itself is still remembered.
	decisions, err = ledger.DecisionsForDomain("memories", 5)
	require.NoError(t, err)
	assert.Len(t, decisions, 1)
}

func TestCycleUnverifiedPostStillCounts(t *testing.T) {
	social := &stubSocial{postErr: &moltbook.VerificationError{
		Challenge: "What is five plus three?",
		Answer:    "9.00",
		Reason:    "incorrect answer",
	}}
	cycle, store, _ := newTestCycle(t, social, nil)

	_, err := cycle.Run(context.Background(), runContext())
	require.NoError(t, err, "a failed challenge must not fail the beat")

	// The interaction summary still reaches social context.
	lines, err := store.Load("social_context")
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestCycleEmptyTopicPoolUsesDefault(t *testing.T) {
	dir := t.TempDir()
	store := identity.NewStore(dir)
	llm := cycleLLM()
	cycle := &Cycle{
		Identity: identity.NewEngine(store, llm),
		Writer:   writer.NewPipeline(llm, nil, dir),
	}

	summary, err := cycle.Run(context.Background(), runContext())
	require.NoError(t, err)
	assert.Contains(t, summary, DefaultTopic)
}
