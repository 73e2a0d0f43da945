package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "muse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedgerRunLifecycle(t *testing.T) {
	l := openTestLedger(t)

	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	require.NoError(t, l.BeginRun("run-1", 1, started))
	require.NoError(t, l.FinishRun("run-1", "completed", "wrote one story"))

	runs, err := l.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, "wrote one story", runs[0].Summary)
}

func TestLedgerRunNumberSequence(t *testing.T) {
	l := openTestLedger(t)

	n, err := l.LastRunNumber()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "empty ledger starts at zero")

	require.NoError(t, l.BeginRun("run-1", 1, time.Now()))
	require.NoError(t, l.BeginRun("run-2", 2, time.Now()))

	n, err = l.LastRunNumber()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLedgerDuplicateRunIDRejected(t *testing.T) {
	l := openTestLedger(t)
	require.NoError(t, l.BeginRun("run-1", 1, time.Now()))
	assert.Error(t, l.BeginRun("run-1", 2, time.Now()))
}

func TestLedgerStories(t *testing.T) {
	l := openTestLedger(t)
	require.NoError(t, l.BeginRun("run-1", 1, time.Now()))

	require.NoError(t, l.RecordStory(StoryRecord{
		RunID:         "run-1",
		Topic:         "AI grief",
		Path:          "stories/2026-08-29_10-00-00_ai_grief.txt",
		TokenEstimate: 498,
	}))

	stories, err := l.StoriesForRun("run-1")
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "AI grief", stories[0].Topic)
	assert.Equal(t, 498, stories[0].TokenEstimate)

	none, err := l.StoriesForRun("run-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerDecisions(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.RecordDecision(DecisionRecord{
		RunID:       "run-1",
		Domain:      "emotions",
		CountBefore: 5,
		CountAfter:  5,
		Trail:       "Loaded 5 current emotions\nDecision: Add 1, Remove 1",
	}))
	require.NoError(t, l.RecordDecision(DecisionRecord{
		RunID: "run-2", Domain: "emotions", CountBefore: 5, CountAfter: 4,
	}))
	require.NoError(t, l.RecordDecision(DecisionRecord{
		RunID: "run-2", Domain: "topics", CountBefore: 6, CountAfter: 6,
	}))

	decisions, err := l.DecisionsForDomain("emotions", 10)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	// Newest first.
	assert.Equal(t, "run-2", decisions[0].RunID)
	assert.Contains(t, decisions[1].Trail, "Loaded 5 current emotions")
}
