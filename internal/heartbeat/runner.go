// Package heartbeat periodically wakes the agent to run one full cycle:
// load identity, interact, write, evolve. The runner owns the cadence and
// the per-run bookkeeping; what a beat actually does is injected.
package heartbeat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"muse/internal/archive"
	"muse/internal/logging"
	"muse/internal/research"
)

// DefaultInterval between beats.
const DefaultInterval = 30 * time.Minute

// RunContext carries one beat's identity and per-run resources.
type RunContext struct {
	RunID     string
	Number    int
	StartedAt time.Time

	// Searches is this run's web search budget, fresh each beat.
	Searches *research.Budget
}

// Prompt renders the wake-up instruction for this beat.
func (rc RunContext) Prompt() string {
	return fmt.Sprintf(`Heartbeat #%d - %s

You're awake. Load your identity, check your social context, browse Moltbook,
and ACT. Do not ask what to do - decide and execute autonomously.

You might write a story and share it, comment on something interesting,
reply to responses on your posts, or just read and absorb.

After you're done interacting, evolve your identity and update your social context.
Complete the full cycle before stopping.`, rc.Number, rc.StartedAt.Format("2006-01-02 15:04"))
}

// Agent is one full beat of work. A returned error marks the run failed
// but never stops the loop.
type Agent func(ctx context.Context, rc RunContext) (summary string, err error)

// Config holds runner settings.
type Config struct {
	Interval    time.Duration
	MaxSearches int
}

// DefaultConfig returns the standard cadence.
func DefaultConfig() Config {
	return Config{
		Interval:    DefaultInterval,
		MaxSearches: research.DefaultMaxSearches,
	}
}

// Runner drives the heartbeat loop.
type Runner struct {
	config Config
	agent  Agent
	ledger *archive.Ledger
	number int
}

// NewRunner creates a runner. ledger may be nil; runs are then unrecorded.
func NewRunner(config Config, agent Agent, ledger *archive.Ledger) *Runner {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.MaxSearches <= 0 {
		config.MaxSearches = research.DefaultMaxSearches
	}
	return &Runner{config: config, agent: agent, ledger: ledger}
}

// RunOnce executes a single beat and returns its result.
func (r *Runner) RunOnce(ctx context.Context) (RunContext, error) {
	r.number++
	number := r.number
	if r.ledger != nil && number == 1 {
		// Resume numbering across restarts.
		if last, err := r.ledger.LastRunNumber(); err == nil {
			number = last + 1
			r.number = number
		}
	}

	rc := RunContext{
		RunID:     uuid.New().String(),
		Number:    number,
		StartedAt: time.Now(),
		Searches:  research.NewBudget(r.config.MaxSearches),
	}

	logging.Heartbeat("beat #%d starting (run %s)", rc.Number, rc.RunID)
	if r.ledger != nil {
		if err := r.ledger.BeginRun(rc.RunID, rc.Number, rc.StartedAt); err != nil {
			logging.Get(logging.CategoryHeartbeat).Warn("failed to record run start: %v", err)
		}
	}

	summary, err := r.agent(ctx, rc)
	status := "completed"
	if err != nil {
		status = "failed"
		summary = err.Error()
		logging.Get(logging.CategoryHeartbeat).Error("beat #%d failed: %v", rc.Number, err)
	} else {
		logging.Heartbeat("beat #%d completed", rc.Number)
	}

	if r.ledger != nil {
		if ferr := r.ledger.FinishRun(rc.RunID, status, summary); ferr != nil {
			logging.Get(logging.CategoryHeartbeat).Warn("failed to record run finish: %v", ferr)
		}
	}
	return rc, err
}

// Run executes beats on the configured interval until the context is
// cancelled. Beat failures are recorded and the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	logging.Heartbeat("heartbeat loop starting (interval %s)", r.config.Interval)

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			logging.Heartbeat("heartbeat loop stopped")
			return ctx.Err()
		case <-time.After(r.config.Interval):
		}
	}
}
