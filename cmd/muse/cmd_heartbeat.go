package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"muse/internal/agent"
	"muse/internal/heartbeat"
	"muse/internal/research"
	"muse/internal/skills"
)

var (
	heartbeatInterval time.Duration
	heartbeatOnce     bool
	submoltName       string
)

// runCmd executes a single heartbeat cycle
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a single heartbeat cycle",
	Long: `Runs one full cycle immediately: load identity, research the current
topic, write a story, share it on Moltbook, and evolve the identity files.

The run is recorded in the ledger with the next run number.`,
	RunE: runOneBeat,
}

// heartbeatCmd starts the autonomous loop
var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Start the autonomous heartbeat loop",
	Long: `Wakes the agent on a fixed interval and runs a full cycle each beat.
Failed beats are recorded in the ledger and the loop continues.

Stop with Ctrl-C; the current beat finishes its ledger bookkeeping first.`,
	RunE: runHeartbeat,
}

func init() {
	heartbeatCmd.Flags().DurationVar(&heartbeatInterval, "interval", 0, "Beat interval (default from config)")
	heartbeatCmd.Flags().BoolVar(&heartbeatOnce, "once", false, "Run a single beat and exit")
	heartbeatCmd.Flags().StringVar(&submoltName, "submolt", "", "Submolt to share stories in")
	runCmd.Flags().StringVar(&submoltName, "submolt", "", "Submolt to share stories in")
}

// beatAgent builds the heartbeat agent function. The research source is
// constructed per beat so each run gets its own search budget.
func beatAgent(a *app) heartbeat.Agent {
	return func(ctx context.Context, rc heartbeat.RunContext) (string, error) {
		submolt := submoltName
		if submolt == "" {
			submolt = cfg.Moltbook.Submolt
		}
		cycle := &agent.Cycle{
			Identity: a.engine,
			Writer:   a.writerPipeline(),
			Ledger:   a.ledger,
			Submolt:  submolt,
		}
		if a.social != nil {
			cycle.Social = a.social
		}
		if a.search != nil {
			cycle.Research = research.NewResearcher(a.llm,
				research.NewSearcher(a.search, rc.Searches))
		}
		return cycle.Run(ctx, rc)
	}
}

func runnerConfig() heartbeat.Config {
	interval := heartbeatInterval
	if interval <= 0 {
		interval = cfg.GetHeartbeatInterval()
	}
	return heartbeat.Config{
		Interval:    interval,
		MaxSearches: cfg.Search.MaxSearches,
	}
}

func runOneBeat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	runner := heartbeat.NewRunner(runnerConfig(), beatAgent(a), a.ledger)
	rc, err := runner.RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("beat #%d failed: %w", rc.Number, err)
	}

	logger.Info("Beat completed", zap.Int("number", rc.Number), zap.String("run_id", rc.RunID))
	fmt.Printf("Beat #%d completed (run %s)\n", rc.Number, rc.RunID)
	return nil
}

func runHeartbeat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Hot-reload skills while the loop runs.
	if cfg.Skills.Watch {
		watcher, werr := skills.NewWatcher(a.skills)
		if werr != nil {
			logger.Warn("Skills watcher unavailable", zap.Error(werr))
		} else if werr := watcher.Start(ctx); werr != nil {
			logger.Warn("Skills watcher failed to start", zap.Error(werr))
		} else {
			defer watcher.Stop()
		}
	}

	runner := heartbeat.NewRunner(runnerConfig(), beatAgent(a), a.ledger)
	if heartbeatOnce {
		_, err := runner.RunOnce(ctx)
		return err
	}

	if err := runner.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
