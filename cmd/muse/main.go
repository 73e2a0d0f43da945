package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"muse/internal/archive"
	"muse/internal/config"
	"muse/internal/identity"
	"muse/internal/logging"
	"muse/internal/moltbook"
	"muse/internal/perception"
	"muse/internal/research"
	"muse/internal/skills"
	"muse/internal/writer"
)

var (
	// Global flags
	configPath string
	verbose    bool
	stateDir   string

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "muse",
	Short: "Muse - an autonomous creative writing agent",
	Long: `Muse is an autonomous creative writing agent with a persistent,
self-evolving identity.

On each heartbeat it loads its identity files, researches a topic from its
pool, writes a short story through an outline/draft/refine pipeline, shares
it on Moltbook, and then evolves its emotions, topics, personality, and
social context from the experience.

Run 'muse heartbeat' to start the loop, or 'muse run' for a single beat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if stateDir != "" {
			cfg.StateDir = stateDir
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		return logging.Initialize(cfg.StateDir, cfg.Logging.DebugMode, cfg.Logging.Categories, cfg.Logging.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "muse.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Override the state directory")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(heartbeatCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(moltbookCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired components one command needs. Social and search
// clients are nil when their API keys are not configured.
type app struct {
	store  *identity.Store
	engine *identity.Engine
	llm    perception.LLMClient
	skills *skills.Manager
	ledger *archive.Ledger
	social *moltbook.Client
	search *research.Client
}

func newApp() (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llm, err := buildLLMClient()
	if err != nil {
		return nil, err
	}

	store := identity.NewStore(cfg.StateDir)
	manager, err := skills.NewManager(cfg.Skills.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}

	ledger, err := archive.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}

	a := &app{
		store:  store,
		engine: identity.NewEngine(store, llm),
		llm:    llm,
		skills: manager,
		ledger: ledger,
	}

	if cfg.Moltbook.APIKey != "" {
		a.social = moltbook.NewClientWithConfig(moltbook.Config{
			APIKey:  cfg.Moltbook.APIKey,
			BaseURL: cfg.Moltbook.BaseURL,
			Timeout: cfg.GetMoltbookTimeout(),
		})
	}
	if cfg.Search.APIKey != "" {
		a.search = research.NewClient(research.Config{
			APIKey:     cfg.Search.APIKey,
			BaseURL:    cfg.Search.BaseURL,
			MaxResults: cfg.Search.MaxResults,
			Timeout:    30 * time.Second,
		})
	}
	return a, nil
}

func (a *app) close() {
	if a.ledger != nil {
		_ = a.ledger.Close()
	}
}

func (a *app) writerPipeline() *writer.Pipeline {
	return writer.NewPipeline(a.llm, a.skills, cfg.StateDir)
}

func buildLLMClient() (perception.LLMClient, error) {
	switch cfg.LLM.Provider {
	case "openai":
		c := perception.DefaultOpenAIConfig(cfg.LLM.APIKey)
		c.Model = cfg.LLM.Model
		c.Temperature = cfg.LLM.Temperature
		c.Timeout = cfg.GetLLMTimeout()
		if cfg.LLM.BaseURL != "" {
			c.BaseURL = cfg.LLM.BaseURL
		}
		return perception.NewOpenAIClientWithConfig(c), nil
	case "anthropic":
		c := perception.DefaultAnthropicConfig(cfg.LLM.APIKey)
		c.Model = cfg.LLM.Model
		c.Timeout = cfg.GetLLMTimeout()
		if cfg.LLM.BaseURL != "" {
			c.BaseURL = cfg.LLM.BaseURL
		}
		return perception.NewAnthropicClientWithConfig(c), nil
	case "gemini":
		return perception.NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model)
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
}
