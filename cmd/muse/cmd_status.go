package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"muse/internal/identity"
)

// statusCmd shows the agent's current state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show identity counts and recent runs",
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("%s (provider %s, model %s)\n", cfg.Name, cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Printf("State: %s\n\n", cfg.StateDir)

	for _, d := range identity.Domains() {
		items, lerr := a.store.Load(d.Key)
		if lerr != nil {
			return lerr
		}
		fmt.Printf("  %-16s %d points (bounds %d-%d)\n", d.Label, len(items), d.Lo, d.Hi)
	}

	runs, err := a.ledger.RecentRuns(5)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\nNo runs recorded yet.")
		return nil
	}

	fmt.Println("\nRecent runs:")
	for _, r := range runs {
		fmt.Printf("  #%d %s %s  %s\n",
			r.Number, r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.Summary)
	}
	return nil
}
