package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"muse/internal/identity"
)

// identityCmd groups identity file operations
var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Inspect and evolve the identity files",
	Long: `The agent's identity lives in four plain text files under the state
directory: emotions, topics, personality, and social_context. Each holds one
point per line and evolves between bounds through an extract/score/decide
pipeline.`,
}

var identityRetrieveCmd = &cobra.Command{
	Use:   "retrieve [domain]",
	Short: "Show identity file contents",
	Long: `Prints one domain's current points, or all four domains when no
domain is given.

Domains: emotions, topics, personality, social_context`,
	Args: cobra.MaximumNArgs(1),
	RunE: showIdentity,
}

var identityEvolveCmd = &cobra.Command{
	Use:   "evolve [domain]",
	Short: "Evolve one domain from an experience",
	Long: `Runs the full evolution pipeline for one domain against an
experience text read from stdin (or from --from).

Example:
  muse identity evolve emotions --from story.txt
  cat story.txt | muse identity evolve personality`,
	Args: cobra.ExactArgs(1),
	RunE: evolveIdentity,
}

var evolveFrom string

func init() {
	identityEvolveCmd.Flags().StringVar(&evolveFrom, "from", "", "Read the experience from a file instead of stdin")

	identityCmd.AddCommand(identityRetrieveCmd)
	identityCmd.AddCommand(identityEvolveCmd)
}

func showIdentity(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	domains := identity.Domains()
	if len(args) == 1 {
		d, err := identity.DomainByKey(args[0])
		if err != nil {
			return err
		}
		domains = []identity.Domain{d}
	}

	for _, d := range domains {
		res, err := a.engine.Retrieve(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d/%d-%d):\n", d.Label, len(res.Items), d.Lo, d.Hi)
		for _, item := range res.Items {
			fmt.Printf("  - %s\n", item)
		}
		fmt.Println()
	}
	return nil
}

func evolveIdentity(cmd *cobra.Command, args []string) error {
	d, err := identity.DomainByKey(args[0])
	if err != nil {
		return err
	}

	experience, err := readExperience()
	if err != nil {
		return err
	}
	if strings.TrimSpace(experience) == "" {
		return fmt.Errorf("no experience text provided")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.engine.Evolve(cmd.Context(), d, experience)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d -> %d points\n", d.Label, res.Before, res.After)
	for _, line := range res.Trail {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

func readExperience() (string, error) {
	if evolveFrom != "" {
		data, err := os.ReadFile(evolveFrom)
		if err != nil {
			return "", fmt.Errorf("failed to read experience file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
