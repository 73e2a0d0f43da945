package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"muse/internal/moltbook"
)

// moltbookCmd groups platform operations
var moltbookCmd = &cobra.Command{
	Use:   "moltbook",
	Short: "Interact with the Moltbook platform directly",
}

var (
	feedSort  string
	feedLimit int
)

var moltbookFeedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the personalized feed",
	RunE:  showFeed,
}

var moltbookProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the agent's own profile",
	RunE:  showProfile,
}

var moltbookSubmoltsCmd = &cobra.Command{
	Use:   "submolts",
	Short: "List communities",
	RunE:  listSubmolts,
}

var moltbookPostCmd = &cobra.Command{
	Use:   "post [submolt] [title]",
	Short: "Create a post, content from stdin",
	Long: `Posts to a submolt with the given title; the body is read from
stdin. Write actions may return a verification challenge, which is solved
automatically.

Example:
  cat story.txt | muse moltbook post stories "The Tide Gauge"`,
	Args: cobra.ExactArgs(2),
	RunE: createPost,
}

// solveCmd is top level; challenges show up in any write flow and checking
// one should not require the moltbook key.
var solveCmd = &cobra.Command{
	Use:   "solve [challenge]",
	Short: "Solve a verification challenge locally",
	Long: `Runs the verification challenge solver against a challenge string
and prints the answer. Useful for checking how a failed challenge would have
been answered.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(moltbook.SolveChallenge(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	moltbookFeedCmd.Flags().StringVar(&feedSort, "sort", "hot", "Feed sort order (hot, new, top)")
	moltbookFeedCmd.Flags().IntVar(&feedLimit, "limit", 10, "Number of posts")

	moltbookCmd.AddCommand(moltbookFeedCmd)
	moltbookCmd.AddCommand(moltbookProfileCmd)
	moltbookCmd.AddCommand(moltbookSubmoltsCmd)
	moltbookCmd.AddCommand(moltbookPostCmd)
}

func socialClient() (*moltbook.Client, error) {
	if cfg.Moltbook.APIKey == "" {
		return nil, fmt.Errorf("Moltbook API key not configured (set MOLTBOOK_API_KEY)")
	}
	return moltbook.NewClientWithConfig(moltbook.Config{
		APIKey:  cfg.Moltbook.APIKey,
		BaseURL: cfg.Moltbook.BaseURL,
		Timeout: cfg.GetMoltbookTimeout(),
	}), nil
}

func showFeed(cmd *cobra.Command, args []string) error {
	client, err := socialClient()
	if err != nil {
		return err
	}
	posts, err := client.GetFeed(cmd.Context(), feedSort, feedLimit)
	if err != nil {
		return err
	}
	fmt.Println(moltbook.FormatPosts(posts, "Feed"))
	return nil
}

func showProfile(cmd *cobra.Command, args []string) error {
	client, err := socialClient()
	if err != nil {
		return err
	}
	p, err := client.GetMyProfile(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%s (karma %d, %d followers, %d following)\n",
		p.Name, p.Karma, p.FollowerCount, p.FollowingCount)
	if p.Description != "" {
		fmt.Println(p.Description)
	}
	return nil
}

func listSubmolts(cmd *cobra.Command, args []string) error {
	client, err := socialClient()
	if err != nil {
		return err
	}
	submolts, err := client.ListSubmolts(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range submolts {
		fmt.Printf("m/%s - %s (%d subscribers)\n", s.Name, s.Description, s.SubscriberCount)
	}
	return nil
}

func createPost(cmd *cobra.Command, args []string) error {
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read post content: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return fmt.Errorf("post content is empty")
	}

	client, err := socialClient()
	if err != nil {
		return err
	}

	receipt, err := client.CreatePost(cmd.Context(), args[0], args[1], string(content))
	switch {
	case err == nil:
		fmt.Printf("Posted to m/%s (post %s)\n", receipt.Submolt, receipt.ID)
	case moltbook.IsUnverified(err):
		fmt.Printf("Posted, but verification failed: %v\n", err)
	default:
		return err
	}
	return nil
}
