package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"muse/internal/identity"
	"muse/internal/research"
	"muse/internal/writer"
)

// storyCmd groups story pipeline operations
var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Write stories through the outline/draft/refine pipeline",
}

var storyWriteCmd = &cobra.Command{
	Use:   "write [topic]",
	Short: "Write one story about a topic",
	Long: `Runs the full writing pipeline for a topic: research (when a search
key is configured), outline, draft, refine, and save under the state
directory's stories/ folder.

Without a topic, the first entry of the topic pool is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: writeStory,
}

var withResearch bool

func init() {
	storyWriteCmd.Flags().BoolVar(&withResearch, "research", true, "Research the topic before writing")
	storyCmd.AddCommand(storyWriteCmd)
}

func writeStory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()

	topic := ""
	if len(args) == 1 {
		topic = args[0]
	} else {
		topics, terr := a.engine.Retrieve(ctx, identity.Topics)
		if terr != nil {
			return terr
		}
		if len(topics.Items) > 0 {
			topic = topics.Items[0]
		}
	}
	if topic == "" {
		return fmt.Errorf("no topic given and the topic pool is empty")
	}

	var brief string
	if withResearch && a.search != nil {
		searcher := research.NewSearcher(a.search, research.NewBudget(cfg.Search.MaxSearches))
		brief, err = research.NewResearcher(a.llm, searcher).Brief(ctx, topic)
		if err != nil {
			fmt.Printf("research failed, writing without a brief: %v\n", err)
			brief = ""
		}
	}

	emotions, err := a.engine.Retrieve(ctx, identity.Emotions)
	if err != nil {
		return err
	}
	personality, err := a.engine.Retrieve(ctx, identity.Personality)
	if err != nil {
		return err
	}
	memories, err := a.engine.Retrieve(ctx, identity.Memories)
	if err != nil {
		return err
	}

	story, err := a.writerPipeline().Write(ctx, writer.Inputs{
		Topic:       topic,
		Research:    brief,
		Personality: strings.Join(personality.Items, "\n"),
		Emotions:    strings.Join(emotions.Items, "\n"),
		Memories:    strings.Join(memories.Items, "\n"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Saved %s (~%d tokens)\n\n", story.Path, writer.EstimateTokens(story.Refined))
	fmt.Println(story.Refined)
	return nil
}

// skillsCmd lists the available writing skills
var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List available writing skills",
	Long: `Shows every skill found in the skills directory. A skill is a
directory with a SKILL.md file: YAML frontmatter for the name and
description, then the full instructions, plus optional resource files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		all := a.skills.All()
		if len(all) == 0 {
			fmt.Println("No skills found in", cfg.Skills.Dir)
			return nil
		}
		for _, meta := range all {
			fmt.Printf("%s\n  %s\n", meta.Name, meta.Description)
		}
		return nil
	},
}
