// Package writer implements the multi-stage story pipeline: outline, draft,
// refine, save. Each stage is a single model call; formatting repair and
// persistence are local.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"muse/internal/logging"
	"muse/internal/perception"
)

// TimestampLayout names story files the same way run artifacts are named.
const TimestampLayout = "2006-01-02_15-04-05"

// SkillSource provides on-demand craft guidance, keyed by skill name.
// Lookup failures are non-fatal; the stage simply writes without the
// guidance.
type SkillSource interface {
	Use(name string) (string, error)
}

// Inputs is everything a story draws on.
type Inputs struct {
	Topic       string
	Research    string
	Personality string
	Emotions    string
	Memories    string
	Timestamp   time.Time
}

// Story is the finished artifact plus its generation trail.
type Story struct {
	Topic   string
	Outline string
	Draft   string
	Refined string
	Path    string
	Trail   []string
}

// Pipeline runs the outline, draft, refine, save sequence.
type Pipeline struct {
	llm      perception.LLMClient
	skills   SkillSource
	stateDir string
}

// NewPipeline creates a story pipeline. skills may be nil.
func NewPipeline(llm perception.LLMClient, skills SkillSource, stateDir string) *Pipeline {
	return &Pipeline{llm: llm, skills: skills, stateDir: stateDir}
}

// Write produces and persists a story. Model errors abort the pipeline;
// there is no partial story worth keeping.
func (p *Pipeline) Write(ctx context.Context, in Inputs) (Story, error) {
	if in.Topic == "" {
		return Story{}, fmt.Errorf("story topic is required")
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	timer := logging.StartTimer(logging.CategoryWriter, "story pipeline")
	defer timer.StopWithInfo()

	story := Story{Topic: in.Topic}

	// Outline
	outline, err := p.llm.CompleteWithSystem(ctx,
		p.withSkill(outlineSystemPrompt, "narrative_structure"),
		outlinePrompt(in))
	if err != nil {
		return Story{}, fmt.Errorf("outline stage failed: %w", err)
	}
	story.Outline = strings.TrimSpace(outline)
	story.Trail = append(story.Trail,
		fmt.Sprintf("Created story outline (%d words)", len(strings.Fields(story.Outline))))

	// Draft
	draft, err := p.llm.CompleteWithSystem(ctx,
		p.withSkill(draftSystemPrompt, "emotional_resonance"),
		draftPrompt(in, story.Outline))
	if err != nil {
		return Story{}, fmt.Errorf("draft stage failed: %w", err)
	}
	story.Draft = strings.TrimSpace(draft)
	story.Trail = append(story.Trail,
		fmt.Sprintf("Drafted story (~%d tokens, %d words)",
			EstimateTokens(story.Draft), len(strings.Fields(story.Draft))))

	// Refine
	refined, err := p.llm.CompleteWithSystem(ctx, refineSystemPrompt, refinePrompt(story.Draft))
	if err != nil {
		return Story{}, fmt.Errorf("refine stage failed: %w", err)
	}
	story.Refined = CleanStoryFormatting(refined)
	story.Trail = append(story.Trail,
		fmt.Sprintf("Refined and formatted (~%d tokens, %d words)",
			EstimateTokens(story.Refined), len(strings.Fields(story.Refined))))

	// Save
	path, err := p.save(in, story.Refined)
	if err != nil {
		return Story{}, err
	}
	story.Path = path
	story.Trail = append(story.Trail, fmt.Sprintf("Saved to: %s", path))
	logging.Writer("story saved: %s", path)

	return story, nil
}

// withSkill appends on-demand craft guidance to a stage's system prompt.
func (p *Pipeline) withSkill(systemPrompt, skillName string) string {
	if p.skills == nil {
		return systemPrompt
	}
	guidance, err := p.skills.Use(skillName)
	if err != nil {
		logging.Get(logging.CategoryWriter).Debug("skill %s unavailable: %v", skillName, err)
		return systemPrompt
	}
	return systemPrompt + "\n\n## Craft Guidance\n\n" + guidance
}

func (p *Pipeline) save(in Inputs, content string) (string, error) {
	dir := filepath.Join(p.stateDir, "stories")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create stories dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.txt", in.Timestamp.Format(TimestampLayout), Slugify(in.Topic))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write story: %w", err)
	}
	return path, nil
}
