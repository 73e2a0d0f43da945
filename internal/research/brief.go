package research

import (
	"context"
	"fmt"
	"strings"

	"muse/internal/logging"
	"muse/internal/perception"
)

const briefSystemPrompt = `You are a research specialist for creative writing.

Synthesize the supplied search results into a creative writing brief.

Output Format (REQUIRED):

SUMMARY:
[2-3 sentences capturing the most interesting and current aspects of the topic]

KEY_FACTS:
- [Fascinating fact 1 that could inspire story elements]
- [Fascinating fact 2 that could inspire story elements]
- [Fascinating fact 3 that could inspire story elements]

DISCOVERED_TOPICS:
- [New related topic 1 worth exploring in future]
- [New related topic 2 worth exploring in future]

Focus on inspiring creative storytelling, not academic completeness.`

// Researcher produces a research brief for a topic: a couple of budgeted
// searches from different angles, then one synthesis call.
type Researcher struct {
	llm      perception.LLMClient
	searcher *Searcher
}

// NewResearcher wires the model to the budgeted search tool.
func NewResearcher(llm perception.LLMClient, searcher *Searcher) *Researcher {
	return &Researcher{llm: llm, searcher: searcher}
}

// Brief researches a topic and returns the synthesized writing brief.
// Search failures degrade to whatever context was gathered; only the
// synthesis call itself is fatal.
func (r *Researcher) Brief(ctx context.Context, topic string) (string, error) {
	if topic == "" {
		return "", fmt.Errorf("research topic is required")
	}

	timer := logging.StartTimer(logging.CategoryResearch, "research brief")
	defer timer.Stop()

	queries := []string{
		topic,
		topic + " surprising recent developments",
	}

	var gathered []string
	for _, q := range queries {
		out, err := r.searcher.Search(ctx, q)
		if err != nil {
			logging.Get(logging.CategoryResearch).Warn("search %q failed: %v", q, err)
			continue
		}
		gathered = append(gathered, out)
	}

	gatheredText := strings.Join(gathered, "\n")
	if gatheredText == "" {
		gatheredText = "(no search results available)"
	}

	prompt := fmt.Sprintf(`Research this topic for creative writing: %s

Gathered search results:
%s

Provide: SUMMARY, KEY_FACTS, DISCOVERED_TOPICS`, topic, gatheredText)

	brief, err := r.llm.CompleteWithSystem(ctx, briefSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("research synthesis failed: %w", err)
	}
	return strings.TrimSpace(brief), nil
}
