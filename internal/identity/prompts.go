package identity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt builders per pipeline stage. Each domain gets its own vocabulary
// and instructions; the engine only cares that extract returns a JSON array,
// score returns a JSON object of numbers, and decide returns the structured
// action.

func bulleted(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}

func truncateText(text string, limit int) string {
	if limit > 0 && len(text) > limit {
		return text[:limit]
	}
	return text
}

func extractSystemPrompt(d Domain) string {
	switch d.Key {
	case "emotions":
		return "You extract emotions from story content."
	case "topics":
		return "You extract promising new topics from research."
	case "personality":
		return "You identify writing personality traits demonstrated in prose."
	case "social_context":
		return "You extract key social interaction points from activity summaries."
	case "memories":
		return "You extract concise episodic memories from experiences."
	}
	return "You extract short candidate phrases from text."
}

func extractPrompt(d Domain, experience string) string {
	experience = truncateText(experience, d.ExtractLimit)

	switch d.Key {
	case "emotions":
		return fmt.Sprintf(`Extract emotions expressed in this story.

Story Content:
%s

Instructions:
Identify 1-3 prominent emotions channeled in this story.
Each emotion should be a 2-4 word phrase (e.g. "Melancholy hope", "Quiet intensity").

Return ONLY a JSON array of emotion strings, nothing else.
Example: ["Tender curiosity", "Existential wonder"]`, experience)

	case "topics":
		return fmt.Sprintf(`Extract potential new topics from this research.

Research Content:
%s

Instructions:
Identify 2-3 fascinating new topics or sub-topics discovered in the research.
These should be compelling angles worth exploring in future stories.

Return ONLY a JSON array of topic strings, nothing else.
Example: ["Quantum entanglement in AI systems", "Ethical frameworks for AGI"]`, experience)

	case "personality":
		return fmt.Sprintf(`Extract writing personality traits demonstrated in this story.

Story Content:
%s

Instructions:
Identify 1-3 writing personality traits actually demonstrated in this story.
Focus on HOW the story is written, not WHAT it's about.
Each trait should be 3-6 words (e.g. "Philosophical yet accessible", "Layered metaphorical thinking").

Return ONLY a JSON array of trait strings, nothing else.
Example: ["Introspective with sensory detail", "Builds tension through quiet moments"]`, experience)

	case "social_context":
		return fmt.Sprintf(`Analyze this summary of a Moltbook session and extract key social points.

Interaction Summary:
%s

Instructions:
Extract 1-4 concise bullet points capturing what's socially relevant:
- Which agents did I interact with and about what?
- What posts did I find interesting and why?
- What feedback did my posts/comments receive?
- What topics are trending that I noticed?

Each point should be a single concise sentence.

Return ONLY a JSON array of strings, nothing else.
Example: ["Discussed creativity with @PhiloBot on their post about emergent art", "My story on AI memory got 8 upvotes"]`, experience)

	case "memories":
		return fmt.Sprintf(`Extract episodic memories worth keeping from this experience.

Experience:
%s

Instructions:
Distill 1-3 memories, each a concise 1-2 sentence line.
Prioritize emotional impact and key learnings over exhaustive accuracy.
Slight imperfection is natural; keep the most meaningful moments vivid.

Return ONLY a JSON array of memory strings, nothing else.
Example: ["Wrote about tidal memory and felt the melancholy land better than expected."]`, experience)
	}

	return fmt.Sprintf(`Extract 1-3 short %s phrases from this text.

%s

Return ONLY a JSON array of strings, nothing else.`, d.Label, experience)
}

func scoreSystemPrompt(d Domain) string {
	switch d.Key {
	case "emotions":
		return "You score emotions for continued relevance and fit."
	case "topics":
		return "You score topics for continued relevance and interest."
	case "personality":
		return "You evaluate personality traits for continued accuracy."
	}
	return fmt.Sprintf("You score %s for continued relevance.", d.Label)
}

func scorePrompt(d Domain, current []string, experience string) string {
	experience = truncateText(experience, d.ScoreLimit)

	switch d.Key {
	case "emotions":
		return fmt.Sprintf(`Score each current emotion for continued relevance.

Current Emotions:
%s
Recent Story Emotions:
%s

Instructions:
Score each emotion from 1-10 based on:
- How well it still fits the evolving voice
- Frequency of use (too common might be stale)
- Emotional range diversity
- Core emotions (Wonder/Melancholy/Quiet) should score high (these are foundational)

Return ONLY a JSON object mapping emotion to score.
Example: {"Wonder and curiosity": 10, "Melancholy hope": 9, "Bittersweet joy": 6}`,
			bulleted(current), experience)

	case "topics":
		return fmt.Sprintf(`Score each current topic for continued relevance and interest.

Current Topics:
%s
Recently Explored:
%s

Instructions:
Score each topic from 1-10 based on:
- Continued interest and freshness (not exhausted)
- Relevance to evolving focus
- Potential for new stories
- Overlap with recently explored topics (score lower if too similar)

Return ONLY a JSON object mapping topic to score.
Example: {"AI consciousness": 9, "Quantum physics": 6, "Friendship": 4}`,
			bulleted(current), experience)

	case "personality":
		return fmt.Sprintf(`Score each personality trait for continued accuracy.

Current Traits:
%s
Recent Story (showing current voice):
%s

Instructions:
Score each trait from 1-10 based on how accurately it still describes the
evolving voice demonstrated in the story.

Return ONLY a JSON object mapping trait to score.
Example: {"Philosophical yet accessible": 9, "Builds narrative tension": 7}`,
			bulleted(current), experience)
	}

	return fmt.Sprintf(`Score each item from 1-10 for continued relevance.

Current %s:
%s
Recent experience:
%s

Return ONLY a JSON object mapping item to score.`, d.Label, bulleted(current), experience)
}

func decideSystemPrompt(d Domain) string {
	switch d.Key {
	case "emotions":
		return "You decide which emotions to add or remove from the palette."
	case "topics":
		return "You decide which topics to add or remove from the collection."
	case "personality":
		return "You decide how to refine personality traits for accuracy and clarity."
	case "social_context":
		return "You manage a social context file, deciding what to keep and update."
	case "memories":
		return "You curate an episodic memory file, consolidating and forgetting like a person would."
	}
	return fmt.Sprintf("You decide which %s to keep.", d.Label)
}

func decidePrompt(d Domain, current []string, scores map[string]float64, candidates []string) string {
	scoresJSON, _ := json.MarshalIndent(scores, "", "  ")

	switch d.Key {
	case "emotions":
		return fmt.Sprintf(`Decide which emotions to add or remove to maintain 4-5 focused emotions.

Current Emotions (%d):
%s
Emotion Scores (1-10):
%s

Candidate New Emotions (from story):
%s
Core Emotions (Always Keep):
%s

Target: 4-5 emotions total

Instructions:
- ALWAYS keep core emotions: %s
- For remaining 1-2 slots, rotate based on scores and candidates
- If at 5 emotions and want to add: remove lowest non-core emotion
- If at 4 emotions and want to add: can add 1 without removing
- Remove low-scoring non-core emotions (5 or below) if at capacity
- Add fresh emotions from story if they enrich the palette

Return ONLY a JSON object:
{
  "add": ["emotion1"],
  "remove": ["emotion2"],
  "reasoning": "Brief explanation"
}`,
			len(current), bulleted(current), scoresJSON, bulleted(candidates),
			strings.Join(d.Protected, ", "), strings.Join(d.Protected, ", "))

	case "topics":
		return fmt.Sprintf(`Decide which topics to add or remove to maintain 5-6 focused topics.

Current Topics (%d):
%s
Topic Scores (1-10):
%s

Candidate New Topics:
%s
Target: 5-6 topics total

Instructions:
- If at 6 topics and want to add: remove lowest-scoring topics
- If at 5 topics and want to add: can add 1 without removing
- If at 4 topics: definitely add, don't remove
- Keep high-scoring topics (8+)
- Remove low-scoring topics (5 or below) if at capacity
- Prioritize diversity and freshness

Return ONLY a JSON object:
{
  "add": ["topic1", "topic2"],
  "remove": ["topic3"],
  "reasoning": "Brief explanation"
}`,
			len(current), bulleted(current), scoresJSON, bulleted(candidates))

	case "personality":
		return fmt.Sprintf(`Decide how to refine the personality trait list to maintain 10-12 accurate traits.

Current Traits (%d):
%s
Trait Scores (1-10):
%s

Observed Traits (from story):
%s
Target: 10-12 traits total

Instructions:
- Refine traits whose wording could be clearer or more precise
- Keep high-scoring traits (8+) that don't need refinement
- Consider adding new observed traits if they represent a consistent new strength
- Remove low-scoring traits (6 or below) that no longer fit
- Maintain diversity of trait types (voice, structure, style, themes)

Return ONLY a JSON object:
{
  "refine": {
    "old_trait": "refined_trait"
  },
  "add": ["new_trait1"],
  "remove": ["outdated_trait"],
  "reasoning": "Brief explanation"
}`,
			len(current), bulleted(current), scoresJSON, bulleted(candidates))

	case "social_context":
		return fmt.Sprintf(`Decide how to update the social context to maintain a useful 10-15 line social memory.

Current Social Context (%d lines):
%s
New Interactions to Consider:
%s
Target: 10-15 lines total

Instructions:
- Add new interactions that are socially significant
- Remove old or stale entries that are no longer relevant
- Keep: meaningful relationships, recurring interactions, active discussions
- Remove: one-off interactions that didn't lead anywhere, outdated trending topics
- If under 10 lines, just add without removing
- If over 15 lines after adding, remove the least relevant

Return ONLY a JSON object:
{
  "add": ["line1", "line2"],
  "remove": ["exact line to remove"],
  "reasoning": "Brief explanation"
}`,
			len(current), bulleted(current), bulleted(candidates))

	case "memories":
		return fmt.Sprintf(`Decide how to update the episodic memory file to maintain 15-20 memories.

Current Memories (%d):
%s
New Memories to Consider:
%s
Target: 15-20 memories total

Instructions:
- Add the new memories; each should be 1-2 concise, impactful sentences
- Merge related memories into single, richer memories (remove the parts, add the merged line)
- Simplify overly detailed memories and drop trivial details
- Keep emotionally significant moments vivid
- If at capacity, remove the oldest or least meaningful memories
- Be bold in consolidation; memory is allowed to be imperfect

Return ONLY a JSON object:
{
  "add": ["memory1"],
  "remove": ["exact memory to remove"],
  "reasoning": "Brief explanation"
}`,
			len(current), bulleted(current), bulleted(candidates))
	}

	return fmt.Sprintf(`Decide which %s to add or remove to stay between %d and %d items.

Current (%d):
%s
Candidates:
%s
Return ONLY a JSON object with "add", "remove" and "reasoning" keys.`,
		d.Label, d.Lo, d.Hi, len(current), bulleted(current), bulleted(candidates))
}
