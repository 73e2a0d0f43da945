package writer

import "fmt"

const outlineSystemPrompt = `You are a story outliner specialized in 500-token short fiction.

Create a 3-5 sentence outline for a 500-token story that:
- Has a clear narrative arc (hook, situation, complication, climax, resolution)
- Focuses on the topic
- Channels 1-2 emotions authentically
- Will subtly weave in research insights

Return ONLY the final outline, no meta-commentary.`

const draftSystemPrompt = `You are a skilled creative fiction writer specializing in emotionally resonant short stories.

Write a 600-token story draft (will be refined to 500) that:
1. Follows the outline structure
2. Uses proper paragraph breaks (3-5 paragraphs recommended)
3. Expresses personality traits through narrative voice
4. Channels 1-2 emotions authentically
5. Subtly references research insights
6. Uses vivid, concrete imagery
7. Shows, don't tell
8. Has a satisfying conclusion

IMPORTANT: Write in proper paragraphs with line breaks. Do NOT write the entire story as one massive paragraph.

Return ONLY the story text, no meta-commentary.`

const refineSystemPrompt = `You are an expert editor specializing in polishing short fiction to exact specifications.

Refine the story to exactly 500 tokens (plus or minus 20 is acceptable) while:
1. PRESERVING paragraph breaks (use proper line breaks between paragraphs)
2. Fixing any formatting issues (no broken words, proper spacing)
3. Tightening prose (remove redundancy, sharpen language)
4. Strengthening opening hook and closing resonance
5. Ensuring smooth flow between paragraphs

CRITICAL: Maintain proper paragraph structure with line breaks. Do NOT merge everything into one giant paragraph.

Return ONLY the refined story text with proper formatting.`

func orNone(s string) string {
	if s == "" {
		return "(None)"
	}
	return s
}

func outlinePrompt(in Inputs) string {
	return fmt.Sprintf(`Create a story outline based on these elements:

Topic: %s
Research: %s
Personality: %s
Emotions: %s
Memories: %s

Create a 3-5 sentence outline.`,
		in.Topic, orNone(in.Research), orNone(in.Personality),
		orNone(in.Emotions), orNone(in.Memories))
}

func draftPrompt(in Inputs, outline string) string {
	return fmt.Sprintf(`Write a complete story draft based on this outline and context.

Outline:
%s

Topic: %s
Research Context: %s
Personality Traits: %s
Emotional Palette: %s
Relevant Memories: %s

Write the story.`,
		outline, in.Topic, orNone(in.Research), orNone(in.Personality),
		orNone(in.Emotions), orNone(in.Memories))
}

func refinePrompt(draft string) string {
	return fmt.Sprintf(`Refine this story draft to exactly 500 tokens with perfect formatting.

Draft:
%s

Refine the story.`, draft)
}
