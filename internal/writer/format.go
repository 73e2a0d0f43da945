package writer

import (
	"regexp"
	"strings"
)

// Model output arrives with recurring formatting damage: words split
// mid-syllable, em-dashes fused into words, and dropped possessive
// apostrophes. CleanStoryFormatting repairs the known patterns before a
// story is persisted.

var brokenWordFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bth\s+is\b`), "this"},
	{regexp.MustCompile(`\bth\s+at\b`), "that"},
	{regexp.MustCompile(`\bth\s+an\b`), "than"},
	{regexp.MustCompile(`\bth\s+em\b`), "them"},
	{regexp.MustCompile(`\bth\s+en\b`), "then"},
	{regexp.MustCompile(`\bth\s+ere\b`), "there"},
	{regexp.MustCompile(`\bwh\s+at\b`), "what"},
	{regexp.MustCompile(`\bwh\s+en\b`), "when"},
	{regexp.MustCompile(`\bwh\s+ere\b`), "where"},
	{regexp.MustCompile(`\bwh\s+ich\b`), "which"},
}

var emDashFusionFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`th\x{2014}an\s+a\b`), "than a"},
	{regexp.MustCompile(`th\x{2014}an\b`), "than"},
	{regexp.MustCompile(`mor\x{2014}e\b`), "more"},
	{regexp.MustCompile(`\x{2014}a\b`), "a"},
	{regexp.MustCompile(`\x{2014}an\b`), "an"},
	{regexp.MustCompile(`\x{2014}the\b`), "the"},
}

// Nouns that commonly follow a possessive in generated prose. "Elaras
// processor" becomes "Elara's processor".
var possessiveNouns = []string{
	"processor", "avatar", "voice", "heart", "mind", "eye", "eyes",
	"face", "hand", "hands", "body", "screen", "companion", "tablet",
	"window", "room", "world", "life", "story", "memory", "thought",
}

var possessiveFixes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(possessiveNouns))
	for i, noun := range possessiveNouns {
		res[i] = regexp.MustCompile(`\b(\w+)s\s+` + noun + `\b`)
	}
	return res
}()

var (
	multiSpaceRe    = regexp.MustCompile(` {2,}`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)
	sentenceGlueRe  = regexp.MustCompile(`([.!?])([A-Z])`)
	nonSlugCharRe   = regexp.MustCompile(`[^a-z0-9_]`)
	slugSeparatorRe = regexp.MustCompile(`[ \-]+`)
)

// CleanStoryFormatting repairs common model formatting damage while
// preserving paragraph breaks.
func CleanStoryFormatting(text string) string {
	for _, fix := range brokenWordFixes {
		text = fix.re.ReplaceAllString(text, fix.replacement)
	}
	for _, fix := range emDashFusionFixes {
		text = fix.re.ReplaceAllString(text, fix.replacement)
	}
	for i, re := range possessiveFixes {
		text = re.ReplaceAllString(text, "${1}'s "+possessiveNouns[i])
	}

	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = sentenceGlueRe.ReplaceAllString(text, "$1 $2")

	return strings.TrimSpace(text)
}

// Slugify derives a filesystem-safe slug from a story topic: lowercase,
// spaces and hyphens become underscores, anything else outside [a-z0-9_] is
// stripped, capped at 50 characters.
func Slugify(topic string) string {
	slug := strings.ToLower(topic)
	slug = slugSeparatorRe.ReplaceAllString(slug, "_")
	slug = nonSlugCharRe.ReplaceAllString(slug, "")
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}

// EstimateTokens approximates token count from word count. One token is
// roughly 0.75 words for English prose.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 0.75)
}
