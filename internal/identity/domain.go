package identity

import "fmt"

// TruncationStrategy selects how a collection is trimmed back to its upper
// bound when adds and removes leave it oversized.
type TruncationStrategy int

const (
	// TruncateKeepCore keeps all protected items plus the highest-scored
	// non-protected items.
	TruncateKeepCore TruncationStrategy = iota
	// TruncateFirstN keeps the first N items in current order.
	TruncateFirstN
	// TruncateByScore keeps the highest-scored items, treating unscored
	// items as score 5. Ties preserve current order.
	TruncateByScore
	// TruncateKeepRecent keeps the most-recently-appended N items.
	TruncateKeepRecent
)

// Domain describes one bounded identity collection and its rotation policy.
type Domain struct {
	// Key is the collection identifier and file stem (e.g. "emotions"
	// backs emotions.txt).
	Key string

	// Label is the human vocabulary used in prompts and trail lines
	// ("emotions", "topics", "traits", "social points").
	Label string

	// Lo and Hi bound the collection size after every evolve.
	Lo, Hi int

	// Protected items are never removed and survive every truncation.
	Protected []string

	// HasScoring enables the score stage. Social context skips it.
	HasScoring bool

	Truncation TruncationStrategy

	// SupportsRefine allows the decide stage to rewrite an item in place
	// (personality only).
	SupportsRefine bool

	// AddAllOnDecideFailure makes a malformed decide response fall back to
	// adding every extracted candidate instead of doing nothing.
	AddAllOnDecideFailure bool

	// MaxCandidates caps how many extracted candidates are considered.
	MaxCandidates int

	// ExtractLimit and ScoreLimit bound how much experience text is sent
	// to the model per stage, in characters.
	ExtractLimit int
	ScoreLimit   int
}

// IsProtected reports whether an item belongs to the protected subset.
func (d Domain) IsProtected(item string) bool {
	for _, p := range d.Protected {
		if p == item {
			return true
		}
	}
	return false
}

// The three core emotions are foundational to the voice and are never
// rotated out.
var coreEmotions = []string{
	"Wonder and curiosity",
	"Melancholy hope",
	"Quiet intensity",
}

// Emotions is the emotional palette channeled into stories.
var Emotions = Domain{
	Key:           "emotions",
	Label:         "emotions",
	Lo:            4,
	Hi:            5,
	Protected:     coreEmotions,
	HasScoring:    true,
	Truncation:    TruncateKeepCore,
	MaxCandidates: 3,
	ExtractLimit:  1000,
	ScoreLimit:    500,
}

// Topics is the pool of subjects available for research and writing.
var Topics = Domain{
	Key:           "topics",
	Label:         "topics",
	Lo:            5,
	Hi:            6,
	HasScoring:    true,
	Truncation:    TruncateFirstN,
	MaxCandidates: 3,
	ExtractLimit:  2000,
	ScoreLimit:    500,
}

// Personality is the trait list reflected implicitly in prose. Traits are
// refined in place rather than churned.
var Personality = Domain{
	Key:            "personality",
	Label:          "traits",
	Lo:             10,
	Hi:             12,
	HasScoring:     true,
	Truncation:     TruncateByScore,
	SupportsRefine: true,
	MaxCandidates:  3,
	ExtractLimit:   1000,
	ScoreLimit:     800,
}

// SocialContext is the rolling memory of platform interactions. No scoring
// stage; rotation keeps the most recent lines.
var SocialContext = Domain{
	Key:                   "social_context",
	Label:                 "social points",
	Lo:                    10,
	Hi:                    15,
	Truncation:            TruncateKeepRecent,
	AddAllOnDecideFailure: true,
	MaxCandidates:         4,
	ExtractLimit:          2000,
}

// Memories is the episodic memory of past runs. Each line is a concise one
// or two sentence memory; capacity overflow forgets the oldest.
var Memories = Domain{
	Key:                   "memories",
	Label:                 "memories",
	Lo:                    15,
	Hi:                    20,
	Truncation:            TruncateKeepRecent,
	AddAllOnDecideFailure: true,
	MaxCandidates:         3,
	ExtractLimit:          2000,
}

// Domains returns all identity domains in canonical order.
func Domains() []Domain {
	return []Domain{Emotions, Topics, Personality, SocialContext, Memories}
}

// DomainByKey looks up a domain by its collection key.
func DomainByKey(key string) (Domain, error) {
	for _, d := range Domains() {
		if d.Key == key {
			return d, nil
		}
	}
	return Domain{}, fmt.Errorf("unknown identity domain: %s", key)
}
