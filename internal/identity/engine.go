package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"muse/internal/logging"
	"muse/internal/perception"
)

// Engine runs the generic evolution pipeline over any identity domain:
// load, extract candidates, score existing items, decide a rotation, apply
// it under the domain's hard constraints, persist.
//
// Model failures never abort the pipeline. A stage whose response cannot be
// parsed contributes its empty default and the pipeline continues, so even
// under total model failure an evolve degrades to a logged no-op.
type Engine struct {
	store *Store
	llm   perception.LLMClient
}

// NewEngine creates an evolution engine over a store and model client.
func NewEngine(store *Store, llm perception.LLMClient) *Engine {
	return &Engine{store: store, llm: llm}
}

// Result is what every engine operation returns: the final collection plus
// the decision trail accumulated across stages. The trail is per-invocation
// and never persisted.
type Result struct {
	Domain string
	Before int
	After  int
	Items  []string
	Trail  []string
}

// decision is the structured action requested from the model in the decide
// stage. Personality additionally uses the refine map.
type decision struct {
	Add       []string          `json:"add"`
	Remove    []string          `json:"remove"`
	Refine    map[string]string `json:"refine"`
	Reasoning string            `json:"reasoning"`
}

// Retrieve returns the current collection without mutating anything.
func (e *Engine) Retrieve(ctx context.Context, d Domain) (Result, error) {
	items, err := e.store.Load(d.Key)
	if err != nil {
		return Result{}, err
	}
	logging.IdentityDebug("retrieved %d %s", len(items), d.Label)
	return Result{
		Domain: d.Key,
		Before: len(items),
		After:  len(items),
		Items:  items,
		Trail:  []string{fmt.Sprintf("Retrieved %d %s", len(items), d.Label)},
	}, nil
}

// Evolve runs the full mutation pipeline against new experience text.
func (e *Engine) Evolve(ctx context.Context, d Domain, experience string) (Result, error) {
	lock := e.store.Lock(d.Key)
	lock.Lock()
	defer lock.Unlock()

	timer := logging.StartTimer(logging.CategoryIdentity, "evolve "+d.Key)
	defer timer.Stop()

	// LOAD
	current, err := e.store.Load(d.Key)
	if err != nil {
		return Result{}, err
	}
	before := len(current)
	trail := []string{fmt.Sprintf("Loaded %d current %s", before, d.Label)}

	// EXTRACT
	candidates := e.extract(ctx, d, experience)
	trail = append(trail, fmt.Sprintf("Extracted %d %s: %s",
		len(candidates), d.Label, strings.Join(candidates, ", ")))

	// SCORE
	var scores map[string]float64
	if d.HasScoring {
		scores = e.score(ctx, d, current, experience)
		trail = append(trail, fmt.Sprintf("Scored %d of %d existing %s",
			len(scores), len(current), d.Label))
	}

	// DECIDE
	dec, decTrail := e.decide(ctx, d, current, scores, candidates)
	trail = append(trail, decTrail)

	// APPLY
	final := applyDecision(d, current, dec, scores)

	if err := e.store.Save(d.Key, final); err != nil {
		return Result{}, err
	}
	trail = append(trail, fmt.Sprintf("Updated %s.txt: %d -> %d %s",
		d.Key, before, len(final), d.Label))
	logging.Identity("evolved %s: %d -> %d", d.Key, before, len(final))

	return Result{
		Domain: d.Key,
		Before: before,
		After:  len(final),
		Items:  final,
		Trail:  trail,
	}, nil
}

func (e *Engine) extract(ctx context.Context, d Domain, experience string) []string {
	response, err := e.llm.CompleteWithSystem(ctx, extractSystemPrompt(d), extractPrompt(d, experience))
	if err != nil {
		logging.Get(logging.CategoryIdentity).Warn("extract failed for %s: %v", d.Key, err)
		return nil
	}
	candidates := perception.DecodeStringList(response)
	if len(candidates) > d.MaxCandidates {
		candidates = candidates[:d.MaxCandidates]
	}
	return candidates
}

func (e *Engine) score(ctx context.Context, d Domain, current []string, experience string) map[string]float64 {
	if len(current) == 0 {
		return map[string]float64{}
	}
	response, err := e.llm.CompleteWithSystem(ctx, scoreSystemPrompt(d), scorePrompt(d, current, experience))
	if err != nil {
		logging.Get(logging.CategoryIdentity).Warn("score failed for %s: %v", d.Key, err)
		return map[string]float64{}
	}
	return perception.DecodeScoreMap(response)
}

func (e *Engine) decide(ctx context.Context, d Domain, current []string, scores map[string]float64, candidates []string) (decision, string) {
	var dec decision
	response, err := e.llm.CompleteWithSystem(ctx, decideSystemPrompt(d), decidePrompt(d, current, scores, candidates))
	if err == nil {
		// A response with no object at all is a parse failure, not an
		// empty decision.
		if strings.IndexByte(response, '{') == -1 {
			err = fmt.Errorf("no decision object in response")
		} else {
			err = json.Unmarshal([]byte(perception.ExtractJSON(response)), &dec)
		}
	}
	if err != nil {
		if d.AddAllOnDecideFailure {
			dec = decision{Add: candidates}
			return dec, "Decision: failed to parse, adding all new points"
		}
		return decision{}, "Decision: failed to parse, no changes"
	}

	reasoning := dec.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	return dec, fmt.Sprintf("Decision: Add %d, Remove %d, Refine %d | %s",
		len(dec.Add), len(dec.Remove), len(dec.Refine), reasoning)
}

// applyDecision enforces the domain invariants locally regardless of what
// the model proposed.
func applyDecision(d Domain, current []string, dec decision, scores map[string]float64) []string {
	final := make([]string, 0, len(current)+len(dec.Add))
	final = append(final, current...)

	// Removes skip protected items silently.
	for _, item := range dec.Remove {
		item = strings.TrimSpace(item)
		if d.IsProtected(item) {
			continue
		}
		final = removeItem(final, item)
	}

	// Refinements rewrite in place, preserving position.
	if d.SupportsRefine {
		for old, refined := range dec.Refine {
			refined = strings.TrimSpace(refined)
			if refined == "" {
				continue
			}
			for i, item := range final {
				if item == old {
					final[i] = refined
					break
				}
			}
		}
	}

	// Adds are deduplicated. Keep-recent domains accept adds at capacity
	// and let truncation forget the oldest; the rest only accept adds
	// below the upper bound.
	for _, item := range dec.Add {
		item = strings.TrimSpace(item)
		if item == "" || contains(final, item) {
			continue
		}
		if len(final) >= d.Hi && d.Truncation != TruncateKeepRecent {
			continue
		}
		final = append(final, item)
	}

	if len(final) > d.Hi {
		final = truncate(d, final, scores)
	}
	return final
}

func truncate(d Domain, items []string, scores map[string]float64) []string {
	switch d.Truncation {
	case TruncateFirstN:
		return items[:d.Hi]

	case TruncateKeepRecent:
		return items[len(items)-d.Hi:]

	case TruncateByScore:
		// Stable sort keeps current order among ties; unscored items
		// count as 5.
		sorted := make([]string, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(i, j int) bool {
			return scoreOf(scores, sorted[i]) > scoreOf(scores, sorted[j])
		})
		return sorted[:d.Hi]

	case TruncateKeepCore:
		kept := make([]string, 0, d.Hi)
		for _, item := range items {
			if d.IsProtected(item) {
				kept = append(kept, item)
			}
		}
		nonCore := make([]string, 0, len(items))
		for _, item := range items {
			if !d.IsProtected(item) {
				nonCore = append(nonCore, item)
			}
		}
		sort.SliceStable(nonCore, func(i, j int) bool {
			return scores[nonCore[i]] > scores[nonCore[j]]
		})
		room := d.Hi - len(kept)
		if room > len(nonCore) {
			room = len(nonCore)
		}
		return append(kept, nonCore[:room]...)
	}
	return items[:d.Hi]
}

func scoreOf(scores map[string]float64, item string) float64 {
	if s, ok := scores[item]; ok {
		return s
	}
	return 5
}

func removeItem(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
