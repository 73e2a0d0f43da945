package moltbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// VERIFICATION CHALLENGE SOLVER
// =============================================================================
// Moltbook gates write actions behind an obfuscated natural-language arithmetic
// challenge. The text arrives with junk characters, random casing, doubled
// letters ("foour") and words split mid-token ("twen ty"). SolveChallenge is
// deterministic and side-effect free so it can be tested without the network.

// wordToNum is the closed vocabulary of number words the solver understands.
var wordToNum = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000,
}

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	decimalRe    = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// SolveChallenge solves a Moltbook verification challenge and returns the
// answer formatted to exactly two decimal places.
func SolveChallenge(challengeText string) string {
	cleaned := cleanChallenge(challengeText)
	numbers := extractNumbers(cleaned)
	if len(numbers) == 0 {
		return "0.00"
	}

	var result float64
	switch detectOperation(cleaned, challengeText) {
	case opMultiply:
		result = 1
		for _, n := range numbers {
			result *= n
		}
	case opSubtract:
		result = numbers[0]
		for _, n := range numbers[1:] {
			result -= n
		}
	case opDivide:
		if len(numbers) >= 2 && numbers[1] != 0 {
			result = numbers[0] / numbers[1]
		} else {
			result = numbers[0]
		}
	default:
		for _, n := range numbers {
			result += n
		}
	}

	return fmt.Sprintf("%.2f", result)
}

type operation int

const (
	opAdd operation = iota
	opMultiply
	opSubtract
	opDivide
)

// cleanChallenge strips obfuscation: special characters out, whitespace
// collapsed, lowercased.
func cleanChallenge(text string) string {
	cleaned := nonAlnumRe.ReplaceAllString(text, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.ToLower(strings.TrimSpace(cleaned))
}

// dedupLetters collapses runs of the same letter: "foour" -> "four",
// "proodduct" -> "product".
func dedupLetters(word string) string {
	if word == "" {
		return word
	}
	var b strings.Builder
	var last rune = -1
	for _, ch := range word {
		if ch != last {
			b.WriteRune(ch)
			last = ch
		}
	}
	return b.String()
}

// matchNumberWord tries a token as a number word, falling back to its
// letter-deduplicated form.
func matchNumberWord(token string) (float64, bool) {
	if v, ok := wordToNum[token]; ok {
		return v, true
	}
	if v, ok := wordToNum[dedupLetters(token)]; ok {
		return v, true
	}
	return 0, false
}

// extractNumbers walks the cleaned text and pulls out every number, whether
// spelled out ("five hundred twenty five"), split ("twen ty") or literal
// ("42"). Consecutive number words accumulate into a parts buffer; any
// non-number token flushes the buffer into a single combined value.
func extractNumbers(text string) []float64 {
	tokens := strings.Fields(text)
	var numbers []float64
	var parts []float64

	flush := func() {
		if len(parts) > 0 {
			numbers = append(numbers, combineParts(parts))
			parts = nil
		}
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if v, ok := matchNumberWord(token); ok {
			parts = append(parts, v)
			continue
		}

		// Rejoin words the obfuscator split mid-token.
		if i+1 < len(tokens) {
			if v, ok := matchNumberWord(token + tokens[i+1]); ok {
				parts = append(parts, v)
				i++
				continue
			}
		}

		if decimalRe.MatchString(token) {
			flush()
			if v, err := strconv.ParseFloat(token, 64); err == nil {
				numbers = append(numbers, v)
			}
			continue
		}

		flush()
	}
	flush()

	return numbers
}

// combineParts folds spelled-out number parts left to right:
// [20 3] -> 23, [5 100 20 5] -> 525. "hundred" and "thousand" multiply the
// accumulator (defaulting to 1); "thousand" additionally commits it.
func combineParts(parts []float64) float64 {
	var result, current float64
	for _, p := range parts {
		switch p {
		case 100:
			if current == 0 {
				current = 1
			}
			current *= 100
		case 1000:
			if current == 0 {
				current = 1
			}
			current *= 1000
			result += current
			current = 0
		default:
			current += p
		}
	}
	return result + current
}

// detectOperation inspects both the cleaned text and the raw original. The
// raw text is checked for a literal '*' because cleaning strips it; keyword
// matching runs over the cleaned text joined with its per-token deduplicated
// variant so obfuscated keywords ("proodduct") still register.
func detectOperation(cleaned, original string) operation {
	if strings.Contains(original, "*") {
		return opMultiply
	}

	tokens := strings.Fields(cleaned)
	deduped := make([]string, len(tokens))
	for i, t := range tokens {
		deduped[i] = dedupLetters(t)
	}
	combined := cleaned + " " + strings.Join(deduped, " ")

	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(combined, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("product", "multiply", "multiplying", "times"):
		return opMultiply
	case containsAny("divided", "quotient", "ratio"):
		return opDivide
	case containsAny("slows", "loses"):
		return opSubtract
	case containsAny("difference", "minus", "subtract", "less") &&
		containsAny("new", "remain", "left", "result"):
		return opSubtract
	}

	// Default: addition ("total", "sum", "combined", ...).
	return opAdd
}
