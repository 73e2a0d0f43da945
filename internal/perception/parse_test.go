package perception

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"bare array", `["x", "y"]`, `["x", "y"]`},
		{"markdown fenced", "Here you go:\n```json\n{\"a\": 1}\n```\nHope that helps!", `{"a": 1}`},
		{"prose prefix", `Sure! The answer is ["one", "two"] as requested.`, `["one", "two"]`},
		{"nested braces", `{"outer": {"inner": [1, 2]}}`, `{"outer": {"inner": [1, 2]}}`},
		{"braces inside strings", `{"msg": "use } carefully"}`, `{"msg": "use } carefully"}`},
		{"escaped quotes", `{"msg": "she said \"hi\""}`, `{"msg": "she said \"hi\""}`},
		{"no json at all", "I cannot answer that.", "{}"},
		{"unterminated", `{"a": 1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"valid", `["Tender curiosity", "Existential wonder"]`, []string{"Tender curiosity", "Existential wonder"}},
		{"fenced", "```json\n[\"a\"]\n```", []string{"a"}},
		{"object not array", `{"a": 1}`, nil},
		{"garbage", "no json here", nil},
		{"empty input", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeStringList(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeStringList mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeScoreMap(t *testing.T) {
	got := DecodeScoreMap(`{"Wonder and curiosity": 10, "Bittersweet joy": 6}`)
	if got["Wonder and curiosity"] != 10 || got["Bittersweet joy"] != 6 {
		t.Errorf("DecodeScoreMap = %v", got)
	}

	// Malformed responses degrade to an empty, non-nil map.
	got = DecodeScoreMap("the scores are fine")
	if got == nil || len(got) != 0 {
		t.Errorf("DecodeScoreMap(garbage) = %v, want empty map", got)
	}

	got = DecodeScoreMap(`["not", "a", "map"]`)
	if len(got) != 0 {
		t.Errorf("DecodeScoreMap(array) = %v, want empty map", got)
	}
}
