package writer

import (
	"strings"
	"testing"
)

func TestCleanStoryFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "broken words rejoined",
			in:   "She knew th at th is was wh ere it ended.",
			want: "She knew that this was where it ended.",
		},
		{
			name: "em dash fused words",
			in:   "Nothing mor—e th—an a whisper.",
			want: "Nothing more than a whisper.",
		},
		{
			name: "possessive repair",
			in:   "Elaras processor hummed while the machines voice wavered.",
			want: "Elara's processor hummed while the machine's voice wavered.",
		},
		{
			name: "double spaces collapsed",
			in:   "One  sentence.   Another.",
			want: "One sentence. Another.",
		},
		{
			name: "sentence spacing inserted",
			in:   "It ended.Then it began.",
			want: "It ended. Then it began.",
		},
		{
			name: "excess blank lines collapse to paragraph break",
			in:   "First paragraph.\n\n\n\nSecond paragraph.",
			want: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \nA story.\n ",
			want: "A story.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanStoryFormatting(tt.in); got != tt.want {
				t.Errorf("CleanStoryFormatting(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanStoryFormattingIdempotent(t *testing.T) {
	in := "Elaras processor flickered.Her companions voice was steady."
	once := CleanStoryFormatting(in)
	twice := CleanStoryFormatting(once)
	if once != twice {
		t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
	if !strings.Contains(once, "Elara's processor") {
		t.Errorf("possessive not repaired: %q", once)
	}
}

func TestCleanStoryFormattingPreservesParagraphs(t *testing.T) {
	in := "Paragraph one.\n\nParagraph two.\n\nParagraph three."
	got := CleanStoryFormatting(in)
	if strings.Count(got, "\n\n") != 2 {
		t.Errorf("paragraph breaks not preserved: %q", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AI consciousness", "ai_consciousness"},
		{"Deep-time gardens", "deep_time_gardens"},
		{"What is memory?", "what_is_memory"},
		{"Octopus minds & other wonders", "octopus_minds__other_wonders"},
		{strings.Repeat("long topic ", 20), strings.Repeat("long_topic_", 20)[:50]},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	// 100 words estimate to 75 tokens.
	text := strings.TrimSpace(strings.Repeat("word ", 100))
	if got := EstimateTokens(text); got != 75 {
		t.Errorf("EstimateTokens = %d, want 75", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", got)
	}
}
