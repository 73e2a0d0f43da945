package writer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"muse/internal/perception"
)

type stubSkills struct {
	byName map[string]string
	used   []string
}

func (s *stubSkills) Use(name string) (string, error) {
	s.used = append(s.used, name)
	if content, ok := s.byName[name]; ok {
		return content, nil
	}
	return "", errors.New("skill not found")
}

func stageLLM(t *testing.T) *perception.MockLLMClient {
	t.Helper()
	return &perception.MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, system, user string) (string, error) {
			switch {
			case strings.Contains(system, "story outliner"):
				return "A lighthouse keeper teaches an AI to grieve. The AI learns by tending the lamp.", nil
			case strings.Contains(system, "fiction writer"):
				return "The lamp turned.\n\nMira watched the AI learn the rhythm of loss.\n\nBy morning it understood.", nil
			case strings.Contains(system, "expert editor"):
				return "The lamp turned th at night.\n\nMira watched.  By morning it understood.", nil
			}
			return "", errors.New("unexpected stage")
		},
	}
}

func TestPipelineWrite(t *testing.T) {
	dir := t.TempDir()
	p := NewPipeline(stageLLM(t), nil, dir)

	ts := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)
	story, err := p.Write(context.Background(), Inputs{
		Topic:     "AI grief",
		Emotions:  "Melancholy hope",
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if story.Outline == "" || story.Draft == "" {
		t.Error("intermediate stages empty")
	}

	// The refined text passes through formatting repair.
	if strings.Contains(story.Refined, "th at") {
		t.Errorf("broken word survived refine: %q", story.Refined)
	}
	if strings.Contains(story.Refined, "  ") {
		t.Errorf("double space survived refine: %q", story.Refined)
	}

	wantPath := filepath.Join(dir, "stories", "2026-08-29_14-30-05_ai_grief.txt")
	if story.Path != wantPath {
		t.Errorf("path = %q, want %q", story.Path, wantPath)
	}
	data, err := os.ReadFile(story.Path)
	if err != nil {
		t.Fatalf("story file not written: %v", err)
	}
	if string(data) != story.Refined {
		t.Error("persisted content differs from refined story")
	}
	if len(story.Trail) != 4 {
		t.Errorf("trail has %d entries, want 4 (outline, draft, refine, save): %v",
			len(story.Trail), story.Trail)
	}
}

func TestPipelineConsultsSkills(t *testing.T) {
	skills := &stubSkills{byName: map[string]string{
		"narrative_structure": "Open on the image, close on the echo.",
	}}

	var outlineSystem string
	llm := &perception.MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(system, "story outliner") {
				outlineSystem = system
			}
			return "stage output", nil
		},
	}

	p := NewPipeline(llm, skills, t.TempDir())
	if _, err := p.Write(context.Background(), Inputs{Topic: "tides"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !strings.Contains(outlineSystem, "Open on the image, close on the echo.") {
		t.Error("outline stage did not receive skill guidance")
	}
	// A missing skill is non-fatal; the draft stage asked for one that
	// does not exist and the pipeline still completed.
	if len(skills.used) < 2 {
		t.Errorf("expected both stages to consult skills, used: %v", skills.used)
	}
}

func TestPipelineRequiresTopic(t *testing.T) {
	p := NewPipeline(&perception.MockLLMClient{}, nil, t.TempDir())
	if _, err := p.Write(context.Background(), Inputs{}); err == nil {
		t.Error("expected error for missing topic")
	}
}

func TestPipelineStageFailureAborts(t *testing.T) {
	llm := &perception.MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(system, "fiction writer") {
				return "", errors.New("model unavailable")
			}
			return "outline text", nil
		},
	}

	dir := t.TempDir()
	p := NewPipeline(llm, nil, dir)
	_, err := p.Write(context.Background(), Inputs{Topic: "tides"})
	if err == nil {
		t.Fatal("expected draft failure to abort")
	}
	if !strings.Contains(err.Error(), "draft stage failed") {
		t.Errorf("unexpected error: %v", err)
	}

	// No partial story file should exist.
	if _, statErr := os.Stat(filepath.Join(dir, "stories")); !os.IsNotExist(statErr) {
		t.Error("stories dir created despite aborted pipeline")
	}
}
