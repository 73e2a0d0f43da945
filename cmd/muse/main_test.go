package main

import (
	"testing"
	"time"

	"muse/internal/config"
)

func TestBuildLLMClientRejectsUnknownProvider(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.LLM.Provider = "mystery"
	if _, err := buildLLMClient(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildLLMClientOpenAI(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	client, err := buildLLMClient()
	if err != nil {
		t.Fatalf("buildLLMClient returned error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client")
	}
}

func TestRunnerConfigFallsBackToConfigInterval(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Heartbeat.IntervalMinutes = 7
	heartbeatInterval = 0
	if got := runnerConfig().Interval; got != 7*time.Minute {
		t.Fatalf("expected 7m interval, got %s", got)
	}

	heartbeatInterval = time.Minute
	defer func() { heartbeatInterval = 0 }()
	if got := runnerConfig().Interval; got != time.Minute {
		t.Fatalf("flag should win, got %s", got)
	}
}
