package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-course/internal/ai"
	"github.com/p-n-ai/pai-course/internal/platform/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantDebug bool
		wantInfo  bool
	}{
		{"default info", config.LogConfig{Level: "info", Format: "json"}, false, true},
		{"debug text", config.LogConfig{Level: "debug", Format: "text"}, true, true},
		{"warn", config.LogConfig{Level: "WARN", Format: "json"}, false, false},
		{"invalid level falls back to info", config.LogConfig{Level: "loud"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(tt.cfg)
			ctx := context.Background()
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("info enabled = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestOpenStore_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreMemory, Namespace: "test", Secret: "s3cret"}}

	st, conns, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer conns.Close()

	if err := st.SaveCredential(ctx, "api-key"); err != nil {
		t.Fatalf("SaveCredential() error = %v", err)
	}
	got, err := st.LoadCredential(ctx)
	if err != nil {
		t.Fatalf("LoadCredential() error = %v", err)
	}
	if got != "api-key" {
		t.Errorf("LoadCredential() = %q, want api-key", got)
	}
	if err := st.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestNewBudget(t *testing.T) {
	cfg := &config.Config{}
	if b := newBudget(cfg, backends{}); b != nil {
		t.Errorf("newBudget() without limit = %T, want nil", b)
	}

	cfg.AI.TokenBudget = 1000
	if _, ok := newBudget(cfg, backends{}).(*ai.InMemoryBudget); !ok {
		t.Error("newBudget() without cache should be in-memory")
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := &config.Config{
		AI:      config.AIConfig{Provider: "openai", TimeoutSeconds: 5},
		Content: config.ContentConfig{Language: "English", ImageBaseURL: "https://images.example/prompt"},
	}
	if _, err := newGenerator(cfg, nil); err != nil {
		t.Fatalf("newGenerator() error = %v", err)
	}

	cfg.Content.PromptsPath = filepath.Join(t.TempDir(), "missing")
	if _, err := newGenerator(cfg, nil); err == nil {
		t.Error("newGenerator() with a missing prompts directory should fail")
	}
}
