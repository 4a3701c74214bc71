package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSettings_NewProvider(t *testing.T) {
	tests := []struct {
		kind     string
		wantName string
		wantErr  bool
	}{
		{"", "google", false},
		{KindGoogle, "google", false},
		{KindOpenAI, "openai", false},
		{KindDeepSeek, "deepseek", false},
		{KindAnthropic, "anthropic", false},
		{"watson", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, err := Settings{Provider: tt.kind}.NewProvider(t.Context(), "key")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestSettings_Router_FallsBackToKeylessProvider(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiReply("from fallback", "llama3"))
	}))
	defer fallback.Close()

	budget := NewInMemoryBudget(0)
	s := Settings{
		Provider:      KindOpenAI,
		BaseURL:       primary.URL,
		FallbackURL:   fallback.URL,
		FallbackModel: "llama3",
		Budget:        budget,
	}
	router, err := s.Router(t.Context(), "sk-user")
	if err != nil {
		t.Fatalf("Router() error = %v", err)
	}
	if got := router.Providers(); len(got) != 2 || got[0] != "openai" || got[1] != "fallback" {
		t.Fatalf("Providers() = %v", got)
	}

	resp, err := router.Complete(t.Context(), CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "from fallback" {
		t.Errorf("Content = %q", resp.Content)
	}
	used, _, _ := budget.Usage(t.Context(), CredentialKey("sk-user"))
	if used != 15 {
		t.Errorf("used = %d, want 15", used)
	}
}
