package ai

import (
	"context"
	"fmt"
	"net/http"
)

// Provider kinds accepted by Settings.Provider.
const (
	KindGoogle    = "google"
	KindOpenAI    = "openai"
	KindDeepSeek  = "deepseek"
	KindAnthropic = "anthropic"
)

// Settings describes how a user credential is turned into a provider chain.
type Settings struct {
	Provider      string
	Model         string
	BaseURL       string
	FallbackURL   string
	FallbackModel string
	HTTPClient    *http.Client
	Budget        BudgetChecker
}

// NewProvider builds the provider of the configured kind for credential.
func (s Settings) NewProvider(ctx context.Context, credential string) (Provider, error) {
	switch s.Provider {
	case KindGoogle, "":
		opts := []GoogleOption{WithGoogleModel(s.Model)}
		if s.BaseURL != "" {
			opts = append(opts, WithGoogleBaseURL(s.BaseURL))
		}
		if s.HTTPClient != nil {
			opts = append(opts, WithGoogleHTTPClient(s.HTTPClient))
		}
		return NewGoogleProvider(ctx, credential, opts...)
	case KindOpenAI, KindDeepSeek:
		opts := []OpenAIOption{WithDefaultModel(s.Model)}
		if s.BaseURL != "" {
			opts = append(opts, WithBaseURL(s.BaseURL))
		}
		if s.HTTPClient != nil {
			opts = append(opts, WithHTTPClient(s.HTTPClient))
		}
		if s.Provider == KindDeepSeek {
			return NewDeepSeekProvider(credential, opts...), nil
		}
		return NewOpenAIProvider(credential, opts...), nil
	case KindAnthropic:
		opts := []AnthropicOption{WithAnthropicModel(s.Model)}
		if s.BaseURL != "" {
			opts = append(opts, WithAnthropicBaseURL(s.BaseURL))
		}
		if s.HTTPClient != nil {
			opts = append(opts, WithAnthropicHTTPClient(s.HTTPClient))
		}
		return NewAnthropicProvider(credential, opts...)
	}
	return nil, fmt.Errorf("unknown AI provider %q", s.Provider)
}

// Router builds the fallback chain for credential: the configured provider,
// then the keyless fallback when one is configured. Usage is charged to the
// credential's fingerprint.
func (s Settings) Router(ctx context.Context, credential string) (*Router, error) {
	primary, err := s.NewProvider(ctx, credential)
	if err != nil {
		return nil, err
	}
	router := NewRouter()
	router.Register(primary.Name(), primary)

	if s.FallbackURL != "" {
		opts := []OpenAIOption{
			WithBaseURL(s.FallbackURL),
			WithProviderName("fallback"),
			WithDefaultModel(s.FallbackModel),
		}
		if s.HTTPClient != nil {
			opts = append(opts, WithHTTPClient(s.HTTPClient))
		}
		router.Register("fallback", NewOpenAIProvider("", opts...))
	}

	if s.Budget != nil {
		router.WithBudget(s.Budget, CredentialKey(credential))
	}
	return router, nil
}
