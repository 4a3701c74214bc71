package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GoogleProvider implements Provider for Google Gemini through the genai SDK.
type GoogleProvider struct {
	client       *genai.Client
	defaultModel string
}

type googleOptions struct {
	baseURL    string
	httpClient *http.Client
	model      string
}

// GoogleOption configures a GoogleProvider.
type GoogleOption func(*googleOptions)

// WithGoogleBaseURL sets the base URL (for testing).
func WithGoogleBaseURL(url string) GoogleOption {
	return func(o *googleOptions) {
		o.baseURL = url
	}
}

// WithGoogleHTTPClient sets a custom HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(o *googleOptions) {
		o.httpClient = client
	}
}

// WithGoogleModel sets the model used when a request names none.
func WithGoogleModel(model string) GoogleOption {
	return func(o *googleOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// NewGoogleProvider creates a Gemini provider bound to one API key.
func NewGoogleProvider(ctx context.Context, apiKey string, opts ...GoogleOption) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	o := googleOptions{model: "gemini-2.5-flash"}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GoogleProvider{client: client, defaultModel: o.model}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	system, rest := splitSystem(req.Messages)
	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		// Gemini uses "user" and "model" roles.
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return CompletionResponse{}, &APIError{Provider: "google", StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return CompletionResponse{}, fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return CompletionResponse{}, fmt.Errorf("no content in response")
	}

	resp := CompletionResponse{Content: text, Model: model}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if usage := result.UsageMetadata; usage != nil {
		resp.InputTokens = int(usage.PromptTokenCount)
		resp.OutputTokens = int(usage.CandidatesTokenCount)
	}
	return resp, nil
}
