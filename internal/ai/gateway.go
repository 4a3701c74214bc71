// Package ai provides a provider-agnostic completion gateway used by the
// course generator.
package ai

import (
	"context"
	"errors"
)

// ErrBudgetExceeded is returned when a credential has used up its token budget.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// TaskType identifies which course artefact a request produces. It is used
// for logging and per-task tuning.
type TaskType int

const (
	TaskStructure TaskType = iota
	TaskContent
	TaskQuiz
	TaskSummary
	TaskResources
)

func (t TaskType) String() string {
	switch t {
	case TaskStructure:
		return "structure"
	case TaskContent:
		return "content"
	case TaskQuiz:
		return "quiz"
	case TaskSummary:
		return "summary"
	case TaskResources:
		return "resources"
	default:
		return "unknown"
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
	// JSON asks the provider for a single JSON object as the whole reply.
	JSON bool `json:"json,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Completer is satisfied by a Provider and by a Router.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
