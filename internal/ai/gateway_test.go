package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-course/internal/ai"
)

func TestMockProvider_Complete(t *testing.T) {
	mock := ai.NewMockProvider("test response")

	resp, err := mock.Complete(context.Background(), ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "user", Content: "Hello"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("Content = %q, want %q", resp.Content, "test response")
	}
	if resp.Model != "mock" {
		t.Errorf("Model = %q, want %q", resp.Model, "mock")
	}
}

func TestMockProvider_Respond(t *testing.T) {
	mock := &ai.MockProvider{
		Respond: func(req ai.CompletionRequest) (string, error) {
			if req.Task == ai.TaskQuiz {
				return "", errors.New("quiz down")
			}
			return req.Task.String(), nil
		},
	}

	resp, err := mock.Complete(t.Context(), ai.CompletionRequest{Task: ai.TaskSummary})
	if err != nil || resp.Content != "summary" {
		t.Errorf("Complete(summary) = %q, %v", resp.Content, err)
	}
	if _, err := mock.Complete(t.Context(), ai.CompletionRequest{Task: ai.TaskQuiz}); err == nil {
		t.Error("Complete(quiz) should fail")
	}
	if got := len(mock.Requests()); got != 2 {
		t.Errorf("len(Requests()) = %d, want 2", got)
	}
}

func TestTaskType_String(t *testing.T) {
	tests := []struct {
		task     ai.TaskType
		expected string
	}{
		{ai.TaskStructure, "structure"},
		{ai.TaskContent, "content"},
		{ai.TaskQuiz, "quiz"},
		{ai.TaskSummary, "summary"},
		{ai.TaskResources, "resources"},
	}
	for _, tt := range tests {
		if tt.task.String() != tt.expected {
			t.Errorf("TaskType.String() = %q, want %q", tt.task.String(), tt.expected)
		}
	}
}

func TestCompletionResponse_TotalTokens(t *testing.T) {
	resp := ai.CompletionResponse{InputTokens: 100, OutputTokens: 50}
	if got := resp.TotalTokens(); got != 150 {
		t.Errorf("TotalTokens() = %d, want 150", got)
	}
}
