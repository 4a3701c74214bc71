package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-course/internal/generator"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/player"
	"github.com/p-n-ai/pai-course/internal/quiz"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeNotConfigured        = "not_configured"
	CodeProviderError        = "provider_error"
	CodeIncompleteSubmission = "incomplete_submission"
	CodeBusy                 = "busy"
	CodeNoCourse             = "no_course"
	CodeInvalidTransition    = "invalid_transition"
	CodeQuizNotPassed        = "quiz_not_passed"
	CodeBadRequest           = "bad_request"
	CodeNotFound             = "not_found"
	CodeInternal             = "internal"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an operation error to a status code and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, generator.ErrNotConfigured):
		return http.StatusPreconditionFailed, CodeNotConfigured
	case errors.Is(err, generator.ErrProvider):
		return http.StatusBadGateway, CodeProviderError
	case errors.Is(err, quiz.ErrIncomplete):
		return http.StatusUnprocessableEntity, CodeIncompleteSubmission
	case errors.Is(err, player.ErrBusy):
		return http.StatusConflict, CodeBusy
	case errors.Is(err, player.ErrNoCourse):
		return http.StatusNotFound, CodeNoCourse
	case errors.Is(err, player.ErrQuizNotPassed):
		return http.StatusConflict, CodeQuizNotPassed
	case errors.Is(err, navigation.ErrInvalidTransition),
		errors.Is(err, player.ErrNotQuiz),
		errors.Is(err, quiz.ErrAlreadyGraded),
		errors.Is(err, quiz.ErrNotGraded):
		return http.StatusConflict, CodeInvalidTransition
	case errors.Is(err, player.ErrBadInput),
		errors.Is(err, navigation.ErrOutOfRange),
		errors.Is(err, quiz.ErrOutOfRange):
		return http.StatusBadRequest, CodeBadRequest
	}
	return http.StatusInternalServerError, CodeInternal
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
