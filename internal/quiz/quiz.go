// Package quiz grades learner answers against a generated question set.
package quiz

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-course/internal/course"
)

// Unanswered marks a question with no selected option.
const Unanswered = -1

var (
	ErrIncomplete    = errors.New("quiz has unanswered questions")
	ErrAlreadyGraded = errors.New("quiz attempt already graded")
	ErrNotGraded     = errors.New("quiz attempt not graded")
	ErrEmpty         = errors.New("quiz has no questions")
	ErrOutOfRange    = errors.New("answer out of range")
)

// Feedback is revealed per question after grading.
type Feedback struct {
	QuestionID  int    `json:"questionId"`
	Selected    int    `json:"selected"`
	Correct     int    `json:"correct"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// Result is a graded attempt.
type Result struct {
	Score    int        `json:"score"`
	Total    int        `json:"total"`
	Passed   bool       `json:"passed"`
	Feedback []Feedback `json:"feedback"`
}

// Passes applies the 60% threshold: score >= total * 0.6, compared exactly
// in integers.
func Passes(score, total int) bool {
	return total > 0 && score*5 >= total*3
}

// Grade scores answers against questions. answers[i] is the option picked for
// questions[i]; every question must be answered.
func Grade(questions []course.QuizQuestion, answers []int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrEmpty
	}
	if len(answers) != len(questions) {
		return Result{}, fmt.Errorf("%w: got %d answers for %d questions", ErrIncomplete, len(answers), len(questions))
	}
	for i, a := range answers {
		if a == Unanswered {
			return Result{}, fmt.Errorf("%w: question %d", ErrIncomplete, i+1)
		}
		if a < 0 || a >= len(questions[i].Options) {
			return Result{}, fmt.Errorf("grade quiz: %w: question %d option %d", ErrOutOfRange, i+1, a)
		}
	}

	res := Result{Total: len(questions), Feedback: make([]Feedback, len(questions))}
	for i, q := range questions {
		ok := answers[i] == q.CorrectAnswer
		if ok {
			res.Score++
		}
		res.Feedback[i] = Feedback{
			QuestionID:  q.ID,
			Selected:    answers[i],
			Correct:     q.CorrectAnswer,
			IsCorrect:   ok,
			Explanation: q.Explanation,
		}
	}
	res.Passed = Passes(res.Score, res.Total)
	return res, nil
}
