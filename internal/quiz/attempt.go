package quiz

import (
	"fmt"
	"slices"

	"github.com/p-n-ai/pai-course/internal/course"
)

// Attempt tracks one learner pass through a question set. Answers are
// frozen once graded; a failed attempt has to be retaken from scratch.
// An Attempt is not safe for concurrent use.
type Attempt struct {
	questions []course.QuizQuestion
	answers   []int
	result    *Result
}

// NewAttempt starts an attempt with every question unanswered.
func NewAttempt(questions []course.QuizQuestion) *Attempt {
	a := &Attempt{questions: questions}
	a.clear()
	return a
}

func (a *Attempt) clear() {
	a.answers = make([]int, len(a.questions))
	for i := range a.answers {
		a.answers[i] = Unanswered
	}
	a.result = nil
}

// Select picks an option for one question.
func (a *Attempt) Select(question, option int) error {
	if a.result != nil {
		return ErrAlreadyGraded
	}
	if question < 0 || question >= len(a.questions) {
		return fmt.Errorf("select answer: %w: question %d", ErrOutOfRange, question)
	}
	if option < 0 || option >= len(a.questions[question].Options) {
		return fmt.Errorf("select answer: %w: option %d", ErrOutOfRange, option)
	}
	a.answers[question] = option
	return nil
}

// Answer replaces the whole answer set.
func (a *Attempt) Answer(answers []int) error {
	if a.result != nil {
		return ErrAlreadyGraded
	}
	if len(answers) != len(a.questions) {
		return fmt.Errorf("answer quiz: %w: got %d answers for %d questions", ErrIncomplete, len(answers), len(a.questions))
	}
	for i, opt := range answers {
		if opt == Unanswered {
			continue
		}
		if opt < 0 || opt >= len(a.questions[i].Options) {
			return fmt.Errorf("answer quiz: %w: question %d option %d", ErrOutOfRange, i+1, opt)
		}
	}
	a.answers = slices.Clone(answers)
	return nil
}

// Answers returns a copy of the current selections.
func (a *Attempt) Answers() []int { return slices.Clone(a.answers) }

// Submit grades the attempt. It fails with ErrIncomplete while any question
// is unanswered, leaving the attempt open.
func (a *Attempt) Submit() (Result, error) {
	if a.result != nil {
		return Result{}, ErrAlreadyGraded
	}
	res, err := Grade(a.questions, a.answers)
	if err != nil {
		return Result{}, err
	}
	a.result = &res
	return res, nil
}

// Retake clears every answer and the previous grade.
func (a *Attempt) Retake() { a.clear() }

// Graded reports whether Submit has succeeded.
func (a *Attempt) Graded() bool { return a.result != nil }

// Passed reports whether the attempt was graded and met the threshold.
func (a *Attempt) Passed() bool { return a.result != nil && a.result.Passed }

// Result returns the grade of a submitted attempt.
func (a *Attempt) Result() (Result, error) {
	if a.result == nil {
		return Result{}, ErrNotGraded
	}
	return *a.result, nil
}
