package player

import (
	"github.com/p-n-ai/pai-course/internal/quiz"
)

// withAttempt runs fn on the open attempt while holding the operation slot.
func (p *Player) withAttempt(fn func(a *quiz.Attempt) error) (Snapshot, error) {
	return p.exclusive(func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.attempt == nil {
			return ErrNotQuiz
		}
		return fn(p.attempt)
	})
}

// SelectAnswer records option for question in the open attempt.
func (p *Player) SelectAnswer(question, option int) (Snapshot, error) {
	return p.withAttempt(func(a *quiz.Attempt) error {
		return a.Select(question, option)
	})
}

// SubmitQuiz grades the open attempt. When answers is non-nil it replaces
// the current selections first. Grading is refused while any question is
// unanswered.
func (p *Player) SubmitQuiz(answers []int) (quiz.Result, Snapshot, error) {
	var res quiz.Result
	snap, err := p.withAttempt(func(a *quiz.Attempt) error {
		if answers != nil {
			if err := a.Answer(answers); err != nil {
				return err
			}
		}
		var err error
		res, err = a.Submit()
		return err
	})
	return res, snap, err
}

// RetakeQuiz clears the open attempt.
func (p *Player) RetakeQuiz() (Snapshot, error) {
	return p.withAttempt(func(a *quiz.Attempt) error {
		a.Retake()
		return nil
	})
}
