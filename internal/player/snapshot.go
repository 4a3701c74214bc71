package player

import (
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/quiz"
)

// QuizState is the open attempt as shown to the learner.
type QuizState struct {
	Answers []int        `json:"answers"`
	Graded  bool         `json:"graded"`
	Result  *quiz.Result `json:"result,omitempty"`
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	Configured bool            `json:"configured"`
	Busy       bool            `json:"busy"`
	View       navigation.View `json:"view"`
	Progress   int             `json:"progress"`
	Completed  int             `json:"completed"`
	Total      int             `json:"total"`
	Course     *course.Course  `json:"course,omitempty"`
	Quiz       *QuizState      `json:"quiz,omitempty"`
}

// Snapshot returns the current session state. The course it carries shares
// storage with the player's and must not be modified.
func (p *Player) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Configured: p.credential != "",
		Busy:       p.busy.Load(),
		View:       p.view,
	}
	if p.course != nil {
		c := *p.course
		s.Course = &c
		s.Progress = course.Progress(c)
		s.Completed = course.Completed(c)
		s.Total = course.TotalUnits(c)
	}
	if p.attempt != nil {
		qs := &QuizState{Answers: p.attempt.Answers(), Graded: p.attempt.Graded()}
		if res, err := p.attempt.Result(); err == nil {
			qs.Result = &res
		}
		s.Quiz = qs
	}
	return s
}

// Course returns the current course, if any.
func (p *Player) Course() (course.Course, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.course == nil {
		return course.Course{}, false
	}
	return *p.course, true
}
