package navigation

import (
	"fmt"

	"github.com/p-n-ai/pai-course/internal/course"
)

// EventKind enumerates learner actions that move between views.
type EventKind int

const (
	// EventAdvance moves forward from the current view once it is completed.
	EventAdvance EventKind = iota
	// EventJump selects a view directly from the sidebar.
	EventJump
	// EventReset discards the course and returns to the cover.
	EventReset
)

// Event is a learner action. Target is only read for EventJump.
type Event struct {
	Kind   EventKind
	Target View
}

// Step is the outcome of a transition: the destination view and, when
// NeedsGeneration is set, the unit to generate before the view is entered.
type Step struct {
	To              View
	Unit            course.Unit
	NeedsGeneration bool
}

// Apply resolves an event against the current view and course.
func Apply(from View, ev Event, c course.Course) (Step, error) {
	var (
		to  View
		err error
	)
	switch ev.Kind {
	case EventAdvance:
		to, err = Next(from, c)
	case EventJump:
		to, err = Jump(ev.Target, c)
	case EventReset:
		return Step{To: Cover()}, nil
	default:
		return Step{}, fmt.Errorf("%w: unknown event %d", ErrInvalidTransition, int(ev.Kind))
	}
	if err != nil {
		return Step{}, err
	}
	u, needs := Required(to, c)
	return Step{To: to, Unit: u, NeedsGeneration: needs}, nil
}

// Next returns the destination reached by moving forward from v:
//
//	cover                    -> section content (0,0)
//	section content (c,s)    -> section quiz (c,s)
//	section quiz (c,s)       -> section content (c,s+1), or chapter quiz (c) after the last section
//	chapter quiz (c)         -> section content (c+1,0), or summary after the last chapter
//	summary                  -> resources
//
// Resources is terminal. Quiz views are only left forward once passed; that
// check belongs to the caller, which owns the attempt.
func Next(v View, c course.Course) (View, error) {
	if err := Check(v, c); err != nil {
		return View{}, err
	}
	switch v.Kind {
	case KindCover:
		if len(c.Chapters) == 0 || len(c.Chapters[0].Sections) == 0 {
			return View{}, fmt.Errorf("%w: course has no sections", ErrInvalidTransition)
		}
		return Start(), nil
	case KindSectionContent:
		return SectionQuiz(v.Chapter, v.Section), nil
	case KindSectionQuiz:
		if v.Section+1 < len(c.Chapters[v.Chapter].Sections) {
			return SectionContent(v.Chapter, v.Section+1), nil
		}
		return ChapterQuiz(v.Chapter), nil
	case KindChapterQuiz:
		if v.Chapter+1 < len(c.Chapters) {
			return SectionContent(v.Chapter+1, 0), nil
		}
		return Summary(), nil
	case KindSummary:
		return Resources(), nil
	case KindResources:
		return View{}, fmt.Errorf("%w: resources is the last view", ErrInvalidTransition)
	}
	return View{}, fmt.Errorf("%w: from %s", ErrInvalidTransition, v)
}

// Jump validates a sidebar selection. Section content, chapter quizzes, the
// summary and resources can be selected at any time; section quizzes are only
// reached from their section and the cover only through a reset.
func Jump(target View, c course.Course) (View, error) {
	switch target.Kind {
	case KindSectionContent, KindChapterQuiz, KindSummary, KindResources:
	default:
		return View{}, fmt.Errorf("%w: cannot jump to %s", ErrInvalidTransition, target.Kind)
	}
	target = normalize(target)
	if err := Check(target, c); err != nil {
		return View{}, err
	}
	return target, nil
}
