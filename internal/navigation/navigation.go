// Package navigation is the pure half of the course player's state machine.
//
// A View names the screen the learner is on. Transitions are pure functions of
// (view, event, course) that return the destination plus, when the destination
// has not been generated yet, the unit that must be generated before the view
// can be entered. Performing that generation is the caller's job.
package navigation

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-course/internal/course"
)

var (
	// ErrInvalidTransition is returned when an event is not allowed from the current view.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrOutOfRange is returned when a view points outside the course shape.
	ErrOutOfRange = errors.New("view out of range")
)

// Kind tags a View.
type Kind int

const (
	KindCover Kind = iota
	KindSectionContent
	KindSectionQuiz
	KindChapterQuiz
	KindSummary
	KindResources
)

var kindNames = map[Kind]string{
	KindCover:          "cover",
	KindSectionContent: "section-content",
	KindSectionQuiz:    "section-quiz",
	KindChapterQuiz:    "chapter-quiz",
	KindSummary:        "summary",
	KindResources:      "resources",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown view kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind resolves a kind from its name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown view kind %q", name)
}

// View is the active screen. Chapter and Section are zero-based indices and
// only carry meaning for the kinds that use them.
type View struct {
	Kind    Kind `json:"kind"`
	Chapter int  `json:"chapter"`
	Section int  `json:"section"`
}

// Cover is the input screen shown before a course exists.
func Cover() View { return View{Kind: KindCover} }

// SectionContent is the reading view of a section.
func SectionContent(ci, si int) View {
	return View{Kind: KindSectionContent, Chapter: ci, Section: si}
}

// SectionQuiz is the quiz view of a section.
func SectionQuiz(ci, si int) View {
	return View{Kind: KindSectionQuiz, Chapter: ci, Section: si}
}

// ChapterQuiz is the exam view of a chapter.
func ChapterQuiz(ci int) View { return View{Kind: KindChapterQuiz, Chapter: ci} }

// Summary is the closing summary view.
func Summary() View { return View{Kind: KindSummary} }

// Resources is the terminal view.
func Resources() View { return View{Kind: KindResources} }

// Start is the view a fresh or resumed course opens on.
func Start() View { return SectionContent(0, 0) }

// IsQuiz reports whether v must be passed before moving on.
func (v View) IsQuiz() bool {
	return v.Kind == KindSectionQuiz || v.Kind == KindChapterQuiz
}

func (v View) String() string {
	switch v.Kind {
	case KindSectionContent, KindSectionQuiz:
		return fmt.Sprintf("%s(%d,%d)", v.Kind, v.Chapter, v.Section)
	case KindChapterQuiz:
		return fmt.Sprintf("%s(%d)", v.Kind, v.Chapter)
	default:
		return v.Kind.String()
	}
}

// normalize zeroes the indices a kind does not use.
func normalize(v View) View {
	switch v.Kind {
	case KindSectionContent, KindSectionQuiz:
		return v
	case KindChapterQuiz:
		return View{Kind: v.Kind, Chapter: v.Chapter}
	default:
		return View{Kind: v.Kind}
	}
}

// Check verifies that v addresses something that exists in c.
func Check(v View, c course.Course) error {
	switch v.Kind {
	case KindCover, KindSummary, KindResources:
		return nil
	case KindSectionContent, KindSectionQuiz:
		if _, err := c.Section(v.Chapter, v.Section); err != nil {
			return fmt.Errorf("%w: %s", ErrOutOfRange, v)
		}
		return nil
	case KindChapterQuiz:
		if _, err := c.Chapter(v.Chapter); err != nil {
			return fmt.Errorf("%w: %s", ErrOutOfRange, v)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown view kind %d", ErrInvalidTransition, int(v.Kind))
}

// Unit returns the completeness unit that backs v. The cover has none.
func Unit(v View, c course.Course) (course.Unit, bool) {
	switch v.Kind {
	case KindSectionContent:
		return course.SectionContentUnit(c, v.Chapter, v.Section), true
	case KindSectionQuiz:
		return course.SectionQuizUnit(c, v.Chapter, v.Section), true
	case KindChapterQuiz:
		return course.ChapterQuizUnit(c, v.Chapter), true
	case KindSummary:
		return course.SummaryUnit(), true
	case KindResources:
		return course.ResourcesUnit(), true
	}
	return course.Unit{}, false
}

// Required reports the unit that must be generated before v can be entered.
// It returns false when v needs nothing or its unit is already generated.
func Required(v View, c course.Course) (course.Unit, bool) {
	u, ok := Unit(v, c)
	if !ok || c.IsDone(u) {
		return course.Unit{}, false
	}
	return u, true
}
