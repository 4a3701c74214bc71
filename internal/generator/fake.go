package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/p-n-ai/pai-course/internal/course"
)

// Operation names used by Fake for failure injection and call counting.
const (
	OpStructure      = "structure"
	OpSectionContent = "section-content"
	OpSectionQuiz    = "section-quiz"
	OpChapterQuiz    = "chapter-quiz"
	OpSummary        = "summary"
	OpResources      = "resources"
)

// Fake is a deterministic in-memory Generator for tests and offline runs.
// FailOn decides, per call, whether the call fails; n is the 1-based count
// of calls made to op so far, including this one.
type Fake struct {
	FailOn func(op string, n int) error

	mu    sync.Mutex
	calls map[string]int
}

// NewFake returns a Fake that always succeeds.
func NewFake() *Fake {
	return &Fake{calls: make(map[string]int)}
}

// Calls returns how many times op has been invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across every operation.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *Fake) call(ctx context.Context, credential, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	n := f.calls[op]
	f.mu.Unlock()

	if strings.TrimSpace(credential) == "" {
		return ErrNotConfigured
	}
	if f.FailOn != nil {
		if err := f.FailOn(op, n); err != nil {
			return &ProviderError{Op: op, Err: err}
		}
	}
	return nil
}

// FailNth returns a FailOn func that fails only the nth call of op.
func FailNth(op string, nth int) func(string, int) error {
	return func(got string, n int) error {
		if got == op && n == nth {
			return fmt.Errorf("injected failure on %s call %d", op, n)
		}
		return nil
	}
}

// FailAlways returns a FailOn func that fails every call.
func FailAlways() func(string, int) error {
	return func(op string, _ int) error {
		return errors.New("provider unavailable")
	}
}

func (f *Fake) GenerateStructure(ctx context.Context, credential, topic, audience string) (course.Course, error) {
	if err := f.call(ctx, credential, OpStructure); err != nil {
		return course.Course{}, err
	}
	return course.Skeleton(topic, audience, "Mastering "+topic), nil
}

func (f *Fake) GenerateSectionContent(ctx context.Context, credential, courseTitle, audience, chapterTitle string, section course.Section) (course.SectionContent, error) {
	if err := f.call(ctx, credential, OpSectionContent); err != nil {
		return course.SectionContent{}, err
	}
	prompt := "A desk with objects illustrating " + section.Title
	return course.SectionContent{
		Content:     fmt.Sprintf("<h3>%s</h3>\n<p>Reading material for %s in %s.</p>\n", section.Title, section.ID, chapterTitle),
		ImagePrompt: prompt,
		ImageURL:    ImageURL("", prompt, 1),
	}, nil
}

func (f *Fake) GenerateSectionQuiz(ctx context.Context, credential, courseTitle, sectionTitle string) ([]course.QuizQuestion, error) {
	if err := f.call(ctx, credential, OpSectionQuiz); err != nil {
		return nil, err
	}
	return FakeQuiz(sectionTitle, course.SectionQuizSize), nil
}

func (f *Fake) GenerateChapterQuiz(ctx context.Context, credential, courseTitle, chapterTitle string) ([]course.QuizQuestion, error) {
	if err := f.call(ctx, credential, OpChapterQuiz); err != nil {
		return nil, err
	}
	return FakeQuiz(chapterTitle, course.ChapterQuizSize), nil
}

func (f *Fake) GenerateSummary(ctx context.Context, credential string, c course.Course) (string, error) {
	if err := f.call(ctx, credential, OpSummary); err != nil {
		return "", err
	}
	return fmt.Sprintf("<p>You have completed %s.</p>\n", c.Title), nil
}

func (f *Fake) GenerateResources(ctx context.Context, credential string, c course.Course) (string, error) {
	if err := f.call(ctx, credential, OpResources); err != nil {
		return "", err
	}
	return fmt.Sprintf("<h3>Books</h3>\n<ul>\n<li>Further reading on %s</li>\n</ul>\n", c.Topic), nil
}

// FakeQuiz builds n valid questions whose correct answer is always option 0.
func FakeQuiz(subject string, n int) []course.QuizQuestion {
	qs := make([]course.QuizQuestion, n)
	for i := range qs {
		qs[i] = course.QuizQuestion{
			ID:            i + 1,
			Question:      fmt.Sprintf("Question %d about %s?", i+1, subject),
			Options:       []string{"Right", "Wrong", "Also wrong"},
			CorrectAnswer: 0,
			Explanation:   "The first option is right.",
		}
	}
	return qs
}
