package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/generator"
)

// Engine brings a course to fully generated state.
type Engine struct {
	gen generator.Generator
}

// NewEngine creates an engine that fills units with gen.
func NewEngine(gen generator.Generator) *Engine {
	return &Engine{gen: gen}
}

// Complete generates every outstanding unit of c in canonical order. A failed
// unit is reported and skipped; it stays outstanding for the next run.
// checkpoint, when non-nil, receives the working course after every
// successful unit so it can be persisted. opts are passed through to Run.
func (e *Engine) Complete(ctx context.Context, credential string, c course.Course, sink Sink, checkpoint func(course.Course), opts ...Option[course.Course]) Report[course.Course] {
	units := course.Outstanding(c)
	tasks := make([]Task[course.Course], len(units))
	for i, u := range units {
		tasks[i] = e.task(credential, c, u)
	}

	if checkpoint != nil {
		opts = append(opts, WithCheckpoint(func(_ int, result course.Course) { checkpoint(result) }))
	}

	report := Run(ctx, c, tasks, sink, opts...)
	slog.Info("batch completion finished",
		"run_id", report.RunID,
		"units", report.Total,
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"progress", course.Progress(report.Result),
	)
	return report
}

func (e *Engine) task(credential string, c course.Course, u course.Unit) Task[course.Course] {
	t := describe(c, u)
	t.Run = func(ctx context.Context, in course.Course) (course.Course, error) {
		return generator.Fulfil(ctx, e.gen, credential, in, u)
	}
	return t
}

// describe fills in the log wording for unit u.
func describe(c course.Course, u course.Unit) Task[course.Course] {
	switch u.Kind {
	case course.UnitSectionContent:
		title := sectionTitle(c, u)
		return Task[course.Course]{
			Name:  "content " + u.SectionID,
			Start: fmt.Sprintf("Generating Content: [%s] %s...", u.SectionID, title),
			Done:  "Content OK: " + title,
		}
	case course.UnitSectionQuiz:
		return Task[course.Course]{
			Name:  "quiz " + u.SectionID,
			Start: fmt.Sprintf("Generating Quiz: [%s]...", u.SectionID),
			Done:  "Quiz OK: " + sectionTitle(c, u),
		}
	case course.UnitChapterQuiz:
		return Task[course.Course]{
			Name:        fmt.Sprintf("exam chapter %d", u.ChapterID),
			Start:       fmt.Sprintf("Generating MASTER EXAM: Chapter %d...", u.ChapterID),
			StartStatus: StatusWarn,
			Done:        fmt.Sprintf("Exam OK: Chapter %d", u.ChapterID),
		}
	case course.UnitSummary:
		return Task[course.Course]{
			Name:        "summary",
			Start:       "Drafting Global Summary...",
			StartStatus: StatusWarn,
			Done:        "Summary OK",
		}
	case course.UnitResources:
		return Task[course.Course]{
			Name:        "resources",
			Start:       "Compiling Resources...",
			StartStatus: StatusWarn,
			Done:        "Resources OK",
		}
	}
	return Task[course.Course]{Name: u.Key()}
}

func sectionTitle(c course.Course, u course.Unit) string {
	s, err := c.Section(u.Chapter, u.Section)
	if err != nil {
		return u.SectionID
	}
	return s.Title
}
