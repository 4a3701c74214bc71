// Package generator is the content provider adapter: it turns a credential
// and a course into new course material, one unit at a time.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-course/internal/course"
)

var (
	// ErrNotConfigured is returned when no credential is available.
	ErrNotConfigured = errors.New("generator not configured: no credential")
	// ErrProvider matches every *ProviderError.
	ErrProvider = errors.New("content provider error")
)

// ProviderError is any failed generation call: network, credential or a
// malformed reply.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProvider) true for every ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func providerErr(op string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) || errors.Is(err, ErrNotConfigured) {
		return err
	}
	return &ProviderError{Op: op, Err: err}
}

// Generator produces course material. Every call is independent and may fail.
type Generator interface {
	GenerateStructure(ctx context.Context, credential, topic, audience string) (course.Course, error)
	GenerateSectionContent(ctx context.Context, credential, courseTitle, audience, chapterTitle string, section course.Section) (course.SectionContent, error)
	GenerateSectionQuiz(ctx context.Context, credential, courseTitle, sectionTitle string) ([]course.QuizQuestion, error)
	GenerateChapterQuiz(ctx context.Context, credential, courseTitle, chapterTitle string) ([]course.QuizQuestion, error)
	GenerateSummary(ctx context.Context, credential string, c course.Course) (string, error)
	GenerateResources(ctx context.Context, credential string, c course.Course) (string, error)
}

// Fulfil generates unit u and returns c with the result applied. The result
// is validated first; a malformed result is a ProviderError and c is returned
// unchanged.
func Fulfil(ctx context.Context, gen Generator, credential string, c course.Course, u course.Unit) (course.Course, error) {
	if strings.TrimSpace(credential) == "" {
		return c, ErrNotConfigured
	}

	switch u.Kind {
	case course.UnitSectionContent:
		ch, err := c.Chapter(u.Chapter)
		if err != nil {
			return c, err
		}
		sec, err := c.Section(u.Chapter, u.Section)
		if err != nil {
			return c, err
		}
		content, err := gen.GenerateSectionContent(ctx, credential, c.Title, c.TargetAudience, ch.Title, sec)
		if err != nil {
			return c, providerErr("generate section content", err)
		}
		if strings.TrimSpace(content.Content) == "" {
			return c, &ProviderError{Op: "generate section content", Err: errors.New("empty content")}
		}
		return c.WithSectionContent(u.Chapter, u.Section, content)

	case course.UnitSectionQuiz:
		sec, err := c.Section(u.Chapter, u.Section)
		if err != nil {
			return c, err
		}
		quiz, err := gen.GenerateSectionQuiz(ctx, credential, c.Title, sec.Title)
		if err != nil {
			return c, providerErr("generate section quiz", err)
		}
		if err := course.ValidateQuiz(quiz, course.SectionQuizSize); err != nil {
			return c, &ProviderError{Op: "generate section quiz", Err: err}
		}
		return c.WithSectionQuiz(u.Chapter, u.Section, quiz)

	case course.UnitChapterQuiz:
		ch, err := c.Chapter(u.Chapter)
		if err != nil {
			return c, err
		}
		quiz, err := gen.GenerateChapterQuiz(ctx, credential, c.Title, ch.Title)
		if err != nil {
			return c, providerErr("generate chapter quiz", err)
		}
		if err := course.ValidateQuiz(quiz, course.ChapterQuizSize); err != nil {
			return c, &ProviderError{Op: "generate chapter quiz", Err: err}
		}
		return c.WithChapterQuiz(u.Chapter, quiz)

	case course.UnitSummary:
		summary, err := gen.GenerateSummary(ctx, credential, c)
		if err != nil {
			return c, providerErr("generate summary", err)
		}
		if strings.TrimSpace(summary) == "" {
			return c, &ProviderError{Op: "generate summary", Err: errors.New("empty summary")}
		}
		return c.WithSummary(summary), nil

	case course.UnitResources:
		resources, err := gen.GenerateResources(ctx, credential, c)
		if err != nil {
			return c, providerErr("generate resources", err)
		}
		if strings.TrimSpace(resources) == "" {
			return c, &ProviderError{Op: "generate resources", Err: errors.New("empty resources")}
		}
		return c.WithResources(resources), nil
	}
	return c, fmt.Errorf("unknown unit kind %v", u.Kind)
}
