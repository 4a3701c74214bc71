package course_test

import (
	"reflect"
	"testing"

	"github.com/p-n-ai/pai-course/internal/course"
)

func TestResetSection_ClearsOnlyThatSection(t *testing.T) {
	full := complete(t, course.Skeleton("Go", "devs", "Learning Go"))

	reset, err := full.ResetSection(2, 3)
	if err != nil {
		t.Fatalf("ResetSection() error = %v", err)
	}

	got := reset.Chapters[2].Sections[3]
	want := course.Section{ID: "3.4", Title: "Section 3.4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reset section = %+v, want %+v", got, want)
	}

	// Every other field of the course is untouched.
	restored := reset
	restored.Chapters = append([]course.Chapter(nil), reset.Chapters...)
	restored.Chapters[2].Sections = append([]course.Section(nil), reset.Chapters[2].Sections...)
	restored.Chapters[2].Sections[3] = full.Chapters[2].Sections[3]
	if !reflect.DeepEqual(restored, full) {
		t.Error("ResetSection() modified fields outside the target section")
	}

	if !full.Chapters[2].Sections[3].IsGenerated {
		t.Error("ResetSection() mutated the receiver")
	}
}

func TestWithSectionContent_DoesNotMutateReceiver(t *testing.T) {
	base := course.Skeleton("Go", "devs", "Learning Go")

	next, err := base.WithSectionContent(0, 0, course.SectionContent{Content: "c", ImagePrompt: "p", ImageURL: "u"})
	if err != nil {
		t.Fatalf("WithSectionContent() error = %v", err)
	}
	if base.Chapters[0].Sections[0].IsGenerated {
		t.Error("receiver was mutated")
	}
	s := next.Chapters[0].Sections[0]
	if !s.IsGenerated || s.Content != "c" || s.ImagePrompt != "p" || s.ImageURL != "u" {
		t.Errorf("section = %+v, want populated content", s)
	}
	if &next.Chapters[1].Sections[0] != &base.Chapters[1].Sections[0] {
		t.Error("untouched chapter sections should be shared")
	}
}

func TestWithChapterQuiz(t *testing.T) {
	base := course.Skeleton("Go", "devs", "Learning Go")
	next, err := base.WithChapterQuiz(5, sampleQuiz(course.ChapterQuizSize))
	if err != nil {
		t.Fatalf("WithChapterQuiz() error = %v", err)
	}
	if !next.Chapters[5].IsQuizGenerated || len(next.Chapters[5].Quiz) != course.ChapterQuizSize {
		t.Error("chapter quiz not populated")
	}
	if base.Chapters[5].IsQuizGenerated {
		t.Error("receiver was mutated")
	}
}

func TestUpdates_OutOfRange(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")

	if _, err := c.WithSectionContent(6, 0, course.SectionContent{}); err == nil {
		t.Error("WithSectionContent() should reject chapter 6")
	}
	if _, err := c.WithSectionQuiz(0, 5, nil); err == nil {
		t.Error("WithSectionQuiz() should reject section 5")
	}
	if _, err := c.WithChapterQuiz(-1, nil); err == nil {
		t.Error("WithChapterQuiz() should reject chapter -1")
	}
	if _, err := c.ResetSection(0, -1); err == nil {
		t.Error("ResetSection() should reject section -1")
	}
}
