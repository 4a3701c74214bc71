package course

import (
	"fmt"
	"strings"
)

// ValidateStructure checks that a freshly generated course has the fixed shape:
// six chapters with ids 1..6, five sections each labelled "<chapter>.<n>".
func ValidateStructure(c Course) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("course title is empty")
	}
	if len(c.Chapters) != ChapterCount {
		return fmt.Errorf("course has %d chapters, want %d", len(c.Chapters), ChapterCount)
	}
	for i, ch := range c.Chapters {
		if ch.ID != i+1 {
			return fmt.Errorf("chapter %d has id %d, want %d", i, ch.ID, i+1)
		}
		if strings.TrimSpace(ch.Title) == "" {
			return fmt.Errorf("chapter %d has no title", ch.ID)
		}
		if len(ch.Sections) != SectionsPerChapter {
			return fmt.Errorf("chapter %d has %d sections, want %d", ch.ID, len(ch.Sections), SectionsPerChapter)
		}
		for j, s := range ch.Sections {
			if want := SectionID(ch.ID, j+1); s.ID != want {
				return fmt.Errorf("section %d of chapter %d has id %q, want %q", j, ch.ID, s.ID, want)
			}
			if strings.TrimSpace(s.Title) == "" {
				return fmt.Errorf("section %s has no title", s.ID)
			}
		}
	}
	return nil
}

// ValidateQuiz checks a generated question set before it is accepted.
func ValidateQuiz(questions []QuizQuestion, want int) error {
	if len(questions) != want {
		return fmt.Errorf("quiz has %d questions, want %d", len(questions), want)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Options) != OptionsPerQuestion {
			return fmt.Errorf("question %d has %d options, want %d", i+1, len(q.Options), OptionsPerQuestion)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d has correct answer %d outside [0,%d)", i+1, q.CorrectAnswer, len(q.Options))
		}
	}
	return nil
}
