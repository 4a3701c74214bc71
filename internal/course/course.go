// Package course holds the course entity graph and its completeness model.
//
// Course values are treated as immutable once built: every update returns a new
// Course that shares all untouched branches with the original.
package course

import "fmt"

// Fixed course shape.
const (
	ChapterCount       = 6
	SectionsPerChapter = 5
	SectionQuizSize    = 5
	ChapterQuizSize    = 20
	OptionsPerQuestion = 3
)

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"` // zero-based index into Options
	Explanation   string   `json:"explanation"`
}

// Section is the smallest readable unit of a chapter.
type Section struct {
	ID              string         `json:"id"` // "<chapter>.<n>"
	Title           string         `json:"title"`
	IsGenerated     bool           `json:"isGenerated"`
	Content         string         `json:"content,omitempty"`
	ImagePrompt     string         `json:"imagePrompt,omitempty"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	Quiz            []QuizQuestion `json:"quiz,omitempty"`
	IsQuizGenerated bool           `json:"isQuizGenerated"`
}

// Chapter groups sections and owns the chapter exam.
type Chapter struct {
	ID              int            `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Sections        []Section      `json:"sections"`
	Quiz            []QuizQuestion `json:"quiz,omitempty"`
	IsQuizGenerated bool           `json:"isQuizGenerated"`
}

// Course is the root aggregate.
type Course struct {
	Topic          string    `json:"topic"`
	TargetAudience string    `json:"targetAudience"`
	Title          string    `json:"title"`
	Chapters       []Chapter `json:"chapters"`
	GlobalSummary  string    `json:"globalSummary,omitempty"`
	Resources      string    `json:"resources,omitempty"`
}

// SectionContent is the result of a section-content generation task.
type SectionContent struct {
	Content     string
	ImagePrompt string
	ImageURL    string
}

// SectionID returns the stable dotted label of a section.
func SectionID(chapterID, n int) string {
	return fmt.Sprintf("%d.%d", chapterID, n)
}

// Section returns the section at the given indices.
func (c Course) Section(ci, si int) (Section, error) {
	if err := c.checkSection(ci, si); err != nil {
		return Section{}, err
	}
	return c.Chapters[ci].Sections[si], nil
}

// Chapter returns the chapter at the given index.
func (c Course) Chapter(ci int) (Chapter, error) {
	if err := c.checkChapter(ci); err != nil {
		return Chapter{}, err
	}
	return c.Chapters[ci], nil
}

func (c Course) checkChapter(ci int) error {
	if ci < 0 || ci >= len(c.Chapters) {
		return fmt.Errorf("chapter index %d out of range [0,%d)", ci, len(c.Chapters))
	}
	return nil
}

func (c Course) checkSection(ci, si int) error {
	if err := c.checkChapter(ci); err != nil {
		return err
	}
	if n := len(c.Chapters[ci].Sections); si < 0 || si >= n {
		return fmt.Errorf("section index %d out of range [0,%d) in chapter %d", si, n, c.Chapters[ci].ID)
	}
	return nil
}
