package course

import (
	"fmt"
	"math"
)

// UnitKind identifies a generation task.
type UnitKind int

const (
	UnitSectionContent UnitKind = iota
	UnitSectionQuiz
	UnitChapterQuiz
	UnitSummary
	UnitResources
)

func (k UnitKind) String() string {
	switch k {
	case UnitSectionContent:
		return "section-content"
	case UnitSectionQuiz:
		return "section-quiz"
	case UnitChapterQuiz:
		return "chapter-quiz"
	case UnitSummary:
		return "global-summary"
	case UnitResources:
		return "resources"
	default:
		return "unknown"
	}
}

// Unit is one atomic piece of generatable content. Chapter and Section are
// zero-based indices; Section is only meaningful for section units.
type Unit struct {
	Kind      UnitKind
	Chapter   int
	Section   int
	ChapterID int
	SectionID string
}

// Key is the completeness key of the unit, stable across course mutations.
func (u Unit) Key() string {
	switch u.Kind {
	case UnitSectionContent, UnitSectionQuiz:
		return u.Kind.String() + ":" + u.SectionID
	case UnitChapterQuiz:
		return fmt.Sprintf("%s:%d", u.Kind, u.ChapterID)
	default:
		return u.Kind.String()
	}
}

// SectionContentUnit builds the content unit for a section.
func SectionContentUnit(c Course, ci, si int) Unit {
	return sectionUnit(UnitSectionContent, c, ci, si)
}

// SectionQuizUnit builds the quiz unit for a section.
func SectionQuizUnit(c Course, ci, si int) Unit {
	return sectionUnit(UnitSectionQuiz, c, ci, si)
}

// ChapterQuizUnit builds the exam unit for a chapter.
func ChapterQuizUnit(c Course, ci int) Unit {
	u := Unit{Kind: UnitChapterQuiz, Chapter: ci}
	if ci >= 0 && ci < len(c.Chapters) {
		u.ChapterID = c.Chapters[ci].ID
	}
	return u
}

// SummaryUnit is the global summary unit.
func SummaryUnit() Unit { return Unit{Kind: UnitSummary} }

// ResourcesUnit is the resources unit.
func ResourcesUnit() Unit { return Unit{Kind: UnitResources} }

func sectionUnit(kind UnitKind, c Course, ci, si int) Unit {
	u := Unit{Kind: kind, Chapter: ci, Section: si}
	if s, err := c.Section(ci, si); err == nil {
		u.ChapterID = c.Chapters[ci].ID
		u.SectionID = s.ID
	}
	return u
}

// IsDone reports whether the unit has already been generated in c.
func (c Course) IsDone(u Unit) bool {
	switch u.Kind {
	case UnitSectionContent:
		s, err := c.Section(u.Chapter, u.Section)
		return err == nil && s.IsGenerated
	case UnitSectionQuiz:
		s, err := c.Section(u.Chapter, u.Section)
		return err == nil && s.IsQuizGenerated
	case UnitChapterQuiz:
		ch, err := c.Chapter(u.Chapter)
		return err == nil && ch.IsQuizGenerated
	case UnitSummary:
		return c.GlobalSummary != ""
	case UnitResources:
		return c.Resources != ""
	}
	return false
}

// Units lists every unit of c in canonical order: chapters ascending, each
// section's content then quiz, the chapter exam after its sections, then the
// summary and finally the resources.
func Units(c Course) []Unit {
	units := make([]Unit, 0, TotalUnits(c))
	for ci, ch := range c.Chapters {
		for si := range ch.Sections {
			units = append(units, SectionContentUnit(c, ci, si), SectionQuizUnit(c, ci, si))
		}
		units = append(units, ChapterQuizUnit(c, ci))
	}
	return append(units, SummaryUnit(), ResourcesUnit())
}

// Outstanding lists the units of c not yet generated, in canonical order.
func Outstanding(c Course) []Unit {
	var out []Unit
	for _, u := range Units(c) {
		if !c.IsDone(u) {
			out = append(out, u)
		}
	}
	return out
}

// TotalUnits is the unit count implied by the course shape (68 for a well-formed course).
func TotalUnits(c Course) int {
	total := 2
	for _, ch := range c.Chapters {
		total += 2*len(ch.Sections) + 1
	}
	return total
}

// Completed counts generated units.
func Completed(c Course) int {
	return TotalUnits(c) - len(Outstanding(c))
}

// Progress is the completion percentage rounded to the nearest integer.
func Progress(c Course) int {
	total := TotalUnits(c)
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(Completed(c)) * 100 / float64(total)))
}
