package course

// The With* methods copy only the branch they touch: the chapter slice, the one
// chapter that changes and, for section updates, that chapter's section slice.
// Everything else is shared with the receiver.

// WithSectionContent returns a copy of c with the section's content populated.
func (c Course) WithSectionContent(ci, si int, content SectionContent) (Course, error) {
	return c.withSection(ci, si, func(s *Section) {
		s.IsGenerated = true
		s.Content = content.Content
		s.ImagePrompt = content.ImagePrompt
		s.ImageURL = content.ImageURL
	})
}

// WithSectionQuiz returns a copy of c with the section quiz populated.
func (c Course) WithSectionQuiz(ci, si int, quiz []QuizQuestion) (Course, error) {
	return c.withSection(ci, si, func(s *Section) {
		s.Quiz = quiz
		s.IsQuizGenerated = true
	})
}

// ResetSection clears every generated field of one section, leaving siblings untouched.
func (c Course) ResetSection(ci, si int) (Course, error) {
	return c.withSection(ci, si, func(s *Section) {
		*s = Section{ID: s.ID, Title: s.Title}
	})
}

// WithChapterQuiz returns a copy of c with the chapter exam populated.
func (c Course) WithChapterQuiz(ci int, quiz []QuizQuestion) (Course, error) {
	if err := c.checkChapter(ci); err != nil {
		return Course{}, err
	}
	out := c
	out.Chapters = cloneChapters(c.Chapters)
	out.Chapters[ci].Quiz = quiz
	out.Chapters[ci].IsQuizGenerated = true
	return out, nil
}

// WithSummary returns a copy of c with the closing summary set.
func (c Course) WithSummary(summary string) Course {
	out := c
	out.GlobalSummary = summary
	return out
}

// WithResources returns a copy of c with the resources set.
func (c Course) WithResources(resources string) Course {
	out := c
	out.Resources = resources
	return out
}

func (c Course) withSection(ci, si int, mutate func(*Section)) (Course, error) {
	if err := c.checkSection(ci, si); err != nil {
		return Course{}, err
	}
	out := c
	out.Chapters = cloneChapters(c.Chapters)
	sections := make([]Section, len(c.Chapters[ci].Sections))
	copy(sections, c.Chapters[ci].Sections)
	mutate(&sections[si])
	out.Chapters[ci].Sections = sections
	return out, nil
}

func cloneChapters(chapters []Chapter) []Chapter {
	out := make([]Chapter, len(chapters))
	copy(out, chapters)
	return out
}
