package course

import "fmt"

// Skeleton builds a well-formed course with placeholder titles and no generated units.
func Skeleton(topic, audience, title string) Course {
	c := Course{
		Topic:          topic,
		TargetAudience: audience,
		Title:          title,
		Chapters:       make([]Chapter, ChapterCount),
	}
	for i := range c.Chapters {
		id := i + 1
		ch := Chapter{
			ID:          id,
			Title:       fmt.Sprintf("Chapter %d", id),
			Description: fmt.Sprintf("Overview of chapter %d", id),
			Sections:    make([]Section, SectionsPerChapter),
		}
		for j := range ch.Sections {
			sid := SectionID(id, j+1)
			ch.Sections[j] = Section{ID: sid, Title: "Section " + sid}
		}
		c.Chapters[i] = ch
	}
	return c
}
