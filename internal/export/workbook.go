package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-course/internal/course"
)

const overviewSheet = "Overview"

var quizHeader = []any{"Section", "#", "Question", "Option A", "Option B", "Option C", "Correct", "Explanation"}

// Workbook builds an XLSX file with an overview sheet and one sheet per
// chapter listing every section quiz question followed by the chapter exam.
func Workbook(c course.Course) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	overview := [][]any{
		{"Course", c.Title},
		{"Topic", c.Topic},
		{"Audience", c.TargetAudience},
		{"Progress", fmt.Sprintf("%d%% (%d/%d units)", course.Progress(c), course.Completed(c), course.TotalUnits(c))},
		{},
		{"Chapter", "Title", "Section questions", "Exam questions"},
	}
	for _, ch := range c.Chapters {
		n := 0
		for _, s := range ch.Sections {
			n += len(s.Quiz)
		}
		overview = append(overview, []any{ch.ID, ch.Title, n, len(ch.Quiz)})
	}
	if err := writeRows(f, overviewSheet, overview); err != nil {
		return nil, err
	}
	f.SetCellStyle(overviewSheet, "A1", "A4", bold)
	f.SetCellStyle(overviewSheet, "A6", "D6", bold)
	f.SetColWidth(overviewSheet, "B", "B", 50)

	for _, ch := range c.Chapters {
		sheet := chapterSheet(ch)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		rows := [][]any{quizHeader}
		for _, s := range ch.Sections {
			for i, q := range s.Quiz {
				rows = append(rows, questionRow(s.ID, i, q))
			}
		}
		for i, q := range ch.Quiz {
			rows = append(rows, questionRow("Exam", i, q))
		}
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, err
		}
		f.SetCellStyle(sheet, "A1", "H1", bold)
		f.SetColWidth(sheet, "C", "C", 60)
		f.SetColWidth(sheet, "D", "F", 25)
		f.SetColWidth(sheet, "H", "H", 60)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// chapterSheet names a chapter's sheet within the 31 character limit.
func chapterSheet(ch course.Chapter) string {
	return fmt.Sprintf("Chapter %d", ch.ID)
}

func questionRow(section string, i int, q course.QuizQuestion) []any {
	row := []any{section, i + 1, q.Question}
	for o := 0; o < course.OptionsPerQuestion; o++ {
		if o < len(q.Options) {
			row = append(row, q.Options[o])
		} else {
			row = append(row, "")
		}
	}
	correct := ""
	if q.CorrectAnswer >= 0 && q.CorrectAnswer < course.OptionsPerQuestion {
		correct = string(rune('A' + q.CorrectAnswer))
	}
	return append(row, correct, q.Explanation)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
