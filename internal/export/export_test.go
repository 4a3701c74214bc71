package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-course/internal/course"
)

func quiz(n int) []course.QuizQuestion {
	qs := make([]course.QuizQuestion, n)
	for i := range qs {
		qs[i] = course.QuizQuestion{
			ID:            i + 1,
			Question:      "Is <b>this</b> escaped?",
			Options:       []string{"yes", "no", "maybe"},
			CorrectAnswer: 1,
			Explanation:   "Because.",
		}
	}
	return qs
}

func sampleCourse(t *testing.T) course.Course {
	t.Helper()
	c := course.Skeleton("go", "backend devs", "Go en Profundidad")
	c, err := c.WithSectionContent(0, 0, course.SectionContent{
		Content:     "<h3>Goroutines</h3><p>Lightweight threads.</p>",
		ImagePrompt: "robots",
		ImageURL:    "https://image.test/robots.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c, err = c.WithSectionQuiz(0, 0, quiz(course.SectionQuizSize)); err != nil {
		t.Fatal(err)
	}
	if c, err = c.WithChapterQuiz(0, quiz(course.ChapterQuizSize)); err != nil {
		t.Fatal(err)
	}
	return c.WithSummary("<p>Well done.</p>")
}

var fixedNow = Options{Now: func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleCourse(t), fixedNow)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<title>Go en Profundidad</title>",
		"Audience: backend devs",
		"Generated on 1 March 2025",
		"Chapter 1: Chapter 1",
		"<h3>Goroutines</h3><p>Lightweight threads.</p>",
		`<img src="https://image.test/robots.png"`,
		"Quick Test: Section 1.1",
		"Chapter 1 Exam (20 Questions)",
		"Correct answer: B. no",
		"Final Summary and Closing",
		PendingContent,
		"<details><summary>Show answer</summary>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML() missing %q", want)
		}
	}
	if strings.Contains(page, "<b>this</b>") {
		t.Error("question text was not escaped")
	}
	if strings.Contains(page, "window.print") {
		t.Error("interactive document triggers printing")
	}
	if strings.Contains(page, "Resources and Bibliography") {
		t.Error("resources block rendered without resources")
	}
	if got := strings.Count(page, PendingContent); got != 29 {
		t.Errorf("pending placeholders = %d, want 29", got)
	}
}

func TestPrint(t *testing.T) {
	out, err := Print(sampleCourse(t).WithResources("<ul><li>Book</li></ul>"), fixedNow)
	if err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	page := string(out)
	for _, want := range []string{"@media print", "window.print()", "<details open>", "Resources and Bibliography", "<li>Book</li>"} {
		if !strings.Contains(page, want) {
			t.Errorf("Print() missing %q", want)
		}
	}
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook(sampleCourse(t))
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1+course.ChapterCount || sheets[0] != "Overview" || sheets[1] != "Chapter 1" {
		t.Fatalf("sheets = %v", sheets)
	}

	title, _ := f.GetCellValue("Overview", "B1")
	if title != "Go en Profundidad" {
		t.Errorf("B1 = %q", title)
	}

	rows, err := f.GetRows("Chapter 1")
	if err != nil {
		t.Fatal(err)
	}
	if want := 1 + course.SectionQuizSize + course.ChapterQuizSize; len(rows) != want {
		t.Fatalf("rows = %d, want %d", len(rows), want)
	}
	if rows[0][2] != "Question" || rows[1][0] != "1.1" || rows[1][6] != "B" {
		t.Errorf("first rows = %v / %v", rows[0], rows[1])
	}
	if rows[len(rows)-1][0] != "Exam" || rows[len(rows)-1][1] != "20" {
		t.Errorf("last row = %v", rows[len(rows)-1])
	}

	empty, _ := f.GetRows("Chapter 2")
	if len(empty) != 1 {
		t.Errorf("chapter without quizzes has %d rows", len(empty))
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		kind  Kind
		want  string
	}{
		{"Go en Profundidad", KindHTML, "go_en_profundidad_web.html"},
		{"Introducción a la Programación", KindPrint, "introduccion_a_la_programacion_print.html"},
		{"  Rust:   The Basics  ", KindXLSX, "rust_the_basics_quizzes.xlsx"},
		{"???", KindHTML, "course_web.html"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Filename(tt.title, tt.kind); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"html": KindHTML, "PDF": KindPrint, "print": KindPrint, "xlsx": KindXLSX} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("docx"); err == nil {
		t.Error("ParseKind(docx) succeeded")
	}
}

func TestLangTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "en"},
		{"en", "en"},
		{"pt-BR", "pt-BR"},
		{"English", "en"},
		{"spanish", "es"},
		{"Not a language", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := LangTag(tt.in); got != tt.want {
				t.Errorf("LangTag(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
