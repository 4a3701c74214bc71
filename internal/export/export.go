// Package export serialises a course snapshot into standalone documents: an
// interactive web page, a print-ready page and a quiz workbook.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/p-n-ai/pai-course/internal/course"
)

// Kind selects an export format.
type Kind string

const (
	KindHTML  Kind = "html"
	KindPrint Kind = "print"
	KindXLSX  Kind = "xlsx"
)

// ParseKind accepts the route names of the export formats. "pdf" is an alias
// for the print document.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "html", "web":
		return KindHTML, nil
	case "print", "pdf":
		return KindPrint, nil
	case "xlsx", "excel":
		return KindXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the media type of the rendered document.
func (k Kind) ContentType() string {
	if k == KindXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/html; charset=utf-8"
}

// PendingContent stands in for a section that has not been generated.
const PendingContent = "Content pending generation."

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = template.Must(template.New("export").Funcs(template.FuncMap{
	// Content fields hold HTML rendered from provider Markdown.
	"raw":     func(s string) template.HTML { return template.HTML(s) },
	"add1":    func(i int) int { return i + 1 },
	"pending": func() string { return PendingContent },
	"answer": func(q course.QuizQuestion) string {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return ""
		}
		return fmt.Sprintf("%c. %s", 'A'+q.CorrectAnswer, q.Options[q.CorrectAnswer])
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

type pageData struct {
	Course    course.Course
	Print     bool
	Lang      string
	Generated string
}

// Options tune rendering.
type Options struct {
	Lang string
	Now  func() time.Time
}

func (o Options) data(c course.Course, print bool) pageData {
	lang := o.Lang
	if lang == "" {
		lang = "en"
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return pageData{Course: c, Print: print, Lang: lang, Generated: now().Format("2 January 2006")}
}

// HTML renders the interactive document. Quiz answers stay folded until the
// reader opens them.
func HTML(c course.Course, opts Options) ([]byte, error) {
	return render(opts.data(c, false))
}

// Print renders the print-ready document, which opens the print dialog once
// loaded and shows every answer.
func Print(c course.Course, opts Options) ([]byte, error) {
	return render(opts.data(c, true))
}

func render(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "course", data); err != nil {
		return nil, fmt.Errorf("render course document: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the document of the given kind.
func Render(c course.Course, kind Kind, opts Options) ([]byte, error) {
	switch kind {
	case KindHTML:
		return HTML(c, opts)
	case KindPrint:
		return Print(c, opts)
	case KindXLSX:
		return Workbook(c)
	}
	return nil, fmt.Errorf("unknown export format %q", kind)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Filename derives the download name of a document from the course title:
// accents removed, lower case, whitespace runs collapsed to "_".
func Filename(title string, kind Kind) string {
	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case unicode.IsSpace(r):
			underscore = b.Len() > 0
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			if underscore {
				b.WriteByte('_')
				underscore = false
			}
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "course"
	}

	switch kind {
	case KindPrint:
		return slug + "_print.html"
	case KindXLSX:
		return slug + "_quizzes.xlsx"
	default:
		return slug + "_web.html"
	}
}
