package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/p-n-ai/pai-course/internal/course"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// promptSource is the YAML shape of a prompt catalogue.
type promptSource struct {
	System         string `yaml:"system"`
	Structure      string `yaml:"structure"`
	SectionContent string `yaml:"section_content"`
	SectionQuiz    string `yaml:"section_quiz"`
	ChapterQuiz    string `yaml:"chapter_quiz"`
	Summary        string `yaml:"summary"`
	Resources      string `yaml:"resources"`
}

func (s *promptSource) overlay(o promptSource) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&s.System, o.System)
	set(&s.Structure, o.Structure)
	set(&s.SectionContent, o.SectionContent)
	set(&s.SectionQuiz, o.SectionQuiz)
	set(&s.ChapterQuiz, o.ChapterQuiz)
	set(&s.Summary, o.Summary)
	set(&s.Resources, o.Resources)
}

// PromptData is the value every prompt template is executed against.
type PromptData struct {
	Language     string
	Topic        string
	Audience     string
	CourseTitle  string
	ChapterTitle string
	SectionTitle string
	Outline      []course.Chapter
	Chapters     int
	Sections     int
	Questions    int
	Options      int
	LastOption   int
}

// Prompts is a parsed prompt catalogue.
type Prompts struct {
	system         *template.Template
	structure      *template.Template
	sectionContent *template.Template
	sectionQuiz    *template.Template
	chapterQuiz    *template.Template
	summary        *template.Template
	resources      *template.Template
}

// DefaultPrompts returns the embedded catalogue.
func DefaultPrompts() (*Prompts, error) {
	return LoadPrompts("")
}

// LoadPrompts parses the embedded catalogue and overlays every YAML file found
// under dir. Entries missing from the overrides keep their default. An empty
// dir loads the defaults only.
func LoadPrompts(dir string) (*Prompts, error) {
	var src promptSource
	if err := yaml.Unmarshal(defaultPrompts, &src); err != nil {
		return nil, fmt.Errorf("parse default prompts: %w", err)
	}

	if dir != "" {
		files := 0
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var override promptSource
			if err := yaml.Unmarshal(data, &override); err != nil {
				slog.Warn("skipping invalid prompt YAML", "path", path, "error", err)
				return nil
			}
			src.overlay(override)
			files++
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("loading prompts: %w", err)
		}
		slog.Info("prompt overrides loaded", "dir", dir, "files", files)
	}

	return src.parse()
}

func (s promptSource) parse() (*Prompts, error) {
	p := &Prompts{}
	for _, e := range []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"system", s.System, &p.system},
		{"structure", s.Structure, &p.structure},
		{"section_content", s.SectionContent, &p.sectionContent},
		{"section_quiz", s.SectionQuiz, &p.sectionQuiz},
		{"chapter_quiz", s.ChapterQuiz, &p.chapterQuiz},
		{"summary", s.Summary, &p.summary},
		{"resources", s.Resources, &p.resources},
	} {
		if strings.TrimSpace(e.text) == "" {
			return nil, fmt.Errorf("prompt %q is empty", e.name)
		}
		t, err := template.New(e.name).Option("missingkey=error").Parse(e.text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", e.name, err)
		}
		*e.dst = t
	}
	return p, nil
}

func render(t *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
