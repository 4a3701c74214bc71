package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/p-n-ai/pai-course/internal/ai"
	"github.com/p-n-ai/pai-course/internal/course"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 120 * time.Second

// ConnectFunc turns a credential into something that can complete requests.
type ConnectFunc func(ctx context.Context, credential string) (ai.Completer, error)

// AIGenerator implements Generator on top of the ai gateway.
type AIGenerator struct {
	connect   ConnectFunc
	prompts   *Prompts
	language  string
	imageBase string
	timeout   time.Duration
	seed      func() int

	mu        sync.Mutex
	lastCred  string
	completer ai.Completer
}

// Option configures an AIGenerator.
type Option func(*AIGenerator)

// WithPrompts replaces the embedded prompt catalogue.
func WithPrompts(p *Prompts) Option {
	return func(g *AIGenerator) {
		if p != nil {
			g.prompts = p
		}
	}
}

// WithLanguage sets the language learner-facing text is written in.
func WithLanguage(lang string) Option {
	return func(g *AIGenerator) {
		if lang != "" {
			g.language = lang
		}
	}
}

// WithImageBaseURL sets the illustration endpoint.
func WithImageBaseURL(base string) Option {
	return func(g *AIGenerator) { g.imageBase = base }
}

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(g *AIGenerator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithSeed overrides the random image seed source.
func WithSeed(seed func() int) Option {
	return func(g *AIGenerator) { g.seed = seed }
}

// WithConnect overrides how a credential becomes a completer.
func WithConnect(connect ConnectFunc) Option {
	return func(g *AIGenerator) { g.connect = connect }
}

// NewAIGenerator creates a generator whose provider chain is built from
// settings for whichever credential a call carries.
func NewAIGenerator(settings ai.Settings, opts ...Option) (*AIGenerator, error) {
	prompts, err := DefaultPrompts()
	if err != nil {
		return nil, err
	}
	g := &AIGenerator{
		connect: func(ctx context.Context, credential string) (ai.Completer, error) {
			return settings.Router(ctx, credential)
		},
		prompts:   prompts,
		language:  "English",
		imageBase: DefaultImageBaseURL,
		timeout:   DefaultTimeout,
		seed:      func() int { return rand.IntN(99999) },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *AIGenerator) completerFor(ctx context.Context, credential string) (ai.Completer, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrNotConfigured
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.completer != nil && g.lastCred == credential {
		return g.completer, nil
	}
	c, err := g.connect(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("connect provider: %w", err)
	}
	g.lastCred, g.completer = credential, c
	return c, nil
}

func (g *AIGenerator) complete(ctx context.Context, credential string, task ai.TaskType, prompt string, data PromptData, temperature float64, json bool) (string, error) {
	completer, err := g.completerFor(ctx, credential)
	if err != nil {
		return "", err
	}
	data.Language = g.language
	system, err := render(g.prompts.system, data)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		Task:        task,
		JSON:        json,
	})
	if err != nil {
		return "", err
	}
	slog.Debug("content generated",
		"task", task.String(),
		"model", resp.Model,
		"tokens", resp.TotalTokens(),
		"duration", time.Since(start),
	)
	return resp.Content, nil
}

type rawSection struct {
	Title string `json:"title"`
}

type rawChapter struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Sections    []rawSection `json:"sections"`
}

type rawStructure struct {
	Title    string       `json:"title"`
	Chapters []rawChapter `json:"chapters"`
}

// GenerateStructure asks the provider for the course outline. Identifiers are
// assigned locally so they always follow the fixed numbering.
func (g *AIGenerator) GenerateStructure(ctx context.Context, credential, topic, audience string) (course.Course, error) {
	const op = "generate structure"
	data := PromptData{
		Topic:    topic,
		Audience: audience,
		Chapters: course.ChapterCount,
		Sections: course.SectionsPerChapter,
	}
	prompt, err := render(g.prompts.structure, data)
	if err != nil {
		return course.Course{}, err
	}
	raw, err := g.complete(ctx, credential, ai.TaskStructure, prompt, data, 0.7, true)
	if err != nil {
		return course.Course{}, providerErr(op, err)
	}

	var rs rawStructure
	if err := decode(structureValidator, raw, &rs); err != nil {
		return course.Course{}, &ProviderError{Op: op, Err: err}
	}

	c := course.Course{
		Topic:          topic,
		TargetAudience: audience,
		Title:          strings.TrimSpace(rs.Title),
		Chapters:       make([]course.Chapter, len(rs.Chapters)),
	}
	for i, rc := range rs.Chapters {
		ch := course.Chapter{
			ID:          i + 1,
			Title:       strings.TrimSpace(rc.Title),
			Description: strings.TrimSpace(rc.Description),
			Sections:    make([]course.Section, len(rc.Sections)),
		}
		for j, s := range rc.Sections {
			ch.Sections[j] = course.Section{
				ID:    course.SectionID(ch.ID, j+1),
				Title: strings.TrimSpace(s.Title),
			}
		}
		c.Chapters[i] = ch
	}
	if err := course.ValidateStructure(c); err != nil {
		return course.Course{}, &ProviderError{Op: op, Err: err}
	}
	return c, nil
}

// GenerateSectionContent writes a section's reading material and its
// illustration URL.
func (g *AIGenerator) GenerateSectionContent(ctx context.Context, credential, courseTitle, audience, chapterTitle string, section course.Section) (course.SectionContent, error) {
	const op = "generate section content"
	data := PromptData{
		CourseTitle:  courseTitle,
		Audience:     audience,
		ChapterTitle: chapterTitle,
		SectionTitle: section.Title,
	}
	prompt, err := render(g.prompts.sectionContent, data)
	if err != nil {
		return course.SectionContent{}, err
	}
	raw, err := g.complete(ctx, credential, ai.TaskContent, prompt, data, 0.7, true)
	if err != nil {
		return course.SectionContent{}, providerErr(op, err)
	}

	var out struct {
		Content     string `json:"content"`
		ImagePrompt string `json:"imagePrompt"`
	}
	if err := decode(sectionContentValidator, raw, &out); err != nil {
		return course.SectionContent{}, &ProviderError{Op: op, Err: err}
	}
	html, err := RenderMarkdown(out.Content)
	if err != nil {
		return course.SectionContent{}, &ProviderError{Op: op, Err: err}
	}

	imagePrompt := strings.TrimSpace(out.ImagePrompt)
	if imagePrompt == "" {
		imagePrompt = section.Title
	}
	return course.SectionContent{
		Content:     html,
		ImagePrompt: imagePrompt,
		ImageURL:    ImageURL(g.imageBase, imagePrompt, g.seed()),
	}, nil
}

// GenerateSectionQuiz writes the five-question section quiz.
func (g *AIGenerator) GenerateSectionQuiz(ctx context.Context, credential, courseTitle, sectionTitle string) ([]course.QuizQuestion, error) {
	data := PromptData{
		CourseTitle:  courseTitle,
		SectionTitle: sectionTitle,
		Questions:    course.SectionQuizSize,
	}
	return g.quiz(ctx, credential, "generate section quiz", g.prompts.sectionQuiz, data)
}

// GenerateChapterQuiz writes the twenty-question chapter exam.
func (g *AIGenerator) GenerateChapterQuiz(ctx context.Context, credential, courseTitle, chapterTitle string) ([]course.QuizQuestion, error) {
	data := PromptData{
		CourseTitle:  courseTitle,
		ChapterTitle: chapterTitle,
		Questions:    course.ChapterQuizSize,
	}
	return g.quiz(ctx, credential, "generate chapter quiz", g.prompts.chapterQuiz, data)
}

type rawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

func (g *AIGenerator) quiz(ctx context.Context, credential, op string, t *template.Template, data PromptData) ([]course.QuizQuestion, error) {
	data.Options = course.OptionsPerQuestion
	data.LastOption = course.OptionsPerQuestion - 1

	prompt, err := render(t, data)
	if err != nil {
		return nil, err
	}
	raw, err := g.complete(ctx, credential, ai.TaskQuiz, prompt, data, 0.3, true)
	if err != nil {
		return nil, providerErr(op, err)
	}

	var out struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := decode(quizValidator, quizEnvelope(raw), &out); err != nil {
		return nil, &ProviderError{Op: op, Err: err}
	}
	questions := make([]course.QuizQuestion, len(out.Questions))
	for i, q := range out.Questions {
		questions[i] = course.QuizQuestion{
			ID:            i + 1,
			Question:      strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   strings.TrimSpace(q.Explanation),
		}
	}
	return questions, nil
}

// GenerateSummary writes the closing summary over the chapter outline.
func (g *AIGenerator) GenerateSummary(ctx context.Context, credential string, c course.Course) (string, error) {
	data := PromptData{CourseTitle: c.Title, Audience: c.TargetAudience, Outline: c.Chapters}
	return g.prose(ctx, credential, "generate summary", ai.TaskSummary, g.prompts.summary, data)
}

// GenerateResources writes the bibliography and tool list.
func (g *AIGenerator) GenerateResources(ctx context.Context, credential string, c course.Course) (string, error) {
	data := PromptData{CourseTitle: c.Title, Audience: c.TargetAudience, Outline: c.Chapters}
	return g.prose(ctx, credential, "generate resources", ai.TaskResources, g.prompts.resources, data)
}

func (g *AIGenerator) prose(ctx context.Context, credential, op string, task ai.TaskType, t *template.Template, data PromptData) (string, error) {
	prompt, err := render(t, data)
	if err != nil {
		return "", err
	}
	raw, err := g.complete(ctx, credential, task, prompt, data, 0.7, false)
	if err != nil {
		return "", providerErr(op, err)
	}
	html, err := RenderMarkdown(strings.TrimSpace(raw))
	if err != nil {
		return "", &ProviderError{Op: op, Err: err}
	}
	return html, nil
}
