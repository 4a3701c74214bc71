// Package player owns the learner's session: the current course, the view the
// learner is on and the open quiz attempt. It performs the generation that
// navigation asks for and persists every committed change.
//
// At most one generating or mutating operation runs at a time. A second one
// started while the first is in flight fails fast with ErrBusy instead of
// queueing, so a unit is never generated twice concurrently.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/p-n-ai/pai-course/internal/batch"
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/export"
	"github.com/p-n-ai/pai-course/internal/generator"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/quiz"
	"github.com/p-n-ai/pai-course/internal/store"
)

var (
	// ErrBusy is returned while another operation is generating or mutating state.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoCourse is returned by operations that need a course when none is loaded.
	ErrNoCourse = errors.New("no course loaded")
	// ErrQuizNotPassed is returned when advancing past a quiz that has not been passed.
	ErrQuizNotPassed = errors.New("quiz not passed")
	// ErrNotQuiz is returned by quiz operations outside a quiz view.
	ErrNotQuiz = errors.New("current view is not a quiz")
	// ErrBadInput is returned for malformed learner input.
	ErrBadInput = errors.New("bad input")
)

// Config holds the player's collaborators.
type Config struct {
	Store     store.Store
	Generator generator.Generator
	// Engine defaults to a batch engine over Generator.
	Engine *batch.Engine
	// Sink receives batch progress events. Defaults to a LogSink.
	Sink   batch.Sink
	Export export.Options
}

// Player is the single authoritative owner of session state.
type Player struct {
	store  store.Store
	gen    generator.Generator
	engine *batch.Engine
	sink   batch.Sink
	export export.Options

	busy atomic.Bool

	mu         sync.RWMutex
	credential string
	course     *course.Course
	view       navigation.View
	attempt    *quiz.Attempt
}

// New creates a player with an empty session. Call Load to restore state.
func New(cfg Config) *Player {
	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	engine := cfg.Engine
	if engine == nil {
		engine = batch.NewEngine(cfg.Generator)
	}
	sink := cfg.Sink
	if sink == nil {
		sink = batch.LogSink{}
	}
	return &Player{
		store:  st,
		gen:    cfg.Generator,
		engine: engine,
		sink:   sink,
		export: cfg.Export,
		view:   navigation.Cover(),
	}
}

// acquire takes the exclusive operation slot.
func (p *Player) acquire() (release func(), err error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { p.busy.Store(false) }, nil
}

// exclusive runs fn in the operation slot and snapshots the session once the
// slot is released.
func (p *Player) exclusive(fn func() error) (Snapshot, error) {
	release, err := p.acquire()
	if err != nil {
		return p.Snapshot(), err
	}
	err = func() error {
		defer release()
		return fn()
	}()
	return p.Snapshot(), err
}

// Load restores the credential and course from the store. A stored course is
// offered on the cover; Resume enters it. Missing or unreadable state is not
// an error.
func (p *Player) Load(ctx context.Context) error {
	release, err := p.acquire()
	if err != nil {
		return err
	}
	defer release()

	cred, err := p.store.LoadCredential(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load credential: %w", err)
	}
	c, err := p.store.LoadCourse(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load course: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.credential = cred
	p.view = navigation.Cover()
	p.attempt = nil
	p.course = nil
	if err == nil {
		p.course = &c
		slog.Info("saved course restored", "title", c.Title, "progress", course.Progress(c))
	}
	return nil
}

// SetCredential stores the provider credential. An empty value clears it.
func (p *Player) SetCredential(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if err := p.store.SaveCredential(ctx, credential); err != nil {
		return err
	}
	p.mu.Lock()
	p.credential = credential
	p.mu.Unlock()
	return nil
}

// ClearCredential forgets the provider credential.
func (p *Player) ClearCredential(ctx context.Context) error {
	if err := p.store.DeleteCredential(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.credential = ""
	p.mu.Unlock()
	return nil
}

// Configured reports whether a credential is available.
func (p *Player) Configured() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.credential != ""
}

// state returns a consistent copy of the fields generation needs.
func (p *Player) state() (string, *course.Course, navigation.View) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.credential, p.course, p.view
}

// commit swaps in c and persists it.
func (p *Player) commit(ctx context.Context, c course.Course) {
	p.mu.Lock()
	p.course = &c
	p.mu.Unlock()
	p.persist(ctx, c)
}

// commitAt swaps in c, moves to view and persists c.
func (p *Player) commitAt(ctx context.Context, c course.Course, view navigation.View) {
	p.mu.Lock()
	p.course = &c
	p.enter(view)
	p.mu.Unlock()
	p.persist(ctx, c)
}

// enter moves to view. Callers hold p.mu.
func (p *Player) enter(view navigation.View) {
	if view == p.view && p.attempt != nil {
		return
	}
	p.view = view
	p.attempt = nil
	if !view.IsQuiz() || p.course == nil {
		return
	}
	switch view.Kind {
	case navigation.KindSectionQuiz:
		p.attempt = quiz.NewAttempt(p.course.Chapters[view.Chapter].Sections[view.Section].Quiz)
	case navigation.KindChapterQuiz:
		p.attempt = quiz.NewAttempt(p.course.Chapters[view.Chapter].Quiz)
	}
}

func (p *Player) persist(ctx context.Context, c course.Course) {
	if err := p.store.SaveCourse(context.WithoutCancel(ctx), c); err != nil {
		slog.Error("failed to persist course", "title", c.Title, "error", err)
	}
}

// Start generates a new course structure for topic and audience, persists it
// and enters the first section. If the first section cannot be generated the
// course is kept and the learner stays on the cover.
func (p *Player) Start(ctx context.Context, topic, audience string) (Snapshot, error) {
	topic, audience = strings.TrimSpace(topic), strings.TrimSpace(audience)
	if topic == "" || audience == "" {
		return p.Snapshot(), fmt.Errorf("%w: topic and audience are required", ErrBadInput)
	}
	return p.exclusive(func() error {
		cred, _, _ := p.state()
		if cred == "" {
			return generator.ErrNotConfigured
		}

		slog.Info("generating course structure", "topic", topic, "audience", audience)
		c, err := p.gen.GenerateStructure(ctx, cred, topic, audience)
		if err != nil {
			return err
		}
		if err := course.ValidateStructure(c); err != nil {
			return &generator.ProviderError{Op: "generate structure", Err: err}
		}
		p.commitAt(ctx, c, navigation.Cover())

		return p.move(ctx, navigation.Event{Kind: navigation.EventJump, Target: navigation.Start()})
	})
}

// Resume enters the first section of the loaded course.
func (p *Player) Resume(ctx context.Context) (Snapshot, error) {
	return p.do(ctx, navigation.Event{Kind: navigation.EventJump, Target: navigation.Start()})
}

// Advance moves forward from the current view. Leaving a quiz requires a
// passed attempt.
func (p *Player) Advance(ctx context.Context) (Snapshot, error) {
	return p.do(ctx, navigation.Event{Kind: navigation.EventAdvance})
}

// Jump moves directly to target.
func (p *Player) Jump(ctx context.Context, target navigation.View) (Snapshot, error) {
	return p.do(ctx, navigation.Event{Kind: navigation.EventJump, Target: target})
}

func (p *Player) do(ctx context.Context, ev navigation.Event) (Snapshot, error) {
	return p.exclusive(func() error { return p.move(ctx, ev) })
}

// move applies ev, generating the destination's unit first when needed. On
// any failure the view and course are left as they were. Callers hold the
// operation slot.
func (p *Player) move(ctx context.Context, ev navigation.Event) error {
	cred, c, view := p.state()
	if c == nil {
		return ErrNoCourse
	}

	if ev.Kind == navigation.EventAdvance && view.IsQuiz() {
		p.mu.RLock()
		passed := p.attempt != nil && p.attempt.Passed()
		p.mu.RUnlock()
		if !passed {
			return ErrQuizNotPassed
		}
	}

	step, err := navigation.Apply(view, ev, *c)
	if err != nil {
		return err
	}

	if step.NeedsGeneration {
		slog.Info("generating unit", "unit", step.Unit.Key(), "view", step.To.String())
		next, err := generator.Fulfil(ctx, p.gen, cred, *c, step.Unit)
		if err != nil {
			slog.Warn("unit generation failed", "unit", step.Unit.Key(), "error", err)
			return err
		}
		p.commitAt(ctx, next, step.To)
		return nil
	}

	p.mu.Lock()
	p.enter(step.To)
	p.mu.Unlock()
	return nil
}

// Regenerate discards the current section's content and quiz and generates
// its content again. The course only changes when generation succeeds.
func (p *Player) Regenerate(ctx context.Context) (Snapshot, error) {
	return p.exclusive(func() error {
		cred, c, view := p.state()
		if c == nil {
			return ErrNoCourse
		}
		if view.Kind != navigation.KindSectionContent {
			return fmt.Errorf("%w: regenerate is only available on a section", navigation.ErrInvalidTransition)
		}

		reset, err := c.ResetSection(view.Chapter, view.Section)
		if err != nil {
			return err
		}
		next, err := generator.Fulfil(ctx, p.gen, cred, reset, course.SectionContentUnit(reset, view.Chapter, view.Section))
		if err != nil {
			slog.Warn("section regeneration failed", "view", view.String(), "error", err)
			return err
		}
		p.commit(ctx, next)
		slog.Info("section regenerated", "view", view.String())
		return nil
	})
}

// Reset discards the course, in memory and in the store, and returns to the
// cover. The credential is kept.
func (p *Player) Reset(ctx context.Context) (Snapshot, error) {
	return p.exclusive(func() error {
		if err := p.store.DeleteCourse(ctx); err != nil {
			return err
		}
		p.mu.Lock()
		p.course = nil
		p.view = navigation.Cover()
		p.attempt = nil
		p.mu.Unlock()
		slog.Info("course reset")
		return nil
	})
}
