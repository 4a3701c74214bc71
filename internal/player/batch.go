package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-course/internal/batch"
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/export"
	"github.com/p-n-ai/pai-course/internal/generator"
)

// Exported is a rendered export document.
type Exported struct {
	Filename    string
	ContentType string
	Data        []byte
	Report      batch.Report[course.Course]
}

// Preload generates every outstanding unit of the course. Failed units are
// reported and stay outstanding; everything that succeeded is kept. The run
// is not cancelled when ctx is.
func (p *Player) Preload(ctx context.Context) (batch.Report[course.Course], error) {
	release, err := p.acquire()
	if err != nil {
		return batch.Report[course.Course]{}, err
	}
	defer release()

	runID := uuid.NewString()
	report, err := p.complete(ctx, runID)
	if err != nil {
		return report, err
	}
	p.emit(runID, "All content pre-loaded successfully!", batch.StatusSuccess, 100)
	return report, nil
}

// Export completes the course and renders it in the requested format. Units
// that still fail to generate render as pending content.
func (p *Player) Export(ctx context.Context, kind export.Kind) (Exported, error) {
	release, err := p.acquire()
	if err != nil {
		return Exported{}, err
	}
	defer release()

	if cred, c, _ := p.state(); c == nil {
		return Exported{}, ErrNoCourse
	} else if cred == "" {
		return Exported{}, generator.ErrNotConfigured
	}
	runID := uuid.NewString()
	p.emit(runID, "Initializing course export engine...", batch.StatusInfo, 0)

	report, err := p.complete(ctx, runID)
	if err != nil {
		return Exported{}, err
	}

	p.emit(runID, fmt.Sprintf("Compiling final %s file...", formatLabel(kind)), batch.StatusInfo, 100)
	data, err := export.Render(report.Result, kind, p.export)
	if err != nil {
		p.emit(runID, fmt.Sprintf("Error in export: %v", err), batch.StatusError, 100)
		return Exported{}, err
	}
	return Exported{
		Filename:    export.Filename(report.Result.Title, kind),
		ContentType: kind.ContentType(),
		Data:        data,
		Report:      report,
	}, nil
}

// complete runs the batch engine over the current course, committing after
// every successful unit. Callers hold the operation slot.
func (p *Player) complete(ctx context.Context, runID string) (batch.Report[course.Course], error) {
	cred, c, _ := p.state()
	if c == nil {
		return batch.Report[course.Course]{}, ErrNoCourse
	}
	if cred == "" {
		return batch.Report[course.Course]{}, generator.ErrNotConfigured
	}
	ctx = context.WithoutCancel(ctx)

	report := p.engine.Complete(ctx, cred, *c, p.sink, func(next course.Course) {
		p.commit(ctx, next)
	}, batch.WithRunID[course.Course](runID))

	// the working copy wins even when units failed
	p.commit(ctx, report.Result)
	return report, nil
}

func (p *Player) emit(runID, msg string, status batch.Status, progress float64) {
	p.sink.Emit(batch.Event{RunID: runID, Message: msg, Status: status, Progress: progress, Time: time.Now()})
}

func formatLabel(kind export.Kind) string {
	if kind == export.KindPrint {
		return "PDF"
	}
	return strings.ToUpper(string(kind))
}
