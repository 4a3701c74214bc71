// Package batch runs ordered lists of fallible tasks against a working value
// and reports progress as it goes.
//
// Tasks run strictly one after another: each task sees the value produced by
// every task that succeeded before it. A failing task is reported and skipped;
// it never stops the run.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultProgressScale is the share of the progress bar covered by tasks.
	// The rest is left for whatever the caller does with the result.
	DefaultProgressScale = 90

	msgUpToDate = "All content is up to date."
)

// Task is one unit of work. Run receives the current working value and
// returns the next one; on error the working value is left as it was.
type Task[T any] struct {
	Name        string
	Start       string
	StartStatus Status
	Done        string
	Run         func(ctx context.Context, in T) (T, error)
}

// Failure records a task that did not complete.
type Failure struct {
	Index int
	Name  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("task %d (%s): %v", f.Index, f.Name, f.Err)
}

// Report is the outcome of a run. Result always holds every successful task's
// output, regardless of failures.
type Report[T any] struct {
	RunID     string
	Result    T
	Total     int
	Succeeded []int
	Failed    []Failure
}

// Complete reports whether every task succeeded.
func (r Report[T]) Complete() bool { return len(r.Failed) == 0 }

type options[T any] struct {
	runID string
	scale float64
	now   func() time.Time
	after func(index int, result T)
}

// Option configures a run.
type Option[T any] func(*options[T])

// WithRunID sets the id stamped on every event.
func WithRunID[T any](id string) Option[T] {
	return func(o *options[T]) { o.runID = id }
}

// WithProgressScale sets the progress value reached after the last task.
func WithProgressScale[T any](scale float64) Option[T] {
	return func(o *options[T]) { o.scale = scale }
}

// WithClock overrides the event timestamp source.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(o *options[T]) { o.now = now }
}

// WithCheckpoint registers a callback invoked with the working value after
// every successful task.
func WithCheckpoint[T any](fn func(index int, result T)) Option[T] {
	return func(o *options[T]) { o.after = fn }
}

// Run executes tasks in order starting from initial.
//
// With no tasks it emits a single up-to-date event at 100%. Otherwise it
// announces the run, then for every task emits a start event and, once the
// task returns, a success or error event whose progress is
// (index+1)/len(tasks) * scale. A cancelled context fails the remaining tasks
// without running them.
func Run[T any](ctx context.Context, initial T, tasks []Task[T], sink Sink, opts ...Option[T]) Report[T] {
	o := options[T]{scale: DefaultProgressScale, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if sink == nil {
		sink = NopSink{}
	}
	emit := func(msg string, status Status, progress float64) {
		sink.Emit(Event{RunID: o.runID, Message: msg, Status: status, Progress: progress, Time: o.now()})
	}

	report := Report[T]{RunID: o.runID, Result: initial, Total: len(tasks)}
	if len(tasks) == 0 {
		emit(msgUpToDate, StatusSuccess, 100)
		return report
	}

	emit(fmt.Sprintf("Found %d missing components. Starting batch generation...", len(tasks)), StatusWarn, 0)

	total := float64(len(tasks))
	for i, task := range tasks {
		progress := float64(i+1) / total * o.scale

		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, Failure{Index: i, Name: task.Name, Err: err})
			emit(fmt.Sprintf("Error in %s: %v", task.Name, err), StatusError, progress)
			continue
		}

		if task.Start != "" {
			status := task.StartStatus
			if status == "" {
				status = StatusInfo
			}
			emit(task.Start, status, float64(i)/total*o.scale)
		}

		out, err := task.Run(ctx, report.Result)
		if err != nil {
			report.Failed = append(report.Failed, Failure{Index: i, Name: task.Name, Err: err})
			emit(fmt.Sprintf("Error in %s: %v", task.Name, err), StatusError, progress)
			continue
		}

		report.Result = out
		report.Succeeded = append(report.Succeeded, i)
		if o.after != nil {
			o.after(i, out)
		}
		done := task.Done
		if done == "" {
			done = task.Name + " OK"
		}
		emit(done, StatusSuccess, progress)
	}
	return report
}
