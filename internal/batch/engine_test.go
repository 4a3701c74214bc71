package batch

import (
	"errors"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/generator"
)

// fill generates the first n units of c in canonical order.
func fill(t *testing.T, c course.Course, n int) course.Course {
	t.Helper()
	gen := generator.NewFake()
	for _, u := range course.Units(c)[:n] {
		var err error
		c, err = generator.Fulfil(t.Context(), gen, "key", c, u)
		if err != nil {
			t.Fatalf("Fulfil(%v) error = %v", u, err)
		}
	}
	return c
}

func TestEngine_UpToDate(t *testing.T) {
	c := course.Skeleton("go", "devs", "Go")
	c = fill(t, c, course.TotalUnits(c))

	gen := generator.NewFake()
	sink := NewMemorySink()
	report := NewEngine(gen).Complete(t.Context(), "key", c, sink, nil)

	events := sink.Events()
	if len(events) != 1 || events[0].Message != "All content is up to date." || events[0].Progress != 100 {
		t.Fatalf("events = %+v", events)
	}
	if gen.TotalCalls() != 0 {
		t.Errorf("generator called %d times", gen.TotalCalls())
	}
	if course.Progress(report.Result) != 100 {
		t.Errorf("Progress = %d, want 100", course.Progress(report.Result))
	}
}

func TestEngine_FailureMidBatch(t *testing.T) {
	c := course.Skeleton("go", "devs", "Go")
	total := course.TotalUnits(c)
	c = fill(t, c, total-10)
	outstanding := course.Outstanding(c)
	if len(outstanding) != 10 {
		t.Fatalf("outstanding = %d, want 10", len(outstanding))
	}

	calls := 0
	gen := generator.NewFake()
	gen.FailOn = func(string, int) error {
		calls++
		if calls == 5 {
			return errors.New("rate limited")
		}
		return nil
	}

	var saved []course.Course
	sink := NewMemorySink()
	report := NewEngine(gen).Complete(t.Context(), "key", c, sink, func(c course.Course) { saved = append(saved, c) })

	if got := course.Completed(report.Result) - course.Completed(c); got != 9 {
		t.Errorf("newly generated = %d, want 9", got)
	}
	left := course.Outstanding(report.Result)
	if len(left) != 1 || left[0].Key() != outstanding[4].Key() {
		t.Errorf("outstanding after run = %v, want [%v]", left, outstanding[4])
	}
	if len(report.Failed) != 1 || report.Failed[0].Index != 4 {
		t.Errorf("Failed = %+v", report.Failed)
	}
	if len(saved) != 9 {
		t.Errorf("checkpoints = %d, want 9", len(saved))
	}
	if course.Completed(saved[len(saved)-1]) != course.Completed(report.Result) {
		t.Error("last checkpoint differs from the final result")
	}

	var errorEvents int
	for _, ev := range sink.Events() {
		if ev.Status == StatusError {
			errorEvents++
			if !strings.HasPrefix(ev.Message, "Error in ") || !strings.Contains(ev.Message, "rate limited") {
				t.Errorf("error event = %q", ev.Message)
			}
		}
	}
	if errorEvents != 1 {
		t.Errorf("error events = %d, want 1", errorEvents)
	}

	// a second run picks up only the failed unit
	gen.FailOn = nil
	again := NewEngine(gen).Complete(t.Context(), "key", report.Result, nil, nil)
	if course.Progress(again.Result) != 100 || again.Total != 1 {
		t.Errorf("rerun total=%d progress=%d", again.Total, course.Progress(again.Result))
	}
}

func TestEngine_NoCredentialFailsEveryUnit(t *testing.T) {
	c := course.Skeleton("go", "devs", "Go")
	report := NewEngine(generator.NewFake()).Complete(t.Context(), "", c, nil, nil)
	if len(report.Failed) != course.TotalUnits(c) {
		t.Errorf("failed = %d, want %d", len(report.Failed), course.TotalUnits(c))
	}
	if !errors.Is(report.Failed[0].Err, generator.ErrNotConfigured) {
		t.Errorf("error = %v", report.Failed[0].Err)
	}
}

func TestDescribe(t *testing.T) {
	c := course.Skeleton("go", "devs", "Go")
	tests := []struct {
		unit   course.Unit
		start  string
		status Status
		done   string
	}{
		{course.SectionContentUnit(c, 0, 1), "Generating Content: [1.2] Section 1.2...", "", "Content OK: Section 1.2"},
		{course.SectionQuizUnit(c, 2, 0), "Generating Quiz: [3.1]...", "", "Quiz OK: Section 3.1"},
		{course.ChapterQuizUnit(c, 5), "Generating MASTER EXAM: Chapter 6...", StatusWarn, "Exam OK: Chapter 6"},
		{course.SummaryUnit(), "Drafting Global Summary...", StatusWarn, "Summary OK"},
		{course.ResourcesUnit(), "Compiling Resources...", StatusWarn, "Resources OK"},
	}
	for _, tt := range tests {
		t.Run(tt.unit.Key(), func(t *testing.T) {
			got := describe(c, tt.unit)
			if got.Start != tt.start || got.StartStatus != tt.status || got.Done != tt.done {
				t.Errorf("describe() = %+v", got)
			}
		})
	}
}
