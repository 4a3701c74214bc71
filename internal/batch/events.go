package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status tags a progress event.
type Status string

const (
	StatusInfo    Status = "info"
	StatusSuccess Status = "success"
	StatusWarn    Status = "warn"
	StatusError   Status = "error"
)

// Event is one progress line of a batch run. Progress is a percentage in [0,100].
type Event struct {
	RunID    string    `json:"runId"`
	Message  string    `json:"message"`
	Status   Status    `json:"status"`
	Progress float64   `json:"progress"`
	Time     time.Time `json:"time"`
}

// Sink receives progress events. Implementations must not block for long:
// the run waits on every Emit.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// MemorySink keeps events in memory for tests and for late subscribers.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{events: []Event{}}
}

func (s *MemorySink) Emit(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

// LogSink writes events through slog.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ev Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch ev.Status {
	case StatusWarn:
		level = slog.LevelWarn
	case StatusError:
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, ev.Message,
		"run_id", ev.RunID,
		"status", string(ev.Status),
		"progress", ev.Progress,
	)
}

// Fanout forwards every event to each sink in order.
type Fanout []Sink

func (f Fanout) Emit(ev Event) {
	for _, s := range f {
		if s != nil {
			s.Emit(ev)
		}
	}
}
