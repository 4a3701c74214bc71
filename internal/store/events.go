package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-course/internal/batch"
	"github.com/p-n-ai/pai-course/internal/platform/database"
)

const eventTimeout = 3 * time.Second

// EventLog records batch progress events in the batch_events table so a run
// can be inspected after the fact. It is a batch.Sink.
type EventLog struct {
	db        *database.DB
	namespace string
}

// NewEventLog creates an event log for namespace.
func NewEventLog(db *database.DB, namespace string) *EventLog {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &EventLog{db: db, namespace: namespace}
}

// Emit inserts ev. Failures are logged; the run carries on.
func (l *EventLog) Emit(ev batch.Event) {
	if err := l.insert(ev); err != nil {
		slog.Warn("failed to record batch event", "run_id", ev.RunID, "error", err)
	}
}

func (l *EventLog) insert(ev batch.Event) error {
	createdAt := ev.Time
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	_, err := l.db.Pool.Exec(ctx,
		`INSERT INTO batch_events (namespace, run_id, status, message, progress, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.namespace, ev.RunID, string(ev.Status), ev.Message, ev.Progress, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch event: %w", err)
	}
	return nil
}

// Run returns the events of one run in emission order.
func (l *EventLog) Run(ctx context.Context, runID string) ([]batch.Event, error) {
	rows, err := l.db.Pool.Query(ctx,
		`SELECT run_id, status, message, progress, created_at
		 FROM batch_events
		 WHERE namespace = $1 AND run_id = $2
		 ORDER BY id`,
		l.namespace, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query batch events: %w", err)
	}
	defer rows.Close()

	var events []batch.Event
	for rows.Next() {
		var (
			ev     batch.Event
			status string
		)
		if err := rows.Scan(&ev.RunID, &status, &ev.Message, &ev.Progress, &ev.Time); err != nil {
			return nil, fmt.Errorf("scan batch event: %w", err)
		}
		ev.Status = batch.Status(status)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read batch events: %w", err)
	}
	return events, nil
}
