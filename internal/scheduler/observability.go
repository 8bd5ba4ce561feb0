package scheduler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/plenum/internal/domain"
)

// SolveEvent captures lightweight execution telemetry for one solve.
type SolveEvent struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Status      domain.SolveStatus
	Feasible    bool
	Objective   float64
	NewMeetings int
	Teams       int
	Variables   int
	Constraints int
}

// SolveObserver receives solve execution events.
type SolveObserver interface {
	ObserveSolve(ctx context.Context, event SolveEvent)
}

// NoopSolveObserver ignores all events.
type NoopSolveObserver struct{}

func (NoopSolveObserver) ObserveSolve(context.Context, SolveEvent) {}

type logSolveObserver struct {
	logger *slog.Logger
}

// NewLogSolveObserver writes solve events to the provided writer.
func NewLogSolveObserver(w io.Writer) SolveObserver {
	if w == nil {
		return NoopSolveObserver{}
	}
	return &logSolveObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logSolveObserver) ObserveSolve(ctx context.Context, event SolveEvent) {
	attrs := []any{
		"run_id", event.RunID,
		"duration_ms", event.Duration.Milliseconds(),
		"status", string(event.Status),
		"feasible", event.Feasible,
		"objective", event.Objective,
		"new_meetings", event.NewMeetings,
		"teams", event.Teams,
		"variables", event.Variables,
		"constraints", event.Constraints,
	}
	if event.Feasible {
		o.logger.InfoContext(ctx, "scheduler_solve", attrs...)
		return
	}
	o.logger.WarnContext(ctx, "scheduler_solve", attrs...)
}
