// Package scheduler builds and solves the meeting-assignment optimization:
// it selects slots for each team's remaining meetings, staffs them with
// commissioners, and balances personal load, all in one mixed-integer
// program.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/milp"
	"github.com/alexanderramin/plenum/internal/preprocess"
	"github.com/google/uuid"
)

// iisSummaryLimit caps how many constraint names an infeasibility summary
// carries.
const iisSummaryLimit = 200

// Engine solves scheduling instances. It holds no per-solve state: every
// Solve call is a pure function of its bundle, so one Engine may serve
// concurrent solves on disjoint inputs.
type Engine struct {
	cfg      config.Config
	grid     domain.Grid
	observer SolveObserver
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches a solve observer.
func WithObserver(obs SolveObserver) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observer = obs
		}
	}
}

// New returns an engine for the given configuration.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		grid:     domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay),
		observer: NoopSolveObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Solve runs preprocessing, builds the MILP, solves it, and reconstructs
// the solution. It blocks until the solver finishes or the time limit hits.
func (e *Engine) Solve(ctx context.Context, bundle domain.Bundle) domain.SolveResult {
	started := time.Now()
	runID := uuid.NewString()

	pre := preprocess.Run(bundle, e.cfg, e.grid)
	b := newBuilder(e.cfg, e.grid, bundle, pre)
	b.build()

	sol := b.model.Solve(ctx, milp.Options{
		TimeLimit: time.Duration(e.cfg.Solver.TimeLimitSec) * time.Second,
		MIPGap:    e.cfg.Solver.MIPGap,
		Threads:   e.cfg.Solver.Threads,
	})

	result := e.resultFromSolution(ctx, b, sol)

	e.observer.ObserveSolve(ctx, SolveEvent{
		RunID:       runID,
		StartedAt:   started,
		Duration:    time.Since(started),
		Status:      result.Status,
		Feasible:    result.Feasible,
		Objective:   result.Objective,
		NewMeetings: len(result.Meetings),
		Teams:       len(bundle.Teams),
		Variables:   b.model.NumVars(),
		Constraints: b.model.NumConstraints(),
	})
	return result
}

func (e *Engine) resultFromSolution(ctx context.Context, b *builder, sol milp.Solution) domain.SolveResult {
	switch sol.Status {
	case milp.StatusOptimal, milp.StatusFeasible:
		return domain.SolveResult{
			Feasible:  true,
			Status:    domain.SolveStatus(sol.Status),
			Meetings:  b.reconstruct(sol.X),
			Objective: sol.Objective,
		}
	case milp.StatusInfeasible:
		return domain.SolveResult{
			Feasible:   false,
			Status:     domain.StatusInfeasible,
			IISSummary: e.iisSummary(ctx, b.model),
		}
	default:
		return domain.SolveResult{
			Feasible: false,
			Status:   domain.SolveStatus(sol.Status),
		}
	}
}

// iisSummary formats a best-effort irreducible infeasible subset. A bounded
// deadline keeps the deletion filter from eating the caller's time budget.
func (e *Engine) iisSummary(ctx context.Context, m *milp.Model) string {
	iisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names := m.ComputeIIS(iisCtx)
	if len(names) == 0 {
		return ""
	}
	if len(names) > iisSummaryLimit {
		names = names[:iisSummaryLimit]
	}
	return fmt.Sprintf("constraints involved in the conflict:\n%s", strings.Join(names, "\n"))
}
