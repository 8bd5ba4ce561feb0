package milp

import (
	"container/heap"
	"context"
	"errors"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	feasTol    = 1e-7
	intTol     = 1e-6
	improveTol = 1e-9
)

// Status is the terminal state of a solve.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE" // time limit hit with an incumbent in hand
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimeLimit  Status = "TIME_LIMIT" // time limit hit with no incumbent
	StatusUnbounded  Status = "UNBOUNDED"
)

// Options controls the branch-and-bound search.
type Options struct {
	TimeLimit time.Duration // zero means no limit beyond ctx
	MIPGap    float64       // relative gap at which the incumbent is accepted as optimal
	Threads   int           // concurrent relaxation solves per round; 0 = GOMAXPROCS
}

// Solution is the result of Model.Solve. X has one entry per model variable
// (integer variables rounded); it is nil unless Status is OPTIMAL or FEASIBLE.
type Solution struct {
	Status    Status
	X         []float64
	Objective float64
}

// standardized holds the model's rows in dense form: equalities as-is and
// every inequality as <=. Per-node variable bounds are appended at relaxation
// time as extra inequality rows, then all inequalities get slack columns.
type standardized struct {
	n     int // model variables
	c     []float64
	kinds []VarKind

	eqA   [][]float64
	eqB   []float64
	ineqG [][]float64
	ineqH []float64
}

func (m *Model) standardize() *standardized {
	n := len(m.names)
	s := &standardized{n: n, c: m.obj, kinds: m.kinds}
	for _, r := range m.rows {
		if r.expr.Len() == 0 {
			continue // trivially satisfied; violations are screened before solving
		}
		coefs := r.expr.dense(n)
		switch r.sense {
		case Equal:
			s.eqA = append(s.eqA, coefs)
			s.eqB = append(s.eqB, r.rhs)
		case LessEq:
			s.ineqG = append(s.ineqG, coefs)
			s.ineqH = append(s.ineqH, r.rhs)
		case GreaterEq:
			neg := make([]float64, n)
			for i, c := range coefs {
				neg[i] = -c
			}
			s.ineqG = append(s.ineqG, neg)
			s.ineqH = append(s.ineqH, -r.rhs)
		}
	}
	return s
}

type relaxation struct {
	x   []float64 // model variables only, slacks stripped
	obj float64
	err error
}

// solveRelaxation solves the LP relaxation under the given variable bounds.
// Bounds beyond the implicit x >= 0 are materialized as inequality rows.
func (s *standardized) solveRelaxation(lower, upper []float64) relaxation {
	type bound struct {
		v   int
		c   float64
		rhs float64
	}
	var bounds []bound
	for i := 0; i < s.n; i++ {
		if !math.IsInf(upper[i], 1) {
			bounds = append(bounds, bound{v: i, c: 1, rhs: upper[i]})
		}
		if lower[i] > 0 {
			bounds = append(bounds, bound{v: i, c: -1, rhs: -lower[i]})
		}
	}

	nIneq := len(s.ineqG) + len(bounds)
	rows := len(s.eqA) + nIneq
	cols := s.n + nIneq

	// No rows at all: the optimum over x >= 0 sits at the origin unless some
	// coefficient rewards growing a variable without limit.
	if rows == 0 {
		for i := 0; i < s.n; i++ {
			if s.c[i] < -feasTol {
				return relaxation{err: lp.ErrUnbounded}
			}
		}
		return relaxation{x: make([]float64, s.n)}
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	copy(c, s.c)

	r := 0
	for i, coefs := range s.eqA {
		for j, v := range coefs {
			a.Set(r, j, v)
		}
		b[r] = s.eqB[i]
		r++
	}
	slack := s.n
	for i, coefs := range s.ineqG {
		for j, v := range coefs {
			a.Set(r, j, v)
		}
		a.Set(r, slack, 1)
		b[r] = s.ineqH[i]
		r++
		slack++
	}
	for _, bd := range bounds {
		a.Set(r, bd.v, bd.c)
		a.Set(r, slack, 1)
		b[r] = bd.rhs
		r++
		slack++
	}

	obj, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return relaxation{err: err}
	}
	return relaxation{x: x[:s.n], obj: obj}
}

type node struct {
	lower []float64
	upper []float64
	bound float64 // parent relaxation objective: a lower bound on this subtree
	seq   int
}

type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Solve runs best-first branch-and-bound. The queue head's bound is a global
// dual bound, so the relative MIP gap check is exact.
func (m *Model) Solve(ctx context.Context, opts Options) Solution {
	if names := m.trivialViolations(); len(names) > 0 {
		return Solution{Status: StatusInfeasible}
	}
	if len(m.names) == 0 {
		return Solution{Status: StatusOptimal, X: []float64{}}
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	s := m.standardize()
	root := &node{
		lower: make([]float64, s.n),
		upper: make([]float64, s.n),
		bound: math.Inf(-1),
	}
	for i, kind := range s.kinds {
		if kind == Binary {
			root.upper[i] = 1
		} else {
			root.upper[i] = math.Inf(1)
		}
	}

	queue := &nodeQueue{}
	heap.Init(queue)
	heap.Push(queue, root)

	var (
		incumbent []float64
		incObj    = math.Inf(1)
		seq       int
	)

	finish := func(timedOut bool) Solution {
		if incumbent == nil {
			if timedOut {
				return Solution{Status: StatusTimeLimit}
			}
			return Solution{Status: StatusInfeasible}
		}
		status := StatusOptimal
		if timedOut {
			status = StatusFeasible
		}
		return Solution{Status: status, X: incumbent, Objective: incObj}
	}

	for queue.Len() > 0 {
		if ctx.Err() != nil {
			return finish(true)
		}

		// Gap check against the global dual bound at the queue head.
		if incumbent != nil {
			bound := (*queue)[0].bound
			if incObj-bound <= opts.MIPGap*math.Max(1, math.Abs(incObj)) {
				return finish(false)
			}
		}

		// Pop a round of still-promising nodes and relax them concurrently.
		batch := make([]*node, 0, threads)
		for len(batch) < threads && queue.Len() > 0 {
			nd := heap.Pop(queue).(*node)
			if incumbent != nil && nd.bound >= incObj-improveTol {
				continue
			}
			batch = append(batch, nd)
		}
		if len(batch) == 0 {
			break
		}

		results := make([]relaxation, len(batch))
		var g errgroup.Group
		for i, nd := range batch {
			g.Go(func() error {
				results[i] = s.solveRelaxation(nd.lower, nd.upper)
				return nil
			})
		}
		_ = g.Wait()

		for i, nd := range batch {
			res := results[i]
			if res.err != nil {
				if errors.Is(res.err, lp.ErrUnbounded) && nd.seq == 0 {
					return Solution{Status: StatusUnbounded}
				}
				// Infeasible or numerically singular subproblem: prune.
				continue
			}
			if incumbent != nil && res.obj >= incObj-improveTol {
				continue
			}

			frac := m.mostFractional(res.x)
			if frac < 0 {
				x := m.roundIntegers(res.x)
				obj := m.Objective(x)
				if obj < incObj-improveTol {
					incumbent = x
					incObj = obj
				}
				continue
			}

			val := res.x[frac]
			down := &node{
				lower: append([]float64(nil), nd.lower...),
				upper: append([]float64(nil), nd.upper...),
				bound: res.obj,
			}
			down.upper[frac] = math.Floor(val)
			up := &node{
				lower: append([]float64(nil), nd.lower...),
				upper: append([]float64(nil), nd.upper...),
				bound: res.obj,
			}
			up.lower[frac] = math.Ceil(val)

			seq++
			down.seq = seq
			seq++
			up.seq = seq
			if down.lower[frac] <= down.upper[frac]+feasTol {
				heap.Push(queue, down)
			}
			if up.lower[frac] <= up.upper[frac]+feasTol {
				heap.Push(queue, up)
			}
		}
	}

	return finish(false)
}

// mostFractional returns the integer-constrained variable farthest from
// integrality, or -1 when the point is integral.
func (m *Model) mostFractional(x []float64) int {
	best, bestDist := -1, intTol
	for i, kind := range m.kinds {
		if kind == Continuous {
			continue
		}
		f := x[i] - math.Floor(x[i])
		dist := math.Min(f, 1-f)
		if dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// roundIntegers snaps integer-constrained entries of x to whole numbers.
func (m *Model) roundIntegers(x []float64) []float64 {
	out := append([]float64(nil), x...)
	for i, kind := range m.kinds {
		if kind != Continuous {
			out[i] = math.Round(out[i])
		}
	}
	return out
}
