// Package milp provides a small mixed-integer linear programming layer:
// a named-variable modeling API and a branch-and-bound solver built on
// gonum's dense simplex.
//
//	minimize   c·x
//	subject to named rows  expr {<=,>=,=} rhs,  x >= 0
//
// Binary variables carry an implicit upper bound of 1.
package milp

import (
	"fmt"
	"math"
)

// VarKind classifies a decision variable.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// Var identifies a variable within its model.
type Var int

// Sense is a constraint direction.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

// LinExpr is a linear combination of variables. Duplicate terms are allowed
// and are summed when the model is standardized.
type LinExpr struct {
	vars  []Var
	coefs []float64
}

// Expr returns an empty linear expression.
func Expr() *LinExpr {
	return &LinExpr{}
}

// Add appends coef·v to the expression and returns it for chaining.
func (e *LinExpr) Add(v Var, coef float64) *LinExpr {
	e.vars = append(e.vars, v)
	e.coefs = append(e.coefs, coef)
	return e
}

// Len returns the number of terms (duplicates counted).
func (e *LinExpr) Len() int {
	return len(e.vars)
}

// dense accumulates the expression into a coefficient vector of size n.
func (e *LinExpr) dense(n int) []float64 {
	out := make([]float64, n)
	for i, v := range e.vars {
		out[int(v)] += e.coefs[i]
	}
	return out
}

type row struct {
	name  string
	expr  *LinExpr
	sense Sense
	rhs   float64
}

// Model is a mutable MILP under construction. It is not safe for concurrent
// mutation; Solve does not mutate the model.
type Model struct {
	names []string
	kinds []VarKind
	obj   []float64
	rows  []row
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

func (m *Model) addVar(name string, kind VarKind) Var {
	m.names = append(m.names, name)
	m.kinds = append(m.kinds, kind)
	m.obj = append(m.obj, 0)
	return Var(len(m.names) - 1)
}

// NewBinary adds a {0,1} variable.
func (m *Model) NewBinary(name string) Var {
	return m.addVar(name, Binary)
}

// NewInteger adds a nonnegative integer variable.
func (m *Model) NewInteger(name string) Var {
	return m.addVar(name, Integer)
}

// NewContinuous adds a nonnegative continuous variable.
func (m *Model) NewContinuous(name string) Var {
	return m.addVar(name, Continuous)
}

// NumVars returns the number of variables added so far.
func (m *Model) NumVars() int {
	return len(m.names)
}

// VarName returns the name a variable was created with.
func (m *Model) VarName(v Var) string {
	return m.names[int(v)]
}

// AddObjective accumulates coef onto v's objective coefficient.
func (m *Model) AddObjective(v Var, coef float64) {
	m.obj[int(v)] += coef
}

// AddConstraint appends a named row. Rows with empty expressions are legal;
// they resolve to trivially satisfied or trivially violated at solve time.
func (m *Model) AddConstraint(name string, expr *LinExpr, sense Sense, rhs float64) {
	m.rows = append(m.rows, row{name: name, expr: expr, sense: sense, rhs: rhs})
}

// NumConstraints returns the number of named rows.
func (m *Model) NumConstraints() int {
	return len(m.rows)
}

// trivialViolations returns the names of rows with no variable terms whose
// constant side contradicts the row. Such rows make the model infeasible
// before any simplex runs.
func (m *Model) trivialViolations() []string {
	var out []string
	for _, r := range m.rows {
		if r.expr.Len() != 0 {
			continue
		}
		ok := true
		switch r.sense {
		case LessEq:
			ok = 0 <= r.rhs+feasTol
		case GreaterEq:
			ok = 0 >= r.rhs-feasTol
		case Equal:
			ok = math.Abs(r.rhs) <= feasTol
		}
		if !ok {
			out = append(out, r.name)
		}
	}
	return out
}

// Objective evaluates c·x for a full-length solution vector.
func (m *Model) Objective(x []float64) float64 {
	var sum float64
	for i, c := range m.obj {
		sum += c * x[i]
	}
	return sum
}

func (m *Model) String() string {
	return fmt.Sprintf("milp.Model{vars: %d, rows: %d}", len(m.names), len(m.rows))
}
