package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/milp"
	"github.com/alexanderramin/plenum/internal/preprocess"
)

const commissionersPerMeeting = 4
const seniorsPerMeeting = 2

// builder assembles the MILP for one instance. Variable and constraint
// construction iterates sorted id lists throughout so the same bundle always
// produces the same model.
type builder struct {
	cfg    config.Config
	grid   domain.Grid
	bundle domain.Bundle
	pre    preprocess.Result
	model  *milp.Model

	teamIDs   []string
	personIDs []string

	fixedCount map[string]int
	kmax       map[string]int

	// eligByCand[t][ci] lists the commissioners assignable to candidate ci:
	// flagged, outside the conflict set, attendable over the full coverage,
	// and not occupied by a fixed meeting there.
	eligByCand map[string][][]string
	teamElig   map[string][]string

	y         map[string][][]milp.Var            // y[t][k-1][ci]
	x         map[string][][]map[string]milp.Var // x[t][k-1][ci][pid]
	z         map[string][]map[string]milp.Var   // z[t][k-2][pid]
	placedDay map[string]map[time.Time]milp.Var
	dayLists  map[string][]time.Time
	bufOk     map[string]milp.Var
	load      map[string]milp.Var
	loadMax   milp.Var
}

func newBuilder(cfg config.Config, grid domain.Grid, bundle domain.Bundle, pre preprocess.Result) *builder {
	b := &builder{
		cfg:        cfg,
		grid:       grid,
		bundle:     bundle,
		pre:        pre,
		model:      milp.NewModel(),
		fixedCount: make(map[string]int),
		kmax:       make(map[string]int),
		eligByCand: make(map[string][][]string),
		teamElig:   make(map[string][]string),
		y:          make(map[string][][]milp.Var),
		x:          make(map[string][][]map[string]milp.Var),
		z:          make(map[string][]map[string]milp.Var),
		placedDay:  make(map[string]map[time.Time]milp.Var),
		dayLists:   make(map[string][]time.Time),
		bufOk:      make(map[string]milp.Var),
		load:       make(map[string]milp.Var),
	}
	for tid := range bundle.Teams {
		b.teamIDs = append(b.teamIDs, tid)
	}
	sort.Strings(b.teamIDs)
	for pid := range bundle.Persons {
		b.personIDs = append(b.personIDs, pid)
	}
	sort.Strings(b.personIDs)
	return b
}

func (b *builder) build() {
	b.computeBudgets()
	b.createVariables()
	b.addPlacementConstraints()
	b.addStaffingConstraints()
	b.addDoubleBookingConstraints()
	b.addHandoverConstraints()
	b.addOrderingConstraints()
	b.addDayIndicatorConstraints()
	b.addBufferConstraints()
	b.addLoadConstraints()
	b.addObjective()
}

// computeBudgets derives, per team, the fixed count, the required number of
// new meetings, and the sequence-slot budget K (one extra slot when a base
// requirement exists, so the objective can reward a +1 buffer).
func (b *builder) computeBudgets() {
	for _, tid := range b.teamIDs {
		team := b.bundle.Teams[tid]
		f := len(b.pre.FixedByTeam[tid])
		need := max(0, team.RequiredTotal()-f)
		k := need
		if team.BaseRequired > 0 {
			k++
		}
		b.fixedCount[tid] = f
		b.kmax[tid] = k
	}
}

func (b *builder) createVariables() {
	for _, tid := range b.teamIDs {
		team := b.bundle.Teams[tid]
		cands := b.pre.Candidates[tid]
		k := b.kmax[tid]

		elig := make([][]string, len(cands))
		union := map[string]bool{}
		for ci, c := range cands {
			elig[ci] = b.eligibleFor(team, c)
			for _, pid := range elig[ci] {
				union[pid] = true
			}
		}
		b.eligByCand[tid] = elig
		b.teamElig[tid] = sortedKeys(union)

		ys := make([][]milp.Var, k)
		xs := make([][]map[string]milp.Var, k)
		for ki := 0; ki < k; ki++ {
			ys[ki] = make([]milp.Var, len(cands))
			xs[ki] = make([]map[string]milp.Var, len(cands))
			for ci := range cands {
				ys[ki][ci] = b.model.NewBinary(fmt.Sprintf("y[%s,%d,%d]", tid, ki+1, ci))
				xm := make(map[string]milp.Var, len(elig[ci]))
				for _, pid := range elig[ci] {
					xm[pid] = b.model.NewBinary(fmt.Sprintf("x[%s,%d,%d,%s]", tid, ki+1, ci, pid))
				}
				xs[ki][ci] = xm
			}
		}
		b.y[tid] = ys
		b.x[tid] = xs

		zs := make([]map[string]milp.Var, 0)
		for ki := 2; ki <= k; ki++ {
			zm := make(map[string]milp.Var, len(b.teamElig[tid]))
			for _, pid := range b.teamElig[tid] {
				zm[pid] = b.model.NewBinary(fmt.Sprintf("z[%s,%d,%s]", tid, ki, pid))
			}
			zs = append(zs, zm)
		}
		b.z[tid] = zs

		days := candidateDays(cands)
		b.dayLists[tid] = days
		if k > 0 {
			pd := make(map[time.Time]milp.Var, len(days))
			for _, d := range days {
				pd[d] = b.model.NewBinary(fmt.Sprintf("placed_day[%s,%s]", tid, d.Format("2006-01-02")))
			}
			b.placedDay[tid] = pd
		}

		if team.BaseRequired > 0 {
			b.bufOk[tid] = b.model.NewBinary(fmt.Sprintf("buf_ok[%s]", tid))
		}
	}

	for _, pid := range b.personIDs {
		b.load[pid] = b.model.NewInteger(fmt.Sprintf("w[%s]", pid))
	}
	b.loadMax = b.model.NewInteger("Wmax")
}

// eligibleFor returns the sorted commissioners assignable to one candidate.
// Eligibility folds in the hard side of availability: a commissioner whose
// coverage touches an unavailable cell, or who sits in a fixed meeting
// overlapping the candidate, is never assignable there.
func (b *builder) eligibleFor(team domain.Team, c domain.CandidateSlot) []string {
	var out []string
	for _, pid := range b.personIDs {
		p := b.bundle.Persons[pid]
		if !p.IsCommissioner || team.Conflicted(pid) {
			continue
		}
		if !b.pre.CanAttend[pid][c.Day][c.StartSlot] {
			continue
		}
		if b.occupiedOverlap(pid, c) {
			continue
		}
		out = append(out, pid)
	}
	return out
}

func (b *builder) occupiedOverlap(pid string, c domain.CandidateSlot) bool {
	days, ok := b.pre.Occupied[pid]
	if !ok {
		return false
	}
	slots, ok := days[c.Day]
	if !ok {
		return false
	}
	for _, sl := range b.grid.SlotsCovered(c.StartSlot, b.cfg.MeetingSlots) {
		if slots[sl] {
			return true
		}
	}
	return false
}

// addPlacementConstraints covers single placement per sequence slot, the
// required meeting count, and the one-meeting-per-day rule.
func (b *builder) addPlacementConstraints() {
	for _, tid := range b.teamIDs {
		team := b.bundle.Teams[tid]
		cands := b.pre.Candidates[tid]

		for ki, ys := range b.y[tid] {
			expr := milp.Expr()
			for _, v := range ys {
				expr.Add(v, 1)
			}
			b.model.AddConstraint(fmt.Sprintf("at_most_one_slot[%s,%d]", tid, ki+1), expr, milp.LessEq, 1)
		}

		required := milp.Expr()
		for _, ys := range b.y[tid] {
			for _, v := range ys {
				required.Add(v, 1)
			}
		}
		b.model.AddConstraint(fmt.Sprintf("required_count[%s]", tid), required, milp.GreaterEq,
			float64(team.RequiredTotal()-b.fixedCount[tid]))

		for _, d := range b.dayLists[tid] {
			expr := milp.Expr()
			for _, ys := range b.y[tid] {
				for ci, c := range cands {
					if c.Day.Equal(d) {
						expr.Add(ys[ci], 1)
					}
				}
			}
			if expr.Len() > 1 {
				b.model.AddConstraint(fmt.Sprintf("no_multi_same_day[%s,%s]", tid, d.Format("2006-01-02")),
					expr, milp.LessEq, 1)
			}
		}
	}
}

// addStaffingConstraints covers exact commissioner cardinality and the
// senior minimum for every placed meeting.
func (b *builder) addStaffingConstraints() {
	for _, tid := range b.teamIDs {
		elig := b.eligByCand[tid]
		for ki, ys := range b.y[tid] {
			for ci, yv := range ys {
				exact := milp.Expr()
				senior := milp.Expr()
				for _, pid := range elig[ci] {
					xv := b.x[tid][ki][ci][pid]
					exact.Add(xv, 1)
					if b.bundle.Persons[pid].IsSeniorCommissioner {
						senior.Add(xv, 1)
					}
				}
				exact.Add(yv, -float64(commissionersPerMeeting))
				b.model.AddConstraint(fmt.Sprintf("exact4[%s,%d,%d]", tid, ki+1, ci), exact, milp.Equal, 0)

				senior.Add(yv, -float64(seniorsPerMeeting))
				b.model.AddConstraint(fmt.Sprintf("senior2[%s,%d,%d]", tid, ki+1, ci), senior, milp.GreaterEq, 0)
			}
		}
	}
}

// addDoubleBookingConstraints forbids any person from participating in two
// new meetings whose coverages overlap. Overlap with fixed meetings is
// already impossible: occupied slots are excluded from leader candidates and
// from commissioner eligibility.
func (b *builder) addDoubleBookingConstraints() {
	type cell struct {
		pid  string
		day  int
		slot int
	}
	terms := make(map[cell]*milp.LinExpr)
	add := func(c cell, v milp.Var) {
		e, ok := terms[c]
		if !ok {
			e = milp.Expr()
			terms[c] = e
		}
		e.Add(v, 1)
	}

	for _, tid := range b.teamIDs {
		team := b.bundle.Teams[tid]
		cands := b.pre.Candidates[tid]
		for ki, ys := range b.y[tid] {
			for ci, c := range cands {
				for _, sl := range b.grid.SlotsCovered(c.StartSlot, b.cfg.MeetingSlots) {
					dayOrd := domain.DayOrdinal(c.Day)
					add(cell{team.LeaderID, dayOrd, sl}, ys[ci])
					for _, pid := range b.eligByCand[tid][ci] {
						add(cell{pid, dayOrd, sl}, b.x[tid][ki][ci][pid])
					}
				}
			}
		}
	}

	keys := make([]cell, 0, len(terms))
	for c := range terms {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pid != keys[j].pid {
			return keys[i].pid < keys[j].pid
		}
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].slot < keys[j].slot
	})
	for _, c := range keys {
		expr := terms[c]
		if expr.Len() < 2 {
			continue
		}
		b.model.AddConstraint(fmt.Sprintf("no_double_booking[%s,%d,%d]", c.pid, c.day, c.slot),
			expr, milp.LessEq, 1)
	}
}

// addHandoverConstraints links consecutive meetings through a shared
// commissioner: the first new meeting hands over from the last fixed one
// when a fixed prefix exists, and later new meetings hand over through the
// z intersection variables.
func (b *builder) addHandoverConstraints() {
	for _, tid := range b.teamIDs {
		cands := b.pre.Candidates[tid]
		fixed := b.pre.FixedByTeam[tid]
		k := b.kmax[tid]
		if k == 0 || len(cands) == 0 {
			continue
		}

		if len(fixed) > 0 {
			last := fixed[len(fixed)-1]
			prev := map[string]bool{}
			for _, pid := range last.CommissionerIDs {
				prev[pid] = true
			}
			expr := milp.Expr()
			for ci := range cands {
				for _, pid := range b.eligByCand[tid][ci] {
					if prev[pid] {
						expr.Add(b.x[tid][0][ci][pid], 1)
					}
				}
				expr.Add(b.y[tid][0][ci], -1)
			}
			b.model.AddConstraint(fmt.Sprintf("handover_fixed_to_new[%s]", tid), expr, milp.GreaterEq, 0)
		}

		for ki := 2; ki <= k; ki++ {
			zm := b.z[tid][ki-2]
			presence := milp.Expr()
			for _, pid := range b.teamElig[tid] {
				zv := zm[pid]

				cur := milp.Expr().Add(zv, -1)
				prevE := milp.Expr().Add(zv, -1)
				for ci := range cands {
					if xv, ok := b.x[tid][ki-1][ci][pid]; ok {
						cur.Add(xv, 1)
					}
					if xv, ok := b.x[tid][ki-2][ci][pid]; ok {
						prevE.Add(xv, 1)
					}
				}
				b.model.AddConstraint(fmt.Sprintf("z_le_cur[%s,%d,%s]", tid, ki, pid), cur, milp.GreaterEq, 0)
				b.model.AddConstraint(fmt.Sprintf("z_le_prev[%s,%d,%s]", tid, ki, pid), prevE, milp.GreaterEq, 0)

				presence.Add(zv, 1)
			}
			for _, yv := range b.y[tid][ki-1] {
				presence.Add(yv, -1)
			}
			b.model.AddConstraint(fmt.Sprintf("handover_new_to_new[%s,%d]", tid, ki), presence, milp.GreaterEq, 0)
		}
	}
}

// addOrderingConstraints forbids index inversion between consecutive
// sequence slots. Candidates are sorted by DtIndex, so forbidding every
// (cur <= prev) pair forces each placed meeting strictly later than the one
// before it.
func (b *builder) addOrderingConstraints() {
	for _, tid := range b.teamIDs {
		n := len(b.pre.Candidates[tid])
		for ki := 2; ki <= b.kmax[tid]; ki++ {
			for cur := 0; cur < n; cur++ {
				for prev := cur; prev < n; prev++ {
					expr := milp.Expr().
						Add(b.y[tid][ki-1][cur], 1).
						Add(b.y[tid][ki-2][prev], 1)
					b.model.AddConstraint(fmt.Sprintf("order[%s,%d,%d,%d]", tid, ki, cur, prev),
						expr, milp.LessEq, 1)
				}
			}
		}
	}
}

// addDayIndicatorConstraints ties placed_day to the candidate placements on
// each day: zero when nothing is placed, one when anything is.
func (b *builder) addDayIndicatorConstraints() {
	for _, tid := range b.teamIDs {
		pd, ok := b.placedDay[tid]
		if !ok {
			continue
		}
		cands := b.pre.Candidates[tid]
		k := float64(b.kmax[tid])

		for _, d := range b.dayLists[tid] {
			var dayVars []milp.Var
			for _, ys := range b.y[tid] {
				for ci, c := range cands {
					if c.Day.Equal(d) {
						dayVars = append(dayVars, ys[ci])
					}
				}
			}

			// K * placed_day >= sum(y on day)
			lb := milp.Expr().Add(pd[d], k)
			for _, v := range dayVars {
				lb.Add(v, -1)
			}
			b.model.AddConstraint(fmt.Sprintf("placed_day_lb[%s,%s]", tid, d.Format("2006-01-02")),
				lb, milp.GreaterEq, 0)

			// placed_day <= sum(y on day)
			ub := milp.Expr().Add(pd[d], -1)
			for _, v := range dayVars {
				ub.Add(v, 1)
			}
			b.model.AddConstraint(fmt.Sprintf("placed_day_ub[%s,%s]", tid, d.Format("2006-01-02")),
				ub, milp.GreaterEq, 0)
		}

		// Consecutive-day slack: v >= placed(d) + placed(d+1) - 1.
		daySet := make(map[time.Time]bool, len(b.dayLists[tid]))
		for _, d := range b.dayLists[tid] {
			daySet[d] = true
		}
		for _, d := range b.dayLists[tid] {
			next := d.AddDate(0, 0, 1)
			if !daySet[next] {
				continue
			}
			v := b.model.NewContinuous(fmt.Sprintf("v_consecutive[%s,%s]", tid, d.Format("2006-01-02")))
			b.model.AddObjective(v, b.cfg.Weights.GapRule)
			expr := milp.Expr().Add(v, 1).Add(pd[d], -1).Add(pd[next], -1)
			b.model.AddConstraint(fmt.Sprintf("v_consecutive_c[%s,%s]", tid, d.Format("2006-01-02")),
				expr, milp.GreaterEq, -1)
		}
	}
}

// addBufferConstraints links buf_ok to "total meetings >= base + 1" with a
// big-M on both sides.
func (b *builder) addBufferConstraints() {
	for _, tid := range b.teamIDs {
		buf, ok := b.bufOk[tid]
		if !ok {
			continue
		}
		team := b.bundle.Teams[tid]
		f := b.fixedCount[tid]
		m := float64(f + b.kmax[tid])

		// total >= base+1 - M(1-buf)   <=>   sum(y) - M*buf >= base+1-f-M
		on := milp.Expr().Add(buf, -m)
		// total <= base + M*buf        <=>   sum(y) - M*buf <= base-f
		off := milp.Expr().Add(buf, -m)
		for _, ys := range b.y[tid] {
			for _, v := range ys {
				on.Add(v, 1)
				off.Add(v, 1)
			}
		}
		b.model.AddConstraint(fmt.Sprintf("buf_ok_on[%s]", tid), on, milp.GreaterEq,
			float64(team.BaseRequired+1-f)-m)
		b.model.AddConstraint(fmt.Sprintf("buf_ok_off[%s]", tid), off, milp.LessEq,
			float64(team.BaseRequired-f))
	}
}

// addLoadConstraints defines each person's attendance accumulator and the
// minimax envelope over all of them.
func (b *builder) addLoadConstraints() {
	for _, pid := range b.personIDs {
		expr := milp.Expr().Add(b.load[pid], 1)
		for _, tid := range b.teamIDs {
			team := b.bundle.Teams[tid]
			for ki, ys := range b.y[tid] {
				for ci := range b.pre.Candidates[tid] {
					if team.LeaderID == pid {
						expr.Add(ys[ci], -1)
					}
					if xv, ok := b.x[tid][ki][ci][pid]; ok {
						expr.Add(xv, -1)
					}
				}
			}
		}
		b.model.AddConstraint(fmt.Sprintf("w_def[%s]", pid), expr, milp.Equal,
			float64(b.pre.FixedAttend[pid]))

		envelope := milp.Expr().Add(b.loadMax, 1).Add(b.load[pid], -1)
		b.model.AddConstraint(fmt.Sprintf("Wmax_ge[%s]", pid), envelope, milp.GreaterEq, 0)
	}
}

func candidateDays(cands []domain.CandidateSlot) []time.Time {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, c := range cands {
		if !seen[c.Day] {
			seen[c.Day] = true
			days = append(days, c.Day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
