package scheduler

import "github.com/alexanderramin/plenum/internal/domain"

// addObjective accumulates the soft-constraint cost onto the decision
// variables: availability discomfort for every participant, the deadline-day
// penalty approximating the finish buffer, the +1 buffer reward, and the
// minimax load term. The consecutive-day slack cost is attached where the
// slack variables are created.
func (b *builder) addObjective() {
	w := b.cfg.Weights

	for _, tid := range b.teamIDs {
		team := b.bundle.Teams[tid]
		cands := b.pre.Candidates[tid]
		for ki, ys := range b.y[tid] {
			for ci, c := range cands {
				coef := w.Availability * b.availabilityPenalty(team.LeaderID, c)
				if c.Day.Equal(team.Deadline) {
					coef += w.FinishBuffer
				}
				if coef != 0 {
					b.model.AddObjective(ys[ci], coef)
				}

				for _, pid := range b.eligByCand[tid][ci] {
					if pen := b.availabilityPenalty(pid, c); pen != 0 {
						b.model.AddObjective(b.x[tid][ki][ci][pid], w.Availability*pen)
					}
				}
			}
		}
	}

	for _, tid := range b.teamIDs {
		if buf, ok := b.bufOk[tid]; ok {
			// Reward enters the minimization negated.
			b.model.AddObjective(buf, -w.NormalPlusOne)
		}
	}

	b.model.AddObjective(b.loadMax, w.LoadBalance)
}

// availabilityPenalty sums the per-cell discomfort over a candidate's full
// coverage for one person. Unavailable cells contribute nothing here; they
// are excluded from eligibility instead.
func (b *builder) availabilityPenalty(pid string, c domain.CandidateSlot) float64 {
	var pen int
	for _, sl := range b.grid.SlotsCovered(c.StartSlot, b.cfg.MeetingSlots) {
		switch b.bundle.Avail.Code(pid, c.Day, sl) {
		case domain.AvailTolerated:
			pen += b.cfg.Penalties.Tolerated
		case domain.AvailUndecided:
			pen += b.cfg.Penalties.Undecided
		}
	}
	return float64(pen)
}
