package scheduler

import (
	"sort"

	"github.com/alexanderramin/plenum/internal/domain"
)

// reconstruct reads the solved variable vector back into solution meetings.
// A sequence slot with no placement is skipped; a slot whose commissioner
// count comes back sub-integral is dropped without touching the rest.
func (b *builder) reconstruct(x []float64) []domain.SolutionMeeting {
	var out []domain.SolutionMeeting

	for _, tid := range b.teamIDs {
		cands := b.pre.Candidates[tid]
		fixed := b.pre.FixedByTeam[tid]

		var prevComms map[string]bool
		if len(fixed) > 0 {
			last := fixed[len(fixed)-1]
			prevComms = make(map[string]bool, len(last.CommissionerIDs))
			for _, pid := range last.CommissionerIDs {
				prevComms[pid] = true
			}
		}

		for ki := range b.y[tid] {
			ci := b.chosenCandidate(x, tid, ki)
			if ci < 0 {
				continue
			}

			var comms []string
			for _, pid := range b.eligByCand[tid][ci] {
				if x[b.x[tid][ki][ci][pid]] > 0.5 {
					comms = append(comms, pid)
				}
			}
			sort.Strings(comms)
			if len(comms) > commissionersPerMeeting {
				comms = comms[:commissionersPerMeeting]
			}
			if len(comms) != commissionersPerMeeting {
				// Numerical reconstruction anomaly: drop this meeting only.
				continue
			}

			meeting := domain.SolutionMeeting{
				TeamID:          tid,
				Day:             cands[ci].Day,
				StartSlot:       cands[ci].StartSlot,
				LeaderID:        b.bundle.Teams[tid].LeaderID,
				CommissionerIDs: [4]string{comms[0], comms[1], comms[2], comms[3]},
				MeetingNo:       len(fixed) + ki + 1,
				HandoverID:      handoverPerson(comms, prevComms),
			}
			out = append(out, meeting)

			prevComms = make(map[string]bool, len(comms))
			for _, pid := range comms {
				prevComms[pid] = true
			}
		}
	}
	return out
}

// chosenCandidate returns the unique placed candidate index for a sequence
// slot, or -1 when the slot is unused.
func (b *builder) chosenCandidate(x []float64, tid string, ki int) int {
	for ci, yv := range b.y[tid][ki] {
		if x[yv] > 0.5 {
			return ci
		}
	}
	return -1
}

// handoverPerson picks the lowest-id commissioner shared with the previous
// meeting, or "" when there is no previous meeting or no overlap.
func handoverPerson(comms []string, prev map[string]bool) string {
	if prev == nil {
		return ""
	}
	for _, pid := range comms { // comms is sorted, first hit is lowest id
		if prev[pid] {
			return pid
		}
	}
	return ""
}
