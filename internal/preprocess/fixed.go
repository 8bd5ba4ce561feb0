package preprocess

import (
	"sort"

	"github.com/alexanderramin/plenum/internal/domain"
)

// FixedByTeam groups fixed meetings by team, each group in chronological
// order. The tail of a group is the seam the first new meeting hands over
// from.
func FixedByTeam(fixed []domain.FixedMeeting) map[string][]domain.FixedMeeting {
	by := make(map[string][]domain.FixedMeeting)
	for _, fm := range fixed {
		by[fm.TeamID] = append(by[fm.TeamID], fm)
	}
	for tid := range by {
		group := by[tid]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].Day.Equal(group[j].Day) {
				return group[i].Day.Before(group[j].Day)
			}
			return group[i].StartSlot < group[j].StartSlot
		})
	}
	return by
}

// FixedAttendCounts counts, per person, attendances across all fixed
// meetings (leader and each commissioner count once per meeting). These
// counts seed the load-balance accumulator.
func FixedAttendCounts(bundle domain.Bundle) map[string]int {
	counts := make(map[string]int, len(bundle.Persons))
	for pid := range bundle.Persons {
		counts[pid] = 0
	}
	for _, fm := range bundle.FixedMeetings {
		for _, pid := range fm.Participants() {
			counts[pid]++
		}
	}
	return counts
}
