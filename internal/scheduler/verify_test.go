package scheduler

import (
	"sort"
	"testing"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verifySolution asserts every feasibility invariant over a solve result.
func verifySolution(t *testing.T, bundle domain.Bundle, cfg config.Config, result domain.SolveResult) {
	t.Helper()
	require.True(t, result.Feasible)

	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	fixedByTeam := preprocess.FixedByTeam(bundle.FixedMeetings)

	newByTeam := map[string][]domain.SolutionMeeting{}
	for _, m := range result.Meetings {
		newByTeam[m.TeamID] = append(newByTeam[m.TeamID], m)
	}

	// Required counts per team.
	for tid, team := range bundle.Teams {
		total := len(fixedByTeam[tid]) + len(newByTeam[tid])
		assert.GreaterOrEqual(t, total, team.RequiredTotal(), "team %s meeting count", tid)
	}

	genDay := domain.DayOf(bundle.GenerationStart)
	genMinute := bundle.GenerationStart.Hour()*60 + bundle.GenerationStart.Minute()

	for _, m := range result.Meetings {
		team := bundle.Teams[m.TeamID]

		// Staffing: four distinct flagged commissioners, two seniors, no conflicts.
		seen := map[string]bool{}
		seniors := 0
		for _, pid := range m.CommissionerIDs {
			assert.False(t, seen[pid], "duplicate commissioner %s", pid)
			seen[pid] = true
			p, ok := bundle.Persons[pid]
			require.True(t, ok, "unknown commissioner %s", pid)
			assert.True(t, p.IsCommissioner, "%s not flagged commissioner", pid)
			assert.False(t, team.Conflicted(pid), "%s conflicted with team %s", pid, m.TeamID)
			if p.IsSeniorCommissioner {
				seniors++
			}
		}
		assert.GreaterOrEqual(t, seniors, 2, "senior minimum on team %s", m.TeamID)
		assert.Equal(t, team.LeaderID, m.LeaderID)

		// Window bounds.
		assert.GreaterOrEqual(t, m.StartSlot, 0)
		assert.LessOrEqual(t, m.StartSlot, cfg.LatestStartSlot)
		assert.False(t, m.Day.After(team.Deadline), "meeting past deadline")
		assert.False(t, m.Day.Before(genDay))
		if m.Day.Equal(genDay) {
			assert.GreaterOrEqual(t, grid.SlotMinuteOfDay(m.StartSlot), genMinute)
		}
	}

	// No participant overlap across fixed and new meetings.
	type cell struct {
		pid       string
		day, slot int
	}
	seenCell := map[cell]bool{}
	occupy := func(pids []string, day int, startSlot int) {
		for _, pid := range pids {
			for _, sl := range grid.SlotsCovered(startSlot, cfg.MeetingSlots) {
				c := cell{pid, day, sl}
				assert.False(t, seenCell[c], "double booking %v", c)
				seenCell[c] = true
			}
		}
	}
	for _, fm := range bundle.FixedMeetings {
		occupy(fm.Participants(), domain.DayOrdinal(fm.Day), fm.StartSlot)
	}
	for _, m := range result.Meetings {
		occupy(m.Participants(), domain.DayOrdinal(m.Day), m.StartSlot)
	}

	// Per-team chain order and handover continuity.
	for tid := range bundle.Teams {
		newMs := append([]domain.SolutionMeeting(nil), newByTeam[tid]...)
		sort.Slice(newMs, func(i, j int) bool { return newMs[i].MeetingNo < newMs[j].MeetingNo })

		type stamp struct {
			day, slot int
		}
		var chain []stamp
		var commSets []map[string]bool
		for _, fm := range fixedByTeam[tid] {
			chain = append(chain, stamp{domain.DayOrdinal(fm.Day), fm.StartSlot})
			set := map[string]bool{}
			for _, pid := range fm.CommissionerIDs {
				set[pid] = true
			}
			commSets = append(commSets, set)
		}
		firstNew := len(chain)
		for i, m := range newMs {
			assert.Equal(t, len(fixedByTeam[tid])+i+1, m.MeetingNo, "sequence number continuity")
			chain = append(chain, stamp{domain.DayOrdinal(m.Day), m.StartSlot})
			set := map[string]bool{}
			for _, pid := range m.CommissionerIDs {
				set[pid] = true
			}
			commSets = append(commSets, set)
		}

		for i := 1; i < len(chain); i++ {
			prev, cur := chain[i-1], chain[i]
			assert.True(t, cur.day > prev.day || (cur.day == prev.day && cur.slot > prev.slot),
				"chain inversion in team %s at position %d", tid, i)
			if i >= firstNew { // handover applies to every new meeting with a predecessor
				shared := false
				for pid := range commSets[i] {
					if commSets[i-1][pid] {
						shared = true
						break
					}
				}
				assert.True(t, shared, "handover broken in team %s at position %d", tid, i)
			}
		}
	}
}
