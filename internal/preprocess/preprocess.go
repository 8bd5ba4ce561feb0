// Package preprocess projects raw availability and pre-committed meetings
// into the candidate space the optimizer works on.
package preprocess

import (
	"sort"
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
)

// AttendMap is person -> day -> start slot -> can the person sit through a
// full meeting starting there.
type AttendMap map[string]map[time.Time]map[int]bool

// OccupiedMap is person -> day -> slot -> slot is taken by a fixed meeting.
type OccupiedMap map[string]map[time.Time]map[int]bool

// Result is everything the optimizer needs beyond the raw bundle.
type Result struct {
	Candidates  map[string][]domain.CandidateSlot
	CanAttend   AttendMap
	Occupied    OccupiedMap
	FixedByTeam map[string][]domain.FixedMeeting
	FixedAttend map[string]int
}

// Run derives the full preprocessing result for one bundle.
func Run(bundle domain.Bundle, cfg config.Config, grid domain.Grid) Result {
	can := BuildCanAttend(bundle, cfg, grid)
	occ := BuildOccupied(bundle, cfg, grid)
	return Result{
		Candidates:  GenerateCandidates(bundle, cfg, grid, can, occ),
		CanAttend:   can,
		Occupied:    occ,
		FixedByTeam: FixedByTeam(bundle.FixedMeetings),
		FixedAttend: FixedAttendCounts(bundle),
	}
}

// BuildCanAttend marks, for every person and day with availability data,
// the start slots whose full meeting coverage avoids unavailable cells.
func BuildCanAttend(bundle domain.Bundle, cfg config.Config, grid domain.Grid) AttendMap {
	out := make(AttendMap, len(bundle.Avail))
	for pid, days := range bundle.Avail {
		out[pid] = make(map[time.Time]map[int]bool, len(days))
		for day, slots := range days {
			row := make(map[int]bool, cfg.LatestStartSlot+1)
			for s := 0; s <= cfg.LatestStartSlot; s++ {
				ok := true
				for _, ss := range grid.SlotsCovered(s, cfg.MeetingSlots) {
					code, present := slots[ss]
					if !present {
						code = domain.AvailUnavailable
					}
					if !code.Usable() {
						ok = false
						break
					}
				}
				row[s] = ok
			}
			out[pid][day] = row
		}
	}
	return out
}

// BuildOccupied marks every slot covered by a fixed meeting for each of its
// participants.
func BuildOccupied(bundle domain.Bundle, cfg config.Config, grid domain.Grid) OccupiedMap {
	occ := make(OccupiedMap, len(bundle.Persons))
	for pid := range bundle.Persons {
		occ[pid] = make(map[time.Time]map[int]bool)
	}
	for _, fm := range bundle.FixedMeetings {
		for _, pid := range fm.Participants() {
			if occ[pid] == nil {
				occ[pid] = make(map[time.Time]map[int]bool)
			}
			day := occ[pid][fm.Day]
			if day == nil {
				day = make(map[int]bool, cfg.MeetingSlots)
				occ[pid][fm.Day] = day
			}
			for _, sl := range grid.SlotsCovered(fm.StartSlot, cfg.MeetingSlots) {
				if sl >= 0 && sl < cfg.SlotsPerDay {
					day[sl] = true
				}
			}
		}
	}
	return occ
}

// GenerateCandidates enumerates, per team, the (day, start slot) pairs the
// team's leader can hold a meeting at: inside the generation window, at or
// before the deadline, attendable, and not occupied by a fixed meeting.
// Days absent from the leader's availability map are skipped entirely.
// The result is sorted by DtIndex ascending.
func GenerateCandidates(
	bundle domain.Bundle,
	cfg config.Config,
	grid domain.Grid,
	can AttendMap,
	occ OccupiedMap,
) map[string][]domain.CandidateSlot {
	startDay := domain.DayOf(bundle.GenerationStart)
	startMinute := bundle.GenerationStart.Hour()*60 + bundle.GenerationStart.Minute()

	out := make(map[string][]domain.CandidateSlot, len(bundle.Teams))
	for tid, team := range bundle.Teams {
		leader := team.LeaderID
		cands := []domain.CandidateSlot{}

		for day := startDay; !day.After(team.Deadline); day = day.AddDate(0, 0, 1) {
			if !bundle.Avail.HasDay(leader, day) {
				continue
			}
			for s := 0; s <= cfg.LatestStartSlot; s++ {
				if day.Equal(startDay) && grid.SlotMinuteOfDay(s) < startMinute {
					continue
				}
				if !can[leader][day][s] {
					continue
				}
				if leaderOccupied(occ, leader, day, s, cfg, grid) {
					continue
				}
				cands = append(cands, domain.CandidateSlot{
					TeamID:    tid,
					Day:       day,
					StartSlot: s,
					DtIdx:     grid.DtIndex(day, s),
				})
			}
		}

		sort.Slice(cands, func(i, j int) bool { return cands[i].DtIdx < cands[j].DtIdx })
		out[tid] = cands
	}
	return out
}

func leaderOccupied(occ OccupiedMap, leader string, day time.Time, startSlot int, cfg config.Config, grid domain.Grid) bool {
	days, ok := occ[leader]
	if !ok {
		return false
	}
	slots, ok := days[day]
	if !ok {
		return false
	}
	for _, sl := range grid.SlotsCovered(startSlot, cfg.MeetingSlots) {
		if slots[sl] {
			return true
		}
	}
	return false
}
