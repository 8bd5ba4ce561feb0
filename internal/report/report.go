// Package report turns a solve result into human-readable tables and
// persists them to an output workbook.
package report

import (
	"sort"
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/preprocess"
)

// MeetingRow is one line of the merged meeting table, fixed and new alike.
type MeetingRow struct {
	Source          string // "fixed" or "new"
	TeamID          string
	TeamName        string
	Day             time.Time
	StartTime       string
	EndTime         string
	StartSlot       int
	LeaderID        string
	LeaderName      string
	CommissionerIDs [4]string
	SeniorCount     int
	MeetingNo       int
	HandoverName    string
}

// TeamSummaryRow aggregates one team's outcome.
type TeamSummaryRow struct {
	TeamName        string
	RequiredTotal   int
	DoneTotal       int
	NormalPlusOneOK bool
	FinishBufferOK  bool
}

// PersonSummaryRow aggregates one person's attendance.
type PersonSummaryRow struct {
	PersonName        string
	TotalAttend       int
	LeaderCount       int
	CommissionerCount int
}

// Tables is the full report for one solve.
type Tables struct {
	Meetings []MeetingRow
	Teams    []TeamSummaryRow
	Persons  []PersonSummaryRow
}

// Build assembles all three tables from the bundle and the solve result.
func Build(bundle domain.Bundle, result domain.SolveResult, cfg config.Config, grid domain.Grid) Tables {
	meetings := buildMeetingTable(bundle, result, cfg, grid)
	return Tables{
		Meetings: meetings,
		Teams:    buildTeamSummary(bundle, meetings),
		Persons:  buildPersonSummary(bundle, meetings),
	}
}

func personName(bundle domain.Bundle, pid string) string {
	if p, ok := bundle.Persons[pid]; ok && p.Name != "" {
		return p.Name
	}
	return pid
}

func buildMeetingTable(bundle domain.Bundle, result domain.SolveResult, cfg config.Config, grid domain.Grid) []MeetingRow {
	var rows []MeetingRow

	for tid, group := range preprocess.FixedByTeam(bundle.FixedMeetings) {
		team := bundle.Teams[tid]
		for i, fm := range group {
			no := fm.MeetingNo
			if no == 0 {
				no = i + 1
			}
			rows = append(rows, meetingRow("fixed", team, fm.Day, fm.StartSlot, fm.CommissionerIDs, no, "", bundle, cfg, grid))
		}
	}

	for _, m := range result.Meetings {
		team := bundle.Teams[m.TeamID]
		handover := ""
		if m.HandoverID != "" {
			handover = personName(bundle, m.HandoverID)
		}
		rows = append(rows, meetingRow("new", team, m.Day, m.StartSlot, m.CommissionerIDs, m.MeetingNo, handover, bundle, cfg, grid))
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TeamName != rows[j].TeamName {
			return rows[i].TeamName < rows[j].TeamName
		}
		if !rows[i].Day.Equal(rows[j].Day) {
			return rows[i].Day.Before(rows[j].Day)
		}
		if rows[i].StartSlot != rows[j].StartSlot {
			return rows[i].StartSlot < rows[j].StartSlot
		}
		return rows[i].Source < rows[j].Source
	})
	return rows
}

func meetingRow(
	source string,
	team domain.Team,
	day time.Time,
	startSlot int,
	comms [4]string,
	meetingNo int,
	handover string,
	bundle domain.Bundle,
	cfg config.Config,
	grid domain.Grid,
) MeetingRow {
	seniors := 0
	for _, pid := range comms {
		if bundle.Persons[pid].IsSeniorCommissioner {
			seniors++
		}
	}
	return MeetingRow{
		Source:          source,
		TeamID:          team.ID,
		TeamName:        team.Name,
		Day:             day,
		StartTime:       grid.SlotClock(startSlot),
		EndTime:         grid.MeetingEndClock(startSlot, cfg.MeetingSlots),
		StartSlot:       startSlot,
		LeaderID:        team.LeaderID,
		LeaderName:      personName(bundle, team.LeaderID),
		CommissionerIDs: comms,
		SeniorCount:     seniors,
		MeetingNo:       meetingNo,
		HandoverName:    handover,
	}
}

func buildTeamSummary(bundle domain.Bundle, meetings []MeetingRow) []TeamSummaryRow {
	var rows []TeamSummaryRow
	for _, tid := range sortedTeamIDs(bundle) {
		team := bundle.Teams[tid]
		done := 0
		var lastDay time.Time
		for _, m := range meetings {
			if m.TeamID != tid {
				continue
			}
			done++
			if m.Day.After(lastDay) {
				lastDay = m.Day
			}
		}

		finishOK := false
		if done > 0 {
			finishOK = !lastDay.After(team.Deadline.AddDate(0, 0, -1))
		}
		rows = append(rows, TeamSummaryRow{
			TeamName:        team.Name,
			RequiredTotal:   team.RequiredTotal(),
			DoneTotal:       done,
			NormalPlusOneOK: team.BaseRequired > 0 && done >= team.BaseRequired+1,
			FinishBufferOK:  finishOK,
		})
	}
	return rows
}

func buildPersonSummary(bundle domain.Bundle, meetings []MeetingRow) []PersonSummaryRow {
	type counts struct{ total, leader, comm int }
	byID := map[string]*counts{}
	for pid := range bundle.Persons {
		byID[pid] = &counts{}
	}
	for _, m := range meetings {
		if c, ok := byID[m.LeaderID]; ok {
			c.total++
			c.leader++
		}
		for _, pid := range m.CommissionerIDs {
			if c, ok := byID[pid]; ok {
				c.total++
				c.comm++
			}
		}
	}

	var pids []string
	for pid := range byID {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var rows []PersonSummaryRow
	for _, pid := range pids {
		c := byID[pid]
		rows = append(rows, PersonSummaryRow{
			PersonName:        personName(bundle, pid),
			TotalAttend:       c.total,
			LeaderCount:       c.leader,
			CommissionerCount: c.comm,
		})
	}
	return rows
}

func sortedTeamIDs(bundle domain.Bundle) []string {
	var ids []string
	for tid := range bundle.Teams {
		ids = append(ids, tid)
	}
	sort.Strings(ids)
	return ids
}
