package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/report"
)

// FormatMeetingTable renders the merged fixed-and-new meeting schedule.
func FormatMeetingTable(tables report.Tables) string {
	headers := []string{"Team", "No", "Date", "Start", "End", "Leader", "Commissioners", "Seniors", "Handover", "Source"}
	rows := make([][]string, 0, len(tables.Meetings))
	for _, m := range tables.Meetings {
		source := m.Source
		if source == "new" {
			source = StyleGreen.Render(source)
		} else {
			source = Dim(source)
		}
		rows = append(rows, []string{
			m.TeamName,
			strconv.Itoa(m.MeetingNo),
			m.Day.Format("2006-01-02"),
			m.StartTime,
			m.EndTime,
			m.LeaderName,
			strings.Join(m.CommissionerIDs[:], ", "),
			strconv.Itoa(m.SeniorCount),
			m.HandoverName,
			source,
		})
	}
	return RenderTable(headers, rows)
}

// FormatTeamSummary renders the per-team outcome table.
func FormatTeamSummary(tables report.Tables) string {
	headers := []string{"Team", "Required", "Done", "+1 Buffer", "Finish Buffer"}
	rows := make([][]string, 0, len(tables.Teams))
	for _, ts := range tables.Teams {
		rows = append(rows, []string{
			ts.TeamName,
			strconv.Itoa(ts.RequiredTotal),
			strconv.Itoa(ts.DoneTotal),
			yesNo(ts.NormalPlusOneOK),
			yesNo(ts.FinishBufferOK),
		})
	}
	return RenderTable(headers, rows)
}

// FormatPersonSummary renders per-person attendance counts.
func FormatPersonSummary(tables report.Tables) string {
	headers := []string{"Person", "Total", "As Leader", "As Commissioner"}
	rows := make([][]string, 0, len(tables.Persons))
	for _, ps := range tables.Persons {
		rows = append(rows, []string{
			ps.PersonName,
			strconv.Itoa(ps.TotalAttend),
			strconv.Itoa(ps.LeaderCount),
			strconv.Itoa(ps.CommissionerCount),
		})
	}
	return RenderTable(headers, rows)
}

// FormatStatus renders the one-line solve outcome.
func FormatStatus(result domain.SolveResult) string {
	line := StatusStyle(result.Status).Render(string(result.Status))
	if result.Feasible {
		return fmt.Sprintf("%s  %d new meetings, objective %.2f", line, len(result.Meetings), result.Objective)
	}
	if result.IISSummary != "" {
		return fmt.Sprintf("%s\n%s", line, Dim(result.IISSummary))
	}
	return line
}

func yesNo(b bool) string {
	if b {
		return StyleGreen.Render("yes")
	}
	return Dim("no")
}
