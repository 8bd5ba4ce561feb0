package report

import (
	"context"
	"fmt"

	"github.com/alexanderramin/plenum/internal/db"
)

// Store writes all three tables into an output workbook. The target tables
// are cleared first so re-running a solve into the same file replaces the
// previous report.
func Store(ctx context.Context, database db.DBTX, tables Tables) error {
	for _, table := range []string{"result_meetings", "result_team_summary", "result_person_summary"} {
		if _, err := database.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, m := range tables.Meetings {
		_, err := database.ExecContext(ctx,
			`INSERT INTO result_meetings (source, team_id, team_name, day, start_time, end_time,
				start_slot, leader_id, leader_name, commissioner1, commissioner2, commissioner3,
				commissioner4, senior_count, meeting_no, handover_person)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Source, m.TeamID, m.TeamName, m.Day.Format("2006-01-02"), m.StartTime, m.EndTime,
			m.StartSlot, m.LeaderID, m.LeaderName,
			m.CommissionerIDs[0], m.CommissionerIDs[1], m.CommissionerIDs[2], m.CommissionerIDs[3],
			m.SeniorCount, m.MeetingNo, m.HandoverName)
		if err != nil {
			return fmt.Errorf("writing meeting row: %w", err)
		}
	}

	for _, ts := range tables.Teams {
		_, err := database.ExecContext(ctx,
			`INSERT INTO result_team_summary (team_name, required_total, done_total,
				normal_plus_one_ok, finish_buffer_ok)
			 VALUES (?, ?, ?, ?, ?)`,
			ts.TeamName, ts.RequiredTotal, ts.DoneTotal, ts.NormalPlusOneOK, ts.FinishBufferOK)
		if err != nil {
			return fmt.Errorf("writing team summary row: %w", err)
		}
	}

	for _, ps := range tables.Persons {
		_, err := database.ExecContext(ctx,
			`INSERT INTO result_person_summary (person_name, total_attend, leader_count, commissioner_count)
			 VALUES (?, ?, ?, ?)`,
			ps.PersonName, ps.TotalAttend, ps.LeaderCount, ps.CommissionerCount)
		if err != nil {
			return fmt.Errorf("writing person summary row: %w", err)
		}
	}
	return nil
}
