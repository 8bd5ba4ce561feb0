// Package importer reads instance workbooks into the canonical input bundle
// and performs the integrity checks that gate a solve.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/plenum/internal/db"
	"github.com/alexanderramin/plenum/internal/domain"
)

const dateLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD day string into a normalized day.
func ParseDay(s, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q (expected YYYY-MM-DD)", field, s)
	}
	return domain.DayOf(t), nil
}

// ReadBundle loads persons, teams, availability, fixed meetings and add
// requests from an input workbook. Availability codes are normalized on the
// way in: 0 and out-of-range values read as unavailable.
func ReadBundle(ctx context.Context, database db.DBTX, generationStart time.Time) (domain.Bundle, error) {
	bundle := domain.Bundle{
		Persons:         map[string]domain.Person{},
		Teams:           map[string]domain.Team{},
		NameToPerson:    map[string]string{},
		NameToTeam:      map[string]string{},
		Avail:           domain.AvailabilityMap{},
		GenerationStart: generationStart,
	}

	if err := readPersons(ctx, database, &bundle); err != nil {
		return domain.Bundle{}, err
	}
	if err := readTeams(ctx, database, &bundle); err != nil {
		return domain.Bundle{}, err
	}
	if err := readAvailability(ctx, database, &bundle); err != nil {
		return domain.Bundle{}, err
	}
	if err := readFixedMeetings(ctx, database, &bundle); err != nil {
		return domain.Bundle{}, err
	}
	if err := applyAddRequests(ctx, database, &bundle); err != nil {
		return domain.Bundle{}, err
	}
	return bundle, nil
}

func readPersons(ctx context.Context, database db.DBTX, bundle *domain.Bundle) error {
	rows, err := database.QueryContext(ctx,
		`SELECT id, name, is_commissioner, is_senior_commissioner FROM persons`)
	if err != nil {
		return fmt.Errorf("reading persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.IsCommissioner, &p.IsSeniorCommissioner); err != nil {
			return fmt.Errorf("scanning person: %w", err)
		}
		bundle.Persons[p.ID] = p
		bundle.NameToPerson[p.Name] = p.ID
	}
	return rows.Err()
}

func readTeams(ctx context.Context, database db.DBTX, bundle *domain.Bundle) error {
	rows, err := database.QueryContext(ctx,
		`SELECT id, name, leader_id, deadline, base_required, add_required FROM teams`)
	if err != nil {
		return fmt.Errorf("reading teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Team
		var deadline string
		if err := rows.Scan(&t.ID, &t.Name, &t.LeaderID, &deadline, &t.BaseRequired, &t.AddRequired); err != nil {
			return fmt.Errorf("scanning team: %w", err)
		}
		day, err := ParseDay(deadline, fmt.Sprintf("teams[%s].deadline", t.ID))
		if err != nil {
			return err
		}
		t.Deadline = day
		t.MemberIDs = map[string]bool{}
		bundle.Teams[t.ID] = t
		bundle.NameToTeam[t.Name] = t.ID
	}
	if err := rows.Err(); err != nil {
		return err
	}

	members, err := database.QueryContext(ctx, `SELECT team_id, person_id FROM team_members`)
	if err != nil {
		return fmt.Errorf("reading team members: %w", err)
	}
	defer members.Close()

	for members.Next() {
		var tid, pid string
		if err := members.Scan(&tid, &pid); err != nil {
			return fmt.Errorf("scanning team member: %w", err)
		}
		team, ok := bundle.Teams[tid]
		if !ok {
			return fmt.Errorf("team_members references unknown team %q", tid)
		}
		team.MemberIDs[pid] = true
	}
	return members.Err()
}

func readAvailability(ctx context.Context, database db.DBTX, bundle *domain.Bundle) error {
	rows, err := database.QueryContext(ctx,
		`SELECT person_id, day, slot, code FROM availability`)
	if err != nil {
		return fmt.Errorf("reading availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid, dayStr string
		var slot, code int
		if err := rows.Scan(&pid, &dayStr, &slot, &code); err != nil {
			return fmt.Errorf("scanning availability: %w", err)
		}
		day, err := ParseDay(dayStr, "availability.day")
		if err != nil {
			return err
		}

		days, ok := bundle.Avail[pid]
		if !ok {
			days = map[time.Time]map[int]domain.AvailabilityCode{}
			bundle.Avail[pid] = days
		}
		slots, ok := days[day]
		if !ok {
			slots = map[int]domain.AvailabilityCode{}
			days[day] = slots
		}
		slots[slot] = domain.NormalizeAvailability(code)
	}
	return rows.Err()
}

func readFixedMeetings(ctx context.Context, database db.DBTX, bundle *domain.Bundle) error {
	rows, err := database.QueryContext(ctx,
		`SELECT team_id, day, start_slot, leader_id,
		        commissioner1, commissioner2, commissioner3, commissioner4,
		        COALESCE(meeting_no, 0)
		   FROM fixed_meetings
		  ORDER BY team_id, day, start_slot`)
	if err != nil {
		return fmt.Errorf("reading fixed meetings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fm domain.FixedMeeting
		var dayStr string
		if err := rows.Scan(&fm.TeamID, &dayStr, &fm.StartSlot, &fm.LeaderID,
			&fm.CommissionerIDs[0], &fm.CommissionerIDs[1],
			&fm.CommissionerIDs[2], &fm.CommissionerIDs[3], &fm.MeetingNo); err != nil {
			return fmt.Errorf("scanning fixed meeting: %w", err)
		}
		day, err := ParseDay(dayStr, "fixed_meetings.day")
		if err != nil {
			return err
		}
		fm.Day = day
		bundle.FixedMeetings = append(bundle.FixedMeetings, fm)
	}
	return rows.Err()
}

// applyAddRequests folds the add-request rows into each team's add_required.
func applyAddRequests(ctx context.Context, database db.DBTX, bundle *domain.Bundle) error {
	rows, err := database.QueryContext(ctx,
		`SELECT team_id, SUM(add_count) FROM add_requests GROUP BY team_id`)
	if err != nil {
		return fmt.Errorf("reading add requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tid string
		var count int
		if err := rows.Scan(&tid, &count); err != nil {
			return fmt.Errorf("scanning add request: %w", err)
		}
		team, ok := bundle.Teams[tid]
		if !ok {
			return fmt.Errorf("add_requests references unknown team %q", tid)
		}
		if count < 0 {
			return fmt.Errorf("add_requests for team %q sums negative (%d)", tid, count)
		}
		team.AddRequired += count
		bundle.Teams[tid] = team
	}
	return rows.Err()
}

// ReadPreviousResults appends the new meetings of an earlier solve's output
// database to the bundle as fixed meetings, so a follow-up run treats them
// as committed.
func ReadPreviousResults(ctx context.Context, database db.DBTX, bundle *domain.Bundle) error {
	rows, err := database.QueryContext(ctx,
		`SELECT team_id, day, start_slot, leader_id,
		        commissioner1, commissioner2, commissioner3, commissioner4, meeting_no
		   FROM result_meetings
		  WHERE source = 'new'
		  ORDER BY team_id, day, start_slot`)
	if err != nil {
		return fmt.Errorf("reading previous results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fm domain.FixedMeeting
		var dayStr string
		if err := rows.Scan(&fm.TeamID, &dayStr, &fm.StartSlot, &fm.LeaderID,
			&fm.CommissionerIDs[0], &fm.CommissionerIDs[1],
			&fm.CommissionerIDs[2], &fm.CommissionerIDs[3], &fm.MeetingNo); err != nil {
			return fmt.Errorf("scanning previous result: %w", err)
		}
		day, err := ParseDay(dayStr, "result_meetings.day")
		if err != nil {
			return err
		}
		fm.Day = day
		bundle.FixedMeetings = append(bundle.FixedMeetings, fm)
	}
	return rows.Err()
}
