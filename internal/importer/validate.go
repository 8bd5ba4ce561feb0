package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/plenum/internal/domain"
)

// Warning flags a suspicious but non-fatal condition in the input.
type Warning struct {
	Message string
}

// ValidateGenerationStart rejects a generation start in the past: the
// optimizer must never schedule before "now".
func ValidateGenerationStart(now, generationStart time.Time) error {
	if generationStart.Before(now) {
		return fmt.Errorf("generation start %s is in the past",
			generationStart.Format("2006-01-02 15:04"))
	}
	return nil
}

// ValidateBundle checks the bundle's integrity before the solver runs.
// Returns all errors found plus warnings for conditions the solve can
// survive. The engine assumes a bundle that passed with zero errors.
func ValidateBundle(bundle domain.Bundle, meetingSlots int) ([]Warning, []error) {
	var errs []error
	var warnings []Warning

	commissioners := bundle.Commissioners()
	if len(commissioners) < 4 {
		errs = append(errs, fmt.Errorf("only %d commissioners flagged; every meeting needs 4", len(commissioners)))
	}
	if len(bundle.Seniors()) < 2 {
		errs = append(errs, fmt.Errorf("fewer than 2 senior commissioners flagged; no meeting can satisfy the senior minimum"))
	}

	for tid, team := range bundle.Teams {
		if _, ok := bundle.Persons[team.LeaderID]; !ok {
			errs = append(errs, fmt.Errorf("team %s: leader %q not in persons", tid, team.LeaderID))
		}
		for pid := range team.MemberIDs {
			if _, ok := bundle.Persons[pid]; !ok {
				errs = append(errs, fmt.Errorf("team %s: member %q not in persons", tid, pid))
			}
		}
		if team.BaseRequired < 0 || team.AddRequired < 0 {
			errs = append(errs, fmt.Errorf("team %s: negative required counts", tid))
		}
	}

	for i, fm := range bundle.FixedMeetings {
		errs = append(errs, validateFixedMeeting(bundle, i, fm)...)
	}

	warnings = append(warnings, fixedDoubleBookingWarnings(bundle, meetingSlots)...)
	return warnings, errs
}

// validateFixedMeeting enforces the staffing rules strictly: fixed meetings
// are immutable, so a broken one can never be repaired by the solver.
func validateFixedMeeting(bundle domain.Bundle, idx int, fm domain.FixedMeeting) []error {
	var errs []error
	tag := fmt.Sprintf("fixed meeting %d (team %s)", idx+1, fm.TeamID)

	team, ok := bundle.Teams[fm.TeamID]
	if !ok {
		return []error{fmt.Errorf("%s: unknown team", tag)}
	}
	if fm.LeaderID != team.LeaderID {
		errs = append(errs, fmt.Errorf("%s: leader %q does not match team leader %q", tag, fm.LeaderID, team.LeaderID))
	}

	seen := map[string]bool{}
	seniors := 0
	for _, pid := range fm.CommissionerIDs {
		if seen[pid] {
			errs = append(errs, fmt.Errorf("%s: duplicate commissioner %q", tag, pid))
			continue
		}
		seen[pid] = true

		p, ok := bundle.Persons[pid]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: commissioner %q not in persons", tag, pid))
			continue
		}
		if !p.IsCommissioner {
			errs = append(errs, fmt.Errorf("%s: %q is not flagged as a commissioner", tag, pid))
		}
		if team.Conflicted(pid) {
			errs = append(errs, fmt.Errorf("%s: %q is in the team's conflict set", tag, pid))
		}
		if p.IsSeniorCommissioner {
			seniors++
		}
	}
	if seniors < 2 {
		errs = append(errs, fmt.Errorf("%s: only %d senior commissioners, need 2", tag, seniors))
	}
	return errs
}

// fixedDoubleBookingWarnings reports participants booked into overlapping
// fixed meetings. The solver cannot fix these, but the schedule may still be
// usable, so they stay warnings.
func fixedDoubleBookingWarnings(bundle domain.Bundle, meetingSlots int) []Warning {
	type cell struct {
		pid  string
		day  int
		slot int
	}
	seen := map[cell]int{}
	for _, fm := range bundle.FixedMeetings {
		for _, pid := range fm.Participants() {
			for s := fm.StartSlot; s < fm.StartSlot+meetingSlots; s++ {
				seen[cell{pid, domain.DayOrdinal(fm.Day), s}]++
			}
		}
	}

	reported := map[string]bool{}
	var warnings []Warning
	for c, count := range seen {
		if count < 2 || reported[c.pid] {
			continue
		}
		reported[c.pid] = true
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("person %s is double-booked across fixed meetings", c.pid),
		})
	}
	return warnings
}
