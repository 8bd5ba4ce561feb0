package domain

import "time"

// Date returns d normalized to UTC midnight. All day-valued fields in this
// package are stored in that form so they can be used as map keys.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf truncates a timestamp to its UTC-midnight day.
func DayOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DayOrdinal returns a day-granular monotone integer for a normalized day.
func DayOrdinal(day time.Time) int {
	return int(day.Unix() / 86400)
}

type Person struct {
	ID                   string
	Name                 string
	IsCommissioner       bool
	IsSeniorCommissioner bool
}

type Team struct {
	ID           string
	Name         string
	LeaderID     string
	MemberIDs    map[string]bool
	Deadline     time.Time // normalized day
	BaseRequired int
	AddRequired  int
}

// Conflicted reports whether pid is in the team's conflict set.
// The leader is always conflicted, member or not.
func (t Team) Conflicted(pid string) bool {
	return pid == t.LeaderID || t.MemberIDs[pid]
}

// RequiredTotal is the number of meetings the team must hold by its deadline.
func (t Team) RequiredTotal() int {
	return t.BaseRequired + t.AddRequired
}

// FixedMeeting is a pre-committed meeting. It is never rewritten by a solve.
type FixedMeeting struct {
	TeamID          string
	Day             time.Time
	StartSlot       int
	LeaderID        string
	CommissionerIDs [4]string
	MeetingNo       int // 0 when the source did not number it
}

// Participants returns the leader followed by the four commissioners.
func (m FixedMeeting) Participants() []string {
	return append([]string{m.LeaderID}, m.CommissionerIDs[:]...)
}

// CandidateSlot is one (team, day, start slot) triple that passed every
// leader-side feasibility filter. DtIdx orders candidates across the horizon.
type CandidateSlot struct {
	TeamID    string
	Day       time.Time
	StartSlot int
	DtIdx     int
}

// SolutionMeeting is one newly scheduled meeting in a feasible solve result.
type SolutionMeeting struct {
	TeamID          string
	Day             time.Time
	StartSlot       int
	LeaderID        string
	CommissionerIDs [4]string
	MeetingNo       int    // 1-based within the team, counting the fixed prefix
	HandoverID      string // commissioner shared with the previous meeting, "" if none
}

// Participants returns the leader followed by the four commissioners.
func (m SolutionMeeting) Participants() []string {
	return append([]string{m.LeaderID}, m.CommissionerIDs[:]...)
}

// SolveResult is the engine's output. Meetings holds new meetings only;
// on Feasible == false it is empty.
type SolveResult struct {
	Feasible   bool
	Status     SolveStatus
	Meetings   []SolutionMeeting
	Objective  float64
	IISSummary string
}

// AvailabilityMap is person -> day -> slot -> code. Missing cells read as
// unavailable; a missing day means the person supplied no data for it.
type AvailabilityMap map[string]map[time.Time]map[int]AvailabilityCode

// Code looks up one cell, treating absence as unavailable.
func (a AvailabilityMap) Code(pid string, day time.Time, slot int) AvailabilityCode {
	if days, ok := a[pid]; ok {
		if slots, ok := days[day]; ok {
			if c, ok := slots[slot]; ok {
				return c
			}
		}
	}
	return AvailUnavailable
}

// HasDay reports whether the person supplied any availability row for day.
func (a AvailabilityMap) HasDay(pid string, day time.Time) bool {
	days, ok := a[pid]
	if !ok {
		return false
	}
	_, ok = days[day]
	return ok
}

// Bundle is the canonical immutable input to one solve invocation.
type Bundle struct {
	Persons map[string]Person
	Teams   map[string]Team

	// Display-name lookups carried through from ingest for reporting.
	NameToPerson map[string]string
	NameToTeam   map[string]string

	Avail         AvailabilityMap
	FixedMeetings []FixedMeeting

	GenerationStart time.Time // wall clock with timezone
}

// Commissioners returns the ids of all persons flagged as commissioners.
func (b Bundle) Commissioners() []string {
	var out []string
	for pid, p := range b.Persons {
		if p.IsCommissioner {
			out = append(out, pid)
		}
	}
	return out
}

// Seniors returns the ids of all senior commissioners. The senior flag only
// counts on persons that are commissioners as well.
func (b Bundle) Seniors() []string {
	var out []string
	for pid, p := range b.Persons {
		if p.IsCommissioner && p.IsSeniorCommissioner {
			out = append(out, pid)
		}
	}
	return out
}
