package preprocess

import (
	"testing"
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig shrinks the day to keep cases readable: 8 slots from 09:00,
// 1-hour meetings (2 slots), latest start slot 6.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.SlotsPerDay = 8
	cfg.MeetingSlots = 2
	cfg.LatestStartSlot = 6
	return cfg
}

func allSlots(code domain.AvailabilityCode, n int) map[int]domain.AvailabilityCode {
	m := make(map[int]domain.AvailabilityCode, n)
	for s := 0; s < n; s++ {
		m[s] = code
	}
	return m
}

func testBundle(gen time.Time) domain.Bundle {
	day := domain.Date(2026, time.May, 11)
	return domain.Bundle{
		Persons: map[string]domain.Person{
			"lead": {ID: "lead", Name: "Lead"},
			"c1":   {ID: "c1", Name: "C1", IsCommissioner: true, IsSeniorCommissioner: true},
		},
		Teams: map[string]domain.Team{
			"t1": {
				ID: "t1", Name: "Team One", LeaderID: "lead",
				MemberIDs:    map[string]bool{},
				Deadline:     day.AddDate(0, 0, 2),
				BaseRequired: 1,
			},
		},
		Avail: domain.AvailabilityMap{
			"lead": {
				day:                  allSlots(domain.AvailPreferred, 8),
				day.AddDate(0, 0, 1): allSlots(domain.AvailPreferred, 8),
			},
			"c1": {day: allSlots(domain.AvailPreferred, 8)},
		},
		GenerationStart: gen,
	}
}

func TestBuildCanAttend_UnavailableCellBlocksCoverage(t *testing.T) {
	cfg := testConfig()
	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	day := domain.Date(2026, time.May, 11)

	bundle := testBundle(grid.SlotStartTime(day, 0))
	// Slot 3 unavailable: start slots 2 and 3 are blocked, others fine.
	bundle.Avail["lead"][day][3] = domain.AvailUnavailable

	can := BuildCanAttend(bundle, cfg, grid)

	assert.True(t, can["lead"][day][0])
	assert.True(t, can["lead"][day][1])
	assert.False(t, can["lead"][day][2], "coverage [2,3] touches the unavailable cell")
	assert.False(t, can["lead"][day][3])
	assert.True(t, can["lead"][day][4])
}

func TestBuildCanAttend_UndecidedStillAttendable(t *testing.T) {
	cfg := testConfig()
	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	day := domain.Date(2026, time.May, 11)

	bundle := testBundle(grid.SlotStartTime(day, 0))
	bundle.Avail["lead"][day] = allSlots(domain.AvailUndecided, 8)

	can := BuildCanAttend(bundle, cfg, grid)
	for s := 0; s <= cfg.LatestStartSlot; s++ {
		assert.True(t, can["lead"][day][s], "undecided cells never block attendance, slot %d", s)
	}
}

func TestBuildOccupied_MarksAllParticipants(t *testing.T) {
	cfg := testConfig()
	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	day := domain.Date(2026, time.May, 11)

	bundle := testBundle(grid.SlotStartTime(day, 0))
	bundle.FixedMeetings = []domain.FixedMeeting{{
		TeamID: "t1", Day: day, StartSlot: 2, LeaderID: "lead",
		CommissionerIDs: [4]string{"c1", "c2", "c3", "c4"},
	}}

	occ := BuildOccupied(bundle, cfg, grid)

	for _, pid := range []string{"lead", "c1", "c2", "c3", "c4"} {
		assert.True(t, occ[pid][day][2], "%s slot 2", pid)
		assert.True(t, occ[pid][day][3], "%s slot 3", pid)
		assert.False(t, occ[pid][day][4], "%s slot 4 outside coverage", pid)
	}
}

func TestGenerateCandidates_WindowAndOrdering(t *testing.T) {
	cfg := testConfig()
	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	day := domain.Date(2026, time.May, 11)

	// Generation starts mid-day: slot 2 (10:00) onwards on day one.
	bundle := testBundle(grid.SlotStartTime(day, 2))

	res := Run(bundle, cfg, grid)
	cands := res.Candidates["t1"]
	require.NotEmpty(t, cands)

	// Day one candidates start no earlier than the generation time.
	for _, c := range cands {
		if c.Day.Equal(day) {
			assert.GreaterOrEqual(t, c.StartSlot, 2)
		}
		assert.LessOrEqual(t, c.StartSlot, cfg.LatestStartSlot)
		assert.False(t, c.Day.After(bundle.Teams["t1"].Deadline))
	}

	// Strictly increasing DtIdx.
	for i := 1; i < len(cands); i++ {
		assert.Less(t, cands[i-1].DtIdx, cands[i].DtIdx)
	}

	// Deadline day (day+2) has no availability data for the leader: skipped.
	for _, c := range cands {
		assert.False(t, c.Day.Equal(day.AddDate(0, 0, 2)), "no-data day must produce no candidates")
	}
}

func TestGenerateCandidates_FixedMeetingBlocksLeaderSlots(t *testing.T) {
	cfg := testConfig()
	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	day := domain.Date(2026, time.May, 11)

	bundle := testBundle(grid.SlotStartTime(day, 0))
	bundle.FixedMeetings = []domain.FixedMeeting{{
		TeamID: "t1", Day: day, StartSlot: 0, LeaderID: "lead",
		CommissionerIDs: [4]string{"c1", "c2", "c3", "c4"},
	}}

	res := Run(bundle, cfg, grid)

	for _, c := range res.Candidates["t1"] {
		if c.Day.Equal(day) {
			// Coverage [s, s+1] must avoid occupied slots 0 and 1.
			assert.GreaterOrEqual(t, c.StartSlot, 2, "start %d overlaps the fixed meeting", c.StartSlot)
		}
	}
}

func TestFixedByTeam_SortsChronologically(t *testing.T) {
	d1 := domain.Date(2026, time.May, 11)
	d2 := domain.Date(2026, time.May, 12)
	fixed := []domain.FixedMeeting{
		{TeamID: "t1", Day: d2, StartSlot: 0},
		{TeamID: "t1", Day: d1, StartSlot: 4},
		{TeamID: "t1", Day: d1, StartSlot: 1},
		{TeamID: "t2", Day: d1, StartSlot: 0},
	}

	by := FixedByTeam(fixed)

	require.Len(t, by["t1"], 3)
	assert.Equal(t, 1, by["t1"][0].StartSlot)
	assert.Equal(t, 4, by["t1"][1].StartSlot)
	assert.True(t, by["t1"][2].Day.Equal(d2))
	require.Len(t, by["t2"], 1)
}

func TestFixedAttendCounts(t *testing.T) {
	day := domain.Date(2026, time.May, 11)
	bundle := testBundle(domain.Grid{DayStartHour: 9, SlotMinutes: 30}.SlotStartTime(day, 0))
	bundle.FixedMeetings = []domain.FixedMeeting{
		{TeamID: "t1", Day: day, StartSlot: 0, LeaderID: "lead", CommissionerIDs: [4]string{"c1", "c2", "c3", "c4"}},
		{TeamID: "t1", Day: day, StartSlot: 4, LeaderID: "lead", CommissionerIDs: [4]string{"c1", "c5", "c6", "c7"}},
	}

	counts := FixedAttendCounts(bundle)

	assert.Equal(t, 2, counts["lead"])
	assert.Equal(t, 2, counts["c1"])
	assert.Equal(t, 1, counts["c2"])
	assert.Equal(t, 0, counts["missing"], "an id with no fixed attendance counts zero")
}
