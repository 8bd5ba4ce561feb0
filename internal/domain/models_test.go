package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAvailability(t *testing.T) {
	tests := []struct {
		raw  int
		want AvailabilityCode
	}{
		{0, AvailUnavailable},
		{1, AvailPreferred},
		{2, AvailTolerated},
		{3, AvailUndecided},
		{4, AvailUnavailable},
		{5, AvailUnavailable},
		{-1, AvailUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAvailability(tt.raw), "raw %d", tt.raw)
	}
}

func TestTeam_Conflicted(t *testing.T) {
	team := Team{
		ID:        "t1",
		LeaderID:  "lead",
		MemberIDs: map[string]bool{"m1": true, "m2": true},
	}

	assert.True(t, team.Conflicted("lead"), "leader is always conflicted")
	assert.True(t, team.Conflicted("m1"))
	assert.False(t, team.Conflicted("outsider"))
}

func TestAvailabilityMap_Code(t *testing.T) {
	day := Date(2026, time.April, 1)
	avail := AvailabilityMap{
		"p1": {day: {0: AvailPreferred, 1: AvailTolerated}},
	}

	assert.Equal(t, AvailPreferred, avail.Code("p1", day, 0))
	assert.Equal(t, AvailUnavailable, avail.Code("p1", day, 2), "missing slot reads unavailable")
	assert.Equal(t, AvailUnavailable, avail.Code("p2", day, 0), "missing person reads unavailable")
	assert.True(t, avail.HasDay("p1", day))
	assert.False(t, avail.HasDay("p1", Date(2026, time.April, 2)))
}

func TestBundle_Seniors_RequiresCommissionerFlag(t *testing.T) {
	b := Bundle{Persons: map[string]Person{
		"a": {ID: "a", IsCommissioner: true, IsSeniorCommissioner: true},
		"b": {ID: "b", IsCommissioner: true},
		"c": {ID: "c", IsSeniorCommissioner: true}, // senior without commissioner flag does not count
	}}

	assert.ElementsMatch(t, []string{"a"}, b.Seniors())
	assert.ElementsMatch(t, []string{"a", "b"}, b.Commissioners())
}
