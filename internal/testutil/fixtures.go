// Package testutil provides fixture builders and test databases shared by
// package tests.
package testutil

import (
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/domain"
)

// TinyConfig returns a configuration shrunk for fast solver tests: an
// 8-slot day, 1-hour meetings, latest start slot 2.
func TinyConfig() config.Config {
	cfg := config.Default()
	cfg.SlotsPerDay = 8
	cfg.MeetingSlots = 2
	cfg.LatestStartSlot = 2
	cfg.Solver.TimeLimitSec = 60
	cfg.Solver.Threads = 2
	return cfg
}

// BundleBuilder assembles domain.Bundle values for tests.
type BundleBuilder struct {
	bundle domain.Bundle
}

// NewBundle starts a builder with the given generation start.
func NewBundle(generationStart time.Time) *BundleBuilder {
	return &BundleBuilder{bundle: domain.Bundle{
		Persons:         map[string]domain.Person{},
		Teams:           map[string]domain.Team{},
		NameToPerson:    map[string]string{},
		NameToTeam:      map[string]string{},
		Avail:           domain.AvailabilityMap{},
		GenerationStart: generationStart,
	}}
}

// Person adds a plain person.
func (b *BundleBuilder) Person(id string) *BundleBuilder {
	b.bundle.Persons[id] = domain.Person{ID: id, Name: id}
	b.bundle.NameToPerson[id] = id
	return b
}

// Commissioner adds a commissioner; senior controls the senior flag.
func (b *BundleBuilder) Commissioner(id string, senior bool) *BundleBuilder {
	b.bundle.Persons[id] = domain.Person{ID: id, Name: id, IsCommissioner: true, IsSeniorCommissioner: senior}
	b.bundle.NameToPerson[id] = id
	return b
}

// Team adds a team. Members form the conflict set.
func (b *BundleBuilder) Team(id, leader string, deadline time.Time, base, add int, members ...string) *BundleBuilder {
	mm := map[string]bool{}
	for _, m := range members {
		mm[m] = true
	}
	b.bundle.Teams[id] = domain.Team{
		ID: id, Name: id, LeaderID: leader, MemberIDs: mm,
		Deadline: deadline, BaseRequired: base, AddRequired: add,
	}
	b.bundle.NameToTeam[id] = id
	return b
}

// Avail sets one availability cell.
func (b *BundleBuilder) Avail(pid string, day time.Time, slot int, code domain.AvailabilityCode) *BundleBuilder {
	days, ok := b.bundle.Avail[pid]
	if !ok {
		days = map[time.Time]map[int]domain.AvailabilityCode{}
		b.bundle.Avail[pid] = days
	}
	slots, ok := days[day]
	if !ok {
		slots = map[int]domain.AvailabilityCode{}
		days[day] = slots
	}
	slots[slot] = code
	return b
}

// AvailRange marks slots [from, to] with one code.
func (b *BundleBuilder) AvailRange(pid string, day time.Time, from, to int, code domain.AvailabilityCode) *BundleBuilder {
	for s := from; s <= to; s++ {
		b.Avail(pid, day, s, code)
	}
	return b
}

// Fixed appends a pre-committed meeting.
func (b *BundleBuilder) Fixed(team string, day time.Time, startSlot int, leader string, comms [4]string) *BundleBuilder {
	b.bundle.FixedMeetings = append(b.bundle.FixedMeetings, domain.FixedMeeting{
		TeamID: team, Day: day, StartSlot: startSlot, LeaderID: leader, CommissionerIDs: comms,
	})
	return b
}

// Build returns the assembled bundle.
func (b *BundleBuilder) Build() domain.Bundle {
	return b.bundle
}
