package domain

import (
	"fmt"
	"time"
)

// dtIndexStride must exceed any slots-per-day value so DtIndex stays monotone
// across day boundaries.
const dtIndexStride = 100

// Grid is the fixed discretization of the working day into uniform slots.
type Grid struct {
	DayStartHour int
	SlotsPerDay  int
	SlotMinutes  int
}

// NewGrid returns a grid with the standard 30-minute slot width.
func NewGrid(dayStartHour, slotsPerDay int) Grid {
	return Grid{DayStartHour: dayStartHour, SlotsPerDay: slotsPerDay, SlotMinutes: 30}
}

// SlotMinuteOfDay returns the wall-clock minute of day at the slot boundary.
func (g Grid) SlotMinuteOfDay(slot int) int {
	return g.DayStartHour*60 + slot*g.SlotMinutes
}

// SlotClock renders the slot boundary as "HH:MM".
func (g Grid) SlotClock(slot int) string {
	m := g.SlotMinuteOfDay(slot)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// MeetingEndClock renders the end time of a meeting of meetingSlots slots
// starting at startSlot.
func (g Grid) MeetingEndClock(startSlot, meetingSlots int) string {
	return g.SlotClock(startSlot + meetingSlots)
}

// SlotsCovered returns the slot indices a meeting of meetingSlots slots
// occupies when it starts at startSlot.
func (g Grid) SlotsCovered(startSlot, meetingSlots int) []int {
	out := make([]int, meetingSlots)
	for i := range out {
		out[i] = startSlot + i
	}
	return out
}

// DtIndex merges a day and a start slot into one monotone ordering key.
func (g Grid) DtIndex(day time.Time, startSlot int) int {
	return DayOrdinal(day)*dtIndexStride + startSlot
}

// SlotStartTime returns the full timestamp of the slot boundary on day,
// in day's location.
func (g Grid) SlotStartTime(day time.Time, slot int) time.Time {
	return day.Add(time.Duration(g.SlotMinuteOfDay(slot)) * time.Minute)
}
