package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valDay = domain.Date(2026, time.June, 1)

func validBundle() *testutil.BundleBuilder {
	b := testutil.NewBundle(time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)).
		Person("lead").
		Commissioner("c1", true).
		Commissioner("c2", true).
		Commissioner("c3", false).
		Commissioner("c4", false).
		Team("t1", "lead", valDay.AddDate(0, 0, 4), 1, 0)
	return b
}

func TestValidateGenerationStart(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateGenerationStart(now, now.Add(time.Hour)))
	assert.NoError(t, ValidateGenerationStart(now, now))
	assert.Error(t, ValidateGenerationStart(now, now.Add(-time.Minute)))
}

func TestValidateBundle_CleanInputPasses(t *testing.T) {
	warnings, errs := ValidateBundle(validBundle().Build(), 4)
	assert.Empty(t, errs)
	assert.Empty(t, warnings)
}

func TestValidateBundle_CommissionerShortage(t *testing.T) {
	b := testutil.NewBundle(time.Now()).
		Person("lead").
		Commissioner("c1", true).
		Commissioner("c2", true).
		Commissioner("c3", false).
		Team("t1", "lead", valDay, 1, 0)

	_, errs := ValidateBundle(b.Build(), 4)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "commissioners")
}

func TestValidateBundle_SeniorShortage(t *testing.T) {
	b := testutil.NewBundle(time.Now()).
		Person("lead").
		Commissioner("c1", true).
		Commissioner("c2", false).
		Commissioner("c3", false).
		Commissioner("c4", false).
		Team("t1", "lead", valDay, 1, 0)

	_, errs := ValidateBundle(b.Build(), 4)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "senior")
}

func TestValidateBundle_UnknownReferences(t *testing.T) {
	b := validBundle().
		Team("t2", "ghost", valDay, 1, 0, "phantom")

	_, errs := ValidateBundle(b.Build(), 4)
	require.Len(t, errs, 2)
}

func TestValidateBundle_FixedMeetingViolations(t *testing.T) {
	tests := []struct {
		name  string
		comms [4]string
		wants string
	}{
		{"duplicate commissioner", [4]string{"c1", "c1", "c2", "c3"}, "duplicate"},
		{"conflicted member", [4]string{"c1", "c2", "c3", "m1"}, "conflict"},
		{"non-commissioner", [4]string{"c1", "c2", "c3", "civ"}, "not flagged"},
		{"senior shortage", [4]string{"c1", "c3", "c4", "c5"}, "senior"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle().
				Commissioner("c5", false).
				Commissioner("m1", false).
				Person("civ")
			// m1 joins the team's conflict set.
			b.Team("t1", "lead", valDay.AddDate(0, 0, 4), 1, 0, "m1")
			b.Fixed("t1", valDay, 0, "lead", tt.comms)

			_, errs := ValidateBundle(b.Build(), 4)
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wants) {
					found = true
					break
				}
			}
			assert.True(t, found, "no error mentioning %q in %v", tt.wants, errs)
		})
	}
}

func TestValidateBundle_LeaderMismatchOnFixed(t *testing.T) {
	b := validBundle().
		Person("other").
		Fixed("t1", valDay, 0, "other", [4]string{"c1", "c2", "c3", "c4"})

	_, errs := ValidateBundle(b.Build(), 4)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "does not match team leader")
}

func TestValidateBundle_DoubleBookingWarning(t *testing.T) {
	b := validBundle().
		Commissioner("c5", true).
		Commissioner("c6", true).
		Commissioner("c7", false).
		Person("lead2").
		Team("t2", "lead2", valDay.AddDate(0, 0, 4), 1, 0).
		Fixed("t1", valDay, 0, "lead", [4]string{"c1", "c2", "c3", "c4"}).
		Fixed("t2", valDay, 1, "lead2", [4]string{"c1", "c5", "c6", "c7"})

	warnings, errs := ValidateBundle(b.Build(), 4)
	assert.Empty(t, errs)
	require.NotEmpty(t, warnings, "c1 overlaps both fixed meetings")
	assert.Contains(t, warnings[0].Message, "double-booked")
}
