package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// REST DAYS
// =============================================================================

func TestIsWeekendOrHoliday_SundayOnlyByDefault(t *testing.T) {
	cal := calendar.New()

	assert.True(t, cal.IsWeekendOrHoliday(date(t, "2025-06-08")), "sunday")
	assert.False(t, cal.IsWeekendOrHoliday(date(t, "2025-06-07")), "saturday is a working day")
	assert.False(t, cal.IsWeekendOrHoliday(date(t, "2025-06-04")), "wednesday")
	assert.True(t, cal.IsWeekendOrHoliday(date(t, "2026-05-01")), "holiday on a friday")
}

func TestIsWeekendOrHoliday_SaturdayPolicy(t *testing.T) {
	cal := calendar.New(calendar.WithRestPolicy(calendar.SaturdayAndSunday))

	assert.True(t, cal.IsWeekendOrHoliday(date(t, "2025-06-07")))
	assert.True(t, cal.IsWeekendOrHoliday(date(t, "2025-06-08")))
	assert.False(t, cal.IsWeekendOrHoliday(date(t, "2025-06-06")))
	assert.Equal(t, "saturday_and_sunday", cal.RestPolicy().String())
}

func TestIsBeforeWeekendOrHoliday(t *testing.T) {
	cal := calendar.New()

	assert.True(t, cal.IsBeforeWeekendOrHoliday(date(t, "2025-06-06")), "friday")
	assert.True(t, cal.IsBeforeWeekendOrHoliday(date(t, "2026-04-30")), "eve of Dia do Trabalho")
	assert.False(t, cal.IsBeforeWeekendOrHoliday(date(t, "2025-06-05")), "plain thursday")
	// Saturday is followed by Sunday, but only a holiday on the next day counts.
	assert.False(t, cal.IsBeforeWeekendOrHoliday(date(t, "2025-06-07")))
}

func TestIsTwoDaysBeforeWeekendOrHoliday_Identity(t *testing.T) {
	for _, cal := range []*calendar.Calendar{
		calendar.New(),
		calendar.New(calendar.WithRestPolicy(calendar.SaturdayAndSunday)),
		calendar.New(calendar.WithComputedMovable()),
	} {
		d := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2028, time.December, 31, 0, 0, 0, 0, time.UTC)
		for ; !d.After(end); d = d.AddDate(0, 0, 1) {
			want := cal.IsWeekendOrHoliday(d.AddDate(0, 0, 1)) || cal.IsWeekendOrHoliday(d.AddDate(0, 0, 2))
			if got := cal.IsTwoDaysBeforeWeekendOrHoliday(d); got != want {
				t.Fatalf("%s: got %v want %v", d.Format(domain.DateLayout), got, want)
			}
		}
	}
}

// =============================================================================
// RETURN DATE
// =============================================================================

func TestCalculateReturnDate(t *testing.T) {
	cases := []struct {
		start string
		days  int
		want  string
	}{
		{"2025-06-02", 0, "2025-06-02"},
		{"2025-06-02", 10, "2025-06-12"},
		{"2025-12-22", 30, "2026-01-21"},
		{"2028-02-20", 10, "2028-03-01"},
		// No business-day skipping, even across a holiday.
		{"2026-04-27", 4, "2026-05-01"},
	}
	for _, tc := range cases {
		got, err := calendar.CalculateReturnDate(tc.start, tc.days)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s + %d", tc.start, tc.days)
	}
}

func TestCalculateReturnDate_Additive(t *testing.T) {
	for _, start := range []string{"2024-02-27", "2025-12-30", "2026-06-01"} {
		for n := 0; n <= 45; n++ {
			direct, err := calendar.CalculateReturnDate(start, n)
			require.NoError(t, err)
			for k := 0; k <= n; k++ {
				mid, err := calendar.CalculateReturnDate(start, k)
				require.NoError(t, err)
				chained, err := calendar.CalculateReturnDate(mid, n-k)
				require.NoError(t, err)
				if chained != direct {
					t.Fatalf("%s: n=%d k=%d got %s want %s", start, n, k, chained, direct)
				}
			}
		}
	}
}

func TestCalculateReturnDate_InvalidStart(t *testing.T) {
	_, err := calendar.CalculateReturnDate("2025-13-01", 10)
	assert.Error(t, err)
}

// =============================================================================
// VACATION START RULE
// =============================================================================

func TestValidateVacationStart_ThursdayBeforeWeekend(t *testing.T) {
	thursday := date(t, "2025-06-05")

	// Saturday is a working day by default, so only Friday's start is blocked.
	literal := calendar.New()
	assert.NoError(t, literal.ValidateVacationStart(thursday))
	assert.Error(t, literal.ValidateVacationStart(date(t, "2025-06-06")))

	weekend := calendar.New(calendar.WithRestPolicy(calendar.SaturdayAndSunday))
	err := weekend.ValidateVacationStart(thursday)
	require.Error(t, err)

	var verr *domain.ErrValidation
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "start_date", verr.Field)
	assert.Contains(t, verr.Message, "2025-06-07")
}

func TestValidateVacationStart_WednesdayBeforeFridayHoliday(t *testing.T) {
	cal := calendar.New()

	err := cal.ValidateVacationStart(date(t, "2026-04-29"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Dia do Trabalho")
}

func TestValidateVacationStart_Accepted(t *testing.T) {
	cal := calendar.New(calendar.WithRestPolicy(calendar.SaturdayAndSunday))

	for _, iso := range []string{"2025-06-02", "2025-06-03", "2025-06-04"} {
		assert.NoError(t, cal.ValidateVacationStart(date(t, iso)), iso)
	}
}

func TestValidateVacationStart_AgreesWithPredicate(t *testing.T) {
	cal := calendar.New()
	d := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365; i++ {
		blocked := cal.IsTwoDaysBeforeWeekendOrHoliday(d)
		err := cal.ValidateVacationStart(d)
		assert.Equal(t, blocked, err != nil, d.Format(domain.DateLayout))
		d = d.AddDate(0, 0, 1)
	}
}

// =============================================================================
// MONTH VIEW
// =============================================================================

func TestMonth(t *testing.T) {
	cal := calendar.New()

	days := cal.Month(2026, time.May)
	require.Len(t, days, 31)

	first := days[0]
	assert.Equal(t, "2026-05-01", first.Date)
	assert.Equal(t, "Dia do Trabalho", first.Holiday)
	assert.True(t, first.RestDay)
	assert.True(t, first.EveOfRestDay, "friday")

	assert.Len(t, cal.Month(2028, time.February), 29)
}
