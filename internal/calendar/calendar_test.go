package calendar_test

import (
	"testing"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

// =============================================================================
// FIXED HOLIDAYS
// =============================================================================

func TestHolidayName_FixedHolidaysAnyYear(t *testing.T) {
	cal := calendar.New()

	cases := []struct {
		month, day int
		name       string
	}{
		{1, 1, "Confraternização Universal"},
		{4, 21, "Tiradentes"},
		{4, 23, "Dia de São Jorge"},
		{5, 1, "Dia do Trabalho"},
		{3, 16, "Aniversário de Petrópolis"},
		{6, 29, "São Pedro de Alcântara"},
		{9, 7, "Independência do Brasil"},
		{10, 12, "Nossa Senhora Aparecida"},
		{11, 2, "Finados"},
		{11, 15, "Proclamação da República"},
		{11, 20, "Dia Nacional de Zumbi e da Consciência Negra"},
		{12, 25, "Natal"},
	}

	for _, year := range []int{1999, 2024, 2026, 2051} {
		for _, tc := range cases {
			d := time.Date(year, time.Month(tc.month), tc.day, 0, 0, 0, 0, time.UTC)
			name, ok := cal.HolidayName(d)
			assert.True(t, ok, "%s should be a holiday", d.Format("2006-01-02"))
			assert.Equal(t, tc.name, name)
			assert.True(t, cal.IsHoliday(d))
		}
	}
}

func TestHolidayName_OrdinaryDay(t *testing.T) {
	cal := calendar.New()

	name, ok := cal.HolidayName(date(t, "2025-06-05"))
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestHolidayName_IgnoresTimeOfDayAndLocation(t *testing.T) {
	cal := calendar.New()
	loc := time.FixedZone("BRT", -3*60*60)

	late := time.Date(2025, time.December, 25, 23, 59, 0, 0, loc)
	assert.True(t, cal.IsHoliday(late))
}

func TestLookup_Category(t *testing.T) {
	cal := calendar.New()

	h, ok := cal.Lookup(date(t, "2026-04-23"))
	require.True(t, ok)
	assert.Equal(t, calendar.CategoryState, h.Category)

	h, ok = cal.Lookup(date(t, "2026-03-16"))
	require.True(t, ok)
	assert.Equal(t, calendar.CategoryMunicipal, h.Category)

	h, ok = cal.Lookup(date(t, "2026-04-03"))
	require.True(t, ok)
	assert.Equal(t, calendar.CategoryMovable, h.Category)
	assert.Equal(t, "Sexta-feira Santa", h.Name)
}

// =============================================================================
// MOVABLE HOLIDAYS
// =============================================================================

func TestMovable_PopulatedYears(t *testing.T) {
	cal := calendar.New()

	assert.Equal(t, []int{2024, 2025, 2026, 2027}, calendar.PopulatedYears())

	for _, iso := range []string{"2024-02-13", "2025-04-18", "2026-06-04", "2027-02-08"} {
		assert.True(t, cal.IsHoliday(date(t, iso)), iso)
	}
}

func TestMovable_UnpopulatedYearIsNotAHoliday(t *testing.T) {
	cal := calendar.New()

	// Good Friday 2028 is outside the static table.
	assert.False(t, cal.IsHoliday(date(t, "2028-04-14")))
}

func TestMovable_ComputedForMissingYears(t *testing.T) {
	cal := calendar.New(calendar.WithComputedMovable())

	cases := map[string]string{
		"2028-02-28": "Carnaval",
		"2028-02-29": "Carnaval",
		"2028-04-14": "Sexta-feira Santa",
		"2028-06-15": "Corpus Christi",
	}
	for iso, want := range cases {
		name, ok := cal.HolidayName(date(t, iso))
		assert.True(t, ok, iso)
		assert.Equal(t, want, name, iso)
	}
}

func TestWithMovable_OverridesYear(t *testing.T) {
	cal := calendar.New(calendar.WithMovable(2030, []calendar.MovableHoliday{
		{Date: "2030-04-19", Name: "Sexta-feira Santa"},
	}))

	assert.True(t, cal.IsHoliday(date(t, "2030-04-19")))
	assert.False(t, cal.IsHoliday(date(t, "2030-03-05")))
}

// =============================================================================
// YEAR LISTING
// =============================================================================

func TestHolidaysInYear_SortedAndUnique(t *testing.T) {
	cal := calendar.New()

	hs := cal.HolidaysInYear(2026)
	require.Len(t, hs, 16)

	seen := make(map[string]bool)
	for i, h := range hs {
		assert.False(t, seen[h.Date], "duplicate %s", h.Date)
		seen[h.Date] = true
		if i > 0 {
			assert.Less(t, hs[i-1].Date, h.Date)
		}
	}
	assert.Equal(t, "2026-01-01", hs[0].Date)
	assert.Equal(t, "2026-12-25", hs[len(hs)-1].Date)
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := calendar.ParseDate("05/06/2025")
	assert.Error(t, err)
}
