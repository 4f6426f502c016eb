package calendar

import (
	"fmt"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
)

// IsWeekendOrHoliday reports whether date is a paid rest day: a Sunday
// (plus Saturday under SaturdayAndSunday) or a holiday.
func (c *Calendar) IsWeekendOrHoliday(date time.Time) bool {
	return c.isRestWeekday(Normalize(date).Weekday()) || c.IsHoliday(date)
}

func (c *Calendar) isRestWeekday(wd time.Weekday) bool {
	if wd == time.Sunday {
		return true
	}
	return c.restPolicy == SaturdayAndSunday && wd == time.Saturday
}

// IsBeforeWeekendOrHoliday reports whether date is a Friday or the day
// right after it is a holiday.
func (c *Calendar) IsBeforeWeekendOrHoliday(date time.Time) bool {
	d := Normalize(date)
	return d.Weekday() == time.Friday || c.IsHoliday(d.AddDate(0, 0, 1))
}

// IsTwoDaysBeforeWeekendOrHoliday reports whether either of the two days
// after date is a rest day. Vacations may not start on such a date.
func (c *Calendar) IsTwoDaysBeforeWeekendOrHoliday(date time.Time) bool {
	d := Normalize(date)
	return c.IsWeekendOrHoliday(d.AddDate(0, 0, 1)) || c.IsWeekendOrHoliday(d.AddDate(0, 0, 2))
}

// CalculateReturnDate adds days calendar days to an ISO start date. No
// business-day skipping is applied.
func CalculateReturnDate(startDate string, days int) (string, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return "", err
	}
	return start.AddDate(0, 0, days).Format(domain.DateLayout), nil
}

// ValidateVacationStart returns a validation error when a vacation may
// not start on date.
func (c *Calendar) ValidateVacationStart(date time.Time) error {
	d := Normalize(date)
	for i := 1; i <= 2; i++ {
		next := d.AddDate(0, 0, i)
		if !c.IsWeekendOrHoliday(next) {
			continue
		}
		reason := "descanso semanal"
		if name, ok := c.HolidayName(next); ok {
			reason = "feriado: " + name
		}
		return &domain.ErrValidation{
			Field: "start_date",
			Message: fmt.Sprintf("férias não podem iniciar nos dois dias que antecedem descanso semanal ou feriado (%s em %s)",
				reason, next.Format(domain.DateLayout)),
		}
	}
	return nil
}

// DayInfo tags a date for the calendar view.
type DayInfo struct {
	Date                 string `json:"date"`
	Weekday              string `json:"weekday"`
	Holiday              string `json:"holiday,omitempty"`
	RestDay              bool   `json:"restDay"`
	EveOfRestDay         bool   `json:"eveOfRestDay"`
	VacationStartBlocked bool   `json:"vacationStartBlocked"`
}

// Tag describes date for the calendar view.
func (c *Calendar) Tag(date time.Time) DayInfo {
	d := Normalize(date)
	name, _ := c.HolidayName(d)
	return DayInfo{
		Date:                 d.Format(domain.DateLayout),
		Weekday:              d.Weekday().String(),
		Holiday:              name,
		RestDay:              c.IsWeekendOrHoliday(d),
		EveOfRestDay:         c.IsBeforeWeekendOrHoliday(d),
		VacationStartBlocked: c.IsTwoDaysBeforeWeekendOrHoliday(d),
	}
}

// Month tags every day of a month.
func (c *Calendar) Month(year int, month time.Month) []DayInfo {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := make([]DayInfo, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, c.Tag(d))
	}
	return days
}
