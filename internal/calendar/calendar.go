// Package calendar answers holiday and business-day questions used to
// validate vacation dates: which dates are holidays (national, state,
// municipal and movable), which are rest days, and when a vacation ends.
//
// All arithmetic is calendar-day arithmetic on dates normalised to
// midnight UTC. A Calendar is immutable after construction and safe for
// concurrent use.
package calendar

import (
	"fmt"
	"slices"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
)

// RestPolicy selects which weekdays are paid weekly rest days.
type RestPolicy int

const (
	// SundayOnly treats Saturday as a working day.
	SundayOnly RestPolicy = iota
	// SaturdayAndSunday treats the whole weekend as rest days.
	SaturdayAndSunday
)

func (p RestPolicy) String() string {
	if p == SaturdayAndSunday {
		return "saturday_and_sunday"
	}
	return "sunday_only"
}

// Holiday is a resolved holiday on a concrete date.
type Holiday struct {
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Calendar resolves holidays and rest days.
type Calendar struct {
	national  []HolidayEntry
	state     []HolidayEntry
	municipal []HolidayEntry
	movable   map[int][]MovableHoliday

	computeMovable bool
	restPolicy     RestPolicy
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithComputedMovable fills years missing from the movable table with
// Easter-derived dates instead of reporting no movable holidays.
func WithComputedMovable() Option {
	return func(c *Calendar) { c.computeMovable = true }
}

// WithRestPolicy overrides the default SundayOnly rest policy.
func WithRestPolicy(p RestPolicy) Option {
	return func(c *Calendar) { c.restPolicy = p }
}

// WithMovable adds or replaces the movable holidays of one year.
func WithMovable(year int, holidays []MovableHoliday) Option {
	return func(c *Calendar) { c.movable[year] = holidays }
}

// New builds a Calendar over the built-in holiday tables.
func New(opts ...Option) *Calendar {
	c := &Calendar{
		national:  nationalHolidays,
		state:     stateHolidays,
		municipal: municipalHolidays,
		movable:   make(map[int][]MovableHoliday, len(movableHolidays)),
	}
	for y, hs := range movableHolidays {
		c.movable[y] = hs
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RestPolicy returns the configured rest policy.
func (c *Calendar) RestPolicy() RestPolicy { return c.restPolicy }

// Normalize truncates t to its calendar date at midnight UTC, keeping the
// year, month and day t has in its own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date (yyyy-MM-dd).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected yyyy-MM-dd", s)
	}
	return t, nil
}

// IsHoliday reports whether date is a holiday.
func (c *Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.HolidayName(date)
	return ok
}

// HolidayName returns the name of the holiday on date. Fixed tables are
// checked first in national, state, municipal order using month and day
// only; then the movable table of date's year by full date.
func (c *Calendar) HolidayName(date time.Time) (string, bool) {
	h, ok := c.lookup(date)
	return h.Name, ok
}

// Lookup returns the holiday on date together with its category.
func (c *Calendar) Lookup(date time.Time) (Holiday, bool) {
	return c.lookup(date)
}

func (c *Calendar) lookup(date time.Time) (Holiday, bool) {
	d := Normalize(date)
	iso := d.Format(domain.DateLayout)
	month, day := int(d.Month()), d.Day()

	for _, table := range []struct {
		entries  []HolidayEntry
		category Category
	}{
		{c.national, CategoryNational},
		{c.state, CategoryState},
		{c.municipal, CategoryMunicipal},
	} {
		for _, h := range table.entries {
			if h.Month == month && h.Day == day {
				return Holiday{Date: iso, Name: h.Name, Category: table.category}, true
			}
		}
	}

	for _, h := range c.movableFor(d.Year()) {
		if h.Date == iso {
			return Holiday{Date: iso, Name: h.Name, Category: CategoryMovable}, true
		}
	}
	return Holiday{}, false
}

func (c *Calendar) movableFor(year int) []MovableHoliday {
	if hs, ok := c.movable[year]; ok {
		return hs
	}
	if c.computeMovable {
		return computedMovable(year)
	}
	return nil
}

// HolidaysInYear lists every holiday of a year in date order, one entry
// per date with the same priority as HolidayName.
func (c *Calendar) HolidaysInYear(year int) []Holiday {
	seen := make(map[string]bool)
	var out []Holiday

	add := func(d time.Time) {
		h, ok := c.lookup(d)
		if !ok || seen[h.Date] {
			return
		}
		seen[h.Date] = true
		out = append(out, h)
	}

	for _, table := range [][]HolidayEntry{c.national, c.state, c.municipal} {
		for _, h := range table {
			d := time.Date(year, time.Month(h.Month), h.Day, 0, 0, 0, 0, time.UTC)
			// Feb 29 style entries that roll over are not holidays that year.
			if int(d.Month()) != h.Month {
				continue
			}
			add(d)
		}
	}
	for _, h := range c.movableFor(year) {
		if d, err := ParseDate(h.Date); err == nil {
			add(d)
		}
	}

	slices.SortFunc(out, func(a, b Holiday) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return out
}
