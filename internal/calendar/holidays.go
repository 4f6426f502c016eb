package calendar

import "slices"

// HolidayEntry is a fixed-date holiday, observed every year on Month/Day.
type HolidayEntry struct {
	Month int
	Day   int
	Name  string
}

// MovableHoliday is a holiday whose date changes every year. Date is an
// ISO calendar date (yyyy-MM-dd).
type MovableHoliday struct {
	Date string
	Name string
}

// Category tells which table a holiday came from.
type Category string

const (
	CategoryNational  Category = "national"
	CategoryState     Category = "state"
	CategoryMunicipal Category = "municipal"
	CategoryMovable   Category = "movable"
)

var nationalHolidays = []HolidayEntry{
	{Month: 1, Day: 1, Name: "Confraternização Universal"},
	{Month: 4, Day: 21, Name: "Tiradentes"},
	{Month: 5, Day: 1, Name: "Dia do Trabalho"},
	{Month: 9, Day: 7, Name: "Independência do Brasil"},
	{Month: 10, Day: 12, Name: "Nossa Senhora Aparecida"},
	{Month: 11, Day: 2, Name: "Finados"},
	{Month: 11, Day: 15, Name: "Proclamação da República"},
	{Month: 11, Day: 20, Name: "Dia Nacional de Zumbi e da Consciência Negra"},
	{Month: 12, Day: 25, Name: "Natal"},
}

// Rio de Janeiro state.
var stateHolidays = []HolidayEntry{
	{Month: 4, Day: 23, Name: "Dia de São Jorge"},
}

// Petrópolis.
var municipalHolidays = []HolidayEntry{
	{Month: 3, Day: 16, Name: "Aniversário de Petrópolis"},
	{Month: 6, Day: 29, Name: "São Pedro de Alcântara"},
}

// movableHolidays must be extended every year by an operator. Years that
// are missing report no movable holidays unless computed holidays are
// enabled with WithComputedMovable.
var movableHolidays = map[int][]MovableHoliday{
	2024: {
		{Date: "2024-02-12", Name: "Carnaval"},
		{Date: "2024-02-13", Name: "Carnaval"},
		{Date: "2024-03-29", Name: "Sexta-feira Santa"},
		{Date: "2024-05-30", Name: "Corpus Christi"},
	},
	2025: {
		{Date: "2025-03-03", Name: "Carnaval"},
		{Date: "2025-03-04", Name: "Carnaval"},
		{Date: "2025-04-18", Name: "Sexta-feira Santa"},
		{Date: "2025-06-19", Name: "Corpus Christi"},
	},
	2026: {
		{Date: "2026-02-16", Name: "Carnaval"},
		{Date: "2026-02-17", Name: "Carnaval"},
		{Date: "2026-04-03", Name: "Sexta-feira Santa"},
		{Date: "2026-06-04", Name: "Corpus Christi"},
	},
	2027: {
		{Date: "2027-02-08", Name: "Carnaval"},
		{Date: "2027-02-09", Name: "Carnaval"},
		{Date: "2027-03-26", Name: "Sexta-feira Santa"},
		{Date: "2027-05-27", Name: "Corpus Christi"},
	},
}

// PopulatedYears lists the years covered by the static movable table.
func PopulatedYears() []int {
	years := make([]int, 0, len(movableHolidays))
	for y := range movableHolidays {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}
