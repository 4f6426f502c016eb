package calendar

import (
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"github.com/rickar/cal/v2"
)

// Easter-derived holidays, used only when WithComputedMovable is set and
// the static table has no entry for the year.
var easterHolidays = []*cal.Holiday{
	{Name: "Carnaval", Type: cal.ObservancePublic, Offset: -48, Func: cal.CalcEasterOffset},
	{Name: "Carnaval", Type: cal.ObservancePublic, Offset: -47, Func: cal.CalcEasterOffset},
	{Name: "Sexta-feira Santa", Type: cal.ObservancePublic, Offset: -2, Func: cal.CalcEasterOffset},
	{Name: "Corpus Christi", Type: cal.ObservancePublic, Offset: 60, Func: cal.CalcEasterOffset},
}

func computedMovable(year int) []MovableHoliday {
	out := make([]MovableHoliday, 0, len(easterHolidays))
	for _, h := range easterHolidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		out = append(out, MovableHoliday{Date: actual.Format(domain.DateLayout), Name: h.Name})
	}
	return out
}
