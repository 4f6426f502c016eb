package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"
)

// ============================================================
// Calendário - feriados e regras de dia útil
// ============================================================

type holidaysResponse struct {
	Year       int                `json:"year"`
	RestPolicy string             `json:"restPolicy"`
	Holidays   []calendar.Holiday `json:"holidays"`
}

func holidaysHandler(cal *calendar.Calendar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := queryInt(r, "year", time.Now().Year())
		if err != nil || year < 1 || year > 9999 {
			writeError(w, http.StatusBadRequest, "ano inválido")
			return
		}
		holidays := cal.HolidaysInYear(year)
		if holidays == nil {
			holidays = []calendar.Holiday{}
		}
		writeJSON(w, http.StatusOK, holidaysResponse{
			Year:       year,
			RestPolicy: cal.RestPolicy().String(),
			Holidays:   holidays,
		})
	}
}

func calendarMonthHandler(cal *calendar.Calendar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().Format(service.MonthLayout)
		}
		t, err := time.Parse(service.MonthLayout, month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "mês inválido, use o formato AAAA-MM")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"month": month,
			"days":  cal.Month(t.Year(), t.Month()),
		})
	}
}

type vacationCheckResponse struct {
	Date    string `json:"date"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func validateVacationHandler(vacations *service.VacationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if _, err := calendar.ParseDate(date); err != nil {
			writeError(w, http.StatusBadRequest, "data inválida, use o formato AAAA-MM-DD")
			return
		}

		resp := vacationCheckResponse{Date: date, Valid: true}
		if err := vacations.ValidateStart(date); err != nil {
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			resp.Valid = false
			resp.Message = validation.Message
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func returnDateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		days, err := queryInt(r, "days", 0)
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "quantidade de dias inválida")
			return
		}
		end, err := calendar.CalculateReturnDate(start, days)
		if err != nil {
			writeError(w, http.StatusBadRequest, "data inválida, use o formato AAAA-MM-DD")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"start": start, "days": days, "returnDate": end})
	}
}
