package handler

import (
	"net/http"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Férias - /v1/vacations
// ============================================================

func listVacationsHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vacations")
		defer span.End()

		agentID, ok := optionalUUID(w, r, "agent_id")
		if !ok {
			return
		}
		year, err := queryInt(r, "year", 0)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		vacations, err := svc.List(ctx, SessionFromContext(ctx), agentID, year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if vacations == nil {
			vacations = []domain.Vacation{}
		}
		writeJSON(w, http.StatusOK, vacations)
	}
}

func getVacationHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vacations/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		v, err := svc.Get(ctx, SessionFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func createVacationHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/vacations")
		defer span.End()

		var req domain.VacationRequest
		if !decodeBody(w, r, &req) {
			return
		}
		created, err := svc.Create(ctx, SessionFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateVacationHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/vacations/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req domain.VacationRequest
		if !decodeBody(w, r, &req) {
			return
		}
		updated, err := svc.Update(ctx, SessionFromContext(ctx), id, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteVacationHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/vacations/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(ctx, SessionFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func vacationRemindersHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vacations/reminders")
		defer span.End()

		reminders, err := svc.Reminders(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if reminders == nil {
			reminders = []domain.VacationReminder{}
		}
		writeJSON(w, http.StatusOK, reminders)
	}
}

func onVacationHandler(svc *service.VacationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/agents/{id}/on-vacation")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().Format(domain.DateLayout)
		}
		on, err := svc.OnVacation(ctx, SessionFromContext(ctx), id, date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agent_id": id, "date": date, "on_vacation": on})
	}
}

// ============================================================
// Folgas e banco de horas
// ============================================================

func listTimeOffHandler(svc *service.TimeOffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/time-off")
		defer span.End()

		entries, err := svc.List(ctx, SessionFromContext(ctx), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if entries == nil {
			entries = []domain.TimeOff{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func createTimeOffHandler(svc *service.TimeOffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/time-off")
		defer span.End()

		var t domain.TimeOff
		if !decodeBody(w, r, &t) {
			return
		}
		created, err := svc.Create(ctx, SessionFromContext(ctx), &t)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func approveTimeOffHandler(svc *service.TimeOffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/time-off/{id}/approve")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var body struct {
			Approved bool `json:"approved"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		t, err := svc.Approve(ctx, SessionFromContext(ctx), id, body.Approved)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func deleteTimeOffHandler(svc *service.TimeOffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/time-off/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(ctx, SessionFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func upsertTimeBankHandler(svc *service.TimeOffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/time-bank")
		defer span.End()

		var e domain.TimeBankEntry
		if !decodeBody(w, r, &e) {
			return
		}
		if err := svc.UpsertTimeBank(ctx, SessionFromContext(ctx), &e); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "banco de horas atualizado"})
	}
}
