package handler

import (
	"net/http"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Equipe - /v1/agents
// ============================================================

func listAgentsHandler(svc *service.TeamService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/agents")
		defer span.End()

		activeOnly := r.URL.Query().Get("active") == "true"
		agents, err := svc.List(ctx, SessionFromContext(ctx), activeOnly)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, agents)
	}
}

func getAgentHandler(svc *service.TeamService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/agents/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		agent, err := svc.Get(ctx, SessionFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func createAgentHandler(svc *service.TeamService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/agents")
		defer span.End()

		var agent domain.Agent
		if !decodeBody(w, r, &agent) {
			return
		}
		created, err := svc.Create(ctx, SessionFromContext(ctx), &agent)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateAgentHandler(svc *service.TeamService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/agents/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var u domain.AgentUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		updated, err := svc.Update(ctx, SessionFromContext(ctx), id, &u)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteAgentHandler(svc *service.TeamService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/agents/{id}")
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

// ============================================================
// Frota - /v1/vehicles
// ============================================================

func listVehiclesHandler(svc *service.FleetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vehicles")
		defer span.End()

		vehicles, err := svc.List(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, vehicles)
	}
}

func createVehicleHandler(svc *service.FleetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/vehicles")
		defer span.End()

		var v domain.Vehicle
		if !decodeBody(w, r, &v) {
			return
		}
		created, err := svc.Create(ctx, SessionFromContext(ctx), &v)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateVehicleHandler(svc *service.FleetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/vehicles/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var u domain.VehicleUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		updated, err := svc.Update(ctx, SessionFromContext(ctx), id, &u)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteVehicleHandler(svc *service.FleetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/vehicles/{id}")
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

func vehicleAvailabilityHandler(svc *service.FleetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vehicles/{id}/availability")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		exclude, ok := optionalUUID(w, r, "exclude")
		if !ok {
			return
		}
		date := r.URL.Query().Get("date")
		available, err := svc.Availability(ctx, SessionFromContext(ctx), id, date, exclude)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"vehicle_id": id, "date": date, "available": available})
	}
}

// ============================================================
// Agenda - /v1/appointments
// ============================================================

func listAppointmentsHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/appointments")
		defer span.End()

		from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
		appts, err := svc.List(ctx, SessionFromContext(ctx), from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func getAppointmentHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/appointments/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		appt, err := svc.Get(ctx, SessionFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func createAppointmentHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/appointments")
		defer span.End()

		var appt domain.Appointment
		if !decodeBody(w, r, &appt) {
			return
		}
		created, err := svc.Create(ctx, SessionFromContext(ctx), &appt)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateAppointmentHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/appointments/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var u domain.AppointmentUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		updated, err := svc.Update(ctx, SessionFromContext(ctx), id, &u)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func rescheduleAppointmentHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/appointments/{id}/reschedule")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req domain.RescheduleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.String("appointment.id", id))

		moved, err := svc.Reschedule(ctx, SessionFromContext(ctx), id, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, moved)
	}
}

func deleteAppointmentHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/appointments/{id}")
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
