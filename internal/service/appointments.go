package service

import (
	"context"
	"strings"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var appointmentTracer = otel.Tracer("service/appointments")

const rollbackTimeout = 10 * time.Second

// AppointmentService manages field visits on the calendar.
type AppointmentService struct {
	store    port.AppointmentStore
	vehicles port.VehicleStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewAppointmentService creates an appointment service.
func NewAppointmentService(store port.AppointmentStore, vehicles port.VehicleStore, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{store: store, vehicles: vehicles, logger: logger, now: time.Now}
}

func (s *AppointmentService) List(ctx context.Context, sess *domain.Session, from, to string) ([]domain.Appointment, error) {
	if err := access.Allow(sess, access.CanAccessCalendar, "ver agenda"); err != nil {
		return nil, err
	}
	for field, v := range map[string]string{"from": from, "to": to} {
		if v == "" {
			continue
		}
		if _, err := calendar.ParseDate(v); err != nil {
			return nil, &domain.ErrValidation{Field: field, Message: "data inválida"}
		}
	}
	ctx, span := appointmentTracer.Start(ctx, "AppointmentService.List")
	defer span.End()

	return s.store.ListAppointments(ctx, from, to)
}

func (s *AppointmentService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Appointment, error) {
	if err := access.Allow(sess, access.CanAccessCalendar, "ver agenda"); err != nil {
		return nil, err
	}
	ctx, span := appointmentTracer.Start(ctx, "AppointmentService.Get")
	defer span.End()

	return s.store.GetAppointment(ctx, id)
}

// Create stores an appointment and its agent assignment.
func (s *AppointmentService) Create(ctx context.Context, sess *domain.Session, a *domain.Appointment) (*domain.Appointment, error) {
	if err := access.Allow(sess, access.CanEditCalendar, "editar agenda"); err != nil {
		return nil, err
	}
	ctx, span := appointmentTracer.Start(ctx, "AppointmentService.Create")
	defer span.End()

	a.Title = strings.TrimSpace(a.Title)
	a.City = strings.TrimSpace(a.City)
	if a.Status == "" {
		a.Status = domain.StatusScheduled
	}
	if a.ExpenseStatus == "" {
		a.ExpenseStatus = domain.ExpenseDoNotSeparate
	}
	if a.VehicleID != nil && *a.VehicleID == "" {
		a.VehicleID = nil
	}
	if err := validateAppointment(a); err != nil {
		return nil, err
	}
	if a.VehicleID != nil {
		if err := s.ensureVehicleFree(ctx, *a.VehicleID, a.Date, ""); err != nil {
			return nil, err
		}
	}

	created, err := s.store.CreateAppointment(ctx, a)
	if err != nil {
		return nil, err
	}
	if len(a.AgentIDs) > 0 {
		if err := s.store.SetAppointmentAgents(ctx, created.ID, a.AgentIDs); err != nil {
			s.rollbackCreate(created.ID, err)
			return nil, err
		}
		created.AgentIDs = a.AgentIDs
	}

	s.logger.Info("appointment created",
		zap.String("appointment_id", created.ID),
		zap.String("date", created.Date),
		zap.Int("agents", len(created.AgentIDs)),
	)
	return created, nil
}

// Update applies a partial update. Status changes must follow the
// appointment state machine.
func (s *AppointmentService) Update(ctx context.Context, sess *domain.Session, id string, u *domain.AppointmentUpdate) (*domain.Appointment, error) {
	if err := access.Allow(sess, access.CanEditCalendar, "editar agenda"); err != nil {
		return nil, err
	}
	ctx, span := appointmentTracer.Start(ctx, "AppointmentService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	current, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	fields := map[string]any{}
	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
		fields["title"] = next.Title
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.City != nil {
		next.City = strings.TrimSpace(*u.City)
		fields["city"] = next.City
	}
	if u.Date != nil {
		next.Date = *u.Date
		fields["date"] = next.Date
	}
	if u.Time != nil {
		fields["time"] = *u.Time
	}
	if u.Status != nil {
		if !current.Status.CanTransition(*u.Status) {
			return nil, &domain.ErrValidation{
				Field:   "status",
				Message: "transição de status inválida: " + string(current.Status) + " → " + string(*u.Status),
			}
		}
		next.Status = *u.Status
		fields["status"] = next.Status
	}
	if u.ExpenseStatus != nil {
		next.ExpenseStatus = *u.ExpenseStatus
		fields["expense_status"] = next.ExpenseStatus
	}
	if u.VehicleID != nil {
		if *u.VehicleID == "" {
			next.VehicleID = nil
			fields["vehicle_id"] = nil
		} else {
			next.VehicleID = u.VehicleID
			fields["vehicle_id"] = *u.VehicleID
		}
	}
	if u.Penalized != nil {
		fields["penalized"] = *u.Penalized
	}
	if err := validateAppointment(&next); err != nil {
		return nil, err
	}

	vehicleMoved := u.VehicleID != nil || u.Date != nil
	if vehicleMoved && next.VehicleID != nil {
		if err := s.ensureVehicleFree(ctx, *next.VehicleID, next.Date, id); err != nil {
			return nil, err
		}
	}

	updated := current
	if len(fields) > 0 {
		fields["updated_at"] = s.now().UTC().Format(time.RFC3339Nano)
		if updated, err = s.store.UpdateAppointment(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	if u.AgentIDs != nil {
		if err := s.store.SetAppointmentAgents(ctx, id, u.AgentIDs); err != nil {
			return nil, err
		}
		updated.AgentIDs = u.AgentIDs
	}

	s.logger.Info("appointment updated", zap.String("appointment_id", id), zap.Int("fields", len(fields)))
	return updated, nil
}

// Reschedule moves an appointment to another date if nobody changed it
// since req.Version. A stale version yields ErrConflict.
func (s *AppointmentService) Reschedule(ctx context.Context, sess *domain.Session, id string, req *domain.RescheduleRequest) (*domain.Appointment, error) {
	if err := access.Allow(sess, access.CanEditCalendar, "editar agenda"); err != nil {
		return nil, err
	}
	ctx, span := appointmentTracer.Start(ctx, "AppointmentService.Reschedule")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id), attribute.String("date", req.Date))

	if _, err := calendar.ParseDate(req.Date); err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "data inválida"}
	}
	if req.Version.IsZero() {
		return nil, &domain.ErrValidation{Field: "version", Message: "versão é obrigatória para reagendar"}
	}

	current, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.VehicleID != nil {
		if err := s.ensureVehicleFree(ctx, *current.VehicleID, req.Date, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateAppointmentIfVersion(ctx, id, req.Version, map[string]any{
		"date":       req.Date,
		"updated_at": s.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", id),
		zap.String("from", current.Date),
		zap.String("to", req.Date),
	)
	return updated, nil
}

func (s *AppointmentService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	if err := access.Allow(sess, access.CanEditCalendar, "editar agenda"); err != nil {
		return err
	}
	ctx, span := appointmentTracer.Start(ctx, "AppointmentService.Delete")
	defer span.End()

	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment deleted", zap.String("appointment_id", id))
	return nil
}

// rollbackCreate removes an appointment whose agent assignment failed.
// It runs on a fresh context so a cancelled request still cleans up.
func (s *AppointmentService) rollbackCreate(id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()

	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		s.logger.Error("appointment left without agents, rollback failed",
			zap.String("appointment_id", id),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("appointment rolled back after agent assignment failed",
		zap.String("appointment_id", id),
		zap.Error(cause),
	)
}

func (s *AppointmentService) ensureVehicleFree(ctx context.Context, vehicleID, date, excludeID string) error {
	free, err := s.vehicles.CheckVehicleAvailability(ctx, vehicleID, date, excludeID)
	if err != nil {
		return err
	}
	if !free {
		return &domain.ErrConflict{Message: "veículo já reservado para " + date}
	}
	return nil
}

func validateAppointment(a *domain.Appointment) error {
	if a.Title == "" {
		return &domain.ErrValidation{Field: "title", Message: "título é obrigatório"}
	}
	if a.City == "" {
		return &domain.ErrValidation{Field: "city", Message: "cidade é obrigatória"}
	}
	if _, err := calendar.ParseDate(a.Date); err != nil {
		return &domain.ErrValidation{Field: "date", Message: "data inválida"}
	}
	if !a.Status.Valid() {
		return &domain.ErrValidation{Field: "status", Message: "status inválido: " + string(a.Status)}
	}
	if a.ExpenseStatus != "" && !a.ExpenseStatus.Valid() {
		return &domain.ErrValidation{Field: "expense_status", Message: "situação de despesa inválida: " + string(a.ExpenseStatus)}
	}
	return nil
}
