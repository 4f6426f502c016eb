package service

import (
	"context"
	"strings"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var fleetTracer = otel.Tracer("service/fleet")

// FleetService manages vehicles.
type FleetService struct {
	store  port.VehicleStore
	logger *zap.Logger
}

// NewFleetService creates a fleet service.
func NewFleetService(store port.VehicleStore, logger *zap.Logger) *FleetService {
	return &FleetService{store: store, logger: logger}
}

func (s *FleetService) List(ctx context.Context, sess *domain.Session) ([]domain.Vehicle, error) {
	if err := access.Allow(sess, access.CanAccessFleet, "ver frota"); err != nil {
		return nil, err
	}
	ctx, span := fleetTracer.Start(ctx, "FleetService.List")
	defer span.End()

	return s.store.ListVehicles(ctx)
}

func (s *FleetService) Create(ctx context.Context, sess *domain.Session, v *domain.Vehicle) (*domain.Vehicle, error) {
	if err := access.Allow(sess, access.CanEditFleet, "editar frota"); err != nil {
		return nil, err
	}
	ctx, span := fleetTracer.Start(ctx, "FleetService.Create")
	defer span.End()

	v.Model = strings.TrimSpace(v.Model)
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	if v.Status == "" {
		v.Status = domain.VehicleAvailable
	}
	if v.Model == "" {
		return nil, &domain.ErrValidation{Field: "model", Message: "modelo é obrigatório"}
	}
	if v.Plate == "" {
		return nil, &domain.ErrValidation{Field: "plate", Message: "placa é obrigatória"}
	}
	if !v.Status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "status de veículo inválido: " + string(v.Status)}
	}

	created, err := s.store.CreateVehicle(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vehicle created", zap.String("vehicle_id", created.ID), zap.String("plate", created.Plate))
	return created, nil
}

func (s *FleetService) Update(ctx context.Context, sess *domain.Session, id string, u *domain.VehicleUpdate) (*domain.Vehicle, error) {
	if err := access.Allow(sess, access.CanEditFleet, "editar frota"); err != nil {
		return nil, err
	}
	ctx, span := fleetTracer.Start(ctx, "FleetService.Update")
	defer span.End()

	fields := map[string]any{}
	if u.Model != nil {
		m := strings.TrimSpace(*u.Model)
		if m == "" {
			return nil, &domain.ErrValidation{Field: "model", Message: "modelo é obrigatório"}
		}
		fields["model"] = m
	}
	if u.Plate != nil {
		p := strings.ToUpper(strings.TrimSpace(*u.Plate))
		if p == "" {
			return nil, &domain.ErrValidation{Field: "plate", Message: "placa é obrigatória"}
		}
		fields["plate"] = p
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, &domain.ErrValidation{Field: "status", Message: "status de veículo inválido: " + string(*u.Status)}
		}
		fields["status"] = *u.Status
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "nenhum campo para alterar"}
	}

	return s.store.UpdateVehicle(ctx, id, fields)
}

func (s *FleetService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	if err := access.Allow(sess, access.CanEditFleet, "editar frota"); err != nil {
		return err
	}
	ctx, span := fleetTracer.Start(ctx, "FleetService.Delete")
	defer span.End()

	if err := s.store.DeleteVehicle(ctx, id); err != nil {
		return err
	}
	s.logger.Info("vehicle deleted", zap.String("vehicle_id", id))
	return nil
}

// Availability reports whether a vehicle is free on date.
func (s *FleetService) Availability(ctx context.Context, sess *domain.Session, id, date, excludeAppointmentID string) (bool, error) {
	if err := access.Allow(sess, access.CanAccessFleet, "ver frota"); err != nil {
		return false, err
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return false, &domain.ErrValidation{Field: "date", Message: "data inválida"}
	}
	ctx, span := fleetTracer.Start(ctx, "FleetService.Availability")
	defer span.End()

	return s.store.CheckVehicleAvailability(ctx, id, date, excludeAppointmentID)
}
