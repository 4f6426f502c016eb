package supabase

import (
	"context"
	"fmt"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Vehicles - CRUD via PostgREST
// ============================================================

func (c *Client) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListVehicles")
	defer span.End()

	rows := []domain.Vehicle{}
	if err := c.getJSON(ctx, "supabase/vehicles", "vehicles?select=*&order=model.asc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) CreateVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateVehicle")
	defer span.End()

	data := map[string]any{
		"model":  v.Model,
		"plate":  v.Plate,
		"status": v.Status,
	}
	var rows []domain.Vehicle
	if err := c.postJSON(ctx, "supabase/vehicles", "vehicles", data, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "vehicle", v.Plate)
}

func (c *Client) UpdateVehicle(ctx context.Context, id string, fields map[string]any) (*domain.Vehicle, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateVehicle")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", id))

	var rows []domain.Vehicle
	if err := c.patchJSON(ctx, "supabase/vehicles", fmt.Sprintf("vehicles?id=%s", eq(id)), fields, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "vehicle", id)
}

func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteVehicle")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", id))

	return c.deleteRows(ctx, "supabase/vehicles", fmt.Sprintf("vehicles?id=%s", eq(id)))
}

// CheckVehicleAvailability calls the check_vehicle_availability procedure.
// excludeAppointmentID lets an appointment keep its own vehicle on edit.
func (c *Client) CheckVehicleAvailability(ctx context.Context, vehicleID, date, excludeAppointmentID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CheckVehicleAvailability")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", vehicleID), attribute.String("date", date))

	args := map[string]any{
		"p_vehicle_id": vehicleID,
		"p_date":       date,
	}
	if excludeAppointmentID != "" {
		args["p_exclude_appointment_id"] = excludeAppointmentID
	}
	var available bool
	err := c.rpc(ctx, "check_vehicle_availability", args, true, &available)
	return available, err
}
