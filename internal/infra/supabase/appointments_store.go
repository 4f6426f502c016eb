package supabase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Appointments - CRUD via PostgREST
// ============================================================

const appointmentSelect = "select=*,appointment_agents(agent_id)"

// appointmentRow is an appointments row with its embedded join rows.
type appointmentRow struct {
	domain.Appointment
	Agents []domain.AppointmentAgent `json:"appointment_agents"`
}

func (r appointmentRow) toDomain() domain.Appointment {
	a := r.Appointment
	a.AgentIDs = make([]string, 0, len(r.Agents))
	for _, j := range r.Agents {
		a.AgentIDs = append(a.AgentIDs, j.AgentID)
	}
	return a
}

func toAppointments(rows []appointmentRow) []domain.Appointment {
	out := make([]domain.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func (c *Client) ListAppointments(ctx context.Context, from, to string) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAppointments")
	defer span.End()
	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	path := fmt.Sprintf("appointments?%s&date=gte.%s&date=lte.%s&order=date.asc,time.asc", appointmentSelect, from, to)
	var rows []appointmentRow
	if err := c.getJSON(ctx, "supabase/appointments", path, &rows); err != nil {
		return nil, err
	}
	return toAppointments(rows), nil
}

func (c *Client) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAppointment")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	var rows []appointmentRow
	path := fmt.Sprintf("appointments?%s&id=%s&limit=1", appointmentSelect, eq(id))
	if err := c.getJSON(ctx, "supabase/appointments", path, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "appointment", ID: id}
	}
	a := rows[0].toDomain()
	return &a, nil
}

func (c *Client) CreateAppointment(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAppointment")
	defer span.End()

	data := map[string]any{
		"title":          a.Title,
		"description":    a.Description,
		"city":           a.City,
		"date":           a.Date,
		"time":           a.Time,
		"status":         a.Status,
		"expense_status": a.ExpenseStatus,
		"vehicle_id":     a.VehicleID,
		"penalized":      a.Penalized,
	}
	var rows []domain.Appointment
	if err := c.postJSON(ctx, "supabase/appointments", "appointments", data, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "appointment", a.Title)
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, fields map[string]any) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAppointment")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	var rows []domain.Appointment
	if err := c.patchJSON(ctx, "supabase/appointments", fmt.Sprintf("appointments?id=%s", eq(id)), fields, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "appointment", id)
}

// UpdateAppointmentIfVersion is a compare-and-swap on updated_at.
func (c *Client) UpdateAppointmentIfVersion(ctx context.Context, id string, version time.Time, fields map[string]any) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAppointmentIfVersion")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	path := fmt.Sprintf("appointments?id=%s&updated_at=%s", eq(id), versionFilter(version))
	var rows []domain.Appointment
	if err := c.patchJSON(ctx, "supabase/appointments", path, fields, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	if _, err := c.GetAppointment(ctx, id); err != nil {
		return nil, err
	}
	return nil, &domain.ErrConflict{Message: "o agendamento foi alterado por outro usuário; recarregue e tente novamente"}
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAppointment")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	if err := c.deleteRows(ctx, "supabase/appointment_agents", fmt.Sprintf("appointment_agents?appointment_id=%s", eq(id))); err != nil {
		return err
	}
	return c.deleteRows(ctx, "supabase/appointments", fmt.Sprintf("appointments?id=%s", eq(id)))
}

// SetAppointmentAgents replaces the agent assignments of an appointment.
// New rows are upserted before stale ones are removed, so a failed call
// never leaves the appointment with fewer agents than before.
func (c *Client) SetAppointmentAgents(ctx context.Context, appointmentID string, agentIDs []string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetAppointmentAgents")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", appointmentID), attribute.Int("agents", len(agentIDs)))

	stale := fmt.Sprintf("appointment_agents?appointment_id=%s", eq(appointmentID))
	if len(agentIDs) > 0 {
		rows := make([]domain.AppointmentAgent, 0, len(agentIDs))
		for _, id := range agentIDs {
			rows = append(rows, domain.AppointmentAgent{AppointmentID: appointmentID, AgentID: id})
		}
		if err := c.upsertJSON(ctx, "supabase/appointment_agents", "appointment_agents", "appointment_id,agent_id", rows, nil); err != nil {
			return err
		}
		stale += "&agent_id=not." + in(agentIDs)
	}
	return c.deleteRows(ctx, "supabase/appointment_agents", stale)
}

func (c *Client) ListAppointmentIDsForAgent(ctx context.Context, agentID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAppointmentIDsForAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	var rows []domain.AppointmentAgent
	path := fmt.Sprintf("appointment_agents?select=appointment_id&agent_id=%s", eq(agentID))
	if err := c.getJSON(ctx, "supabase/appointment_agents", path, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AppointmentID)
	}
	return ids, nil
}

// appointmentIDChunk bounds the in.(...) filter so the URL stays well
// under proxy limits.
const appointmentIDChunk = 100

// ListAppointmentsByIDs loads the appointments among ids dated within
// [from, to], querying in chunks and merging by date.
func (c *Client) ListAppointmentsByIDs(ctx context.Context, ids []string, from, to string) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAppointmentsByIDs")
	defer span.End()
	span.SetAttributes(attribute.Int("ids", len(ids)))

	out := []domain.Appointment{}
	for start := 0; start < len(ids); start += appointmentIDChunk {
		end := min(start+appointmentIDChunk, len(ids))
		path := fmt.Sprintf("appointments?select=*&id=%s&date=gte.%s&date=lte.%s&order=date.asc", in(ids[start:end]), from, to)
		var rows []domain.Appointment
		if err := c.getJSON(ctx, "supabase/appointments", path, &rows); err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
