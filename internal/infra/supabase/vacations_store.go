package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Vacations - CRUD via PostgREST
// ============================================================

// ListVacations filters by agent and by start year; empty agentID or a
// zero year disables the filter.
func (c *Client) ListVacations(ctx context.Context, agentID string, year int) ([]domain.Vacation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListVacations")
	defer span.End()

	path := "vacations?select=*&order=start_date.asc"
	if agentID != "" {
		path += "&agent_id=" + eq(agentID)
		span.SetAttributes(attribute.String("agent.id", agentID))
	}
	if year > 0 {
		path += fmt.Sprintf("&start_date=gte.%04d-01-01&start_date=lte.%04d-12-31", year, year)
	}
	rows := []domain.Vacation{}
	if err := c.getJSON(ctx, "supabase/vacations", path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) GetVacation(ctx context.Context, id string) (*domain.Vacation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetVacation")
	defer span.End()
	span.SetAttributes(attribute.String("vacation.id", id))

	var rows []domain.Vacation
	if err := c.getJSON(ctx, "supabase/vacations", fmt.Sprintf("vacations?id=%s&limit=1", eq(id)), &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "vacation", id)
}

func (c *Client) CreateVacation(ctx context.Context, v *domain.Vacation) (*domain.Vacation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateVacation")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", v.AgentID))

	var rows []domain.Vacation
	if err := c.postJSON(ctx, "supabase/vacations", "vacations", vacationFields(v), &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "vacation", v.AgentID)
}

// UpdateVacationIfVersion is a compare-and-swap on updated_at.
func (c *Client) UpdateVacationIfVersion(ctx context.Context, id string, version time.Time, fields map[string]any) (*domain.Vacation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateVacationIfVersion")
	defer span.End()
	span.SetAttributes(attribute.String("vacation.id", id))

	path := fmt.Sprintf("vacations?id=%s&updated_at=%s", eq(id), versionFilter(version))
	var rows []domain.Vacation
	if err := c.patchJSON(ctx, "supabase/vacations", path, fields, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	if _, err := c.GetVacation(ctx, id); err != nil {
		return nil, err
	}
	return nil, &domain.ErrConflict{Message: "as férias foram alteradas por outro usuário; recarregue e tente novamente"}
}

func (c *Client) DeleteVacation(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteVacation")
	defer span.End()
	span.SetAttributes(attribute.String("vacation.id", id))

	return c.deleteRows(ctx, "supabase/vacations", fmt.Sprintf("vacations?id=%s", eq(id)))
}

// UpcomingVacationReminders calls get_upcoming_vacation_reminders.
func (c *Client) UpcomingVacationReminders(ctx context.Context, daysAhead int) ([]domain.VacationReminder, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpcomingVacationReminders")
	defer span.End()

	rows := []domain.VacationReminder{}
	err := c.rpc(ctx, "get_upcoming_vacation_reminders", map[string]any{"p_days_ahead": daysAhead}, true, &rows)
	return rows, err
}

// vacationFields is the column set written on create.
func vacationFields(v *domain.Vacation) map[string]any {
	return map[string]any{
		"agent_id":      v.AgentID,
		"start_date":    v.StartDate,
		"end_date":      v.EndDate,
		"days":          v.Days,
		"period_number": v.PeriodNumber,
		"expiry_date":   nullableDate(v.ExpiryDate),
		"deadline":      nullableDate(v.Deadline),
		"notes":         v.Notes,
	}
}

func nullableDate(s string) any {
	if s == "" {
		return nil
	}
	return s
}
