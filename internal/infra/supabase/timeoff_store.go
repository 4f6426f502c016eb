package supabase

import (
	"context"
	"fmt"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Time off & time bank
// ============================================================

func (c *Client) ListTimeOff(ctx context.Context, from, to string) ([]domain.TimeOff, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTimeOff")
	defer span.End()
	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	path := fmt.Sprintf("time_off?select=*&date=gte.%s&date=lte.%s&order=date.asc", from, to)
	rows := []domain.TimeOff{}
	if err := c.getJSON(ctx, "supabase/time_off", path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) CreateTimeOff(ctx context.Context, t *domain.TimeOff) (*domain.TimeOff, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTimeOff")
	defer span.End()

	data := map[string]any{
		"agent_id": t.AgentID,
		"date":     t.Date,
		"type":     t.Type,
		"approved": t.Approved,
		"reason":   t.Reason,
	}
	var rows []domain.TimeOff
	if err := c.postJSON(ctx, "supabase/time_off", "time_off", data, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "time_off", t.Date)
}

func (c *Client) ApproveTimeOff(ctx context.Context, id string, approved bool) (*domain.TimeOff, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ApproveTimeOff")
	defer span.End()
	span.SetAttributes(attribute.String("time_off.id", id), attribute.Bool("approved", approved))

	var rows []domain.TimeOff
	err := c.patchJSON(ctx, "supabase/time_off", fmt.Sprintf("time_off?id=%s", eq(id)),
		map[string]any{"approved": approved}, &rows)
	if err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "time_off", id)
}

func (c *Client) DeleteTimeOff(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTimeOff")
	defer span.End()
	span.SetAttributes(attribute.String("time_off.id", id))

	return c.deleteRows(ctx, "supabase/time_off", fmt.Sprintf("time_off?id=%s", eq(id)))
}

// UpsertTimeBank calls the upsert_time_bank procedure.
func (c *Client) UpsertTimeBank(ctx context.Context, e *domain.TimeBankEntry) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertTimeBank")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", e.AgentID), attribute.String("month", e.ReferenceMonth))

	return c.rpc(ctx, "upsert_time_bank", map[string]any{
		"p_agent_id":        e.AgentID,
		"p_reference_month": e.ReferenceMonth,
		"p_hours":           e.Hours,
		"p_notes":           e.Notes,
	}, false, nil)
}
