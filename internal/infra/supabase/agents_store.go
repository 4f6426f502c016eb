package supabase

import (
	"context"
	"fmt"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Agents - CRUD via PostgREST
// ============================================================

func (c *Client) ListAgents(ctx context.Context, activeOnly bool) ([]domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAgents")
	defer span.End()

	path := "agents?select=*&order=name.asc"
	if activeOnly {
		path += "&is_active=eq.true"
	}
	rows := []domain.Agent{}
	if err := c.getJSON(ctx, "supabase/agents", path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", id))

	var rows []domain.Agent
	if err := c.getJSON(ctx, "supabase/agents", fmt.Sprintf("agents?id=%s&limit=1", eq(id)), &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "agent", id)
}

func (c *Client) CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAgent")
	defer span.End()

	data := map[string]any{
		"name":      a.Name,
		"sector":    nullableSector(a.Sector),
		"is_active": a.IsActive,
		"color":     a.Color,
		"user_id":   a.UserID,
	}
	var rows []domain.Agent
	if err := c.postJSON(ctx, "supabase/agents", "agents", data, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "agent", a.Name)
}

func (c *Client) UpdateAgent(ctx context.Context, id string, fields map[string]any) (*domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", id))

	var rows []domain.Agent
	if err := c.patchJSON(ctx, "supabase/agents", fmt.Sprintf("agents?id=%s", eq(id)), fields, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "agent", id)
}

func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", id))

	return c.deleteRows(ctx, "supabase/agents", fmt.Sprintf("agents?id=%s", eq(id)))
}

// CountAgentReferences counts appointment assignments and vacations that
// still point at the agent.
func (c *Client) CountAgentReferences(ctx context.Context, id string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountAgentReferences")
	defer span.End()

	var assignments, vacations []struct {
		ID string `json:"id"`
	}
	if err := c.getJSON(ctx, "supabase/appointment_agents",
		fmt.Sprintf("appointment_agents?select=id:appointment_id&agent_id=%s&limit=1", eq(id)), &assignments); err != nil {
		return 0, err
	}
	if err := c.getJSON(ctx, "supabase/vacations",
		fmt.Sprintf("vacations?select=id&agent_id=%s&limit=1", eq(id)), &vacations); err != nil {
		return 0, err
	}
	return len(assignments) + len(vacations), nil
}

// IsAgentOnVacation calls the is_agent_on_vacation procedure.
func (c *Client) IsAgentOnVacation(ctx context.Context, agentID, date string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.IsAgentOnVacation")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID), attribute.String("date", date))

	var onVacation bool
	err := c.rpc(ctx, "is_agent_on_vacation", map[string]any{
		"p_agent_id": agentID,
		"p_date":     date,
	}, true, &onVacation)
	return onVacation, err
}

func nullableSector(s domain.Sector) any {
	if s == domain.SectorNone {
		return nil
	}
	return s
}
