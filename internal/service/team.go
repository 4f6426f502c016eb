package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var teamTracer = otel.Tracer("service/team")

// TeamService manages agents.
type TeamService struct {
	agents port.AgentStore
	logger *zap.Logger
}

// NewTeamService creates a team service.
func NewTeamService(agents port.AgentStore, logger *zap.Logger) *TeamService {
	return &TeamService{agents: agents, logger: logger}
}

func (s *TeamService) List(ctx context.Context, sess *domain.Session, activeOnly bool) ([]domain.Agent, error) {
	if err := access.Allow(sess, access.CanAccessTeam, "ver equipe"); err != nil {
		return nil, err
	}
	ctx, span := teamTracer.Start(ctx, "TeamService.List")
	defer span.End()

	return s.agents.ListAgents(ctx, activeOnly)
}

func (s *TeamService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Agent, error) {
	if err := access.Allow(sess, access.CanAccessTeam, "ver equipe"); err != nil {
		return nil, err
	}
	ctx, span := teamTracer.Start(ctx, "TeamService.Get")
	defer span.End()

	return s.agents.GetAgent(ctx, id)
}

func (s *TeamService) Create(ctx context.Context, sess *domain.Session, a *domain.Agent) (*domain.Agent, error) {
	if err := access.Allow(sess, access.CanEditTeam, "editar equipe"); err != nil {
		return nil, err
	}
	ctx, span := teamTracer.Start(ctx, "TeamService.Create")
	defer span.End()

	a.Name = strings.TrimSpace(a.Name)
	a.Sector = domain.ParseSector(string(a.Sector))
	if a.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "nome é obrigatório"}
	}
	if !a.Sector.Valid() {
		return nil, &domain.ErrValidation{Field: "sector", Message: "setor inválido: " + string(a.Sector)}
	}

	created, err := s.agents.CreateAgent(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Info("agent created", zap.String("agent_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Update applies a partial update; setting is_active=false is the soft
// disable used instead of deleting referenced agents.
func (s *TeamService) Update(ctx context.Context, sess *domain.Session, id string, u *domain.AgentUpdate) (*domain.Agent, error) {
	if err := access.Allow(sess, access.CanEditTeam, "editar equipe"); err != nil {
		return nil, err
	}
	ctx, span := teamTracer.Start(ctx, "TeamService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", id))

	fields := map[string]any{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "nome é obrigatório"}
		}
		fields["name"] = name
	}
	if u.Sector != nil {
		sector := domain.ParseSector(string(*u.Sector))
		if !sector.Valid() {
			return nil, &domain.ErrValidation{Field: "sector", Message: "setor inválido: " + string(sector)}
		}
		if sector == domain.SectorNone {
			fields["sector"] = nil
		} else {
			fields["sector"] = sector
		}
	}
	if u.IsActive != nil {
		fields["is_active"] = *u.IsActive
	}
	if u.Color != nil {
		fields["color"] = *u.Color
	}
	if u.UserID != nil {
		if *u.UserID == "" {
			fields["user_id"] = nil
		} else {
			fields["user_id"] = *u.UserID
		}
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "nenhum campo para alterar"}
	}

	updated, err := s.agents.UpdateAgent(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if u.IsActive != nil && !*u.IsActive {
		s.logger.Info("agent disabled", zap.String("agent_id", id))
	}
	return updated, nil
}

// Delete removes an agent that nothing references. Referenced agents
// must be disabled instead.
func (s *TeamService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	if err := access.Allow(sess, access.CanEditTeam, "editar equipe"); err != nil {
		return err
	}
	ctx, span := teamTracer.Start(ctx, "TeamService.Delete")
	defer span.End()

	refs, err := s.agents.CountAgentReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &domain.ErrConflict{
			Message: fmt.Sprintf("agente possui %d registro(s) vinculado(s); desative-o em vez de excluir", refs),
		}
	}

	if err := s.agents.DeleteAgent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("agent deleted", zap.String("agent_id", id))
	return nil
}
