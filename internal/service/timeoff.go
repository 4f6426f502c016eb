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
	"go.uber.org/zap"
)

var timeOffTracer = otel.Tracer("service/timeoff")

// TimeOffService manages days off and the monthly time bank. Both live
// on the vacations screen and share its capabilities.
type TimeOffService struct {
	store  port.TimeOffStore
	logger *zap.Logger
}

// NewTimeOffService creates a time-off service.
func NewTimeOffService(store port.TimeOffStore, logger *zap.Logger) *TimeOffService {
	return &TimeOffService{store: store, logger: logger}
}

func (s *TimeOffService) List(ctx context.Context, sess *domain.Session, from, to string) ([]domain.TimeOff, error) {
	if err := access.Allow(sess, access.CanAccessVacations, "ver folgas"); err != nil {
		return nil, err
	}
	ctx, span := timeOffTracer.Start(ctx, "TimeOffService.List")
	defer span.End()

	return s.store.ListTimeOff(ctx, from, to)
}

// Create stores a day off. A nil AgentID is a company-wide day off.
func (s *TimeOffService) Create(ctx context.Context, sess *domain.Session, t *domain.TimeOff) (*domain.TimeOff, error) {
	if err := access.Allow(sess, access.CanEditVacations, "editar folgas"); err != nil {
		return nil, err
	}
	ctx, span := timeOffTracer.Start(ctx, "TimeOffService.Create")
	defer span.End()

	if _, err := calendar.ParseDate(t.Date); err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "data inválida"}
	}
	if t.Type == "" {
		t.Type = domain.TimeOffFull
	}
	if !t.Type.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "tipo de folga inválido: " + string(t.Type)}
	}
	if t.AgentID != nil && strings.TrimSpace(*t.AgentID) == "" {
		t.AgentID = nil
	}

	created, err := s.store.CreateTimeOff(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info("time off created",
		zap.String("time_off_id", created.ID),
		zap.String("date", created.Date),
		zap.Bool("company_wide", created.AgentID == nil),
	)
	return created, nil
}

func (s *TimeOffService) Approve(ctx context.Context, sess *domain.Session, id string, approved bool) (*domain.TimeOff, error) {
	if err := access.Allow(sess, access.CanEditVacations, "aprovar folgas"); err != nil {
		return nil, err
	}
	ctx, span := timeOffTracer.Start(ctx, "TimeOffService.Approve")
	defer span.End()

	t, err := s.store.ApproveTimeOff(ctx, id, approved)
	if err != nil {
		return nil, err
	}
	s.logger.Info("time off reviewed", zap.String("time_off_id", id), zap.Bool("approved", approved))
	return t, nil
}

func (s *TimeOffService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	if err := access.Allow(sess, access.CanEditVacations, "editar folgas"); err != nil {
		return err
	}
	ctx, span := timeOffTracer.Start(ctx, "TimeOffService.Delete")
	defer span.End()

	return s.store.DeleteTimeOff(ctx, id)
}

// UpsertTimeBank records an agent's hour balance for a "yyyy-MM" month.
func (s *TimeOffService) UpsertTimeBank(ctx context.Context, sess *domain.Session, e *domain.TimeBankEntry) error {
	if err := access.Allow(sess, access.CanEditVacations, "editar banco de horas"); err != nil {
		return err
	}
	ctx, span := timeOffTracer.Start(ctx, "TimeOffService.UpsertTimeBank")
	defer span.End()

	if strings.TrimSpace(e.AgentID) == "" {
		return &domain.ErrValidation{Field: "agent_id", Message: "agente é obrigatório"}
	}
	if _, err := time.Parse(MonthLayout, e.ReferenceMonth); err != nil {
		return &domain.ErrValidation{Field: "reference_month", Message: "mês inválido, use o formato AAAA-MM"}
	}

	if err := s.store.UpsertTimeBank(ctx, e); err != nil {
		return err
	}
	s.logger.Info("time bank updated",
		zap.String("agent_id", e.AgentID),
		zap.String("reference_month", e.ReferenceMonth),
		zap.String("hours", e.Hours.String()),
	)
	return nil
}
