package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/observability"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var vacationTracer = otel.Tracer("service/vacation")

// VacationService manages vacations. Start dates are checked against the
// business-day rules before anything is sent to the backend.
type VacationService struct {
	store        port.VacationStore
	agents       port.AgentStore
	cal          *calendar.Calendar
	reminderDays int
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewVacationService creates a vacation service.
func NewVacationService(
	store port.VacationStore,
	agents port.AgentStore,
	cal *calendar.Calendar,
	reminderDays int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *VacationService {
	return &VacationService{
		store:        store,
		agents:       agents,
		cal:          cal,
		reminderDays: reminderDays,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *VacationService) List(ctx context.Context, sess *domain.Session, agentID string, year int) ([]domain.Vacation, error) {
	if err := access.Allow(sess, access.CanAccessVacations, "ver férias"); err != nil {
		return nil, err
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.List")
	defer span.End()

	return s.store.ListVacations(ctx, agentID, year)
}

func (s *VacationService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Vacation, error) {
	if err := access.Allow(sess, access.CanAccessVacations, "ver férias"); err != nil {
		return nil, err
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.Get")
	defer span.End()

	return s.store.GetVacation(ctx, id)
}

// Create validates and stores a new vacation. EndDate is derived from
// StartDate and Days.
func (s *VacationService) Create(ctx context.Context, sess *domain.Session, req *domain.VacationRequest) (*domain.Vacation, error) {
	if err := access.Allow(sess, access.CanEditVacations, "editar férias"); err != nil {
		return nil, err
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", req.AgentID), attribute.String("start_date", req.StartDate))

	if strings.TrimSpace(req.AgentID) == "" {
		return nil, &domain.ErrValidation{Field: "agent_id", Message: "agente é obrigatório"}
	}
	v, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateVacation(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vacation created",
		zap.String("vacation_id", created.ID),
		zap.String("agent_id", created.AgentID),
		zap.String("start_date", created.StartDate),
		zap.String("end_date", created.EndDate),
	)
	return created, nil
}

// Update rewrites a vacation only if it has not changed since req.Version.
func (s *VacationService) Update(ctx context.Context, sess *domain.Session, id string, req *domain.VacationRequest) (*domain.Vacation, error) {
	if err := access.Allow(sess, access.CanEditVacations, "editar férias"); err != nil {
		return nil, err
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("vacation.id", id))

	if req.Version == nil || req.Version.IsZero() {
		return nil, &domain.ErrValidation{Field: "version", Message: "versão é obrigatória para alterar férias"}
	}
	v, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"start_date":    v.StartDate,
		"end_date":      v.EndDate,
		"days":          v.Days,
		"period_number": v.PeriodNumber,
		"notes":         v.Notes,
		"updated_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if v.AgentID != "" {
		fields["agent_id"] = v.AgentID
	}
	if v.ExpiryDate != "" {
		fields["expiry_date"] = v.ExpiryDate
	}
	if v.Deadline != "" {
		fields["deadline"] = v.Deadline
	}

	updated, err := s.store.UpdateVacationIfVersion(ctx, id, *req.Version, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vacation updated", zap.String("vacation_id", id))
	return updated, nil
}

func (s *VacationService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	if err := access.Allow(sess, access.CanEditVacations, "editar férias"); err != nil {
		return err
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.Delete")
	defer span.End()

	if err := s.store.DeleteVacation(ctx, id); err != nil {
		return err
	}
	s.logger.Info("vacation deleted", zap.String("vacation_id", id))
	return nil
}

// Reminders lists vacations starting within the configured window.
func (s *VacationService) Reminders(ctx context.Context, sess *domain.Session) ([]domain.VacationReminder, error) {
	if err := access.Allow(sess, access.CanAccessVacations, "ver férias"); err != nil {
		return nil, err
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.Reminders")
	defer span.End()

	return s.store.UpcomingVacationReminders(ctx, s.reminderDays)
}

// OnVacation reports whether an agent is on vacation on date.
func (s *VacationService) OnVacation(ctx context.Context, sess *domain.Session, agentID, date string) (bool, error) {
	if err := access.Allow(sess, access.CanAccessVacations, "ver férias"); err != nil {
		return false, err
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return false, &domain.ErrValidation{Field: "date", Message: "data inválida"}
	}
	ctx, span := vacationTracer.Start(ctx, "VacationService.OnVacation")
	defer span.End()

	return s.agents.IsAgentOnVacation(ctx, agentID, date)
}

// ValidateStart checks a proposed start date without storing anything.
func (s *VacationService) ValidateStart(date string) error {
	start, err := calendar.ParseDate(date)
	if err != nil {
		return &domain.ErrValidation{Field: "start_date", Message: "data de início inválida"}
	}
	err = s.cal.ValidateVacationStart(start)
	s.metrics.IncrVacationValidation(err == nil)
	return err
}

// validate applies every rule of a vacation request and returns the row
// to store.
func (s *VacationService) validate(req *domain.VacationRequest) (*domain.Vacation, error) {
	if req.Days <= 0 {
		return nil, &domain.ErrValidation{Field: "days", Message: "quantidade de dias deve ser maior que zero"}
	}
	if req.PeriodNumber != 1 && req.PeriodNumber != 2 {
		return nil, &domain.ErrValidation{Field: "period_number", Message: "período deve ser 1 ou 2"}
	}
	for field, value := range map[string]string{"expiry_date": req.ExpiryDate, "deadline": req.Deadline} {
		if value == "" {
			continue
		}
		if _, err := calendar.ParseDate(value); err != nil {
			return nil, &domain.ErrValidation{Field: field, Message: "data inválida"}
		}
	}
	if err := s.ValidateStart(req.StartDate); err != nil {
		return nil, err
	}

	end, err := calendar.CalculateReturnDate(req.StartDate, req.Days)
	if err != nil {
		return nil, fmt.Errorf("return date: %w", err)
	}
	return &domain.Vacation{
		AgentID:      strings.TrimSpace(req.AgentID),
		StartDate:    req.StartDate,
		EndDate:      end,
		Days:         req.Days,
		PeriodNumber: req.PeriodNumber,
		ExpiryDate:   req.ExpiryDate,
		Deadline:     req.Deadline,
		Notes:        req.Notes,
	}, nil
}
