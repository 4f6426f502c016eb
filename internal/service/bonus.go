package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/observability"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var bonusTracer = otel.Tracer("service/bonus")

// MonthLayout is the format of the month parameter of bonus reports.
const MonthLayout = "2006-01"

// BonusService computes the monthly bonus report.
type BonusService struct {
	agents       port.AgentStore
	appointments port.AppointmentStore
	bonus        port.BonusStore
	concurrency  int
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewBonusService creates a bonus service. concurrency bounds the number
// of agents whose appointments are loaded at the same time.
func NewBonusService(
	agents port.AgentStore,
	appointments port.AppointmentStore,
	bonus port.BonusStore,
	concurrency int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BonusService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BonusService{
		agents:       agents,
		appointments: appointments,
		bonus:        bonus,
		concurrency:  concurrency,
		metrics:      metrics,
		logger:       logger,
	}
}

// MonthRange returns the first and last day of a "yyyy-MM" month.
func MonthRange(month string) (start, end string, err error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", "", &domain.ErrValidation{Field: "month", Message: "mês inválido, use o formato AAAA-MM"}
	}
	last := t.AddDate(0, 1, -1)
	return t.Format(domain.DateLayout), last.Format(domain.DateLayout), nil
}

// ComputeBonuses builds the report for month. Agents, settings and city
// levels are loaded together; then each agent's appointments are loaded
// in a bounded fan-out. An agent whose appointments cannot be loaded is
// reported with zero totals and does not fail the report.
func (s *BonusService) ComputeBonuses(ctx context.Context, sess *domain.Session, month string) (*domain.BonusReport, error) {
	if err := access.Allow(sess, access.CanAccessBonus, "ver bonificações"); err != nil {
		return nil, err
	}

	ctx, span := bonusTracer.Start(ctx, "BonusService.ComputeBonuses")
	defer span.End()
	span.SetAttributes(attribute.String("month", month))

	monthStart, monthEnd, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordOperation("bonus_report", time.Since(start))
	}()

	var (
		agents   []domain.Agent
		settings *domain.BonusSettings
		levels   []domain.CityBonusLevel
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.agents.ListAgents(gCtx, true)
		if err != nil {
			return fmt.Errorf("load agents: %w", err)
		}
		agents = a
		return nil
	})
	g.Go(func() error {
		st, err := s.bonus.GetBonusSettings(gCtx)
		if err != nil {
			return fmt.Errorf("load bonus settings: %w", err)
		}
		settings = st
		return nil
	})
	g.Go(func() error {
		l, err := s.bonus.ListCityLevels(gCtx)
		if err != nil {
			return fmt.Errorf("load city levels: %w", err)
		}
		levels = l
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("bonus")
		return nil, err
	}

	results := make([]domain.AgentBonus, len(agents))
	fan, fanCtx := errgroup.WithContext(ctx)
	fan.SetLimit(s.concurrency)
	for i, agent := range agents {
		fan.Go(func() error {
			appts, err := s.agentAppointments(fanCtx, agent.ID, monthStart, monthEnd)
			if err != nil {
				s.logger.Warn("bonus: agent appointments unavailable",
					zap.String("agent_id", agent.ID),
					zap.String("month", month),
					zap.Error(err),
				)
				results[i] = domain.AgentBonus{
					AgentID:    agent.ID,
					AgentName:  agent.Name,
					TotalBonus: decimal.Zero,
					Error:      "não foi possível carregar os atendimentos deste agente",
				}
				return nil
			}
			ab := Aggregate(*settings, levels, appts)
			ab.AgentID = agent.ID
			ab.AgentName = agent.Name
			results[i] = ab
			return nil
		})
	}
	_ = fan.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &domain.BonusReport{
		Month:      month,
		MonthStart: monthStart,
		MonthEnd:   monthEnd,
		Agents:     results,
		GrandTotal: decimal.Zero,
	}
	failed := 0
	for _, r := range results {
		report.GrandTotal = report.GrandTotal.Add(r.TotalBonus)
		if r.Error != "" {
			failed++
		}
	}
	s.metrics.IncrBonusReport(failed)

	s.logger.Info("bonus report computed",
		zap.String("month", month),
		zap.Int("agents", len(results)),
		zap.Int("failed_agents", failed),
		zap.String("grand_total", report.GrandTotal.StringFixed(2)),
	)
	return report, nil
}

func (s *BonusService) agentAppointments(ctx context.Context, agentID, from, to string) ([]domain.Appointment, error) {
	ids, err := s.appointments.ListAppointmentIDsForAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.appointments.ListAppointmentsByIDs(ctx, ids, from, to)
}

// Aggregate tallies one agent's appointments. Completed, non-penalized
// visits pay the base value plus the add-on of the city's level; online
// visits pay nothing and cities without a level pay the base only. City
// matching ignores case and nothing else.
func Aggregate(settings domain.BonusSettings, levels []domain.CityBonusLevel, appointments []domain.Appointment) domain.AgentBonus {
	levelByCity := make(map[string]int, len(levels))
	for _, l := range levels {
		levelByCity[strings.ToUpper(l.CityName)] = l.Level
	}

	out := domain.AgentBonus{TotalBonus: decimal.Zero}
	for _, a := range appointments {
		switch a.Status {
		case domain.StatusInProgress:
			out.InProgressCount++
		case domain.StatusCompleted:
			out.CompletedCount++
		}
		if a.Penalized {
			out.PenaltyCount++
		}
		if a.Status != domain.StatusCompleted || a.Penalized || isOnline(a.City) {
			continue
		}

		amount := settings.BaseValue
		level, ok := levelByCity[strings.ToUpper(a.City)]
		if ok {
			amount = amount.Add(settings.LevelValue(level))
		}
		out.TotalBonus = out.TotalBonus.Add(amount)
		out.Lines = append(out.Lines, domain.BonusLine{
			AppointmentID: a.ID,
			Date:          a.Date,
			City:          a.City,
			Level:         level,
			Amount:        amount,
		})
	}
	return out
}

func isOnline(city string) bool {
	return strings.Contains(strings.ToLower(city), "online")
}
