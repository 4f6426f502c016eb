package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/observability"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newVacationService(cal *calendar.Calendar) (*service.VacationService, *mockVacations, *observability.Metrics) {
	store := &mockVacations{}
	metrics := observability.NewMetrics()
	svc := service.NewVacationService(store, &mockAgents{onVacation: true}, cal, 30, metrics, zap.NewNop())
	return svc, store, metrics
}

func vacationRequest(start string, days int) *domain.VacationRequest {
	return &domain.VacationRequest{AgentID: "ag-1", StartDate: start, Days: days, PeriodNumber: 1}
}

func TestVacationCreate_DerivesEndDate(t *testing.T) {
	svc, store, metrics := newVacationService(calendar.New())

	// Monday 2025-06-02: neither Tuesday nor Wednesday is a rest day.
	v, err := svc.Create(context.Background(), session(domain.RoleAdmin, domain.SectorSuporte), vacationRequest("2025-06-02", 10))
	require.NoError(t, err)

	assert.Equal(t, "2025-06-12", v.EndDate)
	require.NotNil(t, store.created)
	assert.Equal(t, "2025-06-12", store.created.EndDate)
	assert.Equal(t, float64(1), metrics.Summary().VacationsAccepted)
}

func TestVacationCreate_ThursdayBeforeWeekend(t *testing.T) {
	t.Run("sunday-only rest accepts thursday", func(t *testing.T) {
		svc, store, _ := newVacationService(calendar.New())
		_, err := svc.Create(context.Background(), session(domain.RoleDev, domain.SectorNone), vacationRequest("2025-06-05", 10))
		require.NoError(t, err)
		assert.Equal(t, 1, store.writes)
	})

	t.Run("sunday-only rest rejects friday", func(t *testing.T) {
		svc, store, _ := newVacationService(calendar.New())
		_, err := svc.Create(context.Background(), session(domain.RoleDev, domain.SectorNone), vacationRequest("2025-06-06", 10))
		var validation *domain.ErrValidation
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "start_date", validation.Field)
		assert.Zero(t, store.writes, "no backend call on validation failure")
	})

	t.Run("saturday rest rejects thursday", func(t *testing.T) {
		svc, store, metrics := newVacationService(calendar.New(calendar.WithRestPolicy(calendar.SaturdayAndSunday)))
		_, err := svc.Create(context.Background(), session(domain.RoleDev, domain.SectorNone), vacationRequest("2025-06-05", 10))
		var validation *domain.ErrValidation
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Message, "2025-06-07")
		assert.Zero(t, store.writes)
		assert.Equal(t, float64(1), metrics.Summary().VacationsRejected)
	})
}

func TestVacationCreate_WednesdayBeforeHoliday(t *testing.T) {
	svc, store, _ := newVacationService(calendar.New())

	_, err := svc.Create(context.Background(), session(domain.RoleAdmin, domain.SectorComercial), vacationRequest("2026-04-29", 15))

	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Message, "Dia do Trabalho")
	assert.Zero(t, store.writes)
}

func TestVacationCreate_InvalidInput(t *testing.T) {
	svc, store, _ := newVacationService(calendar.New())
	sess := session(domain.RoleAdmin, domain.SectorComercial)

	cases := map[string]struct {
		req   *domain.VacationRequest
		field string
	}{
		"zero days":     {vacationRequest("2025-06-02", 0), "days"},
		"bad period":    {&domain.VacationRequest{AgentID: "ag-1", StartDate: "2025-06-02", Days: 10, PeriodNumber: 3}, "period_number"},
		"bad start":     {vacationRequest("02/06/2025", 10), "start_date"},
		"missing agent": {&domain.VacationRequest{StartDate: "2025-06-02", Days: 10, PeriodNumber: 1}, "agent_id"},
		"bad deadline":  {&domain.VacationRequest{AgentID: "ag-1", StartDate: "2025-06-02", Days: 10, PeriodNumber: 2, Deadline: "soon"}, "deadline"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), sess, tc.req)
			var validation *domain.ErrValidation
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
	assert.Zero(t, store.writes)
}

func TestVacationCreate_Forbidden(t *testing.T) {
	svc, store, _ := newVacationService(calendar.New())

	_, err := svc.Create(context.Background(), session(domain.RoleUser, domain.SectorComercial), vacationRequest("2025-06-02", 10))

	var forbidden *domain.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
	assert.Zero(t, store.writes)
}

func TestVacationUpdate_RequiresVersion(t *testing.T) {
	svc, store, _ := newVacationService(calendar.New())

	_, err := svc.Update(context.Background(), session(domain.RoleAdmin, domain.SectorSuporte), "vac-1", vacationRequest("2025-06-02", 10))

	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "version", validation.Field)
	assert.Zero(t, store.writes)
}

func TestVacationUpdate_PassesVersion(t *testing.T) {
	svc, store, _ := newVacationService(calendar.New())
	version := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	req := vacationRequest("2025-06-02", 20)
	req.Version = &version

	_, err := svc.Update(context.Background(), session(domain.RoleAdmin, domain.SectorSuporte), "vac-1", req)
	require.NoError(t, err)

	assert.True(t, store.version.Equal(version))
	assert.Equal(t, "2025-06-22", store.fields["end_date"])
	assert.Contains(t, store.fields, "updated_at")
}

func TestVacationReminders_UsesConfiguredWindow(t *testing.T) {
	svc, store, _ := newVacationService(calendar.New())
	store.reminders = []domain.VacationReminder{{VacationID: "vac-1", DaysUntil: 3}}

	got, err := svc.Reminders(context.Background(), session(domain.RoleUser, domain.SectorNone))
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 30, store.daysAhead)
}

func TestVacationOnVacation(t *testing.T) {
	svc, _, _ := newVacationService(calendar.New())

	on, err := svc.OnVacation(context.Background(), session(domain.RoleUser, domain.SectorNone), "ag-1", "2025-06-10")
	require.NoError(t, err)
	assert.True(t, on)

	_, err = svc.OnVacation(context.Background(), session(domain.RoleUser, domain.SectorNone), "ag-1", "tomorrow")
	var validation *domain.ErrValidation
	assert.ErrorAs(t, err, &validation)
}

func TestVacation_NoSession(t *testing.T) {
	svc, _, _ := newVacationService(calendar.New())
	_, err := svc.List(context.Background(), nil, "", 2025)
	var unauthorized *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)
}
