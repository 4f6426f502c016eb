package handler

import (
	"net/http"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Bonificação - views
// ============================================================

// Money fields are rendered with two decimal places.

type bonusSettingsView struct {
	ID          string `json:"id,omitempty"`
	BaseValue   string `json:"base_value"`
	Level1Value string `json:"level_1_value"`
	Level2Value string `json:"level_2_value"`
	Level3Value string `json:"level_3_value"`
}

func toBonusSettingsView(s *domain.BonusSettings) bonusSettingsView {
	return bonusSettingsView{
		ID:          s.ID,
		BaseValue:   s.BaseValue.StringFixed(2),
		Level1Value: s.Level1Value.StringFixed(2),
		Level2Value: s.Level2Value.StringFixed(2),
		Level3Value: s.Level3Value.StringFixed(2),
	}
}

type bonusLineView struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	City          string `json:"city"`
	Level         int    `json:"level"`
	Amount        string `json:"amount"`
}

type agentBonusView struct {
	AgentID         string          `json:"agent_id"`
	AgentName       string          `json:"agent_name"`
	CompletedCount  int             `json:"completed_count"`
	InProgressCount int             `json:"in_progress_count"`
	PenaltyCount    int             `json:"penalty_count"`
	TotalBonus      string          `json:"total_bonus"`
	Lines           []bonusLineView `json:"lines,omitempty"`
	Error           string          `json:"error,omitempty"`
}

type bonusReportView struct {
	Month      string           `json:"month"`
	MonthStart string           `json:"month_start"`
	MonthEnd   string           `json:"month_end"`
	Agents     []agentBonusView `json:"agents"`
	GrandTotal string           `json:"grand_total"`
}

func toBonusReportView(rep *domain.BonusReport) bonusReportView {
	view := bonusReportView{
		Month:      rep.Month,
		MonthStart: rep.MonthStart,
		MonthEnd:   rep.MonthEnd,
		Agents:     make([]agentBonusView, 0, len(rep.Agents)),
		GrandTotal: rep.GrandTotal.StringFixed(2),
	}
	for _, a := range rep.Agents {
		av := agentBonusView{
			AgentID:         a.AgentID,
			AgentName:       a.AgentName,
			CompletedCount:  a.CompletedCount,
			InProgressCount: a.InProgressCount,
			PenaltyCount:    a.PenaltyCount,
			TotalBonus:      a.TotalBonus.StringFixed(2),
			Error:           a.Error,
		}
		for _, l := range a.Lines {
			av.Lines = append(av.Lines, bonusLineView{
				AppointmentID: l.AppointmentID,
				Date:          l.Date,
				City:          l.City,
				Level:         l.Level,
				Amount:        l.Amount.StringFixed(2),
			})
		}
		view.Agents = append(view.Agents, av)
	}
	return view
}

// ============================================================
// Bonificação - /v1/bonus
// ============================================================

func getBonusSettingsHandler(svc *service.BonusConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bonus/settings")
		defer span.End()

		settings, err := svc.GetSettings(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toBonusSettingsView(settings))
	}
}

func updateBonusSettingsHandler(svc *service.BonusConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/bonus/settings")
		defer span.End()

		var in domain.BonusSettings
		if !decodeBody(w, r, &in) {
			return
		}
		settings, err := svc.UpdateSettings(ctx, SessionFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toBonusSettingsView(settings))
	}
}

func listCityLevelsHandler(svc *service.BonusConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bonus/cities")
		defer span.End()

		levels, err := svc.ListLevels(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if levels == nil {
			levels = []domain.CityBonusLevel{}
		}
		writeJSON(w, http.StatusOK, levels)
	}
}

func createCityLevelHandler(svc *service.BonusConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bonus/cities")
		defer span.End()

		var c domain.CityBonusLevel
		if !decodeBody(w, r, &c) {
			return
		}
		created, err := svc.CreateLevel(ctx, SessionFromContext(ctx), &c)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateCityLevelHandler(svc *service.BonusConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/bonus/cities/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var u domain.CityBonusLevelUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		updated, err := svc.UpdateLevel(ctx, SessionFromContext(ctx), id, &u)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteCityLevelHandler(svc *service.BonusConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/bonus/cities/{id}")
		defer span.End()

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.DeleteLevel(ctx, SessionFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func bonusReportHandler(svc *service.BonusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bonus/report")
		defer span.End()

		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().Format(service.MonthLayout)
		}
		span.SetAttributes(attribute.String("bonus.month", month))

		report, err := svc.ComputeBonuses(ctx, SessionFromContext(ctx), month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toBonusReportView(report))
	}
}
