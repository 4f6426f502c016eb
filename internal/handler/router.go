// Package handler exposes the scheduling backend over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/observability"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups the application services served over HTTP. A nil Auth
// disables every authenticated route.
type Services struct {
	Auth         *service.AuthService
	Appointments *service.AppointmentService
	Fleet        *service.FleetService
	Team         *service.TeamService
	Vacations    *service.VacationService
	TimeOff      *service.TimeOffService
	Bonus        *service.BonusService
	BonusConfig  *service.BonusConfigService
	Users        *service.UserService
}

// HealthChecker is a backend that can be probed by /healthz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
// backend and limiter may be nil.
func NewRouter(svc Services, cal *calendar.Calendar, backend HealthChecker, limiter *RateLimiter, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(backend, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	limit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		limit = limiter.Middleware(logger)
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/summary", metricsSummaryHandler(metrics))

		if svc.Auth == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "auth service unavailable: Supabase not configured")
			}))
			return
		}

		// =============================================
		// Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/login", authLoginHandler(svc.Auth, logger))
			r.With(SessionMiddleware(svc.Auth, logger)).Post("/logout", authLogoutHandler(svc.Auth, logger))
		})

		// =============================================
		// Gestão de usuários (edge-function compatible)
		// =============================================
		r.Route("/functions", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Authorization", "Content-Type", "apikey", "x-client-info"},
				MaxAge:         300,
			}))
			r.Use(limit)
			r.Use(SessionMiddleware(svc.Auth, logger))
			r.Post("/create-user", createUserHandler(svc.Users, logger))
			r.Post("/update-user", updateUserHandler(svc.Users, logger))
			r.Post("/delete-user", deleteUserHandler(svc.Users, logger))
			r.Post("/reset-password", resetPasswordHandler(svc.Users, logger))
		})

		// =============================================
		// Rotas autenticadas
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(svc.Auth, logger))

			r.Get("/me", meHandler())
			r.Get("/access/can-edit", canEditPageHandler())
			r.With(limit).Get("/users", listUsersHandler(svc.Users, logger))

			// Calendário
			r.Get("/calendar/holidays", holidaysHandler(cal))
			r.Get("/calendar/month", calendarMonthHandler(cal))
			r.Get("/calendar/validate-vacation", validateVacationHandler(svc.Vacations))
			r.Get("/calendar/return-date", returnDateHandler())

			// Equipe
			r.Get("/agents", listAgentsHandler(svc.Team, logger))
			r.Post("/agents", createAgentHandler(svc.Team, logger))
			r.Get("/agents/{id}", getAgentHandler(svc.Team, logger))
			r.Patch("/agents/{id}", updateAgentHandler(svc.Team, logger))
			r.Delete("/agents/{id}", deleteAgentHandler(svc.Team, logger))
			r.Get("/agents/{id}/on-vacation", onVacationHandler(svc.Vacations, logger))

			// Frota
			r.Get("/vehicles", listVehiclesHandler(svc.Fleet, logger))
			r.Post("/vehicles", createVehicleHandler(svc.Fleet, logger))
			r.Patch("/vehicles/{id}", updateVehicleHandler(svc.Fleet, logger))
			r.Delete("/vehicles/{id}", deleteVehicleHandler(svc.Fleet, logger))
			r.Get("/vehicles/{id}/availability", vehicleAvailabilityHandler(svc.Fleet, logger))

			// Agenda
			r.Get("/appointments", listAppointmentsHandler(svc.Appointments, logger))
			r.Post("/appointments", createAppointmentHandler(svc.Appointments, logger))
			r.Get("/appointments/{id}", getAppointmentHandler(svc.Appointments, logger))
			r.Patch("/appointments/{id}", updateAppointmentHandler(svc.Appointments, logger))
			r.Delete("/appointments/{id}", deleteAppointmentHandler(svc.Appointments, logger))
			r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(svc.Appointments, logger))

			// Férias, folgas e banco de horas
			r.Get("/vacations", listVacationsHandler(svc.Vacations, logger))
			r.Post("/vacations", createVacationHandler(svc.Vacations, logger))
			r.Get("/vacations/reminders", vacationRemindersHandler(svc.Vacations, logger))
			r.Get("/vacations/{id}", getVacationHandler(svc.Vacations, logger))
			r.Put("/vacations/{id}", updateVacationHandler(svc.Vacations, logger))
			r.Delete("/vacations/{id}", deleteVacationHandler(svc.Vacations, logger))
			r.Get("/time-off", listTimeOffHandler(svc.TimeOff, logger))
			r.Post("/time-off", createTimeOffHandler(svc.TimeOff, logger))
			r.Post("/time-off/{id}/approve", approveTimeOffHandler(svc.TimeOff, logger))
			r.Delete("/time-off/{id}", deleteTimeOffHandler(svc.TimeOff, logger))
			r.Post("/time-bank", upsertTimeBankHandler(svc.TimeOff, logger))

			// Bonificação
			r.Get("/bonus/settings", getBonusSettingsHandler(svc.BonusConfig, logger))
			r.Put("/bonus/settings", updateBonusSettingsHandler(svc.BonusConfig, logger))
			r.Get("/bonus/cities", listCityLevelsHandler(svc.BonusConfig, logger))
			r.Post("/bonus/cities", createCityLevelHandler(svc.BonusConfig, logger))
			r.Patch("/bonus/cities/{id}", updateCityLevelHandler(svc.BonusConfig, logger))
			r.Delete("/bonus/cities/{id}", deleteCityLevelHandler(svc.BonusConfig, logger))
			r.Get("/bonus/report", bonusReportHandler(svc.Bonus, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(backend HealthChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "agendamento-bff", Status: "healthy", LastChecked: now},
		}

		if backend != nil {
			start := time.Now()
			err := backend.Ping(r.Context())
			status := "healthy"
			if err != nil {
				logger.Warn("health check: backend degraded", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = s.Status
			}
		}
		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Summary())
	}
}
