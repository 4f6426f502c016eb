// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
)

// Cache provides generic caching with TTL. Implementations may be backed
// by a remote store, so every call takes a context.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T)
	Delete(ctx context.Context, key string)
}

// AgentStore persists field technicians.
type AgentStore interface {
	ListAgents(ctx context.Context, activeOnly bool) ([]domain.Agent, error)
	GetAgent(ctx context.Context, id string) (*domain.Agent, error)
	CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error)
	UpdateAgent(ctx context.Context, id string, fields map[string]any) (*domain.Agent, error)
	DeleteAgent(ctx context.Context, id string) error
	CountAgentReferences(ctx context.Context, id string) (int, error)
	IsAgentOnVacation(ctx context.Context, agentID, date string) (bool, error)
}

// VehicleStore persists the fleet.
type VehicleStore interface {
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	CreateVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, fields map[string]any) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	CheckVehicleAvailability(ctx context.Context, vehicleID, date string, excludeAppointmentID string) (bool, error)
}

// AppointmentStore persists appointments and their agent assignments.
type AppointmentStore interface {
	ListAppointments(ctx context.Context, from, to string) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	CreateAppointment(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, fields map[string]any) (*domain.Appointment, error)
	// UpdateAppointmentIfVersion applies fields only when updated_at still
	// equals version. It returns ErrConflict when no row matched.
	UpdateAppointmentIfVersion(ctx context.Context, id string, version time.Time, fields map[string]any) (*domain.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	SetAppointmentAgents(ctx context.Context, appointmentID string, agentIDs []string) error
	ListAppointmentIDsForAgent(ctx context.Context, agentID string) ([]string, error)
	ListAppointmentsByIDs(ctx context.Context, ids []string, from, to string) ([]domain.Appointment, error)
}

// VacationStore persists vacations.
type VacationStore interface {
	ListVacations(ctx context.Context, agentID string, year int) ([]domain.Vacation, error)
	GetVacation(ctx context.Context, id string) (*domain.Vacation, error)
	CreateVacation(ctx context.Context, v *domain.Vacation) (*domain.Vacation, error)
	UpdateVacationIfVersion(ctx context.Context, id string, version time.Time, fields map[string]any) (*domain.Vacation, error)
	DeleteVacation(ctx context.Context, id string) error
	UpcomingVacationReminders(ctx context.Context, daysAhead int) ([]domain.VacationReminder, error)
}

// TimeOffStore persists days off and the monthly time bank.
type TimeOffStore interface {
	ListTimeOff(ctx context.Context, from, to string) ([]domain.TimeOff, error)
	CreateTimeOff(ctx context.Context, t *domain.TimeOff) (*domain.TimeOff, error)
	ApproveTimeOff(ctx context.Context, id string, approved bool) (*domain.TimeOff, error)
	DeleteTimeOff(ctx context.Context, id string) error
	UpsertTimeBank(ctx context.Context, e *domain.TimeBankEntry) error
}

// BonusStore persists the bonus schedule.
type BonusStore interface {
	GetBonusSettings(ctx context.Context) (*domain.BonusSettings, error)
	UpdateBonusSettings(ctx context.Context, s *domain.BonusSettings) (*domain.BonusSettings, error)
	ListCityLevels(ctx context.Context) ([]domain.CityBonusLevel, error)
	CreateCityLevel(ctx context.Context, c *domain.CityBonusLevel) (*domain.CityBonusLevel, error)
	UpdateCityLevel(ctx context.Context, id string, fields map[string]any) (*domain.CityBonusLevel, error)
	DeleteCityLevel(ctx context.Context, id string) error
}

// DirectoryStore reads the identity tables the session is built from.
type DirectoryStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	GetUserRole(ctx context.Context, userID string) (domain.Role, error)
	GetEmailFromUsername(ctx context.Context, username string) (string, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
}

// Authenticator signs users in against the hosted auth.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthTokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

// UserAdmin performs the privileged user-lifecycle operations. callerToken
// is the bearer token of the session on whose behalf the call is made.
type UserAdmin interface {
	CreateUser(ctx context.Context, callerToken string, req *domain.CreateUserRequest) (*domain.UserAccount, error)
	UpdateUser(ctx context.Context, callerToken string, req *domain.UpdateUserRequest) (*domain.UserAccount, error)
	DeleteUser(ctx context.Context, callerToken string, userID string) error
	ResetPassword(ctx context.Context, callerToken string, userID, newPassword string) error
}
