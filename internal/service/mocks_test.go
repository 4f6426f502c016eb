package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"
)

var (
	_ port.DirectoryStore   = (*mockDirectory)(nil)
	_ port.Authenticator    = (*mockAuthenticator)(nil)
	_ port.AgentStore       = (*mockAgents)(nil)
	_ port.VehicleStore     = (*mockVehicles)(nil)
	_ port.AppointmentStore = (*mockAppointments)(nil)
	_ port.VacationStore    = (*mockVacations)(nil)
	_ port.TimeOffStore     = (*mockTimeOff)(nil)
	_ port.BonusStore       = (*mockBonus)(nil)
	_ port.UserAdmin        = (*mockUserAdmin)(nil)
)

// --- Sessions ---

func session(role domain.Role, sector domain.Sector) *domain.Session {
	return &domain.Session{UserID: "caller-1", Username: "caller", Role: role, Sector: sector, AccessToken: "tok"}
}

// --- Directory ---

type mockDirectory struct {
	mu       sync.Mutex
	emails   map[string]string
	roles    map[string]domain.Role
	profiles map[string]*domain.Profile
	users    []domain.UserAccount
	err      error
	calls    int
}

func (m *mockDirectory) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return p, nil
}

func (m *mockDirectory) GetUserRole(_ context.Context, userID string) (domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if r, ok := m.roles[userID]; ok {
		return r, nil
	}
	return domain.RoleUser, nil
}

func (m *mockDirectory) GetEmailFromUsername(_ context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.emails[username], nil
}

func (m *mockDirectory) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	return m.users, m.err
}

// --- Authenticator ---

type mockAuthenticator struct {
	tokens   *domain.AuthTokens
	err      error
	signIns  int
	signOuts []string
}

func (m *mockAuthenticator) SignInWithPassword(_ context.Context, _, _ string) (*domain.AuthTokens, error) {
	m.signIns++
	if m.err != nil {
		return nil, m.err
	}
	return m.tokens, nil
}

func (m *mockAuthenticator) SignOut(_ context.Context, accessToken string) error {
	m.signOuts = append(m.signOuts, accessToken)
	return nil
}

// --- Agents ---

type mockAgents struct {
	agents     []domain.Agent
	refs       map[string]int
	onVacation bool
	listErr    error
	deleted    []string
	created    *domain.Agent
	updated    map[string]any
}

func (m *mockAgents) ListAgents(_ context.Context, _ bool) ([]domain.Agent, error) {
	return m.agents, m.listErr
}

func (m *mockAgents) GetAgent(_ context.Context, id string) (*domain.Agent, error) {
	for i := range m.agents {
		if m.agents[i].ID == id {
			return &m.agents[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "agent", ID: id}
}

func (m *mockAgents) CreateAgent(_ context.Context, a *domain.Agent) (*domain.Agent, error) {
	m.created = a
	out := *a
	out.ID = "agent-new"
	return &out, nil
}

func (m *mockAgents) UpdateAgent(_ context.Context, id string, fields map[string]any) (*domain.Agent, error) {
	m.updated = fields
	return &domain.Agent{ID: id}, nil
}

func (m *mockAgents) DeleteAgent(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAgents) CountAgentReferences(_ context.Context, id string) (int, error) {
	return m.refs[id], nil
}

func (m *mockAgents) IsAgentOnVacation(_ context.Context, _, _ string) (bool, error) {
	return m.onVacation, nil
}

// --- Vehicles ---

type mockVehicles struct {
	busy     map[string]bool // vehicleID|date
	checks   int
	created  *domain.Vehicle
	vehicles []domain.Vehicle
}

func (m *mockVehicles) ListVehicles(_ context.Context) ([]domain.Vehicle, error) {
	return m.vehicles, nil
}

func (m *mockVehicles) CreateVehicle(_ context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	m.created = v
	out := *v
	out.ID = "vehicle-new"
	return &out, nil
}

func (m *mockVehicles) UpdateVehicle(_ context.Context, id string, _ map[string]any) (*domain.Vehicle, error) {
	return &domain.Vehicle{ID: id}, nil
}

func (m *mockVehicles) DeleteVehicle(_ context.Context, _ string) error { return nil }

func (m *mockVehicles) CheckVehicleAvailability(_ context.Context, vehicleID, date, _ string) (bool, error) {
	m.checks++
	return !m.busy[vehicleID+"|"+date], nil
}

// --- Appointments ---

type mockAppointments struct {
	mu           sync.Mutex
	byID         map[string]domain.Appointment
	byAgent      map[string][]string
	failAgent    string
	setAgentsErr error
	agentSets    map[string][]string
	created      *domain.Appointment
	deleted      []string
	lastPatch    map[string]any
}

func newMockAppointments() *mockAppointments {
	return &mockAppointments{
		byID:      map[string]domain.Appointment{},
		byAgent:   map[string][]string{},
		agentSets: map[string][]string{},
	}
}

func (m *mockAppointments) add(agentID string, a domain.Appointment) {
	m.byID[a.ID] = a
	m.byAgent[agentID] = append(m.byAgent[agentID], a.ID)
}

func (m *mockAppointments) ListAppointments(_ context.Context, _, _ string) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAppointments) GetAppointment(_ context.Context, id string) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "appointment", ID: id}
	}
	return &a, nil
}

func (m *mockAppointments) CreateAppointment(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = a
	out := *a
	out.ID = "appt-new"
	out.AgentIDs = nil
	m.byID[out.ID] = out
	return &out, nil
}

func (m *mockAppointments) UpdateAppointment(_ context.Context, id string, fields map[string]any) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPatch = fields
	a := m.byID[id]
	if st, ok := fields["status"].(domain.AppointmentStatus); ok {
		a.Status = st
	}
	return &a, nil
}

func (m *mockAppointments) UpdateAppointmentIfVersion(_ context.Context, id string, version time.Time, fields map[string]any) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "appointment", ID: id}
	}
	if a.UpdatedAt == nil || !a.UpdatedAt.Equal(version) {
		return nil, &domain.ErrConflict{Message: "stale"}
	}
	m.lastPatch = fields
	a.Date = fields["date"].(string)
	now := time.Now()
	a.UpdatedAt = &now
	m.byID[id] = a
	return &a, nil
}

func (m *mockAppointments) DeleteAppointment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.byID, id)
	return nil
}

func (m *mockAppointments) SetAppointmentAgents(_ context.Context, appointmentID string, agentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setAgentsErr != nil {
		return m.setAgentsErr
	}
	m.agentSets[appointmentID] = agentIDs
	return nil
}

func (m *mockAppointments) ListAppointmentIDsForAgent(_ context.Context, agentID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if agentID == m.failAgent {
		return nil, &domain.ErrExternalService{Service: "supabase/appointment_agents", Status: 500, Message: "boom"}
	}
	return m.byAgent[agentID], nil
}

func (m *mockAppointments) ListAppointmentsByIDs(_ context.Context, ids []string, from, to string) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, id := range ids {
		a, ok := m.byID[id]
		if ok && a.Date >= from && a.Date <= to {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- Vacations ---

type mockVacations struct {
	created   *domain.Vacation
	version   time.Time
	fields    map[string]any
	reminders []domain.VacationReminder
	daysAhead int
	writes    int
}

func (m *mockVacations) ListVacations(_ context.Context, _ string, _ int) ([]domain.Vacation, error) {
	return nil, nil
}

func (m *mockVacations) GetVacation(_ context.Context, id string) (*domain.Vacation, error) {
	return &domain.Vacation{ID: id}, nil
}

func (m *mockVacations) CreateVacation(_ context.Context, v *domain.Vacation) (*domain.Vacation, error) {
	m.writes++
	m.created = v
	out := *v
	out.ID = "vac-new"
	return &out, nil
}

func (m *mockVacations) UpdateVacationIfVersion(_ context.Context, id string, version time.Time, fields map[string]any) (*domain.Vacation, error) {
	m.writes++
	m.version = version
	m.fields = fields
	return &domain.Vacation{ID: id}, nil
}

func (m *mockVacations) DeleteVacation(_ context.Context, _ string) error {
	m.writes++
	return nil
}

func (m *mockVacations) UpcomingVacationReminders(_ context.Context, daysAhead int) ([]domain.VacationReminder, error) {
	m.daysAhead = daysAhead
	return m.reminders, nil
}

// --- Time off ---

type mockTimeOff struct {
	created  *domain.TimeOff
	timeBank *domain.TimeBankEntry
}

func (m *mockTimeOff) ListTimeOff(_ context.Context, _, _ string) ([]domain.TimeOff, error) {
	return nil, nil
}

func (m *mockTimeOff) CreateTimeOff(_ context.Context, t *domain.TimeOff) (*domain.TimeOff, error) {
	m.created = t
	out := *t
	out.ID = "off-new"
	return &out, nil
}

func (m *mockTimeOff) ApproveTimeOff(_ context.Context, id string, approved bool) (*domain.TimeOff, error) {
	return &domain.TimeOff{ID: id, Approved: approved}, nil
}

func (m *mockTimeOff) DeleteTimeOff(_ context.Context, _ string) error { return nil }

func (m *mockTimeOff) UpsertTimeBank(_ context.Context, e *domain.TimeBankEntry) error {
	m.timeBank = e
	return nil
}

// --- Bonus ---

type mockBonus struct {
	settings     domain.BonusSettings
	levels       []domain.CityBonusLevel
	settingsErr  error
	createdLevel *domain.CityBonusLevel
	saved        *domain.BonusSettings
}

func (m *mockBonus) GetBonusSettings(_ context.Context) (*domain.BonusSettings, error) {
	if m.settingsErr != nil {
		return nil, m.settingsErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockBonus) UpdateBonusSettings(_ context.Context, s *domain.BonusSettings) (*domain.BonusSettings, error) {
	m.saved = s
	return s, nil
}

func (m *mockBonus) ListCityLevels(_ context.Context) ([]domain.CityBonusLevel, error) {
	return m.levels, nil
}

func (m *mockBonus) CreateCityLevel(_ context.Context, c *domain.CityBonusLevel) (*domain.CityBonusLevel, error) {
	m.createdLevel = c
	return c, nil
}

func (m *mockBonus) UpdateCityLevel(_ context.Context, id string, _ map[string]any) (*domain.CityBonusLevel, error) {
	return &domain.CityBonusLevel{ID: id}, nil
}

func (m *mockBonus) DeleteCityLevel(_ context.Context, _ string) error { return nil }

// --- User admin ---

type mockUserAdmin struct {
	created     *domain.CreateUserRequest
	updated     *domain.UpdateUserRequest
	deleted     string
	reset       string
	callerToken string
}

func (m *mockUserAdmin) CreateUser(_ context.Context, callerToken string, req *domain.CreateUserRequest) (*domain.UserAccount, error) {
	m.callerToken = callerToken
	m.created = req
	return &domain.UserAccount{ID: "user-new", Username: req.Username, Email: req.Email, Role: req.Role, Sector: req.Sector}, nil
}

func (m *mockUserAdmin) UpdateUser(_ context.Context, callerToken string, req *domain.UpdateUserRequest) (*domain.UserAccount, error) {
	m.callerToken = callerToken
	m.updated = req
	return &domain.UserAccount{ID: req.UserID}, nil
}

func (m *mockUserAdmin) DeleteUser(_ context.Context, callerToken string, userID string) error {
	m.callerToken = callerToken
	m.deleted = userID
	return nil
}

func (m *mockUserAdmin) ResetPassword(_ context.Context, callerToken string, userID, _ string) error {
	m.callerToken = callerToken
	m.reset = userID
	return nil
}
