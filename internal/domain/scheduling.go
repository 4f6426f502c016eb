// Package domain defines the core entities of the scheduling backend.
// These models are independent of the hosted backend and mirror the
// column names of its tables so rows decode straight into them.
package domain

import "time"

// DateLayout is the ISO calendar-date format used by every date column.
const DateLayout = "2006-01-02"

// ============================================================
// Agents
// ============================================================

// Agent is a field technician.
type Agent struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Sector    Sector     `json:"sector"`
	IsActive  bool       `json:"is_active"`
	Color     string     `json:"color,omitempty"`
	UserID    *string    `json:"user_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ============================================================
// Vehicles
// ============================================================

// VehicleStatus is the fleet state of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInUse       VehicleStatus = "in_use"
	VehicleMaintenance VehicleStatus = "maintenance"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleInUse, VehicleMaintenance:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle referenced by appointments.
type Vehicle struct {
	ID     string        `json:"id"`
	Model  string        `json:"model"`
	Plate  string        `json:"plate"`
	Status VehicleStatus `json:"status"`
}

// ============================================================
// Appointments
// ============================================================

// AppointmentStatus drives bonus eligibility (only completed counts).
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from s to next.
// scheduled -> in_progress -> completed; any non-terminal state may be
// cancelled. Re-saving the same status is allowed.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusScheduled:
		return next == StatusInProgress || next == StatusCompleted || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// ExpenseStatus tells finance how to handle the visit's travel expenses.
type ExpenseStatus string

const (
	ExpenseDoNotSeparate     ExpenseStatus = "do-not-separate"
	ExpenseSeparateCash      ExpenseStatus = "separate-cash"
	ExpenseSeparateDayBefore ExpenseStatus = "separate-day-before"
)

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseDoNotSeparate, ExpenseSeparateCash, ExpenseSeparateDayBefore:
		return true
	}
	return false
}

// Appointment is a scheduled field visit. AgentIDs is populated from the
// appointment_agents join table and is not a column.
type Appointment struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	City          string            `json:"city"`
	Date          string            `json:"date"`
	Time          string            `json:"time,omitempty"`
	Status        AppointmentStatus `json:"status"`
	ExpenseStatus ExpenseStatus     `json:"expense_status,omitempty"`
	VehicleID     *string           `json:"vehicle_id,omitempty"`
	Penalized     bool              `json:"penalized"`
	AgentIDs      []string          `json:"agent_ids,omitempty"`
	CreatedAt     *time.Time        `json:"created_at,omitempty"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
}

// AppointmentAgent is a row of the appointment_agents join table.
type AppointmentAgent struct {
	AppointmentID string `json:"appointment_id"`
	AgentID       string `json:"agent_id"`
}

// RescheduleRequest moves an appointment to another date. Version is the
// updated_at value the caller last read.
type RescheduleRequest struct {
	Date    string    `json:"date"`
	Version time.Time `json:"version"`
}

// ============================================================
// Partial updates. Nil fields are left unchanged.
// ============================================================

// AgentUpdate is the body of PATCH /v1/agents/{id}.
type AgentUpdate struct {
	Name     *string `json:"name,omitempty"`
	Sector   *Sector `json:"sector,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Color    *string `json:"color,omitempty"`
	UserID   *string `json:"user_id,omitempty"`
}

// VehicleUpdate is the body of PATCH /v1/vehicles/{id}.
type VehicleUpdate struct {
	Model  *string        `json:"model,omitempty"`
	Plate  *string        `json:"plate,omitempty"`
	Status *VehicleStatus `json:"status,omitempty"`
}

// AppointmentUpdate is the body of PATCH /v1/appointments/{id}.
// A non-nil AgentIDs replaces the assignment; an empty list clears it.
type AppointmentUpdate struct {
	Title         *string            `json:"title,omitempty"`
	Description   *string            `json:"description,omitempty"`
	City          *string            `json:"city,omitempty"`
	Date          *string            `json:"date,omitempty"`
	Time          *string            `json:"time,omitempty"`
	Status        *AppointmentStatus `json:"status,omitempty"`
	ExpenseStatus *ExpenseStatus     `json:"expense_status,omitempty"`
	VehicleID     *string            `json:"vehicle_id,omitempty"`
	Penalized     *bool              `json:"penalized,omitempty"`
	AgentIDs      []string           `json:"agent_ids,omitempty"`
}
