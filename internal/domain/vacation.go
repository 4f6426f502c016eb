package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Vacations
// ============================================================

// Vacation is a vacation period of an agent. EndDate is derived from
// StartDate + Days and is never accepted from the caller.
type Vacation struct {
	ID           string     `json:"id"`
	AgentID      string     `json:"agent_id"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Days         int        `json:"days"`
	PeriodNumber int        `json:"period_number"`
	ExpiryDate   string     `json:"expiry_date,omitempty"`
	Deadline     string     `json:"deadline,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// VacationRequest is the body for creating or updating a vacation.
// Version is required on update and ignored on create.
type VacationRequest struct {
	AgentID      string     `json:"agent_id"`
	StartDate    string     `json:"start_date"`
	Days         int        `json:"days"`
	PeriodNumber int        `json:"period_number"`
	ExpiryDate   string     `json:"expiry_date,omitempty"`
	Deadline     string     `json:"deadline,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Version      *time.Time `json:"version,omitempty"`
}

// VacationReminder is a row returned by get_upcoming_vacation_reminders.
type VacationReminder struct {
	VacationID string `json:"vacation_id"`
	AgentID    string `json:"agent_id"`
	AgentName  string `json:"agent_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	DaysUntil  int    `json:"days_until"`
}

// ============================================================
// Time off & time bank
// ============================================================

// TimeOffType distinguishes a full day off from a partial one.
type TimeOffType string

const (
	TimeOffFull    TimeOffType = "full"
	TimeOffPartial TimeOffType = "partial"
)

func (t TimeOffType) Valid() bool {
	return t == TimeOffFull || t == TimeOffPartial
}

// TimeOff is a single day off. A nil AgentID is a company-wide day off.
type TimeOff struct {
	ID        string      `json:"id"`
	AgentID   *string     `json:"agent_id"`
	Date      string      `json:"date"`
	Type      TimeOffType `json:"type"`
	Approved  bool        `json:"approved"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

// TimeBankEntry is the monthly hour balance of an agent.
type TimeBankEntry struct {
	AgentID        string          `json:"agent_id"`
	ReferenceMonth string          `json:"reference_month"`
	Hours          decimal.Decimal `json:"hours"`
	Notes          string          `json:"notes,omitempty"`
}
