package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Bonus configuration
// ============================================================

// BonusSettings is the singleton bonus schedule: a base value paid per
// eligible visit plus an add-on per city level.
type BonusSettings struct {
	ID          string          `json:"id,omitempty"`
	BaseValue   decimal.Decimal `json:"base_value"`
	Level1Value decimal.Decimal `json:"level_1_value"`
	Level2Value decimal.Decimal `json:"level_2_value"`
	Level3Value decimal.Decimal `json:"level_3_value"`
}

// LevelValue returns the add-on for a city level; unknown levels add nothing.
func (s BonusSettings) LevelValue(level int) decimal.Decimal {
	switch level {
	case 1:
		return s.Level1Value
	case 2:
		return s.Level2Value
	case 3:
		return s.Level3Value
	}
	return decimal.Zero
}

// CityBonusLevel assigns a bonus level to a city. CityName is stored upper case.
type CityBonusLevel struct {
	ID       string  `json:"id,omitempty"`
	CityName string  `json:"city_name"`
	Level    int     `json:"level"`
	Distance float64 `json:"distance,omitempty"`
}

// NormalizeCity is the stored form of a city level name.
func NormalizeCity(city string) string {
	return strings.ToUpper(strings.TrimSpace(city))
}

// ============================================================
// Bonus report
// ============================================================

// BonusLine is one paid visit inside an agent's bonus.
type BonusLine struct {
	AppointmentID string          `json:"appointment_id"`
	Date          string          `json:"date"`
	City          string          `json:"city"`
	Level         int             `json:"level"`
	Amount        decimal.Decimal `json:"amount"`
}

// AgentBonus is the monthly payout of one agent. Error is set when the
// agent's appointments could not be loaded; totals are then zero.
type AgentBonus struct {
	AgentID         string          `json:"agent_id"`
	AgentName       string          `json:"agent_name"`
	CompletedCount  int             `json:"completed_count"`
	InProgressCount int             `json:"in_progress_count"`
	PenaltyCount    int             `json:"penalty_count"`
	TotalBonus      decimal.Decimal `json:"total_bonus"`
	Lines           []BonusLine     `json:"lines,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// BonusReport is the result of a monthly bonus computation.
type BonusReport struct {
	Month      string          `json:"month"`
	MonthStart string          `json:"month_start"`
	MonthEnd   string          `json:"month_end"`
	Agents     []AgentBonus    `json:"agents"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// CityBonusLevelUpdate is the body of PATCH /v1/bonus/cities/{id}.
type CityBonusLevelUpdate struct {
	CityName *string  `json:"city_name,omitempty"`
	Level    *int     `json:"level,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}
