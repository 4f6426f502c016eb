package handler

import (
	"testing"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBonusReportView_FormatsMoney(t *testing.T) {
	rep := &domain.BonusReport{
		Month:      "2025-03",
		MonthStart: "2025-03-01",
		MonthEnd:   "2025-03-31",
		Agents: []domain.AgentBonus{
			{
				AgentID:        "a-1",
				AgentName:      "Carlos",
				CompletedCount: 2,
				TotalBonus:     decimal.RequireFromString("37.5"),
				Lines: []domain.BonusLine{
					{AppointmentID: "ap-1", Date: "2025-03-03", City: "CASCAVEL", Level: 1, Amount: decimal.RequireFromString("15")},
					{AppointmentID: "ap-2", Date: "2025-03-10", City: "TOLEDO", Level: 2, Amount: decimal.RequireFromString("22.5")},
				},
			},
			{AgentID: "a-2", AgentName: "Bia", TotalBonus: decimal.Zero, Error: "falha ao carregar agendamentos"},
		},
		GrandTotal: decimal.RequireFromString("37.5"),
	}

	view := toBonusReportView(rep)

	assert.Equal(t, "37.50", view.GrandTotal)
	require.Len(t, view.Agents, 2)
	assert.Equal(t, "37.50", view.Agents[0].TotalBonus)
	require.Len(t, view.Agents[0].Lines, 2)
	assert.Equal(t, "15.00", view.Agents[0].Lines[0].Amount)
	assert.Equal(t, "22.50", view.Agents[0].Lines[1].Amount)
	assert.Equal(t, "0.00", view.Agents[1].TotalBonus)
	assert.Equal(t, "falha ao carregar agendamentos", view.Agents[1].Error)
	assert.Empty(t, view.Agents[1].Lines)
}

func TestBonusReportView_EmptyAgentsIsArray(t *testing.T) {
	view := toBonusReportView(&domain.BonusReport{Month: "2025-03", GrandTotal: decimal.Zero})

	assert.NotNil(t, view.Agents)
	assert.Equal(t, "0.00", view.GrandTotal)
}
