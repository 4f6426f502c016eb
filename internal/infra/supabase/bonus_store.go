package supabase

import (
	"context"
	"fmt"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Bonus settings & city levels
// ============================================================

// GetBonusSettings returns the singleton settings row, or zero values when
// none has been saved yet.
func (c *Client) GetBonusSettings(ctx context.Context) (*domain.BonusSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBonusSettings")
	defer span.End()

	var rows []domain.BonusSettings
	if err := c.getJSON(ctx, "supabase/bonus_settings", "bonus_settings?select=*&limit=1", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &domain.BonusSettings{}, nil
	}
	return &rows[0], nil
}

// UpdateBonusSettings updates the singleton row, inserting it on first use.
func (c *Client) UpdateBonusSettings(ctx context.Context, s *domain.BonusSettings) (*domain.BonusSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBonusSettings")
	defer span.End()

	data := map[string]any{
		"base_value":    s.BaseValue,
		"level_1_value": s.Level1Value,
		"level_2_value": s.Level2Value,
		"level_3_value": s.Level3Value,
	}

	var rows []domain.BonusSettings
	if s.ID == "" {
		if err := c.postJSON(ctx, "supabase/bonus_settings", "bonus_settings", data, &rows); err != nil {
			return nil, err
		}
	} else {
		path := fmt.Sprintf("bonus_settings?id=%s", eq(s.ID))
		if err := c.patchJSON(ctx, "supabase/bonus_settings", path, data, &rows); err != nil {
			return nil, err
		}
	}
	return firstOrNotFound(rows, "bonus_settings", s.ID)
}

func (c *Client) ListCityLevels(ctx context.Context) ([]domain.CityBonusLevel, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCityLevels")
	defer span.End()

	rows := []domain.CityBonusLevel{}
	if err := c.getJSON(ctx, "supabase/city_bonus_levels", "city_bonus_levels?select=*&order=city_name.asc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) CreateCityLevel(ctx context.Context, cl *domain.CityBonusLevel) (*domain.CityBonusLevel, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCityLevel")
	defer span.End()
	span.SetAttributes(attribute.String("city", cl.CityName))

	data := map[string]any{
		"city_name": cl.CityName,
		"level":     cl.Level,
		"distance":  cl.Distance,
	}
	var rows []domain.CityBonusLevel
	if err := c.postJSON(ctx, "supabase/city_bonus_levels", "city_bonus_levels", data, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "city_bonus_level", cl.CityName)
}

func (c *Client) UpdateCityLevel(ctx context.Context, id string, fields map[string]any) (*domain.CityBonusLevel, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCityLevel")
	defer span.End()
	span.SetAttributes(attribute.String("city_level.id", id))

	var rows []domain.CityBonusLevel
	if err := c.patchJSON(ctx, "supabase/city_bonus_levels", fmt.Sprintf("city_bonus_levels?id=%s", eq(id)), fields, &rows); err != nil {
		return nil, err
	}
	return firstOrNotFound(rows, "city_bonus_level", id)
}

func (c *Client) DeleteCityLevel(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCityLevel")
	defer span.End()
	span.SetAttributes(attribute.String("city_level.id", id))

	return c.deleteRows(ctx, "supabase/city_bonus_levels", fmt.Sprintf("city_bonus_levels?id=%s", eq(id)))
}
