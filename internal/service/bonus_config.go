package service

import (
	"context"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BonusConfigService manages the bonus schedule and the city levels.
type BonusConfigService struct {
	store  port.BonusStore
	logger *zap.Logger
}

// NewBonusConfigService creates a bonus configuration service.
func NewBonusConfigService(store port.BonusStore, logger *zap.Logger) *BonusConfigService {
	return &BonusConfigService{store: store, logger: logger}
}

func (s *BonusConfigService) GetSettings(ctx context.Context, sess *domain.Session) (*domain.BonusSettings, error) {
	if err := access.Allow(sess, access.CanAccessBonus, "ver bonificações"); err != nil {
		return nil, err
	}
	ctx, span := bonusTracer.Start(ctx, "BonusConfigService.GetSettings")
	defer span.End()

	return s.store.GetBonusSettings(ctx)
}

func (s *BonusConfigService) UpdateSettings(ctx context.Context, sess *domain.Session, in *domain.BonusSettings) (*domain.BonusSettings, error) {
	if err := access.Allow(sess, access.CanEditBonus, "editar bonificações"); err != nil {
		return nil, err
	}
	ctx, span := bonusTracer.Start(ctx, "BonusConfigService.UpdateSettings")
	defer span.End()

	values := map[string]decimal.Decimal{
		"base_value":    in.BaseValue,
		"level_1_value": in.Level1Value,
		"level_2_value": in.Level2Value,
		"level_3_value": in.Level3Value,
	}
	for field, v := range values {
		if v.IsNegative() {
			return nil, &domain.ErrValidation{Field: field, Message: "valor não pode ser negativo"}
		}
	}

	current, err := s.store.GetBonusSettings(ctx)
	if err != nil {
		return nil, err
	}
	in.ID = current.ID

	updated, err := s.store.UpdateBonusSettings(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bonus settings updated",
		zap.String("base_value", updated.BaseValue.StringFixed(2)),
		zap.String("updated_by", sess.UserID),
	)
	return updated, nil
}

func (s *BonusConfigService) ListLevels(ctx context.Context, sess *domain.Session) ([]domain.CityBonusLevel, error) {
	if err := access.Allow(sess, access.CanAccessBonus, "ver bonificações"); err != nil {
		return nil, err
	}
	ctx, span := bonusTracer.Start(ctx, "BonusConfigService.ListLevels")
	defer span.End()

	return s.store.ListCityLevels(ctx)
}

// CreateLevel stores a city level. Duplicate cities are rejected by the
// backend's unique constraint and surface as ErrConflict.
func (s *BonusConfigService) CreateLevel(ctx context.Context, sess *domain.Session, c *domain.CityBonusLevel) (*domain.CityBonusLevel, error) {
	if err := access.Allow(sess, access.CanEditBonus, "editar bonificações"); err != nil {
		return nil, err
	}
	ctx, span := bonusTracer.Start(ctx, "BonusConfigService.CreateLevel")
	defer span.End()

	c.CityName = domain.NormalizeCity(c.CityName)
	if err := validateCityLevel(c.CityName, c.Level, c.Distance); err != nil {
		return nil, err
	}
	return s.store.CreateCityLevel(ctx, c)
}

func (s *BonusConfigService) UpdateLevel(ctx context.Context, sess *domain.Session, id string, u *domain.CityBonusLevelUpdate) (*domain.CityBonusLevel, error) {
	if err := access.Allow(sess, access.CanEditBonus, "editar bonificações"); err != nil {
		return nil, err
	}
	ctx, span := bonusTracer.Start(ctx, "BonusConfigService.UpdateLevel")
	defer span.End()

	fields := map[string]any{}
	if u.CityName != nil {
		city := domain.NormalizeCity(*u.CityName)
		if city == "" {
			return nil, &domain.ErrValidation{Field: "city_name", Message: "cidade é obrigatória"}
		}
		fields["city_name"] = city
	}
	if u.Level != nil {
		if err := validateLevel(*u.Level); err != nil {
			return nil, err
		}
		fields["level"] = *u.Level
	}
	if u.Distance != nil {
		if *u.Distance < 0 {
			return nil, &domain.ErrValidation{Field: "distance", Message: "distância não pode ser negativa"}
		}
		fields["distance"] = *u.Distance
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "nenhum campo para alterar"}
	}
	return s.store.UpdateCityLevel(ctx, id, fields)
}

func (s *BonusConfigService) DeleteLevel(ctx context.Context, sess *domain.Session, id string) error {
	if err := access.Allow(sess, access.CanEditBonus, "editar bonificações"); err != nil {
		return err
	}
	ctx, span := bonusTracer.Start(ctx, "BonusConfigService.DeleteLevel")
	defer span.End()

	return s.store.DeleteCityLevel(ctx, id)
}

func validateCityLevel(city string, level int, distance float64) error {
	if city == "" {
		return &domain.ErrValidation{Field: "city_name", Message: "cidade é obrigatória"}
	}
	if err := validateLevel(level); err != nil {
		return err
	}
	if distance < 0 {
		return &domain.ErrValidation{Field: "distance", Message: "distância não pode ser negativa"}
	}
	return nil
}

func validateLevel(level int) error {
	if level < 1 || level > 3 {
		return &domain.ErrValidation{Field: "level", Message: "nível deve ser 1, 2 ou 3"}
	}
	return nil
}
