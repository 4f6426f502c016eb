package service

import (
	"context"
	"errors"
	"strings"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var userTracer = otel.Tracer("service/users")

const minPasswordLength = 6

// UserService runs the privileged user lifecycle on behalf of admin and
// dev sessions.
type UserService struct {
	admin     port.UserAdmin
	directory port.DirectoryStore
	logger    *zap.Logger
}

// NewUserService creates a user-management service.
func NewUserService(admin port.UserAdmin, directory port.DirectoryStore, logger *zap.Logger) *UserService {
	return &UserService{admin: admin, directory: directory, logger: logger}
}

func (s *UserService) List(ctx context.Context, sess *domain.Session) ([]domain.UserAccount, error) {
	if err := access.Allow(sess, access.CanAccessUserManagement, "ver usuários"); err != nil {
		return nil, err
	}
	ctx, span := userTracer.Start(ctx, "UserService.List")
	defer span.End()

	return s.directory.ListUsers(ctx)
}

func (s *UserService) Create(ctx context.Context, sess *domain.Session, req *domain.CreateUserRequest) (*domain.UserAccount, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Create")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Sector = domain.ParseSector(string(req.Sector))
	if req.Role == "" {
		req.Role = domain.RoleUser
	}

	if err := s.authorize(sess, &req.Sector); err != nil {
		return nil, err
	}
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if !strings.Contains(req.Email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "e-mail inválido"}
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validateRoleGrant(sess, req.Role); err != nil {
		return nil, err
	}
	if !req.Sector.Valid() {
		return nil, &domain.ErrValidation{Field: "sector", Message: "setor inválido: " + string(req.Sector)}
	}
	if err := s.ensureUsernameFree(ctx, req.Username); err != nil {
		return nil, err
	}

	user, err := s.admin.CreateUser(ctx, sess.AccessToken, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.String("created_by", sess.UserID),
	)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, sess *domain.Session, req *domain.UpdateUserRequest) (*domain.UserAccount, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("target.id", req.UserID))

	if err := s.authorize(sess, nil); err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "usuário é obrigatório"}
	}
	target, err := s.targetProfile(ctx, sess, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.Sector != nil {
		sector := domain.ParseSector(string(*req.Sector))
		if !sector.Valid() {
			return nil, &domain.ErrValidation{Field: "sector", Message: "setor inválido: " + string(sector)}
		}
		if err := s.authorize(sess, &sector); err != nil {
			return nil, err
		}
		req.Sector = &sector
	}
	if req.Role != "" {
		if err := validateRoleGrant(sess, req.Role); err != nil {
			return nil, err
		}
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "e-mail inválido"}
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username != "" && !strings.EqualFold(req.Username, target.Username) {
		if err := validateUsername(req.Username); err != nil {
			return nil, err
		}
		if err := s.ensureUsernameFree(ctx, req.Username); err != nil {
			return nil, err
		}
	}

	user, err := s.admin.UpdateUser(ctx, sess.AccessToken, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.String("user_id", req.UserID), zap.String("updated_by", sess.UserID))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, sess *domain.Session, userID string) error {
	ctx, span := userTracer.Start(ctx, "UserService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("target.id", userID))

	if err := s.authorize(sess, nil); err != nil {
		return err
	}
	if userID == "" {
		return &domain.ErrValidation{Field: "user_id", Message: "usuário é obrigatório"}
	}
	if userID == sess.UserID {
		return &domain.ErrValidation{Field: "user_id", Message: "não é possível excluir o próprio usuário"}
	}
	if _, err := s.targetProfile(ctx, sess, userID); err != nil {
		return err
	}

	if err := s.admin.DeleteUser(ctx, sess.AccessToken, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", userID), zap.String("deleted_by", sess.UserID))
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, sess *domain.Session, req *domain.ResetPasswordRequest) error {
	ctx, span := userTracer.Start(ctx, "UserService.ResetPassword")
	defer span.End()
	span.SetAttributes(attribute.String("target.id", req.UserID))

	if err := s.authorize(sess, nil); err != nil {
		return err
	}
	if req.UserID == "" {
		return &domain.ErrValidation{Field: "user_id", Message: "usuário é obrigatório"}
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}
	if _, err := s.targetProfile(ctx, sess, req.UserID); err != nil {
		return err
	}

	if err := s.admin.ResetPassword(ctx, sess.AccessToken, req.UserID, req.NewPassword); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", req.UserID), zap.String("reset_by", sess.UserID))
	return nil
}

// authorize requires an admin or dev session allowed to manage users of
// target. A nil or null-sector target checks the role only.
func (s *UserService) authorize(sess *domain.Session, target *domain.Sector) error {
	if target != nil && *target == domain.SectorNone {
		target = nil
	}
	if sess == nil {
		return &domain.ErrUnauthorized{Message: "sessão não encontrada"}
	}
	if sess.Role != domain.RoleAdmin && sess.Role != domain.RoleDev {
		return &domain.ErrForbidden{Action: "gerenciar usuários"}
	}
	if !access.CanEditUserManagement(sess.Role, sess.Sector, target) {
		return &domain.ErrForbidden{Action: "gerenciar usuários do setor " + sectorLabel(target)}
	}
	return nil
}

// targetProfile loads the user being changed and checks the caller may
// manage its sector. Dev accounts are managed by devs only, whatever
// their sector.
func (s *UserService) targetProfile(ctx context.Context, sess *domain.Session, userID string) (*domain.Profile, error) {
	p, err := s.directory.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	sector := p.Sector
	if err := s.authorize(sess, &sector); err != nil {
		return nil, err
	}
	if sess.Role != domain.RoleDev {
		role, err := s.directory.GetUserRole(ctx, userID)
		if err != nil {
			return nil, err
		}
		if role == domain.RoleDev {
			return nil, &domain.ErrForbidden{Action: "gerenciar usuário dev"}
		}
	}
	return p, nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	email, err := s.directory.GetEmailFromUsername(ctx, username)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	if email != "" {
		return &domain.ErrConflict{Message: "nome de usuário já está em uso"}
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return &domain.ErrValidation{Field: "username", Message: "usuário é obrigatório"}
	}
	if strings.ContainsAny(username, " \t") {
		return &domain.ErrValidation{Field: "username", Message: "usuário não pode conter espaços"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &domain.ErrValidation{Field: "password", Message: "senha deve ter pelo menos 6 caracteres"}
	}
	return nil
}

// validateRoleGrant stops admins from creating dev accounts.
func validateRoleGrant(sess *domain.Session, role domain.Role) error {
	if !role.Valid() {
		return &domain.ErrValidation{Field: "role", Message: "perfil inválido: " + string(role)}
	}
	if role == domain.RoleDev && sess.Role != domain.RoleDev {
		return &domain.ErrForbidden{Action: "atribuir perfil dev"}
	}
	return nil
}

func sectorLabel(s *domain.Sector) string {
	if s == nil || *s == domain.SectorNone {
		return "sem setor"
	}
	return string(*s)
}
