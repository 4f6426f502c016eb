package service_test

import (
	"context"
	"testing"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func userDirectory() *mockDirectory {
	return &mockDirectory{
		emails: map[string]string{"joao": "joao@example.com"},
		profiles: map[string]*domain.Profile{
			"u-sup": {ID: "u-sup", Username: "joao", Sector: domain.SectorSuporte},
			"u-com": {ID: "u-com", Username: "lia", Sector: domain.SectorComercial},
			"u-nil": {ID: "u-nil", Username: "nova"},
			"u-dev": {ID: "u-dev", Username: "root"},
		},
		roles: map[string]domain.Role{"u-dev": domain.RoleDev},
	}
}

func newUserRequest(sector domain.Sector) *domain.CreateUserRequest {
	return &domain.CreateUserRequest{
		Username: "pedro",
		Email:    "pedro@example.com",
		Password: "secret1",
		Role:     domain.RoleUser,
		Sector:   sector,
	}
}

func TestUserCreate_SectorMatrix(t *testing.T) {
	cases := []struct {
		name    string
		role    domain.Role
		sector  domain.Sector
		target  domain.Sector
		allowed bool
	}{
		{"dev any sector", domain.RoleDev, domain.SectorNone, domain.SectorSuporte, true},
		{"comercial admin other sector", domain.RoleAdmin, domain.SectorComercial, domain.SectorSuporte, true},
		{"suporte admin own sector", domain.RoleAdmin, domain.SectorSuporte, domain.SectorSuporte, true},
		{"suporte admin other sector", domain.RoleAdmin, domain.SectorSuporte, domain.SectorComercial, false},
		{"suporte admin no sector", domain.RoleAdmin, domain.SectorSuporte, domain.SectorNone, true},
		{"plain user", domain.RoleUser, domain.SectorComercial, domain.SectorComercial, false},
		{"financeiro", domain.RoleFinanceiro, domain.SectorAdministrativo, domain.SectorAdministrativo, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			admin := &mockUserAdmin{}
			svc := service.NewUserService(admin, userDirectory(), zap.NewNop())

			_, err := svc.Create(context.Background(), session(tc.role, tc.sector), newUserRequest(tc.target))
			if tc.allowed {
				require.NoError(t, err)
				require.NotNil(t, admin.created)
				return
			}
			var forbidden *domain.ErrForbidden
			require.ErrorAs(t, err, &forbidden)
			assert.Nil(t, admin.created)
		})
	}
}

func TestUserCreate_ForwardsCallerToken(t *testing.T) {
	admin := &mockUserAdmin{}
	svc := service.NewUserService(admin, userDirectory(), zap.NewNop())

	user, err := svc.Create(context.Background(), session(domain.RoleDev, domain.SectorNone), newUserRequest("suporte"))
	require.NoError(t, err)

	assert.Equal(t, "tok", admin.callerToken)
	assert.Equal(t, domain.SectorSuporte, user.Sector)
}

func TestUserCreate_Validation(t *testing.T) {
	svc := service.NewUserService(&mockUserAdmin{}, userDirectory(), zap.NewNop())
	sess := session(domain.RoleDev, domain.SectorNone)

	cases := map[string]struct {
		mutate func(*domain.CreateUserRequest)
		field  string
	}{
		"short password":  {func(r *domain.CreateUserRequest) { r.Password = "12345" }, "password"},
		"bad email":       {func(r *domain.CreateUserRequest) { r.Email = "pedro" }, "email"},
		"blank username":  {func(r *domain.CreateUserRequest) { r.Username = "  " }, "username"},
		"spaced username": {func(r *domain.CreateUserRequest) { r.Username = "pedro silva" }, "username"},
		"unknown role":    {func(r *domain.CreateUserRequest) { r.Role = "root" }, "role"},
		"unknown sector":  {func(r *domain.CreateUserRequest) { r.Sector = "Marketing" }, "sector"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := newUserRequest(domain.SectorSuporte)
			tc.mutate(req)
			_, err := svc.Create(context.Background(), sess, req)
			var validation *domain.ErrValidation
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	admin := &mockUserAdmin{}
	svc := service.NewUserService(admin, userDirectory(), zap.NewNop())
	req := newUserRequest(domain.SectorSuporte)
	req.Username = "joao"

	_, err := svc.Create(context.Background(), session(domain.RoleDev, domain.SectorNone), req)

	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Nil(t, admin.created)
}

func TestUserCreate_AdminCannotGrantDev(t *testing.T) {
	svc := service.NewUserService(&mockUserAdmin{}, userDirectory(), zap.NewNop())
	req := newUserRequest(domain.SectorComercial)
	req.Role = domain.RoleDev

	_, err := svc.Create(context.Background(), session(domain.RoleAdmin, domain.SectorComercial), req)
	var forbidden *domain.ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	_, err = svc.Create(context.Background(), session(domain.RoleDev, domain.SectorNone), req)
	assert.NoError(t, err)
}

func TestUserUpdate_TargetSector(t *testing.T) {
	admin := &mockUserAdmin{}
	svc := service.NewUserService(admin, userDirectory(), zap.NewNop())
	sess := session(domain.RoleAdmin, domain.SectorSuporte)

	_, err := svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-sup", FullName: "João"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-com", FullName: "Lia"})
	var forbidden *domain.ErrForbidden
	require.ErrorAs(t, err, &forbidden, "user of another sector")

	moved := domain.SectorComercial
	_, err = svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-sup", Sector: &moved})
	require.ErrorAs(t, err, &forbidden, "moving a user out of the admin's sector")

	_, err = svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-nil", FullName: "Nova"})
	assert.NoError(t, err, "a user without sector is manageable by any admin")
}

func TestUserUpdate_UsernameChange(t *testing.T) {
	svc := service.NewUserService(&mockUserAdmin{}, userDirectory(), zap.NewNop())
	sess := session(domain.RoleDev, domain.SectorNone)

	_, err := svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-sup", Username: "JOAO"})
	require.NoError(t, err, "same username in another case is not a change")

	_, err = svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-com", Username: "joao"})
	var conflict *domain.ErrConflict
	assert.ErrorAs(t, err, &conflict)
}

func TestUserDelete(t *testing.T) {
	admin := &mockUserAdmin{}
	svc := service.NewUserService(admin, userDirectory(), zap.NewNop())
	sess := session(domain.RoleAdmin, domain.SectorComercial)

	err := svc.Delete(context.Background(), sess, "caller-1")
	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)

	err = svc.Delete(context.Background(), sess, "missing")
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, svc.Delete(context.Background(), sess, "u-sup"))
	assert.Equal(t, "u-sup", admin.deleted)
}

func TestUserResetPassword(t *testing.T) {
	admin := &mockUserAdmin{}
	svc := service.NewUserService(admin, userDirectory(), zap.NewNop())

	err := svc.ResetPassword(context.Background(), session(domain.RoleAdmin, domain.SectorSuporte),
		&domain.ResetPasswordRequest{UserID: "u-sup", NewPassword: "abc"})
	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)

	err = svc.ResetPassword(context.Background(), session(domain.RoleAdmin, domain.SectorSuporte),
		&domain.ResetPasswordRequest{UserID: "u-com", NewPassword: "abcdef"})
	var forbidden *domain.ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	require.NoError(t, svc.ResetPassword(context.Background(), session(domain.RoleAdmin, domain.SectorComercial),
		&domain.ResetPasswordRequest{UserID: "u-sup", NewPassword: "abcdef"}))
	assert.Equal(t, "u-sup", admin.reset)
}

func TestUserAdminCannotTouchDevAccounts(t *testing.T) {
	admin := &mockUserAdmin{}
	svc := service.NewUserService(admin, userDirectory(), zap.NewNop())
	sess := session(domain.RoleAdmin, domain.SectorComercial)
	var forbidden *domain.ErrForbidden

	err := svc.Delete(context.Background(), sess, "u-dev")
	require.ErrorAs(t, err, &forbidden)

	err = svc.ResetPassword(context.Background(), sess, &domain.ResetPasswordRequest{UserID: "u-dev", NewPassword: "abcdef"})
	require.ErrorAs(t, err, &forbidden)

	_, err = svc.Update(context.Background(), sess, &domain.UpdateUserRequest{UserID: "u-dev", Email: "x@example.com"})
	require.ErrorAs(t, err, &forbidden)

	assert.Empty(t, admin.deleted)
	assert.Empty(t, admin.reset)
	assert.Nil(t, admin.updated)

	// Sector-less ordinary users stay manageable.
	require.NoError(t, svc.Delete(context.Background(), sess, "u-nil"))

	// Devs manage dev accounts.
	require.NoError(t, svc.Delete(context.Background(), session(domain.RoleDev, domain.SectorNone), "u-dev"))
	assert.Equal(t, "u-dev", admin.deleted)
}

func TestUserList(t *testing.T) {
	dir := userDirectory()
	dir.users = []domain.UserAccount{{ID: "u-sup"}, {ID: "u-com"}}
	svc := service.NewUserService(&mockUserAdmin{}, dir, zap.NewNop())

	users, err := svc.List(context.Background(), session(domain.RoleAdmin, domain.SectorSuporte))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.List(context.Background(), session(domain.RoleUser, domain.SectorComercial))
	var forbidden *domain.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
}
