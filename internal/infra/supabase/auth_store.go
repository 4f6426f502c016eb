package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Hosted auth (GoTrue) - sign-in and the admin user API
// ============================================================

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	User         gotrueUser `json:"user"`
}

// authCall sends a JSON request to GoTrue. Auth calls are never retried.
func (c *Client) authCall(ctx context.Context, service, method, path, bearer string, payload, dst any) error {
	return c.write(ctx, service, func() error {
		var body *bytes.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return resilience.Permanent(err)
			}
			body = bytes.NewReader(raw)
		} else {
			body = bytes.NewReader(nil)
		}
		resp, err := c.do(ctx, request{method: method, url: c.authURL(path), body: body, bearer: bearer})
		if err != nil {
			return err
		}
		return decode(resp, dst)
	})
}

// SignInWithPassword runs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthTokens, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignInWithPassword")
	defer span.End()

	var sess gotrueSession
	err := c.authCall(ctx, "supabase/auth", http.MethodPost, "token?grant_type=password", c.apiKey,
		map[string]string{"email": email, "password": password}, &sess)
	if err != nil {
		var api *APIError
		if errors.As(err, &api) && (api.Status == http.StatusBadRequest || api.Status == http.StatusUnauthorized) {
			return nil, &domain.ErrUnauthorized{Message: "usuário ou senha inválidos"}
		}
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, &domain.ErrUnauthorized{Message: "usuário ou senha inválidos"}
	}
	return &domain.AuthTokens{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
		UserID:       sess.User.ID,
	}, nil
}

// SignOut revokes the refresh tokens of the session owning accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SignOut")
	defer span.End()

	return c.authCall(ctx, "supabase/auth", http.MethodPost, "logout", accessToken, nil, nil)
}

// ============================================================
// UserAdmin - direct admin API with the service role key
// ============================================================

// AdminUsers implements port.UserAdmin against /auth/v1/admin/users and
// keeps profiles and user_roles in step.
type AdminUsers struct {
	c *Client
}

// NewAdminUsers creates the direct admin adapter.
func NewAdminUsers(c *Client) *AdminUsers {
	return &AdminUsers{c: c}
}

func (a *AdminUsers) CreateUser(ctx context.Context, _ string, req *domain.CreateUserRequest) (*domain.UserAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AdminCreateUser")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	var u gotrueUser
	err := a.c.authCall(ctx, "supabase/auth/admin", http.MethodPost, "admin/users", "", map[string]any{
		"email":         req.Email,
		"password":      req.Password,
		"email_confirm": true,
		"user_metadata": map[string]any{"username": req.Username, "full_name": req.FullName},
	}, &u)
	if err != nil {
		return nil, err
	}

	account := &domain.UserAccount{
		ID:       u.ID,
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Sector:   req.Sector,
	}
	if err := a.saveDirectory(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (a *AdminUsers) UpdateUser(ctx context.Context, _ string, req *domain.UpdateUserRequest) (*domain.UserAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AdminUpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	authFields := map[string]any{}
	if req.Email != "" {
		authFields["email"] = req.Email
	}
	meta := map[string]any{}
	if req.Username != "" {
		meta["username"] = req.Username
	}
	if req.FullName != "" {
		meta["full_name"] = req.FullName
	}
	if len(meta) > 0 {
		authFields["user_metadata"] = meta
	}
	if len(authFields) > 0 {
		if err := a.c.authCall(ctx, "supabase/auth/admin", http.MethodPut, "admin/users/"+req.UserID, "", authFields, nil); err != nil {
			return nil, err
		}
	}

	profileFields := map[string]any{}
	if req.Username != "" {
		profileFields["username"] = req.Username
	}
	if req.Email != "" {
		profileFields["email"] = req.Email
	}
	if req.FullName != "" {
		profileFields["full_name"] = req.FullName
	}
	if req.Sector != nil {
		profileFields["sector"] = nullableSector(*req.Sector)
	}
	if len(profileFields) > 0 {
		var rows []domain.Profile
		if err := a.c.patchJSON(ctx, "supabase/profiles", fmt.Sprintf("profiles?id=%s", eq(req.UserID)), profileFields, &rows); err != nil {
			return nil, err
		}
	}
	if req.Role != "" {
		if err := a.c.upsertJSON(ctx, "supabase/user_roles", "user_roles", "user_id",
			map[string]any{"user_id": req.UserID, "role": req.Role}, nil); err != nil {
			return nil, err
		}
	}

	profile, err := a.c.GetProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	role, err := a.c.GetUserRole(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.UserAccount{
		ID:       profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     role,
		Sector:   profile.Sector,
	}, nil
}

func (a *AdminUsers) DeleteUser(ctx context.Context, _ string, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.AdminDeleteUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := a.c.deleteRows(ctx, "supabase/user_roles", fmt.Sprintf("user_roles?user_id=%s", eq(userID))); err != nil {
		return err
	}
	if err := a.c.deleteRows(ctx, "supabase/profiles", fmt.Sprintf("profiles?id=%s", eq(userID))); err != nil {
		return err
	}
	return a.c.authCall(ctx, "supabase/auth/admin", http.MethodDelete, "admin/users/"+userID, "", nil, nil)
}

func (a *AdminUsers) ResetPassword(ctx context.Context, _ string, userID, newPassword string) error {
	ctx, span := tracer.Start(ctx, "Supabase.AdminResetPassword")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return a.c.authCall(ctx, "supabase/auth/admin", http.MethodPut, "admin/users/"+userID, "",
		map[string]any{"password": newPassword}, nil)
}

func (a *AdminUsers) saveDirectory(ctx context.Context, u *domain.UserAccount) error {
	profile := map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"full_name": u.FullName,
		"sector":    nullableSector(u.Sector),
	}
	if err := a.c.upsertJSON(ctx, "supabase/profiles", "profiles", "id", profile, nil); err != nil {
		return err
	}
	return a.c.upsertJSON(ctx, "supabase/user_roles", "user_roles", "user_id",
		map[string]any{"user_id": u.ID, "role": u.Role}, nil)
}
