package supabase

import (
	"context"
	"fmt"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Directory - profiles, user_roles and username lookup
// ============================================================

func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rows []domain.Profile
	if err := c.getJSON(ctx, "supabase/profiles", fmt.Sprintf("profiles?id=%s&limit=1", eq(userID)), &rows); err != nil {
		return nil, err
	}
	p, err := firstOrNotFound(rows, "profile", userID)
	if err != nil {
		return nil, err
	}
	p.Sector = domain.ParseSector(string(p.Sector))
	return p, nil
}

// GetUserRole returns the role of a user; users without a row are plain users.
func (c *Client) GetUserRole(ctx context.Context, userID string) (domain.Role, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserRole")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rows []domain.UserRole
	if err := c.getJSON(ctx, "supabase/user_roles", fmt.Sprintf("user_roles?select=user_id,role&user_id=%s&limit=1", eq(userID)), &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 || !rows[0].Role.Valid() {
		return domain.RoleUser, nil
	}
	return rows[0].Role, nil
}

// GetEmailFromUsername calls get_email_from_username. An unknown username
// yields an empty string.
func (c *Client) GetEmailFromUsername(ctx context.Context, username string) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetEmailFromUsername")
	defer span.End()

	var email *string
	if err := c.rpc(ctx, "get_email_from_username", map[string]any{"p_username": username}, true, &email); err != nil {
		return "", err
	}
	if email == nil {
		return "", nil
	}
	return *email, nil
}

// ListUsers joins profiles with their roles.
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	var profiles []domain.Profile
	if err := c.getJSON(ctx, "supabase/profiles", "profiles?select=id,username,full_name,email,sector&order=username.asc", &profiles); err != nil {
		return nil, err
	}
	var roles []domain.UserRole
	if err := c.getJSON(ctx, "supabase/user_roles", "user_roles?select=user_id,role", &roles); err != nil {
		return nil, err
	}

	byUser := make(map[string]domain.Role, len(roles))
	for _, r := range roles {
		byUser[r.UserID] = r.Role
	}

	users := make([]domain.UserAccount, 0, len(profiles))
	for _, p := range profiles {
		role, ok := byUser[p.ID]
		if !ok {
			role = domain.RoleUser
		}
		users = append(users, domain.UserAccount{
			ID:       p.ID,
			Username: p.Username,
			Email:    p.Email,
			FullName: p.FullName,
			Role:     role,
			Sector:   domain.ParseSector(string(p.Sector)),
		})
	}
	return users, nil
}
