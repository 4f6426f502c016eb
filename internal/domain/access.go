package domain

import (
	"strings"
	"time"
)

// ============================================================
// Roles & sectors
// ============================================================

// Role is the account role stored in user_roles.
type Role string

const (
	RoleDev        Role = "dev"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleFinanceiro Role = "financeiro"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDev, RoleAdmin, RoleUser, RoleFinanceiro:
		return true
	}
	return false
}

// Sector is the organisational sector of a profile or agent.
// SectorNone is the null sector.
type Sector string

const (
	SectorNone            Sector = ""
	SectorComercial       Sector = "Comercial"
	SectorSuporte         Sector = "Suporte"
	SectorDesenvolvimento Sector = "Desenvolvimento"
	SectorAdministrativo  Sector = "Administrativo"
)

// Valid reports whether s is a known sector. The null sector is valid.
func (s Sector) Valid() bool {
	switch s {
	case SectorNone, SectorComercial, SectorSuporte, SectorDesenvolvimento, SectorAdministrativo:
		return true
	}
	return false
}

// ParseSector normalises free text coming from the backend or a request
// body ("comercial", " Comercial ") into a Sector.
func ParseSector(v string) Sector {
	v = strings.TrimSpace(v)
	for _, s := range []Sector{SectorComercial, SectorSuporte, SectorDesenvolvimento, SectorAdministrativo} {
		if strings.EqualFold(v, string(s)) {
			return s
		}
	}
	return Sector(v)
}

// ============================================================
// Session
// ============================================================

// Session is the authenticated caller. It is built once when the bearer
// token is first seen (or on login), carried on the request context, and
// evicted on sign-out or token expiry.
type Session struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `json:"role"`
	Sector      Sector    `json:"sector"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the session's token lifetime has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Profile is a row of the profiles table.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Sector   Sector `json:"sector"`
}

// UserRole is a row of the user_roles table.
type UserRole struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
