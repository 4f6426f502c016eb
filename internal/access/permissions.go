// Package access holds the capability predicates that decide what a
// session may see and change. Every predicate is a pure function of the
// caller's role and sector.
package access

import "github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

func isDev(r domain.Role) bool { return r == domain.RoleDev }

func isAdmin(r domain.Role) bool { return r == domain.RoleAdmin }

func inCommercialOrAdministrative(s domain.Sector) bool {
	return s == domain.SectorComercial || s == domain.SectorAdministrativo
}

// ============================================================
// Calendar
// ============================================================

func CanAccessCalendar(r domain.Role, s domain.Sector) bool {
	return isDev(r) || inCommercialOrAdministrative(s)
}

func CanEditCalendar(r domain.Role, s domain.Sector) bool {
	return isDev(r) || s == domain.SectorComercial
}

// ============================================================
// Fleet
// ============================================================

func CanAccessFleet(r domain.Role, s domain.Sector) bool {
	return isDev(r) || inCommercialOrAdministrative(s)
}

func CanEditFleet(r domain.Role, s domain.Sector) bool {
	return isDev(r) || (s == domain.SectorComercial && isAdmin(r))
}

// ============================================================
// Bonus
// ============================================================

func CanAccessBonus(r domain.Role, s domain.Sector) bool {
	return isDev(r) || inCommercialOrAdministrative(s)
}

func CanEditBonus(r domain.Role, s domain.Sector) bool {
	return isDev(r) || (s == domain.SectorComercial && isAdmin(r))
}

// ============================================================
// Team & vacations
// ============================================================

func CanAccessTeam(domain.Role, domain.Sector) bool { return true }

func CanEditTeam(r domain.Role, _ domain.Sector) bool {
	return isDev(r) || isAdmin(r)
}

func CanAccessVacations(domain.Role, domain.Sector) bool { return true }

// CanEditVacations has no sector restriction: an Administrativo admin
// edits every sector's vacations.
func CanEditVacations(r domain.Role, _ domain.Sector) bool {
	return isDev(r) || isAdmin(r)
}

// ============================================================
// User management
// ============================================================

func CanAccessUserManagement(r domain.Role, _ domain.Sector) bool {
	return isDev(r) || isAdmin(r)
}

// CanEditUserManagement decides whether the caller may change a user of
// the target sector. A nil target means no specific user is involved.
// Comercial admins manage every sector; other admins only their own.
func CanEditUserManagement(r domain.Role, s domain.Sector, target *domain.Sector) bool {
	if isDev(r) {
		return true
	}
	if !isAdmin(r) {
		return false
	}
	return s == domain.SectorComercial || target == nil || *target == s
}

// Capabilities renders every predicate for one session.
func Capabilities(r domain.Role, s domain.Sector) *domain.Capabilities {
	return &domain.Capabilities{
		AccessCalendar:       CanAccessCalendar(r, s),
		EditCalendar:         CanEditCalendar(r, s),
		AccessFleet:          CanAccessFleet(r, s),
		EditFleet:            CanEditFleet(r, s),
		AccessBonus:          CanAccessBonus(r, s),
		EditBonus:            CanEditBonus(r, s),
		AccessTeam:           CanAccessTeam(r, s),
		EditTeam:             CanEditTeam(r, s),
		AccessVacations:      CanAccessVacations(r, s),
		EditVacations:        CanEditVacations(r, s),
		AccessUserManagement: CanAccessUserManagement(r, s),
		EditUserManagement:   CanEditUserManagement(r, s, nil),
	}
}

// Predicate is the shape shared by every capability check except
// CanEditUserManagement.
type Predicate func(domain.Role, domain.Sector) bool

// Allow checks p for a session and returns ErrForbidden naming action
// when it fails.
func Allow(sess *domain.Session, p Predicate, action string) error {
	if sess == nil {
		return &domain.ErrUnauthorized{Message: "sessão não encontrada"}
	}
	if !p(sess.Role, sess.Sector) {
		return &domain.ErrForbidden{Action: action}
	}
	return nil
}
