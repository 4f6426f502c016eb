package access

import "github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

// Page identifies a screen of the application.
type Page string

const (
	PageDashboard      Page = "dashboard"
	PageCalendar       Page = "calendar"
	PageFleet          Page = "fleet"
	PageBonus          Page = "bonus"
	PageTeam           Page = "team"
	PageVacations      Page = "vacations"
	PageUserManagement Page = "user-management"
)

// Pages lists every page. adminEditRules must have an entry for each.
var Pages = []Page{
	PageDashboard,
	PageCalendar,
	PageFleet,
	PageBonus,
	PageTeam,
	PageVacations,
	PageUserManagement,
}

func always(domain.Role, domain.Sector) bool { return true }

var adminEditRules = map[Page]Predicate{
	PageDashboard:      always,
	PageCalendar:       CanEditCalendar,
	PageFleet:          CanEditFleet,
	PageBonus:          CanEditBonus,
	PageTeam:           CanEditTeam,
	PageVacations:      CanEditVacations,
	PageUserManagement: func(r domain.Role, s domain.Sector) bool { return CanEditUserManagement(r, s, nil) },
}

// ParsePage resolves a page name. Unknown names report false.
func ParsePage(name string) (Page, bool) {
	p := Page(name)
	_, ok := adminEditRules[p]
	return p, ok
}

// CanEdit is the per-page edit check used by screens that predate the
// specific predicates. Unknown pages are never editable.
func CanEdit(r domain.Role, s domain.Sector, page Page) bool {
	rule, ok := adminEditRules[page]
	if !ok {
		return false
	}
	switch r {
	case domain.RoleDev:
		return true
	case domain.RoleAdmin:
		return rule(r, s)
	case domain.RoleUser:
		return (page == PageDashboard || page == PageCalendar) && s == domain.SectorComercial
	}
	return false
}
