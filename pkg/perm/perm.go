// Package perm holds the pure access predicates for crew's admin area.
//
// Everything here is a function of plain values: role, project list, selected
// project, section. No I/O, no caches. Callers that have not loaded the
// project list yet must not call these with a guess; the hydration planner
// defers the access decision until the list is in.
package perm

import (
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
)

// IsOrgAdmin reports whether the role carries org administration.
func IsOrgAdmin(role model.Role) bool {
	return role == model.RoleAdmin
}

// IsProjectManager reports whether the user manages the given project.
func IsProjectManager(p model.Project) bool {
	return p.IsManager
}

// AnyProjectManager reports whether the user manages at least one project.
func AnyProjectManager(projects []model.Project) bool {
	for _, p := range projects {
		if p.IsManager {
			return true
		}
	}
	return false
}

// managerOf reports whether the user manages the project with the given id.
func managerOf(projects []model.Project, id int) bool {
	for _, p := range projects {
		if p.ID == id && p.IsManager {
			return true
		}
	}
	return false
}

// CanAccessSection decides whether a user may open an admin section.
//
// Rules:
//   - Org-level sections require org admin.
//   - Project-scoped sections are open to org admins; to managers of the
//     selected project; and, with no project selected, to anyone managing at
//     least one project (the page then offers a project picker).
func CanAccessSection(section nav.AdminSection, role model.Role, projects []model.Project, selected model.OptInt) bool {
	if IsOrgAdmin(role) {
		return true
	}
	if !section.ProjectScoped() {
		return false
	}
	if selected.OK {
		return managerOf(projects, selected.Value)
	}
	return AnyProjectManager(projects)
}

// The four visibility tables, selected by (isOrgAdmin, anyManager). Keeping
// them as whole hard-coded lists (rather than filtering per section) means
// VisibleSections and CanAccessSection can never disagree about which
// sections exist. Both must be updated together when a section is added.
var (
	sectionsAdminManager = []nav.AdminSection{
		nav.SectionMembers, nav.SectionTaskTypes, nav.SectionMetrics,
		nav.SectionAssignments, nav.SectionOrgSettings,
	}
	sectionsAdminOnly = []nav.AdminSection{
		nav.SectionMembers, nav.SectionTaskTypes, nav.SectionMetrics,
		nav.SectionAssignments, nav.SectionOrgSettings,
	}
	sectionsManagerOnly = []nav.AdminSection{
		nav.SectionMembers, nav.SectionTaskTypes, nav.SectionMetrics,
	}
	sectionsNone = []nav.AdminSection{}
)

// VisibleSections returns the ordered admin menu for a user. The result is a
// fresh slice; callers may reorder or trim it.
func VisibleSections(role model.Role, projects []model.Project) []nav.AdminSection {
	var table []nav.AdminSection
	switch {
	case IsOrgAdmin(role) && AnyProjectManager(projects):
		table = sectionsAdminManager
	case IsOrgAdmin(role):
		table = sectionsAdminOnly
	case AnyProjectManager(projects):
		table = sectionsManagerOnly
	default:
		table = sectionsNone
	}
	return append([]nav.AdminSection(nil), table...)
}
