package hydrate

import (
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
	"github.com/crewdeck/crew/pkg/perm"
)

// requirement pairs a precondition with the command it demands. Plan builds
// an ordered table of these per route and keeps the true rows. Plain data,
// not control flow: output order is stable for assertions, and no row's
// correctness depends on another's.
type requirement struct {
	when bool
	cmd  Command
}

func flatten(reqs []requirement) []Command {
	var cmds []Command
	for _, r := range reqs {
		if r.when {
			cmds = append(cmds, r.cmd)
		}
	}
	return cmds
}

// Plan computes the fetches (or redirect) the route needs given the snapshot.
// Pure and total: structurally equal inputs give structurally equal output,
// every route kind has a branch, and a Loading resource is never requested
// again. Commands in the result carry no ordering dependency on each other.
func Plan(route nav.Route, snap Snapshot) []Command {
	switch snap.Auth.Phase {
	case model.AuthUnknown:
		// Identity first. Only the token flows render without knowing it.
		switch route.Kind {
		case nav.RouteAcceptInvite, nav.RouteResetPassword:
			return nil
		}
		return []Command{FetchMe()}

	case model.AuthUnauthed:
		switch route.Kind {
		case nav.RouteLogin, nav.RouteAcceptInvite, nav.RouteResetPassword:
			return nil
		}
		return []Command{Redirect(nav.Login())}
	}

	role := snap.Auth.Role
	switch route.Kind {
	case nav.RouteLogin:
		// Already signed in; the login page has nothing to offer.
		return []Command{Redirect(nav.MemberPoolDefault())}
	case nav.RouteAcceptInvite, nav.RouteResetPassword:
		return nil
	case nav.RouteConfig:
		return planConfig(route, role, snap)
	case nav.RouteOrg:
		return planOrg(route, role, snap)
	default:
		return planMember(snap)
	}
}

func planConfig(route nav.Route, role model.Role, snap Snapshot) []Command {
	// For a non-admin opening a project-scoped section, access hinges on
	// manager status, which is unknown until the project list lands. Defer
	// the decision: request the probe and nothing else. The next planning
	// pass, with projects Loaded, decides for real.
	if route.Section.ProjectScoped() && !perm.IsOrgAdmin(role) && snap.Projects != model.Loaded {
		if snap.Projects.NeedsFetch() {
			return []Command{FetchProjects()}
		}
		return nil // probe already in flight
	}

	if !perm.CanAccessSection(route.Section, role, snap.ProjectList, route.Project) {
		return []Command{Redirect(nav.MemberPoolDefault())}
	}

	admin := perm.IsOrgAdmin(role)
	reqs := []requirement{
		{snap.Projects.NeedsFetch(), FetchProjects()},
		{admin && snap.InviteLinks.NeedsFetch(), FetchInviteLinks()},
		{snap.Capabilities.NeedsFetch(), FetchCapabilities()},
		{snap.MeMetrics.NeedsFetch(), FetchMeMetrics()},
		{snap.WorkSessions.NeedsFetch(), FetchWorkSessions()},
	}
	reqs = append(reqs, sectionRequirements(route.Section, route.Project, snap)...)
	return flatten(reqs)
}

// sectionRequirements is the per-section tail of the config table. Members
// and task types are project-scoped: they additionally demand a selected
// project and a loaded project list before fetching.
func sectionRequirements(section nav.AdminSection, pid model.OptInt, snap Snapshot) []requirement {
	switch section {
	case nav.SectionMembers:
		return []requirement{
			{snap.Projects == model.Loaded &&
				model.NeedsProjectFetch(snap.Members, snap.MembersProjectID, pid),
				FetchMembers(pid.Value)},
		}
	case nav.SectionTaskTypes:
		return []requirement{
			{snap.Projects == model.Loaded &&
				model.NeedsProjectFetch(snap.TaskTypes, snap.TaskTypesProjectID, pid),
				FetchTaskTypes(pid.Value)},
		}
	case nav.SectionOrgSettings:
		return []requirement{
			{snap.OrgSettingsUsers.NeedsFetch(), FetchOrgSettingsUsers()},
		}
	case nav.SectionMetrics:
		return []requirement{
			{snap.OrgMetricsOverview.NeedsFetch(), FetchOrgMetricsOverview()},
			{model.NeedsProjectFetch(snap.OrgMetricsProjectTasks, snap.OrgMetricsProjectID, pid),
				FetchOrgMetricsProjectTasks(pid.Value)},
		}
	case nav.SectionAssignments:
		return []requirement{
			{snap.OrgUsersCache.NeedsFetch(), FetchOrgUsersCache()},
		}
	}
	return nil
}

func planOrg(route nav.Route, role model.Role, snap Snapshot) []Command {
	if !perm.IsOrgAdmin(role) {
		return []Command{Redirect(nav.MemberPoolDefault())}
	}

	reqs := []requirement{
		{snap.Projects.NeedsFetch(), FetchProjects()},
		{snap.InviteLinks.NeedsFetch(), FetchInviteLinks()},
		{snap.Capabilities.NeedsFetch(), FetchCapabilities()},
	}
	// Org pages carry no selected project, so only the org-level read of
	// each section applies here.
	switch route.Section {
	case nav.SectionOrgSettings:
		reqs = append(reqs, requirement{snap.OrgSettingsUsers.NeedsFetch(), FetchOrgSettingsUsers()})
	case nav.SectionMetrics:
		reqs = append(reqs, requirement{snap.OrgMetricsOverview.NeedsFetch(), FetchOrgMetricsOverview()})
	case nav.SectionAssignments:
		reqs = append(reqs, requirement{snap.OrgUsersCache.NeedsFetch(), FetchOrgUsersCache()})
	}
	return flatten(reqs)
}

func planMember(snap Snapshot) []Command {
	return flatten([]requirement{
		{snap.Projects.NeedsFetch(), FetchProjects()},
		{snap.Capabilities.NeedsFetch(), FetchCapabilities()},
		{snap.MeCapabilityIDs.NeedsFetch(), FetchMeCapabilityIDs()},
		{snap.WorkSessions.NeedsFetch(), FetchWorkSessions()},
		{snap.MeMetrics.NeedsFetch(), FetchMeMetrics()},
		{snap.OrgUsersCache.NeedsFetch(), FetchOrgUsersCache()},
		{snap.MemberTasks.NeedsFetch(), RefreshMember()},
	})
}
