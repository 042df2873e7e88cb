// Package hydrate decides what I/O a navigation needs. Given a route and a
// snapshot of cached-resource states it computes the minimal set of fetch
// commands (or a redirect) required to render that route. It is a total,
// side-effect-free function of its inputs; the surrounding runtime owns all
// actual network work.
package hydrate

import "github.com/crewdeck/crew/pkg/nav"

// CommandKind discriminates the closed command set. Each Fetch* kind names
// exactly one read operation of the data service; Redirect is the contract
// with the router.
type CommandKind int

const (
	KindFetchMe CommandKind = iota
	KindFetchProjects
	KindFetchInviteLinks
	KindFetchCapabilities
	KindFetchMeCapabilityIDs
	KindFetchOrgSettingsUsers
	KindFetchOrgUsersCache
	KindFetchMembers
	KindFetchTaskTypes
	KindRefreshMember
	KindFetchWorkSessions
	KindFetchMeMetrics
	KindFetchOrgMetricsOverview
	KindFetchOrgMetricsProjectTasks
	KindRedirect
)

// String returns the kind's name for logs and test failures.
func (k CommandKind) String() string {
	switch k {
	case KindFetchMe:
		return "fetch-me"
	case KindFetchProjects:
		return "fetch-projects"
	case KindFetchInviteLinks:
		return "fetch-invite-links"
	case KindFetchCapabilities:
		return "fetch-capabilities"
	case KindFetchMeCapabilityIDs:
		return "fetch-me-capability-ids"
	case KindFetchOrgSettingsUsers:
		return "fetch-org-settings-users"
	case KindFetchOrgUsersCache:
		return "fetch-org-users-cache"
	case KindFetchMembers:
		return "fetch-members"
	case KindFetchTaskTypes:
		return "fetch-task-types"
	case KindRefreshMember:
		return "refresh-member"
	case KindFetchWorkSessions:
		return "fetch-work-sessions"
	case KindFetchMeMetrics:
		return "fetch-me-metrics"
	case KindFetchOrgMetricsOverview:
		return "fetch-org-metrics-overview"
	case KindFetchOrgMetricsProjectTasks:
		return "fetch-org-metrics-project-tasks"
	default:
		return "redirect"
	}
}

// Command is one fetch intent or redirect. Commands are created fresh by
// every Plan call, carry no ordering dependency on each other, and are
// consumed immediately by the runtime. Comparable, so test assertions can
// use == on whole slices element-wise.
type Command struct {
	Kind CommandKind
	// ProjectID is the scope id for project-scoped fetches.
	ProjectID int
	// To is the redirect target for KindRedirect.
	To nav.Route
}

// FetchMe probes the signed-in identity.
func FetchMe() Command { return Command{Kind: KindFetchMe} }

// FetchProjects loads the user's project list with manager flags.
func FetchProjects() Command { return Command{Kind: KindFetchProjects} }

// FetchInviteLinks loads pending invites. Org admins only.
func FetchInviteLinks() Command { return Command{Kind: KindFetchInviteLinks} }

// FetchCapabilities loads the org capability catalog.
func FetchCapabilities() Command { return Command{Kind: KindFetchCapabilities} }

// FetchMeCapabilityIDs loads the capability ids the user holds.
func FetchMeCapabilityIDs() Command { return Command{Kind: KindFetchMeCapabilityIDs} }

// FetchOrgSettingsUsers loads the settings-page user list.
func FetchOrgSettingsUsers() Command { return Command{Kind: KindFetchOrgSettingsUsers} }

// FetchOrgUsersCache loads the org-wide user cache.
func FetchOrgUsersCache() Command { return Command{Kind: KindFetchOrgUsersCache} }

// FetchMembers loads one project's membership.
func FetchMembers(projectID int) Command {
	return Command{Kind: KindFetchMembers, ProjectID: projectID}
}

// FetchTaskTypes loads one project's task types.
func FetchTaskTypes(projectID int) Command {
	return Command{Kind: KindFetchTaskTypes, ProjectID: projectID}
}

// RefreshMember reloads the user's own task list.
func RefreshMember() Command { return Command{Kind: KindRefreshMember} }

// FetchWorkSessions loads the user's work sessions.
func FetchWorkSessions() Command { return Command{Kind: KindFetchWorkSessions} }

// FetchMeMetrics loads the user's own activity summary.
func FetchMeMetrics() Command { return Command{Kind: KindFetchMeMetrics} }

// FetchOrgMetricsOverview loads the org-wide metrics overview.
func FetchOrgMetricsOverview() Command { return Command{Kind: KindFetchOrgMetricsOverview} }

// FetchOrgMetricsProjectTasks loads one project's task metrics.
func FetchOrgMetricsProjectTasks(projectID int) Command {
	return Command{Kind: KindFetchOrgMetricsProjectTasks, ProjectID: projectID}
}

// Redirect asks the router to replace history with the target route, which
// re-enters planning from the new URL.
func Redirect(to nav.Route) Command {
	return Command{Kind: KindRedirect, To: to}
}
