package nav

import (
	"strings"

	"github.com/crewdeck/crew/pkg/model"
)

// AdminSection is one entry in the closed admin navigation menu. The
// partition into org-level and project-scoped sections is fixed data; access
// rules and menu rendering both key off it.
type AdminSection int

const (
	// SectionMembers manages one project's membership. Project-scoped.
	SectionMembers AdminSection = iota
	// SectionTaskTypes manages one project's task types. Project-scoped.
	SectionTaskTypes
	// SectionMetrics shows org metrics with a per-project drill-down.
	// Project-scoped: managers may see it for their projects.
	SectionMetrics
	// SectionAssignments is the org-wide assignment overview. Org-level.
	SectionAssignments
	// SectionOrgSettings manages org users and settings. Org-level.
	SectionOrgSettings
)

// ProjectScoped reports whether the section is gated by per-project
// management status rather than org admin alone.
func (s AdminSection) ProjectScoped() bool {
	switch s {
	case SectionMembers, SectionTaskTypes, SectionMetrics:
		return true
	}
	return false
}

// Slug returns the URL path segment for the section.
func (s AdminSection) Slug() string {
	switch s {
	case SectionMembers:
		return "members"
	case SectionTaskTypes:
		return "task-types"
	case SectionMetrics:
		return "metrics"
	case SectionAssignments:
		return "assignments"
	default:
		return "settings"
	}
}

// Title returns the menu label for the section.
func (s AdminSection) Title() string {
	switch s {
	case SectionMembers:
		return "Members"
	case SectionTaskTypes:
		return "Task Types"
	case SectionMetrics:
		return "Metrics"
	case SectionAssignments:
		return "Assignments"
	default:
		return "Org Settings"
	}
}

// ParseSection maps a path slug back to its section.
func ParseSection(slug string) (AdminSection, bool) {
	switch slug {
	case "members":
		return SectionMembers, true
	case "task-types":
		return SectionTaskTypes, true
	case "metrics":
		return SectionMetrics, true
	case "assignments":
		return SectionAssignments, true
	case "settings":
		return SectionOrgSettings, true
	}
	return SectionMembers, false
}

// MemberSection is the member-area page family. The hydration planner treats
// all member sections identically; the distinction only affects rendering.
type MemberSection int

const (
	// MemberTasks is the main task board, at /app.
	MemberTasks MemberSection = iota
	// MemberSessions is the work-session log, at /app/sessions.
	MemberSessions
)

// RouteKind discriminates the closed route set.
type RouteKind int

const (
	RouteLogin RouteKind = iota
	RouteAcceptInvite
	RouteResetPassword
	RouteConfig
	RouteOrg
	RouteMember
)

// Route identifies which page to render and its parameters. It is a closed
// value: every consumer must switch exhaustively over Kind. Routes are
// comparable, so redirect targets can be asserted with == in tests.
type Route struct {
	Kind    RouteKind
	Token   string        // AcceptInvite, ResetPassword
	Section AdminSection  // Config, Org
	Member  MemberSection // Member
	Project model.OptInt  // Config, Member
	View    MemberViewMode // Member
}

// Login returns the login route.
func Login() Route {
	return Route{Kind: RouteLogin}
}

// AcceptInvite returns the invite-token route.
func AcceptInvite(token string) Route {
	return Route{Kind: RouteAcceptInvite, Token: token}
}

// ResetPassword returns the password-reset-token route.
func ResetPassword(token string) Route {
	return Route{Kind: RouteResetPassword, Token: token}
}

// ConfigRoute returns a project-config route.
func ConfigRoute(section AdminSection, project model.OptInt) Route {
	return Route{Kind: RouteConfig, Section: section, Project: project}
}

// OrgRoute returns an org-admin route.
func OrgRoute(section AdminSection) Route {
	return Route{Kind: RouteOrg, Section: section}
}

// MemberRoute returns a member-area route.
func MemberRoute(section MemberSection, project model.OptInt, view MemberViewMode) Route {
	return Route{Kind: RouteMember, Member: section, Project: project, View: view}
}

// MemberPoolDefault is the fallback destination: the member task board, no
// project selected, pool view. Authorization denials redirect here.
func MemberPoolDefault() Route {
	return MemberRoute(MemberTasks, model.OptInt{}, ViewPool)
}

// Context returns the query context this route's page parses and serializes
// under. Routes without query parameters use ContextOrg (nothing allowed).
func (r Route) Context() Context {
	switch r.Kind {
	case RouteMember:
		return ContextMember
	case RouteConfig:
		return ContextConfig
	case RouteOrg:
		if r.Section == SectionAssignments {
			return ContextOrgAssignments
		}
		return ContextOrg
	default:
		return ContextOrg
	}
}

// ParseRoute resolves a full app URL (path plus optional query) into a Route
// and the query parse result for that route's context. ok is false when the
// path matches nothing; callers should then navigate to MemberPoolDefault.
func ParseRoute(rawURL string) (Route, Result, bool) {
	path := rawURL
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}

	switch {
	case path == "/login":
		return Login(), Parse(rawURL, ContextOrg), true

	case strings.HasPrefix(path, "/invite/"):
		token := strings.TrimPrefix(path, "/invite/")
		if token == "" {
			break
		}
		return AcceptInvite(token), Parse(rawURL, ContextOrg), true

	case strings.HasPrefix(path, "/reset/"):
		token := strings.TrimPrefix(path, "/reset/")
		if token == "" {
			break
		}
		return ResetPassword(token), Parse(rawURL, ContextOrg), true

	case path == "/" || path == "/app" || path == "/app/sessions":
		section := MemberTasks
		if path == "/app/sessions" {
			section = MemberSessions
		}
		res := Parse(rawURL, ContextMember)
		var project model.OptInt
		if id, ok := res.State.Project(); ok {
			project = model.SomeInt(id)
		}
		return MemberRoute(section, project, res.State.View()), res, true

	case strings.HasPrefix(path, "/config/"):
		section, ok := ParseSection(strings.TrimPrefix(path, "/config/"))
		if !ok {
			break
		}
		res := Parse(rawURL, ContextConfig)
		var project model.OptInt
		if id, ok := res.State.Project(); ok {
			project = model.SomeInt(id)
		}
		return ConfigRoute(section, project), res, true

	case strings.HasPrefix(path, "/org/"):
		section, ok := ParseSection(strings.TrimPrefix(path, "/org/"))
		if !ok {
			break
		}
		r := OrgRoute(section)
		return r, Parse(rawURL, r.Context()), true
	}

	return Route{}, Result{}, false
}

// RoutePath renders the canonical URL for a route, carrying any navigation
// state the route's context permits.
func RoutePath(r Route, s State) string {
	var path string
	switch r.Kind {
	case RouteLogin:
		return "/login"
	case RouteAcceptInvite:
		return "/invite/" + r.Token
	case RouteResetPassword:
		return "/reset/" + r.Token
	case RouteConfig:
		path = "/config/" + r.Section.Slug()
		if r.Project.OK {
			s = s.WithProject(r.Project.Value)
		}
	case RouteOrg:
		path = "/org/" + r.Section.Slug()
	default:
		path = "/app"
		if r.Member == MemberSessions {
			path = "/app/sessions"
		}
		if r.Project.OK {
			s = s.WithProject(r.Project.Value)
		}
	}
	if q := QueryStringFor(r.Context(), s); q != "" {
		return path + "?" + q
	}
	return path
}
