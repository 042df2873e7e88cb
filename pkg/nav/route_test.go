package nav_test

import (
	"testing"

	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want nav.Route
		ok   bool
	}{
		{"login", "/login", nav.Login(), true},
		{"invite", "/invite/tok123", nav.AcceptInvite("tok123"), true},
		{"reset", "/reset/xyz", nav.ResetPassword("xyz"), true},
		{"invite without token", "/invite/", nav.Route{}, false},
		{"root is member board", "/", nav.MemberPoolDefault(), true},
		{"app bare", "/app", nav.MemberPoolDefault(), true},
		{
			"app with state",
			"/app?project=7&view=cards",
			nav.MemberRoute(nav.MemberTasks, model.SomeInt(7), nav.ViewCards),
			true,
		},
		{
			"sessions",
			"/app/sessions",
			nav.MemberRoute(nav.MemberSessions, model.OptInt{}, nav.ViewPool),
			true,
		},
		{
			"config members",
			"/config/members?project=2",
			nav.ConfigRoute(nav.SectionMembers, model.SomeInt(2)),
			true,
		},
		{
			"config settings without project",
			"/config/settings",
			nav.ConfigRoute(nav.SectionOrgSettings, model.OptInt{}),
			true,
		},
		{"org settings", "/org/settings", nav.OrgRoute(nav.SectionOrgSettings), true},
		{"org assignments", "/org/assignments", nav.OrgRoute(nav.SectionAssignments), true},
		{"unknown path", "/nope", nav.Route{}, false},
		{"unknown section", "/config/bogus", nav.Route{}, false},
		{"trailing slash", "/org/metrics/", nav.OrgRoute(nav.SectionMetrics), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := nav.ParseRoute(tt.url)
			if ok != tt.ok {
				t.Fatalf("ParseRoute(%q) ok = %v, want %v", tt.url, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseRoute(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseRouteInvalidQueryIsNotCanonical(t *testing.T) {
	route, res, ok := nav.ParseRoute("/app?cap=abc")
	if !ok {
		t.Fatal("route should parse")
	}
	if res.Canonical() {
		t.Error("invalid cap value must force canonicalization")
	}
	if route.Kind != nav.RouteMember {
		t.Errorf("route kind = %v, want RouteMember", route.Kind)
	}
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		name  string
		route nav.Route
		state nav.State
		want  string
	}{
		{"login", nav.Login(), nav.Empty(), "/login"},
		{"invite", nav.AcceptInvite("t1"), nav.Empty(), "/invite/t1"},
		{
			"member default",
			nav.MemberPoolDefault(),
			nav.Empty(),
			"/app",
		},
		{
			"member with view and filters",
			nav.MemberRoute(nav.MemberTasks, model.SomeInt(3), nav.ViewCards),
			nav.Empty().WithView(nav.ViewCards).WithSearch("x"),
			"/app?project=3&view=cards&search=x",
		},
		{
			"config carries project only",
			nav.ConfigRoute(nav.SectionTaskTypes, model.SomeInt(5)),
			nav.Empty().WithSearch("dropped"),
			"/config/task-types?project=5",
		},
		{"org drops all state", nav.OrgRoute(nav.SectionOrgSettings), nav.Empty().WithProject(9), "/org/settings"},
		{
			"org assignments keeps its view",
			nav.OrgRoute(nav.SectionAssignments),
			nav.Empty().WithAssignmentsView(nav.ByPerson),
			"/org/assignments?view=by-person",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nav.RoutePath(tt.route, tt.state); got != tt.want {
				t.Errorf("RoutePath = %q, want %q", got, tt.want)
			}
		})
	}
}

// Every route a ParseRoute can produce must round-trip back to itself via
// RoutePath, so redirects never loop.
func TestRoutePathRoundTrip(t *testing.T) {
	urls := []string{
		"/login",
		"/invite/abc",
		"/reset/def",
		"/app",
		"/app?project=1&view=list",
		"/app/sessions",
		"/config/members?project=4",
		"/config/metrics",
		"/org/settings",
		"/org/assignments?view=by-capability",
	}
	for _, u := range urls {
		route, res, ok := nav.ParseRoute(u)
		if !ok {
			t.Fatalf("ParseRoute(%q) failed", u)
		}
		back, res2, ok := nav.ParseRoute(nav.RoutePath(route, res.State))
		if !ok {
			t.Fatalf("re-parse of RoutePath(%q) failed", u)
		}
		if back != route {
			t.Errorf("route round-trip of %q: %+v != %+v", u, back, route)
		}
		if res2.State != res.State {
			t.Errorf("state round-trip of %q changed: %+v != %+v", u, res2.State, res.State)
		}
	}
}
