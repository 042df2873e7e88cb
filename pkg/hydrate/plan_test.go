package hydrate_test

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/crewdeck/crew/pkg/hydrate"
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
)

// coldSnapshot is a signed-in snapshot with nothing cached.
func coldSnapshot(role model.Role) hydrate.Snapshot {
	return hydrate.Snapshot{Auth: model.Authed(role)}
}

// warmSnapshot is a signed-in snapshot with every shared resource Loaded and
// the project-scoped caches reflecting the given project.
func warmSnapshot(role model.Role, projectID int) hydrate.Snapshot {
	pid := model.SomeInt(projectID)
	return hydrate.Snapshot{
		Auth: model.Authed(role),
		ProjectList: []model.Project{
			{ID: projectID, Name: "alpha", IsManager: role != model.RoleAdmin},
		},
		IsAnyProjectManager:    role != model.RoleAdmin,
		Projects:               model.Loaded,
		InviteLinks:            model.Loaded,
		Capabilities:           model.Loaded,
		MeCapabilityIDs:        model.Loaded,
		OrgSettingsUsers:       model.Loaded,
		OrgUsersCache:          model.Loaded,
		Members:                model.Loaded,
		TaskTypes:              model.Loaded,
		MemberTasks:            model.Loaded,
		WorkSessions:           model.Loaded,
		MeMetrics:              model.Loaded,
		OrgMetricsOverview:     model.Loaded,
		OrgMetricsProjectTasks: model.Loaded,
		MembersProjectID:       pid,
		TaskTypesProjectID:     pid,
		OrgMetricsProjectID:    pid,
	}
}

func kinds(cmds []hydrate.Command) []hydrate.CommandKind {
	out := make([]hydrate.CommandKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func TestPlanAuthUnknown(t *testing.T) {
	snap := hydrate.Snapshot{} // auth not yet probed

	probeOnly := []hydrate.Command{hydrate.FetchMe()}
	routes := []nav.Route{
		nav.Login(),
		nav.MemberPoolDefault(),
		nav.ConfigRoute(nav.SectionMembers, model.SomeInt(1)),
		nav.OrgRoute(nav.SectionOrgSettings),
	}
	for _, r := range routes {
		if got := hydrate.Plan(r, snap); !reflect.DeepEqual(got, probeOnly) {
			t.Errorf("Plan(%v, unknown auth) = %v, want [FetchMe]", r.Kind, got)
		}
	}

	// Token flows render without identity.
	for _, r := range []nav.Route{nav.AcceptInvite("t"), nav.ResetPassword("t")} {
		if got := hydrate.Plan(r, snap); got != nil {
			t.Errorf("Plan(%v, unknown auth) = %v, want nil", r.Kind, got)
		}
	}
}

func TestPlanUnauthed(t *testing.T) {
	snap := hydrate.Snapshot{Auth: model.Unauthed()}

	for _, r := range []nav.Route{
		nav.MemberPoolDefault(),
		nav.ConfigRoute(nav.SectionMembers, model.OptInt{}),
		nav.OrgRoute(nav.SectionMetrics),
	} {
		want := []hydrate.Command{hydrate.Redirect(nav.Login())}
		if got := hydrate.Plan(r, snap); !reflect.DeepEqual(got, want) {
			t.Errorf("Plan(%v, unauthed) = %v, want redirect to login", r.Kind, got)
		}
	}

	for _, r := range []nav.Route{nav.Login(), nav.AcceptInvite("t"), nav.ResetPassword("t")} {
		if got := hydrate.Plan(r, snap); got != nil {
			t.Errorf("Plan(%v, unauthed) = %v, want nil", r.Kind, got)
		}
	}
}

func TestPlanLoginWhileAuthed(t *testing.T) {
	got := hydrate.Plan(nav.Login(), coldSnapshot(model.RoleMember))
	want := []hydrate.Command{hydrate.Redirect(nav.MemberPoolDefault())}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan(login, authed) = %v, want redirect to member pool", got)
	}
}

func TestPlanConfigDefersAccessDecision(t *testing.T) {
	route := nav.ConfigRoute(nav.SectionMembers, model.SomeInt(1))

	// Manager status unknown: probe the project list and nothing else.
	snap := coldSnapshot(model.RoleMember)
	want := []hydrate.Command{hydrate.FetchProjects()}
	if got := hydrate.Plan(route, snap); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan = %v, want [FetchProjects] exactly", got)
	}

	// Probe already in flight: do nothing, wait for it.
	snap.Projects = model.Loading
	if got := hydrate.Plan(route, snap); got != nil {
		t.Errorf("Plan with probe in flight = %v, want nil", got)
	}

	// Failed probe is retried.
	snap.Projects = model.Failed
	if got := hydrate.Plan(route, snap); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan after failed probe = %v, want [FetchProjects]", got)
	}

	// Admins never wait on manager status.
	admin := coldSnapshot(model.RoleAdmin)
	if got := hydrate.Plan(route, admin); len(got) < 2 {
		t.Errorf("Plan for admin should hydrate, got %v", got)
	}
}

func TestPlanConfigDenied(t *testing.T) {
	snap := warmSnapshot(model.RoleMember, 1)
	snap.ProjectList = []model.Project{{ID: 1, Name: "alpha"}} // manager of nothing
	snap.IsAnyProjectManager = false

	for _, route := range []nav.Route{
		nav.ConfigRoute(nav.SectionMembers, model.SomeInt(1)),
		nav.ConfigRoute(nav.SectionOrgSettings, model.OptInt{}),
	} {
		got := hydrate.Plan(route, snap)
		want := []hydrate.Command{hydrate.Redirect(nav.MemberPoolDefault())}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Plan(%v) = %v, want single redirect", route.Section, got)
		}
	}
}

func TestPlanConfigMembersCold(t *testing.T) {
	route := nav.ConfigRoute(nav.SectionMembers, model.SomeInt(1))
	got := hydrate.Plan(route, coldSnapshot(model.RoleAdmin))

	// Projects are not Loaded yet, so the members fetch itself must wait;
	// everything shared and stale is requested, invites included (admin).
	want := []hydrate.CommandKind{
		hydrate.KindFetchProjects,
		hydrate.KindFetchInviteLinks,
		hydrate.KindFetchCapabilities,
		hydrate.KindFetchMeMetrics,
		hydrate.KindFetchWorkSessions,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Plan kinds = %v, want %v", kinds(got), want)
	}
}

func TestPlanConfigMembersScope(t *testing.T) {
	route := nav.ConfigRoute(nav.SectionMembers, model.SomeInt(2))

	t.Run("cache for different project refetches", func(t *testing.T) {
		snap := warmSnapshot(model.RoleAdmin, 1)
		got := hydrate.Plan(route, snap)
		want := []hydrate.Command{hydrate.FetchMembers(2)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Plan = %v, want [FetchMembers(2)]", got)
		}
	})

	t.Run("cache hit fetches nothing", func(t *testing.T) {
		snap := warmSnapshot(model.RoleAdmin, 2)
		if got := hydrate.Plan(route, snap); got != nil {
			t.Errorf("Plan = %v, want nil on cache hit", got)
		}
	})

	t.Run("loading members are left alone", func(t *testing.T) {
		snap := warmSnapshot(model.RoleAdmin, 1)
		snap.Members = model.Loading
		if got := hydrate.Plan(route, snap); got != nil {
			t.Errorf("Plan = %v, want nil while members load", got)
		}
	})

	t.Run("no selected project, nothing to scope-fetch", func(t *testing.T) {
		snap := warmSnapshot(model.RoleAdmin, 1)
		noProject := nav.ConfigRoute(nav.SectionMembers, model.OptInt{})
		if got := hydrate.Plan(noProject, snap); got != nil {
			t.Errorf("Plan = %v, want nil without a target project", got)
		}
	})
}

func TestPlanConfigMetrics(t *testing.T) {
	snap := warmSnapshot(model.RoleAdmin, 1)
	snap.OrgMetricsOverview = model.Failed

	route := nav.ConfigRoute(nav.SectionMetrics, model.SomeInt(3))
	got := hydrate.Plan(route, snap)
	want := []hydrate.Command{
		hydrate.FetchOrgMetricsOverview(),
		hydrate.FetchOrgMetricsProjectTasks(3),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan = %v, want %v", got, want)
	}
}

func TestPlanOrg(t *testing.T) {
	t.Run("non-admin is redirected", func(t *testing.T) {
		got := hydrate.Plan(nav.OrgRoute(nav.SectionOrgSettings), warmSnapshot(model.RoleMember, 1))
		want := []hydrate.Command{hydrate.Redirect(nav.MemberPoolDefault())}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Plan = %v, want redirect to member pool", got)
		}
	})

	t.Run("admin cold settings", func(t *testing.T) {
		got := hydrate.Plan(nav.OrgRoute(nav.SectionOrgSettings), coldSnapshot(model.RoleAdmin))
		want := []hydrate.CommandKind{
			hydrate.KindFetchProjects,
			hydrate.KindFetchInviteLinks,
			hydrate.KindFetchCapabilities,
			hydrate.KindFetchOrgSettingsUsers,
		}
		if !reflect.DeepEqual(kinds(got), want) {
			t.Errorf("Plan kinds = %v, want %v", kinds(got), want)
		}
	})

	t.Run("admin warm assignments needs users cache only when stale", func(t *testing.T) {
		snap := warmSnapshot(model.RoleAdmin, 1)
		if got := hydrate.Plan(nav.OrgRoute(nav.SectionAssignments), snap); got != nil {
			t.Errorf("Plan warm = %v, want nil", got)
		}
		snap.OrgUsersCache = model.Failed
		got := hydrate.Plan(nav.OrgRoute(nav.SectionAssignments), snap)
		want := []hydrate.Command{hydrate.FetchOrgUsersCache()}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Plan stale = %v, want %v", got, want)
		}
	})
}

func TestPlanMember(t *testing.T) {
	got := hydrate.Plan(nav.MemberPoolDefault(), coldSnapshot(model.RoleMember))
	want := []hydrate.CommandKind{
		hydrate.KindFetchProjects,
		hydrate.KindFetchCapabilities,
		hydrate.KindFetchMeCapabilityIDs,
		hydrate.KindFetchWorkSessions,
		hydrate.KindFetchMeMetrics,
		hydrate.KindFetchOrgUsersCache,
		hydrate.KindRefreshMember,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Plan kinds = %v, want %v", kinds(got), want)
	}

	warm := warmSnapshot(model.RoleMember, 1)
	if got := hydrate.Plan(nav.MemberPoolDefault(), warm); got != nil {
		t.Errorf("Plan warm member = %v, want nil", got)
	}

	warm.MemberTasks = model.Failed
	got = hydrate.Plan(nav.MemberPoolDefault(), warm)
	wantCmds := []hydrate.Command{hydrate.RefreshMember()}
	if !reflect.DeepEqual(got, wantCmds) {
		t.Errorf("Plan with failed member tasks = %v, want [RefreshMember]", got)
	}
}

// resourceStateFor maps a fetch command back to the snapshot field it
// targets, for the no-duplicate-in-flight property.
func resourceStateFor(snap hydrate.Snapshot, c hydrate.Command) (model.ResourceState, bool) {
	switch c.Kind {
	case hydrate.KindFetchProjects:
		return snap.Projects, true
	case hydrate.KindFetchInviteLinks:
		return snap.InviteLinks, true
	case hydrate.KindFetchCapabilities:
		return snap.Capabilities, true
	case hydrate.KindFetchMeCapabilityIDs:
		return snap.MeCapabilityIDs, true
	case hydrate.KindFetchOrgSettingsUsers:
		return snap.OrgSettingsUsers, true
	case hydrate.KindFetchOrgUsersCache:
		return snap.OrgUsersCache, true
	case hydrate.KindFetchMembers:
		return snap.Members, true
	case hydrate.KindFetchTaskTypes:
		return snap.TaskTypes, true
	case hydrate.KindRefreshMember:
		return snap.MemberTasks, true
	case hydrate.KindFetchWorkSessions:
		return snap.WorkSessions, true
	case hydrate.KindFetchMeMetrics:
		return snap.MeMetrics, true
	case hydrate.KindFetchOrgMetricsOverview:
		return snap.OrgMetricsOverview, true
	case hydrate.KindFetchOrgMetricsProjectTasks:
		return snap.OrgMetricsProjectTasks, true
	}
	return 0, false
}

func drawState(t *rapid.T, label string) model.ResourceState {
	return model.ResourceState(rapid.IntRange(0, 3).Draw(t, label))
}

func drawOptInt(t *rapid.T, label string) model.OptInt {
	if rapid.Bool().Draw(t, label+"-ok") {
		return model.SomeInt(rapid.IntRange(1, 5).Draw(t, label))
	}
	return model.OptInt{}
}

func drawSnapshot(t *rapid.T) hydrate.Snapshot {
	var snap hydrate.Snapshot
	snap.Auth.Phase = model.AuthPhase(rapid.IntRange(0, 2).Draw(t, "phase"))
	snap.Auth.Role = model.Role(rapid.IntRange(0, 1).Draw(t, "role"))
	snap.Projects = drawState(t, "projects")
	snap.InviteLinks = drawState(t, "invites")
	snap.Capabilities = drawState(t, "caps")
	snap.MeCapabilityIDs = drawState(t, "mecaps")
	snap.OrgSettingsUsers = drawState(t, "settingsusers")
	snap.OrgUsersCache = drawState(t, "userscache")
	snap.Members = drawState(t, "members")
	snap.TaskTypes = drawState(t, "tasktypes")
	snap.MemberTasks = drawState(t, "membertasks")
	snap.WorkSessions = drawState(t, "sessions")
	snap.MeMetrics = drawState(t, "memetrics")
	snap.OrgMetricsOverview = drawState(t, "overview")
	snap.OrgMetricsProjectTasks = drawState(t, "projtasks")
	snap.MembersProjectID = drawOptInt(t, "members-pid")
	snap.TaskTypesProjectID = drawOptInt(t, "types-pid")
	snap.OrgMetricsProjectID = drawOptInt(t, "metrics-pid")
	if snap.Projects == model.Loaded {
		manager := rapid.Bool().Draw(t, "manager")
		snap.ProjectList = []model.Project{{ID: 1, IsManager: manager}, {ID: 2}}
		snap.IsAnyProjectManager = manager
	}
	return snap
}

func drawRoute(t *rapid.T) nav.Route {
	section := nav.AdminSection(rapid.IntRange(0, 4).Draw(t, "section"))
	project := drawOptInt(t, "route-pid")
	switch rapid.IntRange(0, 5).Draw(t, "routekind") {
	case 0:
		return nav.Login()
	case 1:
		return nav.AcceptInvite("tok")
	case 2:
		return nav.ResetPassword("tok")
	case 3:
		return nav.ConfigRoute(section, project)
	case 4:
		return nav.OrgRoute(section)
	default:
		return nav.MemberRoute(nav.MemberTasks, project, nav.ViewPool)
	}
}

// No plan ever targets a resource that is already Loading, and planning the
// same inputs twice yields structurally equal output.
func TestPlanProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		route := drawRoute(t)
		snap := drawSnapshot(t)

		first := hydrate.Plan(route, snap)
		second := hydrate.Plan(route, snap)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("plan not deterministic: %v vs %v", first, second)
		}

		for _, cmd := range first {
			if state, ok := resourceStateFor(snap, cmd); ok && state == model.Loading {
				t.Fatalf("command %v targets a Loading resource (route %+v)", cmd, route)
			}
		}
	})
}
