package datasource_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crewdeck/crew/internal/datasource"
	"github.com/crewdeck/crew/pkg/hydrate"
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
	"github.com/crewdeck/crew/pkg/workspace"
)

func newFixtureService(t *testing.T) *datasource.Service {
	t.Helper()
	svc := datasource.NewService(openFixture(t))
	svc.SetClock(func() time.Time {
		return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func TestServiceFetchMe(t *testing.T) {
	svc := newFixtureService(t)

	res := svc.Execute(context.Background(), hydrate.FetchMe())
	if res.Err != nil {
		t.Fatalf("FetchMe: %v", res.Err)
	}
	if res.Me == nil || res.Me.ID != 7 {
		t.Errorf("Me = %+v", res.Me)
	}
	if me, ok := svc.MeUser(); !ok || me.ID != 7 {
		t.Error("service should cache the signed-in user")
	}
}

func TestServiceMeScopedReads(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	// Reads scoped to "me" need a prior FetchMe or Login.
	if res := svc.Execute(ctx, hydrate.FetchMe()); res.Err != nil {
		t.Fatal(res.Err)
	}

	res := svc.Execute(ctx, hydrate.FetchProjects())
	if res.Err != nil || len(res.Projects) != 2 {
		t.Errorf("FetchProjects = %+v err %v", res.Projects, res.Err)
	}

	res = svc.Execute(ctx, hydrate.RefreshMember())
	if res.Err != nil || len(res.Tasks) != 1 {
		t.Errorf("RefreshMember = %+v err %v", res.Tasks, res.Err)
	}

	res = svc.Execute(ctx, hydrate.FetchMeMetrics())
	if res.Err != nil {
		t.Fatalf("FetchMeMetrics: %v", res.Err)
	}
	if res.MeMetrics == nil || res.MeMetrics.TasksInProgress != 1 {
		t.Errorf("MeMetrics = %+v", res.MeMetrics)
	}
}

func TestServiceScopedResultTagging(t *testing.T) {
	svc := newFixtureService(t)

	cmd := hydrate.FetchMembers(1)
	res := svc.Execute(context.Background(), cmd)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	// The dispatcher needs the scope echoed back to drop stale replies.
	if res.Cmd != cmd {
		t.Errorf("result command = %+v, want %+v", res.Cmd, cmd)
	}
	if res.Cmd.ProjectID != 1 {
		t.Errorf("scope id = %d, want 1", res.Cmd.ProjectID)
	}
	if len(res.Members) != 2 {
		t.Errorf("members = %+v", res.Members)
	}
}

func TestServiceOrgMetrics(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	if res := svc.Execute(ctx, hydrate.FetchMe()); res.Err != nil {
		t.Fatal(res.Err)
	}

	res := svc.Execute(ctx, hydrate.FetchOrgMetricsOverview())
	if res.Err != nil {
		t.Fatalf("overview: %v", res.Err)
	}
	if res.Overview == nil || len(res.Overview.Projects) != 2 {
		t.Fatalf("overview = %+v", res.Overview)
	}
	if res.Overview.ActiveUsers != 2 {
		t.Errorf("ActiveUsers = %d, want 2", res.Overview.ActiveUsers)
	}

	res = svc.Execute(ctx, hydrate.FetchOrgMetricsProjectTasks(1))
	if res.Err != nil || res.ProjectTasks == nil {
		t.Fatalf("project tasks: %+v err %v", res.ProjectTasks, res.Err)
	}
	if res.ProjectTasks.ByStatus[model.TaskInProgress] != 1 {
		t.Errorf("ByStatus = %v", res.ProjectTasks.ByStatus)
	}
}

func TestServiceRedirectIsNoop(t *testing.T) {
	svc := newFixtureService(t)

	res := svc.Execute(context.Background(), hydrate.Redirect(nav.MemberPoolDefault()))
	if res.Err != nil {
		t.Errorf("redirect should not touch the store: %v", res.Err)
	}
}

func TestServiceLogin(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	u, err := svc.Login(ctx, "grace@example.com")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("role = %v, want admin", u.Role)
	}

	if _, err := svc.Login(ctx, "nobody@example.com"); !errors.Is(err, datasource.ErrNotFound) {
		t.Errorf("unknown email: %v, want ErrNotFound", err)
	}

	svc.Logout()
	if _, ok := svc.MeUser(); ok {
		t.Error("MeUser after Logout should report no user")
	}
}

// The service doubles as the workspace bundle source.
func TestServiceAsWorkspaceSource(t *testing.T) {
	svc := newFixtureService(t)

	var src workspace.Source = svc
	l := workspace.NewLoader(src)

	ws, err := l.Load(context.Background(), 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ws.ProjectID != 1 || len(ws.Tasks) != 1 || len(ws.Members) != 2 {
		t.Errorf("workspace = %+v", ws)
	}
	if len(ws.Capabilities) != 2 || len(ws.TaskTypes) != 1 {
		t.Errorf("workspace catalog = %+v", ws)
	}
}
