package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crewdeck/crew/pkg/hydrate"
	"github.com/crewdeck/crew/pkg/metrics"
	"github.com/crewdeck/crew/pkg/model"
)

// Payload carries the typed result of one executed fetch. Exactly the
// field matching the command kind is set.
type Payload struct {
	Me            *model.User
	Projects      []model.Project
	InviteLinks   []model.InviteLink
	Capabilities  []model.Capability
	CapabilityIDs []int
	OrgUsers      []model.OrgUser
	Members       []model.Member
	TaskTypes     []model.TaskType
	Tasks         []model.Task
	Sessions      []model.WorkSession
	MeMetrics     *model.MeMetrics
	Overview      *model.OrgOverview
	ProjectTasks  *model.ProjectTaskStats
}

// Result pairs a payload with the command that produced it. Cmd echoes
// the scope id active at dispatch; the dispatcher compares it against
// the current target and discards responses whose scope no longer
// matches, so a late response for a previously selected project can
// never overwrite fresher data.
type Result struct {
	Cmd hydrate.Command
	Payload
	Err error
}

// Service executes hydration fetch commands against a Store and
// remembers the signed-in user for the "me"-scoped reads.
type Service struct {
	store Store
	now   func() time.Time

	mu sync.RWMutex
	me model.User
}

// NewService wraps a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetClock overrides the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// MeUser returns the cached signed-in user after a successful FetchMe
// or Login.
func (s *Service) MeUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.me, s.me.ID != 0
}

func (s *Service) setMe(u model.User) {
	s.mu.Lock()
	s.me = u
	s.mu.Unlock()
}

// Login authenticates by email for the login page. The fixture stores
// carry no credentials, so any known email signs in.
func (s *Service) Login(ctx context.Context, email string) (model.User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("signing in %s: %w", email, err)
	}
	s.setMe(u)
	return u, nil
}

// Logout drops the cached identity.
func (s *Service) Logout() {
	s.setMe(model.User{})
}

// AcceptInvite resolves an invite token.
func (s *Service) AcceptInvite(ctx context.Context, token string) (model.InviteLink, error) {
	inv, err := s.store.InviteByToken(ctx, token)
	if err != nil {
		return model.InviteLink{}, fmt.Errorf("resolving invite: %w", err)
	}
	return inv, nil
}

// Execute runs one fetch command and returns its tagged result.
// Redirect commands are the router's concern and return an empty
// result unchanged.
func (s *Service) Execute(ctx context.Context, cmd hydrate.Command) Result {
	res := Result{Cmd: cmd}

	meID := 0
	if me, ok := s.MeUser(); ok {
		meID = me.ID
	}

	switch cmd.Kind {
	case hydrate.KindFetchMe:
		u, err := s.store.Me(ctx)
		if err != nil {
			res.Err = err
			return res
		}
		s.setMe(u)
		res.Me = &u

	case hydrate.KindFetchProjects:
		res.Projects, res.Err = s.store.Projects(ctx, meID)

	case hydrate.KindFetchInviteLinks:
		res.InviteLinks, res.Err = s.store.InviteLinks(ctx)

	case hydrate.KindFetchCapabilities:
		res.Capabilities, res.Err = s.store.Capabilities(ctx)

	case hydrate.KindFetchMeCapabilityIDs:
		res.CapabilityIDs, res.Err = s.store.UserCapabilityIDs(ctx, meID)

	case hydrate.KindFetchOrgSettingsUsers, hydrate.KindFetchOrgUsersCache:
		res.OrgUsers, res.Err = s.store.OrgUsers(ctx)

	case hydrate.KindFetchMembers:
		res.Members, res.Err = s.store.Members(ctx, cmd.ProjectID)

	case hydrate.KindFetchTaskTypes:
		res.TaskTypes, res.Err = s.store.TaskTypes(ctx, cmd.ProjectID)

	case hydrate.KindRefreshMember:
		res.Tasks, res.Err = s.store.TasksForUser(ctx, meID)

	case hydrate.KindFetchWorkSessions:
		res.Sessions, res.Err = s.store.WorkSessions(ctx, meID)

	case hydrate.KindFetchMeMetrics:
		res.MeMetrics, res.Err = s.computeMeMetrics(ctx, meID)

	case hydrate.KindFetchOrgMetricsOverview:
		res.Overview, res.Err = s.computeOverview(ctx, meID)

	case hydrate.KindFetchOrgMetricsProjectTasks:
		res.ProjectTasks, res.Err = s.computeProjectTasks(ctx, cmd.ProjectID)

	case hydrate.KindRedirect:
		// Router concern; nothing to fetch.
	}

	return res
}

func (s *Service) computeMeMetrics(ctx context.Context, meID int) (*model.MeMetrics, error) {
	tasks, err := s.store.TasksForUser(ctx, meID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.WorkSessions(ctx, meID)
	if err != nil {
		return nil, err
	}
	m := metrics.ComputeMe(meID, tasks, sessions, s.now())
	return &m, nil
}

func (s *Service) computeOverview(ctx context.Context, meID int) (*model.OrgOverview, error) {
	projects, err := s.store.Projects(ctx, meID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.AllWorkSessions(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.store.OrgUsers(ctx)
	if err != nil {
		return nil, err
	}
	ov := metrics.ComputeOverview(projects, tasks, sessions, users, s.now())
	return &ov, nil
}

func (s *Service) computeProjectTasks(ctx context.Context, projectID int) (*model.ProjectTaskStats, error) {
	tasks, err := s.store.Tasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	st := metrics.ComputeProjectTasks(projectID, tasks, s.now())
	return &st, nil
}

// Tasks, Members, TaskTypes and Capabilities satisfy workspace.Source,
// so the workspace bundle loader can fetch straight from the service.

func (s *Service) Tasks(ctx context.Context, projectID int) ([]model.Task, error) {
	return s.store.Tasks(ctx, projectID)
}

func (s *Service) Members(ctx context.Context, projectID int) ([]model.Member, error) {
	return s.store.Members(ctx, projectID)
}

func (s *Service) TaskTypes(ctx context.Context, projectID int) ([]model.TaskType, error) {
	return s.store.TaskTypes(ctx, projectID)
}

func (s *Service) Capabilities(ctx context.Context) ([]model.Capability, error) {
	return s.store.Capabilities(ctx)
}
