// Package ui is the terminal client runtime. It owns the navigation
// loop: every event folds into the model, the hydration planner is
// re-entered against the current route and snapshot, and the commands
// it emits become bubbletea commands. Fetch results swap the snapshot
// wholesale; redirects replace the URL and replan from the new route.
package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"

	"github.com/crewdeck/crew/internal/datasource"
	"github.com/crewdeck/crew/pkg/debug"
	"github.com/crewdeck/crew/pkg/export"
	"github.com/crewdeck/crew/pkg/hydrate"
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
	"github.com/crewdeck/crew/pkg/watcher"
	"github.com/crewdeck/crew/pkg/workspace"
)

// maxRedirects bounds redirect chains within one planning pass. The
// planner's redirects all terminate, so hitting the bound is a bug.
const maxRedirects = 4

// Options configures the client model.
type Options struct {
	// StartURL is the app URL opened first. Defaults to /app.
	StartURL string
	// Watcher, when set, invalidates caches on data file changes.
	Watcher *watcher.Watcher
	// ExportDir receives metrics chart exports.
	ExportDir string
}

// navigateMsg asks the model to open a URL, as if typed in the bar.
type navigateMsg struct{ url string }

// Model is the bubbletea model for the whole client.
type Model struct {
	svc    *datasource.Service
	loader *workspace.Loader
	watch  *watcher.Watcher

	startURL  string
	exportDir string

	route  nav.Route
	state  nav.State
	rawURL string

	snap hydrate.Snapshot
	data Data
	ws   workspace.State

	// meInFlight guards the identity probe, which has no ResourceState
	// of its own in the snapshot.
	meInFlight bool

	urlBar     textinput.Model
	urlFocused bool
	spin       spinner.Model
	md         *glamour.TermRenderer

	loginForm *huh.Form

	invite    model.InviteLink
	inviteErr string

	width  int
	height int
	ready  bool
	status string
}

// New builds the client model around a data service.
func New(svc *datasource.Service, opts Options) Model {
	if opts.StartURL == "" {
		opts.StartURL = "/app"
	}

	bar := textinput.New()
	bar.Placeholder = "/app"
	bar.Prompt = "url> "
	bar.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)

	return Model{
		svc:       svc,
		loader:    workspace.NewLoader(svc),
		watch:     opts.Watcher,
		startURL:  opts.StartURL,
		exportDir: opts.ExportDir,
		route:     nav.MemberPoolDefault(),
		state:     nav.Empty(),
		ws:        workspace.None(),
		urlBar:    bar,
		spin:      sp,
		md:        md,
		loginForm: newLoginForm(),
		width:     80,
		height:    24,
		ready:     true,
	}
}

func newLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("you@example.com"),
		),
	)
}

// Init opens the start URL and arms the watcher.
func (m Model) Init() tea.Cmd {
	start := m.startURL
	cmds := []tea.Cmd{
		m.spin.Tick,
		func() tea.Msg { return navigateMsg{url: start} },
	}
	if m.watch != nil {
		cmds = append(cmds, watchCmd(m.watch))
	}
	return tea.Batch(cmds...)
}

// Route returns the current route. Tests and the URL bar read it.
func (m Model) Route() nav.Route { return m.route }

// NavState returns the current navigation state.
func (m Model) NavState() nav.State { return m.state }

// Snapshot returns the current resource snapshot.
func (m Model) Snapshot() hydrate.Snapshot { return m.snap }

// CurrentURL returns the canonical URL for the current route and state.
func (m Model) CurrentURL() string { return m.rawURL }

// navigate parses a URL, replaces route and state, and replans. Unknown
// paths fall back to the member area, mirroring a catch-all route.
func (m Model) navigate(raw string) (Model, tea.Cmd) {
	route, res, ok := nav.ParseRoute(raw)
	if !ok {
		debug.Log("navigate: unknown path %q, falling back to /app", raw)
		route = nav.MemberPoolDefault()
		res = nav.Result{}
	}

	m.route = route
	m.state = res.State
	if !res.Canonical() {
		m.status = fmt.Sprintf("url cleaned up (%d invalid params dropped)", len(res.Errors))
	}
	return m.replan()
}

// replan re-enters the hydration planner. Redirects replace the route
// in place and plan again; fetch commands mark their resources Loading
// and become bubbletea commands.
func (m Model) replan() (Model, tea.Cmd) {
	var teaCmds []tea.Cmd

	for i := 0; i < maxRedirects; i++ {
		cmds := hydrate.Plan(m.route, m.snap)

		redirected := false
		for _, c := range cmds {
			if c.Kind == hydrate.KindRedirect {
				debug.Log("replan: redirect to %s", nav.RoutePath(c.To, nav.Empty()))
				m.route = c.To
				m.state = nav.Empty()
				redirected = true
				break
			}
		}
		if redirected {
			continue
		}

		for _, c := range cmds {
			if c.Kind == hydrate.KindFetchMe {
				if m.meInFlight {
					continue
				}
				m.meInFlight = true
			}
			m.snap = markLoading(m.snap, c)
			teaCmds = append(teaCmds, fetchCmd(m.svc, c))
		}
		break
	}

	m.rawURL = nav.RoutePath(m.route, m.state)
	if !m.urlFocused {
		m.urlBar.SetValue(m.rawURL)
	}

	var wsCmd tea.Cmd
	m, wsCmd = m.syncWorkspace()
	if wsCmd != nil {
		teaCmds = append(teaCmds, wsCmd)
	}

	var tokenCmd tea.Cmd
	m, tokenCmd = m.syncTokenFlow()
	if tokenCmd != nil {
		teaCmds = append(teaCmds, tokenCmd)
	}

	if len(teaCmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(teaCmds...)
}

// syncWorkspace keeps the project working set aligned with the selected
// project on member routes. Selection always wins; stale loads are
// dropped by the workspace state machine.
func (m Model) syncWorkspace() (Model, tea.Cmd) {
	if m.route.Kind != nav.RouteMember || m.snap.Auth.Phase != model.AuthAuthed {
		return m, nil
	}

	pid, ok := m.state.Project()
	if !ok {
		if m.ws.Phase() != workspace.PhaseNone {
			m.ws = m.ws.Clear()
		}
		return m, nil
	}

	if cur, selected := m.ws.ProjectID(); selected && cur == pid {
		return m, nil
	}

	m.ws = m.ws.SelectProject(pid)
	return m, loadWorkspaceCmd(m.loader, pid)
}

// syncTokenFlow kicks off the invite token lookup when landing on an
// accept-invite URL.
func (m Model) syncTokenFlow() (Model, tea.Cmd) {
	if m.route.Kind != nav.RouteAcceptInvite || m.route.Token == "" {
		return m, nil
	}
	if m.invite.Token == m.route.Token || m.inviteErr != "" {
		return m, nil
	}
	return m, inviteCmd(m.svc, m.route.Token)
}

// Update is the single fold for every event.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case navigateMsg:
		return m.navigate(msg.url)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.urlBar.Width = msg.Width - 10
		return m, nil

	case spinner.TickMsg:
		if !m.anythingLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case FetchResultMsg:
		return m.applyFetch(msg)

	case LoginResultMsg:
		if msg.Err != nil {
			m.status = "login failed: " + msg.Err.Error()
			m.loginForm = newLoginForm()
			return m, m.loginForm.Init()
		}
		m.data.Me = msg.User
		m.snap.Auth = model.Authed(msg.User.Role)
		return m.navigate("/app")

	case InviteResultMsg:
		if msg.Err != nil {
			m.inviteErr = msg.Err.Error()
		} else {
			m.invite = msg.Invite
		}
		return m, nil

	case WorkspaceMsg:
		if msg.Err != nil {
			if cur, ok := m.ws.ProjectID(); ok && cur == msg.ProjectID {
				m.ws = m.ws.Failed(msg.Err.Error())
			}
			return m, nil
		}
		m.ws = m.ws.Loaded(msg.WS)
		return m, nil

	case DataChangedMsg:
		debug.Log("data file changed, invalidating caches")
		m.snap = invalidate(m.snap)
		if pid, ok := m.ws.ProjectID(); ok {
			m.ws = m.ws.SelectProject(pid)
		}
		var replanCmd tea.Cmd
		m, replanCmd = m.replan()
		return m, tea.Batch(replanCmd, watchCmd(m.watch))

	case ChartSavedMsg:
		if msg.Err != nil {
			m.status = "export failed: " + msg.Err.Error()
		} else {
			m.status = "chart saved to " + msg.Path
		}
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Route page-level messages (form internals) to the login form.
	if m.route.Kind == nav.RouteLogin && m.snap.Auth.Phase == model.AuthUnauthed {
		return m.updateLoginForm(msg)
	}
	return m, nil
}

func (m Model) applyFetch(msg FetchResultMsg) (tea.Model, tea.Cmd) {
	if msg.Cmd.Kind == hydrate.KindFetchMe {
		m.meInFlight = false
	}

	target := m.route.Project
	if m.route.Kind == nav.RouteMember {
		if pid, ok := m.state.Project(); ok {
			target = model.SomeInt(pid)
		}
	}

	m.snap, m.data = applyResult(m.snap, m.data, msg.Result, target)

	var cmds []tea.Cmd
	var replanCmd tea.Cmd
	m, replanCmd = m.replan()
	if replanCmd != nil {
		cmds = append(cmds, replanCmd)
	}

	// A signed-out identity probe lands on the login page, by redirect or
	// directly; wake the form.
	if msg.Cmd.Kind == hydrate.KindFetchMe &&
		m.route.Kind == nav.RouteLogin && m.snap.Auth.Phase == model.AuthUnauthed {
		cmds = append(cmds, m.loginForm.Init())
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.loginForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.loginForm = f
	}

	if m.loginForm.State == huh.StateCompleted {
		email := m.loginForm.GetString("email")
		m.status = "signing in..."
		return m, loginCmd(m.svc, email)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.urlFocused {
		switch msg.String() {
		case "esc":
			m.urlFocused = false
			m.urlBar.Blur()
			m.urlBar.SetValue(m.rawURL)
			return m, nil
		case "enter":
			m.urlFocused = false
			m.urlBar.Blur()
			return m.navigate(m.urlBar.Value())
		default:
			var cmd tea.Cmd
			m.urlBar, cmd = m.urlBar.Update(msg)
			return m, cmd
		}
	}

	// Login page: everything except global keys belongs to the form.
	if m.route.Kind == nav.RouteLogin && m.snap.Auth.Phase == model.AuthUnauthed {
		return m.updateLoginForm(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "u":
		m.urlFocused = true
		m.urlBar.SetValue(m.rawURL)
		return m, m.urlBar.Focus()

	case "y":
		url := m.rawURL
		if m.route.Kind == nav.RouteMember {
			url = nav.AppURL(m.state)
		}
		if err := clipboard.WriteAll(url); err != nil {
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "copied " + url
		}
		return m, nil

	case "g":
		return m.navigate("/app")

	case "1", "2", "3", "4":
		if m.route.Kind != nav.RouteMember || m.route.Member != nav.MemberTasks {
			return m, nil
		}
		views := map[string]nav.MemberViewMode{
			"1": nav.ViewPool, "2": nav.ViewList, "3": nav.ViewCards, "4": nav.ViewPeople,
		}
		m.state = m.state.WithView(views[msg.String()])
		return m.replan()

	case "f":
		if m.route.Kind == nav.RouteMember {
			m.state = m.state.ClearFilters()
			return m.replan()
		}
		return m, nil

	case "e":
		if m.onMetricsPage() && m.snap.OrgMetricsOverview == model.Loaded {
			return m, m.exportChartCmd()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) onMetricsPage() bool {
	return (m.route.Kind == nav.RouteConfig || m.route.Kind == nav.RouteOrg) &&
		m.route.Section == nav.SectionMetrics
}

func (m Model) exportChartCmd() tea.Cmd {
	ov := m.data.Overview
	dir := m.exportDir
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("overview-%s.svg",
			time.Now().Format("20060102-150405")))
		err := export.SaveOverviewChart(path, ov)
		return ChartSavedMsg{Path: path, Err: err}
	}
}

func (m Model) anythingLoading() bool {
	if m.meInFlight || m.ws.Phase() == workspace.PhaseLoading {
		return true
	}
	for _, s := range []model.ResourceState{
		m.snap.Projects, m.snap.InviteLinks, m.snap.Capabilities,
		m.snap.MeCapabilityIDs, m.snap.OrgSettingsUsers, m.snap.OrgUsersCache,
		m.snap.Members, m.snap.TaskTypes, m.snap.MemberTasks,
		m.snap.WorkSessions, m.snap.MeMetrics, m.snap.OrgMetricsOverview,
		m.snap.OrgMetricsProjectTasks,
	} {
		if s == model.Loading {
			return true
		}
	}
	return false
}
