package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crewdeck/crew/internal/datasource"
	"github.com/crewdeck/crew/pkg/hydrate"
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/watcher"
	"github.com/crewdeck/crew/pkg/workspace"
)

// FetchResultMsg carries one completed fetch back into Update. The
// embedded command echoes the scope active at dispatch.
type FetchResultMsg struct {
	datasource.Result
}

// LoginResultMsg reports the outcome of a login attempt.
type LoginResultMsg struct {
	User model.User
	Err  error
}

// InviteResultMsg reports an invite token lookup.
type InviteResultMsg struct {
	Invite model.InviteLink
	Err    error
}

// WorkspaceMsg carries a loaded project working set. ProjectID is the
// project requested at dispatch; stale results are dropped by the
// workspace state machine.
type WorkspaceMsg struct {
	ProjectID int
	WS        model.Workspace
	Err       error
}

// DataChangedMsg signals that the underlying data file changed on disk.
type DataChangedMsg struct{}

// ChartSavedMsg reports the outcome of a metrics chart export.
type ChartSavedMsg struct {
	Path string
	Err  error
}

// StatusMsg shows a transient line in the footer.
type StatusMsg string

func fetchCmd(svc *datasource.Service, cmd hydrate.Command) tea.Cmd {
	return func() tea.Msg {
		return FetchResultMsg{svc.Execute(context.Background(), cmd)}
	}
}

func loginCmd(svc *datasource.Service, email string) tea.Cmd {
	return func() tea.Msg {
		u, err := svc.Login(context.Background(), email)
		return LoginResultMsg{User: u, Err: err}
	}
}

func inviteCmd(svc *datasource.Service, token string) tea.Cmd {
	return func() tea.Msg {
		inv, err := svc.AcceptInvite(context.Background(), token)
		return InviteResultMsg{Invite: inv, Err: err}
	}
}

func loadWorkspaceCmd(l *workspace.Loader, projectID int) tea.Cmd {
	return func() tea.Msg {
		ws, err := l.Load(context.Background(), projectID)
		return WorkspaceMsg{ProjectID: projectID, WS: ws, Err: err}
	}
}

// watchCmd blocks until the watcher reports a change, then re-arms
// itself from Update.
func watchCmd(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changed()
		return DataChangedMsg{}
	}
}
