package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/nav"
	"github.com/crewdeck/crew/pkg/perm"
	"github.com/crewdeck/crew/pkg/workspace"
)

// View renders the whole client.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewBody())
	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return b.String()
}

func (m Model) viewHeader() string {
	title := "crew"
	switch m.route.Kind {
	case nav.RouteLogin:
		title += " · sign in"
	case nav.RouteAcceptInvite:
		title += " · invite"
	case nav.RouteResetPassword:
		title += " · reset password"
	case nav.RouteConfig:
		title += " · config / " + m.route.Section.Title()
	case nav.RouteOrg:
		title += " · org / " + m.route.Section.Title()
	default:
		if m.route.Member == nav.MemberSessions {
			title += " · sessions"
		} else {
			title += " · tasks"
		}
	}

	head := headerStyle.Render(title)
	if m.anythingLoading() {
		head += " " + m.spin.View()
	}

	bar := urlBarStyle
	if m.urlFocused {
		bar = urlBarFocusedStyle
	}
	return head + "\n" + bar.Width(m.width-4).Render(m.urlBar.View())
}

func (m Model) viewFooter() string {
	help := "u url · y copy · g tasks · q quit"
	if m.route.Kind == nav.RouteMember {
		help = "1-4 view · f clear filters · " + help
	}
	if m.onMetricsPage() {
		help = "e export chart · " + help
	}

	line := statusBarStyle.Render(help)
	if m.status != "" {
		line += "   " + mutedStyle.Render(m.status)
	}
	if m.data.LastError != "" {
		line += "\n" + errorStyle.Render("error: "+m.data.LastError)
	}
	return line
}

func (m Model) viewBody() string {
	switch m.route.Kind {
	case nav.RouteLogin:
		return m.viewLogin()
	case nav.RouteAcceptInvite:
		return m.viewInvite()
	case nav.RouteResetPassword:
		return m.viewResetPassword()
	case nav.RouteConfig, nav.RouteOrg:
		return m.viewAdmin()
	default:
		return m.viewMember()
	}
}

func (m Model) viewLogin() string {
	if m.snap.Auth.Phase == model.AuthUnknown {
		return mutedStyle.Render("checking session...")
	}
	return m.loginForm.View()
}

func (m Model) viewInvite() string {
	if m.inviteErr != "" {
		return errorStyle.Render("invite not found: " + m.inviteErr)
	}
	if m.invite.Token == "" {
		return mutedStyle.Render("looking up invite...")
	}
	return fmt.Sprintf("%s\n\nYou have been invited to join as %s.\nPress enter on the web client to accept.",
		sectionTitleStyle.Render("Invitation"), m.invite.RoleName)
}

func (m Model) viewResetPassword() string {
	return sectionTitleStyle.Render("Reset password") + "\n\n" +
		mutedStyle.Render("Open this link in the web client to choose a new password.")
}

// viewMember renders the member area: my tasks in the selected view
// mode, or work sessions.
func (m Model) viewMember() string {
	if m.snap.Auth.Phase != model.AuthAuthed {
		return mutedStyle.Render("signing in...")
	}

	if m.route.Member == nav.MemberSessions {
		return m.viewSessions()
	}

	var b strings.Builder
	b.WriteString(m.viewProjectLine())
	b.WriteString("\n")
	b.WriteString(m.viewMemberTabs())
	b.WriteString("\n\n")

	switch m.state.View() {
	case nav.ViewPeople:
		b.WriteString(m.viewPeople())
	case nav.ViewCards:
		b.WriteString(m.viewCards())
	case nav.ViewList:
		b.WriteString(m.viewTaskList())
	default:
		b.WriteString(m.viewPool())
	}
	return b.String()
}

func (m Model) viewProjectLine() string {
	pid, ok := m.state.Project()
	if !ok {
		return mutedStyle.Render("all projects · " + fmt.Sprintf("%d tasks assigned to you", len(m.data.MemberTasks)))
	}
	name := fmt.Sprintf("project %d", pid)
	for _, p := range m.snap.ProjectList {
		if p.ID == pid {
			name = p.Name
			break
		}
	}
	line := sectionTitleStyle.Render(name)
	if m.ws.Phase() == workspace.PhaseLoading {
		line += mutedStyle.Render("  loading workspace...")
	}
	if msg, failed := m.ws.Err(); failed {
		line += errorStyle.Render("  " + msg)
	}
	return line
}

func (m Model) viewMemberTabs() string {
	tabs := []struct {
		mode  nav.MemberViewMode
		label string
	}{
		{nav.ViewPool, "1 pool"},
		{nav.ViewList, "2 list"},
		{nav.ViewCards, "3 cards"},
		{nav.ViewPeople, "4 people"},
	}
	var parts []string
	for _, t := range tabs {
		if m.state.View() == t.mode {
			parts = append(parts, selectedTabStyle.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	return strings.Join(parts, "  ")
}

// visibleTasks applies the nav state's filters to the task source: the
// selected project's workspace when ready, otherwise my tasks.
func (m Model) visibleTasks() []model.Task {
	source := m.data.MemberTasks
	if ws, ok := m.ws.Workspace(); ok {
		source = ws.Tasks
	}

	typeFilter, hasType := m.state.TypeFilter()
	capFilter, hasCap := m.state.CapabilityFilter()
	search, hasSearch := m.state.Search()
	search = strings.ToLower(search)

	var out []model.Task
	for _, t := range source {
		if hasType && t.TypeID != model.SomeInt(typeFilter) {
			continue
		}
		if hasCap && t.CapabilityID != model.SomeInt(capFilter) {
			continue
		}
		if hasSearch && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (m Model) viewPool() string {
	tasks := m.visibleTasks()
	cols := map[model.TaskStatus][]model.Task{}
	for _, t := range tasks {
		cols[t.Status] = append(cols[t.Status], t)
	}

	colWidth := m.width/3 - 4
	if colWidth < 16 {
		colWidth = 16
	}

	render := func(title string, list []model.Task) string {
		var b strings.Builder
		b.WriteString(sectionTitleStyle.Render(fmt.Sprintf("%s (%d)", title, len(list))))
		b.WriteString("\n")
		for _, t := range list {
			b.WriteString(truncateWidth("· "+t.Title, colWidth))
			b.WriteString("\n")
		}
		return cardStyle.Width(colWidth).Render(b.String())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		render("pool", cols[model.TaskPool]),
		render("in progress", cols[model.TaskInProgress]),
		render("done", cols[model.TaskDone]),
	)
}

func (m Model) viewTaskList() string {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return mutedStyle.Render("no tasks match")
	}

	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			statusBadge(t.Status),
			padRight(truncateWidth(t.Title, 48), 48),
			mutedStyle.Render(formatTimeRel(t.UpdatedAt, time.Now()))))
	}
	return b.String()
}

func (m Model) viewCards() string {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return mutedStyle.Render("no tasks match")
	}

	expanded, hasExpanded := m.state.ExpandedCard()

	var b strings.Builder
	for _, t := range tasks {
		title := truncateWidth(t.Title, m.width-8)
		card := statusBadge(t.Status) + " " + title
		if hasExpanded && t.ID == expanded {
			body := t.Description
			if body == "" {
				body = "_no description_"
			}
			if m.md != nil {
				if rendered, err := m.md.Render(body); err == nil {
					body = rendered
				}
			}
			card += "\n" + body
		}
		b.WriteString(cardStyle.Width(m.width - 6).Render(card))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPeople() string {
	ws, ok := m.ws.Workspace()
	if !ok {
		return mutedStyle.Render("select a project to see its people")
	}

	capNames := make(map[int]string, len(ws.Capabilities))
	for _, c := range ws.Capabilities {
		capNames[c.ID] = c.Name
	}

	var b strings.Builder
	for _, mem := range ws.Members {
		var caps []string
		for _, id := range mem.CapabilityIDs {
			if n, ok := capNames[id]; ok {
				caps = append(caps, n)
			}
		}
		b.WriteString(fmt.Sprintf("%s  %s\n",
			padRight(mem.Name, 24),
			mutedStyle.Render(strings.Join(caps, ", "))))
	}
	return b.String()
}

func (m Model) viewSessions() string {
	if len(m.data.Sessions) == 0 {
		return mutedStyle.Render("no tracked work sessions")
	}

	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Work sessions"))
	b.WriteString("\n\n")
	for _, s := range m.data.Sessions {
		end := "ongoing"
		if s.EndedAt != nil {
			end = s.EndedAt.Sub(s.StartedAt).Round(time.Minute).String()
		}
		b.WriteString(fmt.Sprintf("task %-5d %s  %s\n",
			s.TaskID, s.StartedAt.Format("Jan 02 15:04"), mutedStyle.Render(end)))
	}
	return b.String()
}

// viewAdmin renders the config and org pages with a section sidebar
// filtered by the role's visible sections.
func (m Model) viewAdmin() string {
	if m.snap.Auth.Phase != model.AuthAuthed {
		return mutedStyle.Render("signing in...")
	}
	if m.snap.Projects != model.Loaded {
		return mutedStyle.Render("loading projects...")
	}

	sidebar := m.viewSectionSidebar()
	body := m.viewSection()

	return lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Width(22).Render(sidebar),
		lipgloss.NewStyle().PaddingLeft(2).Render(body))
}

func (m Model) viewSectionSidebar() string {
	var b strings.Builder
	for _, s := range perm.VisibleSections(m.snap.Auth.Role, m.snap.ProjectList) {
		label := s.Title()
		if s == m.route.Section {
			b.WriteString(selectedTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewSection() string {
	switch m.route.Section {
	case nav.SectionMembers:
		return m.viewMembersSection()
	case nav.SectionTaskTypes:
		return m.viewTaskTypesSection()
	case nav.SectionMetrics:
		return m.viewMetricsSection()
	case nav.SectionOrgSettings:
		return m.viewSettingsSection()
	case nav.SectionAssignments:
		return m.viewAssignmentsSection()
	}
	return ""
}

func (m Model) viewMembersSection() string {
	if !m.route.Project.OK {
		return mutedStyle.Render("select a project (?project=N)")
	}
	if m.snap.Members != model.Loaded {
		return mutedStyle.Render("loading members...")
	}

	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Members"))
	b.WriteString("\n\n")
	for _, mem := range m.data.Members {
		b.WriteString(fmt.Sprintf("%-5d %s\n", mem.UserID, mem.Name))
	}
	return b.String()
}

func (m Model) viewTaskTypesSection() string {
	if !m.route.Project.OK {
		return mutedStyle.Render("select a project (?project=N)")
	}
	if m.snap.TaskTypes != model.Loaded {
		return mutedStyle.Render("loading task types...")
	}

	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Task types"))
	b.WriteString("\n\n")
	for _, tt := range m.data.TaskTypes {
		b.WriteString(fmt.Sprintf("%-5d %s\n", tt.ID, tt.Name))
	}
	return b.String()
}

func (m Model) viewMetricsSection() string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Metrics"))
	b.WriteString("\n\n")

	if m.snap.MeMetrics == model.Loaded {
		me := m.data.MeMetrics
		b.WriteString(fmt.Sprintf("you: %d done, %d in progress, %.1fh this week\n\n",
			me.TasksDone, me.TasksInProgress, me.HoursThisWeek))
	}

	if m.snap.OrgMetricsOverview != model.Loaded {
		b.WriteString(mutedStyle.Render("loading overview..."))
		return b.String()
	}

	for _, p := range m.data.Overview.Projects {
		b.WriteString(fmt.Sprintf("%s %4d open %4d done %7.1fh\n",
			padRight(truncateWidth(p.Name, 20), 20), p.OpenTasks, p.DoneTasks, p.TotalHours))
	}
	b.WriteString(subtextStyle.Render(fmt.Sprintf("\nactive users: %d\n", m.data.Overview.ActiveUsers)))

	if m.route.Project.OK && m.snap.OrgMetricsProjectTasks == model.Loaded {
		pt := m.data.ProjectTasks
		b.WriteString(fmt.Sprintf("\nproject %d: mean age %.1fd, p90 %.1fd, %d unassigned, %d untyped\n",
			pt.ProjectID, pt.MeanAgeDays, pt.P90AgeDays, pt.UnassignedN, pt.WithoutTypeN))
	}
	return b.String()
}

func (m Model) viewSettingsSection() string {
	if m.snap.OrgSettingsUsers != model.Loaded {
		return mutedStyle.Render("loading users...")
	}

	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Organization settings"))
	b.WriteString("\n\n")
	for _, u := range m.data.OrgSettingsUsers {
		status := "active"
		if !u.Active {
			status = "inactive"
		}
		b.WriteString(fmt.Sprintf("%s %-8s %s\n",
			padRight(u.Name, 24), u.RoleName, mutedStyle.Render(status)))
	}

	if m.snap.InviteLinks == model.Loaded && len(m.data.InviteLinks) > 0 {
		b.WriteString("\n" + sectionTitleStyle.Render("Pending invites") + "\n")
		for _, inv := range m.data.InviteLinks {
			b.WriteString(fmt.Sprintf("%s  %s\n", inv.Token, mutedStyle.Render(inv.RoleName)))
		}
	}
	return b.String()
}

func (m Model) viewAssignmentsSection() string {
	if m.snap.OrgUsersCache != model.Loaded {
		return mutedStyle.Render("loading assignments...")
	}

	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Assignments"))
	b.WriteString(mutedStyle.Render("  grouped " + m.state.AssignmentsView().Token()))
	b.WriteString("\n\n")
	for _, u := range m.data.OrgUsers {
		if !u.Active {
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s\n", padRight(u.Name, 24), mutedStyle.Render(u.RoleName)))
	}
	return b.String()
}
