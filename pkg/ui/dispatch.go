package ui

import (
	"errors"

	"github.com/crewdeck/crew/internal/datasource"
	"github.com/crewdeck/crew/pkg/hydrate"
	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/perm"
)

// Data holds the fetched payloads the pages render from. The resource
// states tracking their freshness live in the hydrate.Snapshot; both are
// replaced wholesale on every update.
type Data struct {
	Me               model.User
	InviteLinks      []model.InviteLink
	Capabilities     []model.Capability
	MeCapabilityIDs  []int
	OrgSettingsUsers []model.OrgUser
	OrgUsers         []model.OrgUser
	Members          []model.Member
	TaskTypes        []model.TaskType
	MemberTasks      []model.Task
	Sessions         []model.WorkSession
	MeMetrics        model.MeMetrics
	Overview         model.OrgOverview
	ProjectTasks     model.ProjectTaskStats
	LastError        string
}

// markLoading flips the resource a command will fetch to Loading, so
// the next planning pass does not request it again while in flight.
// FetchMe has no resource state; the model guards it separately.
func markLoading(snap hydrate.Snapshot, cmd hydrate.Command) hydrate.Snapshot {
	switch cmd.Kind {
	case hydrate.KindFetchProjects:
		snap.Projects = model.Loading
	case hydrate.KindFetchInviteLinks:
		snap.InviteLinks = model.Loading
	case hydrate.KindFetchCapabilities:
		snap.Capabilities = model.Loading
	case hydrate.KindFetchMeCapabilityIDs:
		snap.MeCapabilityIDs = model.Loading
	case hydrate.KindFetchOrgSettingsUsers:
		snap.OrgSettingsUsers = model.Loading
	case hydrate.KindFetchOrgUsersCache:
		snap.OrgUsersCache = model.Loading
	case hydrate.KindFetchMembers:
		snap.Members = model.Loading
	case hydrate.KindFetchTaskTypes:
		snap.TaskTypes = model.Loading
	case hydrate.KindRefreshMember:
		snap.MemberTasks = model.Loading
	case hydrate.KindFetchWorkSessions:
		snap.WorkSessions = model.Loading
	case hydrate.KindFetchMeMetrics:
		snap.MeMetrics = model.Loading
	case hydrate.KindFetchOrgMetricsOverview:
		snap.OrgMetricsOverview = model.Loading
	case hydrate.KindFetchOrgMetricsProjectTasks:
		snap.OrgMetricsProjectTasks = model.Loading
	}
	return snap
}

// applyResult folds one fetch result into the snapshot and data.
// target is the project selected on the current route; a scoped result
// whose dispatch scope no longer matches it is discarded, and its
// resource reset to NotAsked so the next planning pass refetches for
// the live scope.
func applyResult(snap hydrate.Snapshot, data Data, res datasource.Result, target model.OptInt) (hydrate.Snapshot, Data) {
	scoped := res.Cmd.Kind == hydrate.KindFetchMembers ||
		res.Cmd.Kind == hydrate.KindFetchTaskTypes ||
		res.Cmd.Kind == hydrate.KindFetchOrgMetricsProjectTasks
	if scoped && (!target.OK || target.Value != res.Cmd.ProjectID) {
		return dropStale(snap, res.Cmd.Kind), data
	}

	if res.Err != nil {
		return applyError(snap, data, res)
	}

	switch res.Cmd.Kind {
	case hydrate.KindFetchMe:
		data.Me = *res.Me
		snap.Auth = model.Authed(res.Me.Role)

	case hydrate.KindFetchProjects:
		data.LastError = ""
		snap.Projects = model.Loaded
		snap.ProjectList = res.Projects
		snap.IsAnyProjectManager = perm.AnyProjectManager(res.Projects)

	case hydrate.KindFetchInviteLinks:
		snap.InviteLinks = model.Loaded
		data.InviteLinks = res.InviteLinks

	case hydrate.KindFetchCapabilities:
		snap.Capabilities = model.Loaded
		data.Capabilities = res.Capabilities

	case hydrate.KindFetchMeCapabilityIDs:
		snap.MeCapabilityIDs = model.Loaded
		data.MeCapabilityIDs = res.CapabilityIDs

	case hydrate.KindFetchOrgSettingsUsers:
		snap.OrgSettingsUsers = model.Loaded
		data.OrgSettingsUsers = res.OrgUsers

	case hydrate.KindFetchOrgUsersCache:
		snap.OrgUsersCache = model.Loaded
		data.OrgUsers = res.OrgUsers

	case hydrate.KindFetchMembers:
		snap.Members = model.Loaded
		snap.MembersProjectID = model.SomeInt(res.Cmd.ProjectID)
		data.Members = res.Members

	case hydrate.KindFetchTaskTypes:
		snap.TaskTypes = model.Loaded
		snap.TaskTypesProjectID = model.SomeInt(res.Cmd.ProjectID)
		data.TaskTypes = res.TaskTypes

	case hydrate.KindRefreshMember:
		snap.MemberTasks = model.Loaded
		data.MemberTasks = res.Tasks

	case hydrate.KindFetchWorkSessions:
		snap.WorkSessions = model.Loaded
		data.Sessions = res.Sessions

	case hydrate.KindFetchMeMetrics:
		snap.MeMetrics = model.Loaded
		data.MeMetrics = *res.MeMetrics

	case hydrate.KindFetchOrgMetricsOverview:
		snap.OrgMetricsOverview = model.Loaded
		data.Overview = *res.Overview

	case hydrate.KindFetchOrgMetricsProjectTasks:
		snap.OrgMetricsProjectTasks = model.Loaded
		snap.OrgMetricsProjectID = model.SomeInt(res.Cmd.ProjectID)
		data.ProjectTasks = *res.ProjectTasks
	}

	return snap, data
}

func applyError(snap hydrate.Snapshot, data Data, res datasource.Result) (hydrate.Snapshot, Data) {
	if res.Cmd.Kind == hydrate.KindFetchMe {
		// Any identity failure reads as signed out; the next plan
		// redirects to the login page.
		snap.Auth = model.Unauthed()
		if !errors.Is(res.Err, datasource.ErrUnauthenticated) {
			data.LastError = res.Err.Error()
		}
		return snap, data
	}

	data.LastError = res.Err.Error()
	switch res.Cmd.Kind {
	case hydrate.KindFetchProjects:
		snap.Projects = model.Failed
	case hydrate.KindFetchInviteLinks:
		snap.InviteLinks = model.Failed
	case hydrate.KindFetchCapabilities:
		snap.Capabilities = model.Failed
	case hydrate.KindFetchMeCapabilityIDs:
		snap.MeCapabilityIDs = model.Failed
	case hydrate.KindFetchOrgSettingsUsers:
		snap.OrgSettingsUsers = model.Failed
	case hydrate.KindFetchOrgUsersCache:
		snap.OrgUsersCache = model.Failed
	case hydrate.KindFetchMembers:
		snap.Members = model.Failed
	case hydrate.KindFetchTaskTypes:
		snap.TaskTypes = model.Failed
	case hydrate.KindRefreshMember:
		snap.MemberTasks = model.Failed
	case hydrate.KindFetchWorkSessions:
		snap.WorkSessions = model.Failed
	case hydrate.KindFetchMeMetrics:
		snap.MeMetrics = model.Failed
	case hydrate.KindFetchOrgMetricsOverview:
		snap.OrgMetricsOverview = model.Failed
	case hydrate.KindFetchOrgMetricsProjectTasks:
		snap.OrgMetricsProjectTasks = model.Failed
	}
	return snap, data
}

// dropStale discards a response for a scope that is no longer current.
// The resource goes back to NotAsked so planning refetches it for the
// live scope instead of leaving it stuck in Loading.
func dropStale(snap hydrate.Snapshot, kind hydrate.CommandKind) hydrate.Snapshot {
	switch kind {
	case hydrate.KindFetchMembers:
		if snap.Members == model.Loading {
			snap.Members = model.NotAsked
			snap.MembersProjectID = model.OptInt{}
		}
	case hydrate.KindFetchTaskTypes:
		if snap.TaskTypes == model.Loading {
			snap.TaskTypes = model.NotAsked
			snap.TaskTypesProjectID = model.OptInt{}
		}
	case hydrate.KindFetchOrgMetricsProjectTasks:
		if snap.OrgMetricsProjectTasks == model.Loading {
			snap.OrgMetricsProjectTasks = model.NotAsked
			snap.OrgMetricsProjectID = model.OptInt{}
		}
	}
	return snap
}

// invalidate resets every Loaded resource to NotAsked after the data
// file changed on disk. In-flight fetches are left alone; their
// responses land and are then refetched on the next change if needed.
func invalidate(snap hydrate.Snapshot) hydrate.Snapshot {
	reset := func(s model.ResourceState) model.ResourceState {
		if s == model.Loaded {
			return model.NotAsked
		}
		return s
	}
	snap.Projects = reset(snap.Projects)
	snap.InviteLinks = reset(snap.InviteLinks)
	snap.Capabilities = reset(snap.Capabilities)
	snap.MeCapabilityIDs = reset(snap.MeCapabilityIDs)
	snap.OrgSettingsUsers = reset(snap.OrgSettingsUsers)
	snap.OrgUsersCache = reset(snap.OrgUsersCache)
	snap.Members = reset(snap.Members)
	snap.TaskTypes = reset(snap.TaskTypes)
	snap.MemberTasks = reset(snap.MemberTasks)
	snap.WorkSessions = reset(snap.WorkSessions)
	snap.MeMetrics = reset(snap.MeMetrics)
	snap.OrgMetricsOverview = reset(snap.OrgMetricsOverview)
	snap.OrgMetricsProjectTasks = reset(snap.OrgMetricsProjectTasks)
	return snap
}
