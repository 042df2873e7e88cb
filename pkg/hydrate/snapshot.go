package hydrate

import "github.com/crewdeck/crew/pkg/model"

// Snapshot is the sole input to planning besides the route: auth state, one
// ResourceState per cacheable resource, and the scope ids project-scoped
// caches currently reflect. It is an immutable value replaced wholesale on
// every model update, never mutated in place.
type Snapshot struct {
	Auth model.AuthState

	// ProjectList is the Projects payload. Valid only while Projects is
	// Loaded, as is IsAnyProjectManager.
	ProjectList         []model.Project
	IsAnyProjectManager bool

	Projects               model.ResourceState
	InviteLinks            model.ResourceState
	Capabilities           model.ResourceState
	MeCapabilityIDs        model.ResourceState
	OrgSettingsUsers       model.ResourceState
	OrgUsersCache          model.ResourceState
	Members                model.ResourceState
	TaskTypes              model.ResourceState
	MemberTasks            model.ResourceState
	WorkSessions           model.ResourceState
	MeMetrics              model.ResourceState
	OrgMetricsOverview     model.ResourceState
	OrgMetricsProjectTasks model.ResourceState

	// Scope ids: the project each project-scoped cache currently reflects.
	// Absent when the cache has never loaded. Lets the planner tell "cache
	// is for a different project" apart from "cache is missing".
	MembersProjectID    model.OptInt
	TaskTypesProjectID  model.OptInt
	OrgMetricsProjectID model.OptInt
}
