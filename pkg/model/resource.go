// Package model defines the shared domain values for crew: users, projects,
// tasks, and the small state enums the rest of the application reasons about.
package model

// ResourceState describes the lifecycle of one cached server resource.
//
// Only Loading may transition to Loaded or Failed; only NotAsked and Failed
// are eligible for a new fetch. The runtime is expected to flip a resource to
// Loading before issuing the request, so a re-entrant planning pass never
// requests the same resource twice.
type ResourceState int

const (
	// NotAsked means the resource has never been requested.
	NotAsked ResourceState = iota
	// Loading means a request is in flight.
	Loading
	// Loaded means the cache holds a usable payload.
	Loaded
	// Failed means the last request errored; the resource is fetchable again.
	Failed
)

// String returns a human-readable label for the state.
func (s ResourceState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not-asked"
	}
}

// NeedsFetch reports whether a fresh fetch should be issued for a shared
// (non project-scoped) resource. Loading reads as "do nothing".
func (s ResourceState) NeedsFetch() bool {
	return s == NotAsked || s == Failed
}

// NeedsProjectFetch reports whether a project-scoped resource should be
// fetched for the target project. A Loaded cache only counts as a hit when
// its scope id matches the target; a cache for a different project is stale,
// not missing. With no target project there is nothing to fetch.
func NeedsProjectFetch(s ResourceState, cached, target OptInt) bool {
	if !target.OK {
		return false
	}
	switch s {
	case Loading:
		return false
	case Loaded:
		return !(cached.OK && cached.Value == target.Value)
	default:
		return true
	}
}

// Role is the org-wide role carried by an authenticated user.
type Role int

const (
	// RoleMember is a regular org member.
	RoleMember Role = iota
	// RoleAdmin is an org administrator.
	RoleAdmin
)

// String returns the wire name of the role.
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "member"
}

// ParseRole maps a wire name to a Role, defaulting to RoleMember.
func ParseRole(raw string) Role {
	if raw == "admin" {
		return RoleAdmin
	}
	return RoleMember
}

// AuthPhase is the identity-resolution phase of the session.
type AuthPhase int

const (
	// AuthUnknown means the identity probe has not completed yet.
	AuthUnknown AuthPhase = iota
	// AuthUnauthed means the probe completed and nobody is signed in.
	AuthUnauthed
	// AuthAuthed means a user is signed in.
	AuthAuthed
)

// AuthState bundles the auth phase with the authenticated role. Role is only
// meaningful while Phase is AuthAuthed. AuthUnknown is the sole state before
// the identity probe lands; it is re-checked on full reload, not mid-session.
type AuthState struct {
	Phase AuthPhase
	Role  Role
}

// Authed returns the state for a signed-in user with the given role.
func Authed(role Role) AuthState {
	return AuthState{Phase: AuthAuthed, Role: role}
}

// Unauthed returns the signed-out state.
func Unauthed() AuthState {
	return AuthState{Phase: AuthUnauthed}
}
