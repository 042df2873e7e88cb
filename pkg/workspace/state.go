// Package workspace models the load lifecycle of one selected project's
// working set. The state machine exists to make "ignore stale async results"
// a total-function contract instead of an ad hoc guard: a load result for a
// project the user has since navigated away from is silently dropped.
package workspace

import "github.com/crewdeck/crew/pkg/model"

// Phase is the coarse position in the load lifecycle.
type Phase int

const (
	// PhaseNone means no project is selected.
	PhaseNone Phase = iota
	// PhaseLoading means a working set is being assembled.
	PhaseLoading
	// PhaseReady means the working set is usable.
	PhaseReady
	// PhaseError means the load failed; the project stays selected.
	PhaseError
)

// String returns a human-readable label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "none"
	}
}

// State is the workspace lifecycle value. The zero value is "no project".
// All transitions are value-to-value; nothing is mutated in place.
type State struct {
	phase     Phase
	projectID int
	ws        model.Workspace
	errMsg    string
}

// None returns the no-project state.
func None() State {
	return State{}
}

// Phase returns the current lifecycle phase.
func (s State) Phase() Phase {
	return s.phase
}

// ProjectID returns the selected project, if any.
func (s State) ProjectID() (int, bool) {
	if s.phase == PhaseNone {
		return 0, false
	}
	return s.projectID, true
}

// Workspace returns the loaded working set while Ready.
func (s State) Workspace() (model.Workspace, bool) {
	if s.phase != PhaseReady {
		return model.Workspace{}, false
	}
	return s.ws, true
}

// Err returns the load failure message while in the error phase.
func (s State) Err() (string, bool) {
	if s.phase != PhaseError {
		return "", false
	}
	return s.errMsg, true
}

// SelectProject starts loading the given project. A newer selection always
// wins, whatever the current phase: any in-flight load for a previous
// selection becomes stale and its result will be dropped by Loaded.
func (s State) SelectProject(id int) State {
	return State{phase: PhaseLoading, projectID: id}
}

// Loaded installs a finished working set, but only if we are still loading
// that same project. Late arrivals for abandoned selections return the state
// unchanged.
func (s State) Loaded(ws model.Workspace) State {
	if s.phase != PhaseLoading || s.projectID != ws.ProjectID {
		return s
	}
	return State{phase: PhaseReady, projectID: ws.ProjectID, ws: ws}
}

// Failed records a load failure, but only while loading. Results for
// abandoned selections are dropped the same way Loaded drops them.
func (s State) Failed(msg string) State {
	if s.phase != PhaseLoading {
		return s
	}
	return State{phase: PhaseError, projectID: s.projectID, errMsg: msg}
}

// Clear deselects the project unconditionally.
func (s State) Clear() State {
	return State{}
}

// Update applies f to the working set while Ready; otherwise the state is
// returned unchanged.
func (s State) Update(f func(model.Workspace) model.Workspace) State {
	if s.phase != PhaseReady {
		return s
	}
	s.ws = f(s.ws)
	return s
}
