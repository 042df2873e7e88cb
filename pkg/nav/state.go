// Package nav implements crew's navigation core: the URL query codec, the
// validated navigation state, and the closed route set. Everything here is a
// pure value transformation; no I/O, no globals.
package nav

import "github.com/crewdeck/crew/pkg/model"

// MemberViewMode selects how the member area renders its tasks.
type MemberViewMode int

const (
	// ViewPool is the default unclaimed-task pool.
	ViewPool MemberViewMode = iota
	// ViewList is a flat task list.
	ViewList
	// ViewCards is the kanban card board.
	ViewCards
	// ViewPeople groups tasks by assignee.
	ViewPeople
)

// Token returns the query-string token for the mode.
func (v MemberViewMode) Token() string {
	switch v {
	case ViewList:
		return "list"
	case ViewCards:
		return "cards"
	case ViewPeople:
		return "people"
	default:
		return "pool"
	}
}

func parseMemberView(tok string) (MemberViewMode, bool) {
	switch tok {
	case "pool":
		return ViewPool, true
	case "list":
		return ViewList, true
	case "cards":
		return ViewCards, true
	case "people":
		return ViewPeople, true
	}
	return ViewPool, false
}

// AssignmentsViewMode selects how the assignments page groups its rows.
type AssignmentsViewMode int

const (
	// ByProject groups assignments under their project.
	ByProject AssignmentsViewMode = iota
	// ByPerson groups assignments under the assigned user.
	ByPerson
	// ByCapability groups assignments under the required capability.
	ByCapability
)

// Token returns the query-string token for the mode.
func (v AssignmentsViewMode) Token() string {
	switch v {
	case ByPerson:
		return "by-person"
	case ByCapability:
		return "by-capability"
	default:
		return "by-project"
	}
}

func parseAssignmentsView(tok string) (AssignmentsViewMode, bool) {
	switch tok {
	case "by-project":
		return ByProject, true
	case "by-person":
		return ByPerson, true
	case "by-capability":
		return ByCapability, true
	}
	return ByProject, false
}

// viewKind discriminates which of the two disjoint view vocabularies a parsed
// view value came from. viewNone means the URL carried no (valid) view.
type viewKind int

const (
	viewNone viewKind = iota
	viewMember
	viewAssignments
)

type viewParam struct {
	kind        viewKind
	member      MemberViewMode
	assignments AssignmentsViewMode
}

// State is a validated, context-scoped navigation state. It is opaque:
// construct one with Empty, Parse, or the With* builders, never by field
// assignment. All builders return a new value; State is comparable, so two
// states built the same way compare equal with ==.
type State struct {
	project    model.OptInt
	view       viewParam
	typeFilter model.OptInt
	capFilter  model.OptInt
	search     model.OptString
	card       model.OptInt
}

// Empty returns the state with nothing populated.
func Empty() State {
	return State{}
}

// WithProject returns a copy with the selected project set.
func (s State) WithProject(id int) State {
	s.project = model.SomeInt(id)
	return s
}

// WithoutProject returns a copy with no project selected.
func (s State) WithoutProject() State {
	s.project = model.OptInt{}
	return s
}

// WithView returns a copy carrying a member view.
func (s State) WithView(v MemberViewMode) State {
	s.view = viewParam{kind: viewMember, member: v}
	return s
}

// WithAssignmentsView returns a copy carrying an assignments view.
func (s State) WithAssignmentsView(v AssignmentsViewMode) State {
	s.view = viewParam{kind: viewAssignments, assignments: v}
	return s
}

// WithoutView returns a copy with no explicit view.
func (s State) WithoutView() State {
	s.view = viewParam{}
	return s
}

// WithTypeFilter returns a copy filtered to one task type.
func (s State) WithTypeFilter(id int) State {
	s.typeFilter = model.SomeInt(id)
	return s
}

// WithCapabilityFilter returns a copy filtered to one capability.
func (s State) WithCapabilityFilter(id int) State {
	s.capFilter = model.SomeInt(id)
	return s
}

// WithSearch returns a copy with a search term.
func (s State) WithSearch(term string) State {
	s.search = model.SomeString(term)
	return s
}

// WithExpandedCard returns a copy with one card expanded.
func (s State) WithExpandedCard(id int) State {
	s.card = model.SomeInt(id)
	return s
}

// ClearFilters returns a copy with the type, capability, and search filters
// dropped. The expanded card and view survive.
func (s State) ClearFilters() State {
	s.typeFilter = model.OptInt{}
	s.capFilter = model.OptInt{}
	s.search = model.OptString{}
	return s
}

// Project returns the selected project id, if any.
func (s State) Project() (int, bool) {
	return s.project.Value, s.project.OK
}

// View returns the member view, defaulting to ViewPool when the URL carried
// none (or carried an assignments view).
func (s State) View() MemberViewMode {
	if s.view.kind == viewMember {
		return s.view.member
	}
	return ViewPool
}

// AssignmentsView returns the assignments view, defaulting to ByProject.
func (s State) AssignmentsView() AssignmentsViewMode {
	if s.view.kind == viewAssignments {
		return s.view.assignments
	}
	return ByProject
}

// TypeFilter returns the task-type filter, if any.
func (s State) TypeFilter() (int, bool) {
	return s.typeFilter.Value, s.typeFilter.OK
}

// CapabilityFilter returns the capability filter, if any.
func (s State) CapabilityFilter() (int, bool) {
	return s.capFilter.Value, s.capFilter.OK
}

// Search returns the search term, if any.
func (s State) Search() (string, bool) {
	return s.search.Value, s.search.OK
}

// ExpandedCard returns the expanded card id, if any.
func (s State) ExpandedCard() (int, bool) {
	return s.card.Value, s.card.OK
}
