package nav

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/crewdeck/crew/pkg/model"
)

// Context scopes which query keys a page family accepts and how its state
// serializes back to a query string.
type Context int

const (
	// ContextMember is the member area: project, view (member vocabulary),
	// type, cap, search, and card are all accepted.
	ContextMember Context = iota
	// ContextConfig is the project config area: only project is accepted.
	ContextConfig
	// ContextOrg is the org admin area: no keys are accepted.
	ContextOrg
	// ContextOrgAssignments is the org assignments page: only view, from the
	// assignments vocabulary.
	ContextOrgAssignments
)

// QueryErrorKind classifies one defect found while parsing a query string.
type QueryErrorKind int

const (
	// ErrInvalidProject means the project value was not an integer.
	ErrInvalidProject QueryErrorKind = iota
	// ErrInvalidView means the view token matched neither vocabulary.
	ErrInvalidView
	// ErrInvalidType means the type value was not an integer.
	ErrInvalidType
	// ErrInvalidCapability means the cap value was not an integer.
	ErrInvalidCapability
	// ErrInvalidCard means the card value was not an integer.
	ErrInvalidCard
	// ErrUnexpectedParam means the key is unknown, or known but not allowed
	// in this context.
	ErrUnexpectedParam
)

// QueryError describes one defect in a query string. Errors are collected,
// never thrown; their only effect is forcing URL canonicalization.
type QueryError struct {
	Kind QueryErrorKind
	// Raw is the offending raw value, or the key name for ErrUnexpectedParam.
	Raw string
}

// String returns a short diagnostic form, e.g. `invalid-cap("abc")`.
func (e QueryError) String() string {
	var name string
	switch e.Kind {
	case ErrInvalidProject:
		name = "invalid-project"
	case ErrInvalidView:
		name = "invalid-view"
	case ErrInvalidType:
		name = "invalid-type"
	case ErrInvalidCapability:
		name = "invalid-cap"
	case ErrInvalidCard:
		name = "invalid-card"
	default:
		name = "unexpected-param"
	}
	return name + "(" + strconv.Quote(e.Raw) + ")"
}

// Result is the outcome of parsing a query string. State is always usable:
// invalid fields are simply left absent. A non-empty Errors list means the
// URL was not canonical and the caller should replace-history it with the
// serialized State.
type Result struct {
	State  State
	Errors []QueryError
}

// Canonical reports whether the parsed URL was already canonical. When false
// the caller must canonicalize the address bar; rendering proceeds either way.
func (r Result) Canonical() bool {
	return len(r.Errors) == 0
}

// Parse parses the query portion of a URI (anything after the first '?',
// fragment stripped) under the given context.
func Parse(uri string, ctx Context) Result {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		uri = uri[:i]
	}
	query := ""
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		query = uri[i+1:]
	}
	return ParseQuery(query, ctx)
}

// ParseQuery parses a raw query string (no leading '?') under the given
// context. Field errors are accumulated, never short-circuited: a bad value
// leaves its field absent and parsing continues with the rest.
func ParseQuery(query string, ctx Context) Result {
	var (
		s    State
		errs []QueryError
	)

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, rawVal, _ := strings.Cut(pair, "=")
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			// Decoding never fails the parse; fall back to the raw bytes.
			val = rawVal
		}
		switch key {
		case "project":
			if id, err := strconv.Atoi(val); err == nil {
				s = s.WithProject(id)
			} else {
				errs = append(errs, QueryError{ErrInvalidProject, val})
			}
		case "view":
			if v, ok := parseMemberView(val); ok {
				s = s.WithView(v)
			} else if av, ok := parseAssignmentsView(val); ok {
				s = s.WithAssignmentsView(av)
			} else {
				errs = append(errs, QueryError{ErrInvalidView, val})
			}
		case "type":
			if id, err := strconv.Atoi(val); err == nil {
				s = s.WithTypeFilter(id)
			} else {
				errs = append(errs, QueryError{ErrInvalidType, val})
			}
		case "cap":
			if id, err := strconv.Atoi(val); err == nil {
				s = s.WithCapabilityFilter(id)
			} else {
				errs = append(errs, QueryError{ErrInvalidCapability, val})
			}
		case "search":
			s = s.WithSearch(val)
		case "card":
			if id, err := strconv.Atoi(val); err == nil {
				s = s.WithExpandedCard(id)
			} else {
				errs = append(errs, QueryError{ErrInvalidCard, val})
			}
		default:
			errs = append(errs, QueryError{ErrUnexpectedParam, key})
		}
	}

	s, errs = applyContext(ctx, s, errs)
	return Result{State: s, Errors: errs}
}

// applyContext strips fields the context disallows, recording one
// unexpected-param error per violation. This is where the invariant "a state
// parsed for Config never carries views or filters" is enforced.
func applyContext(ctx Context, s State, errs []QueryError) (State, []QueryError) {
	forbid := func(key string, present bool, clear func()) {
		if present {
			errs = append(errs, QueryError{ErrUnexpectedParam, key})
			clear()
		}
	}

	switch ctx {
	case ContextMember:
		forbid("view", s.view.kind == viewAssignments, func() { s = s.WithoutView() })
	case ContextConfig:
		forbid("view", s.view.kind != viewNone, func() { s = s.WithoutView() })
		forbid("type", s.typeFilter.OK, func() { s.typeFilter = model.OptInt{} })
		forbid("cap", s.capFilter.OK, func() { s.capFilter = model.OptInt{} })
		forbid("search", s.search.OK, func() { s.search = model.OptString{} })
		forbid("card", s.card.OK, func() { s.card = model.OptInt{} })
	case ContextOrgAssignments:
		forbid("project", s.project.OK, func() { s = s.WithoutProject() })
		forbid("view", s.view.kind == viewMember, func() { s = s.WithoutView() })
		forbid("type", s.typeFilter.OK, func() { s.typeFilter = model.OptInt{} })
		forbid("cap", s.capFilter.OK, func() { s.capFilter = model.OptInt{} })
		forbid("search", s.search.OK, func() { s.search = model.OptString{} })
		forbid("card", s.card.OK, func() { s.card = model.OptInt{} })
	case ContextOrg:
		forbid("project", s.project.OK, func() { s = s.WithoutProject() })
		forbid("view", s.view.kind != viewNone, func() { s = s.WithoutView() })
		forbid("type", s.typeFilter.OK, func() { s.typeFilter = model.OptInt{} })
		forbid("cap", s.capFilter.OK, func() { s.capFilter = model.OptInt{} })
		forbid("search", s.search.OK, func() { s.search = model.OptString{} })
		forbid("card", s.card.OK, func() { s.card = model.OptInt{} })
	}
	return s, errs
}

// QueryStringFor serializes the state under a context, emitting only the keys
// the context permits, in the fixed order project, view, type, cap, search,
// card. Absent fields are omitted; search values are percent-encoded.
func QueryStringFor(ctx Context, s State) string {
	var parts []string
	add := func(key, val string) {
		parts = append(parts, key+"="+val)
	}

	if ctx == ContextMember || ctx == ContextConfig {
		if s.project.OK {
			add("project", strconv.Itoa(s.project.Value))
		}
	}
	switch ctx {
	case ContextMember:
		if s.view.kind == viewMember {
			add("view", s.view.member.Token())
		}
	case ContextOrgAssignments:
		if s.view.kind == viewAssignments {
			add("view", s.view.assignments.Token())
		}
	}
	if ctx == ContextMember {
		if s.typeFilter.OK {
			add("type", strconv.Itoa(s.typeFilter.Value))
		}
		if s.capFilter.OK {
			add("cap", strconv.Itoa(s.capFilter.Value))
		}
		if s.search.OK {
			add("search", url.QueryEscape(s.search.Value))
		}
		if s.card.OK {
			add("card", strconv.Itoa(s.card.Value))
		}
	}
	return strings.Join(parts, "&")
}

// AppURL renders the member-area URL for a state: "/app" with a query string
// appended only when one exists.
func AppURL(s State) string {
	q := QueryStringFor(ContextMember, s)
	if q == "" {
		return "/app"
	}
	return "/app?" + q
}
