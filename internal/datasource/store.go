// Package datasource provides read access to the org data backing the
// client: who is signed in, projects, tasks, members, sessions. Two
// backends exist, a SQLite database and a JSON snapshot file, selected
// by discovery over the data directory.
package datasource

import (
	"context"
	"errors"

	"github.com/crewdeck/crew/pkg/model"
)

// Common errors.
var (
	ErrUnauthenticated = errors.New("no signed-in user")
	ErrNotFound        = errors.New("not found")
)

// Store is the read surface of one org data backend. Every fetch the
// hydration planner can emit maps onto one of these reads.
type Store interface {
	// Me returns the signed-in user, or ErrUnauthenticated.
	Me(ctx context.Context) (model.User, error)
	// UserByEmail looks a user up for the login flow.
	UserByEmail(ctx context.Context, email string) (model.User, error)
	// InviteByToken resolves a pending invite, or ErrNotFound.
	InviteByToken(ctx context.Context, token string) (model.InviteLink, error)

	// Projects lists the user's projects with their manager flags.
	Projects(ctx context.Context, userID int) ([]model.Project, error)
	InviteLinks(ctx context.Context) ([]model.InviteLink, error)
	Capabilities(ctx context.Context) ([]model.Capability, error)
	// UserCapabilityIDs returns the capability ids the user holds.
	UserCapabilityIDs(ctx context.Context, userID int) ([]int, error)
	OrgUsers(ctx context.Context) ([]model.OrgUser, error)

	Members(ctx context.Context, projectID int) ([]model.Member, error)
	TaskTypes(ctx context.Context, projectID int) ([]model.TaskType, error)
	Tasks(ctx context.Context, projectID int) ([]model.Task, error)
	// TasksForUser returns tasks assigned to the user across projects.
	TasksForUser(ctx context.Context, userID int) ([]model.Task, error)
	AllTasks(ctx context.Context) ([]model.Task, error)

	WorkSessions(ctx context.Context, userID int) ([]model.WorkSession, error)
	AllWorkSessions(ctx context.Context) ([]model.WorkSession, error)

	Close() error
}
