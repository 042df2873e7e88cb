package datasource

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/crewdeck/crew/pkg/model"
)

// jsonUser is the wire form of a user in a JSON snapshot.
type jsonUser struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// jsonMembership ties a user to a project with their capabilities there.
type jsonMembership struct {
	UserID        int   `json:"user_id"`
	ProjectID     int   `json:"project_id"`
	IsManager     bool  `json:"is_manager"`
	CapabilityIDs []int `json:"capability_ids,omitempty"`
}

// jsonTask carries the nullable scope references as pointers.
type jsonTask struct {
	ID           int        `json:"id"`
	ProjectID    int        `json:"project_id"`
	TypeID       *int       `json:"type_id,omitempty"`
	CapabilityID *int       `json:"capability_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	AssigneeIDs  []int      `json:"assignee_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// jsonSnapshot is the whole-org JSON file format.
type jsonSnapshot struct {
	// MeUserID marks the signed-in user; 0 means unauthenticated.
	MeUserID     int                 `json:"me_user_id,omitempty"`
	Users        []jsonUser          `json:"users"`
	Projects     []model.Project     `json:"projects"`
	Memberships  []jsonMembership    `json:"memberships"`
	Capabilities []model.Capability  `json:"capabilities,omitempty"`
	TaskTypes    []model.TaskType    `json:"task_types,omitempty"`
	Tasks        []jsonTask          `json:"tasks,omitempty"`
	WorkSessions []model.WorkSession `json:"work_sessions,omitempty"`
	InviteLinks  []model.InviteLink  `json:"invite_links,omitempty"`
}

// JSONStore serves org data from a JSON snapshot file held in memory.
type JSONStore struct {
	path string
	snap jsonSnapshot
}

// NewJSONStore reads and decodes a JSON snapshot file.
func NewJSONStore(path string) (*JSONStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap jsonSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}

	return &JSONStore{path: path, snap: snap}, nil
}

// Close is a no-op; the snapshot is held in memory.
func (s *JSONStore) Close() error { return nil }

func toUser(u jsonUser) model.User {
	return model.User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     model.ParseRole(u.Role),
		RoleName: u.Role,
	}
}

// Me returns the snapshot's signed-in user, or ErrUnauthenticated.
func (s *JSONStore) Me(ctx context.Context) (model.User, error) {
	if s.snap.MeUserID == 0 {
		return model.User{}, ErrUnauthenticated
	}
	for _, u := range s.snap.Users {
		if u.ID == s.snap.MeUserID {
			return toUser(u), nil
		}
	}
	return model.User{}, ErrUnauthenticated
}

// UserByEmail looks a user up by email for the login flow.
func (s *JSONStore) UserByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range s.snap.Users {
		if u.Email == email {
			return toUser(u), nil
		}
	}
	return model.User{}, ErrNotFound
}

// InviteByToken resolves a pending invite.
func (s *JSONStore) InviteByToken(ctx context.Context, token string) (model.InviteLink, error) {
	for _, inv := range s.snap.InviteLinks {
		if inv.Token == token {
			return inv, nil
		}
	}
	return model.InviteLink{}, ErrNotFound
}

// Projects lists the user's projects with manager flags from their
// memberships.
func (s *JSONStore) Projects(ctx context.Context, userID int) ([]model.Project, error) {
	manages := make(map[int]bool)
	member := make(map[int]bool)
	for _, m := range s.snap.Memberships {
		if m.UserID == userID {
			member[m.ProjectID] = true
			if m.IsManager {
				manages[m.ProjectID] = true
			}
		}
	}

	var projects []model.Project
	for _, p := range s.snap.Projects {
		if !member[p.ID] {
			continue
		}
		p.IsManager = manages[p.ID]
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *JSONStore) InviteLinks(ctx context.Context) ([]model.InviteLink, error) {
	return append([]model.InviteLink(nil), s.snap.InviteLinks...), nil
}

func (s *JSONStore) Capabilities(ctx context.Context) ([]model.Capability, error) {
	return append([]model.Capability(nil), s.snap.Capabilities...), nil
}

// UserCapabilityIDs returns the union of the user's capability ids
// across memberships.
func (s *JSONStore) UserCapabilityIDs(ctx context.Context, userID int) ([]int, error) {
	seen := make(map[int]bool)
	var ids []int
	for _, m := range s.snap.Memberships {
		if m.UserID != userID {
			continue
		}
		for _, id := range m.CapabilityIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (s *JSONStore) OrgUsers(ctx context.Context) ([]model.OrgUser, error) {
	var users []model.OrgUser
	for _, u := range s.snap.Users {
		users = append(users, model.OrgUser{
			ID:       u.ID,
			Name:     u.Name,
			RoleName: u.Role,
			Active:   u.Active,
		})
	}
	return users, nil
}

func (s *JSONStore) Members(ctx context.Context, projectID int) ([]model.Member, error) {
	names := make(map[int]string, len(s.snap.Users))
	for _, u := range s.snap.Users {
		names[u.ID] = u.Name
	}

	var members []model.Member
	for _, m := range s.snap.Memberships {
		if m.ProjectID != projectID {
			continue
		}
		members = append(members, model.Member{
			UserID:        m.UserID,
			ProjectID:     m.ProjectID,
			Name:          names[m.UserID],
			CapabilityIDs: m.CapabilityIDs,
		})
	}
	return members, nil
}

func (s *JSONStore) TaskTypes(ctx context.Context, projectID int) ([]model.TaskType, error) {
	var types []model.TaskType
	for _, tt := range s.snap.TaskTypes {
		if tt.ProjectID == projectID {
			types = append(types, tt)
		}
	}
	return types, nil
}

func toTask(t jsonTask) model.Task {
	task := model.Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      model.TaskStatus(t.Status),
		AssigneeIDs: t.AssigneeIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.TypeID != nil {
		task.TypeID = model.SomeInt(*t.TypeID)
	}
	if t.CapabilityID != nil {
		task.CapabilityID = model.SomeInt(*t.CapabilityID)
	}
	return task
}

func (s *JSONStore) Tasks(ctx context.Context, projectID int) ([]model.Task, error) {
	var tasks []model.Task
	for _, t := range s.snap.Tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, toTask(t))
		}
	}
	return tasks, nil
}

func (s *JSONStore) TasksForUser(ctx context.Context, userID int) ([]model.Task, error) {
	var tasks []model.Task
	for _, t := range s.snap.Tasks {
		for _, id := range t.AssigneeIDs {
			if id == userID {
				tasks = append(tasks, toTask(t))
				break
			}
		}
	}
	return tasks, nil
}

func (s *JSONStore) AllTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	for _, t := range s.snap.Tasks {
		tasks = append(tasks, toTask(t))
	}
	return tasks, nil
}

func (s *JSONStore) WorkSessions(ctx context.Context, userID int) ([]model.WorkSession, error) {
	var sessions []model.WorkSession
	for _, ws := range s.snap.WorkSessions {
		if ws.UserID == userID {
			sessions = append(sessions, ws)
		}
	}
	return sessions, nil
}

func (s *JSONStore) AllWorkSessions(ctx context.Context) ([]model.WorkSession, error) {
	return append([]model.WorkSession(nil), s.snap.WorkSessions...), nil
}
