package model

import "time"

// User is the signed-in identity ("me").
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"-"`
	// RoleName is the wire form of Role.
	RoleName string `json:"role"`
}

// Project is one project the user can see. IsManager reflects the user's
// per-project management status, which gates the project-scoped config pages.
type Project struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsManager bool   `json:"is_manager"`
	Archived  bool   `json:"archived,omitempty"`
}

// Capability is an org-wide skill tag that tasks can require and members can
// hold.
type Capability struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TaskType is a project-scoped task classification.
type TaskType struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
}

// TaskStatus is the kanban column a task sits in.
type TaskStatus string

const (
	TaskPool       TaskStatus = "pool"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Task is one unit of work on a project board.
type Task struct {
	ID           int        `json:"id"`
	ProjectID    int        `json:"project_id"`
	TypeID       OptInt     `json:"-"`
	CapabilityID OptInt     `json:"-"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       TaskStatus `json:"status"`
	AssigneeIDs  []int      `json:"assignee_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Member is a user's membership in one project, with the capabilities they
// bring to it.
type Member struct {
	UserID        int    `json:"user_id"`
	ProjectID     int    `json:"project_id"`
	Name          string `json:"name"`
	CapabilityIDs []int  `json:"capability_ids,omitempty"`
}

// WorkSession is one tracked span of work on a task.
type WorkSession struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	TaskID    int        `json:"task_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// InviteLink is a pending org invitation, visible to admins only.
type InviteLink struct {
	ID        int       `json:"id"`
	Token     string    `json:"token"`
	RoleName  string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// OrgUser is one row of the org-wide user cache used by the assignments and
// settings pages.
type OrgUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	RoleName string `json:"role"`
	Active   bool   `json:"active"`
}

// MeMetrics summarizes the signed-in user's own activity.
type MeMetrics struct {
	TasksDone       int     `json:"tasks_done"`
	TasksInProgress int     `json:"tasks_in_progress"`
	HoursThisWeek   float64 `json:"hours_this_week"`
	MeanSessionMins float64 `json:"mean_session_mins"`
}

// ProjectStat is one project's row in the org metrics overview.
type ProjectStat struct {
	ProjectID   int     `json:"project_id"`
	Name        string  `json:"name"`
	OpenTasks   int     `json:"open_tasks"`
	DoneTasks   int     `json:"done_tasks"`
	TotalHours  float64 `json:"total_hours"`
	MedianHours float64 `json:"median_hours"`
}

// OrgOverview is the org-wide metrics payload.
type OrgOverview struct {
	Projects    []ProjectStat `json:"projects"`
	ActiveUsers int           `json:"active_users"`
}

// ProjectTaskStats is the per-project task metrics drill-down.
type ProjectTaskStats struct {
	ProjectID    int     `json:"project_id"`
	ByStatus     map[TaskStatus]int
	MeanAgeDays  float64 `json:"mean_age_days"`
	P90AgeDays   float64 `json:"p90_age_days"`
	UnassignedN  int     `json:"unassigned"`
	WithoutTypeN int     `json:"without_type"`
}

// Workspace bundles one project's working set as a single atomically-swapped
// value. Higher layers replace it wholesale rather than mutating pieces.
type Workspace struct {
	ProjectID    int
	Tasks        []Task
	Members      []Member
	Capabilities []Capability
	TaskTypes    []TaskType
}
