package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/crewdeck/crew/pkg/model"
)

// SQLiteStore reads org data from a crew SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens a SQLite database for reading.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Open in read-only mode with pragmas tuned for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		// Non-fatal on error
		db.Exec(pragma)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.RoleName); err != nil {
		return model.User{}, err
	}
	u.Role = model.ParseRole(u.RoleName)
	return u, nil
}

// Me returns the user marked signed_in in the database.
func (s *SQLiteStore) Me(ctx context.Context) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE signed_in = 1 LIMIT 1`)
	u, err := s.scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, fmt.Errorf("loading signed-in user: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up by email for the login flow.
func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE email = ?`, email)
	u, err := s.scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("loading user %s: %w", email, err)
	}
	return u, nil
}

// InviteByToken resolves a pending invite.
func (s *SQLiteStore) InviteByToken(ctx context.Context, token string) (model.InviteLink, error) {
	var inv model.InviteLink
	var createdAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, role, created_at FROM invite_links WHERE token = ?`, token).
		Scan(&inv.ID, &inv.Token, &inv.RoleName, &createdAt)
	if err == sql.ErrNoRows {
		return model.InviteLink{}, ErrNotFound
	}
	if err != nil {
		return model.InviteLink{}, fmt.Errorf("loading invite: %w", err)
	}
	if createdAt.Valid {
		inv.CreatedAt = createdAt.Time
	}
	return inv, nil
}

// Projects lists the user's projects with per-project manager flags.
func (s *SQLiteStore) Projects(ctx context.Context, userID int) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, m.is_manager, p.archived
		FROM projects p
		JOIN memberships m ON m.project_id = p.id
		WHERE m.user_id = ?
		ORDER BY p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.IsManager, &p.Archived); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// InviteLinks lists pending invites.
func (s *SQLiteStore) InviteLinks(ctx context.Context) ([]model.InviteLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, token, role, created_at FROM invite_links ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying invite links: %w", err)
	}
	defer rows.Close()

	var invites []model.InviteLink
	for rows.Next() {
		var inv model.InviteLink
		var createdAt sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.Token, &inv.RoleName, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			inv.CreatedAt = createdAt.Time
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// Capabilities lists the org capability catalog.
func (s *SQLiteStore) Capabilities(ctx context.Context) ([]model.Capability, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM capabilities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying capabilities: %w", err)
	}
	defer rows.Close()

	var caps []model.Capability
	for rows.Next() {
		var c model.Capability
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

// UserCapabilityIDs returns the union of the user's capability ids
// across all memberships.
func (s *SQLiteStore) UserCapabilityIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT capability_ids FROM memberships WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user capabilities: %w", err)
	}
	defer rows.Close()

	seen := make(map[int]bool)
	var ids []int
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, id := range parseJSONIntArray(raw.String) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, rows.Err()
}

// OrgUsers lists every user in the org.
func (s *SQLiteStore) OrgUsers(ctx context.Context) ([]model.OrgUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, active FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying org users: %w", err)
	}
	defer rows.Close()

	var users []model.OrgUser
	for rows.Next() {
		var u model.OrgUser
		if err := rows.Scan(&u.ID, &u.Name, &u.RoleName, &u.Active); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Members lists one project's membership with capability ids.
func (s *SQLiteStore) Members(ctx context.Context, projectID int) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.user_id, m.project_id, u.name, m.capability_ids
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = ?
		ORDER BY m.user_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		var capsJSON sql.NullString
		if err := rows.Scan(&m.UserID, &m.ProjectID, &m.Name, &capsJSON); err != nil {
			return nil, err
		}
		m.CapabilityIDs = parseJSONIntArray(capsJSON.String)
		members = append(members, m)
	}
	return members, rows.Err()
}

// TaskTypes lists one project's task types.
func (s *SQLiteStore) TaskTypes(ctx context.Context, projectID int) ([]model.TaskType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name FROM task_types WHERE project_id = ? ORDER BY id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("querying task types: %w", err)
	}
	defer rows.Close()

	var types []model.TaskType
	for rows.Next() {
		var tt model.TaskType
		if err := rows.Scan(&tt.ID, &tt.ProjectID, &tt.Name); err != nil {
			return nil, err
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

const taskColumns = `id, project_id, type_id, capability_id, title,
	description, status, assignee_ids, created_at, updated_at`

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var typeID, capID sql.NullInt64
		var description, assigneesJSON sql.NullString
		var createdAt, updatedAt sql.NullTime
		var status string

		err := rows.Scan(&t.ID, &t.ProjectID, &typeID, &capID, &t.Title,
			&description, &status, &assigneesJSON, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		if typeID.Valid {
			t.TypeID = model.SomeInt(int(typeID.Int64))
		}
		if capID.Valid {
			t.CapabilityID = model.SomeInt(int(capID.Int64))
		}
		if description.Valid {
			t.Description = description.String
		}
		t.Status = model.TaskStatus(status)
		t.AssigneeIDs = parseJSONIntArray(assigneesJSON.String)
		if createdAt.Valid {
			t.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			t.UpdatedAt = updatedAt.Time
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Tasks lists one project's tasks.
func (s *SQLiteStore) Tasks(ctx context.Context, projectID int) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// TasksForUser lists tasks assigned to the user across all projects.
// Assignees are a JSON array column, so filtering happens in Go.
func (s *SQLiteStore) TasksForUser(ctx context.Context, userID int) ([]model.Task, error) {
	all, err := s.AllTasks(ctx)
	if err != nil {
		return nil, err
	}
	var mine []model.Task
	for _, t := range all {
		for _, id := range t.AssigneeIDs {
			if id == userID {
				mine = append(mine, t)
				break
			}
		}
	}
	return mine, nil
}

// AllTasks lists every task in the org.
func (s *SQLiteStore) AllTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanSessions(rows *sql.Rows) ([]model.WorkSession, error) {
	var sessions []model.WorkSession
	for rows.Next() {
		var ws model.WorkSession
		var started, ended sql.NullTime
		if err := rows.Scan(&ws.ID, &ws.UserID, &ws.TaskID, &started, &ended); err != nil {
			return nil, err
		}
		if started.Valid {
			ws.StartedAt = started.Time
		}
		if ended.Valid {
			t := ended.Time
			ws.EndedAt = &t
		}
		sessions = append(sessions, ws)
	}
	return sessions, rows.Err()
}

// WorkSessions lists the user's tracked work sessions.
func (s *SQLiteStore) WorkSessions(ctx context.Context, userID int) ([]model.WorkSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, task_id, started_at, ended_at
		 FROM work_sessions WHERE user_id = ? ORDER BY started_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying work sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// AllWorkSessions lists every work session in the org.
func (s *SQLiteStore) AllWorkSessions(ctx context.Context) ([]model.WorkSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, task_id, started_at, ended_at
		 FROM work_sessions ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("querying work sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// LastModified returns the most recent task update time, used by
// discovery to rank sources.
func (s *SQLiteStore) LastModified(ctx context.Context) (time.Time, error) {
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM tasks`).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}

// parseJSONIntArray parses a JSON array of ints, tolerating the loose
// forms fixtures sometimes carry.
func parseJSONIntArray(s string) []int {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}

	var result []int
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil
	}
	return result
}
