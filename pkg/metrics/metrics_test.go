package metrics_test

import (
	"math"
	"testing"
	"time"

	"github.com/crewdeck/crew/pkg/metrics"
	"github.com/crewdeck/crew/pkg/model"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func session(userID, taskID int, start time.Time, dur time.Duration) model.WorkSession {
	end := start.Add(dur)
	return model.WorkSession{UserID: userID, TaskID: taskID, StartedAt: start, EndedAt: &end}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestComputeMe(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Status: model.TaskDone, AssigneeIDs: []int{7}},
		{ID: 2, Status: model.TaskDone, AssigneeIDs: []int{8}},
		{ID: 3, Status: model.TaskInProgress, AssigneeIDs: []int{7, 8}},
		{ID: 4, Status: model.TaskPool, AssigneeIDs: []int{7}},
	}
	sessions := []model.WorkSession{
		session(7, 1, now.Add(-2*time.Hour), time.Hour),
		session(7, 3, now.Add(-30*24*time.Hour), 3*time.Hour),
		session(8, 2, now.Add(-time.Hour), time.Hour),
	}

	m := metrics.ComputeMe(7, tasks, sessions, now)

	if m.TasksDone != 1 {
		t.Errorf("TasksDone = %d, want 1", m.TasksDone)
	}
	if m.TasksInProgress != 1 {
		t.Errorf("TasksInProgress = %d, want 1", m.TasksInProgress)
	}
	// Only the recent session falls in the last week.
	if !approx(m.HoursThisWeek, 1) {
		t.Errorf("HoursThisWeek = %v, want 1", m.HoursThisWeek)
	}
	// Mean over both of the user's sessions: (60 + 180) / 2.
	if !approx(m.MeanSessionMins, 120) {
		t.Errorf("MeanSessionMins = %v, want 120", m.MeanSessionMins)
	}
}

func TestComputeMeOpenSession(t *testing.T) {
	sessions := []model.WorkSession{
		{UserID: 7, TaskID: 1, StartedAt: now.Add(-90 * time.Minute)},
	}
	m := metrics.ComputeMe(7, nil, sessions, now)
	if !approx(m.HoursThisWeek, 1.5) {
		t.Errorf("open session hours = %v, want 1.5", m.HoursThisWeek)
	}
}

func TestComputeMeEmpty(t *testing.T) {
	m := metrics.ComputeMe(7, nil, nil, now)
	if m != (model.MeMetrics{}) {
		t.Errorf("empty input should yield zero metrics, got %+v", m)
	}
}

func TestComputeOverview(t *testing.T) {
	projects := []model.Project{
		{ID: 1, Name: "alpha"},
		{ID: 2, Name: "beta"},
	}
	tasks := []model.Task{
		{ID: 10, ProjectID: 1, Status: model.TaskDone},
		{ID: 11, ProjectID: 1, Status: model.TaskPool},
		{ID: 12, ProjectID: 1, Status: model.TaskInProgress},
		{ID: 20, ProjectID: 2, Status: model.TaskPool},
	}
	sessions := []model.WorkSession{
		session(7, 10, now.Add(-10*time.Hour), 2*time.Hour),
		session(8, 11, now.Add(-5*time.Hour), 4*time.Hour),
		// Session on an unknown task is ignored.
		session(8, 99, now.Add(-5*time.Hour), 8*time.Hour),
	}
	users := []model.OrgUser{
		{ID: 7, Active: true},
		{ID: 8, Active: true},
		{ID: 9, Active: false},
	}

	ov := metrics.ComputeOverview(projects, tasks, sessions, users, now)

	if len(ov.Projects) != 2 {
		t.Fatalf("got %d project rows, want 2", len(ov.Projects))
	}
	alpha := ov.Projects[0]
	if alpha.OpenTasks != 2 || alpha.DoneTasks != 1 {
		t.Errorf("alpha tasks = open %d done %d, want 2/1", alpha.OpenTasks, alpha.DoneTasks)
	}
	if !approx(alpha.TotalHours, 6) {
		t.Errorf("alpha TotalHours = %v, want 6", alpha.TotalHours)
	}
	beta := ov.Projects[1]
	if beta.OpenTasks != 1 || beta.TotalHours != 0 {
		t.Errorf("beta = %+v", beta)
	}
	if ov.ActiveUsers != 2 {
		t.Errorf("ActiveUsers = %d, want 2", ov.ActiveUsers)
	}
}

func TestComputeProjectTasks(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, ProjectID: 1, Status: model.TaskPool, CreatedAt: now.AddDate(0, 0, -10)},
		{ID: 2, ProjectID: 1, Status: model.TaskDone, TypeID: model.SomeInt(3),
			AssigneeIDs: []int{7}, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: 3, ProjectID: 2, Status: model.TaskPool, CreatedAt: now.AddDate(0, 0, -100)},
	}

	st := metrics.ComputeProjectTasks(1, tasks, now)

	if st.ProjectID != 1 {
		t.Errorf("ProjectID = %d", st.ProjectID)
	}
	if st.ByStatus[model.TaskPool] != 1 || st.ByStatus[model.TaskDone] != 1 {
		t.Errorf("ByStatus = %v", st.ByStatus)
	}
	if st.UnassignedN != 1 {
		t.Errorf("UnassignedN = %d, want 1", st.UnassignedN)
	}
	if st.WithoutTypeN != 1 {
		t.Errorf("WithoutTypeN = %d, want 1", st.WithoutTypeN)
	}
	if !approx(st.MeanAgeDays, 6) {
		t.Errorf("MeanAgeDays = %v, want 6", st.MeanAgeDays)
	}
}

func TestComputeProjectTasksEmpty(t *testing.T) {
	st := metrics.ComputeProjectTasks(1, nil, now)
	if len(st.ByStatus) != 0 || st.MeanAgeDays != 0 || st.P90AgeDays != 0 {
		t.Errorf("empty project stats = %+v", st)
	}
}
