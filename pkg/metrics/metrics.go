// Package metrics computes the activity summaries shown on the metrics
// pages: the signed-in user's own numbers, the org-wide project
// overview, and the per-project task drill-down.
package metrics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/crewdeck/crew/pkg/model"
)

// sessionHours returns the duration of a session in hours. Open
// sessions are measured up to now.
func sessionHours(s model.WorkSession, now time.Time) float64 {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt).Hours()
}

// ComputeMe summarizes the given user's tasks and work sessions.
func ComputeMe(userID int, tasks []model.Task, sessions []model.WorkSession, now time.Time) model.MeMetrics {
	var m model.MeMetrics

	for _, t := range tasks {
		if !assignedTo(t, userID) {
			continue
		}
		switch t.Status {
		case model.TaskDone:
			m.TasksDone++
		case model.TaskInProgress:
			m.TasksInProgress++
		}
	}

	weekStart := now.AddDate(0, 0, -7)
	var mins []float64
	for _, s := range sessions {
		if s.UserID != userID {
			continue
		}
		h := sessionHours(s, now)
		mins = append(mins, h*60)
		if s.StartedAt.After(weekStart) {
			m.HoursThisWeek += h
		}
	}
	if len(mins) > 0 {
		m.MeanSessionMins = stat.Mean(mins, nil)
	}

	return m
}

func assignedTo(t model.Task, userID int) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ComputeOverview builds the org-wide per-project stats table. Hours
// are attributed to the project owning each session's task.
func ComputeOverview(projects []model.Project, tasks []model.Task, sessions []model.WorkSession, users []model.OrgUser, now time.Time) model.OrgOverview {
	taskProject := make(map[int]int, len(tasks))
	openByProject := make(map[int]int)
	doneByProject := make(map[int]int)
	for _, t := range tasks {
		taskProject[t.ID] = t.ProjectID
		if t.Status == model.TaskDone {
			doneByProject[t.ProjectID]++
		} else {
			openByProject[t.ProjectID]++
		}
	}

	hoursByProject := make(map[int][]float64)
	for _, s := range sessions {
		pid, ok := taskProject[s.TaskID]
		if !ok {
			continue
		}
		hoursByProject[pid] = append(hoursByProject[pid], sessionHours(s, now))
	}

	var ov model.OrgOverview
	for _, p := range projects {
		hours := hoursByProject[p.ID]
		row := model.ProjectStat{
			ProjectID: p.ID,
			Name:      p.Name,
			OpenTasks: openByProject[p.ID],
			DoneTasks: doneByProject[p.ID],
		}
		if len(hours) > 0 {
			for _, h := range hours {
				row.TotalHours += h
			}
			sort.Float64s(hours)
			row.MedianHours = stat.Quantile(0.5, stat.Empirical, hours, nil)
		}
		ov.Projects = append(ov.Projects, row)
	}

	for _, u := range users {
		if u.Active {
			ov.ActiveUsers++
		}
	}

	return ov
}

// ComputeProjectTasks builds the per-project task drill-down for the
// metrics section. Only tasks belonging to projectID are considered.
func ComputeProjectTasks(projectID int, tasks []model.Task, now time.Time) model.ProjectTaskStats {
	st := model.ProjectTaskStats{
		ProjectID: projectID,
		ByStatus:  make(map[model.TaskStatus]int),
	}

	var ages []float64
	for _, t := range tasks {
		if t.ProjectID != projectID {
			continue
		}
		st.ByStatus[t.Status]++
		if len(t.AssigneeIDs) == 0 {
			st.UnassignedN++
		}
		if !t.TypeID.OK {
			st.WithoutTypeN++
		}
		age := now.Sub(t.CreatedAt).Hours() / 24
		if age < 0 {
			age = 0
		}
		ages = append(ages, age)
	}

	if len(ages) > 0 {
		st.MeanAgeDays = stat.Mean(ages, nil)
		sort.Float64s(ages)
		st.P90AgeDays = stat.Quantile(0.9, stat.Empirical, ages, nil)
	}

	return st
}
