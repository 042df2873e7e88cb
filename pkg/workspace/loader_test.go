package workspace_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crewdeck/crew/pkg/model"
	"github.com/crewdeck/crew/pkg/workspace"
)

type fakeSource struct {
	tasksErr error
}

func (f *fakeSource) Tasks(_ context.Context, projectID int) ([]model.Task, error) {
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return []model.Task{{ID: 1, ProjectID: projectID, Title: "task"}}, nil
}

func (f *fakeSource) Members(_ context.Context, projectID int) ([]model.Member, error) {
	return []model.Member{{UserID: 10, ProjectID: projectID, Name: "ada"}}, nil
}

func (f *fakeSource) TaskTypes(_ context.Context, projectID int) ([]model.TaskType, error) {
	return []model.TaskType{{ID: 5, ProjectID: projectID, Name: "bug"}}, nil
}

func (f *fakeSource) Capabilities(context.Context) ([]model.Capability, error) {
	return []model.Capability{{ID: 2, Name: "go"}}, nil
}

func TestLoaderBundlesWorkingSet(t *testing.T) {
	l := workspace.NewLoader(&fakeSource{})
	ws, err := l.Load(context.Background(), 4)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ws.ProjectID != 4 {
		t.Errorf("ProjectID = %d, want 4", ws.ProjectID)
	}
	if len(ws.Tasks) != 1 || len(ws.Members) != 1 || len(ws.TaskTypes) != 1 || len(ws.Capabilities) != 1 {
		t.Errorf("incomplete bundle: %+v", ws)
	}
}

func TestLoaderFailsWhole(t *testing.T) {
	l := workspace.NewLoader(&fakeSource{tasksErr: errors.New("db locked")})
	ws, err := l.Load(context.Background(), 4)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "project 4") {
		t.Errorf("error should name the project: %v", err)
	}
	if ws.ProjectID != 0 {
		t.Errorf("partial workspace leaked: %+v", ws)
	}
}
