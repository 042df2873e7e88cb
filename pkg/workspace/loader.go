package workspace

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/crewdeck/crew/pkg/model"
)

// Source is the set of reads a workspace load needs. internal/datasource
// satisfies it; tests use in-memory fakes.
type Source interface {
	Tasks(ctx context.Context, projectID int) ([]model.Task, error)
	Members(ctx context.Context, projectID int) ([]model.Member, error)
	TaskTypes(ctx context.Context, projectID int) ([]model.TaskType, error)
	Capabilities(ctx context.Context) ([]model.Capability, error)
}

// Loader assembles one project's working set from a Source.
type Loader struct {
	src    Source
	logger *log.Logger
}

// NewLoader creates a loader over the given source.
func NewLoader(src Source) *Loader {
	return &Loader{
		src: src,
		// Silent by default; callers opt in via SetLogger. Keeps stderr
		// clean for consumers that capture combined output.
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets a custom logger for load diagnostics.
func (l *Loader) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// Load fetches the four working-set reads in parallel and bundles them into
// one atomically-swappable Workspace. Any single failure fails the whole
// load; a partial working set is worse than none.
func (l *Loader) Load(ctx context.Context, projectID int) (model.Workspace, error) {
	ws := model.Workspace{ProjectID: projectID}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := l.src.Tasks(ctx, projectID)
		if err != nil {
			return fmt.Errorf("tasks: %w", err)
		}
		ws.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		members, err := l.src.Members(ctx, projectID)
		if err != nil {
			return fmt.Errorf("members: %w", err)
		}
		ws.Members = members
		return nil
	})
	g.Go(func() error {
		types, err := l.src.TaskTypes(ctx, projectID)
		if err != nil {
			return fmt.Errorf("task types: %w", err)
		}
		ws.TaskTypes = types
		return nil
	})
	g.Go(func() error {
		caps, err := l.src.Capabilities(ctx)
		if err != nil {
			return fmt.Errorf("capabilities: %w", err)
		}
		ws.Capabilities = caps
		return nil
	})

	if err := g.Wait(); err != nil {
		l.logger.Printf("workspace load for project %d failed: %v", projectID, err)
		return model.Workspace{}, fmt.Errorf("loading workspace for project %d: %w", projectID, err)
	}

	l.logger.Printf("workspace load for project %d: %d tasks, %d members",
		projectID, len(ws.Tasks), len(ws.Members))
	return ws, nil
}
