package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crewdeck/crew/pkg/model"
)

var overview = model.OrgOverview{
	ActiveUsers: 4,
	Projects: []model.ProjectStat{
		{ProjectID: 1, Name: "alpha", OpenTasks: 5, DoneTasks: 12, TotalHours: 40.5},
		{ProjectID: 2, Name: "a project with a very long name indeed", OpenTasks: 2, DoneTasks: 0},
	},
}

func TestRenderOverviewSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := renderOverviewSVG(&buf, overview); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("output is not an SVG document")
	}
	if !strings.Contains(out, "alpha") {
		t.Error("project name missing from chart")
	}
	if !strings.Contains(out, "active users: 4") {
		t.Error("header stats missing")
	}
	// Long names are truncated with an ellipsis.
	if strings.Contains(out, "very long name indeed") {
		t.Error("long project name should be truncated")
	}
}

func TestRenderOverviewSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderOverviewSVG(&buf, model.OrgOverview{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "projects: 0") {
		t.Error("empty overview should still render a header")
	}
}

func TestSaveOverviewChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overview.svg")
	if err := SaveOverviewChart(path, overview); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("saved file is not an SVG")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 20, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"much longer than allowed", 10, "much lo..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
