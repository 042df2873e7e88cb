// Package export renders the org metrics overview as an SVG bar chart
// that can be saved from the metrics page.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/crewdeck/crew/pkg/model"
)

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorText     = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	colorSubtle   = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	colorOpen     = color.RGBA{0x3b, 0x82, 0xf6, 0xff}
	colorDone     = color.RGBA{0x10, 0xb9, 0x81, 0xff}
	colorStroke   = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
)

const (
	chartWidth = 720
	rowHeight  = 36
	headerH    = 72
	footerH    = 40
	labelW     = 180
	barMaxW    = chartWidth - labelW - 120
)

// SaveOverviewChart writes the overview as an SVG bar chart to path.
func SaveOverviewChart(path string, ov model.OrgOverview) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer file.Close()

	if err := renderOverviewSVG(file, ov); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func renderOverviewSVG(w io.Writer, ov model.OrgOverview) error {
	height := headerH + len(ov.Projects)*rowHeight + footerH

	maxTasks := 1
	for _, p := range ov.Projects {
		if n := p.OpenTasks + p.DoneTasks; n > maxTasks {
			maxTasks = n
		}
	}

	canvas := svg.New(w)
	canvas.Start(chartWidth, height)
	canvas.Rect(0, 0, chartWidth, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	canvas.Text(24, 36, "Org overview", fmt.Sprintf(
		"fill:%s;font-size:18px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(24, 58, fmt.Sprintf("projects: %d  active users: %d",
		len(ov.Projects), ov.ActiveUsers), fmt.Sprintf(
		"fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for i, p := range ov.Projects {
		y := headerH + i*rowHeight

		canvas.Text(24, y+20, truncate(p.Name, 20), fmt.Sprintf(
			"fill:%s;font-size:13px;font-family:monospace", css(colorText)))

		openW := barMaxW * p.OpenTasks / maxTasks
		doneW := barMaxW * p.DoneTasks / maxTasks
		if p.OpenTasks > 0 {
			canvas.Rect(labelW, y+6, openW, 10, fmt.Sprintf("fill:%s", css(colorOpen)))
		}
		if p.DoneTasks > 0 {
			canvas.Rect(labelW, y+18, doneW, 10, fmt.Sprintf("fill:%s", css(colorDone)))
		}

		canvas.Text(labelW+barMaxW+12, y+20, fmt.Sprintf("%d/%d  %.1fh",
			p.OpenTasks, p.DoneTasks, p.TotalHours), fmt.Sprintf(
			"fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	// Legend
	ly := height - footerH + 12
	canvas.Rect(24, ly, 12, 12, fmt.Sprintf("fill:%s;stroke:%s", css(colorOpen), css(colorStroke)))
	canvas.Text(42, ly+10, "open", fmt.Sprintf(
		"fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	canvas.Rect(96, ly, 12, 12, fmt.Sprintf("fill:%s;stroke:%s", css(colorDone), css(colorStroke)))
	canvas.Text(114, ly+10, "done", fmt.Sprintf(
		"fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
